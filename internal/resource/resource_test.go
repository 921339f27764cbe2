package resource

import (
	"encoding/json"
	"net/http"
	"testing"

	"bookdoc/internal/book"

	"github.com/google/go-cmp/cmp"
	"github.com/google/jsonapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	baseURL = "http://books.test"
	duneID  = "3f2b8c1e-6a47-4d8e-9a51-0c2f7d1e9b10"
)

var (
	dune       = book.Book{ID: duneID, Title: "Dune", Author: "Herbert", Year: 1965}
	messiah    = book.Book{ID: "6c1d0b52-3a0e-4b61-8f7e-2d9c5a4b3e21", Title: "Dune Messiah", Author: "Herbert", Year: 1969}
	duneRaw    = map[string]any{"_id": duneID, "title": "Dune", "author": "Herbert", "year": float64(1965)}
	duneAttrs  = map[string]any{"title": "Dune", "author": "Herbert", "year": float64(1965)}
	duneFlat   = map[string]any{"id": duneID, "type": "book", "attributes": duneAttrs}
	duneSelf   = baseURL + "/v3/Find_Book?book_id=" + duneID
	duneLinked = map[string]any{"id": duneID, "type": "book", "attributes": duneAttrs, "links": map[string]any{"self": duneSelf}}
)

// render encodes v the way handlers do and decodes it into generic JSON.
func render(t *testing.T, v any) any {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	var out any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func assertJSON(t *testing.T, want, v any) {
	t.Helper()
	if diff := cmp.Diff(want, render(t, v)); diff != "" {
		t.Errorf("envelope mismatch (-want +got):\n%s", diff)
	}
}

func TestParseVersion(t *testing.T) {
	for in, want := range map[string]Version{"v1": V1, "2": V2, "V3": V3} {
		got, err := ParseVersion(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	for _, in := range []string{"", "v0", "v4", "latest"} {
		_, err := ParseVersion(in)
		assert.Error(t, err, in)
	}
	assert.Equal(t, "v2", V2.String())
}

func TestNew(t *testing.T) {
	for _, v := range []Version{V1, V2, V3} {
		p, err := New(v, baseURL)
		require.NoError(t, err)
		assert.Equal(t, v, p.Version())
	}
	_, err := New(Version(7), baseURL)
	assert.Error(t, err)
	assert.Len(t, All(baseURL), 3)
}

func TestRawPresenter(t *testing.T) {
	p, _ := New(V1, baseURL)

	assert.Equal(t, "application/json", p.ContentType())
	assert.False(t, p.IncludesRelated())
	assertJSON(t, map[string]any{"data": []any{duneRaw}}, p.Collection([]book.Book{dune}))
	assertJSON(t, map[string]any{"data": []any{}}, p.Sorted(nil))
	assertJSON(t, map[string]any{"data": duneRaw}, p.Single(dune, nil))
	assertJSON(t, map[string]any{"data": duneRaw}, p.Created(dune, 4))
	assertJSON(t, map[string]any{"data": duneRaw}, p.Updated(dune))
	assertJSON(t, map[string]any{"message": "Book deleted"}, p.Deleted())
}

func TestFlatPresenter(t *testing.T) {
	p, _ := New(V2, baseURL)

	assertJSON(t, map[string]any{"data": []any{duneFlat}}, p.Collection([]book.Book{dune}))
	assertJSON(t, map[string]any{"data": duneFlat}, p.Single(dune, nil))
	assertJSON(t, map[string]any{"data": duneFlat}, p.Created(dune, 1))
	assertJSON(t, map[string]any{"data": duneFlat}, p.Updated(dune))
	assertJSON(t, map[string]any{
		"success": false,
		"error": map[string]any{
			"code":    "NOT_FOUND",
			"message": "Book not found",
		},
	}, p.Error(http.StatusNotFound, "NOT_FOUND", "Book not found", nil))
}

func TestFlatList_PreservesOrder(t *testing.T) {
	got := FlatList([]book.Book{messiah, dune})
	require.Len(t, got, 2)
	assert.Equal(t, messiah.ID, got[0].ID)
	assert.Equal(t, dune.ID, got[1].ID)
	assert.Equal(t, "book", got[1].Type)
	assert.Equal(t, Attributes{Title: "Dune", Author: "Herbert", Year: 1965}, got[1].Attributes)
}

func TestDocumentPresenter_Collections(t *testing.T) {
	p, _ := New(V3, baseURL+"/")

	assert.Equal(t, jsonapi.MediaType, p.ContentType())
	assert.True(t, p.IncludesRelated())
	assertJSON(t, map[string]any{"count": float64(1), "data": []any{duneLinked}}, p.Collection([]book.Book{dune}))
	assertJSON(t, map[string]any{"count": float64(0), "data": []any{}}, p.Collection(nil))
	assertJSON(t, map[string]any{"data": []any{duneLinked}}, p.Sorted([]book.Book{dune}))
	assertJSON(t, map[string]any{"count": float64(12), "data": duneLinked}, p.Created(dune, 12))
	assertJSON(t, map[string]any{"data": duneAttrs}, p.Updated(dune))
}

func TestDocumentPresenter_Single(t *testing.T) {
	p, _ := New(V3, baseURL)
	comments := []book.Comment{
		{ID: "c-1", BookID: duneID, Body: "Fear is the mind-killer."},
		{ID: "c-2", BookID: duneID, Body: "The spice must flow."},
	}
	authorID := AuthorID("Herbert")
	author := map[string]any{
		"type": "people",
		"id":   authorID,
		"links": map[string]any{
			"self":    baseURL + "/v3/people/" + authorID,
			"related": baseURL + "/v3/Sort_books?filter=author%2AHerbert",
		},
	}
	commentResource := func(c book.Comment) map[string]any {
		return map[string]any{
			"type":       "comments",
			"id":         c.ID,
			"attributes": map[string]any{"body": c.Body},
			"links":      map[string]any{"self": baseURL + "/v3/comments/" + c.ID},
		}
	}

	want := map[string]any{
		"data": map[string]any{
			"type":       "book",
			"id":         duneID,
			"attributes": duneAttrs,
			"links":      map[string]any{"self": duneSelf},
			"relationships": map[string]any{
				"author": map[string]any{"data": author},
				"comments": map[string]any{"data": []any{
					map[string]any{"type": "comments", "id": "c-1"},
					map[string]any{"type": "comments", "id": "c-2"},
				}},
			},
		},
		"included": []any{author, commentResource(comments[0]), commentResource(comments[1])},
		"links": map[string]any{
			"self": duneSelf,
			"next": baseURL + "/v3/List_Of_Books?page[offset]=2",
			"last": baseURL + "/v3/List_Of_Books?page[offset]=10",
		},
	}

	assertJSON(t, want, p.Single(dune, comments))
}

func TestDocumentPresenter_SingleWithoutComments(t *testing.T) {
	p, _ := New(V3, baseURL)

	doc := render(t, p.Single(dune, nil)).(map[string]any)
	rel := doc["data"].(map[string]any)["relationships"].(map[string]any)
	assert.Equal(t, []any{}, rel["comments"].(map[string]any)["data"])
	assert.Len(t, doc["included"], 1)
}

func TestDocumentPresenter_Error(t *testing.T) {
	p, _ := New(V3, baseURL)

	assertJSON(t, map[string]any{"errors": []any{map[string]any{
		"status": "404",
		"code":   "NOT_FOUND",
		"title":  "Book not found",
		"detail": "Book not found",
	}}}, p.Error(http.StatusNotFound, "NOT_FOUND", "Book not found", nil))

	assertJSON(t, map[string]any{"errors": []any{map[string]any{
		"status": "400",
		"code":   "VALIDATION_ERROR",
		"title":  "Invalid input",
		"detail": "title is required",
		"meta":   map[string]any{"field": "title"},
	}}}, p.Error(http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", []ErrorDetail{{Field: "title", Message: "title is required"}}))
}

func TestAuthorID_Stable(t *testing.T) {
	assert.Equal(t, AuthorID("Orwell"), AuthorID("Orwell"))
	assert.NotEqual(t, AuthorID("Orwell"), AuthorID("Herbert"))
}
