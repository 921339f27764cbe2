package book

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepo stores books as jsonb documents.
type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// documentKeys are the keys Book.document writes. Filters on them are
// rendered with a literal key so the expression indexes on books apply.
var documentKeys = map[string]bool{"title": true, "author": true, "year": true}

// buildListSQL renders the list statement for q. Any other field name
// travels as a bind parameter so arbitrary keys cannot alter the statement.
func buildListSQL(q Query) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}
	argn := 1

	for _, key := range q.FilterKeys() {
		if documentKeys[key] {
			clauses = append(clauses, fmt.Sprintf("doc->>'%s' = $%d", key, argn))
			args = append(args, q.Filter[key])
			argn++
			continue
		}
		clauses = append(clauses, fmt.Sprintf("doc->>$%d::text = $%d", argn, argn+1))
		args = append(args, key, q.Filter[key])
		argn += 2
	}

	order := make([]string, 0, len(q.Sort)+1)
	for _, f := range q.Sort {
		dir := "ASC"
		if f.Desc {
			dir = "DESC"
		}
		order = append(order, fmt.Sprintf("doc->$%d::text %s", argn, dir))
		args = append(args, f.Field)
		argn++
	}
	order = append(order, "created_at ASC", "id ASC")

	sql := fmt.Sprintf(`
		SELECT id::text, doc, created_at
		FROM books
		WHERE %s
		ORDER BY %s`,
		strings.Join(clauses, " AND "), strings.Join(order, ", "))
	return sql, args
}

func (r *PostgresRepo) List(ctx context.Context, q Query) ([]Book, error) {
	sql, args := buildListSQL(q)

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	out := []Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Book, error) {
	const query = `
		SELECT id::text, doc, created_at
		FROM books
		WHERE id = $1
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	b, err := scanBook(r.db.QueryRow(timeoutCtx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, fmt.Errorf("get book %s: %w", id, err)
	}
	return b, nil
}

// Create inserts b and counts the collection in the same statement. The
// count subquery sees the snapshot before the insert.
func (r *PostgresRepo) Create(ctx context.Context, b *Book) (int, error) {
	const query = `
		WITH ins AS (
			INSERT INTO books (doc, created_at)
			VALUES ($1, NOW())
			RETURNING id, created_at
		)
		SELECT ins.id::text, ins.created_at, (SELECT count(*) FROM books) + 1
		FROM ins`

	doc, err := json.Marshal(b.document())
	if err != nil {
		return 0, fmt.Errorf("encode book: %w", err)
	}
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var total int
	if err := r.db.QueryRow(timeoutCtx, query, doc).Scan(&b.ID, &b.CreatedAt, &total); err != nil {
		return 0, fmt.Errorf("insert book: %w", err)
	}
	return total, nil
}

// Update merges the supplied fields into the stored document.
func (r *PostgresRepo) Update(ctx context.Context, id string, p Patch) (Book, error) {
	const query = `
		UPDATE books
		SET doc = doc || $2::jsonb
		WHERE id = $1
		RETURNING id::text, doc, created_at`

	fields, err := json.Marshal(p.Fields())
	if err != nil {
		return Book{}, fmt.Errorf("encode patch: %w", err)
	}
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	b, err := scanBook(r.db.QueryRow(timeoutCtx, query, id, fields))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, fmt.Errorf("update book %s: %w", id, err)
	}
	return b, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete book %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) Count(ctx context.Context) (int, error) {
	var total int
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if err := r.db.QueryRow(timeoutCtx, `SELECT COUNT(*) FROM books`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return total, nil
}

func (r *PostgresRepo) ListComments(ctx context.Context, bookID string) ([]Comment, error) {
	const query = `
		SELECT id::text, book_id::text, COALESCE(doc->>'body', '')
		FROM comments
		WHERE book_id = $1
		ORDER BY created_at, id`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, bookID)
	if err != nil {
		return nil, fmt.Errorf("list comments for %s: %w", bookID, err)
	}
	defer rows.Close()

	out := []Comment{}
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.BookID, &c.Body); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateComment attaches a comment to a book. Only the seed tool writes
// comments; the HTTP surface reads them.
func (r *PostgresRepo) CreateComment(ctx context.Context, c *Comment) error {
	const query = `
		INSERT INTO comments (book_id, doc, created_at)
		VALUES ($1, jsonb_build_object('body', $2::text), NOW())
		RETURNING id::text`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if err := r.db.QueryRow(timeoutCtx, query, c.BookID, c.Body).Scan(&c.ID); err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func scanBook(row pgx.Row) (Book, error) {
	var (
		b   Book
		raw []byte
	)
	if err := row.Scan(&b.ID, &raw, &b.CreatedAt); err != nil {
		return Book{}, err
	}
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Book{}, fmt.Errorf("decode book %s: %w", b.ID, err)
	}
	b.Title, b.Author, b.Year = doc.Title, doc.Author, doc.Year
	return b, nil
}
