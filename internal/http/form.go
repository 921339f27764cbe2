package http

import (
	"net/url"

	"github.com/go-playground/form/v4"
)

var formDecoder = form.NewDecoder()

// decodeForm copies values into the form-tagged fields of dst. Pointer fields
// are set whenever their key is present, so an empty value is distinguishable
// from an absent one.
func decodeForm(values url.Values, dst interface{}) error {
	return formDecoder.Decode(dst, values)
}
