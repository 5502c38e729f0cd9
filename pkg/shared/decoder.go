package shared

import (
	"net/http"

	"github.com/go-playground/form"
)

// Decoder is the shared url.Values decoder for query strings and form
// bodies. form struct tags on DTOs drive the mapping.
var Decoder = form.NewDecoder()

// DecodeQuery populates v from the request's query string.
func DecodeQuery(v any, r *http.Request) error {
	return Decoder.Decode(v, r.URL.Query())
}

// DecodeForm parses and decodes the request's form body into v.
func DecodeForm(v any, r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		return err
	}
	return Decoder.Decode(v, r.Form)
}
