package headers

import (
	"bytes"
	"iter"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// https://datatracker.ietf.org/doc/html/rfc9110#name-tokens
var fieldNameRegex = regexp.MustCompile(`^[a-zA-Z0-9!#$%&'*\+\-.^_\x60\|~]+$`)

// Field is a single header line as it appeared on the wire.
type Field struct {
	Name  string
	Value string
}

// Headers is an ordered collection of header fields. Names keep the case they
// were added with and repeated names are kept in arrival order.
type Headers struct {
	fields []Field
}

func isValidFieldName(key string) bool {
	return fieldNameRegex.MatchString(key)
}

func validHeaderValueByte(c byte) bool {
	switch {
	case c == 0x09: // HTAB
		return true
	case c == 0x20: // SP
		return true
	case 0x21 <= c && c <= 0x7E: // VCHAR
		return true
	case c >= 0x80: // obs-text
		return true
	}
	return false
}

func isValidFieldValue(val []byte) bool {
	for _, b := range val {
		if !validHeaderValueByte(b) {
			return false
		}
	}
	return true
}

// Canonical title-cases a header name for the wire, eg. content-type -> Content-Type.
func Canonical(name string) string {
	// a Caser keeps state between calls, so each call gets its own
	return cases.Title(language.English).String(name)
}

// Add appends a header field. Invalid names or values are dropped to prevent
// response splitting.
func (h *Headers) Add(key, value string) {
	if !isValidFieldName(key) || !isValidFieldValue([]byte(value)) {
		return
	}
	h.fields = append(h.fields, Field{Name: key, Value: value})
}

// Get returns the value of the first field whose name matches key, ignoring case.
func (h *Headers) Get(key string) string {
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, key) {
			return f.Value
		}
	}
	return ""
}

// Has reports whether at least one field named key exists.
func (h *Headers) Has(key string) bool {
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, key) {
			return true
		}
	}
	return false
}

// Values returns every value stored under key, in arrival order.
func (h *Headers) Values(key string) []string {
	var values []string
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, key) {
			values = append(values, f.Value)
		}
	}
	return values
}

// Remove deletes every field named key.
func (h *Headers) Remove(key string) {
	kept := h.fields[:0]
	for _, f := range h.fields {
		if !strings.EqualFold(f.Name, key) {
			kept = append(kept, f)
		}
	}
	h.fields = kept
}

// All iterates over the fields in arrival order, duplicates included.
func (h *Headers) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, f := range h.fields {
			if !yield(f.Name, f.Value) {
				return
			}
		}
	}
}

// ParseFieldLine parses a single header line and appends it.
func (h *Headers) ParseFieldLine(data []byte) (err error) {
	colonPos := bytes.IndexByte(data, ':')
	if colonPos == -1 {
		// colon not found
		return ErrMalformedHeader
	}

	// leading whitespace in header key is allowed
	hkey := bytes.TrimLeft(data[:colonPos], " \t")
	hvalue := bytes.Trim(data[colonPos+1:], " \t")

	if !bytes.Equal(hkey, bytes.TrimRight(hkey, " \t")) {
		// space between key and colon, invalid
		return ErrMalformedHeader
	}

	if !fieldNameRegex.Match(hkey) || !isValidFieldValue(hvalue) {
		return ErrMalformedHeader
	}

	h.fields = append(h.fields, Field{Name: string(hkey), Value: string(hvalue)})
	return nil
}

// Size returns the number of fields, duplicates included.
func (h *Headers) Size() int {
	return len(h.fields)
}

// NewHeaders creates an empty Headers.
func NewHeaders() *Headers {
	return &Headers{}
}
