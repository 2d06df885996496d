// Package xmlutil holds small helpers for reading HTKK-style XML attributes,
// shared by the template parser and the rule resolver.
package xmlutil

import (
	"strconv"

	"github.com/beevik/etree"
)

// Attr returns the attribute value or def when the attribute is absent.
func Attr(el *etree.Element, key, def string) string {
	if attr := el.SelectAttr(key); attr != nil {
		return attr.Value
	}
	return def
}

// BoolAttr reads HTKK's "1"/"0" boolean attribute convention. Anything other
// than "1" is false.
func BoolAttr(el *etree.Element, key string) bool {
	return Attr(el, key, "0") == "1"
}

// IntAttr parses an integer attribute, returning def when absent and an
// error when present but non-numeric.
func IntAttr(el *etree.Element, key string, def int) (int, error) {
	raw := Attr(el, key, "")
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
