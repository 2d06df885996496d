package document

import (
	"errors"
	"strings"

	"github.com/beevik/etree"

	"github.com/goliatone/go-taxform/pkg/schema"
)

// Extract reads every exportable cell's value back out of a serialized
// document, keyed by cell id. Cells whose path resolves to no element are
// omitted. Serialize followed by Extract reproduces the original values
// byte for byte.
func Extract(doc *etree.Document, formSchema *schema.FormSchema) (schema.FormData, error) {
	root := doc.Root()
	if root == nil || root.Tag != rootElement {
		return nil, errors.New("document: missing " + rootElement + " root element")
	}
	envelope := root.SelectElement(envelopeElement)
	if envelope == nil {
		return nil, errors.New("document: missing " + envelopeElement + " envelope")
	}

	out := make(schema.FormData)
	for _, cell := range formSchema.Cells() {
		if !cell.Exportable() {
			continue
		}
		if value, ok := valueAtPath(envelope, cell.Path); ok {
			out[cell.ID] = value
		}
	}
	return out, nil
}

// valueAtPath follows the first matching child at each step, mirroring the
// serializer's find-or-create walk.
func valueAtPath(parent *etree.Element, path string) (string, bool) {
	current := parent
	for _, name := range strings.Split(path, "/") {
		if name == "" {
			continue
		}
		current = current.SelectElement(name)
		if current == nil {
			return "", false
		}
	}
	if current == parent {
		return "", false
	}
	return current.Text(), true
}
