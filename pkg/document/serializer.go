// Package document maps flat cell data onto the nested export tree the tax
// authority mandates, and extracts it back for round-trip checks.
package document

import (
	"fmt"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/goliatone/go-taxform/pkg/schema"
)

// Fixed element names of the export envelope and the signing metadata
// subtree appended to every document.
const (
	rootElement     = "HSoThueDTu"
	envelopeElement = "HSoKhaiThue"

	metaGeneral     = "TTinChung"
	metaDeclaration = "TTinTKhaiThue"
	metaForm        = "TKhaiThue"
	metaSigningDate = "ngayKy"
	metaSignerRole  = "nguoiKy"

	defaultSignerRole = "Người nộp thuế"
	signingDateLayout = "02/01/2006"
)

// PathConflictError reports two cells whose declared paths collide at an
// element in incompatible ways, for example one cell's leaf being another
// cell's interior element.
type PathConflictError struct {
	CellID  schema.CellID
	Path    string
	Element string
}

func (e *PathConflictError) Error() string {
	return fmt.Sprintf("document: cell %s path %q conflicts at element %q", e.CellID, e.Path, e.Element)
}

// Option customises a Serializer.
type Option func(*Serializer)

// WithSigningDate fixes the signing date written into the metadata subtree.
// Defaults to the current day.
func WithSigningDate(t time.Time) Option {
	return func(s *Serializer) {
		s.signingDate = t
	}
}

// WithSignerRole overrides the signer role written into the metadata
// subtree.
func WithSignerRole(role string) Option {
	return func(s *Serializer) {
		s.signerRole = role
	}
}

// Serializer builds export documents from validated form data.
type Serializer struct {
	signingDate time.Time
	signerRole  string
}

// New constructs a Serializer.
func New(options ...Option) *Serializer {
	s := &Serializer{
		signingDate: time.Now(),
		signerRole:  defaultSignerRole,
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Serialize walks every exportable cell present in data and writes its value
// at the cell's declared path, creating elements as needed and reusing the
// first existing child with a matching name at each step. Values are written
// verbatim; the serializer never re-formats numeric precision. The signing
// metadata subtree is appended regardless of input.
func (s *Serializer) Serialize(formSchema *schema.FormSchema, data schema.FormData) (*etree.Document, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement(rootElement)
	envelope := root.CreateElement(envelopeElement)

	for _, cell := range formSchema.Cells() {
		if !cell.Exportable() {
			continue
		}
		value, present := data[cell.ID]
		if !present || value == "" {
			continue
		}
		if err := setValueAtPath(envelope, cell.ID, cell.Path, value); err != nil {
			return nil, err
		}
	}

	s.appendMetadata(envelope)
	return doc, nil
}

// setValueAtPath walks the slash-separated element chain under parent,
// creating missing elements, and sets the leaf's text.
func setValueAtPath(parent *etree.Element, cellID schema.CellID, path, value string) error {
	current := parent
	for _, name := range strings.Split(path, "/") {
		if name == "" {
			continue
		}
		// descending through an element that already carries leaf text
		// would silently orphan another cell's value
		if current != parent && hasText(current) {
			return &PathConflictError{CellID: cellID, Path: path, Element: current.Tag}
		}
		child := current.SelectElement(name)
		if child == nil {
			child = current.CreateElement(name)
		}
		current = child
	}
	if current == parent {
		return &PathConflictError{CellID: cellID, Path: path, Element: parent.Tag}
	}
	if len(current.ChildElements()) > 0 {
		return &PathConflictError{CellID: cellID, Path: path, Element: current.Tag}
	}
	current.SetText(value)
	return nil
}

func hasText(el *etree.Element) bool {
	return strings.TrimSpace(el.Text()) != ""
}

// appendMetadata writes the fixed signing subtree, reusing existing
// elements when a cell path already created part of the chain.
func (s *Serializer) appendMetadata(envelope *etree.Element) {
	form := findOrCreate(findOrCreate(findOrCreate(envelope, metaGeneral), metaDeclaration), metaForm)
	findOrCreate(form, metaSigningDate).SetText(s.signingDate.Format(signingDateLayout))
	findOrCreate(form, metaSignerRole).SetText(s.signerRole)
}

func findOrCreate(parent *etree.Element, name string) *etree.Element {
	if child := parent.SelectElement(name); child != nil {
		return child
	}
	return parent.CreateElement(name)
}
