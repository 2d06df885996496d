// Package parser turns raw HTKK XML form templates into typed schemas.
//
// A template is a Section/Cells/Cell tree whose attributes (CellID, Path,
// Controltype, MaxLen, MinValue, MaxValue, ...) describe one government form
// version. The parse is a pure transform: bytes in, *schema.FormSchema or a
// *MalformedTemplateError out.
package parser

import (
	"errors"
	"fmt"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/goliatone/go-taxform/internal/xmlutil"
	"github.com/goliatone/go-taxform/pkg/schema"
)

// MalformedTemplateError reports a structural defect in a template together
// with the section/cell it was found in.
type MalformedTemplateError struct {
	FormID  string
	Section int // zero-based section index, -1 when not section-scoped
	CellID  schema.CellID
	Reason  string
}

func (e *MalformedTemplateError) Error() string {
	switch {
	case e.CellID != "":
		return fmt.Sprintf("template %s: section %d, cell %s: %s", e.FormID, e.Section, e.CellID, e.Reason)
	case e.Section >= 0:
		return fmt.Sprintf("template %s: section %d: %s", e.FormID, e.Section, e.Reason)
	default:
		return fmt.Sprintf("template %s: %s", e.FormID, e.Reason)
	}
}

// ParseTemplate parses one form's template document into a FormSchema.
func ParseTemplate(formID string, src []byte) (*schema.FormSchema, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(src); err != nil {
		return nil, &MalformedTemplateError{FormID: formID, Section: -1, Reason: fmt.Sprintf("invalid XML: %v", err)}
	}
	root := doc.Root()
	if root == nil {
		return nil, &MalformedTemplateError{FormID: formID, Section: -1, Reason: "document has no root element"}
	}

	version := xmlutil.Attr(root, "Version", "")

	var sections []schema.Section
	for si, sectionEl := range root.SelectElements("Section") {
		section, err := parseSection(formID, si, sectionEl)
		if err != nil {
			return nil, err
		}
		sections = append(sections, section)
	}

	s, err := schema.NewFormSchema(formID, version, sections)
	if err != nil {
		var dup *schema.DuplicateCellError
		if errors.As(err, &dup) {
			return nil, &MalformedTemplateError{FormID: formID, Section: -1, CellID: dup.CellID, Reason: "duplicate cell id"}
		}
		return nil, err
	}
	return s, nil
}

func parseSection(formID string, si int, el *etree.Element) (schema.Section, error) {
	maxRows, err := xmlutil.IntAttr(el, "MaxRows", 0)
	if err != nil {
		return schema.Section{}, &MalformedTemplateError{FormID: formID, Section: si, Reason: "MaxRows is not numeric"}
	}

	section := schema.Section{
		Title:   xmlutil.Attr(el, "Title", ""),
		Dynamic: xmlutil.BoolAttr(el, "Dynamic"),
		MaxRows: maxRows,
	}

	cellsEl := el.SelectElement("Cells")
	if cellsEl == nil {
		return section, nil
	}
	for _, cellEl := range cellsEl.SelectElements("Cell") {
		cell, err := parseCell(formID, si, cellEl)
		if err != nil {
			return schema.Section{}, err
		}
		section.Cells = append(section.Cells, cell)
	}

	// MaxRows bounds repetition only for dynamic sections; static sections
	// carry the attribute without meaning and it is ignored.
	if section.Dynamic && section.MaxRows > 0 && len(section.Cells) > section.MaxRows {
		return schema.Section{}, &MalformedTemplateError{
			FormID:  formID,
			Section: si,
			Reason:  fmt.Sprintf("dynamic section declares %d cells, MaxRows is %d", len(section.Cells), section.MaxRows),
		}
	}
	return section, nil
}

func parseCell(formID string, si int, el *etree.Element) (schema.Cell, error) {
	fail := func(id schema.CellID, reason string) (schema.Cell, error) {
		return schema.Cell{}, &MalformedTemplateError{FormID: formID, Section: si, CellID: id, Reason: reason}
	}

	id := schema.CellID(xmlutil.Attr(el, "CellID", ""))
	if id == "" {
		return fail("", "cell is missing required attribute CellID")
	}

	code, err := xmlutil.IntAttr(el, "Controltype", 0)
	if err != nil {
		return fail(id, "Controltype is not numeric")
	}
	control, err := schema.ParseControlCode(code)
	if err != nil {
		return fail(id, err.Error())
	}

	cell := schema.Cell{
		ID:            id,
		ID2:           schema.CellID(xmlutil.Attr(el, "CellID2", "")),
		Path:          xmlutil.Attr(el, "Path", ""),
		Control:       control,
		DefaultValue:  xmlutil.Attr(el, "DefaultValue", ""),
		HelpContextID: xmlutil.Attr(el, "HelpContextID", ""),
		Encode:        xmlutil.BoolAttr(el, "Encode"),
		ParentCell:    schema.CellID(xmlutil.Attr(el, "ParentCell", "")),
		ChildCell:     schema.CellID(xmlutil.Attr(el, "ChildCell", "")),
	}

	hasConstraint := false

	if raw := xmlutil.Attr(el, "MaxLen", ""); raw != "" {
		maxLen, err := xmlutil.IntAttr(el, "MaxLen", 0)
		if err != nil || maxLen < 0 {
			return fail(id, fmt.Sprintf("MaxLen %q is not a numeric length bound", raw))
		}
		cell.MaxLen = maxLen
		hasConstraint = true
	}

	if raw := xmlutil.Attr(el, "MinValue", ""); raw != "" {
		min, err := decimal.NewFromString(raw)
		if err != nil {
			return fail(id, fmt.Sprintf("MinValue %q is not numeric", raw))
		}
		cell.MinValue = &min
		hasConstraint = true
	}

	if raw := xmlutil.Attr(el, "MaxValue", ""); raw != "" {
		max, err := decimal.NewFromString(raw)
		if err != nil {
			return fail(id, fmt.Sprintf("MaxValue %q is not numeric", raw))
		}
		cell.MaxValue = &max
		hasConstraint = true
	}

	if hasConstraint && !cell.Control.SupportsConstraints() {
		return fail(id, fmt.Sprintf("control type %q does not accept constraints", cell.Control))
	}
	if cell.MinValue != nil && cell.MaxValue != nil && cell.MinValue.GreaterThan(*cell.MaxValue) {
		return fail(id, "MinValue exceeds MaxValue")
	}

	return cell, nil
}
