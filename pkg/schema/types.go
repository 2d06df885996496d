package schema

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CellID is the unique key of a cell within a form schema. IDs are unique
// across the whole schema, not just within their section.
type CellID string

// Cell is the atomic field definition inside a section. Path is the
// slash-separated element chain used when exporting; an empty Path marks a
// computed-only or UI-only cell that is never written to the document.
type Cell struct {
	ID            CellID
	ID2           CellID
	Path          string
	Control       ControlType
	DefaultValue  string
	MaxLen        int // 0 means unbounded
	MinValue      *decimal.Decimal
	MaxValue      *decimal.Decimal
	HelpContextID string
	Encode        bool
	ParentCell    CellID // dropdown dependency, not calculation dependency
	ChildCell     CellID
}

// Exportable reports whether the cell writes into the export document.
func (c Cell) Exportable() bool {
	return c.Path != ""
}

// Section groups cells. A dynamic section repeats as rows and MaxRows bounds
// the repetition; static sections ignore MaxRows entirely.
type Section struct {
	Title   string
	Dynamic bool
	MaxRows int
	Cells   []Cell
}

// FormSchema is the parsed, typed representation of one tax form version.
type FormSchema struct {
	FormID   string
	Version  string
	Sections []Section

	index map[CellID]*Cell
}

// DuplicateCellError reports a cell id declared more than once in a schema.
type DuplicateCellError struct {
	FormID string
	CellID CellID
}

func (e *DuplicateCellError) Error() string {
	return fmt.Sprintf("schema %s: duplicate cell id %q", e.FormID, e.CellID)
}

// NewFormSchema assembles a FormSchema and builds the cell index, enforcing
// schema-wide cell id uniqueness.
func NewFormSchema(formID, version string, sections []Section) (*FormSchema, error) {
	s := &FormSchema{
		FormID:   formID,
		Version:  version,
		Sections: sections,
		index:    make(map[CellID]*Cell),
	}
	for si := range s.Sections {
		for ci := range s.Sections[si].Cells {
			cell := &s.Sections[si].Cells[ci]
			if cell.ID == "" {
				continue
			}
			if _, exists := s.index[cell.ID]; exists {
				return nil, &DuplicateCellError{FormID: formID, CellID: cell.ID}
			}
			s.index[cell.ID] = cell
		}
	}
	return s, nil
}

// CellByID returns the cell declared under id.
func (s *FormSchema) CellByID(id CellID) (*Cell, bool) {
	cell, ok := s.index[id]
	return cell, ok
}

// Cells returns every cell in declaration order (section order, then cell
// order within the section). Validation relies on this order being stable.
func (s *FormSchema) Cells() []*Cell {
	out := make([]*Cell, 0, len(s.index))
	for si := range s.Sections {
		for ci := range s.Sections[si].Cells {
			cell := &s.Sections[si].Cells[ci]
			if cell.ID == "" {
				continue
			}
			out = append(out, cell)
		}
	}
	return out
}
