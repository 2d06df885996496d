package validate

import "github.com/goliatone/go-taxform/pkg/schema"

// Kind classifies a finding. Constraint violations come from the structural
// pass, business-rule violations from the cross-field and domain passes.
type Kind string

const (
	KindConstraint   Kind = "constraint"
	KindBusinessRule Kind = "business_rule"
	KindUnknownField Kind = "unknown_field"
)

// Finding is one validation error or warning tied to a field.
type Finding struct {
	Field   schema.CellID
	Message string
	Kind    Kind
}

// Result collects findings in the order the passes produced them. Warnings
// never affect validity.
type Result struct {
	Errors   []Finding
	Warnings []Finding
}

// IsValid reports whether the data passed with no errors.
func (r *Result) IsValid() bool {
	return len(r.Errors) == 0
}

// AddError appends an error finding.
func (r *Result) AddError(field schema.CellID, message string, kind Kind) {
	r.Errors = append(r.Errors, Finding{Field: field, Message: message, Kind: kind})
}

// AddWarning appends a warning finding.
func (r *Result) AddWarning(field schema.CellID, message string, kind Kind) {
	r.Warnings = append(r.Warnings, Finding{Field: field, Message: message, Kind: kind})
}
