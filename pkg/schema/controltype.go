package schema

import "fmt"

// ControlType is the closed enumeration of widget kinds a cell can declare.
// HTKK templates encode these as numeric codes; ParseControlCode maps the
// codes onto the enum so every downstream switch stays exhaustive.
type ControlType string

const (
	ControlText              ControlType = "text"
	ControlBoolean           ControlType = "boolean"
	ControlDropdown          ControlType = "dropdown"
	ControlDate              ControlType = "date"
	ControlNumeric           ControlType = "numeric"
	ControlHidden            ControlType = "hidden"
	ControlDependentDropdown ControlType = "dependent-dropdown"
)

// control type codes used by HTKK template files. 100 is the province
// dropdown and 101 the ward dropdown that depends on it.
const (
	codeText     = 0
	codeCheckbox = 2
	codeDropdown = 6
	codeDate     = 14
	codeNumeric  = 16
	codeHidden   = 26
	codeProvince = 100
	codeWard     = 101
)

// ParseControlCode converts an HTKK control type code into a ControlType.
// Unknown codes are rejected rather than defaulted so a template referencing
// a widget this engine does not understand fails at parse time.
func ParseControlCode(code int) (ControlType, error) {
	switch code {
	case codeText:
		return ControlText, nil
	case codeCheckbox:
		return ControlBoolean, nil
	case codeDropdown, codeProvince:
		return ControlDropdown, nil
	case codeDate:
		return ControlDate, nil
	case codeNumeric:
		return ControlNumeric, nil
	case codeHidden:
		return ControlHidden, nil
	case codeWard:
		return ControlDependentDropdown, nil
	default:
		return "", fmt.Errorf("schema: unknown control type code %d", code)
	}
}

// SupportsConstraints reports whether MaxLen/MinValue/MaxValue apply to this
// control type. Constraints on any other type are a template defect.
func (c ControlType) SupportsConstraints() bool {
	return c == ControlText || c == ControlNumeric
}
