package schema

import "strings"

// FormFamily groups form ids by the tax regime they declare. The family
// drives the domain validation pass and tax calculation.
type FormFamily string

const (
	FamilyVAT       FormFamily = "gtgt" // value added tax declarations
	FamilyCorporate FormFamily = "tndn" // corporate income tax
	FamilyPersonal  FormFamily = "tncn" // personal income tax
	FamilyOther     FormFamily = "other"
)

// FamilyOf classifies a form id by its HTKK prefix: 01*/D1* are VAT forms,
// 03* corporate, 02* personal.
func FamilyOf(formID string) FormFamily {
	switch {
	case strings.HasPrefix(formID, "01") || strings.HasPrefix(formID, "D1"):
		return FamilyVAT
	case strings.HasPrefix(formID, "03"):
		return FamilyCorporate
	case strings.HasPrefix(formID, "02"):
		return FamilyPersonal
	default:
		return FamilyOther
	}
}
