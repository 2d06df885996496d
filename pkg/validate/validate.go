// Package validate checks instance data against a form schema and its
// business rules, collecting every problem instead of stopping at the first.
//
// The pass order is fixed: structural constraints first, then cross-field
// business rules, then form-family domain checks. A given (schema, rules,
// data) triple always yields the same findings in the same order.
package validate

import (
	"fmt"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/goliatone/go-taxform/pkg/rules"
	"github.com/goliatone/go-taxform/pkg/schema"
	"github.com/goliatone/go-taxform/pkg/tax"
)

// VAT and profit consistency checks accept a fixed absolute discrepancy of
// one currency unit regardless of magnitude.
var tolerance = decimal.NewFromInt(1)

// Validate runs the three passes over data. The input map is never mutated.
func Validate(s *schema.FormSchema, ruleList []rules.CalculationRule, data schema.FormData) *Result {
	result := &Result{}
	structuralPass(s, data, result)
	businessPass(ruleList, data, result)
	domainPass(s.FormID, data, result)
	return result
}

// structuralPass checks declared per-cell constraints for every non-empty
// value. A numeric cell whose value does not parse as an exact decimal is an
// error, never a crash.
func structuralPass(s *schema.FormSchema, data schema.FormData, result *Result) {
	for _, cell := range s.Cells() {
		value, present := data[cell.ID]
		if !present || value == "" {
			continue
		}

		if cell.MaxLen > 0 && utf8.RuneCountInString(value) > cell.MaxLen {
			result.AddError(cell.ID, fmt.Sprintf("value exceeds maximum length of %d characters", cell.MaxLen), KindConstraint)
		}

		if cell.Control != schema.ControlNumeric {
			continue
		}
		number, err := decimal.NewFromString(value)
		if err != nil {
			result.AddError(cell.ID, "value must be numeric", KindConstraint)
			continue
		}
		if cell.MinValue != nil && number.LessThan(*cell.MinValue) {
			result.AddError(cell.ID, fmt.Sprintf("value must not be less than %s", cell.MinValue), KindConstraint)
		}
		if cell.MaxValue != nil && number.GreaterThan(*cell.MaxValue) {
			result.AddError(cell.ID, fmt.Sprintf("value must not exceed %s", cell.MaxValue), KindConstraint)
		}
	}
}

// businessPass flags suspicious values against the rule table: a negative
// value on an "increase" adjustment is worth a warning but is not
// necessarily invalid.
func businessPass(ruleList []rules.CalculationRule, data schema.FormData, result *Result) {
	for _, rule := range ruleList {
		if rule.Adjustment != rules.AdjustmentIncrease {
			continue
		}
		value, present := data[rule.CellID]
		if !present || value == "" {
			continue
		}
		number, err := decimal.NewFromString(value)
		if err != nil {
			// the structural pass already reported unparseable numerics
			continue
		}
		if number.IsNegative() {
			message := "negative value on an increase adjustment"
			if rule.Caption != "" {
				message = fmt.Sprintf("%s: %s", message, rule.Caption)
			}
			result.AddWarning(rule.CellID, message, KindBusinessRule)
		}
	}
}

func domainPass(formID string, data schema.FormData, result *Result) {
	switch schema.FamilyOf(formID) {
	case schema.FamilyVAT:
		vatPass(data, result)
	case schema.FamilyCorporate:
		corporatePass(data, result)
	case schema.FamilyPersonal, schema.FamilyOther:
		// no family-specific checks
	}
}

// vatPass recomputes expected VAT from the revenue declared at each rate and
// compares against the declared VAT cells.
func vatPass(data schema.FormData, result *Result) {
	inputVAT := decimalCell(data, schema.CellInputVAT)
	outputVAT := decimalCell(data, schema.CellOutputVAT)

	if inputVAT != nil && outputVAT != nil && outputVAT.IsPositive() {
		if inputVAT.GreaterThan(outputVAT.Mul(decimal.NewFromInt(2))) {
			result.AddWarning(schema.CellInputVAT, "input VAT is unusually high relative to output VAT", KindBusinessRule)
		}
	}

	checkDeclaredVAT(data, schema.CellRevenueAt5, schema.CellVATAt5, decimal.NewFromInt(5), result)
	checkDeclaredVAT(data, schema.CellRevenueAt10, schema.CellVATAt10, decimal.NewFromInt(10), result)
}

func checkDeclaredVAT(data schema.FormData, revenueCell, vatCell schema.CellID, rate decimal.Decimal, result *Result) {
	revenue := decimalCell(data, revenueCell)
	declared := decimalCell(data, vatCell)
	if revenue == nil || !revenue.IsPositive() || declared == nil {
		return
	}

	rateTable, err := tax.Default()
	if err != nil {
		result.AddError(vatCell, fmt.Sprintf("rate table unavailable: %v", err), KindBusinessRule)
		return
	}
	expected, err := rateTable.VAT(*revenue, rate)
	if err != nil {
		result.AddError(vatCell, err.Error(), KindBusinessRule)
		return
	}

	if declared.Sub(expected.VATAmount).Abs().GreaterThan(tolerance) {
		result.AddError(vatCell, fmt.Sprintf(
			"declared VAT at %s%% does not match revenue: expected %s, actual %s",
			rate, expected.VATAmount.StringFixed(2), declared.StringFixed(2),
		), KindBusinessRule)
	}
}

// corporatePass checks revenue/expenses plausibility and the declared
// profit against revenue minus expenses.
func corporatePass(data schema.FormData, result *Result) {
	revenue := decimalCell(data, schema.CellRevenue)
	expenses := decimalCell(data, schema.CellExpenses)

	if revenue != nil && expenses != nil {
		if expenses.GreaterThan(*revenue) {
			result.AddWarning(schema.CellExpenses, "expenses exceed revenue", KindBusinessRule)
		}
		expected := revenue.Sub(*expenses)
		if declared := decimalCell(data, schema.CellProfit); declared != nil {
			if declared.Sub(expected).Abs().GreaterThan(tolerance) {
				result.AddError(schema.CellProfit, fmt.Sprintf(
					"declared profit does not match revenue minus expenses: expected %s, actual %s",
					expected.StringFixed(2), declared.StringFixed(2),
				), KindBusinessRule)
			}
		}
	}
}

// decimalCell parses the cell's value, returning nil when the cell is
// absent, empty or unparseable. The structural pass owns parse errors.
func decimalCell(data schema.FormData, id schema.CellID) *decimal.Decimal {
	value, present := data[id]
	if !present || value == "" {
		return nil
	}
	number, err := decimal.NewFromString(value)
	if err != nil {
		return nil
	}
	return &number
}
