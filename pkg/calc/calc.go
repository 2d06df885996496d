// Package calc recomputes derived cell values. Recompute walks the rule
// dependency graph from a changed input cell; CalculateTax applies the
// form family's tax formulas over a full data snapshot.
package calc

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/goliatone/go-taxform/pkg/rules"
	"github.com/goliatone/go-taxform/pkg/schema"
	"github.com/goliatone/go-taxform/pkg/tax"
)

// NonNumericError reports a cell whose value was needed as an operand but
// does not parse as a decimal. Computations refuse rather than defaulting
// the operand to zero.
type NonNumericError struct {
	CellID schema.CellID
	Value  string
}

func (e *NonNumericError) Error() string {
	return fmt.Sprintf("calc: cell %s: value %q is not numeric", e.CellID, e.Value)
}

// Recompute re-evaluates every cell whose value is derived, directly or
// transitively, from the changed cell. The input map is never mutated; the
// returned map is a fresh copy with recomputed values applied and all other
// cells untouched. A cyclic rule graph is refused with a CycleError even
// though Resolve rejects cycles at load time.
func Recompute(s *schema.FormSchema, ruleList []rules.CalculationRule, changed schema.CellID, data schema.FormData) (schema.FormData, error) {
	if _, ok := s.CellByID(changed); !ok {
		return nil, &schema.UnknownCellError{FormID: s.FormID, IDs: []schema.CellID{changed}}
	}

	order, err := rules.TopoOrder(s.FormID, ruleList, changed)
	if err != nil {
		return nil, err
	}

	byCell := rules.Index(ruleList)
	out := data.Clone()

	for _, id := range order {
		rule := byCell[id]
		total := decimal.Zero
		for _, dep := range rule.DependsOn {
			operand, err := operandValue(out, dep)
			if err != nil {
				return nil, err
			}
			if depRule, ruled := byCell[dep]; ruled && depRule.Adjustment == rules.AdjustmentDecrease {
				total = total.Sub(operand)
			} else {
				total = total.Add(operand)
			}
		}
		out[id] = total.String()
	}
	return out, nil
}

// operandValue reads a dependency's value; absent or empty cells contribute
// zero, non-numeric values refuse the computation.
func operandValue(data schema.FormData, id schema.CellID) (decimal.Decimal, error) {
	value, present := data[id]
	if !present || value == "" {
		return decimal.Zero, nil
	}
	number, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, &NonNumericError{CellID: id, Value: value}
	}
	return number, nil
}

// CalculateTax derives the family's computed figures from a data snapshot.
// Cells absent from the data are treated as zero where the formula allows
// it; non-numeric values refuse the computation.
func CalculateTax(formID string, rateTable *tax.Rates, data schema.FormData) (map[schema.CellID]decimal.Decimal, error) {
	switch schema.FamilyOf(formID) {
	case schema.FamilyVAT:
		return calculateVAT(rateTable, data)
	case schema.FamilyCorporate:
		return calculateCorporate(rateTable, data)
	case schema.FamilyPersonal:
		return calculatePersonal(rateTable, data)
	default:
		return map[schema.CellID]decimal.Decimal{}, nil
	}
}

func calculateVAT(rateTable *tax.Rates, data schema.FormData) (map[schema.CellID]decimal.Decimal, error) {
	out := make(map[schema.CellID]decimal.Decimal)

	outputAt5 := decimal.Zero
	if revenue, present, err := numericCell(data, schema.CellRevenueAt5); err != nil {
		return nil, err
	} else if present {
		result, err := rateTable.VAT(revenue, decimal.NewFromInt(5))
		if err != nil {
			return nil, err
		}
		out[schema.CellVATAt5] = result.VATAmount
		outputAt5 = result.VATAmount
	} else if declared, present, err := numericCell(data, schema.CellVATAt5); err != nil {
		return nil, err
	} else if present {
		outputAt5 = declared
	}

	outputAt10 := decimal.Zero
	if revenue, present, err := numericCell(data, schema.CellRevenueAt10); err != nil {
		return nil, err
	} else if present {
		result, err := rateTable.VAT(revenue, decimal.NewFromInt(10))
		if err != nil {
			return nil, err
		}
		out[schema.CellVATAt10] = result.VATAmount
		outputAt10 = result.VATAmount
	} else if declared, present, err := numericCell(data, schema.CellVATAt10); err != nil {
		return nil, err
	} else if present {
		outputAt10 = declared
	}

	totalOutput := outputAt5.Add(outputAt10)
	out[schema.CellTotalVAT] = totalOutput

	inputVAT, _, err := numericCell(data, schema.CellInputVAT)
	if err != nil {
		return nil, err
	}
	payable := totalOutput.Sub(inputVAT)
	if payable.IsNegative() {
		payable = decimal.Zero
	}
	out[schema.CellVATPayable] = payable

	return out, nil
}

func calculateCorporate(rateTable *tax.Rates, data schema.FormData) (map[schema.CellID]decimal.Decimal, error) {
	revenue, _, err := numericCell(data, schema.CellRevenue)
	if err != nil {
		return nil, err
	}
	expenses, _, err := numericCell(data, schema.CellExpenses)
	if err != nil {
		return nil, err
	}

	profit := revenue.Sub(expenses)
	regime := tax.RegimeStandard
	if revenue.LessThan(rateTable.SmallBusinessRevenueCap()) {
		regime = tax.RegimeSmallBusiness
	}
	result, err := rateTable.Corporate(profit, regime)
	if err != nil {
		return nil, err
	}

	return map[schema.CellID]decimal.Decimal{
		schema.CellProfit: profit,
		schema.CellTax:    result.TaxAmount,
	}, nil
}

func calculatePersonal(rateTable *tax.Rates, data schema.FormData) (map[schema.CellID]decimal.Decimal, error) {
	income, present, err := numericCell(data, schema.CellAnnualIncome)
	if err != nil {
		return nil, err
	}
	if !present {
		return map[schema.CellID]decimal.Decimal{}, nil
	}
	result, err := rateTable.PersonalIncome(income)
	if err != nil {
		return nil, err
	}
	return map[schema.CellID]decimal.Decimal{
		"total_tax":  result.TotalTax,
		"net_income": result.NetIncome,
	}, nil
}

func numericCell(data schema.FormData, id schema.CellID) (decimal.Decimal, bool, error) {
	value, present := data[id]
	if !present || value == "" {
		return decimal.Zero, false, nil
	}
	number, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, false, &NonNumericError{CellID: id, Value: value}
	}
	return number, true, nil
}
