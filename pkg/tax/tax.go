// Package tax implements the VAT, corporate and progressive personal income
// tax formulas over an immutable statutory rate table.
//
// Every rounded figure uses half-up rounding (half away from zero) to two
// decimal places. Results are never silently defaulted: an unsupported rate
// or regime refuses the computation instead of returning zero.
package tax

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Corporate regime names accepted by Corporate.
const (
	RegimeStandard      = "standard"
	RegimeSmallBusiness = "small_business"
	RegimeHighTech      = "high_tech"
)

var oneHundred = decimal.NewFromInt(100)

// InvalidRateError reports a tax function invoked with a rate or regime
// outside the statutory table.
type InvalidRateError struct {
	Kind      string // "vat rate" or "corporate regime"
	Requested string
}

func (e *InvalidRateError) Error() string {
	return fmt.Sprintf("tax: unsupported %s %q", e.Kind, e.Requested)
}

// VATResult carries the rounded VAT amount and the net remaining after it.
type VATResult struct {
	VATAmount decimal.Decimal
	NetAmount decimal.Decimal
}

// VAT computes revenue * rate / 100, rounded half-up to two decimals. The
// net amount is the unrounded subtraction of the rounded VAT figure. The
// rate must be one of the table's permitted VAT rates.
func (r *Rates) VAT(revenue, rate decimal.Decimal) (VATResult, error) {
	permitted := false
	for _, p := range r.vatPermitted {
		if p.Equal(rate) {
			permitted = true
			break
		}
	}
	if !permitted {
		return VATResult{}, &InvalidRateError{Kind: "vat rate", Requested: rate.String()}
	}

	vat := roundMoney(revenue.Mul(rate).Div(oneHundred))
	return VATResult{
		VATAmount: vat,
		NetAmount: revenue.Sub(vat),
	}, nil
}

// CorporateResult carries the rounded tax amount and net profit.
type CorporateResult struct {
	TaxAmount decimal.Decimal
	NetProfit decimal.Decimal
}

// Corporate computes flat-rate corporate tax for the regime. Losses are not
// taxed: a non-positive taxable profit yields zero tax.
func (r *Rates) Corporate(taxableProfit decimal.Decimal, regime string) (CorporateResult, error) {
	rate, ok := r.corporateRegimes[regime]
	if !ok {
		return CorporateResult{}, &InvalidRateError{Kind: "corporate regime", Requested: regime}
	}

	tax := decimal.Zero
	if taxableProfit.IsPositive() {
		tax = roundMoney(taxableProfit.Mul(rate).Div(oneHundred))
	}
	return CorporateResult{
		TaxAmount: tax,
		NetProfit: taxableProfit.Sub(tax),
	}, nil
}

// BracketTax is one bracket's contribution to a progressive computation.
type BracketTax struct {
	Rate    decimal.Decimal
	Taxable decimal.Decimal
	Tax     decimal.Decimal
}

// PersonalResult carries the progressive computation and its per-bracket
// breakdown for auditability.
type PersonalResult struct {
	TotalTax  decimal.Decimal
	NetIncome decimal.Decimal
	Breakdown []BracketTax
}

// PersonalIncome applies the ascending brackets cumulatively: each bracket
// taxes the portion of remaining income up to its width, and income past the
// last declared bracket is taxed at the last bracket's rate.
func (r *Rates) PersonalIncome(annualIncome decimal.Decimal) (PersonalResult, error) {
	if annualIncome.IsNegative() {
		return PersonalResult{}, errors.New("tax: income must not be negative")
	}

	total := decimal.Zero
	remaining := annualIncome
	var breakdown []BracketTax

	for _, bracket := range r.personalBrackets {
		if !remaining.IsPositive() {
			break
		}
		taxable := remaining
		if bracket.Upper != nil {
			width := bracket.Upper.Sub(bracket.Lower)
			if taxable.GreaterThan(width) {
				taxable = width
			}
		}
		tax := roundMoney(taxable.Mul(bracket.Rate).Div(oneHundred))
		total = total.Add(tax)
		breakdown = append(breakdown, BracketTax{Rate: bracket.Rate, Taxable: taxable, Tax: tax})
		remaining = remaining.Sub(taxable)
	}

	// The table's last bracket is unbounded in the default configuration,
	// but a bounded table still taxes the overflow at the last rate.
	if remaining.IsPositive() {
		lastRate := r.personalBrackets[len(r.personalBrackets)-1].Rate
		tax := roundMoney(remaining.Mul(lastRate).Div(oneHundred))
		total = total.Add(tax)
		breakdown = append(breakdown, BracketTax{Rate: lastRate, Taxable: remaining, Tax: tax})
	}

	return PersonalResult{
		TotalTax:  total,
		NetIncome: annualIncome.Sub(total),
		Breakdown: breakdown,
	}, nil
}

// roundMoney rounds half away from zero to two decimal places. Never
// truncation, never banker's rounding.
func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
