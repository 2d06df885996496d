package tax

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed rates.yaml
var defaultRatesYAML []byte

// Bracket is one progressive income tax band. Upper is nil for the final,
// unbounded band.
type Bracket struct {
	Rate  decimal.Decimal
	Lower decimal.Decimal
	Upper *decimal.Decimal
}

// Rates is the statutory rate table all calculations read from. It is
// immutable after load and safe for concurrent use.
type Rates struct {
	vatPermitted            []decimal.Decimal
	corporateRegimes        map[string]decimal.Decimal
	smallBusinessRevenueCap decimal.Decimal
	personalBrackets        []Bracket
}

type ratesDoc struct {
	VAT struct {
		PermittedRates []string `yaml:"permitted_rates"`
	} `yaml:"vat"`
	Corporate struct {
		Regimes                 map[string]string `yaml:"regimes"`
		SmallBusinessRevenueCap string            `yaml:"small_business_revenue_cap"`
	} `yaml:"corporate"`
	Personal struct {
		Brackets []struct {
			Rate  string `yaml:"rate"`
			Lower string `yaml:"lower"`
			Upper string `yaml:"upper"`
		} `yaml:"brackets"`
	} `yaml:"personal"`
}

// LoadRates decodes and validates a YAML rate table.
func LoadRates(r io.Reader) (*Rates, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("tax: read rate table: %w", err)
	}
	return parseRates(raw)
}

func parseRates(raw []byte) (*Rates, error) {
	var doc ratesDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("tax: decode rate table: %w", err)
	}

	rates := &Rates{
		corporateRegimes: make(map[string]decimal.Decimal, len(doc.Corporate.Regimes)),
	}

	for _, s := range doc.VAT.PermittedRates {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("tax: vat rate %q: %w", s, err)
		}
		rates.vatPermitted = append(rates.vatPermitted, d)
	}
	if len(rates.vatPermitted) == 0 {
		return nil, errors.New("tax: rate table declares no permitted VAT rates")
	}

	for regime, s := range doc.Corporate.Regimes {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("tax: corporate regime %q rate %q: %w", regime, s, err)
		}
		rates.corporateRegimes[regime] = d
	}
	if _, ok := rates.corporateRegimes[RegimeStandard]; !ok {
		return nil, errors.New("tax: rate table must declare the standard corporate regime")
	}
	if doc.Corporate.SmallBusinessRevenueCap != "" {
		revenueCap, err := decimal.NewFromString(doc.Corporate.SmallBusinessRevenueCap)
		if err != nil {
			return nil, fmt.Errorf("tax: small business revenue cap: %w", err)
		}
		rates.smallBusinessRevenueCap = revenueCap
	}

	for i, b := range doc.Personal.Brackets {
		rate, err := decimal.NewFromString(b.Rate)
		if err != nil {
			return nil, fmt.Errorf("tax: bracket %d rate: %w", i, err)
		}
		lower, err := decimal.NewFromString(b.Lower)
		if err != nil {
			return nil, fmt.Errorf("tax: bracket %d lower bound: %w", i, err)
		}
		bracket := Bracket{Rate: rate, Lower: lower}
		if b.Upper != "" {
			upper, err := decimal.NewFromString(b.Upper)
			if err != nil {
				return nil, fmt.Errorf("tax: bracket %d upper bound: %w", i, err)
			}
			bracket.Upper = &upper
		}
		rates.personalBrackets = append(rates.personalBrackets, bracket)
	}
	if err := validateBrackets(rates.personalBrackets); err != nil {
		return nil, err
	}

	return rates, nil
}

// Brackets must be ascending and contiguous-or-gapless enough to be
// non-overlapping; only the last may be unbounded.
func validateBrackets(brackets []Bracket) error {
	if len(brackets) == 0 {
		return errors.New("tax: rate table declares no personal income brackets")
	}
	for i, b := range brackets {
		last := i == len(brackets)-1
		if b.Upper == nil {
			if !last {
				return fmt.Errorf("tax: bracket %d is unbounded but not last", i)
			}
			continue
		}
		if !b.Upper.GreaterThan(b.Lower) {
			return fmt.Errorf("tax: bracket %d upper bound must exceed its lower bound", i)
		}
		if !last && !brackets[i+1].Lower.Equal(*b.Upper) {
			return fmt.Errorf("tax: bracket %d upper bound does not meet bracket %d lower bound", i, i+1)
		}
	}
	return nil
}

var (
	defaultOnce  sync.Once
	defaultRates *Rates
	defaultErr   error
)

// Default returns the embedded statutory rate table, parsed once per
// process.
func Default() (*Rates, error) {
	defaultOnce.Do(func() {
		defaultRates, defaultErr = parseRates(defaultRatesYAML)
	})
	return defaultRates, defaultErr
}

// PersonalBrackets exposes a copy of the progressive income bands, mostly
// for callers rendering the table.
func (r *Rates) PersonalBrackets() []Bracket {
	out := make([]Bracket, len(r.personalBrackets))
	copy(out, r.personalBrackets)
	return out
}

// SmallBusinessRevenueCap is the revenue ceiling under which the small
// business regime applies. Zero when the table does not declare one.
func (r *Rates) SmallBusinessRevenueCap() decimal.Decimal {
	return r.smallBusinessRevenueCap
}

// CorporateRate returns the percentage for a regime name.
func (r *Rates) CorporateRate(regime string) (decimal.Decimal, bool) {
	rate, ok := r.corporateRegimes[regime]
	return rate, ok
}
