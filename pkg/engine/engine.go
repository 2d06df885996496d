// Package engine exposes the form template and tax computation operations
// behind a single facade. All operations are synchronous pure functions over
// the cached schema data; the only shared mutable state is the store's
// cache.
package engine

import (
	"errors"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/goliatone/go-taxform/pkg/calc"
	"github.com/goliatone/go-taxform/pkg/document"
	"github.com/goliatone/go-taxform/pkg/rules"
	"github.com/goliatone/go-taxform/pkg/schema"
	"github.com/goliatone/go-taxform/pkg/store"
	"github.com/goliatone/go-taxform/pkg/tax"
	"github.com/goliatone/go-taxform/pkg/validate"
)

// Option customises the engine configuration.
type Option func(*Engine)

// WithRates overrides the statutory rate table.
func WithRates(rates *tax.Rates) Option {
	return func(e *Engine) {
		if rates != nil {
			e.rates = rates
		}
	}
}

// WithSerializer overrides the export document serializer, typically to fix
// the signing date in tests.
func WithSerializer(s *document.Serializer) Option {
	return func(e *Engine) {
		if s != nil {
			e.serializer = s
		}
	}
}

// WithLogger injects a structured logger. The default is a nop logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// Engine coordinates parsing, validation, computation and export over one
// schema store.
type Engine struct {
	store      *store.Store
	rates      *tax.Rates
	serializer *document.Serializer
	log        *zap.Logger
}

// New constructs an Engine over a store. The embedded statutory rate table
// is used unless WithRates overrides it.
func New(st *store.Store, options ...Option) (*Engine, error) {
	if st == nil {
		return nil, errors.New("engine: store is required")
	}

	rates, err := tax.Default()
	if err != nil {
		return nil, err
	}

	e := &Engine{
		store:      st,
		rates:      rates,
		serializer: document.New(),
		log:        zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	return e, nil
}

// ParseTemplate returns the parsed schema for a form id.
func (e *Engine) ParseTemplate(formID string) (*schema.FormSchema, error) {
	return e.store.Schema(formID)
}

// BusinessRules returns the calculation rules declared for a form id. Forms
// without entries resolve to an empty rule set.
func (e *Engine) BusinessRules(formID string) ([]rules.CalculationRule, error) {
	return e.store.Rules(formID)
}

// Validate checks raw instance data against the form's schema and rules.
// Every finding is collected into the result; only structural failures of
// the schema data itself (missing template, malformed table, cycles) return
// an error.
func (e *Engine) Validate(formID string, raw map[string]string) (*validate.Result, error) {
	formSchema, ruleList, err := e.load(formID)
	if err != nil {
		return nil, err
	}

	data, unknown := schema.ParseData(formSchema, raw)
	result := &validate.Result{}
	for _, id := range unknown {
		result.AddError(id, "cell is not declared by the form schema", validate.KindUnknownField)
	}

	passes := validate.Validate(formSchema, ruleList, data)
	result.Errors = append(result.Errors, passes.Errors...)
	result.Warnings = append(result.Warnings, passes.Warnings...)

	e.log.Debug("validation completed",
		zap.String("form_id", formID),
		zap.Bool("valid", result.IsValid()),
		zap.Int("errors", len(result.Errors)),
		zap.Int("warnings", len(result.Warnings)))
	return result, nil
}

// Recompute re-evaluates every cell derived from the changed cell and
// returns a fresh data map with the recomputed values applied. Unknown cell
// ids are rejected: a typo here would silently skew figures.
func (e *Engine) Recompute(formID, changed string, raw map[string]string) (map[string]string, error) {
	formSchema, ruleList, err := e.load(formID)
	if err != nil {
		return nil, err
	}

	data, unknown := schema.ParseData(formSchema, raw)
	if len(unknown) > 0 {
		return nil, &schema.UnknownCellError{FormID: formID, IDs: unknown}
	}

	out, err := calc.Recompute(formSchema, ruleList, schema.CellID(changed), data)
	if err != nil {
		return nil, err
	}
	return toStringMap(out), nil
}

// CalculateTax derives the form family's computed figures from the data.
func (e *Engine) CalculateTax(formID string, raw map[string]string) (map[string]decimal.Decimal, error) {
	formSchema, _, err := e.load(formID)
	if err != nil {
		return nil, err
	}

	data, unknown := schema.ParseData(formSchema, raw)
	if len(unknown) > 0 {
		return nil, &schema.UnknownCellError{FormID: formID, IDs: unknown}
	}

	computed, err := calc.CalculateTax(formID, e.rates, data)
	if err != nil {
		return nil, err
	}
	out := make(map[string]decimal.Decimal, len(computed))
	for id, value := range computed {
		out[string(id)] = value
	}
	return out, nil
}

// Export serializes the data onto the mandated document tree. The caller
// owns turning the tree into its wire format.
func (e *Engine) Export(formID string, raw map[string]string) (*etree.Document, error) {
	formSchema, _, err := e.load(formID)
	if err != nil {
		return nil, err
	}

	data, unknown := schema.ParseData(formSchema, raw)
	if len(unknown) > 0 {
		return nil, &schema.UnknownCellError{FormID: formID, IDs: unknown}
	}

	return e.serializer.Serialize(formSchema, data)
}

// load fetches schema and rules together; a rule table that is merely empty
// for this form is fine, a missing or cyclic one is not.
func (e *Engine) load(formID string) (*schema.FormSchema, []rules.CalculationRule, error) {
	formSchema, err := e.store.Schema(formID)
	if err != nil {
		return nil, nil, err
	}
	ruleList, err := e.store.Rules(formID)
	if err != nil {
		return nil, nil, err
	}
	return formSchema, ruleList, nil
}

func toStringMap(data schema.FormData) map[string]string {
	out := make(map[string]string, len(data))
	for id, value := range data {
		out[string(id)] = value
	}
	return out
}
