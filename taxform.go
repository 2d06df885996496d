// Package taxform re-exports the public surface of the form template and
// tax computation engine so callers can depend on a single import path.
package taxform

import (
	"github.com/goliatone/go-taxform/pkg/engine"
	"github.com/goliatone/go-taxform/pkg/rules"
	"github.com/goliatone/go-taxform/pkg/schema"
	"github.com/goliatone/go-taxform/pkg/store"
	"github.com/goliatone/go-taxform/pkg/validate"
)

// Engine is the main entry point; see pkg/engine.
type Engine = engine.Engine

// Option customises an Engine.
type Option = engine.Option

// New constructs an Engine over a schema store.
func New(st *store.Store, options ...Option) (*Engine, error) {
	return engine.New(st, options...)
}

// Re-exported engine options.
var (
	WithRates      = engine.WithRates
	WithSerializer = engine.WithSerializer
	WithLogger     = engine.WithLogger
)

// Core data types.
type (
	FormSchema      = schema.FormSchema
	Section         = schema.Section
	Cell            = schema.Cell
	CellID          = schema.CellID
	FormData        = schema.FormData
	ControlType     = schema.ControlType
	CalculationRule = rules.CalculationRule
	Result          = validate.Result
	Finding         = validate.Finding
)

// Store construction.
var NewStore = store.New
