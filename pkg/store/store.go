// Package store caches parsed form schemas and resolved rule tables per
// form id. Raw bytes come from caller-supplied sources; the store performs
// no file system or network access of its own.
package store

import (
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/goliatone/go-taxform/pkg/rules"
	"github.com/goliatone/go-taxform/pkg/schema"
	"github.com/goliatone/go-taxform/pkg/schema/parser"
)

const defaultCacheSize = 128

// ErrNotFound is the sentinel sources return when a resource does not
// exist. The store translates it into the typed errors below.
var ErrNotFound = errors.New("store: resource not found")

// SchemaNotFoundError reports a form id with no template behind it.
type SchemaNotFoundError struct {
	FormID string
}

func (e *SchemaNotFoundError) Error() string {
	return fmt.Sprintf("store: no template for form %q", e.FormID)
}

// TemplateSource supplies raw template bytes for a form id.
type TemplateSource interface {
	Template(formID string) ([]byte, error)
}

// RuleSource supplies the raw business-rule table shared by all forms.
type RuleSource interface {
	RuleTable() ([]byte, error)
}

// Option customises a Store.
type Option func(*Store)

// WithLogger injects a structured logger. The default is a nop logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithCacheSize bounds the number of cached schemas and rule sets.
func WithCacheSize(size int) Option {
	return func(s *Store) {
		if size > 0 {
			s.cacheSize = size
		}
	}
}

// Store is the only shared mutable piece of the engine. Cache reads and
// writes are safe under concurrent access; two callers racing on the same
// uncached form id may both parse, and either result wins the slot.
type Store struct {
	templates TemplateSource
	ruleTable RuleSource
	cacheSize int
	log       *zap.Logger

	schemas *lru.Cache[string, *schema.FormSchema]
	rules   *lru.Cache[string, []rules.CalculationRule]
}

// New constructs a Store over the given sources.
func New(templates TemplateSource, ruleTable RuleSource, options ...Option) (*Store, error) {
	if templates == nil {
		return nil, errors.New("store: template source is required")
	}
	s := &Store{
		templates: templates,
		ruleTable: ruleTable,
		cacheSize: defaultCacheSize,
		log:       zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}

	var err error
	if s.schemas, err = lru.New[string, *schema.FormSchema](s.cacheSize); err != nil {
		return nil, fmt.Errorf("store: schema cache: %w", err)
	}
	if s.rules, err = lru.New[string, []rules.CalculationRule](s.cacheSize); err != nil {
		return nil, fmt.Errorf("store: rule cache: %w", err)
	}
	return s, nil
}

// Schema returns the parsed schema for formID, parsing and caching it on
// first use.
func (s *Store) Schema(formID string) (*schema.FormSchema, error) {
	if cached, ok := s.schemas.Get(formID); ok {
		return cached, nil
	}

	raw, err := s.templates.Template(formID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &SchemaNotFoundError{FormID: formID}
		}
		return nil, fmt.Errorf("store: load template %s: %w", formID, err)
	}

	parsed, err := parser.ParseTemplate(formID, raw)
	if err != nil {
		return nil, err
	}

	s.schemas.Add(formID, parsed)
	s.log.Debug("schema parsed and cached",
		zap.String("form_id", formID),
		zap.String("version", parsed.Version),
		zap.Int("sections", len(parsed.Sections)))
	return parsed, nil
}

// Rules returns the calculation rules for formID. A form with no entries in
// the table resolves to an empty rule set; a missing table resource is an
// error.
func (s *Store) Rules(formID string) ([]rules.CalculationRule, error) {
	if cached, ok := s.rules.Get(formID); ok {
		return cached, nil
	}

	if s.ruleTable == nil {
		return nil, fmt.Errorf("%w: no rule source configured", rules.ErrRuleTableNotFound)
	}
	raw, err := s.ruleTable.RuleTable()
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", rules.ErrRuleTableNotFound, err)
		}
		return nil, fmt.Errorf("store: load rule table: %w", err)
	}

	resolved, err := rules.Resolve(raw, formID)
	if err != nil {
		return nil, err
	}

	s.rules.Add(formID, resolved)
	s.log.Debug("rules resolved and cached",
		zap.String("form_id", formID),
		zap.Int("rules", len(resolved)))
	return resolved, nil
}

// Invalidate drops the cached schema and rules for one form id.
func (s *Store) Invalidate(formID string) {
	s.schemas.Remove(formID)
	s.rules.Remove(formID)
}

// InvalidateAll drops every cached entry.
func (s *Store) InvalidateAll() {
	s.schemas.Purge()
	s.rules.Purge()
}
