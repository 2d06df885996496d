package engine_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-taxform/pkg/document"
	"github.com/goliatone/go-taxform/pkg/engine"
	"github.com/goliatone/go-taxform/pkg/rules"
	"github.com/goliatone/go-taxform/pkg/schema"
	"github.com/goliatone/go-taxform/pkg/store"
	"github.com/goliatone/go-taxform/pkg/testsupport"
	"github.com/goliatone/go-taxform/pkg/validate"
)

func newEngine(t *testing.T, options ...engine.Option) *engine.Engine {
	t.Helper()

	st, err := store.New(
		store.MapTemplateSource{
			testsupport.VATFormID:       []byte(testsupport.VATTemplate),
			testsupport.CorporateFormID: []byte(testsupport.CorporateTemplate),
			testsupport.PersonalFormID:  []byte(testsupport.PersonalTemplate),
		},
		store.BytesRuleSource(testsupport.RuleTable),
	)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	e, err := engine.New(st, options...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e
}

func TestValidateCollectsAllFindings(t *testing.T) {
	t.Parallel()

	e := newEngine(t)

	result, err := e.Validate(testsupport.VATFormID, map[string]string{
		"ct32":    "1000000",
		"ct33":    "50000",
		"mystery": "1",
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if result.IsValid() {
		t.Fatalf("expected findings")
	}
	if len(result.Errors) != 2 {
		t.Fatalf("errors = %v, want 2", result.Errors)
	}

	// unknown ids come first, then the schema and domain passes
	first := result.Errors[0]
	if first.Field != "mystery" || first.Kind != validate.KindUnknownField {
		t.Fatalf("first error = %+v, want unknown field mystery", first)
	}
	second := result.Errors[1]
	if second.Field != "ct33" || !strings.Contains(second.Message, "expected 100000.00, actual 50000.00") {
		t.Fatalf("second error = %+v, want the VAT mismatch", second)
	}
}

func TestValidateUnknownForm(t *testing.T) {
	t.Parallel()

	e := newEngine(t)

	_, err := e.Validate("99/NOPE", nil)
	var notFound *store.SchemaNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected *SchemaNotFoundError, got %T: %v", err, err)
	}
}

func TestRecomputeEndToEnd(t *testing.T) {
	t.Parallel()

	e := newEngine(t)

	got, err := e.Recompute(testsupport.VATFormID, "ct31", map[string]string{
		"ct31": "100",
		"ct33": "50",
		"ct24": "30",
	})
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}

	want := map[string]string{
		"ct31": "100",
		"ct33": "50",
		"ct24": "30",
		"ct35": "150",
		"ct36": "120",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("recomputed data mismatch (-want +got):\n%s", diff)
	}
}

func TestRecomputeRejectsUnknownCells(t *testing.T) {
	t.Parallel()

	e := newEngine(t)

	_, err := e.Recompute(testsupport.VATFormID, "ct31", map[string]string{
		"ct31": "100",
		"typo": "1",
	})
	var unknown *schema.UnknownCellError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected *UnknownCellError, got %T: %v", err, err)
	}
	if len(unknown.IDs) != 1 || unknown.IDs[0] != "typo" {
		t.Fatalf("unknown ids = %v, want [typo]", unknown.IDs)
	}
}

func TestRecomputeSurfacesCycles(t *testing.T) {
	t.Parallel()

	st, err := store.New(
		store.MapTemplateSource{testsupport.VATFormID: []byte(testsupport.VATTemplate)},
		store.BytesRuleSource(testsupport.CyclicRuleTable),
	)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	e, err := engine.New(st)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	_, err = e.Recompute(testsupport.VATFormID, "ct31", map[string]string{"ct31": "1"})
	var cycle *rules.CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("expected *CycleError, got %T: %v", err, err)
	}
}

func TestCalculateTaxEndToEnd(t *testing.T) {
	t.Parallel()

	e := newEngine(t)

	figures, err := e.CalculateTax(testsupport.VATFormID, map[string]string{
		"ct30": "1000000",
		"ct24": "20000",
	})
	if err != nil {
		t.Fatalf("calculate tax: %v", err)
	}

	if got := figures["ct31"]; got.String() != "50000" {
		t.Fatalf("ct31 = %s, want 50000", got)
	}
	if got := figures["ct36"]; got.String() != "30000" {
		t.Fatalf("ct36 = %s, want 30000", got)
	}
}

func TestExportRoundTrip(t *testing.T) {
	t.Parallel()

	signed := time.Date(2026, time.January, 20, 0, 0, 0, 0, time.UTC)
	e := newEngine(t, engine.WithSerializer(document.New(document.WithSigningDate(signed))))

	input := map[string]string{
		"mst":  "0312345678",
		"ct30": "1000000",
		"ct31": "50000.00",
	}
	doc, err := e.Export(testsupport.VATFormID, input)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	formSchema, err := e.ParseTemplate(testsupport.VATFormID)
	if err != nil {
		t.Fatalf("parse template: %v", err)
	}
	got, err := document.Extract(doc, formSchema)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	want := schema.FormData{"mst": "0312345678", "ct30": "1000000", "ct31": "50000.00"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	if el := doc.FindElement("//ngayKy"); el == nil || el.Text() != "20/01/2026" {
		t.Fatalf("signing date element = %v", el)
	}
}

func TestExportRejectsUnknownCells(t *testing.T) {
	t.Parallel()

	e := newEngine(t)

	_, err := e.Export(testsupport.VATFormID, map[string]string{"nope": "1"})
	var unknown *schema.UnknownCellError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected *UnknownCellError, got %T: %v", err, err)
	}
}

func TestBusinessRulesEmptyForUnruledForm(t *testing.T) {
	t.Parallel()

	e := newEngine(t)

	ruleList, err := e.BusinessRules(testsupport.PersonalFormID)
	if err != nil {
		t.Fatalf("business rules: %v", err)
	}
	if len(ruleList) != 0 {
		t.Fatalf("rules = %v, want none", ruleList)
	}
}
