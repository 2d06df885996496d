package rules_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-taxform/pkg/rules"
	"github.com/goliatone/go-taxform/pkg/schema"
	"github.com/goliatone/go-taxform/pkg/testsupport"
)

func TestResolveBuildsRuleList(t *testing.T) {
	t.Parallel()

	got, err := rules.Resolve([]byte(testsupport.RuleTable), testsupport.VATFormID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("rules = %d, want 5", len(got))
	}

	byCell := rules.Index(got)
	ct36, ok := byCell["ct36"]
	if !ok {
		t.Fatalf("ct36 rule not indexed")
	}
	if ct36.Adjustment != rules.AdjustmentIncrease {
		t.Fatalf("ct36 adjustment = %q, want increase", ct36.Adjustment)
	}
	if diff := cmp.Diff([]schema.CellID{"ct35", "ct24"}, ct36.DependsOn); diff != "" {
		t.Fatalf("ct36 dependencies mismatch (-want +got):\n%s", diff)
	}

	ct24 := byCell["ct24"]
	if ct24.Adjustment != rules.AdjustmentDecrease {
		t.Fatalf("ct24 adjustment = %q, want decrease", ct24.Adjustment)
	}
}

func TestResolveFormWithoutEntriesIsEmptyNotError(t *testing.T) {
	t.Parallel()

	got, err := rules.Resolve([]byte(testsupport.RuleTable), "03/TNDN")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("rules = %d, want none", len(got))
	}
}

func TestResolveRejectsCycleAtLoadTime(t *testing.T) {
	t.Parallel()

	_, err := rules.Resolve([]byte(testsupport.CyclicRuleTable), testsupport.VATFormID)
	if err == nil {
		t.Fatalf("expected cycle error")
	}
	var cycle *rules.CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("expected *CycleError, got %T: %v", err, err)
	}
	if diff := cmp.Diff([]schema.CellID{"ctA", "ctB"}, cycle.Cells); diff != "" {
		t.Fatalf("cycle cells mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveRejectsMalformedTable(t *testing.T) {
	t.Parallel()

	if _, err := rules.Resolve([]byte(`<MapMCT`), testsupport.VATFormID); err == nil {
		t.Fatalf("expected error for malformed table")
	}
}

func TestTopoOrderReachableSubgraphOnly(t *testing.T) {
	t.Parallel()

	ruleList := testsupport.MustRules(t, testsupport.RuleTable, testsupport.VATFormID)

	order, err := rules.TopoOrder(testsupport.VATFormID, ruleList, "ct31")
	if err != nil {
		t.Fatalf("topo order: %v", err)
	}
	if diff := cmp.Diff([]schema.CellID{"ct35", "ct36"}, order); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}

	// ct30 feeds nothing in the rule graph
	order, err = rules.TopoOrder(testsupport.VATFormID, ruleList, "ct30")
	if err != nil {
		t.Fatalf("topo order: %v", err)
	}
	if len(order) != 0 {
		t.Fatalf("order = %v, want empty", order)
	}
}

func TestTopoOrderDetectsCycleInReachableSubgraph(t *testing.T) {
	t.Parallel()

	ruleList := []rules.CalculationRule{
		{CellID: "a", Adjustment: rules.AdjustmentIncrease, DependsOn: []schema.CellID{"b", "x"}},
		{CellID: "b", Adjustment: rules.AdjustmentIncrease, DependsOn: []schema.CellID{"a"}},
	}

	_, err := rules.TopoOrder("01/GTGT", ruleList, "x")
	var cycle *rules.CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("expected *CycleError, got %T: %v", err, err)
	}
}
