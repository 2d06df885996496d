// Package rules resolves the per-form business-rule table (MapMCT) into
// typed calculation rules and guards the rule dependency graph.
package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/goliatone/go-taxform/internal/xmlutil"
	"github.com/goliatone/go-taxform/pkg/schema"
)

// Adjustment is the direction a rule's target moves the aggregate it feeds.
type Adjustment string

const (
	AdjustmentIncrease Adjustment = "increase"
	AdjustmentDecrease Adjustment = "decrease"
)

// CalculationRule links a cell to its calculation token and the cells its
// value is derived from. DependsOn is calculation dependency; dropdown
// linkage lives on the schema cell instead.
type CalculationRule struct {
	CellID     schema.CellID
	MCT        string
	Adjustment Adjustment
	DependsOn  []schema.CellID
	Caption    string
}

// ErrRuleTableNotFound signals that the rule table resource itself is
// missing. A form with no entries in an existing table is not an error.
var ErrRuleTableNotFound = errors.New("rules: rule table not found")

// CycleError reports a dependency cycle in a form's rule graph. Cycles are a
// schema-integrity defect and are detected when the table loads.
type CycleError struct {
	FormID string
	Cells  []schema.CellID
}

func (e *CycleError) Error() string {
	ids := make([]string, len(e.Cells))
	for i, id := range e.Cells {
		ids[i] = string(id)
	}
	return fmt.Sprintf("rules %s: dependency cycle involving cells %s", e.FormID, strings.Join(ids, ", "))
}

// Resolve extracts the calculation rules declared for formID from the raw
// rule table. A form absent from the table yields an empty, valid rule set.
func Resolve(table []byte, formID string) ([]CalculationRule, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(table); err != nil {
		return nil, fmt.Errorf("rules: invalid rule table XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, errors.New("rules: rule table has no root element")
	}

	var formMap *etree.Element
	for _, mapEl := range root.SelectElements("Map") {
		if xmlutil.Attr(mapEl, "ID", "") == formID {
			formMap = mapEl
			break
		}
	}
	if formMap == nil {
		return nil, nil
	}

	var out []CalculationRule
	for _, item := range formMap.SelectElements("Item") {
		cellID := schema.CellID(xmlutil.Attr(item, "CellID", ""))
		if cellID == "" {
			continue
		}
		rule := CalculationRule{
			CellID:     cellID,
			MCT:        xmlutil.Attr(item, "MCT", ""),
			Adjustment: AdjustmentDecrease,
			Caption:    xmlutil.Attr(item, "Caption", ""),
		}
		if xmlutil.BoolAttr(item, "DieuChinhTang") {
			rule.Adjustment = AdjustmentIncrease
		}
		for _, dep := range strings.Split(xmlutil.Attr(item, "Depends", ""), ",") {
			dep = strings.TrimSpace(dep)
			if dep != "" {
				rule.DependsOn = append(rule.DependsOn, schema.CellID(dep))
			}
		}
		out = append(out, rule)
	}

	if err := CheckAcyclic(formID, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Index builds the cell-id → rule lookup used by the validation engine.
// Later duplicates win, matching the original table semantics.
func Index(ruleList []CalculationRule) map[schema.CellID]CalculationRule {
	out := make(map[schema.CellID]CalculationRule, len(ruleList))
	for _, rule := range ruleList {
		out[rule.CellID] = rule
	}
	return out
}
