package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseControlCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code int
		want ControlType
	}{
		{0, ControlText},
		{2, ControlBoolean},
		{6, ControlDropdown},
		{14, ControlDate},
		{16, ControlNumeric},
		{26, ControlHidden},
		{100, ControlDropdown},
		{101, ControlDependentDropdown},
	}
	for _, tc := range cases {
		got, err := ParseControlCode(tc.code)
		if err != nil {
			t.Fatalf("code %d: %v", tc.code, err)
		}
		if got != tc.want {
			t.Fatalf("code %d: got %q, want %q", tc.code, got, tc.want)
		}
	}

	if _, err := ParseControlCode(42); err == nil {
		t.Fatalf("expected error for unknown control code")
	}
}

func TestSupportsConstraints(t *testing.T) {
	t.Parallel()

	if !ControlText.SupportsConstraints() || !ControlNumeric.SupportsConstraints() {
		t.Fatalf("text and numeric cells accept constraints")
	}
	for _, c := range []ControlType{ControlBoolean, ControlDropdown, ControlDate, ControlHidden, ControlDependentDropdown} {
		if c.SupportsConstraints() {
			t.Fatalf("control type %q must not accept constraints", c)
		}
	}
}

func TestNewFormSchemaRejectsDuplicateCellIDsAcrossSections(t *testing.T) {
	t.Parallel()

	sections := []Section{
		{Title: "a", Cells: []Cell{{ID: "ct01", Control: ControlText}}},
		{Title: "b", Cells: []Cell{{ID: "ct01", Control: ControlNumeric}}},
	}
	_, err := NewFormSchema("01/GTGT", "1.0", sections)
	if err == nil {
		t.Fatalf("expected duplicate cell id error")
	}
	dup, ok := err.(*DuplicateCellError)
	if !ok {
		t.Fatalf("expected *DuplicateCellError, got %T", err)
	}
	if dup.CellID != "ct01" {
		t.Fatalf("got duplicate id %q, want ct01", dup.CellID)
	}
}

func TestCellsPreservesDeclarationOrder(t *testing.T) {
	t.Parallel()

	s, err := NewFormSchema("01/GTGT", "1.0", []Section{
		{Cells: []Cell{{ID: "b"}, {ID: "a"}}},
		{Cells: []Cell{{ID: "c"}}},
	})
	if err != nil {
		t.Fatalf("new schema: %v", err)
	}

	var got []CellID
	for _, cell := range s.Cells() {
		got = append(got, cell.ID)
	}
	want := []CellID{"b", "a", "c"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("cell order mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDataRejectsUnknownIDs(t *testing.T) {
	t.Parallel()

	s, err := NewFormSchema("01/GTGT", "1.0", []Section{
		{Cells: []Cell{{ID: "ct30", Control: ControlNumeric}}},
	})
	if err != nil {
		t.Fatalf("new schema: %v", err)
	}

	data, unknown := ParseData(s, map[string]string{
		"ct30": "100",
		"zzz":  "1",
		"aaa":  "2",
	})
	if diff := cmp.Diff(FormData{"ct30": "100"}, data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]CellID{"aaa", "zzz"}, unknown); diff != "" {
		t.Fatalf("unknown ids mismatch (-want +got):\n%s", diff)
	}
}

func TestFamilyOf(t *testing.T) {
	t.Parallel()

	cases := map[string]FormFamily{
		"01/GTGT":  FamilyVAT,
		"D1-KHUNG": FamilyVAT,
		"03/TNDN":  FamilyCorporate,
		"02/TNCN":  FamilyPersonal,
		"05/TNMT":  FamilyOther,
	}
	for formID, want := range cases {
		if got := FamilyOf(formID); got != want {
			t.Fatalf("FamilyOf(%q) = %q, want %q", formID, got, want)
		}
	}
}
