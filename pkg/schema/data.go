package schema

import (
	"fmt"
	"sort"
	"strings"
)

// FormData is an instance-data snapshot keyed by schema-validated cell ids.
// The engine never mutates a FormData it was handed; operations that produce
// values return fresh maps for the caller to merge.
type FormData map[CellID]string

// UnknownCellError reports ids present in raw input that the schema does not
// declare. Rejecting them at the boundary keeps a typo from silently
// dropping a value.
type UnknownCellError struct {
	FormID string
	IDs    []CellID
}

func (e *UnknownCellError) Error() string {
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = string(id)
	}
	return fmt.Sprintf("schema %s: unknown cell ids: %s", e.FormID, strings.Join(ids, ", "))
}

// ParseData converts a raw string map into FormData against the schema. All
// known ids are kept; unknown ids are returned sorted so callers can report
// every typo at once. The returned map is always usable, even when unknown
// ids were found.
func ParseData(s *FormSchema, raw map[string]string) (FormData, []CellID) {
	data := make(FormData, len(raw))
	var unknown []CellID
	for key, value := range raw {
		id := CellID(key)
		if _, ok := s.CellByID(id); !ok {
			unknown = append(unknown, id)
			continue
		}
		data[id] = value
	}
	sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })
	return data, unknown
}

// Clone returns a shallow copy of the data map.
func (d FormData) Clone() FormData {
	out := make(FormData, len(d))
	for id, value := range d {
		out[id] = value
	}
	return out
}
