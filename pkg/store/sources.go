package store

import (
	"errors"
	"fmt"
	"io/fs"
)

// MapTemplateSource serves templates from an in-memory map, keyed by form
// id. Useful for tests and for callers that resolve bytes themselves.
type MapTemplateSource map[string][]byte

// Template implements TemplateSource.
func (m MapTemplateSource) Template(formID string) ([]byte, error) {
	raw, ok := m[formID]
	if !ok {
		return nil, fmt.Errorf("%w: template %s", ErrNotFound, formID)
	}
	return raw, nil
}

// BytesRuleSource serves a rule table held in memory. A nil slice means the
// table resource is missing.
type BytesRuleSource []byte

// RuleTable implements RuleSource.
func (b BytesRuleSource) RuleTable() ([]byte, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: rule table", ErrNotFound)
	}
	return b, nil
}

// FSSource serves templates and the rule table from a file system subtree:
// templates at "<formID>.xml" (slashes in the id replaced by "_") and the
// rule table at RuleTableName.
type FSSource struct {
	FS            fs.FS
	RuleTableName string
}

// Template implements TemplateSource.
func (s FSSource) Template(formID string) ([]byte, error) {
	raw, err := fs.ReadFile(s.FS, templateFileName(formID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: template %s", ErrNotFound, formID)
	}
	return raw, err
}

// RuleTable implements RuleSource.
func (s FSSource) RuleTable() ([]byte, error) {
	name := s.RuleTableName
	if name == "" {
		name = "MapMCT.xml"
	}
	raw, err := fs.ReadFile(s.FS, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: rule table %s", ErrNotFound, name)
	}
	return raw, err
}

func templateFileName(formID string) string {
	out := make([]byte, len(formID))
	for i := 0; i < len(formID); i++ {
		if formID[i] == '/' {
			out[i] = '_'
		} else {
			out[i] = formID[i]
		}
	}
	return string(out) + ".xml"
}
