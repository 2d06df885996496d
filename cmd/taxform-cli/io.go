package main

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-taxform/pkg/engine"
	"github.com/goliatone/go-taxform/pkg/store"
)

// buildEngine resolves the template and rule table files into an engine.
// The rule table is optional; rule-dependent commands fail later with a
// rule-table error if it is needed but absent.
func buildEngine(log *zap.Logger) (*engine.Engine, error) {
	if flags.formID == "" {
		return nil, errors.New("--form is required")
	}
	if flags.templatePath == "" {
		return nil, errors.New("--template is required")
	}

	template, err := os.ReadFile(flags.templatePath)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	templates := store.MapTemplateSource{flags.formID: template}

	var ruleTable store.BytesRuleSource
	if flags.rulesPath != "" {
		raw, err := os.ReadFile(flags.rulesPath)
		if err != nil {
			return nil, fmt.Errorf("read rule table: %w", err)
		}
		ruleTable = raw
	} else {
		// an empty table is a present-but-ruleless resource
		ruleTable = []byte(`<MapMCT/>`)
	}

	st, err := store.New(templates, ruleTable, store.WithLogger(log))
	if err != nil {
		return nil, err
	}
	return engine.New(st, engine.WithLogger(log))
}

// readData loads a YAML data file of cell id to value mappings.
func readData(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}
	var out map[string]string
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode data file: %w", err)
	}
	if out == nil {
		out = map[string]string{}
	}
	return out, nil
}

// writeOutput writes to the output file, or stdout when none is set.
func writeOutput(path string, content []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(content)
		return err
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Printf("written to %s\n", path)
	return nil
}
