// taxform-cli drives the engine from the command line: validate a data file
// against a form template, compute derived figures, export the declaration
// document, or fill a data file interactively.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// exit codes: 1 for validation findings, 2 for structural errors (missing
// or malformed templates, rule tables, cycles).
const (
	exitFindings   = 1
	exitStructural = 2
)

var flags struct {
	templatePath string
	rulesPath    string
	dataPath     string
	formID       string
	output       string
	verbose      bool
}

func main() {
	root := &cobra.Command{
		Use:           "taxform-cli",
		Short:         "Validate, compute and export tax declaration forms",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.templatePath, "template", "", "path to the form template XML (required)")
	root.PersistentFlags().StringVar(&flags.rulesPath, "rules", "", "path to the MapMCT rule table XML")
	root.PersistentFlags().StringVar(&flags.formID, "form", "", "form id, e.g. 01/GTGT (required)")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newValidateCmd(), newCalcCmd(), newExportCmd(), newFillCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "taxform-cli:", err)
		os.Exit(exitStructural)
	}
}

func newLogger() (*zap.Logger, error) {
	if !flags.verbose {
		return zap.NewNop(), nil
	}
	cfg := zap.NewDevelopmentConfig()
	return cfg.Build()
}
