package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a data file against the form schema and rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			eng, err := buildEngine(log)
			if err != nil {
				return err
			}
			data, err := readData(flags.dataPath)
			if err != nil {
				return err
			}

			result, err := eng.Validate(flags.formID, data)
			if err != nil {
				return err
			}

			for _, w := range result.Warnings {
				fmt.Printf("warning  %-12s %s\n", w.Field, w.Message)
			}
			for _, e := range result.Errors {
				fmt.Printf("error    %-12s %s\n", e.Field, e.Message)
			}
			if !result.IsValid() {
				fmt.Printf("%d error(s), %d warning(s)\n", len(result.Errors), len(result.Warnings))
				os.Exit(exitFindings)
			}
			fmt.Printf("valid, %d warning(s)\n", len(result.Warnings))
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.dataPath, "data", "", "path to the YAML data file")
	return cmd
}
