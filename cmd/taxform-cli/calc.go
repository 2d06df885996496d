package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newCalcCmd() *cobra.Command {
	var changed string

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Compute derived figures, or recompute from a changed cell",
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

			if changed != "" {
				out, err := eng.Recompute(flags.formID, changed, data)
				if err != nil {
					return err
				}
				printSorted(out)
				return nil
			}

			computed, err := eng.CalculateTax(flags.formID, data)
			if err != nil {
				return err
			}
			out := make(map[string]string, len(computed))
			for id, value := range computed {
				out[id] = value.String()
			}
			printSorted(out)
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.dataPath, "data", "", "path to the YAML data file")
	cmd.Flags().StringVar(&changed, "changed", "", "recompute cells derived from this cell instead of running the family formulas")
	return cmd
}

func printSorted(values map[string]string) {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("%s: %s\n", key, values[key])
	}
}
