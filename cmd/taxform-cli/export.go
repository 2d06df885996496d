package main

import (
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Serialize a data file into the declaration XML document",
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

			doc, err := eng.Export(flags.formID, data)
			if err != nil {
				return err
			}
			doc.Indent(2)
			raw, err := doc.WriteToBytes()
			if err != nil {
				return err
			}
			return writeOutput(flags.output, raw)
		},
	}
	cmd.Flags().StringVar(&flags.dataPath, "data", "", "path to the YAML data file")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}
