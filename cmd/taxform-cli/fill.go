package main

import (
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-taxform/pkg/schema"
)

func newFillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Fill a data file interactively, cell by cell",
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
			formSchema, err := eng.ParseTemplate(flags.formID)
			if err != nil {
				return err
			}

			data := map[string]string{}
			for _, section := range formSchema.Sections {
				if section.Title != "" {
					fmt.Printf("\n== %s ==\n", section.Title)
				}
				for _, cell := range section.Cells {
					value, err := promptCell(cell)
					if err != nil {
						return err
					}
					if value != "" {
						data[string(cell.ID)] = value
					}
				}
			}

			raw, err := yaml.Marshal(data)
			if err != nil {
				return err
			}
			return writeOutput(flags.output, raw)
		},
	}
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output data file (stdout if empty)")
	return cmd
}

// promptCell asks for one cell's value with a prompt matching its control
// type. Hidden cells keep their default without prompting.
func promptCell(cell schema.Cell) (string, error) {
	switch cell.Control {
	case schema.ControlHidden:
		return cell.DefaultValue, nil

	case schema.ControlBoolean:
		confirmed := cell.DefaultValue == "1"
		prompt := &survey.Confirm{Message: string(cell.ID), Default: confirmed}
		if err := survey.AskOne(prompt, &confirmed); err != nil {
			return "", err
		}
		if confirmed {
			return "1", nil
		}
		return "0", nil

	case schema.ControlNumeric:
		var value string
		prompt := &survey.Input{Message: string(cell.ID), Default: cell.DefaultValue}
		err := survey.AskOne(prompt, &value, survey.WithValidator(numericValidator(cell)))
		return value, err

	case schema.ControlText, schema.ControlDropdown, schema.ControlDate, schema.ControlDependentDropdown:
		var value string
		prompt := &survey.Input{Message: string(cell.ID), Default: cell.DefaultValue}
		err := survey.AskOne(prompt, &value, survey.WithValidator(lengthValidator(cell)))
		return value, err
	}
	return "", fmt.Errorf("fill: unhandled control type %q", cell.Control)
}

func numericValidator(cell schema.Cell) survey.Validator {
	return func(answer interface{}) error {
		value, _ := answer.(string)
		if value == "" {
			return nil
		}
		number, err := decimal.NewFromString(value)
		if err != nil {
			return errors.New("value must be numeric")
		}
		if cell.MinValue != nil && number.LessThan(*cell.MinValue) {
			return fmt.Errorf("value must not be less than %s", cell.MinValue)
		}
		if cell.MaxValue != nil && number.GreaterThan(*cell.MaxValue) {
			return fmt.Errorf("value must not exceed %s", cell.MaxValue)
		}
		return nil
	}
}

func lengthValidator(cell schema.Cell) survey.Validator {
	return func(answer interface{}) error {
		value, _ := answer.(string)
		if cell.MaxLen > 0 && len([]rune(value)) > cell.MaxLen {
			return fmt.Errorf("value exceeds maximum length of %d characters", cell.MaxLen)
		}
		return nil
	}
}
