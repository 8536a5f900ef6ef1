package main

import (
	"fmt"

	"github.com/spboyer/fidelity/internal/models"
	"github.com/spboyer/fidelity/internal/validation"
	"github.com/spf13/cobra"
)

// validateResult is the JSON output of validate for one file.
type validateResult struct {
	File string `json:"file"`
	models.SchemaValidationResult
}

func newValidateCommand() *cobra.Command {
	var (
		format string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "validate <template.json> [template.json ...]",
		Short: "Check templates against the inspection template schema",
		Long: `Check one or more templates against the inspection template schema and
report every violation with its path. Exits with status 1 when any template
is invalid.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			return validateCommandE(cmd, args, format, limit)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table or json")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of errors printed per file")

	return cmd
}

func validateCommandE(cmd *cobra.Command, paths []string, format string, limit int) error {
	out := cmd.OutOrStdout()
	results := make([]validateResult, 0, len(paths))
	invalid := 0

	for _, path := range paths {
		r := validation.ValidateFile(path)
		if !r.IsValid {
			invalid++
		}
		results = append(results, validateResult{File: path, SchemaValidationResult: r})

		if format == "table" {
			if r.IsValid {
				fmt.Fprintf(out, "%s: PASSED\n", path) //nolint:errcheck
				continue
			}
			fmt.Fprintf(out, "%s: FAILED (%.1f%% compliant)\n%s\n", path, r.ComplianceScore*100, validation.FormatErrors(r, limit)) //nolint:errcheck
		}
	}

	if format == "json" {
		if err := printJSON(out, results); err != nil {
			return err
		}
	}

	if invalid > 0 {
		return &CheckFailedError{Message: fmt.Sprintf("%d of %d template(s) failed schema validation", invalid, len(paths))}
	}
	return nil
}
