package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spboyer/fidelity/internal/document"
	"github.com/spboyer/fidelity/internal/models"
	"github.com/spf13/cobra"
)

// templateFile is a template as written back to disk, metadata block first.
type templateFile struct {
	Metadata *models.Metadata `json:"_metadata,omitempty"`
	*models.Template
}

func writeTemplate(path string, doc *document.Document) error {
	data, err := json.MarshalIndent(templateFile{Metadata: doc.Metadata, Template: doc.Template}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling template: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing template: %w", err)
	}
	return nil
}

// loadForRewrite loads a template that is about to be written back, refusing
// files with nodes that would be lost in the round trip.
func loadForRewrite(path string) (*document.Document, error) {
	doc, err := document.LoadCandidate(path)
	if err != nil {
		return nil, err
	}
	if len(doc.Dropped) > 0 {
		return nil, fmt.Errorf("%s has %d node(s) that did not decode cleanly (first: %s)", path, len(doc.Dropped), doc.Dropped[0])
	}
	return doc, nil
}

func newRenumberCommand() *cobra.Command {
	var (
		output string
		start  int
	)

	cmd := &cobra.Command{
		Use:   "renumber <template.json>",
		Short: "Rewrite field IDs so they run sequentially",
		Long: `Rewrite the field IDs of every template version so they run sequentially
in document order, a section's own fields before those of its children.

The file is rewritten in place unless --output is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadForRewrite(args[0])
			if err != nil {
				return err
			}

			count := 0
			for i := range doc.Template.Versions {
				var next int
				doc.Template.Versions[i].Structure, next = document.RenumberFields(doc.Template.Versions[i].Structure, start)
				count += next - start
			}

			dest := output
			if dest == "" {
				dest = args[0]
			}
			if err := writeTemplate(dest, doc); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Renumbered %d field(s) in %s\n", count, dest) //nolint:errcheck
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the result to this path instead of in place")
	cmd.Flags().IntVar(&start, "start", 1, "First field ID")

	return cmd
}

func newMergeCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "merge <part.json> <part.json> [part.json ...]",
		Short: "Merge templates extracted from consecutive chunks of one document",
		Long: `Merge partial templates extracted from consecutive chunks of the same source
document into one template.

Sections with the same name are merged recursively, other sections are
appended in order, and field IDs are renumbered from 1. The template's
identity, metadata block and section display types come from the first part.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return errors.New("--output is required")
			}

			var first *document.Document
			roots := make([]models.Section, 0, len(args))
			for _, path := range args {
				doc, err := loadForRewrite(path)
				if err != nil {
					return err
				}
				root := doc.Template.Root()
				if root == nil {
					return fmt.Errorf("%s has no template versions", path)
				}
				roots = append(roots, *root)
				if first == nil {
					first = doc
				}
			}

			merged := document.Merge(roots...)
			first.Template.Versions = first.Template.Versions[:1]
			first.Template.Versions[0].Structure = merged

			if err := writeTemplate(output, first); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Merged %d part(s) into %s: %d section(s), %d field(s)\n", //nolint:errcheck
				len(args), output, document.CountSections(&merged), document.CountFields(&merged))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Path to write the merged template to")

	return cmd
}
