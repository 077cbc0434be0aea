package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/storyfeed/internal/adapters/driven/catalog"
	"github.com/custodia-labs/storyfeed/internal/core/domain"
)

var importCmd = &cobra.Command{
	Use:   "import [file...]",
	Short: "Import TOML catalogs of topics, stories and side content",
	Long: `Reads one or more TOML catalog files and stores their topics, stories,
cards, roundups and interactions. Records that fail validation are skipped
and reported; the rest of the file is still imported.

Example catalog:

  [[topics]]
  id = "brighton"
  name = "Brighton"
  keywords = ["harbour"]
  landmarks = ["Palace Pier"]

  [[stories]]
  id = "s1"
  topic = "brighton"
  title = "Pier reopens"
  slides = ["The Palace Pier reopened on Saturday."]
  created_at = 2026-03-14T09:00:00Z
  source_url = "https://www.argus.co.uk/news/1"
  published = true`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return notConfigured("ingest")
	}

	var total domain.IngestSummary
	for _, path := range args {
		batch, err := catalog.DecodeFile(path)
		if err != nil {
			return err
		}

		summary, err := ingestService.Ingest(cmd.Context(), batch)
		if err != nil {
			return fmt.Errorf("importing %s: %w", path, err)
		}
		cmd.Printf("%s: %s\n", path, formatSummary(summary))
		for _, reason := range summary.Rejected {
			cmd.Printf("  skipped: %s\n", reason)
		}
		total = addSummaries(total, summary)
	}

	if len(args) > 1 {
		cmd.Printf("Total: %s\n", formatSummary(total))
	}
	return nil
}

func formatSummary(s domain.IngestSummary) string {
	return fmt.Sprintf("%d topics, %d stories, %d cards, %d roundups, %d interactions, %d skipped",
		s.Topics, s.Stories, s.Cards, s.Roundups, s.Interactions, len(s.Rejected))
}

func addSummaries(a, b domain.IngestSummary) domain.IngestSummary {
	return domain.IngestSummary{
		Topics:       a.Topics + b.Topics,
		Stories:      a.Stories + b.Stories,
		Cards:        a.Cards + b.Cards,
		Roundups:     a.Roundups + b.Roundups,
		Interactions: a.Interactions + b.Interactions,
		Rejected:     append(a.Rejected, b.Rejected...),
	}
}
