package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List topics",
	Args:  cobra.NoArgs,
	RunE:  runTopics,
}

func init() {
	rootCmd.AddCommand(topicsCmd)
}

func runTopics(cmd *cobra.Command, _ []string) error {
	if topicService == nil {
		return notConfigured("topic")
	}

	topics, err := topicService.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(topics) == 0 {
		cmd.Println("No topics found. Import a catalog with 'storyfeed import'.")
		return nil
	}

	for i := range topics {
		t := &topics[i]
		cmd.Printf("  %s  %s\n", t.ID, t.Name)
		if t.Description != "" {
			cmd.Printf("      %s\n", t.Description)
		}
		if len(t.Keywords) > 0 {
			cmd.Printf("      keywords: %s\n", strings.Join(t.Keywords, ", "))
		}
	}
	return nil
}
