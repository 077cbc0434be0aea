package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/storyfeed/internal/core/domain"
)

var slotsRange int

var slotsCmd = &cobra.Command{
	Use:   "slots",
	Short: "Show the side-content slot table",
	Long: `Prints the slot table that decides where side-content cards are placed
and checks it for collisions: story indices where more than one card type
would be shown.

A card of a rule shows after story index every_n*k + offset for k >= 1.`,
	Args: cobra.NoArgs,
	RunE: runSlots,
}

func init() {
	slotsCmd.Flags().IntVarP(&slotsRange, "n", "n", 50, "number of story indices to check for collisions")
	rootCmd.AddCommand(slotsCmd)
}

func runSlots(cmd *cobra.Command, _ []string) error {
	if slotDiagnostics == nil {
		return notConfigured("slot")
	}
	if slotsRange <= 0 || slotsRange > domain.MaxSlotSpan {
		return fmt.Errorf("%w: -n must be between 1 and %d", domain.ErrInvalidInput, domain.MaxSlotSpan)
	}

	cmd.Println("Slot table:")
	for _, rule := range slotDiagnostics.Rules() {
		cmd.Printf("  %-22s every %2d  offset %2d  first at %d\n",
			rule.Card, rule.EveryN, rule.Offset, rule.EveryN+rule.Offset)
	}
	cmd.Println()

	collisions := slotDiagnostics.CollisionReport(slotsRange)
	if len(collisions) == 0 {
		cmd.Printf("No collisions in story indices [0, %d).\n", slotsRange)
		return nil
	}

	cmd.Printf("%d collision(s) in story indices [0, %d):\n", len(collisions), slotsRange)
	for _, c := range collisions {
		names := make([]string, 0, len(c.Cards))
		for _, card := range c.Cards {
			names = append(names, card.String())
		}
		cmd.Printf("  index %d: %s\n", c.StoryIndex, strings.Join(names, ", "))
	}
	return nil
}
