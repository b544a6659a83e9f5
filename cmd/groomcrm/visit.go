// Visit commands manage visit records.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/groomcrm/groomcrm/pkg/types"
)

var visitCmd = &cobra.Command{
	Use:   "visit",
	Short: "Manage visit records",
}

var (
	visitStatus      string
	visitNotes       string
	visitPriceCents  int64
	visitDurationMin int64

	visitFilterDog string
)

var visitSetCmd = &cobra.Command{
	Use:   "set <visitId>",
	Short: "Update fields on a visit",
	Long: `Set applies a partial update to a visit. Updates to the same visit
are serialized, so concurrent edits land in submission order.

Example:
  groomcrm visit set <visitId> --status done
  groomcrm visit set <visitId> --price-cents 4500 --duration-min 90
  groomcrm visit set <visitId> --notes "matted coat, extra time"`,
	Args: cobra.ExactArgs(1),
	RunE: runVisitSet,
}

var visitListCmd = &cobra.Command{
	Use:   "list",
	Short: "List visits",
	Args:  cobra.NoArgs,
	RunE:  runVisitList,
}

func init() {
	visitSetCmd.Flags().StringVar(&visitStatus, "status", "", "visit status (planned, done, no_show)")
	visitSetCmd.Flags().StringVar(&visitNotes, "notes", "", "free-form notes")
	visitSetCmd.Flags().Int64Var(&visitPriceCents, "price-cents", -1, "price in cents")
	visitSetCmd.Flags().Int64Var(&visitDurationMin, "duration-min", -1, "duration in minutes")

	visitListCmd.Flags().StringVar(&visitFilterDog, "dog", "", "filter by dog id")

	visitCmd.AddCommand(visitSetCmd)
	visitCmd.AddCommand(visitListCmd)
}

func runVisitSet(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	patch := map[string]any{}
	if visitStatus != "" {
		patch["status"] = visitStatus
	}
	if cmd.Flags().Changed("notes") {
		patch["notes"] = visitNotes
	}
	if visitPriceCents >= 0 {
		patch["priceCents"] = visitPriceCents
	}
	if visitDurationMin >= 0 {
		patch["durationMin"] = visitDurationMin
	}
	if len(patch) == 0 {
		return fmt.Errorf("nothing to update (set at least one of --status, --notes, --price-cents, --duration-min)")
	}

	resolver := newResolver(backend, nil)
	if err := <-resolver.UpdateVisitQueued(args[0], patch); err != nil {
		return fmt.Errorf("update visit: %w", err)
	}
	fmt.Println("Updated visit:", args[0])
	return nil
}

func runVisitList(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	table, err := backend.GetTable(types.TableVisits)
	if err != nil {
		return fmt.Errorf("get visits table: %w", err)
	}

	filter := map[string]any{}
	if visitFilterDog != "" {
		filter["dogId"] = visitFilterDog
	}
	entities, err := table.Fetch(filter)
	if err != nil {
		return fmt.Errorf("fetch visits: %w", err)
	}

	if flagJSON {
		return printJSON(entities)
	}
	for _, e := range entities {
		v := e.(*types.Visit)
		fmt.Printf("%s  %s  %s  %s\n", v.VisitID, v.DateISO, v.Status, v.Notes)
	}
	return nil
}
