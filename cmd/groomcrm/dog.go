// Dog commands manage dog records and event links.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/groomcrm/groomcrm/internal/calendar"
	"github.com/groomcrm/groomcrm/internal/queue"
	"github.com/groomcrm/groomcrm/internal/sqlite"
	"github.com/groomcrm/groomcrm/pkg/types"
)

var dogCmd = &cobra.Command{
	Use:   "dog",
	Short: "Manage dog records and calendar links",
}

var (
	dogName     string
	dogBreed    string
	dogNotes    string
	dogClientID string
	dogTags     []string

	dogFilterClient string

	assignCalendarID string
	assignEventID    string
	assignNoPatch    bool
)

var dogAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a new dog",
	Long: `Add creates a new dog record, optionally linked to a client.

Example:
  groomcrm dog add --name Rex --breed poodle --client <clientId>
  groomcrm dog add --name Bella --tag nervous --tag "double coat"`,
	Args: cobra.NoArgs,
	RunE: runDogAdd,
}

var dogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List dogs",
	Args:  cobra.NoArgs,
	RunE:  runDogList,
}

var dogDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a dog",
	Args:  cobra.ExactArgs(1),
	RunE:  runDogDelete,
}

var dogAssignCmd = &cobra.Command{
	Use:   "assign <dogId>",
	Short: "Link a calendar event to a dog",
	Long: `Assign links the given calendar event to the dog and updates the
event's description on the remote calendar to carry the link token, so the
assignment survives a wiped local store. Use --no-patch to link locally
only.

Example:
  groomcrm dog assign <dogId> --event <eventId>
  groomcrm dog assign <dogId> --event <eventId> --calendar <calId> --no-patch`,
	Args: cobra.ExactArgs(1),
	RunE: runDogAssign,
}

var dogUnlinkCmd = &cobra.Command{
	Use:   "unlink",
	Short: "Remove the dog link from a calendar event",
	Args:  cobra.NoArgs,
	RunE:  runDogUnlink,
}

func init() {
	dogAddCmd.Flags().StringVar(&dogName, "name", "", "dog name (required)")
	dogAddCmd.Flags().StringVar(&dogBreed, "breed", "", "breed")
	dogAddCmd.Flags().StringVar(&dogNotes, "notes", "", "free-form notes")
	dogAddCmd.Flags().StringVar(&dogClientID, "client", "", "owning client id")
	dogAddCmd.Flags().StringArrayVar(&dogTags, "tag", nil, "grooming tag (repeatable)")
	_ = dogAddCmd.MarkFlagRequired("name")

	dogListCmd.Flags().StringVar(&dogFilterClient, "client", "", "filter by client id")

	dogAssignCmd.Flags().StringVar(&assignEventID, "event", "", "calendar event id (required)")
	dogAssignCmd.Flags().StringVar(&assignCalendarID, "calendar", "", "calendar id (default: selected)")
	dogAssignCmd.Flags().BoolVar(&assignNoPatch, "no-patch", false, "do not update the remote event description")
	_ = dogAssignCmd.MarkFlagRequired("event")

	dogUnlinkCmd.Flags().StringVar(&assignEventID, "event", "", "calendar event id (required)")
	dogUnlinkCmd.Flags().StringVar(&assignCalendarID, "calendar", "", "calendar id (default: selected)")
	dogUnlinkCmd.Flags().BoolVar(&assignNoPatch, "no-patch", false, "do not update the remote event description")
	_ = dogUnlinkCmd.MarkFlagRequired("event")

	dogCmd.AddCommand(dogAddCmd)
	dogCmd.AddCommand(dogListCmd)
	dogCmd.AddCommand(dogDeleteCmd)
	dogCmd.AddCommand(dogAssignCmd)
	dogCmd.AddCommand(dogUnlinkCmd)
}

func runDogAdd(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	table, err := backend.GetTable(types.TableDogs)
	if err != nil {
		return fmt.Errorf("get dogs table: %w", err)
	}

	dog := &types.Dog{
		DogName:  dogName,
		Breed:    dogBreed,
		Notes:    dogNotes,
		ClientID: dogClientID,
		Tags:     dogTags,
	}
	id, err := table.Set("", dog)
	if err != nil {
		return fmt.Errorf("create dog: %w", err)
	}

	if flagJSON {
		entity, err := table.Get(id)
		if err != nil {
			return fmt.Errorf("fetch created dog: %w", err)
		}
		return printJSON(entity)
	}
	fmt.Println("Created dog:", id)
	return nil
}

func runDogList(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	table, err := backend.GetTable(types.TableDogs)
	if err != nil {
		return fmt.Errorf("get dogs table: %w", err)
	}

	filter := map[string]any{}
	if dogFilterClient != "" {
		filter["clientId"] = dogFilterClient
	}
	entities, err := table.Fetch(filter)
	if err != nil {
		return fmt.Errorf("fetch dogs: %w", err)
	}

	if flagJSON {
		return printJSON(entities)
	}
	for _, e := range entities {
		d := e.(*types.Dog)
		fmt.Printf("%s  %s  %s\n", d.DogID, d.DogName, d.Breed)
	}
	return nil
}

func runDogDelete(cmd *cobra.Command, args []string) error {
	if !confirm(fmt.Sprintf("Delete dog %s?", args[0])) {
		fmt.Println("Aborted")
		return nil
	}

	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	table, err := backend.GetTable(types.TableDogs)
	if err != nil {
		return fmt.Errorf("get dogs table: %w", err)
	}
	if err := table.Delete(args[0]); err != nil {
		return fmt.Errorf("delete dog: %w", err)
	}
	fmt.Println("Deleted dog:", args[0])
	return nil
}

// newResolver wires the resolver over an attached backend.
func newResolver(backend *sqlite.Backend, remote calendar.Remote) *calendar.Resolver {
	return calendar.NewResolver(backend, remote, queue.NewKeyed(), logger)
}

func runDogAssign(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	calendarID, err := selectedCalendarID(backend, assignCalendarID)
	if err != nil {
		return err
	}
	client, err := newCalendarClient(backend)
	if err != nil {
		return err
	}
	resolver := newResolver(backend, client)

	event := &types.CalendarEvent{ID: assignEventID}
	if !assignNoPatch {
		// The current description is needed to upsert the token in place.
		event, err = client.GetEvent(calendarID, assignEventID)
		if err != nil {
			return err
		}
	}

	if err := resolver.AssignDog(calendarID, event, args[0], !assignNoPatch); err != nil {
		return err
	}
	logger.Info("linked event to dog",
		zap.String("event_id", assignEventID), zap.String("dog_id", args[0]))
	fmt.Printf("Linked event %s to dog %s\n", assignEventID, args[0])
	return nil
}

func runDogUnlink(cmd *cobra.Command, args []string) error {
	if !confirm(fmt.Sprintf("Unlink event %s?", assignEventID)) {
		fmt.Println("Aborted")
		return nil
	}

	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	calendarID, err := selectedCalendarID(backend, assignCalendarID)
	if err != nil {
		return err
	}
	client, err := newCalendarClient(backend)
	if err != nil {
		return err
	}
	resolver := newResolver(backend, client)

	event := &types.CalendarEvent{ID: assignEventID}
	if !assignNoPatch {
		event, err = client.GetEvent(calendarID, assignEventID)
		if err != nil {
			return err
		}
	}

	if err := resolver.Unlink(calendarID, event, !assignNoPatch); err != nil {
		return err
	}
	fmt.Printf("Unlinked event %s\n", assignEventID)
	return nil
}
