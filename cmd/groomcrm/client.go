// Client commands manage owner records.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/groomcrm/groomcrm/pkg/types"
)

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Manage client (owner) records",
}

var (
	clientOwnerName string
	clientPhone     string
	clientNotes     string
)

var clientAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a new client",
	Long: `Add creates a new client record for a dog owner.

Example:
  groomcrm client add --name "Dana Miles" --phone 555-0100
  groomcrm client add --name "Sam Ortiz" --notes "prefers mornings" --json`,
	Args: cobra.NoArgs,
	RunE: runClientAdd,
}

var clientListCmd = &cobra.Command{
	Use:   "list",
	Short: "List clients",
	Args:  cobra.NoArgs,
	RunE:  runClientList,
}

var clientDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a client",
	Long: `Delete removes a client record. Dogs that reference the client keep
their clientId; they are not deleted.`,
	Args: cobra.ExactArgs(1),
	RunE: runClientDelete,
}

func init() {
	clientAddCmd.Flags().StringVar(&clientOwnerName, "name", "", "owner name (required)")
	clientAddCmd.Flags().StringVar(&clientPhone, "phone", "", "phone number")
	clientAddCmd.Flags().StringVar(&clientNotes, "notes", "", "free-form notes")
	_ = clientAddCmd.MarkFlagRequired("name")

	clientCmd.AddCommand(clientAddCmd)
	clientCmd.AddCommand(clientListCmd)
	clientCmd.AddCommand(clientDeleteCmd)
}

func runClientAdd(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	table, err := backend.GetTable(types.TableClients)
	if err != nil {
		return fmt.Errorf("get clients table: %w", err)
	}

	client := &types.Client{
		OwnerName: clientOwnerName,
		Phone:     clientPhone,
		Notes:     clientNotes,
	}
	id, err := table.Set("", client)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	if flagJSON {
		entity, err := table.Get(id)
		if err != nil {
			return fmt.Errorf("fetch created client: %w", err)
		}
		return printJSON(entity)
	}
	fmt.Println("Created client:", id)
	return nil
}

func runClientList(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	table, err := backend.GetTable(types.TableClients)
	if err != nil {
		return fmt.Errorf("get clients table: %w", err)
	}
	entities, err := table.Fetch(nil)
	if err != nil {
		return fmt.Errorf("fetch clients: %w", err)
	}

	if flagJSON {
		return printJSON(entities)
	}
	for _, e := range entities {
		c := e.(*types.Client)
		fmt.Printf("%s  %s  %s\n", c.ClientID, c.OwnerName, c.Phone)
	}
	return nil
}

func runClientDelete(cmd *cobra.Command, args []string) error {
	if !confirm(fmt.Sprintf("Delete client %s?", args[0])) {
		fmt.Println("Aborted")
		return nil
	}

	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	table, err := backend.GetTable(types.TableClients)
	if err != nil {
		return fmt.Errorf("get clients table: %w", err)
	}
	if err := table.Delete(args[0]); err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	fmt.Println("Deleted client:", args[0])
	return nil
}
