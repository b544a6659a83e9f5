// Folder commands manage the granted photo storage directory.
package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/groomcrm/groomcrm/internal/folder"
	"github.com/groomcrm/groomcrm/pkg/types"
)

var folderCmd = &cobra.Command{
	Use:   "folder",
	Short: "Manage the photo storage folder",
}

var folderSelectCmd = &cobra.Command{
	Use:   "select <path>",
	Short: "Grant a storage folder",
	Long: `Select grants access to a directory for photo and backup storage and
remembers it. Photos live under <path>/GroomingDB/visits/.`,
	Args: cobra.ExactArgs(1),
	RunE: runFolderSelect,
}

var folderStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the granted folder",
	Args:  cobra.NoArgs,
	RunE:  runFolderStatus,
}

var folderClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget the granted folder",
	Long: `Clear forgets the stored folder grant. Files already saved in the
folder are left untouched.`,
	Args: cobra.NoArgs,
	RunE: runFolderClear,
}

func init() {
	folderCmd.AddCommand(folderSelectCmd)
	folderCmd.AddCommand(folderStatusCmd)
	folderCmd.AddCommand(folderClearCmd)
}

func runFolderSelect(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	store := newFolderStore(backend)
	if err := store.SelectFolder(args[0]); err != nil {
		return fmt.Errorf("select folder: %w", err)
	}
	fmt.Println("Storage folder set:", args[0])
	return nil
}

func runFolderStatus(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	var locator string
	found, err := backend.GetKV(types.KVStorageFolder, &locator)
	if err != nil {
		return err
	}
	if !found {
		fmt.Println("No folder selected")
		return nil
	}

	store := newFolderStore(backend)
	_, err = store.Acquire()
	switch {
	case err == nil:
		fmt.Println("Folder:", locator)
		fmt.Println("Status: accessible")
	case errors.Is(err, folder.ErrPermissionDenied):
		fmt.Println("Folder:", locator)
		fmt.Println("Status: permission denied")
	case errors.Is(err, folder.ErrHandleInvalid):
		fmt.Println("Folder:", locator)
		fmt.Println("Status: missing or moved (select it again)")
	default:
		return err
	}
	return nil
}

func runFolderClear(cmd *cobra.Command, args []string) error {
	if !confirm("Forget the storage folder grant?") {
		fmt.Println("Aborted")
		return nil
	}

	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	store := newFolderStore(backend)
	if err := store.ClearFolder(); err != nil {
		return fmt.Errorf("clear folder: %w", err)
	}
	fmt.Println("Storage folder cleared")
	return nil
}
