// Backup commands export and restore the whole store.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/groomcrm/groomcrm/internal/backup"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export and import full backups",
}

var (
	backupOut      string
	backupToFolder bool
)

var backupExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the full store to a JSON backup",
	Long: `Export writes every table plus the allow-listed settings to a JSON
manifest. By default the file lands in the current directory; --to-folder
writes it into the granted storage folder's backup directory instead.

Example:
  groomcrm backup export
  groomcrm backup export --out /tmp/groom.json
  groomcrm backup export --to-folder`,
	Args: cobra.NoArgs,
	RunE: runBackupExport,
}

var backupImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Restore the store from a JSON backup",
	Long: `Import validates the backup file and replaces the entire store with
its contents. Every current record is lost. A backup from a different
schema version is rejected before anything is touched.`,
	Args: cobra.ExactArgs(1),
	RunE: runBackupImport,
}

func init() {
	backupExportCmd.Flags().StringVar(&backupOut, "out", "", "output file (default: generated name in CWD)")
	backupExportCmd.Flags().BoolVar(&backupToFolder, "to-folder", false, "write into the granted storage folder")

	backupCmd.AddCommand(backupExportCmd)
	backupCmd.AddCommand(backupImportCmd)
}

func runBackupExport(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	now := time.Now()
	manifest, err := backup.Export(backend, now)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	raw, err := backup.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("marshal backup: %w", err)
	}

	if backupToFolder {
		store := newFolderStore(backend)
		name, err := store.WriteManifest(manifest, raw, now)
		if err != nil {
			return fmt.Errorf("write to folder: %w", err)
		}
		fmt.Println("Backup written to folder:", name)
		return nil
	}

	out := backupOut
	if out == "" {
		out = backup.Filename(now)
	}
	if err := os.WriteFile(out, raw, 0o644); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	logger.Info("backup exported", zap.String("file", out))
	fmt.Println("Backup written:", out)
	return nil
}

func runBackupImport(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read backup: %w", err)
	}

	// Validate before asking; a bad file should fail without ceremony.
	manifest, err := backup.Parse(raw)
	if err != nil {
		return err
	}

	if !confirm("Importing replaces ALL current data.") {
		fmt.Println("Aborted")
		return nil
	}

	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	if err := backup.ApplyReplace(backend, manifest); err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	logger.Info("backup imported", zap.String("file", args[0]))
	fmt.Println("Backup imported:", args[0])
	return nil
}
