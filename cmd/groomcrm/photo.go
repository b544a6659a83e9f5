// Photo commands manage after-photos stored in the granted folder.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/groomcrm/groomcrm/internal/folder"
	"github.com/groomcrm/groomcrm/pkg/types"
)

var photoCmd = &cobra.Command{
	Use:   "photo",
	Short: "Manage visit photos",
}

var photoFilterVisit string

var photoAddCmd = &cobra.Command{
	Use:   "add <visitId> <file>...",
	Short: "Save photos to a visit",
	Long: `Add copies the given image files into the visit's folder under the
granted storage directory and records each one. Files already saved stay on
disk if a later file in the batch fails.

Example:
  groomcrm photo add <visitId> after1.jpg after2.jpg`,
	Args: cobra.MinimumNArgs(2),
	RunE: runPhotoAdd,
}

var photoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List photo records",
	Args:  cobra.NoArgs,
	RunE:  runPhotoList,
}

var photoVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that every recorded photo exists on disk",
	Args:  cobra.NoArgs,
	RunE:  runPhotoVerify,
}

var photoDeleteCmd = &cobra.Command{
	Use:   "delete <photoId>",
	Short: "Delete a photo record and its file",
	Args:  cobra.ExactArgs(1),
	RunE:  runPhotoDelete,
}

func init() {
	photoListCmd.Flags().StringVar(&photoFilterVisit, "visit", "", "filter by visit id")

	photoCmd.AddCommand(photoAddCmd)
	photoCmd.AddCommand(photoListCmd)
	photoCmd.AddCommand(photoVerifyCmd)
	photoCmd.AddCommand(photoDeleteCmd)
}

func runPhotoAdd(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	visitID := args[0]
	files := make([]folder.File, 0, len(args)-1)
	handles := make([]*os.File, 0, len(args)-1)
	defer func() {
		for _, f := range handles {
			f.Close()
		}
	}()
	for _, path := range args[1:] {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		handles = append(handles, f)
		files = append(files, folder.File{Name: filepath.Base(path), Data: f})
	}

	store := newFolderStore(backend)
	saved, saveErr := store.SaveFilesToVisit(visitID, files)

	// Record every file that made it to disk, even on a partial failure.
	photos, err := backend.GetTable(types.TableVisitPhotos)
	if err != nil {
		return fmt.Errorf("get photos table: %w", err)
	}
	for _, s := range saved {
		if _, err := photos.Set("", &types.VisitPhoto{
			VisitID:      visitID,
			Name:         s.Name,
			RelativePath: s.RelativePath,
		}); err != nil {
			logger.Warn("saved file has no record",
				zap.String("relative_path", s.RelativePath), zap.Error(err))
		}
	}
	if saveErr != nil {
		return fmt.Errorf("saved %d of %d files: %w", len(saved), len(files), saveErr)
	}

	fmt.Printf("Saved %d photo(s) to visit %s\n", len(saved), visitID)
	return nil
}

func runPhotoList(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	photos, err := backend.GetTable(types.TableVisitPhotos)
	if err != nil {
		return fmt.Errorf("get photos table: %w", err)
	}

	filter := map[string]any{}
	if photoFilterVisit != "" {
		filter["visitId"] = photoFilterVisit
	}
	entities, err := photos.Fetch(filter)
	if err != nil {
		return fmt.Errorf("fetch photos: %w", err)
	}

	if flagJSON {
		return printJSON(entities)
	}
	for _, e := range entities {
		p := e.(*types.VisitPhoto)
		fmt.Printf("%s  %s\n", p.PhotoID, p.RelativePath)
	}
	return nil
}

func runPhotoVerify(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	photos, err := backend.GetTable(types.TableVisitPhotos)
	if err != nil {
		return fmt.Errorf("get photos table: %w", err)
	}
	entities, err := photos.Fetch(nil)
	if err != nil {
		return fmt.Errorf("fetch photos: %w", err)
	}
	records := make([]*types.VisitPhoto, 0, len(entities))
	for _, e := range entities {
		records = append(records, e.(*types.VisitPhoto))
	}

	store := newFolderStore(backend)
	report, err := store.VerifyPhotos(records)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(report)
	}
	fmt.Printf("Checked %d photo(s), %d missing\n", report.Total, len(report.Missing))
	for _, m := range report.Missing {
		fmt.Printf("  missing: %s (photo %s)\n", m.RelativePath, m.PhotoID)
	}
	return nil
}

func runPhotoDelete(cmd *cobra.Command, args []string) error {
	if !confirm(fmt.Sprintf("Delete photo %s?", args[0])) {
		fmt.Println("Aborted")
		return nil
	}

	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	photos, err := backend.GetTable(types.TableVisitPhotos)
	if err != nil {
		return fmt.Errorf("get photos table: %w", err)
	}
	entity, err := photos.Get(args[0])
	if err != nil {
		return fmt.Errorf("get photo: %w", err)
	}
	photo := entity.(*types.VisitPhoto)

	if err := photos.Delete(photo.PhotoID); err != nil {
		return fmt.Errorf("delete photo record: %w", err)
	}

	// The record is gone either way; file removal is best effort.
	store := newFolderStore(backend)
	if err := store.DeletePhotoFile(photo.RelativePath); err != nil {
		logger.Warn("photo file not removed",
			zap.String("relative_path", photo.RelativePath), zap.Error(err))
		fmt.Println("Warning: photo file not removed:", err)
	}
	fmt.Println("Deleted photo:", photo.PhotoID)
	return nil
}
