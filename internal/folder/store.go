package folder

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/groomcrm/groomcrm/pkg/types"
)

// Folder layout under the user-granted root.
const (
	rootDirName   = "GroomingDB"
	visitsDirName = "visits"
	backupDirName = "backup"
)

// Settings is the slice of the record store the folder store needs: the
// persisted folder locator lives in the kv table.
type Settings interface {
	GetKV(key string, out any) (bool, error)
	SetKV(key string, value any) error
	DeleteKV(key string) error
}

// Store manages the user-granted directory capability and the photo files
// beneath it. The capability itself is mutated only by SelectFolder and
// ClearFolder; every other operation re-validates before touching disk.
type Store struct {
	open     Opener
	settings Settings
	log      *zap.Logger
}

// NewStore creates a folder store. A nil opener models a runtime without
// the capability API; every operation then fails with ErrUnsupported.
func NewStore(open Opener, settings Settings, log *zap.Logger) *Store {
	return &Store{open: open, settings: settings, log: log}
}

// SelectFolder grants the store a new root capability and persists its
// locator. The previous grant, if any, is replaced.
func (s *Store) SelectFolder(locator string) error {
	if s.open == nil {
		return ErrUnsupported
	}
	h, err := s.open(locator)
	if err != nil {
		return err
	}
	if p := h.RequestPermission(); p != PermissionGranted {
		return ErrPermissionDenied
	}
	if _, err := h.Entries(); err != nil {
		return s.classifyProbe(err)
	}
	return s.settings.SetKV(types.KVStorageFolder, locator)
}

// ClearFolder forgets the persisted grant.
func (s *Store) ClearFolder() error {
	return s.settings.DeleteKV(types.KVStorageFolder)
}

// Acquire returns a validated root handle. The validation state machine:
// capability API present, a grant persisted, permission granted (a prompt
// state gets one silent re-request), and the handle still live. A dead
// handle and a permission problem produce distinct errors so the remedial
// action (re-select vs. re-grant) is unambiguous.
func (s *Store) Acquire() (Handle, error) {
	if s.open == nil {
		return nil, ErrUnsupported
	}

	var locator string
	found, err := s.settings.GetKV(types.KVStorageFolder, &locator)
	if err != nil {
		return nil, err
	}
	if !found || locator == "" {
		return nil, ErrNoFolder
	}

	h, err := s.open(locator)
	if err != nil {
		return nil, err
	}

	switch h.QueryPermission() {
	case PermissionGranted:
	case PermissionPrompt:
		if h.RequestPermission() != PermissionGranted {
			return nil, ErrPermissionDenied
		}
	default:
		return nil, ErrPermissionDenied
	}

	if _, err := h.Entries(); err != nil {
		return nil, s.classifyProbe(err)
	}
	return h, nil
}

// classifyProbe separates a dead handle from a permission failure.
func (s *Store) classifyProbe(err error) error {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrHandleInvalid):
		return ErrHandleInvalid
	case errors.Is(err, ErrPermissionDenied):
		return ErrPermissionDenied
	default:
		return err
	}
}

// visitDir resolves <root>/GroomingDB/visits/<visitID>, creating the chain
// when create is true.
func (s *Store) visitDir(root Handle, visitID string, create bool) (Handle, error) {
	groomingDB, err := root.Child(rootDirName, create)
	if err != nil {
		return nil, err
	}
	visits, err := groomingDB.Child(visitsDirName, create)
	if err != nil {
		return nil, err
	}
	return visits.Child(visitID, create)
}

// File is one binary upload destined for a visit's folder.
type File struct {
	Name string
	Data io.Reader
}

// SavedFile reports where one uploaded file landed.
type SavedFile struct {
	Name         string
	RelativePath string
}

// photoFilename builds the generated unique name for a file in an upload
// batch. The batch index keeps names distinct even when the coarse
// timestamp collides within a batch.
func photoFilename(now time.Time, index int, originalName string) string {
	ext := "jpg"
	if i := strings.LastIndex(originalName, "."); i >= 0 && i < len(originalName)-1 {
		ext = originalName[i+1:]
	}
	return fmt.Sprintf("after_%d_%d.%s", now.UnixMilli(), index, ext)
}

// SaveFilesToVisit writes each file under the visit's folder, creating it
// lazily, and returns the stored name and relative path for each. On a
// mid-batch failure the files already written remain on disk; the caller
// reconciles which files received a database record.
func (s *Store) SaveFilesToVisit(visitID string, files []File) ([]SavedFile, error) {
	root, err := s.Acquire()
	if err != nil {
		return nil, err
	}
	dir, err := s.visitDir(root, visitID, true)
	if err != nil {
		return nil, fmt.Errorf("opening visit folder: %w", err)
	}

	now := time.Now()
	saved := make([]SavedFile, 0, len(files))
	for i, f := range files {
		name := photoFilename(now, i, f.Name)
		if err := s.writeFile(dir, name, f.Data); err != nil {
			return saved, fmt.Errorf("saving %s: %w", f.Name, err)
		}
		saved = append(saved, SavedFile{
			Name:         name,
			RelativePath: types.PhotoRelativePath(visitID, name),
		})
	}
	return saved, nil
}

func (s *Store) writeFile(dir Handle, name string, data io.Reader) error {
	w, err := dir.CreateFile(name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, data); err != nil {
		w.Close()
		// Best effort: a half-written file is worse than no file.
		_ = dir.Remove(name)
		return err
	}
	return w.Close()
}

// splitRelativePath validates "visits/<visitId>/<filename>" and returns
// the visit ID and filename.
func splitRelativePath(relativePath string) (visitID, filename string, err error) {
	parts := strings.Split(relativePath, "/")
	if len(parts) != 3 || parts[0] != visitsDirName || parts[1] == "" || parts[2] == "" {
		return "", "", types.ErrInvalidPath
	}
	return parts[1], parts[2], nil
}

// ReadPhoto resolves a photo's relative path and returns a reader over its
// bytes. Every returned reader is a distinct resource the caller must
// close when the photo is no longer displayed.
func (s *Store) ReadPhoto(relativePath string) (io.ReadCloser, error) {
	visitID, filename, err := splitRelativePath(relativePath)
	if err != nil {
		return nil, err
	}
	root, err := s.Acquire()
	if err != nil {
		return nil, err
	}
	dir, err := s.visitDir(root, visitID, false)
	if err != nil {
		return nil, fmt.Errorf("opening visit folder: %w", err)
	}
	return dir.OpenFile(filename)
}

// DeletePhotoFile removes a photo's backing file. Idempotent: a missing
// file or missing visit folder already satisfies the deletion.
func (s *Store) DeletePhotoFile(relativePath string) error {
	visitID, filename, err := splitRelativePath(relativePath)
	if err != nil {
		return err
	}
	root, err := s.Acquire()
	if err != nil {
		return err
	}
	dir, err := s.visitDir(root, visitID, false)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("opening visit folder: %w", err)
	}
	if err := dir.Remove(filename); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("deleting photo file: %w", err)
	}
	return nil
}

// WriteManifest serializes the backup manifest into
// <root>/GroomingDB/backup under a timestamped filename and returns the
// filename. Directory creation is idempotent.
func (s *Store) WriteManifest(manifest *types.BackupManifest, raw []byte, now time.Time) (string, error) {
	root, err := s.Acquire()
	if err != nil {
		return "", err
	}
	groomingDB, err := root.Child(rootDirName, true)
	if err != nil {
		return "", fmt.Errorf("opening %s folder: %w", rootDirName, err)
	}
	backup, err := groomingDB.Child(backupDirName, true)
	if err != nil {
		return "", fmt.Errorf("opening backup folder: %w", err)
	}

	filename := fmt.Sprintf("manifest_%s.json", now.Format("2006-01-02_15-04-05"))
	w, err := backup.CreateFile(filename)
	if err != nil {
		return "", fmt.Errorf("creating manifest file: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		w.Close()
		return "", fmt.Errorf("writing manifest: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	s.log.Info("wrote backup manifest to folder",
		zap.String("filename", filename),
		zap.Int("clients", len(manifest.Data.Clients)),
		zap.Int("visits", len(manifest.Data.Visits)))
	return filename, nil
}

// MissingPhoto identifies one photo record whose backing file is absent.
type MissingPhoto struct {
	PhotoID      string
	VisitID      string
	RelativePath string
}

// VerifyReport is the outcome of a photo verification pass.
type VerifyReport struct {
	Total   int
	Missing []MissingPhoto
}

// VerifyPhotos cross-checks every photo record against the physical
// presence of its file. Records are grouped by visit so each visit folder
// is opened once; a visit folder that is entirely absent marks all of that
// visit's photos missing in one pass.
func (s *Store) VerifyPhotos(photos []*types.VisitPhoto) (*VerifyReport, error) {
	root, err := s.Acquire()
	if err != nil {
		return nil, err
	}

	byVisit := make(map[string][]*types.VisitPhoto)
	for _, p := range photos {
		byVisit[p.VisitID] = append(byVisit[p.VisitID], p)
	}

	report := &VerifyReport{Total: len(photos)}
	mark := func(p *types.VisitPhoto) {
		report.Missing = append(report.Missing, MissingPhoto{
			PhotoID:      p.PhotoID,
			VisitID:      p.VisitID,
			RelativePath: p.RelativePath,
		})
	}

	for visitID, group := range byVisit {
		dir, err := s.visitDir(root, visitID, false)
		if errors.Is(err, ErrNotFound) {
			for _, p := range group {
				mark(p)
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("opening visit folder %s: %w", visitID, err)
		}

		for _, p := range group {
			name, err := p.Basename()
			if err != nil {
				mark(p)
				continue
			}
			if err := dir.StatFile(name); err != nil {
				mark(p)
			}
		}
	}
	return report, nil
}
