package folder

import (
	"io"
	"os"
	"path/filepath"
	"sync"
)

// osGrant is the per-session grant shared by every handle opened from the
// same root. It starts at prompt, mirroring a freshly restored capability
// whose permission has not yet been confirmed this session.
type osGrant struct {
	mu    sync.Mutex
	root  string
	state Permission
}

// osHandle backs a Handle with an operating-system directory. The grant is
// process-wide shared state: read by every call site, mutated only by the
// explicit permission request.
type osHandle struct {
	path  string
	grant *osGrant
}

// NewOSOpener returns an Opener that materializes handles over OS
// directories. Each open starts a fresh session grant in the prompt state.
func NewOSOpener() Opener {
	return func(locator string) (Handle, error) {
		if locator == "" {
			return nil, ErrNoFolder
		}
		g := &osGrant{root: locator, state: PermissionPrompt}
		return &osHandle{path: locator, grant: g}, nil
	}
}

func (h *osHandle) Entries() ([]string, error) {
	entries, err := os.ReadDir(h.path)
	if err != nil {
		return nil, mapFSError(err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

func (h *osHandle) Child(name string, create bool) (Handle, error) {
	childPath := filepath.Join(h.path, name)
	info, err := os.Stat(childPath)
	switch {
	case err == nil:
		if !info.IsDir() {
			return nil, ErrNotFound
		}
	case os.IsNotExist(err):
		if !create {
			return nil, ErrNotFound
		}
		if err := os.MkdirAll(childPath, 0o755); err != nil {
			return nil, mapFSError(err)
		}
	default:
		return nil, mapFSError(err)
	}
	return &osHandle{path: childPath, grant: h.grant}, nil
}

func (h *osHandle) OpenFile(name string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(h.path, name))
	if err != nil {
		return nil, mapFSError(err)
	}
	return f, nil
}

func (h *osHandle) CreateFile(name string) (io.WriteCloser, error) {
	f, err := os.Create(filepath.Join(h.path, name))
	if err != nil {
		return nil, mapFSError(err)
	}
	return f, nil
}

func (h *osHandle) StatFile(name string) error {
	if _, err := os.Stat(filepath.Join(h.path, name)); err != nil {
		return mapFSError(err)
	}
	return nil
}

func (h *osHandle) Remove(name string) error {
	if err := os.Remove(filepath.Join(h.path, name)); err != nil {
		return mapFSError(err)
	}
	return nil
}

func (h *osHandle) QueryPermission() Permission {
	h.grant.mu.Lock()
	defer h.grant.mu.Unlock()
	return h.grant.state
}

// RequestPermission probes the grant root and caches the outcome for the
// rest of the session. Only a permission failure denies; a missing or
// moved root resolves as granted so the caller's liveness probe reports it
// as an invalid handle, not a permission problem.
func (h *osHandle) RequestPermission() Permission {
	h.grant.mu.Lock()
	defer h.grant.mu.Unlock()

	f, err := os.Open(h.grant.root)
	if err != nil {
		if os.IsPermission(err) {
			h.grant.state = PermissionDenied
			return h.grant.state
		}
		h.grant.state = PermissionGranted
		return h.grant.state
	}
	f.Close()
	h.grant.state = PermissionGranted
	return h.grant.state
}

// mapFSError translates OS errors into the capability error taxonomy.
func mapFSError(err error) error {
	switch {
	case os.IsNotExist(err):
		return ErrNotFound
	case os.IsPermission(err):
		return ErrPermissionDenied
	default:
		return err
	}
}
