package types

import (
	"fmt"
	"strings"
	"time"
)

// VisitPhoto records one photo attached to a visit. RelativePath is the
// sole link to the physical file in the external folder store and always
// has the shape "visits/<visitId>/<filename>". Deleting the record does not
// atomically delete the file; orphans are discovered by the verification
// pass.
type VisitPhoto struct {
	PhotoID      string    `json:"id"`
	VisitID      string    `json:"visitId"`
	Name         string    `json:"name"`
	RelativePath string    `json:"relativePath"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PhotoRelativePath builds the canonical relative path for a photo file.
func PhotoRelativePath(visitID, filename string) string {
	return fmt.Sprintf("visits/%s/%s", visitID, filename)
}

// Basename returns the file's basename, stripping all path segments up to
// the last "/". Returns ErrInvalidPath when no basename can be extracted.
func (p *VisitPhoto) Basename() (string, error) {
	idx := strings.LastIndex(p.RelativePath, "/")
	if idx < 0 || idx == len(p.RelativePath)-1 {
		return "", ErrInvalidPath
	}
	return p.RelativePath[idx+1:], nil
}

// Validate checks required fields and the relative path shape.
func (p *VisitPhoto) Validate() error {
	if p.VisitID == "" {
		return ErrInvalidData
	}
	if !strings.HasPrefix(p.RelativePath, "visits/") {
		return ErrInvalidPath
	}
	if _, err := p.Basename(); err != nil {
		return err
	}
	return nil
}
