package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"
)

const (
	// TimeFormat is the layout of the "Updated" header line, always in UTC.
	TimeFormat = "2006-01-02 15:04:05 UTC"

	headerTitle  = "# Satellite Catalog - Active Satellites"
	headerFormat = "# Format: TLE (Two-Line Elements)"
	headerGroup  = "# Satellites: Active spacecraft from CelesTrak"

	filePerm = 0o644
)

// Stage names the step of Store.Update that failed.
type Stage string

const (
	StageBackup Stage = "backup"
	StageWrite  Stage = "write"
)

// WriteError is returned when the catalog or its backup cannot be written.
type WriteError struct {
	Stage Stage
	Path  string
	Cause error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Path, e.Cause)
}

func (e *WriteError) Unwrap() error {
	return e.Cause
}

// CountSatellites counts TLE records by their first line, the one starting with "1 ".
func CountSatellites(data string) int {
	n := 0
	for _, line := range strings.Split(strings.TrimSpace(data), "\n") {
		if strings.HasPrefix(line, "1 ") {
			n++
		}
	}
	return n
}

// Header returns the comment block written in front of the downloaded data.
func Header(source string, at time.Time) string {
	var b strings.Builder
	b.WriteString(headerTitle + "\n")
	b.WriteString("# Updated: " + at.UTC().Format(TimeFormat) + "\n")
	b.WriteString("# Source: " + source + "\n")
	b.WriteString(headerFormat + "\n")
	b.WriteString(headerGroup + "\n")
	b.WriteString("\n")
	return b.String()
}

// Store keeps the catalog file and a single backup slot of its previous revision.
type Store struct {
	CatalogPath string
	BackupPath  string

	// OnBackup is called before the previous catalog is copied.
	OnBackup func(path string)
}

// Update copies the current catalog to the backup path, if a catalog exists,
// and then overwrites the catalog with the header followed by data.
// It reports whether a backup was made.
func (s *Store) Update(source, data string, at time.Time) (bool, error) {
	backedUp, err := s.backup()
	if err != nil {
		return backedUp, err
	}

	content := Header(source, at) + data
	if err := os.WriteFile(s.CatalogPath, []byte(content), filePerm); err != nil {
		return backedUp, &WriteError{Stage: StageWrite, Path: s.CatalogPath, Cause: err}
	}

	return backedUp, nil
}

func (s *Store) backup() (bool, error) {
	if _, err := os.Stat(s.CatalogPath); errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	if s.OnBackup != nil {
		s.OnBackup(s.BackupPath)
	}

	prev, err := os.ReadFile(s.CatalogPath)
	if err != nil {
		return false, &WriteError{Stage: StageBackup, Path: s.CatalogPath, Cause: err}
	}
	if err := os.WriteFile(s.BackupPath, prev, filePerm); err != nil {
		return false, &WriteError{Stage: StageBackup, Path: s.BackupPath, Cause: err}
	}
	return true, nil
}

// Size returns the size of the catalog file in bytes.
func (s *Store) Size() (int64, error) {
	info, err := os.Stat(s.CatalogPath)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
