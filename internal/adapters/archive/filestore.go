package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// snapshotExt is the on-disk snapshot file extension.
const snapshotExt = ".json"

// FileStore keeps one JSON document per date under a root directory. Writes
// go through a temp file and rename so a record is replaced atomically.
type FileStore struct {
	root string
}

// NewFileStore creates a file-backed archive rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{root: dir}
}

// Write replaces the snapshot for date.
func (s *FileStore) Write(ctx context.Context, date string, rows []Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !ValidDate(date) {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("create archive dir: %w", err)
	}

	body, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	body = append(body, '\n')

	tmp, err := os.CreateTemp(s.root, date+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(date)); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// LatestBefore scans the root dir for the newest dated snapshot before date.
func (s *FileStore) LatestBefore(ctx context.Context, date string) (string, []Row, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}
	if !ValidDate(date) {
		return "", nil, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}

	entries, err := os.ReadDir(s.root)
	if os.IsNotExist(err) {
		return "", nil, ErrNoSnapshot
	}
	if err != nil {
		return "", nil, fmt.Errorf("list archive dir: %w", err)
	}

	var dates []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, snapshotExt) {
			continue
		}
		d := strings.TrimSuffix(name, snapshotExt)
		// Date keys sort lexicographically in chronological order.
		if ValidDate(d) && d < date {
			dates = append(dates, d)
		}
	}
	if len(dates) == 0 {
		return "", nil, ErrNoSnapshot
	}
	sort.Strings(dates)
	latest := dates[len(dates)-1]

	body, err := os.ReadFile(s.path(latest))
	if err != nil {
		return "", nil, fmt.Errorf("read snapshot %s: %w", latest, err)
	}
	var rows []Row
	if err := json.Unmarshal(body, &rows); err != nil {
		return "", nil, fmt.Errorf("%w: %s: %w", ErrCorruptSnapshot, latest, err)
	}
	return latest, rows, nil
}

func (s *FileStore) path(date string) string {
	return filepath.Join(s.root, date+snapshotExt)
}
