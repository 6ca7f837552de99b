package refstore

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/banshee-data/gridcheck/internal/fsutil"
	"github.com/banshee-data/gridcheck/internal/monitoring"
	"github.com/banshee-data/gridcheck/internal/security"
)

const entryExt = ".grid.gz"

// FileStore keeps one gob+gzip file per entry under Root/<test>/<grid>.grid.gz.
// Names that are already safe file names are used as they are. Any other
// name is sanitized and suffixed with "~" and a hash of the raw name, so
// distinct keys map to distinct files. The raw key is stored inside the
// file and checked on load and save.
type FileStore struct {
	Root string
	FS   fsutil.FileSystem
}

// NewFileStore returns a store rooted at dir on the OS filesystem.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Root: dir, FS: fsutil.OSFileSystem{}}
}

var _ Store = (*FileStore)(nil)

var logf = monitoring.Component("RefStore")

// pathComponent maps a raw name to a file name. Sanitized names never
// contain '~', so hashed and unhashed names cannot collide.
func pathComponent(name string) string {
	clean := security.SanitizeFilename(name)
	if clean == name {
		return name
	}
	sum := sha256.Sum256([]byte(name))
	return clean + "~" + hex.EncodeToString(sum[:6])
}

func (s *FileStore) testDir(testID string) string {
	return filepath.Join(s.Root, pathComponent(testID))
}

func (s *FileStore) path(testID, gridName string) (string, error) {
	p := filepath.Join(s.testDir(testID), pathComponent(gridName)+entryExt)
	if _, ok := s.FS.(fsutil.OSFileSystem); ok {
		if err := security.ValidatePathWithinDirectory(p, s.Root); err != nil {
			return "", err
		}
	}
	return p, nil
}

// Load reads and decodes the entry for the key.
func (s *FileStore) Load(testID, gridName string) (*Entry, error) {
	p, err := s.path(testID, gridName)
	if err != nil {
		return nil, err
	}
	blob, err := s.FS.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, keyString(testID, gridName))
		}
		return nil, fmt.Errorf("read reference %s: %w", p, err)
	}
	e, err := DecodeEntry(blob)
	if err != nil {
		return nil, fmt.Errorf("decode reference %s: %w", p, err)
	}
	if e.TestID != testID || e.GridName != gridName {
		return nil, fmt.Errorf("%w: %s holds %s", ErrNotFound, p, keyString(e.TestID, e.GridName))
	}
	return e, nil
}

// Save writes the entry, replacing any previous file for the key. It fails
// with ErrKeyCollision rather than overwrite an entry for another key.
func (s *FileStore) Save(e *Entry) error {
	blob, err := EncodeEntry(e)
	if err != nil {
		return err
	}
	p, err := s.path(e.TestID, e.GridName)
	if err != nil {
		return err
	}
	if prev, err := s.FS.ReadFile(p); err == nil {
		if old, err := DecodeEntry(prev); err == nil && (old.TestID != e.TestID || old.GridName != e.GridName) {
			return fmt.Errorf("%w: %s holds %s, not %s", ErrKeyCollision, p,
				keyString(old.TestID, old.GridName), keyString(e.TestID, e.GridName))
		}
	}
	if err := s.FS.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create reference dir: %w", err)
	}
	if err := s.FS.WriteFile(p, blob, 0o644); err != nil {
		return fmt.Errorf("write reference %s: %w", p, err)
	}
	logf("saved %s (%s %s, %d bytes)", keyString(e.TestID, e.GridName), e.Kind, e.Size, len(blob))
	return nil
}

// List returns the grid names stored for testID. Each file is decoded so
// the raw names are returned.
func (s *FileStore) List(testID string) ([]string, error) {
	dir := s.testDir(testID)
	names, err := s.FS.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var grids []string
	for _, n := range names {
		if !strings.HasSuffix(n, entryExt) {
			continue
		}
		p := filepath.Join(dir, n)
		blob, err := s.FS.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read reference %s: %w", p, err)
		}
		e, err := DecodeEntry(blob)
		if err != nil {
			return nil, fmt.Errorf("decode reference %s: %w", p, err)
		}
		if e.TestID == testID {
			grids = append(grids, e.GridName)
		}
	}
	sort.Strings(grids)
	return grids, nil
}

// Delete removes the file for the key.
func (s *FileStore) Delete(testID, gridName string) error {
	p, err := s.path(testID, gridName)
	if err != nil {
		return err
	}
	if _, err := s.Load(testID, gridName); err != nil {
		return err
	}
	if err := s.FS.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, keyString(testID, gridName))
		}
		return err
	}
	return nil
}
