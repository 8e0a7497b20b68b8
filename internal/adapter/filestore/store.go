package filestore

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrExists is returned by Save when the target name is already stored.
var ErrExists = errors.New("file already exists")

// tempPrefix marks partial downloads. They are never listed.
const tempPrefix = ".download-"

// Store implements domain.WallpaperStore on a single flat directory.
type Store struct {
	dir string
}

// New creates a Store, creating dir if it does not exist yet.
func New(dir string) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("create wallpaper dir: %w", err)
	}
	return &Store{dir: abs}, nil
}

// Dir returns the absolute directory path.
func (s *Store) Dir() string {
	return s.dir
}

// List returns the absolute paths of all regular files in the directory,
// sorted by name. Subdirectories and links to directories are skipped.
func (s *Store) List() ([]string, error) {
	infos, err := s.files()
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(infos))
	for _, fi := range infos {
		paths = append(paths, filepath.Join(s.dir, fi.Name()))
	}
	return paths, nil
}

// Usage returns the number of stored files and their total size.
func (s *Store) Usage() (int, int64, error) {
	infos, err := s.files()
	if err != nil {
		return 0, 0, err
	}
	var total int64
	for _, fi := range infos {
		total += fi.Size()
	}
	return len(infos), total, nil
}

// Has reports whether a file with the given name exists in the directory.
func (s *Store) Has(name string) bool {
	_, err := os.Lstat(filepath.Join(s.dir, name))
	return err == nil
}

// Save writes r to a temp file next to the target and renames it into
// place, so an interrupted download never leaves a file under name.
func (s *Store) Save(name string, r io.Reader) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	dst := filepath.Join(s.dir, name)
	if s.Has(name) {
		return "", fmt.Errorf("%s: %w", dst, ErrExists)
	}

	tmp, err := os.CreateTemp(s.dir, tempPrefix+"*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("move %s into place: %w", name, err)
	}

	log.Debug().Str("file", dst).Int64("bytes", n).Msg("stored")
	return dst, nil
}

// files stats every directory entry, following symlinks, and keeps the
// regular files in directory order.
func (s *Store) files() ([]fs.FileInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	var infos []fs.FileInfo
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), tempPrefix) {
			continue
		}
		fi, err := os.Stat(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			// dangling symlink
			continue
		}
		if !fi.Mode().IsRegular() {
			continue
		}
		infos = append(infos, fi)
	}
	return infos, nil
}
