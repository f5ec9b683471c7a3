package reportsource

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"

	"github.com/yanqian/fleet-risk-dashboard/internal/domain/reportarchive"
)

// FilesystemSource reads report documents from a flat directory of JSON files.
type FilesystemSource struct {
	fsys fs.FS
	dir  string
}

// NewFilesystemSource serves reports stored under dir.
func NewFilesystemSource(dir string) *FilesystemSource {
	return &FilesystemSource{fsys: os.DirFS(dir), dir: dir}
}

// newFSSource is used by tests with fstest.MapFS.
func newFSSource(fsys fs.FS) *FilesystemSource {
	return &FilesystemSource{fsys: fsys, dir: "."}
}

// Dir returns the directory backing the source.
func (s *FilesystemSource) Dir() string {
	return s.dir
}

// List implements reportarchive.Source. A missing directory is an empty archive.
func (s *FilesystemSource) List(ctx context.Context) ([]reportarchive.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	matches, err := fs.Glob(s.fsys, "*.json")
	if err != nil {
		return nil, fmt.Errorf("list reports in %s: %w", s.dir, err)
	}
	out := make([]reportarchive.Entry, 0, len(matches))
	for _, name := range matches {
		info, statErr := fs.Stat(s.fsys, name)
		if statErr != nil || !info.Mode().IsRegular() {
			continue
		}
		out = append(out, reportarchive.NewEntry(name))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Read implements reportarchive.Source.
func (s *FilesystemSource) Read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !fs.ValidPath(name) || path.Base(name) != name {
		return nil, reportarchive.ErrNotFound
	}
	payload, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, reportarchive.ErrNotFound
		}
		return nil, fmt.Errorf("read report %s: %w", name, err)
	}
	return payload, nil
}

var _ reportarchive.Source = (*FilesystemSource)(nil)
