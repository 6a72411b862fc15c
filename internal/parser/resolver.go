package parser

import (
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"bennypowers.dev/lessc/internal/collections"
	"github.com/bmatcuk/doublestar/v4"
)

// FileResolver opens imported files. Paths use the host separator for
// OSResolver and forward slashes for FSResolver.
type FileResolver interface {
	Open(name string) (io.ReadCloser, error)
	Glob(pattern string) ([]string, error)
}

// OSResolver reads from the local file system
type OSResolver struct{}

func (OSResolver) Open(name string) (io.ReadCloser, error) {
	return os.Open(name)
}

func (OSResolver) Glob(pattern string) ([]string, error) {
	return doublestar.FilepathGlob(pattern)
}

// FSResolver reads from an fs.FS, such as an embed.FS or fstest.MapFS
type FSResolver struct {
	FS fs.FS
}

func (r FSResolver) Open(name string) (io.ReadCloser, error) {
	return r.FS.Open(fsPath(name))
}

func (r FSResolver) Glob(pattern string) ([]string, error) {
	return doublestar.Glob(r.FS, fsPath(pattern))
}

func fsPath(name string) string {
	return strings.TrimPrefix(path.Clean(filepath.ToSlash(name)), "/")
}

// isGlob reports whether an import path is a pattern
func isGlob(p string) bool {
	return strings.ContainsAny(p, "*?[{")
}

// Sources is the ordered list of files that make up one stylesheet. It is
// shared by every parser spawned for imports so each file is read once.
type Sources struct {
	files collections.OrderedSet[string]
}

// NewSources creates a list holding the given files
func NewSources(files ...string) *Sources {
	s := &Sources{}
	for _, f := range files {
		s.Add(f)
	}
	return s
}

// Add records a file. It reports false if the file was already present.
func (s *Sources) Add(file string) bool {
	return s.files.Add(normalize(file))
}

// Has reports whether file was already recorded
func (s *Sources) Has(file string) bool {
	return s.files.Has(normalize(file))
}

// Files returns the recorded files in the order they were first seen
func (s *Sources) Files() []string {
	return s.files.Members()
}

func normalize(file string) string {
	return filepath.Clean(file)
}
