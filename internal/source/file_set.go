package source

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"fortio.org/safecast"
)

// FileSet owns every file loaded during one run and turns spans back into
// line and column positions. It is not safe for concurrent mutation; the
// parallel driver loads all files before any worker starts.
type FileSet struct {
	files   []File
	byPath  map[string]FileID
	baseDir string
}

func NewFileSet() *FileSet {
	return &FileSet{byPath: make(map[string]FileID)}
}

// SetBaseDir sets the directory relative paths are computed against.
func (fs *FileSet) SetBaseDir(dir string) { fs.baseDir = dir }

// BaseDir returns the base directory, or the working directory when unset.
func (fs *FileSet) BaseDir() string {
	if fs.baseDir != "" {
		return fs.baseDir
	}
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return wd
}

// Add stores already normalized content under a fresh FileID. Adding the
// same path twice keeps both versions; GetLatest finds the newer one.
func (fs *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	n, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("too many files: %w", err))
	}
	if _, err := safecast.Conv[uint32](len(content)); err != nil {
		panic(fmt.Errorf("%s is too large: %w", path, err))
	}
	id := FileID(n)
	path = normalizePath(path)
	fs.files = append(fs.files, File{
		ID:         id,
		Path:       path,
		Content:    content,
		LineStarts: lineStarts(content),
		Hash:       sha256.Sum256(content),
		Flags:      flags,
	})
	fs.byPath[path] = id
	return id
}

// Load reads and normalizes a file from disk.
func (fs *FileSet) Load(path string) (FileID, error) {
	content, err := os.ReadFile(path) // #nosec G304 -- path comes from the command line
	if err != nil {
		return 0, err
	}
	content, flags := Normalize(content)
	return fs.Add(path, content, flags), nil
}

// AddVirtual adds in-memory content, e.g. from a test or stdin.
func (fs *FileSet) AddVirtual(name string, content []byte) FileID {
	content, flags := Normalize(content)
	return fs.Add(name, content, flags|FileVirtual)
}

// Get returns nil for an unknown id.
func (fs *FileSet) Get(id FileID) *File {
	if int(id) >= len(fs.files) {
		return nil
	}
	return &fs.files[id]
}

func (fs *FileSet) Len() int { return len(fs.files) }

// GetLatest returns the newest file added under path.
func (fs *FileSet) GetLatest(path string) (FileID, bool) {
	id, ok := fs.byPath[normalizePath(path)]
	return id, ok
}

// Resolve converts both ends of span to 1-based positions. Spans of unknown
// files resolve to zero positions.
func (fs *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fs.Get(span.File)
	if f == nil {
		return LineCol{}, LineCol{}
	}
	return f.position(span.Start), f.position(span.End)
}

func (f *File) size() uint32 {
	return uint32(len(f.Content)) //nolint:gosec // checked in Add
}

// position converts a byte offset to a line and column.
func (f *File) position(off uint32) LineCol {
	line, found := slices.BinarySearch(f.LineStarts, off)
	if !found {
		line--
	}
	return LineCol{
		Line: uint32(line) + 1, //nolint:gosec // line < len(LineStarts)
		Col:  off - f.LineStarts[line] + 1,
	}
}

// FullSpan covers the whole content.
func (f *File) FullSpan() Span {
	return Span{File: f.ID, End: f.size()}
}

// Slice returns the text under span, clamped to the content.
func (f *File) Slice(span Span) string {
	start, end := min(span.Start, f.size()), min(span.End, f.size())
	if end < start {
		return ""
	}
	return string(f.Content[start:end])
}

// GetLine returns the 1-based line n without its newline, or "" when there is
// no such line.
func (f *File) GetLine(n uint32) string {
	if n == 0 || int(n) > len(f.LineStarts) {
		return ""
	}
	start := f.LineStarts[n-1]
	end := f.size()
	if int(n) < len(f.LineStarts) {
		end = f.LineStarts[n] - 1
	}
	return string(f.Content[start:end])
}

// FormatPath renders the path for output. mode is one of "absolute",
// "relative", "basename" and "auto"; anything else prints Path unchanged.
func (f *File) FormatPath(mode, baseDir string) string {
	switch mode {
	case "absolute":
		if abs, err := AbsolutePath(f.Path); err == nil {
			return abs
		}
	case "relative":
		if baseDir == "" {
			baseDir, _ = os.Getwd()
		}
		if rel, err := RelativePath(f.Path, baseDir); err == nil {
			return rel
		}
	case "basename":
		return BaseName(f.Path)
	case "auto":
		// длинные абсолютные пути сокращаем до имени файла
		if filepath.IsAbs(f.Path) && len(f.Path) >= 40 {
			return BaseName(f.Path)
		}
	}
	return f.Path
}
