package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fortio.org/safecast"
)

// FileSet manages a collection of source files and resolves spans back to
// line/column positions.
type FileSet struct {
	files []File
	index map[string]FileID // normalized path -> id
}

// NewFileSet creates a new empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]File, 0),
		index: make(map[string]FileID),
	}
}

// Add stores a file from normalized bytes, computes its line index, and
// returns a new FileID. Adding the same path again re-points the index at
// the newest version.
func (fs *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	normalized := NormalizePath(path)
	lenFiles, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("source: file count overflow: %w", err))
	}
	id := FileID(lenFiles)
	fs.files = append(fs.files, File{
		ID:      id,
		Path:    normalized,
		Content: content,
		LineIdx: buildLineIndex(content),
		Flags:   flags,
	})
	fs.index[normalized] = id
	return id
}

// Load reads a file from disk, normalizes line endings, and calls Add.
func (fs *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path comes from the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	content = normalizeContent(content)
	return fs.Add(path, content, 0), nil
}

// Get returns the file for an ID.
func (fs *FileSet) Get(id FileID) (*File, bool) {
	if int(id) >= len(fs.files) {
		return nil, false
	}
	return &fs.files[id], true
}

// ByPath returns the file registered under the normalized path.
func (fs *FileSet) ByPath(path string) (*File, bool) {
	id, ok := fs.index[NormalizePath(path)]
	if !ok {
		return nil, false
	}
	return fs.Get(id)
}

// Len returns the number of files.
func (fs *FileSet) Len() int { return len(fs.files) }

// Position resolves the start of a span to a 1-based line/column pair.
func (fs *FileSet) Position(sp Span) (string, LineCol) {
	f, ok := fs.Get(sp.File)
	if !ok {
		return "", LineCol{Line: 1, Col: 1}
	}
	return f.Path, lookupLineCol(f.LineIdx, sp.Start)
}

// NormalizePath converts a path to the canonical slash-separated form used
// as a map key across the compiler.
func NormalizePath(path string) string {
	cleaned := filepath.ToSlash(filepath.Clean(path))
	return strings.TrimPrefix(cleaned, "./")
}

func normalizeContent(content []byte) []byte {
	// Strip a UTF-8 BOM and fold CRLF to LF.
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		content = content[3:]
	}
	if !strings.Contains(string(content), "\r\n") {
		return content
	}
	return []byte(strings.ReplaceAll(string(content), "\r\n", "\n"))
}

// buildLineIndex records the byte offset of every line start.
func buildLineIndex(content []byte) []uint32 {
	idx := []uint32{0}
	for i, b := range content {
		if b == '\n' {
			off, err := safecast.Conv[uint32](i + 1)
			if err != nil {
				panic(fmt.Errorf("source: line offset overflow: %w", err))
			}
			idx = append(idx, off)
		}
	}
	return idx
}

func lookupLineCol(lineIdx []uint32, offset uint32) LineCol {
	if len(lineIdx) == 0 {
		return LineCol{Line: 1, Col: 1}
	}
	line := sort.Search(len(lineIdx), func(i int) bool {
		return lineIdx[i] > offset
	})
	start := lineIdx[line-1]
	lineNo, err := safecast.Conv[uint32](line)
	if err != nil {
		panic(fmt.Errorf("source: line number overflow: %w", err))
	}
	return LineCol{Line: lineNo, Col: offset - start + 1}
}
