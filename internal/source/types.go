package source

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about a source file.
	FileFlags uint8
)

const (
	// FileVirtual indicates the file was added from memory (snapshot, test).
	FileVirtual FileFlags = 1 << iota
	// FileEntry marks a translation unit that belongs to the entry set;
	// reachable-mode compilation starts from these.
	FileEntry
)

// File captures metadata and content for a single translation unit.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Flags   FileFlags
}

// IsEntry reports whether the file is part of the entry set.
func (f *File) IsEntry() bool { return f.Flags&FileEntry != 0 }

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}
