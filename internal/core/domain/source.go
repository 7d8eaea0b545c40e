package domain

import "time"

// SourceFile is a file read for import into the knowledge store.
type SourceFile struct {
	// Path is the absolute file path.
	Path string

	// RelPath is the slash-separated path relative to the import root.
	RelPath string

	// Content is the raw file content.
	Content []byte

	// ModTime is the file's modification time.
	ModTime time.Time
}

// DocumentID returns a stable knowledge document ID for the file, so that
// importing the same tree again updates documents in place.
func (f SourceFile) DocumentID() string {
	return "file:" + f.RelPath
}

// ImportReport summarises one import run.
type ImportReport struct {
	// Files is the number of files read.
	Files int

	// Documents is the number of knowledge documents written. Long files
	// are split into several documents.
	Documents int

	// Removed counts stale parts deleted after a file shrank.
	Removed int

	// Skipped lists files that could not be normalised, with the reason.
	Skipped map[string]string
}
