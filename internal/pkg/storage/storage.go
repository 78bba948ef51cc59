package storage

import (
	"context"
	"io"
)

// FileStorage stores rendered reports.
type FileStorage interface {
	// Upload stores the content under path and returns its metadata.
	Upload(ctx context.Context, file io.Reader, path string, contentType string) (FileInfo, error)

	// Download opens a stored file.
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a file. Deleting a missing file is not an error.
	Delete(ctx context.Context, path string) error

	// URL returns the public URL of a stored file.
	URL(path string) string
}

// FileInfo describes a stored file.
type FileInfo struct {
	Path     string `json:"path"`
	URL      string `json:"url"`
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size"`
	FileType string `json:"file_type"`
}
