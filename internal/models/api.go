// Package models contains the JSON request and response shapes of the API.
package models

import "time"

// UploadResponse is returned by POST /upload/.
type UploadResponse struct {
	Status  string `json:"status"`
	FileURL string `json:"file_url"`
}

// DirectoryRequest is the body of POST /directories.
type DirectoryRequest struct {
	Path string `json:"path"`
}

// DirectoryResponse is returned when a directory was created.
type DirectoryResponse struct {
	Status string `json:"status"`
	Path   string `json:"path"`
}

// EntryResponse represents one resource in a directory listing.
type EntryResponse struct {
	Name          string    `json:"name"`
	Path          string    `json:"path"`
	IsDir         bool      `json:"is_dir"`
	Size          int64     `json:"size"`
	FormattedSize string    `json:"formatted_size"`
	ModTime       time.Time `json:"mod_time"`
	ETag          string    `json:"etag,omitempty"`
	ContentType   string    `json:"content_type,omitempty"`
}

// ListResponse is returned by GET /files.
type ListResponse struct {
	Path    string          `json:"path"`
	Entries []EntryResponse `json:"entries"`
}

// DeleteResponse is returned by DELETE /files.
type DeleteResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Status string `json:"status"`
	Detail string `json:"detail"`
}
