// ABOUTME: File attachment entity and image/document classification
// ABOUTME: Classification sniffs the MIME type first and falls back to the extension

package model

import (
	"encoding/json"
	"path/filepath"
	"strings"
)

// FileKind classifies an attachment for display.
type FileKind string

const (
	FileKindImage    FileKind = "image"
	FileKindDocument FileKind = "document"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".svg":  true,
}

// ClassifyFile decides whether an attachment is an image or a document.
func ClassifyFile(mimeType, filename string) FileKind {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "image/") {
		return FileKindImage
	}
	if imageExtensions[strings.ToLower(filepath.Ext(filename))] {
		return FileKindImage
	}
	return FileKindDocument
}

// File is an attachment owned by a person.
type File struct {
	ID               int64     `json:"file_id"`
	PersonID         int64     `json:"person_id"`
	OriginalFilename string    `json:"original_filename"`
	MimeType         string    `json:"mime_type"`
	FileSize         int64     `json:"file_size"`
	Description      string    `json:"description"`
	CreatedAt        Timestamp `json:"created_at"`
}

// Kind classifies the file.
func (f *File) Kind() FileKind {
	return ClassifyFile(f.MimeType, f.OriginalFilename)
}

// UnmarshalJSON accepts file_id or id, and mime_type or mimetype.
func (f *File) UnmarshalJSON(data []byte) error {
	type wire File
	aux := struct {
		*wire
		AltID   *int64 `json:"id"`
		AltMime string `json:"mimetype"`
	}{wire: (*wire)(f)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if f.ID == 0 && aux.AltID != nil {
		f.ID = *aux.AltID
	}
	if f.MimeType == "" {
		f.MimeType = aux.AltMime
	}
	return nil
}
