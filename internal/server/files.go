// ABOUTME: File handlers: multipart upload, attachment download and delete
// ABOUTME: Uploaded bytes live under the files directory with a random name

package server

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/2389/antecedentes/internal/model"
	"github.com/2389/antecedentes/internal/store"
)

// MaxUploadSize bounds a single uploaded file.
const MaxUploadSize = 20 << 20

func (s *Server) handleUploadFile(c *gin.Context) {
	personID, err := strconv.ParseInt(c.PostForm("person_id"), 10, 64)
	if err != nil || personID <= 0 {
		badRequest(c, "person_id is required")
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required")
		return
	}
	if header.Size > MaxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"detail": "file exceeds 20MB"})
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		if sniffed, err := sniff(header); err == nil {
			mimeType = sniffed
		}
	}

	stored := uuid.New().String() + strings.ToLower(filepath.Ext(header.Filename))
	if err := c.SaveUploadedFile(header, filepath.Join(s.cfg.Files.Dir, stored)); err != nil {
		s.writeError(c, fmt.Errorf("saving upload: %w", err))
		return
	}

	f := &store.StoredFile{
		File: model.File{
			PersonID:         personID,
			OriginalFilename: filepath.Base(header.Filename),
			MimeType:         mimeType,
			FileSize:         header.Size,
			Description:      c.PostForm("description"),
		},
		StoredName: stored,
	}
	if err := s.store.CreateFile(c.Request.Context(), f); err != nil {
		s.removeStored(stored)
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, f.File)
}

// sniff detects the content type from the first bytes of an upload.
func sniff(header *multipart.FileHeader) (string, error) {
	r, err := header.Open()
	if err != nil {
		return "", err
	}
	defer r.Close()
	buf := make([]byte, 512)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	return http.DetectContentType(buf[:n]), nil
}

func (s *Server) handleDownloadFile(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	f, err := s.store.GetFile(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	path := filepath.Join(s.cfg.Files.Dir, f.StoredName)
	if _, err := os.Stat(path); err != nil {
		s.logger.Warn("stored file missing", "id", f.ID, "path", path)
		c.JSON(http.StatusNotFound, gin.H{"detail": "file content missing"})
		return
	}
	if f.MimeType != "" {
		c.Header("Content-Type", f.MimeType)
	}
	c.FileAttachment(path, f.OriginalFilename)
}

func (s *Server) handleDeleteFile(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	f, err := s.store.GetFile(ctx, id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if err := s.store.DeleteFile(ctx, id); err != nil {
		s.writeError(c, err)
		return
	}
	s.removeStored(f.StoredName)
	c.Status(http.StatusNoContent)
}

// removeStored deletes the bytes of a stored file, logging failures.
func (s *Server) removeStored(name string) {
	if name == "" {
		return
	}
	if err := os.Remove(filepath.Join(s.cfg.Files.Dir, name)); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("removing stored file", "name", name, "error", err)
	}
}
