// ABOUTME: File endpoints: multipart upload, streamed download and delete
// ABOUTME: Upload sends file, person_id and description as form fields

package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strconv"

	"github.com/2389/antecedentes/internal/model"
)

// FileService handles /files.
type FileService struct {
	c *Client
}

// Upload attaches content to a person.
func (s *FileService) Upload(ctx context.Context, personID int64, filename string, content io.Reader, description string) (*model.File, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("person_id", strconv.FormatInt(personID, 10)); err != nil {
		return nil, fmt.Errorf("building upload: %w", err)
	}
	if err := mw.WriteField("description", description); err != nil {
		return nil, fmt.Errorf("building upload: %w", err)
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(filename)))
	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("building upload: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("building upload: %w", err)
	}

	var f model.File
	err = s.c.do(ctx, &request{
		method:      http.MethodPost,
		path:        "/files/upload",
		body:        &buf,
		contentType: mw.FormDataContentType(),
	}, &f)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Download streams a file into w and returns the server-provided filename.
func (s *FileService) Download(ctx context.Context, id int64, w io.Writer) (string, int64, error) {
	resp, err := s.c.send(ctx, &request{method: http.MethodGet, path: idPath("/files/%d/download", id)})
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	filename := fmt.Sprintf("file-%d", id)
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		filename = filepath.Base(params["filename"])
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return filename, n, fmt.Errorf("%w: downloading file %d: %v", ErrConnection, id, err)
	}
	return filename, n, nil
}

// Delete removes a file.
func (s *FileService) Delete(ctx context.Context, id int64) error {
	return s.c.do(ctx, &request{method: http.MethodDelete, path: idPath("/files/%d", id)}, nil)
}
