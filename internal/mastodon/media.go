package mastodon

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
)

// MediaUpload is one file for /api/v2/media.
type MediaUpload struct {
	Filename    string
	MIMEType    string
	Data        []byte
	Description string
}

// PostMedia uploads a file. Large files may come back with a nil URL while the
// server is still processing them.
func (c *HTTPClient) PostMedia(ctx context.Context, m MediaUpload) (*MediaAttachment, error) {
	if len(m.Data) == 0 {
		return nil, errors.New("empty media upload")
	}
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	name := filepath.Base(m.Filename)
	if name == "." || name == "/" || name == "" {
		name = "upload"
	}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	ctype := m.MIMEType
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	h.Set("Content-Type", ctype)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("creating media part: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(m.Data)); err != nil {
		return nil, fmt.Errorf("writing media part: %w", err)
	}
	if m.Description != "" {
		if err := w.WriteField("description", m.Description); err != nil {
			return nil, fmt.Errorf("writing media description: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("closing media body: %w", err)
	}

	var out MediaAttachment
	r := request{
		method:   http.MethodPost,
		path:     "/api/v2/media",
		endpoint: "media.create",
		body:     buf.Bytes(),
		ctype:    w.FormDataContentType(),
	}
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
