package tweepy

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/shuuji3/tweepy-mastodon/internal/mastodon"
)

// MediaUpload uploads file, or the file at filename when file is nil. The
// returned MediaID can be passed to UpdateStatus.
func (a *API) MediaUpload(ctx context.Context, filename string, file io.Reader, p MediaUploadParams) (*Media, error) {
	a.unsupported("media_upload", p.ignored())
	if file == nil {
		f, err := os.Open(filename)
		if err != nil {
			return nil, fmt.Errorf("opening media: %w", err)
		}
		defer f.Close()
		file = f
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("reading media: %w", err)
	}
	mimeType := detectMIME(filename, data)
	att, err := a.target.PostMedia(ctx, mastodon.MediaUpload{
		Filename:    filename,
		MIMEType:    mimeType,
		Data:        data,
		Description: p.AltText,
	})
	if err != nil {
		return nil, err
	}
	return a.conv.ConvertMedia(att, int64(len(data)), mimeType)
}

// detectMIME sniffs the content first and falls back to the file extension
// when the bytes are not recognised.
func detectMIME(filename string, data []byte) string {
	m := mimetype.Detect(data)
	if !m.Is("application/octet-stream") && !m.Is("text/plain") {
		return baseMIME(m.String())
	}
	if ext := filepath.Ext(filename); ext != "" {
		if t := mime.TypeByExtension(strings.ToLower(ext)); t != "" {
			return baseMIME(t)
		}
	}
	return baseMIME(m.String())
}

func baseMIME(t string) string {
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = t[:i]
	}
	return strings.TrimSpace(t)
}
