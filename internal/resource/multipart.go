package resource

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// FormFile is a file part of a multipart body
type FormFile struct {
	Field     string
	Name      string
	MediaType string
	Data      []byte
}

// MultipartBody is a multipart/form-data payload. Fields keep insertion order.
type MultipartBody struct {
	fields [][2]string
	files  []FormFile
}

// NewMultipartBody creates an empty multipart body
func NewMultipartBody() *MultipartBody {
	return &MultipartBody{}
}

// Field appends a text field
func (b *MultipartBody) Field(name, value string) *MultipartBody {
	b.fields = append(b.fields, [2]string{name, value})
	return b
}

// File appends a file part
func (b *MultipartBody) File(f FormFile) *MultipartBody {
	b.files = append(b.files, f)
	return b
}

// Encode implements Body
func (b *MultipartBody) Encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range b.files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(f.Field), escapeQuotes(f.Name)))
		mediaType := f.MediaType
		if mediaType == "" {
			mediaType = "application/octet-stream"
		}
		header.Set("Content-Type", mediaType)

		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create file part %s: %w", f.Field, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", fmt.Errorf("failed to write file part %s: %w", f.Field, err)
		}
	}

	for _, kv := range b.fields {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", kv[0], err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
