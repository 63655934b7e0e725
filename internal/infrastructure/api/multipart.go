package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/tradebridge/rfq-marketplace/internal/core/ports"
)

// encodeMultipart builds the marketplace's multipart submission format: one
// "data" part carrying the JSON payload, followed by the file parts.
func encodeMultipart(data any, files []ports.Upload) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, "", fmt.Errorf("encode data part: %w", err)
	}
	if err := w.WriteField("data", string(raw)); err != nil {
		return nil, "", fmt.Errorf("write data part: %w", err)
	}

	for _, f := range files {
		part, err := w.CreatePart(fileHeader(f))
		if err != nil {
			return nil, "", fmt.Errorf("create file part %s: %w", f.Field, err)
		}
		if _, err := part.Write(f.Content); err != nil {
			return nil, "", fmt.Errorf("write file part %s: %w", f.Field, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}
	return body, w.FormDataContentType(), nil
}

func fileHeader(f ports.Upload) textproto.MIMEHeader {
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`,
		escapeQuotes(f.Field), escapeQuotes(f.FileName)))
	if f.ContentType != "" {
		h.Set("Content-Type", f.ContentType)
	} else {
		h.Set("Content-Type", "application/octet-stream")
	}
	return h
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
