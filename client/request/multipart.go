package request

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"github.com/adamwoolhether/courier/client/errs"
)

// File references a file on disk to upload as a multipart/form-data part.
type File struct {
	// Path is the file to read at build time.
	Path string
	// Name overrides the file name sent to the server. Defaults to the base of Path.
	Name string
	// ContentType of the part. Guessed from the extension when empty, falling
	// back to application/octet-stream.
	ContentType string
}

// MarshalJSON rejects Files: they can't be represented in a JSON body.
func (f File) MarshalJSON() ([]byte, error) {
	return nil, fmt.Errorf("file %q can only be sent as multipart form data", f.Path)
}

type formPart struct {
	field    string
	fileName string
	mimeType string
	data     []byte
}

// encodeMultipart reads every part up front so the boundary can be derived
// from the content, which keeps repeated builds byte-identical.
func encodeMultipart(params map[string]any) ([]byte, string, error) {
	var parts []formPart
	for _, key := range sortedKeys(params) {
		if f, ok := params[key].(File); ok {
			part, err := f.read(key)
			if err != nil {
				return nil, "", err
			}
			parts = append(parts, part)
			continue
		}

		values, err := encodeValues(map[string]any{key: params[key]})
		if err != nil {
			return nil, "", err
		}
		for _, field := range sortedKeys(map[string][]string(values)) {
			for _, v := range values[field] {
				parts = append(parts, formPart{field: field, data: []byte(v)})
			}
		}
	}

	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p.field))
		h.Write([]byte(p.fileName))
		h.Write(p.data)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.SetBoundary("courier-" + hex.EncodeToString(h.Sum(nil))[:40]); err != nil {
		return nil, "", fmt.Errorf("setting boundary: %w", err)
	}

	for _, p := range parts {
		header := make(textproto.MIMEHeader)
		if p.fileName != "" {
			header.Set("Content-Disposition",
				`form-data; name="`+escapeQuotes(p.field)+`"; filename="`+escapeQuotes(p.fileName)+`"`)
			header.Set("Content-Type", p.mimeType)
		} else {
			header.Set("Content-Disposition", `form-data; name="`+escapeQuotes(p.field)+`"`)
		}

		pw, err := w.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("creating part %q: %w", p.field, err)
		}
		if _, err := pw.Write(p.data); err != nil {
			return nil, "", fmt.Errorf("writing part %q: %w", p.field, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart writer: %w", err)
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}

func (f File) read(field string) (formPart, error) {
	if f.Path == "" {
		return formPart{}, errs.New(errs.InvalidUploadFilePath, errors.New("empty path"))
	}

	info, err := os.Stat(f.Path)
	if err != nil {
		return formPart{}, errs.New(errs.InvalidUploadFilePath, err)
	}
	if info.IsDir() {
		return formPart{}, errs.New(errs.InvalidUploadFilePath, fmt.Errorf("%s is a directory", f.Path))
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		return formPart{}, errs.New(errs.InvalidUploadFilePath, err)
	}

	name := f.Name
	if name == "" {
		name = filepath.Base(f.Path)
	}

	mimeType := f.ContentType
	if mimeType == "" {
		mimeType = mime.TypeByExtension(filepath.Ext(name))
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	return formPart{field: field, fileName: name, mimeType: mimeType, data: data}, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
