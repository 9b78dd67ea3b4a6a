package backend

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
)

// Body is a request payload.
type Body interface {
	encode() ([]byte, string, error)
}

type jsonBody struct{ v any }

// JSONBody encodes v as application/json.
func JSONBody(v any) Body { return jsonBody{v: v} }

func (b jsonBody) encode() ([]byte, string, error) {
	data, err := codec.Marshal(b.v)
	if err != nil {
		return nil, "", err
	}
	return data, "application/json", nil
}

// File is an uploaded file forwarded as a multipart part.
type File struct {
	Field    string
	Filename string
	Data     []byte
}

// FileFromHeader reads an uploaded form file into memory, refusing anything larger than limit bytes.
func FileFromHeader(field string, fh *multipart.FileHeader, limit int64) (*File, error) {
	if fh == nil {
		return nil, nil
	}
	if limit > 0 && fh.Size > limit {
		return nil, fmt.Errorf("%s: %w", fh.Filename, ErrFileTooLarge)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", fh.Filename, err)
	}
	return &File{Field: field, Filename: fh.Filename, Data: data}, nil
}

// MultipartBody is a multipart/form-data payload. Fields keep their order.
type MultipartBody struct {
	Fields [][2]string
	Files  []*File
}

func (b MultipartBody) encode() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, kv := range b.Fields {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", err
		}
	}
	for _, f := range b.Files {
		if f == nil {
			continue
		}
		part, err := w.CreateFormFile(f.Field, f.Filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
