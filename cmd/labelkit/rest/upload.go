package rest

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
)

// Upload is a file content to be sent.
type Upload struct {
	// file name told to the server. Directory part is not sent.
	Name string

	// media type of the content. When empty, it is guessed from the extension of Name.
	ContentType string

	// size in bytes, or zero or negative if unknown.
	//
	// When it is known, the request is sent with Content-Length; otherwise it is chunked.
	Size int64

	// Open starts reading the content. It is called at most once per request.
	Open func() (io.ReadCloser, error)
}

// FileUpload is an Upload of the file at path.
func FileUpload(path string) (Upload, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return Upload{}, err
	}
	if stat.IsDir() {
		return Upload{}, fmt.Errorf("%s is a directory", path)
	}
	return Upload{
		Name: filepath.Base(path),
		Size: stat.Size(),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

// BytesUpload is an Upload of in-memory content.
func BytesUpload(name string, content []byte) Upload {
	return Upload{
		Name: name,
		Size: int64(len(content)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(content)), nil
		},
	}
}

func (u Upload) mediaType() string {
	if u.ContentType != "" {
		return u.ContentType
	}
	if t := mime.TypeByExtension(filepath.Ext(u.Name)); t != "" {
		return t
	}
	return "application/octet-stream"
}
