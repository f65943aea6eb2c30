package storage

import (
	"bytes"
	"errors"
	"io"
	"path"
	"strings"

	"fridge-backend/models"

	"github.com/gabriel-vasile/mimetype"
)

// ErrUnsupportedMedia is returned by Sniff for content outside the allow list.
var ErrUnsupportedMedia = errors.New("only images and videos are allowed")

const octetStream = "application/octet-stream"

// sniffLen is how much of an upload is buffered for content detection.
const sniffLen = 3072

var allowedMedia = []struct {
	mime     string
	fileType models.FileType
}{
	{"image/jpeg", models.FileTypeImage},
	{"image/png", models.FileTypeImage},
	{"image/gif", models.FileTypeImage},
	{"video/mp4", models.FileTypeVideo},
	{"video/webm", models.FileTypeVideo},
	{"video/quicktime", models.FileTypeVideo},
}

// Media describes sniffed upload content.
type Media struct {
	ContentType string
	FileType    models.FileType
}

// Sniff detects the content type of r from its leading bytes. It returns the
// detected media and a reader that replays the whole stream, sniffed bytes
// included.
func Sniff(r io.Reader) (*Media, io.Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, nil, err
	}
	head = head[:n]

	detected := mimetype.Detect(head)
	for _, a := range allowedMedia {
		if detected.Is(a.mime) {
			media := &Media{ContentType: a.mime, FileType: a.fileType}
			return media, io.MultiReader(bytes.NewReader(head), r), nil
		}
	}
	return nil, nil, ErrUnsupportedMedia
}

// ContentType maps a stored reference back to its MIME type through the
// extension mimetype assigned at Put time.
func ContentType(ref string) string {
	ext := strings.ToLower(path.Ext(ref))
	if ext == "" {
		return octetStream
	}
	for _, a := range allowedMedia {
		if m := mimetype.Lookup(a.mime); m != nil && m.Extension() == ext {
			return a.mime
		}
	}
	return octetStream
}
