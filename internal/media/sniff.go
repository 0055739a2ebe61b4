package media

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrUnsupportedMedia is returned when a file's content is clearly not audio or video.
var ErrUnsupportedMedia = errors.New("unsupported media")

// Sniff detects the MIME type of path from its content.
func Sniff(path string) (string, error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("media: detect type of %s: %w", path, err)
	}
	return mt.String(), nil
}

// CheckSupported returns ErrUnsupportedMedia when mime names a type no
// decoder will accept. Unknown binary content is let through and left to
// the decoder to judge.
func CheckSupported(mime string) error {
	base, _, _ := strings.Cut(mime, ";")
	switch {
	case strings.HasPrefix(base, "audio/"),
		strings.HasPrefix(base, "video/"),
		base == "application/ogg",
		base == "application/octet-stream":
		return nil
	}
	return fmt.Errorf("%w: content is %s", ErrUnsupportedMedia, base)
}
