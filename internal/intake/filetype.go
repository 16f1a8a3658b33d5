package intake

import (
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

const (
	plainText        = "text/plain"
	genericBinary    = "application/octet-stream"
	defaultPlainText = "text/plain; charset=utf-8"
	sniffLen         = 512
)

// DetectFileType returns the effective MIME type of an upload, or an error
// wrapping ErrInvalidFileType when it is not plain text.
//
// A declared type wins unless it is missing or the generic octet-stream, in
// which case the .txt extension stands in for text/plain. Content that sniffs
// as something other than text is rejected either way.
func DetectFileType(name, declared string, content []byte) (string, error) {
	effective := ""
	mediaType := ""

	if d := strings.TrimSpace(declared); d != "" {
		mt, params, err := mime.ParseMediaType(d)
		if err != nil {
			return "", fmt.Errorf("%w: unparseable content type %q", ErrInvalidFileType, declared)
		}
		if mt != genericBinary {
			mediaType = mt
			effective = mime.FormatMediaType(mt, params)
		}
	}

	if mediaType == "" {
		if !strings.EqualFold(filepath.Ext(name), ".txt") {
			return "", fmt.Errorf("%w: %q is not a .txt file", ErrInvalidFileType, name)
		}
		mediaType = plainText
		effective = defaultPlainText
	}

	if mediaType != plainText {
		return "", fmt.Errorf("%w: %s", ErrInvalidFileType, mediaType)
	}

	if len(content) > 0 {
		head := content
		if len(head) > sniffLen {
			head = head[:sniffLen]
		}
		if sniffed := http.DetectContentType(head); !strings.HasPrefix(sniffed, plainText) {
			return "", fmt.Errorf("%w: content looks like %s", ErrInvalidFileType, sniffed)
		}
	}

	return effective, nil
}
