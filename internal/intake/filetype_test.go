package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFileType(t *testing.T) {
	pdf := []byte("%PDF-1.7\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")
	text := []byte("FOUNDERS AGREEMENT\nThis agreement is made between the founders.")

	tests := []struct {
		name      string
		fileName  string
		declared  string
		content   []byte
		want      string
		wantError bool
	}{
		{name: "declared plain text", fileName: "founders.txt", declared: "text/plain", content: text, want: "text/plain"},
		{name: "charset kept", fileName: "founders.txt", declared: "text/plain; charset=UTF-8", content: text, want: "text/plain; charset=UTF-8"},
		{name: "no declared type uses extension", fileName: "founders.TXT", content: text, want: "text/plain; charset=utf-8"},
		{name: "octet stream uses extension", fileName: "notes.txt", declared: "application/octet-stream", content: text, want: "text/plain; charset=utf-8"},
		{name: "pdf declared", fileName: "founders.pdf", declared: "application/pdf", content: pdf, wantError: true},
		{name: "pdf without type", fileName: "founders.pdf", content: pdf, wantError: true},
		{name: "docx declared", fileName: "a.docx", declared: "application/vnd.openxmlformats-officedocument.wordprocessingml.document", wantError: true},
		{name: "binary renamed to txt", fileName: "founders.txt", declared: "text/plain", content: pdf, wantError: true},
		{name: "garbage content type", fileName: "a.txt", declared: "text/", content: text, wantError: true},
		{name: "markdown declared", fileName: "readme.txt", declared: "text/markdown", content: text, wantError: true},
		{name: "empty text file", fileName: "empty.txt", declared: "text/plain", want: "text/plain"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DetectFileType(tc.fileName, tc.declared, tc.content)
			if tc.wantError {
				require.ErrorIs(t, err, ErrInvalidFileType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
