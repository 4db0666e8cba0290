package gmail

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadAttachment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello\x00world"), 0600))

	part, err := readAttachment(path)
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", part.Filename)
	assert.Equal(t, []byte("hello\x00world"), part.Data)
}

func TestReadAttachment_KeepsBaseName(t *testing.T) {
	dir := t.TempDir()
	names := []string{"report..final.txt", "weird\\name.txt", "résumé.pdf", ".hidden"}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte("x"), 0600))

			part, err := readAttachment(path)
			require.NoError(t, err)
			assert.Equal(t, name, part.Filename)
		})
	}
}

func TestReadAttachment_Errors(t *testing.T) {
	dir := t.TempDir()

	big := filepath.Join(dir, "big.bin")
	f, err := os.Create(big)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(MaxAttachmentSize+1))
	require.NoError(t, f.Close())

	crlf := filepath.Join(dir, "a\r\nX-Injected: 1.txt")
	require.NoError(t, os.WriteFile(crlf, []byte("x"), 0600))

	tests := []struct {
		name   string
		path   string
		target error
	}{
		{name: "missing", path: filepath.Join(dir, "missing.pdf"), target: os.ErrNotExist},
		{name: "directory", path: dir},
		{name: "too large", path: big, target: ErrAttachmentTooLarge},
		{name: "line break in name", path: crlf},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readAttachment(tt.path)

			var unreadable *AttachmentUnreadableError
			require.ErrorAs(t, err, &unreadable)
			assert.Equal(t, tt.path, unreadable.Path)
			if tt.target != nil {
				assert.True(t, errors.Is(err, tt.target))
			}
		})
	}
}
