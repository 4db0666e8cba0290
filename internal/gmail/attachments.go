package gmail

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const (
	// MaxAttachmentSize defines the maximum attachment size in bytes (25MB)
	MaxAttachmentSize = 25 * 1024 * 1024
)

// readAttachment reads the file at path into an AttachmentPart named after
// its base name.
func readAttachment(path string) (AttachmentPart, error) {
	info, err := os.Stat(path)
	if err != nil {
		return AttachmentPart{}, &AttachmentUnreadableError{Path: path, Err: err}
	}
	if info.IsDir() {
		return AttachmentPart{}, &AttachmentUnreadableError{Path: path, Err: errors.New("is a directory")}
	}
	if info.Size() > MaxAttachmentSize {
		return AttachmentPart{}, &AttachmentUnreadableError{Path: path, Err: ErrAttachmentTooLarge}
	}

	// The name ends up in a MIME header parameter.
	name := filepath.Base(path)
	if strings.ContainsAny(name, "\r\n") {
		return AttachmentPart{}, &AttachmentUnreadableError{Path: path, Err: errors.New("filename contains a line break")}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return AttachmentPart{}, &AttachmentUnreadableError{Path: path, Err: err}
	}
	return AttachmentPart{Filename: name, Data: data}, nil
}
