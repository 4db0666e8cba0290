package google

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/justinnhli/send-gmail/internal/logging"
)

// Store persists a single Credential.
//
// Load returns (nil, nil) when nothing is stored or the stored data cannot be
// parsed; callers treat both as "no credential". Save replaces the stored
// credential atomically.
type Store interface {
	Load() (*Credential, error)
	Save(c *Credential) error
}

// FileStore keeps the credential as a JSON file. The file is only ever
// replaced by rename, so a crash mid-write leaves the previous token intact.
type FileStore struct {
	path   string
	logger logging.Logger
}

// NewFileStore creates a file-backed store at path.
func NewFileStore(path string, logger logging.Logger) *FileStore {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &FileStore{path: path, logger: logger}
}

// Path returns the token file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the token file.
func (s *FileStore) Load() (*Credential, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file %s: %w", s.path, err)
	}

	cred, err := decodeCredential(data)
	if err != nil {
		s.logger.Warn("ignoring unreadable token file", logging.Path(s.path), logging.Err(err))
		return nil, nil
	}
	return cred, nil
}

// Save writes the credential to a temporary file next to the target, syncs
// it, and renames it into place.
func (s *FileStore) Save(c *Credential) error {
	data, err := encodeCredential(c)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary token file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if err := tmp.Chmod(0600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to set token file permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close token file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace token file: %w", err)
	}
	committed = true

	s.logger.Debug("saved credential", logging.Path(s.path))
	return nil
}
