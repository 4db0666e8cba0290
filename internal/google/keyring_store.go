package google

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"

	"github.com/justinnhli/send-gmail/internal/logging"
)

const (
	keyringService = "send-gmail"
	keyringKey     = "gmail-oauth-token"
)

// OpenKeyring opens the OS keyring, falling back to an encrypted file
// keyring under fileDir on systems with no native backend.
func OpenKeyring(fileDir string) (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: keyringService,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  fileDir,
		FilePasswordFunc:         keyring.TerminalPrompt,
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// KeyringStore keeps the credential as a single keyring item.
type KeyringStore struct {
	ring   keyring.Keyring
	key    string
	logger logging.Logger
}

// NewKeyringStore creates a store backed by ring.
func NewKeyringStore(ring keyring.Keyring, logger logging.Logger) *KeyringStore {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &KeyringStore{ring: ring, key: keyringKey, logger: logger}
}

// Load reads the credential item.
func (s *KeyringStore) Load() (*Credential, error) {
	item, err := s.ring.Get(s.key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting credential %q: %w", s.key, err)
	}

	cred, err := decodeCredential(item.Data)
	if err != nil {
		s.logger.Warn("ignoring unreadable keyring credential", logging.Err(err))
		return nil, nil
	}
	return cred, nil
}

// Save replaces the credential item. Keyring backends write items whole.
func (s *KeyringStore) Save(c *Credential) error {
	data, err := encodeCredential(c)
	if err != nil {
		return err
	}

	err = s.ring.Set(keyring.Item{
		Key:         s.key,
		Data:        data,
		Label:       "send-gmail OAuth token",
		Description: "Gmail API credential",
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", s.key, err)
	}

	s.logger.Debug("saved credential to keyring")
	return nil
}
