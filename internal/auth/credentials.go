// internal/auth/credentials.go
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/zalando/go-keyring"
)

const (
	// DefaultService is the secret name credentials are stored under
	DefaultService = "rakuten"
	// keyringUser is the keyring account holding the serialized credential
	keyringUser = "credential"
	// FallbackDir is the directory for file-based storage (when keyring fails)
	FallbackDir = ".campaigner/credentials"
)

// ErrCredentialNotFound is returned when no credential is stored for a service
var ErrCredentialNotFound = errors.New("credential not found")

// Credential is a username/password pair for the site login
type Credential struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate checks both fields are present
func (c Credential) Validate() error {
	if c.Username == "" || c.Password == "" {
		return fmt.Errorf("credential requires both username and password")
	}
	return nil
}

// CredentialStore looks credentials up by service name
type CredentialStore interface {
	Lookup(ctx context.Context, service string) (Credential, error)
}

// WritableStore can also store and remove credentials
type WritableStore interface {
	CredentialStore
	Store(ctx context.Context, service string, cred Credential) error
	Delete(ctx context.Context, service string) error
}

func decodeCredential(service, data string) (Credential, error) {
	var cred Credential
	if err := json.Unmarshal([]byte(data), &cred); err != nil {
		return Credential{}, fmt.Errorf("failed to deserialize credential for %s: %w", service, err)
	}
	if err := cred.Validate(); err != nil {
		return Credential{}, fmt.Errorf("stored credential for %s: %w", service, err)
	}
	return cred, nil
}

// KeyringStore keeps credentials in the OS keyring (encrypted by the OS)
type KeyringStore struct{}

func (KeyringStore) Lookup(ctx context.Context, service string) (Credential, error) {
	data, err := keyring.Get(service, keyringUser)
	if errors.Is(err, keyring.ErrNotFound) {
		return Credential{}, fmt.Errorf("%w: %s", ErrCredentialNotFound, service)
	}
	if err != nil {
		return Credential{}, fmt.Errorf("failed to load from keyring: %w", err)
	}
	return decodeCredential(service, data)
}

func (KeyringStore) Store(ctx context.Context, service string, cred Credential) error {
	if err := cred.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("failed to serialize credential: %w", err)
	}
	if err := keyring.Set(service, keyringUser, string(data)); err != nil {
		return fmt.Errorf("failed to save to keyring: %w", err)
	}
	return nil
}

func (KeyringStore) Delete(ctx context.Context, service string) error {
	err := keyring.Delete(service, keyringUser)
	if errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrCredentialNotFound, service)
	}
	if err != nil {
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}
	return nil
}

// FileStore keeps credentials as 0600 JSON files, for hosts without a keyring (Codespaces, CI)
type FileStore struct {
	Dir string
}

// NewFileStore uses dir, or ~/.campaigner/credentials when dir is empty
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, FallbackDir)
	}
	return &FileStore{Dir: dir}, nil
}

func (f *FileStore) path(service string) string {
	return filepath.Join(f.Dir, service+".json")
}

func (f *FileStore) Lookup(ctx context.Context, service string) (Credential, error) {
	data, err := os.ReadFile(f.path(service))
	if os.IsNotExist(err) {
		return Credential{}, fmt.Errorf("%w: %s", ErrCredentialNotFound, service)
	}
	if err != nil {
		return Credential{}, fmt.Errorf("failed to load credential file: %w", err)
	}
	return decodeCredential(service, string(data))
}

func (f *FileStore) Store(ctx context.Context, service string, cred Credential) error {
	if err := cred.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("failed to serialize credential: %w", err)
	}
	if err := os.MkdirAll(f.Dir, 0700); err != nil {
		return fmt.Errorf("failed to create credential dir: %w", err)
	}
	if err := os.WriteFile(f.path(service), data, 0600); err != nil {
		return fmt.Errorf("failed to save credential file: %w", err)
	}
	return nil
}

func (f *FileStore) Delete(ctx context.Context, service string) error {
	err := os.Remove(f.path(service))
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrCredentialNotFound, service)
	}
	if err != nil {
		return fmt.Errorf("failed to delete credential file: %w", err)
	}
	return nil
}

var (
	keyringProbe     sync.Once
	keyringAvailable bool
)

// useFileBasedStorage checks whether the OS keyring is usable here
func useFileBasedStorage() bool {
	keyringProbe.Do(func() {
		if os.Getenv("CODESPACES") != "" || os.Getenv("CI") != "" {
			return
		}
		const testKey = "_test_keyring_access_"
		if err := keyring.Set("campaigner", testKey, "test"); err != nil {
			return
		}
		_ = keyring.Delete("campaigner", testKey)
		keyringAvailable = true
	})
	return !keyringAvailable
}

// LocalStore returns the keyring store, or a file store where no keyring is available
func LocalStore() (WritableStore, error) {
	if useFileBasedStorage() {
		return NewFileStore("")
	}
	return KeyringStore{}, nil
}
