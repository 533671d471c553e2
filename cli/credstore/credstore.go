// Package credstore provides encrypted local storage for GigaChat credentials.
package credstore

import (
	"crypto/sha256"
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

// Names under which the CLI keeps the GigaChat credentials.
const (
	KeyClientID     = "client_id"
	KeyClientSecret = "client_secret"
)

// MasterKeyEnv names the environment variable holding the vault master key.
const MasterKeyEnv = "GIGA_MASTER_KEY"

// Store defines the interface for credential storage.
type Store interface {
	// Set stores a name-value pair, replacing any previous value.
	Set(name, value string) error
	// Get retrieves a value by name. Returns *ErrNotFound if absent.
	Get(name string) (string, error)
	// Delete removes a value by name. Returns *ErrNotFound if absent.
	Delete(name string) error
	// List returns all stored names in sorted order.
	List() ([]string, error)
}

// ErrNotFound is returned when a requested name does not exist.
type ErrNotFound struct {
	Name string
}

func (e *ErrNotFound) Error() string {
	return "credential not found: " + e.Name
}

// IsNotFound reports whether err is an *ErrNotFound.
func IsNotFound(err error) bool {
	var nf *ErrNotFound
	return errors.As(err, &nf)
}

// MasterKeySource supplies the secret the vault key is derived from.
type MasterKeySource interface {
	MasterKey() ([]byte, error)
}

// EnvKeySource reads the master key from GIGA_MASTER_KEY and falls back to
// a machine-derived key when the variable is unset.
type EnvKeySource struct {
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// MasterKey implements MasterKeySource.
func (s EnvKeySource) MasterKey() ([]byte, error) {
	getenv := s.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if key := getenv(MasterKeyEnv); key != "" {
		return []byte(key), nil
	}
	return MachineKey(getenv), nil
}

// StaticKeySource returns a fixed master key.
type StaticKeySource []byte

// MasterKey implements MasterKeySource.
func (s StaticKeySource) MasterKey() ([]byte, error) {
	if len(s) == 0 {
		return nil, errors.New("empty master key")
	}
	return []byte(s), nil
}

// MachineKey derives a key from the hostname and user name.
// It is predictable and only protects against casual disclosure of the file.
func MachineKey(getenv func(string) string) []byte {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	username := getenv("USER")
	if username == "" {
		username = getenv("USERNAME")
	}

	hash := sha256.Sum256([]byte(hostname + ":" + username + ":giga-credstore"))
	return hash[:]
}

// DefaultPath returns the default vault file path.
// - macOS/Linux: ~/.giga/credentials.enc
// - Windows: %USERPROFILE%\.giga\credentials.enc
func DefaultPath() string {
	var homeDir string

	if runtime.GOOS == "windows" {
		homeDir = os.Getenv("USERPROFILE")
	} else {
		homeDir = os.Getenv("HOME")
	}

	if homeDir == "" {
		return "credentials.enc"
	}

	return filepath.Join(homeDir, ".giga", "credentials.enc")
}

// Open opens the vault at the default path with the environment key source.
func Open() (*FileStore, error) {
	return NewFileStore(DefaultPath(), EnvKeySource{})
}
