package credstore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/crypto/argon2"
)

// File format constants
const (
	// magicHeader identifies vault files
	magicHeader = "GIGA"
	// formatVersion is the current file format version
	formatVersion = byte(0x01)
	// saltLength is the length of the Argon2id salt
	saltLength = 16
	// nonceLength is the AES-GCM nonce length
	nonceLength = 12

	headerLength = len(magicHeader) + 1 + saltLength + nonceLength
)

// ErrCorrupt is returned when the vault file cannot be parsed or decrypted.
var ErrCorrupt = errors.New("credential vault is corrupt or the master key is wrong")

// kdfParams are the Argon2id cost parameters.
type kdfParams struct {
	time    uint32
	memory  uint32
	threads uint8
}

// defaultKDF follows the OWASP recommendation.
var defaultKDF = kdfParams{time: 3, memory: 64 * 1024, threads: 4}

// FileStore implements Store using an encrypted file.
// Values are kept as a JSON map sealed with AES-256-GCM under a key derived
// from the master key with Argon2id. A fresh salt and nonce are drawn on
// every write.
//
// Format: [magic "GIGA" (4)] [version (1)] [salt (16)] [nonce (12)] [ciphertext]
// The header is authenticated as additional data.
type FileStore struct {
	path      string
	masterKey []byte
	kdf       kdfParams
	mu        sync.RWMutex
}

// NewFileStore creates a file-backed store at path.
func NewFileStore(path string, source MasterKeySource) (*FileStore, error) {
	masterKey, err := source.MasterKey()
	if err != nil {
		return nil, err
	}

	return &FileStore{
		path:      path,
		masterKey: masterKey,
		kdf:       defaultKDF,
	}, nil
}

// Path returns the vault file path.
func (f *FileStore) Path() string {
	return f.path
}

// Set stores a name-value pair.
func (f *FileStore) Set(name, value string) error {
	if name == "" {
		return errors.New("credential name must not be empty")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.load()
	if err != nil {
		return err
	}

	data[name] = value
	return f.save(data)
}

// Get retrieves a value by name.
func (f *FileStore) Get(name string) (string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := f.load()
	if err != nil {
		return "", err
	}

	value, ok := data[name]
	if !ok {
		return "", &ErrNotFound{Name: name}
	}

	return value, nil
}

// Delete removes a value by name.
func (f *FileStore) Delete(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.load()
	if err != nil {
		return err
	}

	if _, ok := data[name]; !ok {
		return &ErrNotFound{Name: name}
	}

	delete(data, name)
	return f.save(data)
}

// List returns all stored names.
func (f *FileStore) List() ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := f.load()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)

	return names, nil
}

// load reads and decrypts the vault file. A missing or empty file is an empty vault.
func (f *FileStore) load() (map[string]string, error) {
	data := make(map[string]string)

	sealed, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return data, nil
		}
		return nil, err
	}

	if len(sealed) == 0 {
		return data, nil
	}

	plaintext, err := f.open(sealed)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(plaintext, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	return data, nil
}

// save encrypts data and replaces the vault file.
func (f *FileStore) save(data map[string]string) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	plaintext, err := json.Marshal(data)
	if err != nil {
		return err
	}

	sealed, err := f.seal(plaintext)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(sealed); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}

func (f *FileStore) deriveKey(salt []byte) []byte {
	return argon2.IDKey(f.masterKey, salt, f.kdf.time, f.kdf.memory, f.kdf.threads, 32)
}

func (f *FileStore) gcm(salt []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(f.deriveKey(salt))
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// seal encrypts plaintext into the vault file format.
func (f *FileStore) seal(plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}
	nonce := make([]byte, nonceLength)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	aead, err := f.gcm(salt)
	if err != nil {
		return nil, err
	}

	header := make([]byte, 0, headerLength)
	header = append(header, magicHeader...)
	header = append(header, formatVersion)
	header = append(header, salt...)
	header = append(header, nonce...)

	return append(header, aead.Seal(nil, nonce, plaintext, header)...), nil
}

// open decrypts a vault file produced by seal.
func (f *FileStore) open(sealed []byte) ([]byte, error) {
	if len(sealed) < headerLength || string(sealed[:len(magicHeader)]) != magicHeader {
		return nil, ErrCorrupt
	}
	if v := sealed[len(magicHeader)]; v != formatVersion {
		return nil, fmt.Errorf("unsupported credential vault version %d", v)
	}

	offset := len(magicHeader) + 1
	salt := sealed[offset : offset+saltLength]
	offset += saltLength
	nonce := sealed[offset : offset+nonceLength]
	offset += nonceLength
	header := sealed[:offset]

	aead, err := f.gcm(salt)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(nil, nonce, sealed[offset:], header)
	if err != nil {
		return nil, ErrCorrupt
	}
	return plaintext, nil
}

var _ Store = (*FileStore)(nil)
