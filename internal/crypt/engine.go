package crypt

import (
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"github.com/pyro-notes/pyro/internal/fsutil"
)

var (
	// ErrWrongPassword is returned when a ciphertext fails authentication.
	// A corrupted body is indistinguishable from a wrong password.
	ErrWrongPassword = errors.New("wrong password")

	// ErrNotEncrypted is returned when decrypting a file without a header.
	ErrNotEncrypted = errors.New("file is not encrypted")

	// ErrAlreadyEncrypted is returned when encrypting a file that already
	// carries a header.
	ErrAlreadyEncrypted = errors.New("file is already encrypted")

	// ErrCorruptHeader is returned when the magic prefix is present but the
	// rest of the header cannot be parsed.
	ErrCorruptHeader = errors.New("corrupt encryption header")

	// ErrEmptyPassword is returned for an empty password.
	ErrEmptyPassword = errors.New("password must not be empty")
)

// Engine transforms artifact files to and from ciphertext in place.
type Engine interface {
	// HeaderPresent reports whether the file at path carries a ciphertext
	// header. A missing file reports false.
	HeaderPresent(path string) (bool, error)

	// Encrypt replaces every file in paths with its ciphertext.
	Encrypt(password string, paths []string) error

	// Decrypt replaces every encrypted file in paths with its plaintext.
	// It fails with ErrNotEncrypted when none of them is encrypted.
	Decrypt(password string, paths []string) error
}

// Default scrypt cost parameters.
const (
	DefaultLogN = 15
	DefaultR    = 8
	DefaultP    = 1
)

// replaceFile is replaced in tests to inject write-back failures.
var replaceFile = fsutil.WriteFileAtomic

// FileEngine is the default Engine.
//
// Multi-file calls transform every file in memory before writing any of them
// back, so a wrong password or unreadable file leaves all files untouched.
// Each write-back is atomic (temp file + rename), and a failed write-back
// restores the files already replaced, so the set moves as a whole.
//
// Decrypt skips files without a header as long as one of them has it. That
// recovers a set left half-encrypted when a rollback itself could not finish.
type FileEngine struct {
	// LogN is log2 of the scrypt CPU/memory cost used when encrypting.
	LogN uint8
	R    uint32
	P    uint32

	// Perm is the permission applied to rewritten files.
	Perm os.FileMode
}

// NewFileEngine returns a FileEngine with the default scrypt parameters.
func NewFileEngine() *FileEngine {
	return &FileEngine{LogN: DefaultLogN, R: DefaultR, P: DefaultP, Perm: 0o600}
}

// HeaderPresent implements Engine.
func (e *FileEngine) HeaderPresent(path string) (bool, error) {
	return readMagic(path)
}

// Encrypt implements Engine.
func (e *FileEngine) Encrypt(password string, paths []string) error {
	if password == "" {
		return ErrEmptyPassword
	}

	originals := make([][]byte, len(paths))
	sealed := make([][]byte, len(paths))
	for i, path := range paths {
		plaintext, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("encrypt %s: %w", path, err)
		}
		if hasMagic(plaintext) {
			return fmt.Errorf("encrypt %s: %w", path, ErrAlreadyEncrypted)
		}
		out, err := e.seal(password, plaintext)
		if err != nil {
			return fmt.Errorf("encrypt %s: %w", path, err)
		}
		originals[i] = plaintext
		sealed[i] = out
	}

	return e.writeAll(paths, originals, sealed, "encrypt")
}

// Decrypt implements Engine.
func (e *FileEngine) Decrypt(password string, paths []string) error {
	if password == "" {
		return ErrEmptyPassword
	}

	var (
		targets   []string
		originals [][]byte
		opened    [][]byte
	)
	for _, path := range paths {
		ciphertext, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("decrypt %s: %w", path, err)
		}
		if !hasMagic(ciphertext) {
			continue
		}
		out, err := open(password, ciphertext)
		if err != nil {
			return fmt.Errorf("decrypt %s: %w", path, err)
		}
		targets = append(targets, path)
		originals = append(originals, ciphertext)
		opened = append(opened, out)
	}
	if len(targets) == 0 && len(paths) > 0 {
		return fmt.Errorf("decrypt %s: %w", paths[0], ErrNotEncrypted)
	}

	return e.writeAll(targets, originals, opened, "decrypt")
}

func (e *FileEngine) seal(password string, plaintext []byte) ([]byte, error) {
	h := &header{logN: e.LogN, r: e.R, p: e.P}
	if _, err := rand.Read(h.salt[:]); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	if _, err := rand.Read(h.nonce[:]); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	aead, err := newAEAD(password, h)
	if err != nil {
		return nil, err
	}

	prefix := h.marshal()
	out := make([]byte, len(prefix), len(prefix)+len(plaintext)+aead.Overhead())
	copy(out, prefix)
	return aead.Seal(out, h.nonce[:], plaintext, prefix), nil
}

func open(password string, data []byte) ([]byte, error) {
	h, err := parseHeader(data)
	if err != nil {
		return nil, err
	}

	aead, err := newAEAD(password, h)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(nil, h.nonce[:], data[headerSize:], data[:headerSize])
	if err != nil {
		return nil, ErrWrongPassword
	}
	return plaintext, nil
}

func newAEAD(password string, h *header) (cipher.AEAD, error) {
	key, err := scrypt.Key([]byte(password), h.salt[:], 1<<h.logN, int(h.r), int(h.p), chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	return aead, nil
}

// writeAll replaces every file in paths with contents. When a write fails,
// the files already replaced get their originals back.
func (e *FileEngine) writeAll(paths []string, originals, contents [][]byte, op string) error {
	perm := e.Perm
	if perm == 0 {
		perm = 0o600
	}
	for i, path := range paths {
		if err := replaceFile(path, contents[i], perm); err != nil {
			werr := fmt.Errorf("%s %s: %w", op, path, err)
			for j := i - 1; j >= 0; j-- {
				if rerr := replaceFile(paths[j], originals[j], perm); rerr != nil {
					werr = errors.Join(werr, fmt.Errorf("restore %s: %w", paths[j], rerr))
				}
			}
			return werr
		}
	}
	return nil
}
