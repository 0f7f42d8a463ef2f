package crypt

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	formatVersion = 1
	saltSize      = 16
	headerSize    = len(magic) + 1 + 1 + 4 + 4 + saltSize + chacha20poly1305.NonceSizeX

	maxLogN = 24
	maxR    = 1 << 10
	maxP    = 16

	// maxMemory bounds the scrypt working set (128 * r * N bytes) a header
	// may ask for.
	maxMemory = 1 << 30
)

const magic = "PYRO\x00ENC"

// header is the parsed fixed-size prefix of an encrypted file.
type header struct {
	logN  uint8
	r     uint32
	p     uint32
	salt  [saltSize]byte
	nonce [chacha20poly1305.NonceSizeX]byte
}

func (h *header) marshal() []byte {
	buf := make([]byte, 0, headerSize)
	buf = append(buf, magic...)
	buf = append(buf, formatVersion, h.logN)
	buf = binary.BigEndian.AppendUint32(buf, h.r)
	buf = binary.BigEndian.AppendUint32(buf, h.p)
	buf = append(buf, h.salt[:]...)
	buf = append(buf, h.nonce[:]...)
	return buf
}

func parseHeader(data []byte) (*header, error) {
	if !hasMagic(data) {
		return nil, ErrNotEncrypted
	}
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: truncated header", ErrCorruptHeader)
	}
	if v := data[len(magic)]; v != formatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptHeader, v)
	}

	h := &header{}
	off := len(magic) + 1
	h.logN = data[off]
	off++
	h.r = binary.BigEndian.Uint32(data[off:])
	off += 4
	h.p = binary.BigEndian.Uint32(data[off:])
	off += 4
	copy(h.salt[:], data[off:off+saltSize])
	off += saltSize
	copy(h.nonce[:], data[off:off+chacha20poly1305.NonceSizeX])

	if h.logN == 0 || h.logN > maxLogN || h.r == 0 || h.r > maxR || h.p == 0 || h.p > maxP {
		return nil, fmt.Errorf("%w: invalid scrypt parameters", ErrCorruptHeader)
	}
	if 128*uint64(h.r)<<h.logN > maxMemory {
		return nil, fmt.Errorf("%w: scrypt cost exceeds memory limit", ErrCorruptHeader)
	}
	return h, nil
}

func hasMagic(data []byte) bool {
	return len(data) >= len(magic) && string(data[:len(magic)]) == magic
}

// readMagic reports whether the file at path starts with the magic prefix.
// A missing file or one shorter than the prefix is plaintext.
func readMagic(path string) (bool, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, len(magic))
	if _, err := io.ReadFull(f, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return false, nil
		}
		return false, fmt.Errorf("read header %s: %w", path, err)
	}
	return string(buf) == magic, nil
}
