// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sealed keeps the Telegram session file encrypted at rest with an
// age X25519 identity. Storage satisfies gotd's session.Storage, so the
// client loads and saves the session without knowing it is encrypted.
package sealed

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"filippo.io/age"
	"github.com/gotd/td/session"
)

// ErrIdentityExists is returned by GenerateIdentity when the target file
// already exists.
var ErrIdentityExists = errors.New("identity file already exists")

// Storage stores a gotd session as an age-encrypted file.
type Storage struct {
	path     string
	identity *age.X25519Identity
}

// NewStorage returns a Storage for the session file at path, sealed to
// identity.
func NewStorage(path string, identity *age.X25519Identity) *Storage {
	return &Storage{path: path, identity: identity}
}

// Open reads the identity at identityFile and returns a Storage for path.
func Open(path, identityFile string) (*Storage, error) {
	id, err := LoadIdentity(identityFile)
	if err != nil {
		return nil, err
	}
	return NewStorage(path, id), nil
}

// Path returns the session file location.
func (s *Storage) Path() string { return s.path }

// LoadSession decrypts the session file. A missing file is
// session.ErrNotFound.
func (s *Storage) LoadSession(_ context.Context) ([]byte, error) {
	ciphertext, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading session %s: %w", s.path, err)
	}

	r, err := age.Decrypt(bytes.NewReader(ciphertext), s.identity)
	if err != nil {
		return nil, fmt.Errorf("decrypting session %s: %w", s.path, err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading decrypted session: %w", err)
	}
	return data, nil
}

// StoreSession encrypts data to the identity's recipient and replaces the
// session file atomically.
func (s *Storage) StoreSession(_ context.Context, data []byte) error {
	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, s.identity.Recipient())
	if err != nil {
		return fmt.Errorf("creating age encryptor: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing session to age encryptor: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalizing age encryption: %w", err)
	}
	return writeFileAtomic(s.path, buf.Bytes(), 0o600)
}

// LoadIdentity parses the first X25519 identity in an age identity file.
// Comment lines are ignored.
func LoadIdentity(path string) (*age.X25519Identity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening identity %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		id, err := age.ParseX25519Identity(line)
		if err != nil {
			return nil, fmt.Errorf("parsing identity %s: %w", path, err)
		}
		return id, nil
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading identity %s: %w", path, err)
	}
	return nil, fmt.Errorf("no identity found in %s", path)
}

// GenerateIdentity writes a new X25519 identity to path in the format of
// age-keygen and returns it. An existing file is never overwritten.
func GenerateIdentity(path string) (*age.X25519Identity, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrIdentityExists, path)
	}

	id, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("generating age identity: %w", err)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# created: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&buf, "# public key: %s\n", id.Recipient())
	fmt.Fprintf(&buf, "%s\n", id)

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating directory for %s: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("creating identity %s: %w", path, err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing identity %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("closing identity %s: %w", path, err)
	}
	return id, nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
