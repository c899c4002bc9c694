// Package file keeps profile passwords as 0600 files below a root
// directory, one file per profile.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bnema/internode-usage-cli/internal/domain"
	"github.com/bnema/internode-usage-cli/internal/ports"
)

const (
	storeDirMode  = 0o700
	secretFileMod = 0o600
	fileSuffix    = ".password"
)

// ErrInsecurePermissions is returned by Get when a password file is
// readable by group or others.
var ErrInsecurePermissions = errors.New("password file is accessible by other users")

type Store struct {
	root string
	mu   sync.RWMutex
}

var _ ports.SecretStore = (*Store)(nil)

func NewStore(root string) *Store {
	return &Store{root: filepath.Clean(root)}
}

// Path returns the file holding the password referenced by key.
func (s *Store) Path(key string) (string, error) {
	profile, err := domain.ParseSecretRef(key)
	if err != nil {
		return "", err
	}

	return filepath.Join(s.root, string(profile)+fileSuffix), nil
}

// Put replaces the password through a temporary file so a crash never
// leaves a truncated secret behind.
func (s *Store) Put(ctx context.Context, key string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.Path(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.root, storeDirMode); err != nil {
		return fmt.Errorf("create password directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temporary password file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if err := tmp.Chmod(secretFileMod); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("restrict temporary password file: %w", err)
	}
	if _, err := tmp.WriteString(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write password of %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temporary password file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace password of %q: %w", key, err)
	}

	return nil
}

// Get returns the stored password. A single trailing newline, as left by
// most editors, is dropped.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path, err := s.Path(key)
	if err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("password file %q: %w", key, domain.ErrSecretNotFound)
		}
		return "", fmt.Errorf("stat password file %q: %w", key, err)
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		return "", fmt.Errorf("%w: %s has mode %04o, want %04o", ErrInsecurePermissions, path, perm, secretFileMod)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read password file %q: %w", key, err)
	}

	value := strings.TrimSuffix(string(data), "\n")
	return strings.TrimSuffix(value, "\r"), nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.Path(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete password file %q: %w", key, err)
	}

	return nil
}
