package auth

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/pushtolive/ptl/pkg/ptl"
)

// Static errors for err113 compliance.
var (
	ErrNoKeySource = errors.New("no credential source configured")
)

// KeyManager supplies the access-key/secret-key pair for requests.
type KeyManager interface {
	Keys(ctx context.Context) (ptl.Credentials, error)
}

// StaticKeyManager returns a fixed pair.
type StaticKeyManager struct {
	credentials ptl.Credentials
}

// NewStaticKeyManager wraps credentials that were resolved at startup.
func NewStaticKeyManager(credentials ptl.Credentials) *StaticKeyManager {
	return &StaticKeyManager{credentials: credentials}
}

// Keys implements KeyManager.
func (m *StaticKeyManager) Keys(_ context.Context) (ptl.Credentials, error) {
	if !m.credentials.Valid() {
		return ptl.Credentials{}, ptl.ErrMissingCredentials
	}

	return m.credentials, nil
}

// Source is one place credentials may come from. found is false when the
// source is simply absent; err is reserved for sources that exist but are
// unreadable.
type Source interface {
	Name() string
	Load() (credentials ptl.Credentials, found bool, err error)
}

// FileSource reads ACCESS_KEY and SECRET_KEY from a KEY=value file.
type FileSource struct {
	Path string
}

// Name implements Source.
func (s FileSource) Name() string {
	return s.Path
}

// Load implements Source. An existing file is authoritative even when a key
// is missing from it, matching how the file overrides the environment.
func (s FileSource) Load() (ptl.Credentials, bool, error) {
	if _, err := os.Stat(s.Path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ptl.Credentials{}, false, nil
		}

		return ptl.Credentials{}, false, fmt.Errorf("checking credentials file: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(s.Path)
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		return ptl.Credentials{}, false, fmt.Errorf("reading credentials file %s: %w", s.Path, err)
	}

	return ptl.Credentials{
		AccessKey: v.GetString("access_key"),
		SecretKey: v.GetString("secret_key"),
	}, true, nil
}

// EnvSource reads the pair from two environment variables.
type EnvSource struct {
	AccessKeyVar string
	SecretKeyVar string
	Lookup       func(string) string
}

// Name implements Source.
func (s EnvSource) Name() string {
	return "$" + s.AccessKeyVar + "/$" + s.SecretKeyVar
}

// Load implements Source. Both variables must be non-empty.
func (s EnvSource) Load() (ptl.Credentials, bool, error) {
	lookup := s.Lookup
	if lookup == nil {
		lookup = os.Getenv
	}

	credentials := ptl.Credentials{
		AccessKey: lookup(s.AccessKeyVar),
		SecretKey: lookup(s.SecretKeyVar),
	}

	return credentials, credentials.Valid(), nil
}

// Resolve returns the credentials of the first source that is present, in
// priority order.
func Resolve(sources ...Source) (ptl.Credentials, string, error) {
	if len(sources) == 0 {
		return ptl.Credentials{}, "", ErrNoKeySource
	}

	for _, source := range sources {
		credentials, found, err := source.Load()
		if err != nil {
			return ptl.Credentials{}, "", err
		}

		if !found {
			continue
		}

		if !credentials.Valid() {
			return ptl.Credentials{}, "", fmt.Errorf("%s is incomplete: %w", source.Name(), ptl.ErrMissingCredentials)
		}

		return credentials, source.Name(), nil
	}

	return ptl.Credentials{}, "", ptl.ErrMissingCredentials
}
