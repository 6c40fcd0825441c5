// Package secrets stores Kibana credentials in the system keyring
// (macOS Keychain, Windows Credential Manager, Secret Service on Linux),
// falling back to an encrypted file on headless machines.
package secrets

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/99designs/keyring"

	"github.com/salmonumbrella/kibana-spaces-cli/internal/config"
)

// BackendEnvVar overrides keyring backend selection (auto, keychain, file)
const BackendEnvVar = "KBSPACES_KEYRING_BACKEND"

const credentialKeyPrefix = "credentials:"

// ErrNotFound is returned when no credentials are stored for a profile
var ErrNotFound = errors.New("credentials not found")

// Credentials are the stored Kibana login for one profile
type Credentials struct {
	BaseURL   string    `json:"base_url,omitempty"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists credentials per profile
type Store interface {
	Get(profile string) (Credentials, error)
	Set(profile string, creds Credentials) error
	Delete(profile string) error
}

// KeyringBackendInfo describes the selected keyring backend and where the
// selection came from.
type KeyringBackendInfo struct {
	Value  string // auto, keychain, file
	Source string // env, config, default
}

// ResolveBackend picks the keyring backend from env then config,
// defaulting to auto.
func ResolveBackend(configValue string) KeyringBackendInfo {
	if v := strings.TrimSpace(os.Getenv(BackendEnvVar)); v != "" {
		return KeyringBackendInfo{Value: v, Source: "env"}
	}
	if v := strings.TrimSpace(configValue); v != "" {
		return KeyringBackendInfo{Value: v, Source: "config"}
	}
	return KeyringBackendInfo{Value: "auto", Source: "default"}
}

// keyringOpenFunc is swapped out in tests
var keyringOpenFunc = keyring.Open

var errKeyringTimeout = errors.New("keyring open timed out")

// keyringOpenTimeout guards against Secret Service hangs when the D-Bus
// session is present but the service is unresponsive.
const keyringOpenTimeout = 5 * time.Second

// openKeyringWithTimeout opens the keyring, giving up after timeout.
// keyring.Open has no context support, so the open runs in a goroutine
// that is abandoned on timeout.
func openKeyringWithTimeout(cfg keyring.Config, timeout time.Duration) (keyring.Keyring, error) {
	type openResult struct {
		ring keyring.Keyring
		err  error
	}
	ch := make(chan openResult, 1)
	go func() {
		ring, err := keyringOpenFunc(cfg)
		ch <- openResult{ring: ring, err: err}
	}()

	select {
	case res := <-ch:
		return res.ring, res.err
	case <-time.After(timeout):
		return nil, fmt.Errorf("%w after %s; set %s=file to bypass the system keyring",
			errKeyringTimeout, timeout, BackendEnvVar)
	}
}

// shouldForceFileBackend reports whether to skip the system keyring
// entirely: Linux with auto selection and no D-Bus session (typical for
// servers and CI) cannot reach Secret Service.
func shouldForceFileBackend(goos string, info KeyringBackendInfo, dbusAddr string) bool {
	return goos == "linux" && info.Value == "auto" && dbusAddr == ""
}

// shouldUseKeyringTimeout reports whether the open should be guarded by a
// timeout: Linux with auto selection and a D-Bus session that may hang.
func shouldUseKeyringTimeout(goos string, info KeyringBackendInfo, dbusAddr string) bool {
	return goos == "linux" && info.Value == "auto" && dbusAddr != ""
}

// wrapKeychainError adds recovery instructions to macOS locked-keychain
// errors; other errors pass through unchanged.
func wrapKeychainError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "errSecInteractionNotAllowed") || strings.Contains(msg, "-25308") {
		return fmt.Errorf("keychain is locked: %w\nRun 'security unlock-keychain' and try again, or set %s=file",
			err, BackendEnvVar)
	}
	return err
}

// Open opens a credential store for the given backend selection
func Open(info KeyringBackendInfo) (Store, error) {
	cfg := keyring.Config{
		ServiceName: config.AppName,
	}

	useFile := info.Value == "file" ||
		shouldForceFileBackend(runtime.GOOS, info, os.Getenv("DBUS_SESSION_BUS_ADDRESS"))
	if useFile {
		dir, err := config.EnsureKeyringDir()
		if err != nil {
			return nil, err
		}
		cfg.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
		cfg.FileDir = dir
		cfg.FilePasswordFunc = keyring.TerminalPrompt
	}

	var ring keyring.Keyring
	var err error
	if shouldUseKeyringTimeout(runtime.GOOS, info, os.Getenv("DBUS_SESSION_BUS_ADDRESS")) {
		ring, err = openKeyringWithTimeout(cfg, keyringOpenTimeout)
	} else {
		ring, err = keyringOpenFunc(cfg)
	}
	if err != nil {
		return nil, wrapKeychainError(err)
	}

	return &keyringStore{ring: ring}, nil
}

// OpenDefault opens the store with backend selection from env and config
func OpenDefault() (Store, error) {
	cfg, err := config.ReadConfig()
	if err != nil {
		return nil, err
	}
	return Open(ResolveBackend(cfg.KeyringBackend))
}

type keyringStore struct {
	ring keyring.Keyring
}

func (s *keyringStore) Get(profile string) (Credentials, error) {
	item, err := s.ring.Get(credentialKeyPrefix + profile)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return Credentials{}, ErrNotFound
		}
		return Credentials{}, wrapKeychainError(err)
	}

	var creds Credentials
	if err := json.Unmarshal(item.Data, &creds); err != nil {
		return Credentials{}, fmt.Errorf("parsing stored credentials: %w", err)
	}
	return creds, nil
}

func (s *keyringStore) Set(profile string, creds Credentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}

	err = s.ring.Set(keyring.Item{
		Key:   credentialKeyPrefix + profile,
		Data:  data,
		Label: fmt.Sprintf("%s credentials (%s)", config.AppName, profile),
	})
	return wrapKeychainError(err)
}

func (s *keyringStore) Delete(profile string) error {
	err := s.ring.Remove(credentialKeyPrefix + profile)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return wrapKeychainError(err)
	}
	return nil
}
