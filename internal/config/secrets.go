package config

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name for keyring storage
	KeyringService = "docketwatch"

	keyringSolverKey     = "solver-api-key"
	keyringProxyPassword = "proxy-password"
)

// secretFromKeyring reads a secret from the OS keyring. Returns "" when the
// keyring is unavailable (CI, containers) or the entry does not exist; the
// caller treats a missing secret as "not configured", never as fatal.
func secretFromKeyring(name string) string {
	if os.Getenv("CI") != "" || os.Getenv("CODESPACES") != "" {
		return ""
	}
	v, err := keyring.Get(KeyringService, name)
	if err != nil {
		if err != keyring.ErrNotFound {
			log.Debug().Err(err).Str("secret", name).Msg("Keyring lookup failed")
		}
		return ""
	}
	return v
}

// StoreSecret writes a secret to the OS keyring so it survives restarts
// without living in shell history or env files.
func StoreSecret(name, value string) error {
	return keyring.Set(KeyringService, name, value)
}

// DeleteSecret removes a stored secret.
func DeleteSecret(name string) error {
	err := keyring.Delete(KeyringService, name)
	if err == keyring.ErrNotFound {
		return nil
	}
	return err
}

// SecretNames returns the keyring entry names the CLI can manage.
func SecretNames() []string {
	return []string{keyringSolverKey, keyringProxyPassword}
}
