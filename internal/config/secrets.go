package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/zalando/go-keyring"
)

// KeyringService is the keyring service name secrets are stored under.
const KeyringService = appName

var ErrMissingCredentials = errors.New("missing reddit credentials")

// Keyring user names of the four secrets.
const (
	SecretClientID     = "client_id"
	SecretClientSecret = "client_secret"
	SecretUsername     = "username"
	SecretPassword     = "password"
)

func (c *Credentials) fields() []struct {
	name string
	dst  *string
} {
	return []struct {
		name string
		dst  *string
	}{
		{SecretClientID, &c.ClientID},
		{SecretClientSecret, &c.ClientSecret},
		{SecretUsername, &c.Username},
		{SecretPassword, &c.Password},
	}
}

// ResolveSecrets fills every empty secret from the OS keyring. Secrets that
// are not in the keyring stay empty.
func ResolveSecrets(c *Credentials) {
	for _, f := range c.fields() {
		if *f.dst != "" {
			continue
		}
		v, err := keyring.Get(KeyringService, f.name)
		if err != nil {
			if !errors.Is(err, keyring.ErrNotFound) {
				log.Warn().Err(err).Str("secret", f.name).Msg("failed to read secret from keyring")
			}
			continue
		}
		*f.dst = v
	}
}

// StoreSecret saves one secret in the OS keyring.
func StoreSecret(name, value string) error {
	return keyring.Set(KeyringService, name, value)
}

// Validate returns ErrMissingCredentials naming every empty secret.
func (c Credentials) Validate() error {
	var missing []string
	for _, f := range c.fields() {
		if *f.dst == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return nil
}
