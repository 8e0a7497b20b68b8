// Command store_secrets copies the Reddit credentials into the OS keyring so
// they don't have to live in the config file.
//
// Values are read from the environment first and then from an optional
// KEY=VALUE file given as the only argument.
package main

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/cwygoda/redditwall/internal/config"
	"github.com/cwygoda/redditwall/internal/logging"
	"github.com/rs/zerolog/log"
)

// keyMap maps env and file keys to keyring secret names.
var keyMap = map[string]string{
	"REDDIT_CLIENT_ID":     config.SecretClientID,
	"REDDIT_CLIENT_SECRET": config.SecretClientSecret,
	"REDDIT_USERNAME":      config.SecretUsername,
	"REDDIT_PASSWORD":      config.SecretPassword,
}

func main() {
	logging.SetupConsole(false)

	collected := fromEnv(os.Getenv)
	if len(os.Args) > 1 {
		f, err := os.Open(os.Args[1])
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open secrets file")
		}
		defer f.Close()
		fromFile, err := parseSecrets(f)
		if err != nil {
			log.Fatal().Err(err).Str("file", os.Args[1]).Msg("failed to read secrets file")
		}
		for k, v := range fromFile {
			collected[k] = v
		}
	}

	if len(collected) == 0 {
		log.Warn().Msg("no secrets found, set REDDIT_* variables or pass a file")
		return
	}
	for name, value := range collected {
		if err := config.StoreSecret(name, value); err != nil {
			log.Fatal().Err(err).Str("secret", name).Msg("failed to store secret")
		}
		log.Info().Str("secret", name).Str("service", config.KeyringService).Msg("stored")
	}
}

func fromEnv(getenv func(string) string) map[string]string {
	collected := make(map[string]string)
	for key, name := range keyMap {
		if val := getenv(key); val != "" {
			collected[name] = trimValue(val)
		}
	}
	return collected
}

// parseSecrets reads KEY=VALUE lines. Blank lines, comments and unknown keys
// are skipped.
func parseSecrets(r io.Reader) (map[string]string, error) {
	collected := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		if name, ok := keyMap[strings.TrimSpace(key)]; ok {
			collected[name] = trimValue(value)
		}
	}
	return collected, scanner.Err()
}

func trimValue(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && ((s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'')) {
		s = s[1 : len(s)-1]
	}
	return s
}
