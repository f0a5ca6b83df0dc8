package config

import (
	"fmt"
	"os"
	"strings"
)

// ResolveSecret looks up a secret by environment variable name, honoring
// the *_FILE convention used by container secret mounts: when
// envName+"_FILE" is set, the secret is read from that file path and
// trailing whitespace is trimmed. Otherwise the plain env value is
// returned, empty when unset.
func ResolveSecret(envName string) (string, error) {
	fileEnv := envName + "_FILE"
	if path := os.Getenv(fileEnv); path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read secret %s=%s: %w", fileEnv, path, err)
		}
		return strings.TrimSpace(string(content)), nil
	}
	return os.Getenv(envName), nil
}
