// Package env reads the few process settings needed before config.Load runs,
// such as the log format of the bootstrap logger.
package env

import (
	"os"
	"strconv"
	"strings"
)

// Prefix namespaces every variable this service reads.
const Prefix = "NURSERY_"

// Get returns NURSERY_<key>, then the bare <key>, then fallback.
func Get(key, fallback string) string {
	for _, name := range []string{Prefix + key, key} {
		if val := strings.TrimSpace(os.Getenv(name)); val != "" {
			return val
		}
	}
	return fallback
}

// Bool is Get parsed with strconv.ParseBool. Unparseable values yield fallback.
func Bool(key string, fallback bool) bool {
	raw := Get(key, "")
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
