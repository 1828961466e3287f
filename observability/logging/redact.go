package logging

import (
	"log/slog"
	"sort"
	"strings"
)

// Redacted stands in for any log value that could carry claim or patient
// data (names, ailments, notes, raw request bodies).
const Redacted = "[REDACTED]"

// operationalKeys are the only keys the daemon emits in the clear: routing
// and lifecycle fields, never claim content. Everything else is masked.
var operationalKeys = map[string]struct{}{
	"service":    {},
	"env":        {},
	"severity":   {},
	"message":    {},
	"timestamp":  {},
	"error":      {},
	"method":     {},
	"address":    {},
	"dataDir":    {},
	"path":       {},
	"signal":     {},
	"token":      {},
	"outcome":    {},
	"queueCount": {},
}

// IsOperationalKey reports whether a key may be logged without masking.
func IsOperationalKey(key string) bool {
	_, ok := operationalKeys[strings.TrimSpace(key)]
	return ok
}

// OperationalKeys returns the clear-text key set in sorted order, so tests
// can pin the vocabulary down.
func OperationalKeys() []string {
	keys := make([]string, 0, len(operationalKeys))
	for key := range operationalKeys {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// MaskField builds a slog.Attr, masking the value unless the key is an
// operational one. Empty values pass through so absent fields stay readable.
func MaskField(key, value string) slog.Attr {
	if strings.TrimSpace(value) == "" || IsOperationalKey(key) {
		return slog.String(key, value)
	}
	return slog.String(key, Redacted)
}
