package env

import "os"

// Get reads an environment variable before config parsing happens, so early
// bootstrap code (logger format, port overrides) can run without a loaded
// config. An empty value counts as unset.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
