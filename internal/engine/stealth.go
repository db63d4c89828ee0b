package engine

import (
	"strings"

	stealth "github.com/anatolykoptev/go-stealth"
)

// PageHeaders returns Chrome-like request headers for HTML page loads with the
// given fixed user agent. Accept-Encoding is left to net/http so responses are
// decompressed transparently.
func PageHeaders(userAgent string) map[string]string {
	h := make(map[string]string)
	for k, v := range stealth.ChromeHeaders() {
		switch strings.ToLower(k) {
		case "user-agent", "accept-encoding":
			continue
		}
		h[k] = v
	}
	h["user-agent"] = userAgent
	return h
}
