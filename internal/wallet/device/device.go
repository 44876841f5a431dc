// Package device turns a User-Agent header into a short label recorded on
// wallet connection events.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

// ParseUserAgent returns a display label such as "Chrome on Windows 10".
func ParseUserAgent(ua string) string {
	ua = strings.TrimSpace(ua)
	if ua == "" {
		return "Unknown Device"
	}
	parsed := useragent.New(ua)

	browser, _ := parsed.Browser()
	if browser == "" {
		browser = "Unknown Browser"
	}
	if parsed.Bot() {
		return browser + " on bot"
	}

	os := parsed.OS()
	if parsed.Mobile() && parsed.Platform() != "" {
		os = parsed.Platform()
	}
	if os == "" {
		os = "Unknown OS"
	}
	return strings.Join(strings.Fields(browser+" on "+os), " ")
}
