// Package device derives a human-readable device summary from the submitting
// browser's User-Agent, shown to owners next to each visit.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

const unknownDevice = "Unknown Device"

// ParseUserAgent renders a short "Browser on Platform" summary. Unknown or
// empty agents degrade to a stable placeholder rather than raw header text.
func ParseUserAgent(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return unknownDevice
	}

	ua := useragent.New(raw)
	name, version := ua.Browser()
	if name == "" {
		name = "Unknown Browser"
	}
	if idx := strings.Index(version, "."); idx > 0 {
		version = version[:idx]
	}

	platform := ua.OS()
	if platform == "" {
		platform = ua.Platform()
	}
	if platform == "" {
		platform = "Unknown Platform"
	}

	parts := []string{name}
	if version != "" {
		parts = append(parts, version)
	}
	parts = append(parts, "on", platform)
	return strings.Join(parts, " ")
}
