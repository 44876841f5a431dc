// Package email normalises and checks the contact address submitted with KYC.
package email

import (
	"net/mail"
	"strings"

	dErrors "landregistry/pkg/domain-errors"
)

const maxLen = 254

// Normalize trims and lower-cases the domain part. The local part is kept as
// written.
func Normalize(addr string) string {
	addr = strings.TrimSpace(addr)
	at := strings.LastIndexByte(addr, '@')
	if at < 0 {
		return addr
	}
	return addr[:at+1] + strings.ToLower(addr[at+1:])
}

// Validate accepts a bare address with a dotted domain.
func Validate(addr string) error {
	if addr == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if len(addr) > maxLen {
		return dErrors.New(dErrors.CodeValidation, "email is too long")
	}
	parsed, err := mail.ParseAddress(addr)
	if err != nil || parsed.Address != addr || parsed.Name != "" {
		return dErrors.New(dErrors.CodeValidation, "email is not a valid address")
	}
	domain := addr[strings.LastIndexByte(addr, '@')+1:]
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return dErrors.New(dErrors.CodeValidation, "email domain is not valid")
	}
	return nil
}

// Mask hides most of the local part for logs: "ana@example.com" → "a**@example.com".
func Mask(addr string) string {
	at := strings.IndexByte(addr, '@')
	if at <= 0 {
		return "***"
	}
	return addr[:1] + strings.Repeat("*", at-1) + addr[at:]
}
