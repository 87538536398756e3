package validators

import (
	"net"
	"net/mail"
	"strings"
)

// IsEmailSyntaxValid reports whether addr parses as a bare RFC 5322
// address with a non-empty domain. Used to filter alert recipient
// lists; no network lookups.
func IsEmailSyntaxValid(addr string) bool {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return false
	}

	parsed, err := mail.ParseAddress(addr)
	if err != nil || parsed.Address != addr {
		return false
	}

	at := strings.LastIndex(addr, "@")
	return at > 0 && at < len(addr)-1
}

// IsEmailDomainValid checks that the address domain actually resolves.
// Only used on the slow path (staff registration), never for filtering
// recipient lists.
func IsEmailDomainValid(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return false
	}

	domain := email[at+1:]

	if mx, err := net.LookupMX(domain); err == nil && len(mx) > 0 {
		return true
	}

	if ips, err := net.LookupIP(domain); err == nil && len(ips) > 0 {
		return true
	}

	return false
}
