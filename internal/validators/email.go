package validators

import (
	"net"
	"strings"
)

// IsEmailDomainValid checks that the address domain resolves to a mail host
// or at least to an IP. Syntax is already covered by request binding.
func IsEmailDomainValid(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]

	if mx, err := net.LookupMX(domain); err == nil && len(mx) > 0 {
		return true
	}
	ips, err := net.LookupIP(domain)
	return err == nil && len(ips) > 0
}
