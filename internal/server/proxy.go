package server

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/sebest/xff"
)

var ErrInvalidTrustedProxy = errors.New("invalid trusted proxy")

// TrustedProxies lists the peers whose X-Forwarded-For header is believed.
// A nil or empty list trusts nobody.
type TrustedProxies struct {
	nets []*net.IPNet
}

// ParseTrustedProxies parses IP addresses and CIDR ranges.
func ParseTrustedProxies(entries []string) (*TrustedProxies, error) {
	t := &TrustedProxies{}
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		if !strings.Contains(entry, "/") {
			ip := net.ParseIP(entry)
			if ip == nil {
				return nil, fmt.Errorf("%w: %q", ErrInvalidTrustedProxy, entry)
			}
			bits := 128
			if ip.To4() != nil {
				bits = 32
			}
			entry = fmt.Sprintf("%s/%d", entry, bits)
		}

		_, ipNet, err := net.ParseCIDR(entry)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTrustedProxy, entry)
		}
		t.nets = append(t.nets, ipNet)
	}
	return t, nil
}

// Allowed reports whether ip belongs to a trusted proxy.
func (t *TrustedProxies) Allowed(ip string) bool {
	if t == nil {
		return false
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	for _, n := range t.nets {
		if n.Contains(parsed) {
			return true
		}
	}
	return false
}

// Handler rewrites r.RemoteAddr to the forwarded client address when the
// connecting peer is trusted. Requests from other peers keep their socket address.
func (t *TrustedProxies) Handler(next http.Handler) http.Handler {
	if t == nil || len(t.nets) == 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.RemoteAddr = xff.GetRemoteAddrIfAllowed(r, t.Allowed)
		next.ServeHTTP(w, r)
	})
}
