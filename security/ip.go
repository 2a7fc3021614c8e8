package security

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// GetClientIP returns the client address of r. With trustProxy set, the
// X-Forwarded-For entry just left of the trustedProxies rightmost hops is
// used, then X-Real-IP. Otherwise, or when those are unusable, RemoteAddr.
func GetClientIP(r *http.Request, trustProxy bool, trustedProxies int) string {
	if trustProxy {
		if ip := forwardedFor(r.Header.Get("X-Forwarded-For"), trustedProxies); ip != "" {
			return ip
		}
		if ip := validIP(r.Header.Get("X-Real-IP")); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func forwardedFor(xff string, trustedProxies int) string {
	if xff == "" {
		return ""
	}
	if trustedProxies <= 0 {
		trustedProxies = 1
	}

	hops := strings.Split(xff, ",")
	idx := len(hops) - trustedProxies - 1
	if idx < 0 {
		idx = 0
	}
	return validIP(hops[idx])
}

func validIP(s string) string {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return ""
	}
	return addr.String()
}
