package middlewares

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// TrustedProxies son los peers cuyo X-Forwarded-For se respeta.
// Vacío: la IP del cliente es siempre la del peer (RemoteAddr).
type TrustedProxies []*net.IPNet

// ParseTrustedProxies acepta IPs sueltas o CIDRs ("10.0.0.0/8", "192.0.2.10").
func ParseTrustedProxies(list []string) (TrustedProxies, error) {
	out := make(TrustedProxies, 0, len(list))
	for _, raw := range list {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		if !strings.Contains(s, "/") {
			ip := net.ParseIP(s)
			if ip == nil {
				return nil, fmt.Errorf("trusted proxy %q: invalid ip", s)
			}
			bits := 128
			if ip.To4() != nil {
				ip, bits = ip.To4(), 32
			}
			out = append(out, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, n, err := net.ParseCIDR(s)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", s, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func (t TrustedProxies) trusts(ip net.IP) bool {
	if ip == nil {
		return false
	}
	for _, n := range t {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// ClientIP resuelve la IP del cliente. X-Forwarded-For sólo cuenta si el peer
// es un proxy confiable; se recorre de derecha a izquierda y gana el primer
// hop no confiable. Lo que queda más a la izquierda lo escribe el cliente.
func (t TrustedProxies) ClientIP(r *http.Request) string {
	peer := peerIP(r)
	if len(t) == 0 || !t.trusts(net.ParseIP(peer)) {
		return peer
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		ip := net.ParseIP(hop)
		if ip == nil {
			// basura en la cadena: no seguimos más allá
			return peer
		}
		if !t.trusts(ip) {
			return ip.String()
		}
		peer = ip.String()
	}
	return peer
}

func peerIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}

// clientIP es la IP del peer, para logs.
func clientIP(r *http.Request) string {
	return peerIP(r)
}
