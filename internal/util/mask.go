// Package util reúne helpers chicos sin dependencias del dominio.
package util

import "strings"

// MaskEmail deja la primera letra del usuario y el dominio completo:
// "ana.perez@example.com" -> "a***@example.com". Sin '@' enmascara todo.
func MaskEmail(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	at := strings.LastIndexByte(s, '@')
	if at <= 0 || at == len(s)-1 {
		return "***"
	}
	return s[:1] + "***" + s[at:]
}
