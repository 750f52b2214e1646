package validation

import "regexp"

// Móvil en formato E.164 laxo: "+" opcional, 7 a 15 dígitos.
var mobileRe = regexp.MustCompile(`^\+?[1-9][0-9]{6,14}$`)

// Código de verificación: sólo dígitos, 4 a 10.
var codeRe = regexp.MustCompile(`^[0-9]{4,10}$`)

// ValidMobile returns true if s looks like an E.164 phone number.
func ValidMobile(s string) bool {
	return mobileRe.MatchString(s)
}

// ValidCode returns true if s is a plausible numeric verification code.
func ValidCode(s string) bool {
	return codeRe.MatchString(s)
}
