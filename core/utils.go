package core

import (
	"strings"
	"time"
)

// NowFunc is mockable in tests.
var NowFunc = func() time.Time { return time.Now().UTC() }

// CleanString trims s and optionally lower-cases it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		s = strings.ToLower(s)
	}
	return s
}

// EmailLocalPart returns the part of an email address before '@'.
func EmailLocalPart(email string) string {
	if i := strings.IndexByte(email, '@'); i >= 0 {
		return email[:i]
	}
	return email
}
