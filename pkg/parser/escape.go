package parser

import "strings"

// Unescape decodes the backslash escapes of a raw string literal: every
// backslash is dropped and the byte that follows it is kept verbatim.
// A trailing lone backslash is dropped.
func Unescape(raw string) string {
	if strings.IndexByte(raw, '\\') < 0 {
		return raw
	}

	var sb strings.Builder
	sb.Grow(len(raw))
	escaping := false
	for i := 0; i < len(raw); i++ {
		b := raw[i]
		if escaping {
			escaping = false
			sb.WriteByte(b)
			continue
		}
		if b == '\\' {
			escaping = true
			continue
		}
		sb.WriteByte(b)
	}
	return sb.String()
}

// Escape backslash-escapes the bytes that cannot appear raw inside a string
// literal (`\` and `"`), so that Unescape(Escape(s)) == s.
func Escape(s string) string {
	if !strings.ContainsAny(s, `\"`) {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s) + 4)
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' || s[i] == '"' {
			sb.WriteByte('\\')
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

// Quote returns s as a string literal that evaluates back to s.
func Quote(s string) string {
	return `"` + Escape(s) + `"`
}
