// Package sanitize cleans caller-supplied strings before they are placed in a
// request payload.
package sanitize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// 默认长度上限（按 rune 计）
const (
	MaxContentLength = 10000
	MaxAgentIDLength = 256
	MaxTitleLength   = 500
	MaxStepLength    = 256
)

// 控制字符：保留 \t \n \r
var controlChars = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)

// String removes control characters and NUL bytes from s and caps the result
// at max runes. Invalid UTF-8 bytes are dropped. Truncation is lossy and
// silent; a max of zero or less disables the cap.
func String(s string, max int) string {
	if s == "" {
		return s
	}
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	s = controlChars.ReplaceAllString(s, "")
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}

	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}

// Content sanitizes memory text.
func Content(s string) string { return String(s, MaxContentLength) }

// AgentID sanitizes an agent identifier.
func AgentID(s string) string { return String(s, MaxAgentIDLength) }

// Title sanitizes a goal title.
func Title(s string) string { return String(s, MaxTitleLength) }

// Step sanitizes a reasoning step description.
func Step(s string) string { return String(s, MaxStepLength) }

// Strings sanitizes every element of ss with the given cap and drops elements
// that end up empty. A nil slice stays nil.
func Strings(ss []string, max int) []string {
	if ss == nil {
		return nil
	}
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if c := String(s, max); c != "" {
			out = append(out, c)
		}
	}
	return out
}
