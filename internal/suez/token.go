package suez

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// tokenMatcher is one way the portal has been seen embedding the token
type tokenMatcher struct {
	name    string
	pattern *regexp.Regexp
	decode  func(string) string
}

// tokenMatchers are tried in order, first non-empty match wins.
var tokenMatchers = []tokenMatcher{
	{
		name:    "form field",
		pattern: regexp.MustCompile(`csrf_token(.*)`),
	},
	{
		// JSON-escaped script: csrfToken":"<token>","
		name:    "escaped script",
		pattern: regexp.MustCompile(`csrfToken\\u0022\\u003A\\u0022([^,]+)\\u0022,\\u0022`),
		decode:  unescapeUnicode,
	},
}

// findToken returns the token and the name of the matcher that found it
func findToken(body string) (string, string, error) {
	for _, m := range tokenMatchers {
		groups := m.pattern.FindStringSubmatch(body)
		if len(groups) < 2 || groups[1] == "" {
			continue
		}
		token := groups[1]
		if m.decode != nil {
			token = m.decode(token)
		}
		if token != "" {
			return token, m.name, nil
		}
	}
	return "", "", ErrTokenNotFound
}

// unescapeUnicode decodes backslash escapes (\uXXXX, \UXXXXXXXX, \xXX and
// the usual single characters). Unknown escapes are kept verbatim.
func unescapeUnicode(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}

		next := s[i+1]
		switch next {
		case 'u', 'U', 'x':
			width := escapeWidth(next)
			r, ok := hexRune(s, i+2, width)
			if !ok {
				b.WriteByte(s[i])
				continue
			}
			i += 1 + width
			// UTF-16 surrogate pair
			if utf16.IsSurrogate(r) && i+6 < len(s) && s[i+1] == '\\' && s[i+2] == 'u' {
				if low, ok := hexRune(s, i+3, 4); ok {
					if pair := utf16.DecodeRune(r, low); pair != utf8.RuneError {
						r = pair
						i += 6
					}
				}
			}
			b.WriteRune(r)
		case 'n':
			b.WriteByte('\n')
			i++
		case 't':
			b.WriteByte('\t')
			i++
		case 'r':
			b.WriteByte('\r')
			i++
		case '\\', '\'', '"':
			b.WriteByte(next)
			i++
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func escapeWidth(c byte) int {
	switch c {
	case 'x':
		return 2
	case 'U':
		return 8
	default:
		return 4
	}
}

func hexRune(s string, start, width int) (rune, bool) {
	if start+width > len(s) {
		return 0, false
	}
	v, err := strconv.ParseUint(s[start:start+width], 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(v), true
}
