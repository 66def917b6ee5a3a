package prompts

import "strings"

// Expand fills every {{key}} placeholder in body with values[key].
// Missing keys and empty values both resolve to the empty string, and any
// placeholder syntax still present afterwards is stripped so the result never
// contains a {{...}} token. The result is trimmed once at the end.
//
// Values are inserted literally and never re-expanded. Placeholder-looking
// text that a value carries in is removed by the final strip pass, so running
// Expand on its own output is not guaranteed to be a no-op for partial braces.
func Expand(body string, values map[string]string) string {
	out := replacePlaceholders(body, func(key string) string {
		return values[key]
	})

	// Each pass only shrinks the string, so this terminates.
	for {
		stripped := replacePlaceholders(out, func(string) string { return "" })
		if stripped == out {
			break
		}
		out = stripped
	}

	return strings.TrimSpace(out)
}

// Placeholders returns the distinct placeholder keys in body in order of
// first appearance.
func Placeholders(body string) []string {
	var keys []string
	seen := make(map[string]bool)
	replacePlaceholders(body, func(key string) string {
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
		return ""
	})
	return keys
}

// replacePlaceholders scans s once, left to right, and replaces every
// "{{" + one or more non-'}' bytes + "}}" with fn(key). Anything else is
// copied through unchanged.
func replacePlaceholders(s string, fn func(key string) string) string {
	if !strings.Contains(s, "{{") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	i := 0
	for i < len(s) {
		if i+1 < len(s) && s[i] == '{' && s[i+1] == '{' {
			if key, end, ok := placeholderAt(s, i); ok {
				b.WriteString(fn(key))
				i = end
				continue
			}
		}
		b.WriteByte(s[i])
		i++
	}

	return b.String()
}

// placeholderAt reports whether a placeholder starts at s[start], which must
// be "{{". It returns the key and the index just past the closing "}}".
func placeholderAt(s string, start int) (key string, end int, ok bool) {
	keyStart := start + 2
	n := strings.IndexByte(s[keyStart:], '}')
	if n <= 0 {
		return "", 0, false
	}
	keyEnd := keyStart + n
	if keyEnd+1 >= len(s) || s[keyEnd+1] != '}' {
		return "", 0, false
	}
	return s[keyStart:keyEnd], keyEnd + 2, true
}
