/*
Copyright 2025 CareSignal, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package promptbuilder

import (
	"strings"
	"unicode"
)

// resolveFunc is a callback that provides a replacement for a placeholder name
type resolveFunc func(name string) (string, error)

// walkTemplate tokenizes the template and calls resolve for each {name} placeholder.
// Brace pairs that do not wrap a bare identifier are emitted verbatim, so JSON
// fragments and prose braces survive untouched.
func walkTemplate(template string, resolve resolveFunc) (string, error) {
	var result strings.Builder

	for len(template) > 0 {
		start := strings.Index(template, "{")
		if start == -1 {
			result.WriteString(template)
			break
		}

		// Append everything before the candidate placeholder
		result.WriteString(template[:start])

		end := strings.Index(template[start:], "}")
		if end == -1 {
			// No closing brace anywhere; the rest is literal text
			result.WriteString(template[start:])
			break
		}
		end += start + 1 // adjust for the offset and include }

		name := template[start+1 : end-1]
		if isValidIdentifier(name) {
			replacement, err := resolve(name)
			if err != nil {
				return "", err
			}
			result.WriteString(replacement)
		} else {
			// Not a placeholder, keep the braces as-is
			result.WriteString(template[start:end])
		}

		template = template[end:]
	}

	return result.String(), nil
}

// isValidIdentifier reports whether s is a placeholder identifier:
// a letter followed by letters, digits, or underscores.
func isValidIdentifier(s string) bool {
	if len(s) == 0 {
		return false
	}
	runes := []rune(s)
	if !unicode.IsLetter(runes[0]) {
		return false
	}
	for _, r := range runes[1:] {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}
