package docstore

import (
	"strings"
	"unicode"
)

const maxNameLen = 60

var reservedNames = []string{
	"CON", "PRN", "AUX", "NUL",
	"COM1", "COM2", "COM3", "COM4", "COM5", "COM6", "COM7", "COM8", "COM9",
	"LPT1", "LPT2", "LPT3", "LPT4", "LPT5", "LPT6", "LPT7", "LPT8", "LPT9",
}

// Sanitize keeps letters, digits and "_-.", trims dots, guards reserved device
// names and truncates to 60 characters.
func Sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == '.' {
			b.WriteRune(r)
		}
	}
	out := strings.Trim(b.String(), ".")

	upper := strings.ToUpper(out)
	for _, reserved := range reservedNames {
		if upper == reserved || strings.HasPrefix(upper, reserved+".") {
			return "_" + out
		}
	}
	if r := []rune(out); len(r) > maxNameLen {
		out = string(r[:maxNameLen])
	}
	return out
}
