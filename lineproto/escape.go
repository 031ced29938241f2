package lineproto

import "strings"

// keyEscaper escapes the characters that delimit line-protocol tokens.
// Backslash must be escaped first; the single-pass Replacer guarantees
// the later substitutions are not applied to escape sequences it emits.
var keyEscaper = strings.NewReplacer(
	`\`, `\\`,
	`,`, `\,`,
	` `, `\ `,
	`=`, `\=`,
)

// stringValueEscaper escapes the inside of a double-quoted string field
// value. Backslash first, then the quote character.
var stringValueEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
)

// EscapeKey escapes s for use as a measurement name, tag key, tag value
// or field key. Strings containing none of backslash, comma, space or
// equals are returned unchanged.
func EscapeKey(s string) string {
	return keyEscaper.Replace(s)
}

// escapeStringValue escapes the body of a string field value. The caller
// supplies the surrounding double quotes.
func escapeStringValue(s string) string {
	return stringValueEscaper.Replace(s)
}
