package ldif

import (
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ssoellinger/open-ldap-viewer/directory"
)

// ToLdif serializes one entry: the dn line followed by one line per
// attribute value, attributes sorted alphabetically by name. Values that
// were replaced by the binary placeholder are emitted as a value-less base64
// marker line ("attr:: ") since the original bytes are not retained.
func ToLdif(entry *directory.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "dn: %s\n", entry.Dn)

	names := make([]string, 0, len(entry.Attributes))
	for name := range entry.Attributes {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})

	for _, name := range names {
		for _, value := range entry.Attributes[name] {
			switch {
			case directory.IsBinaryPlaceholder(value):
				fmt.Fprintf(&b, "%s:: \n", name)
			case needsBase64(value):
				fmt.Fprintf(&b, "%s:: %s\n", name, base64.StdEncoding.EncodeToString([]byte(value)))
			default:
				fmt.Fprintf(&b, "%s: %s\n", name, value)
			}
		}
	}
	return b.String()
}

// EntriesToLdif serializes a sequence of entries as blank-line separated
// blocks.
func EntriesToLdif(entries []*directory.Entry) string {
	blocks := make([]string, 0, len(entries))
	for _, entry := range entries {
		blocks = append(blocks, ToLdif(entry))
	}
	return strings.Join(blocks, "\n")
}

// needsBase64 reports whether a value would not survive a plain "attr: v"
// line: leading or trailing whitespace, embedded newlines or colons at the
// start, or non-UTF-8 text.
func needsBase64(value string) bool {
	if value == "" {
		return false
	}
	if strings.TrimSpace(value) != value {
		return true
	}
	if strings.ContainsAny(value, "\n\r") {
		return true
	}
	if strings.HasPrefix(value, ":") || strings.HasPrefix(value, "<") {
		return true
	}
	return !utf8.ValidString(value)
}
