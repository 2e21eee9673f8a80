package directory

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-ldap/ldap/v3"
)

// DefaultPort is used when ConnectionSettings carries no port.
const DefaultPort = 389

// ConnectionSettings describes how to reach one LDAP server. Immutable once
// a session has been created from it; reconnecting creates a fresh session.
type ConnectionSettings struct {
	Name     string `json:"name,omitempty"`
	Server   string `json:"server"`
	Port     int    `json:"port"`
	BaseDn   string `json:"baseDn"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	UseSsl   bool   `json:"useSsl"`
}

// URL renders the ldap:// or ldaps:// dial URL for these settings.
func (s ConnectionSettings) URL() string {
	scheme := "ldap"
	if s.UseSsl {
		scheme = "ldaps"
	}
	port := s.Port
	if port == 0 {
		port = DefaultPort
	}
	return fmt.Sprintf("%s://%s:%d", scheme, s.Server, port)
}

// Entry is one LDAP entry in the text-oriented display model. Attribute
// value order is preserved as returned by the server. Values that do not
// decode as printable text are replaced with a length placeholder; callers
// that need exact bytes use Session.GetBinaryAttribute.
type Entry struct {
	Dn         string              `json:"dn"`
	Attributes map[string][]string `json:"attributes"`
}

// DisplayName is the value portion of the first RDN component of the DN,
// e.g. "Jane Doe" for "cn=Jane Doe,ou=People,dc=example,dc=com".
func (e *Entry) DisplayName() string {
	rdn := e.Dn
	if idx := strings.Index(rdn, ","); idx >= 0 {
		rdn = rdn[:idx]
	}
	if idx := strings.Index(rdn, "="); idx >= 0 {
		return rdn[idx+1:]
	}
	return rdn
}

// BinaryPlaceholder is the display stand-in for an attribute value that did
// not decode as printable text. The raw bytes are not retained.
func BinaryPlaceholder(size int) string {
	return fmt.Sprintf("<binary (%d bytes)>", size)
}

// IsBinaryPlaceholder reports whether a value is a placeholder produced by
// BinaryPlaceholder.
func IsBinaryPlaceholder(value string) bool {
	return strings.HasPrefix(value, "<binary (") && strings.HasSuffix(value, " bytes)>")
}

func printable(b []byte) bool {
	if !utf8.Valid(b) {
		return false
	}
	for _, r := range string(b) {
		if unicode.IsControl(r) && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}

func fromLdapEntry(e *ldap.Entry) *Entry {
	entry := &Entry{
		Dn:         e.DN,
		Attributes: make(map[string][]string, len(e.Attributes)),
	}
	for _, attr := range e.Attributes {
		values := make([]string, 0, len(attr.ByteValues))
		for _, b := range attr.ByteValues {
			if printable(b) {
				values = append(values, string(b))
			} else {
				values = append(values, BinaryPlaceholder(len(b)))
			}
		}
		entry.Attributes[attr.Name] = values
	}
	return entry
}

func fromLdapEntries(raw []*ldap.Entry) []*Entry {
	entries := make([]*Entry, 0, len(raw))
	for _, e := range raw {
		entries = append(entries, fromLdapEntry(e))
	}
	return entries
}

// ModificationType identifies how a Modification changes an attribute.
type ModificationType string

const (
	ModAdd     ModificationType = "add"
	ModReplace ModificationType = "replace"
	ModDelete  ModificationType = "delete"
)

// Modification is one attribute change within a modify request. Delete
// modifications carry the value to remove in OldValue; an empty OldValue
// removes all values of the attribute.
type Modification struct {
	AttributeName string           `json:"attributeName"`
	Type          ModificationType `json:"type"`
	NewValue      string           `json:"newValue,omitempty"`
	OldValue      string           `json:"oldValue,omitempty"`
}
