package ldif

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssoellinger/open-ldap-viewer/directory"
)

func TestToLdifSortedAttributes(t *testing.T) {
	entry := &directory.Entry{
		Dn: "cn=jane,dc=example,dc=com",
		Attributes: map[string][]string{
			"sn":          {"Doe"},
			"cn":          {"jane"},
			"ObjectClass": {"person", "top"},
		},
	}

	assert.Equal(t, `dn: cn=jane,dc=example,dc=com
cn: jane
ObjectClass: person
ObjectClass: top
sn: Doe
`, ToLdif(entry))
}

func TestToLdifBinaryPlaceholderMarker(t *testing.T) {
	entry := &directory.Entry{
		Dn: "cn=jane,dc=example,dc=com",
		Attributes: map[string][]string{
			"jpegPhoto": {directory.BinaryPlaceholder(1234)},
		},
	}

	assert.Contains(t, ToLdif(entry), "jpegPhoto:: \n")
}

func TestToLdifBase64EncodesUnsafeValues(t *testing.T) {
	entry := &directory.Entry{
		Dn: "cn=jane,dc=example,dc=com",
		Attributes: map[string][]string{
			"description": {" leading space"},
			"info":        {"line\nbreak"},
		},
	}

	out := ToLdif(entry)
	assert.Contains(t, out, "description:: IGxlYWRpbmcgc3BhY2U=\n")
	assert.Contains(t, out, "info:: bGluZQpicmVhaw==\n")
}

func TestEntriesToLdifBlankLineSeparated(t *testing.T) {
	entries := []*directory.Entry{
		{Dn: "dc=example,dc=com", Attributes: map[string][]string{"dc": {"example"}}},
		{Dn: "ou=People,dc=example,dc=com", Attributes: map[string][]string{"ou": {"People"}}},
	}

	out := EntriesToLdif(entries)
	blocks := strings.Split(out, "\n\n")
	require.Len(t, blocks, 2)
	assert.True(t, strings.HasPrefix(blocks[0], "dn: dc=example,dc=com\n"))
	assert.True(t, strings.HasPrefix(blocks[1], "dn: ou=People,dc=example,dc=com\n"))
}

func TestWriteParseRoundTrip(t *testing.T) {
	entry := &directory.Entry{
		Dn: "cn=jane,dc=example,dc=com",
		Attributes: map[string][]string{
			"cn":          {"jane"},
			"sn":          {"Doe"},
			"description": {" padded "},
			"mail":        {"jane@example.com", "jd@example.com"},
		},
	}

	ops := Parse(ToLdif(entry))
	require.Len(t, ops, 1)
	op := ops[0]
	assert.Equal(t, entry.Dn, op.Dn)
	assert.Equal(t, ChangeAdd, op.ChangeType)
	assert.Equal(t, entry.Attributes["mail"], op.Attributes["mail"])
	assert.Equal(t, []string{" padded "}, op.Attributes["description"])
}
