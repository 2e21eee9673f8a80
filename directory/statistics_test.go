package directory

import (
	"testing"

	"github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStatisticsCountsEveryClassValue(t *testing.T) {
	conn := &fakeConn{searchFn: func(req *ldap.SearchRequest) (*ldap.SearchResult, error) {
		assert.Equal(t, []string{"objectClass"}, req.Attributes)
		return &ldap.SearchResult{Entries: []*ldap.Entry{
			ldap.NewEntry("cn=jane,dc=example,dc=com", map[string][]string{
				"objectClass": {"top", "person", "inetOrgPerson"},
			}),
			ldap.NewEntry("cn=john,dc=example,dc=com", map[string][]string{
				"objectClass": {"top", "person"},
			}),
			ldap.NewEntry("ou=People,dc=example,dc=com", map[string][]string{
				"objectClass": {"top", "organizationalUnit"},
			}),
		}}, nil
	}}

	counts, err := testSession(conn).GetStatistics("dc=example,dc=com")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		"top":                3,
		"person":             2,
		"inetOrgPerson":      1,
		"organizationalUnit": 1,
	}, counts)
}

func TestGetOuStatistics(t *testing.T) {
	conn := &fakeConn{searchFn: func(req *ldap.SearchRequest) (*ldap.SearchResult, error) {
		return entriesResult(
			"cn=jane,ou=Sales,dc=example,dc=com",
			"cn=john,ou=Sales,dc=example,dc=com",
			"cn=pat,ou=Engineering,ou=Staff,dc=example,dc=com",
			"dc=example,dc=com",
		), nil
	}}

	counts, err := testSession(conn).GetOuStatistics("dc=example,dc=com")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		"ou=Sales":       2,
		"ou=Engineering": 1,
	}, counts)
}
