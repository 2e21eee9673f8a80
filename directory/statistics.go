package directory

import (
	"strings"

	"github.com/go-ldap/ldap/v3"
)

// GetStatistics tallies occurrence counts per objectClass value across all
// entries under baseDn, counting every value of multi-valued objectClass
// attributes.
func (s *Session) GetStatistics(baseDn string) (map[string]int, error) {
	counts := make(map[string]int)
	err := s.withConn(func(conn ldapConn) error {
		raw, err := pagedSearch(conn, baseDn, ldap.ScopeWholeSubtree, filterAnyObject, []string{"objectClass"})
		if err != nil {
			return operationError(err)
		}
		for _, entry := range raw {
			for _, class := range entry.GetAttributeValues("objectClass") {
				counts[class]++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// GetOuStatistics tallies entries per organizational unit: for each DN under
// baseDn, the first comma-separated component starting with "ou=" (case
// insensitive) is counted. Entries with no ou component are not counted.
func (s *Session) GetOuStatistics(baseDn string) (map[string]int, error) {
	counts := make(map[string]int)
	err := s.withConn(func(conn ldapConn) error {
		raw, err := pagedSearch(conn, baseDn, ldap.ScopeWholeSubtree, filterAnyObject, noAttributes)
		if err != nil {
			return operationError(err)
		}
		for _, entry := range raw {
			if ou, ok := firstOuComponent(entry.DN); ok {
				counts[ou]++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func firstOuComponent(dn string) (string, bool) {
	for _, part := range strings.Split(dn, ",") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(strings.ToLower(part), "ou=") {
			return part, true
		}
	}
	return "", false
}
