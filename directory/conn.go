package directory

import "github.com/go-ldap/ldap/v3"

// ldapConn is the slice of *ldap.Conn the session uses, narrowed so tests
// can substitute a fake server.
type ldapConn interface {
	Bind(username, password string) error
	UnauthenticatedBind(username string) error
	Search(req *ldap.SearchRequest) (*ldap.SearchResult, error)
	Add(req *ldap.AddRequest) error
	Modify(req *ldap.ModifyRequest) error
	Del(req *ldap.DelRequest) error
	ModifyDN(req *ldap.ModifyDNRequest) error
	WhoAmI(controls []ldap.Control) (*ldap.WhoAmIResult, error)
	Close() error
}
