package directory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-ldap/ldap/v3"
	"github.com/sirupsen/logrus"

	"github.com/ssoellinger/open-ldap-viewer/directory/schema"
)

const (
	// pageSize is the simple-paging control page size used by every list
	// operation. Servers cap single responses well below typical directory
	// sizes; the cookie loop lifts that cap while keeping each round trip
	// bounded.
	pageSize = 1000

	filterAnyObject = "(objectClass=*)"
)

// noAttributes requests DNs only (RFC 4511 "1.1" no-attributes OID).
var noAttributes = []string{"1.1"}

// Session owns at most one live connection to one LDAP server. A mutex
// serializes every operation touching the connection, so at most one request
// is in flight per session. TestBind is exempt: it uses its own short-lived
// connection.
type Session struct {
	mu       sync.Mutex
	conn     ldapConn
	settings ConnectionSettings
	log      *logrus.Logger
}

func NewSession(log *logrus.Logger) *Session {
	return &Session{log: log}
}

// Connect closes any existing connection and establishes a new one from the
// given settings: LDAPv3, simple authentication, TLS when UseSsl is set,
// and a bind with the configured credentials when a username is present
// (anonymous bind otherwise).
func (s *Session) Connect(settings ConnectionSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}

	conn, err := dialAndBind(settings, settings.Username, settings.Password)
	if err != nil {
		return err
	}

	s.conn = conn
	s.settings = settings
	s.log.WithFields(logrus.Fields{
		"server": settings.URL(),
		"baseDn": settings.BaseDn,
		"bindAs": settings.Username,
	}).Info("connected to directory server")
	return nil
}

func dialAndBind(settings ConnectionSettings, username, password string) (*ldap.Conn, error) {
	conn, err := ldap.DialURL(settings.URL())
	if err != nil {
		return nil, connectError(err)
	}
	if username != "" {
		err = conn.Bind(username, password)
	} else {
		err = conn.UnauthenticatedBind("")
	}
	if err != nil {
		conn.Close()
		return nil, connectError(err)
	}
	return conn, nil
}

// Disconnect closes the connection and clears the stored settings.
func (s *Session) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
		s.log.WithField("server", s.settings.URL()).Info("disconnected")
	}
	s.settings = ConnectionSettings{}
}

// Connected reports whether a live connection exists.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// Settings returns a copy of the settings the session was connected with.
func (s *Session) Settings() ConnectionSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// withConn runs fn against the live connection under the session mutex.
func (s *Session) withConn(fn func(conn ldapConn) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return ErrNotConnected
	}
	return fn(s.conn)
}

// pagedSearch accumulates all pages of a search. After each response the
// paging cookie is inspected; an empty cookie ends the loop, otherwise it is
// attached to the next request.
func pagedSearch(conn ldapConn, baseDn string, scope int, filter string, attributes []string) ([]*ldap.Entry, error) {
	paging := ldap.NewControlPaging(pageSize)
	var all []*ldap.Entry
	for {
		req := ldap.NewSearchRequest(
			baseDn, scope, ldap.NeverDerefAliases, 0, 0, false,
			filter, attributes, []ldap.Control{paging},
		)
		res, err := conn.Search(req)
		if err != nil {
			return nil, err
		}
		all = append(all, res.Entries...)

		responseControl, ok := ldap.FindControl(res.Controls, ldap.ControlTypePaging).(*ldap.ControlPaging)
		if !ok || len(responseControl.Cookie) == 0 {
			break
		}
		paging.SetCookie(responseControl.Cookie)
	}
	return all, nil
}

// GetChildren returns the immediate children of parentDn, DNs only, sorted
// by display name.
func (s *Session) GetChildren(parentDn string) ([]*Entry, error) {
	var entries []*Entry
	err := s.withConn(func(conn ldapConn) error {
		raw, err := pagedSearch(conn, parentDn, ldap.ScopeSingleLevel, filterAnyObject, noAttributes)
		if err != nil {
			return operationError(err)
		}
		entries = fromLdapEntries(raw)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].DisplayName() < entries[j].DisplayName()
	})
	return entries, nil
}

// GetChildCount returns the number of immediate children of parentDn.
func (s *Session) GetChildCount(parentDn string) (int, error) {
	var count int
	err := s.withConn(func(conn ldapConn) error {
		raw, err := pagedSearch(conn, parentDn, ldap.ScopeSingleLevel, filterAnyObject, noAttributes)
		if err != nil {
			return operationError(err)
		}
		count = len(raw)
		return nil
	})
	return count, err
}

// HasChildren reports whether parentDn has at least one child. It limits the
// search to a single row; a size-limit-exceeded result from the server also
// means there was at least one row.
func (s *Session) HasChildren(parentDn string) (bool, error) {
	var has bool
	err := s.withConn(func(conn ldapConn) error {
		req := ldap.NewSearchRequest(
			parentDn, ldap.ScopeSingleLevel, ldap.NeverDerefAliases, 1, 0, false,
			filterAnyObject, noAttributes, nil,
		)
		res, err := conn.Search(req)
		if err != nil {
			if ldap.IsErrorWithCode(err, ldap.LDAPResultSizeLimitExceeded) {
				has = true
				return nil
			}
			return operationError(err)
		}
		has = len(res.Entries) > 0
		return nil
	})
	return has, err
}

// GetEntry reads exactly one entry. Returns nil without error when the DN
// does not exist.
func (s *Session) GetEntry(dn string) (*Entry, error) {
	var entry *Entry
	err := s.withConn(func(conn ldapConn) error {
		req := ldap.NewSearchRequest(
			dn, ldap.ScopeBaseObject, ldap.NeverDerefAliases, 0, 0, false,
			filterAnyObject, nil, nil,
		)
		res, err := conn.Search(req)
		if err != nil {
			if ldap.IsErrorWithCode(err, ldap.LDAPResultNoSuchObject) {
				return nil
			}
			return operationError(err)
		}
		if len(res.Entries) > 0 {
			entry = fromLdapEntry(res.Entries[0])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Search runs a paged subtree search with a caller-supplied filter, sorted
// by DN.
func (s *Session) Search(baseDn, filter string) ([]*Entry, error) {
	var entries []*Entry
	err := s.withConn(func(conn ldapConn) error {
		raw, err := pagedSearch(conn, baseDn, ldap.ScopeWholeSubtree, filter, nil)
		if err != nil {
			return operationError(err)
		}
		entries = fromLdapEntries(raw)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Dn < entries[j].Dn })
	return entries, nil
}

// GetSubtree returns every entry under baseDn, sorted by DN.
func (s *Session) GetSubtree(baseDn string) ([]*Entry, error) {
	return s.Search(baseDn, filterAnyObject)
}

// GetNamingContexts reads the naming contexts advertised in the root DSE,
// with the server's declared default context moved to the front if present.
func (s *Session) GetNamingContexts() ([]string, error) {
	var contexts []string
	err := s.withConn(func(conn ldapConn) error {
		req := ldap.NewSearchRequest(
			"", ldap.ScopeBaseObject, ldap.NeverDerefAliases, 0, 0, false,
			filterAnyObject, []string{"namingContexts", "defaultNamingContext"}, nil,
		)
		res, err := conn.Search(req)
		if err != nil {
			return operationError(err)
		}
		if len(res.Entries) == 0 {
			return nil
		}
		contexts = res.Entries[0].GetAttributeValues("namingContexts")
		if def := res.Entries[0].GetAttributeValue("defaultNamingContext"); def != "" {
			for i, ctx := range contexts {
				if ctx == def && i > 0 {
					contexts = append([]string{def}, append(contexts[:i:i], contexts[i+1:]...)...)
					break
				}
			}
		}
		return nil
	})
	return contexts, err
}

// GetSchema resolves the subschema subentry DN via the root DSE (falling
// back to cn=Subschema) and reads the objectClass and attributeType
// definitions from it.
func (s *Session) GetSchema() (*schema.Schema, error) {
	var result *schema.Schema
	err := s.withConn(func(conn ldapConn) error {
		schemaDn := "cn=Subschema"
		rootReq := ldap.NewSearchRequest(
			"", ldap.ScopeBaseObject, ldap.NeverDerefAliases, 0, 0, false,
			filterAnyObject, []string{"subschemaSubentry"}, nil,
		)
		if root, err := conn.Search(rootReq); err == nil && len(root.Entries) > 0 {
			if dn := root.Entries[0].GetAttributeValue("subschemaSubentry"); dn != "" {
				schemaDn = dn
			}
		}

		req := ldap.NewSearchRequest(
			schemaDn, ldap.ScopeBaseObject, ldap.NeverDerefAliases, 0, 0, false,
			filterAnyObject, []string{"objectClasses", "attributeTypes"}, nil,
		)
		res, err := conn.Search(req)
		if err != nil {
			return operationError(err)
		}
		if len(res.Entries) == 0 {
			result = schema.New(nil, nil)
			return nil
		}

		entry := res.Entries[0]
		result = schema.New(
			parseItems(entry.GetAttributeValues("objectClasses")),
			parseItems(entry.GetAttributeValues("attributeTypes")),
		)
		return nil
	})
	return result, err
}

func parseItems(definitions []string) []schema.Item {
	items := make([]schema.Item, 0, len(definitions))
	for _, def := range definitions {
		items = append(items, schema.ParseItem(def))
	}
	return items
}

// TestBind validates credentials against the session's server on a separate
// short-lived connection, so password checks never disturb the main
// session's lock or bind identity.
func (s *Session) TestBind(userDn, password string) error {
	s.mu.Lock()
	settings := s.settings
	s.mu.Unlock()

	conn, err := dialAndBind(settings, userDn, password)
	if err != nil {
		return err
	}
	conn.Close()
	return nil
}

// WhoAmI runs the Who Am I? extended operation on the live connection.
func (s *Session) WhoAmI() (string, error) {
	var authzID string
	err := s.withConn(func(conn ldapConn) error {
		res, err := conn.WhoAmI(nil)
		if err != nil {
			return operationError(err)
		}
		authzID = res.AuthzID
		return nil
	})
	return authzID, err
}

// ModifyEntry applies an ordered list of attribute modifications as one
// request.
func (s *Session) ModifyEntry(dn string, modifications []Modification) error {
	return s.withConn(func(conn ldapConn) error {
		req := ldap.NewModifyRequest(dn, nil)
		for _, m := range modifications {
			switch m.Type {
			case ModAdd:
				req.Add(m.AttributeName, []string{m.NewValue})
			case ModReplace:
				if m.NewValue == "" {
					// RFC 2849: a replace with no values removes the attribute
					req.Replace(m.AttributeName, []string{})
				} else {
					req.Replace(m.AttributeName, []string{m.NewValue})
				}
			case ModDelete:
				if m.OldValue == "" {
					req.Delete(m.AttributeName, []string{})
				} else {
					req.Delete(m.AttributeName, []string{m.OldValue})
				}
			}
		}
		if err := conn.Modify(req); err != nil {
			return operationError(err)
		}
		return nil
	})
}

// CreateEntry adds a new entry with the given attributes.
func (s *Session) CreateEntry(dn string, attributes map[string][]string) error {
	return s.withConn(func(conn ldapConn) error {
		req := ldap.NewAddRequest(dn, nil)
		names := make([]string, 0, len(attributes))
		for name := range attributes {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			req.Attribute(name, attributes[name])
		}
		if err := conn.Add(req); err != nil {
			return operationError(err)
		}
		return nil
	})
}

// DeleteEntry removes one entry. The server refuses when the entry has
// children.
func (s *Session) DeleteEntry(dn string) error {
	return s.withConn(func(conn ldapConn) error {
		if err := conn.Del(ldap.NewDelRequest(dn, nil)); err != nil {
			return operationError(err)
		}
		return nil
	})
}

// MoveEntry renames an entry and optionally relocates it under a new parent.
func (s *Session) MoveEntry(dn, newRdn, newParentDn string) error {
	return s.withConn(func(conn ldapConn) error {
		req := ldap.NewModifyDNRequest(dn, newRdn, true, newParentDn)
		if err := conn.ModifyDN(req); err != nil {
			return operationError(err)
		}
		return nil
	})
}

// SetPassword hashes the password with the given algorithm and replaces the
// entry's userPassword attribute.
func (s *Session) SetPassword(dn, password, hashAlgorithm string) error {
	hashed, err := HashPassword(password, hashAlgorithm)
	if err != nil {
		return err
	}
	return s.ModifyEntry(dn, []Modification{{
		AttributeName: "userPassword",
		Type:          ModReplace,
		NewValue:      hashed,
	}})
}

// GetBinaryAttribute fetches the raw first value of one attribute, bypassing
// the lossy text model.
func (s *Session) GetBinaryAttribute(dn, attributeName string) ([]byte, error) {
	var value []byte
	err := s.withConn(func(conn ldapConn) error {
		req := ldap.NewSearchRequest(
			dn, ldap.ScopeBaseObject, ldap.NeverDerefAliases, 0, 0, false,
			filterAnyObject, []string{attributeName}, nil,
		)
		res, err := conn.Search(req)
		if err != nil {
			return operationError(err)
		}
		if len(res.Entries) == 0 {
			return fmt.Errorf("%w: no such entry %q", ErrOperationFailed, dn)
		}
		value = res.Entries[0].GetRawAttributeValue(attributeName)
		return nil
	})
	return value, err
}
