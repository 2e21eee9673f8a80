// Package ldif converts between RFC 2849-flavored LDIF text and typed change
// operations. The parser is a tolerant subset, not a strict grammar:
// malformed lines are skipped and blocks without a changetype default to
// Add, matching the imperfect LDIF real servers and tools emit.
package ldif

import "github.com/ssoellinger/open-ldap-viewer/directory"

// ChangeType identifies what an Operation does to its target DN.
type ChangeType string

const (
	ChangeAdd    ChangeType = "add"
	ChangeModify ChangeType = "modify"
	ChangeDelete ChangeType = "delete"
)

// Operation is one parsed LDIF change block. Attributes is populated for Add
// operations, Modifications for Modify operations.
type Operation struct {
	Dn            string                   `json:"dn"`
	ChangeType    ChangeType               `json:"changeType"`
	Attributes    map[string][]string      `json:"attributes,omitempty"`
	Modifications []directory.Modification `json:"modifications,omitempty"`
}

// Result is the outcome of applying one Operation. A failed operation
// carries the error text; it never aborts the rest of the batch.
type Result struct {
	Dn         string     `json:"dn"`
	ChangeType ChangeType `json:"changeType"`
	Success    bool       `json:"success"`
	Error      string     `json:"error,omitempty"`
}
