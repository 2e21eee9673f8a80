package ldif

import (
	"fmt"

	"github.com/ssoellinger/open-ldap-viewer/directory"
)

// Session is the slice of the directory session the applier needs.
type Session interface {
	CreateEntry(dn string, attributes map[string][]string) error
	ModifyEntry(dn string, modifications []directory.Modification) error
	DeleteEntry(dn string) error
}

// Apply executes operations strictly in order, one at a time: a later
// operation may depend on an earlier one's side effect, such as a parent
// created before its children. A failed operation is recorded in its Result
// and never aborts the batch; one Result is returned per input operation,
// in the same order.
func Apply(session Session, operations []Operation) []Result {
	results := make([]Result, 0, len(operations))
	for _, op := range operations {
		var err error
		switch op.ChangeType {
		case ChangeAdd:
			err = session.CreateEntry(op.Dn, op.Attributes)
		case ChangeModify:
			err = session.ModifyEntry(op.Dn, op.Modifications)
		case ChangeDelete:
			err = session.DeleteEntry(op.Dn)
		default:
			err = fmt.Errorf("unsupported change type %q", op.ChangeType)
		}

		result := Result{
			Dn:         op.Dn,
			ChangeType: op.ChangeType,
			Success:    err == nil,
		}
		if err != nil {
			result.Error = err.Error()
		}
		results = append(results, result)
	}
	return results
}
