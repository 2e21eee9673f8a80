package directory

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected is returned by session operations invoked without a
	// live connection. Never retried automatically.
	ErrNotConnected = errors.New("not connected to a directory server")

	// ErrConnectFailed wraps transport or bind failures during Connect and
	// TestBind.
	ErrConnectFailed = errors.New("connect failed")

	// ErrOperationFailed wraps LDAP error results from the server for
	// search and CRUD calls that reached it.
	ErrOperationFailed = errors.New("directory operation failed")
)

func connectError(err error) error {
	return fmt.Errorf("%w: %v", ErrConnectFailed, err)
}

func operationError(err error) error {
	return fmt.Errorf("%w: %v", ErrOperationFailed, err)
}
