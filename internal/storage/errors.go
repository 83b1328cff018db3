package storage

import (
	"context"
	"errors"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrAlreadyExists       = errors.New("already exists")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// IsUnavailable reports whether err means the backing store could not be
// reached, as opposed to it rejecting the operation.
func IsUnavailable(err error) bool {
	var connErr *pgconn.ConnectError
	var netErr net.Error

	return errors.As(err, &connErr) ||
		errors.As(err, &netErr) ||
		errors.Is(err, context.DeadlineExceeded)
}
