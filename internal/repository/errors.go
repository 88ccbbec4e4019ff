package repository

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrDuplicate       = errors.New("record already exists")
	ErrNoRowsAffected  = errors.New("no rows affected")
	ErrStateNotPending = errors.New("state already consumed")
)

const pqUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}
