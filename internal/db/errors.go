package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a requested record is not found.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey is returned when a video id is already in the catalog.
	ErrDuplicateKey = errors.New("duplicate key violation")

	// ErrImmutableRecord is returned when a write tries to modify a write-once video.
	ErrImmutableRecord = errors.New("record is immutable and cannot be modified")
)

// sqlStateSentinels maps the SQLSTATE codes the catalog schema can raise to sentinels.
// P0001 comes from the videos_write_once trigger.
var sqlStateSentinels = map[string]error{
	"23505": ErrDuplicateKey,
	"P0001": ErrImmutableRecord,
}

// WrapError prefixes err with the failing operation. Known Postgres failures wrap a
// sentinel and keep the server's detail in the message.
func WrapError(err error, operation string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("%s: %w", operation, ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w", operation, err)
	}

	sentinel, known := sqlStateSentinels[pgErr.Code]
	if !known {
		return fmt.Errorf("%s: database error [%s]: %w", operation, pgErr.Code, err)
	}

	detail := pgErr.Message
	if pgErr.ConstraintName != "" {
		detail = "constraint " + pgErr.ConstraintName
	}
	return fmt.Errorf("%s: %w (%s)", operation, sentinel, detail)
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsDuplicateKey reports whether err wraps ErrDuplicateKey.
func IsDuplicateKey(err error) bool { return errors.Is(err, ErrDuplicateKey) }

// IsImmutableRecord reports whether err wraps ErrImmutableRecord.
func IsImmutableRecord(err error) bool { return errors.Is(err, ErrImmutableRecord) }
