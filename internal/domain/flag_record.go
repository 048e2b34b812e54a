package domain

import (
	"strconv"
	"strings"
)

// FlagRecord ties a placed flag to the account and file it was deposited
// under. It is written exactly once per tick and never mutated; redemption at
// a later tick reads it back, possibly from a different process.
type FlagRecord struct {
	Username string
	Password string
	UserID   int64
	FileID   int64
	FileName string
}

// FlagID returns the composite audit token for the record. It is recorded for
// traceability only and never used as a lookup key.
func (r FlagRecord) FlagID() string {
	return strings.Join([]string{
		r.Username,
		strconv.FormatInt(r.UserID, 10),
		r.FileName,
		strconv.FormatInt(r.FileID, 10),
	}, ":")
}
