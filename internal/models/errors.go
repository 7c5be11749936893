package models

import "strings"

func IsUniqueConstraint(err error) bool {
	// sqlite3 driver error strings are stable enough for this check.
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
