package db

import "strings"

// IsUniqueViolation reports whether the provided error references a unique
// violation. Postgres and SQLite phrase these differently. When
// constraintName is given, the helper additionally requires that constraint
// in the error text.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if !strings.Contains(msg, "duplicate key value") && !strings.Contains(msg, "UNIQUE constraint failed") {
		return false
	}
	if constraintName == "" {
		return true
	}
	return strings.Contains(msg, constraintName)
}
