package util

import "database/sql"

// NullString converts a string to sql.NullString.
// Empty strings are treated as invalid (null).
func NullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// NullStringValue returns the string held by ns, or "" when null.
func NullStringValue(ns sql.NullString) string {
	if !ns.Valid {
		return ""
	}
	return ns.String
}
