package database

import "strings"

// LikeContains is the WHERE fragment for a case-insensitive substring match on
// column. Bind its argument with ContainsPattern.
func LikeContains(column string) string {
	return "LOWER(" + column + ") LIKE ? ESCAPE '\\'"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern lowercases s and escapes LIKE wildcards so s matches only
// as a literal substring.
func ContainsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
