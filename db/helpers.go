package db

import (
	"strings"
)

func withSchema(statement, schema string) string {
	return strings.ReplaceAll(statement, "{schema}", schema)
}

func firstLine(query string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(query), "\n")
	return line
}
