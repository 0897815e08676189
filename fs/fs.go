// Package appfs embeds the files shipped inside the binary: database migrations
// (one directory per goose dialect), email templates and static assets.
package appfs

import "embed"

//go:embed assets migrations all:templates
var FS embed.FS

const (
	TemplatesDir        = "templates/email"
	CommonPasswordsFile = "assets/common-passwords.txt.gz"
)

// MigrationsDir returns the migrations directory for a goose dialect ("sqlite3" or "postgres").
func MigrationsDir(dialect string) string {
	return "migrations/" + dialect
}
