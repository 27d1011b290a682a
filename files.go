package auth

import (
	"embed"
)

//go:embed data/sql/migrations
var migrationsFS embed.FS

// GetMigrationsFS exposes the schema migrations for the users and
// token_revocations tables so hosts can apply them with their own runner.
func GetMigrationsFS() embed.FS {
	return migrationsFS
}
