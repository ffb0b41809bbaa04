package contentblocks

import (
	"embed"
	"io/fs"
)

//go:embed data/sql/migrations
var migrationsFS embed.FS

// GetMigrationsFS returns the embedded migration files for this package.
func GetMigrationsFS() embed.FS {
	return migrationsFS
}

// MigrationsFS returns the migrations rooted at their dialect directories
// ("sqlite", "postgres").
func MigrationsFS() fs.FS {
	sub, err := fs.Sub(migrationsFS, "data/sql/migrations")
	if err != nil {
		panic(err)
	}
	return sub
}
