// Package migrations embeds the schema migrations applied by
// internal/store/postgres, replacing the teacher's statik-generated
// filesystem with go:embed since statik requires an offline codegen step
// this build cannot run.
package migrations

import (
	"embed"
	"sort"
	"strconv"
	"strings"
)

//go:embed *.sql
var files embed.FS

// Migration is one numbered, idempotent schema step.
type Migration struct {
	ID   int
	Name string
	SQL  string
}

// Load reads every embedded .sql file and returns them ordered by the
// numeric prefix in their filename, matching the teacher's
// "0001_description.sql" convention.
func Load() ([]Migration, error) {
	entries, err := files.ReadDir(".")
	if err != nil {
		return nil, err
	}

	migrations := make([]Migration, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		raw, err := files.ReadFile(entry.Name())
		if err != nil {
			return nil, err
		}
		idStr, _, found := strings.Cut(entry.Name(), "_")
		if !found {
			continue
		}
		id, err := strconv.Atoi(idStr)
		if err != nil {
			return nil, err
		}
		migrations = append(migrations, Migration{ID: id, Name: entry.Name(), SQL: string(raw)})
	}

	sort.Slice(migrations, func(i, j int) bool { return migrations[i].ID < migrations[j].ID })
	return migrations, nil
}
