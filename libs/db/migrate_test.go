package db

import (
	"testing"
	"testing/fstest"
)

func TestMigrationFiles_SortedSQLOnly(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_indexes.sql": {Data: []byte("SELECT 1;")},
		"0001_init.sql":    {Data: []byte("SELECT 1;")},
		"README.md":        {Data: []byte("docs")},
	}

	names, err := migrationFiles(fsys)
	if err != nil {
		t.Fatalf("migrationFiles failed: %v", err)
	}
	if len(names) != 2 || names[0] != "0001_init.sql" || names[1] != "0002_indexes.sql" {
		t.Fatalf("unexpected migration order: %v", names)
	}
}
