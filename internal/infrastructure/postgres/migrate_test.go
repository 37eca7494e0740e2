package postgres

import (
	"testing"
	"testing/fstest"
)

func TestReadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_medals.sql":       {Data: []byte("CREATE TABLE medals ();")},
		"0001_init.sql":         {Data: []byte("CREATE TABLE profiles ();")},
		"001_bad_version.sql":   {Data: []byte("x")},
		"0003_missing_ext":      {Data: []byte("x")},
		"README.md":             {Data: []byte("docs")},
		"0004_dir.sql/file.sql": {Data: []byte("x")},
	}

	migrations, err := ReadMigrations(fsys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}
	if migrations[0].Version != 1 || migrations[0].Name != "init" {
		t.Errorf("first migration = %d_%s, want 1_init", migrations[0].Version, migrations[0].Name)
	}
	if migrations[1].Version != 2 || migrations[1].Name != "medals" {
		t.Errorf("second migration = %d_%s, want 2_medals", migrations[1].Version, migrations[1].Name)
	}
	if migrations[0].Checksum == migrations[1].Checksum {
		t.Error("different content produced the same checksum")
	}
}
