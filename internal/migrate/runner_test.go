package migrate

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSplitStatements(t *testing.T) {
	stmts := splitStatements(`create table a (id text); insert into a values ('x;y'); select 1`)
	if len(stmts) != 3 {
		t.Fatalf("statements = %d: %q", len(stmts), stmts)
	}
	if stmts[1] != ` insert into a values ('x;y');` {
		t.Fatalf("semicolon inside string split: %q", stmts[1])
	}
}

func TestCollectOrdersLexically(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"0002_b.up.sql", "0001_a.up.sql", "0001_a.down.sql", "readme.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("select 1;"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := collect(dir, ".up.sql")
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(files) != 2 || files[0].name != "0001_a.up.sql" || files[1].name != "0002_b.up.sql" {
		t.Fatalf("files = %+v", files)
	}
}

func TestCollectMissingDir(t *testing.T) {
	files, err := collect(filepath.Join(t.TempDir(), "absent"), ".sql")
	if err != nil || files != nil {
		t.Fatalf("missing dir: files=%v err=%v", files, err)
	}
}
