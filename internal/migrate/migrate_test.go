package migrate

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	_ "github.com/tursodatabase/go-libsql"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("libsql", "file:"+filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRowContext(context.Background(),
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&n)
	if err != nil {
		t.Fatalf("sqlite_master lookup for %s: %v", name, err)
	}
	return n == 1
}

func TestStatements(t *testing.T) {
	got := statements("-- header\nCREATE TABLE a (id INT);\n  -- note; with semicolon\nCREATE TABLE b (id INT);\n\n")
	if len(got) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(got), got)
	}
	if got[1] != "CREATE TABLE b (id INT)" {
		t.Errorf("unexpected second statement %q", got[1])
	}
}

func TestLoadSteps(t *testing.T) {
	fsys := fstest.MapFS{
		"002_second.up.sql":   {Data: []byte("CREATE TABLE b (id INT);")},
		"001_first.up.sql":    {Data: []byte("CREATE TABLE a (id INT);")},
		"001_first.down.sql":  {Data: []byte("DROP TABLE a;")},
		"README.md":           {Data: []byte("ignored")},
		"002_second.down.txt": {Data: []byte("ignored")},
	}

	got, err := LoadSteps(fsys)
	if err != nil {
		t.Fatalf("LoadSteps: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(got))
	}
	if got[0].Version != 1 || got[0].Name != "first" || got[0].Down == "" {
		t.Errorf("unexpected first step %+v", got[0])
	}
	if got[1].Version != 2 || got[1].Down != "" {
		t.Errorf("unexpected second step %+v", got[1])
	}
	if got[0].String() != "1_first" {
		t.Errorf("String() = %q", got[0].String())
	}
}

func TestLoadSteps_Invalid(t *testing.T) {
	tests := []struct {
		name string
		fsys fstest.MapFS
		want string
	}{
		{
			name: "zero version",
			fsys: fstest.MapFS{"000_bad.up.sql": {Data: []byte("SELECT 1;")}},
			want: "invalid migration version",
		},
		{
			name: "duplicate version",
			fsys: fstest.MapFS{
				"001_a.up.sql": {Data: []byte("SELECT 1;")},
				"1_b.up.sql":   {Data: []byte("SELECT 1;")},
			},
			want: "duplicate migration version 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSteps(tt.fsys)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestMigrator_JournalUpAndDown(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	if err := Apply(ctx, db); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	var out bytes.Buffer
	m, err := New(ctx, db, WithOutput(&out))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(m.Steps()) == 0 {
		t.Fatal("no embedded migrations")
	}

	st, err := m.State(ctx)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if st.Dirty || st.Pending() || st.Version != st.Latest {
		t.Fatalf("unexpected state %+v", st)
	}
	for _, table := range []string{"datasets", "training_runs", "predictions"} {
		if !tableExists(t, db, table) {
			t.Errorf("%s missing after Apply", table)
		}
	}

	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM training_runs`).Scan(&n); err != nil {
		t.Fatalf("training_runs not queryable: %v", err)
	}
	if n != 0 {
		t.Errorf("training_runs has %d rows, want 0", n)
	}

	ran, err := m.Up(ctx)
	if err != nil {
		t.Fatalf("Up: %v", err)
	}
	if ran != 0 || out.Len() != 0 {
		t.Errorf("second Up ran %d steps, output %q", ran, out.String())
	}

	ran, err = m.To(ctx, 0)
	if err != nil {
		t.Fatalf("To(0): %v", err)
	}
	if ran != len(m.Steps()) {
		t.Errorf("To(0) ran %d steps, want %d", ran, len(m.Steps()))
	}
	if !strings.Contains(out.String(), "down 1_run_journal") {
		t.Errorf("unexpected output %q", out.String())
	}

	st, err = m.State(ctx)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if st.Version != 0 || st.Dirty || !st.Pending() {
		t.Errorf("state after down = %+v", st)
	}
	if tableExists(t, db, "training_runs") {
		t.Error("training_runs should be dropped")
	}
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM training_runs`).Scan(&n); err == nil {
		t.Error("querying training_runs should fail once dropped")
	}
}

func TestMigrator_ToUnknownVersion(t *testing.T) {
	ctx := context.Background()
	m, err := New(ctx, openDB(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := m.To(ctx, 99); err == nil || !strings.Contains(err.Error(), "unknown schema version 99") {
		t.Fatalf("expected unknown version error, got %v", err)
	}
}

func TestMigrator_StepsFromSource(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	fsys := fstest.MapFS{
		"001_widgets.up.sql":   {Data: []byte("CREATE TABLE widgets (id INTEGER);")},
		"001_widgets.down.sql": {Data: []byte("DROP TABLE widgets;")},
		"002_gadgets.up.sql":   {Data: []byte("CREATE TABLE gadgets (id INTEGER);")},
	}

	m, err := New(ctx, db, WithSource(fsys))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := m.To(ctx, 1); err != nil {
		t.Fatalf("To(1): %v", err)
	}
	if !tableExists(t, db, "widgets") || tableExists(t, db, "gadgets") {
		t.Fatal("To(1) should create widgets only")
	}

	if _, err := m.Up(ctx); err != nil {
		t.Fatalf("Up: %v", err)
	}
	if !tableExists(t, db, "gadgets") {
		t.Fatal("gadgets missing after Up")
	}

	if _, err := m.To(ctx, 0); err == nil || !strings.Contains(err.Error(), "no down migration for 2_gadgets") {
		t.Fatalf("expected missing down error, got %v", err)
	}
	st, err := m.State(ctx)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if st.Version != 2 || st.Dirty {
		t.Errorf("failed rollback changed state: %+v", st)
	}
}

func TestMigrator_FailedStepLeavesDirty(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	fsys := fstest.MapFS{
		"001_broken.up.sql": {Data: []byte("CREATE TABLE ok (id INTEGER);\nNOT VALID SQL;")},
	}

	m, err := New(ctx, db, WithSource(fsys))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := m.Up(ctx); err == nil {
		t.Fatal("expected broken step to fail")
	}
	if tableExists(t, db, "ok") {
		t.Error("partial step should be rolled back")
	}

	st, err := m.State(ctx)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if !st.Dirty || st.Version != 1 {
		t.Fatalf("expected dirty version 1, got %+v", st)
	}

	if err := Apply(ctx, db); !errors.Is(err, ErrDirty) {
		t.Fatalf("Apply on dirty schema = %v, want ErrDirty", err)
	}
}
