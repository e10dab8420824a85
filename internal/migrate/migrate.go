// Package migrate versions the run-journal schema.
package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/emiliopalmerini/modelcraft/migrations"
)

// ErrDirty is returned when a previous step failed halfway.
var ErrDirty = errors.New("journal schema is dirty, manual intervention required")

// Step is one numbered schema change and its rollback.
type Step struct {
	Version int
	Name    string
	Up      string
	Down    string
}

func (s Step) String() string {
	return fmt.Sprintf("%d_%s", s.Version, s.Name)
}

// State is the schema version recorded in the journal.
type State struct {
	Version int
	Latest  int
	Dirty   bool
}

// Pending reports whether steps newer than the recorded version exist.
func (s State) Pending() bool {
	return s.Version < s.Latest
}

// Migrator moves a journal database between schema versions. The version is
// kept in a single-row journal_schema table.
type Migrator struct {
	db     *sql.DB
	source fs.FS
	steps  []Step
	out    io.Writer
}

// Option configures a Migrator.
type Option func(*Migrator)

// WithOutput reports each applied step to w.
func WithOutput(w io.Writer) Option {
	return func(m *Migrator) { m.out = w }
}

// WithSource reads steps from fsys instead of the embedded journal schema.
func WithSource(fsys fs.FS) Option {
	return func(m *Migrator) { m.source = fsys }
}

// New loads the steps and makes sure the version table exists.
func New(ctx context.Context, db *sql.DB, opts ...Option) (*Migrator, error) {
	m := &Migrator{db: db, source: migrations.FS, out: io.Discard}
	for _, opt := range opts {
		opt(m)
	}

	steps, err := LoadSteps(m.source)
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}
	m.steps = steps

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS journal_schema (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			version INTEGER NOT NULL,
			dirty INTEGER NOT NULL DEFAULT 0
		)
	`); err != nil {
		return nil, fmt.Errorf("failed to create journal_schema: %w", err)
	}
	return m, nil
}

// Apply brings db to the newest journal schema without reporting progress.
func Apply(ctx context.Context, db *sql.DB) error {
	m, err := New(ctx, db)
	if err != nil {
		return err
	}
	_, err = m.Up(ctx)
	return err
}

// Steps returns the known steps, oldest first.
func (m *Migrator) Steps() []Step {
	return append([]Step(nil), m.steps...)
}

// State reads the recorded version.
func (m *Migrator) State(ctx context.Context) (State, error) {
	st := State{}
	if n := len(m.steps); n > 0 {
		st.Latest = m.steps[n-1].Version
	}

	var dirty int
	err := m.db.QueryRowContext(ctx, `SELECT version, dirty FROM journal_schema WHERE id = 1`).Scan(&st.Version, &dirty)
	if errors.Is(err, sql.ErrNoRows) {
		return st, nil
	}
	if err != nil {
		return st, fmt.Errorf("failed to read schema version: %w", err)
	}
	st.Dirty = dirty == 1
	return st, nil
}

// Up applies every pending step and returns how many ran.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	st, err := m.State(ctx)
	if err != nil {
		return 0, err
	}
	return m.To(ctx, st.Latest)
}

// To moves the schema up or down to target and returns how many steps ran.
// Target 0 removes the journal schema entirely.
func (m *Migrator) To(ctx context.Context, target int) (int, error) {
	st, err := m.State(ctx)
	if err != nil {
		return 0, err
	}
	if st.Dirty {
		return 0, fmt.Errorf("%w (version %d)", ErrDirty, st.Version)
	}
	if target < 0 || target > st.Latest {
		return 0, fmt.Errorf("unknown schema version %d (latest is %d)", target, st.Latest)
	}

	ran := 0
	if target >= st.Version {
		for _, s := range m.steps {
			if s.Version <= st.Version || s.Version > target {
				continue
			}
			if err := m.run(ctx, s, true); err != nil {
				return ran, err
			}
			ran++
		}
		return ran, nil
	}

	for i := len(m.steps) - 1; i >= 0; i-- {
		s := m.steps[i]
		if s.Version > st.Version || s.Version <= target {
			continue
		}
		if s.Down == "" {
			return ran, fmt.Errorf("no down migration for %s", s)
		}
		if err := m.run(ctx, s, false); err != nil {
			return ran, err
		}
		ran++
	}
	return ran, nil
}

// run marks the schema dirty, then executes the step and records the new
// version in one transaction. A failure leaves the dirty mark behind.
func (m *Migrator) run(ctx context.Context, s Step, up bool) error {
	direction, body, next := "up", s.Up, s.Version
	if !up {
		direction, body, next = "down", s.Down, m.previous(s.Version)
	}
	fmt.Fprintf(m.out, "  %s %s\n", direction, s)

	if err := setVersion(ctx, m.db, s.Version, true); err != nil {
		return fmt.Errorf("failed to set dirty flag: %w", err)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration %s: %w", s, err)
	}
	defer tx.Rollback()

	for _, stmt := range statements(body) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute migration %s %s: %w\nSQL: %s", s, direction, err, stmt)
		}
	}
	if err := setVersion(ctx, tx, next, false); err != nil {
		return fmt.Errorf("failed to clear dirty flag: %w", err)
	}
	return tx.Commit()
}

// previous returns the version below v, or 0.
func (m *Migrator) previous(v int) int {
	prev := 0
	for _, s := range m.steps {
		if s.Version < v {
			prev = s.Version
		}
	}
	return prev
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func setVersion(ctx context.Context, db execer, version int, dirty bool) error {
	d := 0
	if dirty {
		d = 1
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO journal_schema (id, version, dirty) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET version = excluded.version, dirty = excluded.dirty
	`, version, d)
	return err
}

var upFile = regexp.MustCompile(`^(\d+)_(.+)\.up\.sql$`)

// LoadSteps reads NNN_name.up.sql files and their optional .down.sql
// counterparts from the root of fsys.
func LoadSteps(fsys fs.FS) ([]Step, error) {
	names, err := fs.Glob(fsys, "*.up.sql")
	if err != nil {
		return nil, err
	}

	seen := make(map[int]string, len(names))
	steps := make([]Step, 0, len(names))
	for _, name := range names {
		match := upFile.FindStringSubmatch(name)
		if match == nil {
			continue
		}
		version, err := strconv.Atoi(match[1])
		if err != nil || version == 0 {
			return nil, fmt.Errorf("invalid migration version in %s", name)
		}
		if prev, ok := seen[version]; ok {
			return nil, fmt.Errorf("duplicate migration version %d in %s and %s", version, prev, name)
		}
		seen[version] = name

		up, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		down, err := fs.ReadFile(fsys, strings.TrimSuffix(name, ".up.sql")+".down.sql")
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read down migration for %s: %w", name, err)
		}

		steps = append(steps, Step{Version: version, Name: match[2], Up: string(up), Down: string(down)})
	}

	sort.Slice(steps, func(i, j int) bool { return steps[i].Version < steps[j].Version })
	return steps, nil
}

// statements splits a script on semicolons, dropping line comments and blanks.
func statements(script string) []string {
	var b strings.Builder
	for _, line := range strings.Split(script, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	var out []string
	for _, stmt := range strings.Split(b.String(), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
