package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // database/sql driver

	"github.com/acclaimhq/acclaim/internal/domain/model"
)

// SQLiteStore is a Store backed by a single SQLite database. The schema's
// UNIQUE constraints enforce the award-ledger and recognition 1:1
// invariants natively, and counter bumps share a transaction with their
// owning insert.
type SQLiteStore struct {
	db *sql.DB
}

// migrations holds the schema, one statement per entry.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS employees (
		id                 TEXT PRIMARY KEY,
		name               TEXT NOT NULL,
		email              TEXT NOT NULL UNIQUE,
		team               TEXT NOT NULL DEFAULT '',
		role               TEXT NOT NULL DEFAULT '',
		joined_at          TEXT NOT NULL,
		active             INTEGER NOT NULL DEFAULT 1,
		recognition_count  INTEGER NOT NULL DEFAULT 0,
		badge_count        INTEGER NOT NULL DEFAULT 0,
		total_effort_score INTEGER NOT NULL DEFAULT 0,
		last_activity_at   TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS efforts (
		id          TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		source      TEXT NOT NULL,
		type        TEXT NOT NULL,
		title       TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		tags        TEXT NOT NULL DEFAULT '[]',
		impact      INTEGER NOT NULL CHECK (impact BETWEEN 1 AND 10),
		at          TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_efforts_employee_at ON efforts(employee_id, at)`,

	`CREATE TABLE IF NOT EXISTS recognitions (
		id          TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		effort_id   TEXT NOT NULL UNIQUE,
		message     TEXT NOT NULL,
		glyph       TEXT NOT NULL,
		category    TEXT NOT NULL,
		impact      INTEGER NOT NULL CHECK (impact BETWEEN 1 AND 10),
		at          TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_recognitions_employee_at ON recognitions(employee_id, at)`,

	`CREATE TABLE IF NOT EXISTS badge_awards (
		employee_id TEXT NOT NULL REFERENCES employees(id),
		badge_id    TEXT NOT NULL,
		earned_at   TEXT NOT NULL,
		progress    INTEGER NOT NULL DEFAULT 100,
		PRIMARY KEY (employee_id, badge_id)
	)`,

	`CREATE TABLE IF NOT EXISTS weekly_digests (
		employee_id         TEXT NOT NULL REFERENCES employees(id),
		week_start          TEXT NOT NULL,
		week_end            TEXT NOT NULL,
		total_efforts       INTEGER NOT NULL DEFAULT 0,
		collaboration_score REAL NOT NULL DEFAULT 0,
		impact_score        REAL NOT NULL DEFAULT 0,
		growth_percent      REAL NOT NULL DEFAULT 0,
		top_recognitions    TEXT NOT NULL DEFAULT '[]',
		highlights          TEXT NOT NULL DEFAULT '[]',
		badges_earned       TEXT NOT NULL DEFAULT '[]',
		generated_at        TEXT NOT NULL,
		PRIMARY KEY (employee_id, week_start)
	)`,
}

// OpenSQLite opens (creating if needed) the database at path and applies
// the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// Serialized access keeps the modernc driver happy under concurrency;
	// SQLite writes are single-writer anyway.
	db.SetMaxOpenConns(1)

	for _, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) InsertEmployee(ctx context.Context, e model.Employee) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (id, name, email, team, role, joined_at, active, last_activity_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING`,
		e.ID, e.Name, e.Email, e.Team, e.Role, stamp(e.JoinedAt), boolInt(e.Active), stamp(e.LastActivityAt))
	if err != nil {
		return wrapStoreErr("insert employee", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("employee %s: %w", e.ID, ErrConflict)
	}
	return nil
}

func (s *SQLiteStore) FindEmployee(ctx context.Context, id string) (model.Employee, error) {
	var (
		e            model.Employee
		joined, last sql.NullString
		active       int
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, team, role, joined_at, active,
		       recognition_count, badge_count, total_effort_score, last_activity_at
		FROM employees WHERE id = ?`, id).
		Scan(&e.ID, &e.Name, &e.Email, &e.Team, &e.Role, &joined, &active,
			&e.RecognitionCount, &e.BadgeCount, &e.TotalEffortScore, &last)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Employee{}, fmt.Errorf("employee %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Employee{}, wrapStoreErr("find employee", err)
	}
	e.Active = active == 1
	e.JoinedAt = unstamp(joined)
	e.LastActivityAt = unstamp(last)
	return e, nil
}

func (s *SQLiteStore) InsertEffort(ctx context.Context, e model.Effort) error {
	tags, err := json.Marshal(e.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapStoreErr("begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := employeeExists(ctx, tx, e.EmployeeID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO efforts (id, employee_id, source, type, title, description, tags, impact, at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING`,
		e.ID, e.EmployeeID, string(e.Source), string(e.Type), e.Title, e.Description, string(tags), e.Impact, stamp(e.At))
	if err != nil {
		return wrapStoreErr("insert effort", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("effort %s: %w", e.ID, ErrConflict)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE employees SET last_activity_at = ?
		WHERE id = ? AND (last_activity_at IS NULL OR last_activity_at < ?)`,
		stamp(e.At), e.EmployeeID, stamp(e.At)); err != nil {
		return wrapStoreErr("touch employee", err)
	}
	if err := tx.Commit(); err != nil {
		return wrapStoreErr("commit", err)
	}
	return nil
}

func (s *SQLiteStore) FindEfforts(ctx context.Context, employeeID string, source model.Source, from, to time.Time) ([]model.Effort, error) {
	q := `SELECT id, employee_id, source, type, title, description, tags, impact, at
	      FROM efforts WHERE employee_id = ?`
	args := []any{employeeID}
	if source != "" {
		q += ` AND source = ?`
		args = append(args, string(source))
	}
	if !from.IsZero() {
		q += ` AND at >= ?`
		args = append(args, stamp(from))
	}
	if !to.IsZero() {
		q += ` AND at < ?`
		args = append(args, stamp(to))
	}
	q += ` ORDER BY at, id`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, wrapStoreErr("find efforts", err)
	}
	defer rows.Close()

	var out []model.Effort
	for rows.Next() {
		var (
			e        model.Effort
			src, typ string
			tags     string
			at       sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.EmployeeID, &src, &typ, &e.Title, &e.Description, &tags, &e.Impact, &at); err != nil {
			return nil, wrapStoreErr("scan effort", err)
		}
		e.Source, e.Type, e.At = model.Source(src), model.EffortType(typ), unstamp(at)
		if err := json.Unmarshal([]byte(tags), &e.Tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) InsertRecognition(ctx context.Context, r model.Recognition) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, wrapStoreErr("begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := employeeExists(ctx, tx, r.EmployeeID); err != nil {
		return false, err
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO recognitions (id, employee_id, effort_id, message, glyph, category, impact, at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(effort_id) DO NOTHING`,
		r.ID, r.EmployeeID, r.EffortID, r.Message, r.Glyph, string(r.Category), r.Impact, stamp(r.At))
	if err != nil {
		return false, wrapStoreErr("insert recognition", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		// Effort already recognized; idempotent no-op.
		return false, nil
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE employees
		SET recognition_count = recognition_count + 1,
		    total_effort_score = total_effort_score + ?
		WHERE id = ?`, r.Impact, r.EmployeeID); err != nil {
		return false, wrapStoreErr("bump recognition counters", err)
	}
	if err := tx.Commit(); err != nil {
		return false, wrapStoreErr("commit", err)
	}
	return true, nil
}

func (s *SQLiteStore) FindRecognitions(ctx context.Context, employeeID string, from, to time.Time) ([]model.Recognition, error) {
	q := `SELECT id, employee_id, effort_id, message, glyph, category, impact, at
	      FROM recognitions WHERE employee_id = ?`
	args := []any{employeeID}
	if !from.IsZero() {
		q += ` AND at >= ?`
		args = append(args, stamp(from))
	}
	if !to.IsZero() {
		q += ` AND at < ?`
		args = append(args, stamp(to))
	}
	q += ` ORDER BY at, id`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, wrapStoreErr("find recognitions", err)
	}
	defer rows.Close()

	var out []model.Recognition
	for rows.Next() {
		var (
			r   model.Recognition
			cat string
			at  sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.EmployeeID, &r.EffortID, &r.Message, &r.Glyph, &cat, &r.Impact, &at); err != nil {
			return nil, wrapStoreErr("scan recognition", err)
		}
		r.Category, r.At = model.EffortType(cat), unstamp(at)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) FindAward(ctx context.Context, employeeID, badgeID string) (model.BadgeAward, error) {
	var (
		a  model.BadgeAward
		at sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT employee_id, badge_id, earned_at, progress
		FROM badge_awards WHERE employee_id = ? AND badge_id = ?`, employeeID, badgeID).
		Scan(&a.EmployeeID, &a.BadgeID, &at, &a.Progress)
	if errors.Is(err, sql.ErrNoRows) {
		return model.BadgeAward{}, fmt.Errorf("award %s/%s: %w", employeeID, badgeID, ErrNotFound)
	}
	if err != nil {
		return model.BadgeAward{}, wrapStoreErr("find award", err)
	}
	a.EarnedAt = unstamp(at)
	return a, nil
}

func (s *SQLiteStore) FindAwards(ctx context.Context, employeeID string, from, to time.Time) ([]model.BadgeAward, error) {
	q := `SELECT employee_id, badge_id, earned_at, progress
	      FROM badge_awards WHERE employee_id = ?`
	args := []any{employeeID}
	if !from.IsZero() {
		q += ` AND earned_at >= ?`
		args = append(args, stamp(from))
	}
	if !to.IsZero() {
		q += ` AND earned_at < ?`
		args = append(args, stamp(to))
	}
	q += ` ORDER BY earned_at, badge_id`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, wrapStoreErr("find awards", err)
	}
	defer rows.Close()

	var out []model.BadgeAward
	for rows.Next() {
		var (
			a  model.BadgeAward
			at sql.NullString
		)
		if err := rows.Scan(&a.EmployeeID, &a.BadgeID, &at, &a.Progress); err != nil {
			return nil, wrapStoreErr("scan award", err)
		}
		a.EarnedAt = unstamp(at)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) InsertAwardIfAbsent(ctx context.Context, a model.BadgeAward) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, wrapStoreErr("begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := employeeExists(ctx, tx, a.EmployeeID); err != nil {
		return false, err
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO badge_awards (employee_id, badge_id, earned_at, progress)
		VALUES (?, ?, ?, ?)
		ON CONFLICT DO NOTHING`,
		a.EmployeeID, a.BadgeID, stamp(a.EarnedAt), a.Progress)
	if err != nil {
		return false, wrapStoreErr("insert award", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return false, nil
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE employees SET badge_count = badge_count + 1 WHERE id = ?`, a.EmployeeID); err != nil {
		return false, wrapStoreErr("bump badge counter", err)
	}
	if err := tx.Commit(); err != nil {
		return false, wrapStoreErr("commit", err)
	}
	return true, nil
}

func (s *SQLiteStore) UpsertDigest(ctx context.Context, d model.WeeklyDigest) error {
	top, err := json.Marshal(d.TopRecognitions)
	if err != nil {
		return fmt.Errorf("encode top recognitions: %w", err)
	}
	hl, err := json.Marshal(d.Highlights)
	if err != nil {
		return fmt.Errorf("encode highlights: %w", err)
	}
	badges, err := json.Marshal(d.BadgesEarned)
	if err != nil {
		return fmt.Errorf("encode badges: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapStoreErr("begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := employeeExists(ctx, tx, d.EmployeeID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO weekly_digests (employee_id, week_start, week_end, total_efforts,
			collaboration_score, impact_score, growth_percent,
			top_recognitions, highlights, badges_earned, generated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, week_start) DO UPDATE SET
			week_end            = excluded.week_end,
			total_efforts       = excluded.total_efforts,
			collaboration_score = excluded.collaboration_score,
			impact_score        = excluded.impact_score,
			growth_percent      = excluded.growth_percent,
			top_recognitions    = excluded.top_recognitions,
			highlights          = excluded.highlights,
			badges_earned       = excluded.badges_earned,
			generated_at        = excluded.generated_at`,
		d.EmployeeID, stamp(d.WeekStart), stamp(d.WeekEnd), d.TotalEfforts,
		d.CollaborationScore, d.ImpactScore, d.GrowthPercent,
		string(top), string(hl), string(badges), stamp(d.GeneratedAt)); err != nil {
		return wrapStoreErr("upsert digest", err)
	}
	if err := tx.Commit(); err != nil {
		return wrapStoreErr("commit", err)
	}
	return nil
}

func (s *SQLiteStore) FindDigest(ctx context.Context, employeeID string, weekStart time.Time) (model.WeeklyDigest, error) {
	var (
		d               model.WeeklyDigest
		ws, we, gen     sql.NullString
		top, hl, badges string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT employee_id, week_start, week_end, total_efforts,
		       collaboration_score, impact_score, growth_percent,
		       top_recognitions, highlights, badges_earned, generated_at
		FROM weekly_digests WHERE employee_id = ? AND week_start = ?`,
		employeeID, stamp(weekStart)).
		Scan(&d.EmployeeID, &ws, &we, &d.TotalEfforts,
			&d.CollaborationScore, &d.ImpactScore, &d.GrowthPercent,
			&top, &hl, &badges, &gen)
	if errors.Is(err, sql.ErrNoRows) {
		return model.WeeklyDigest{}, fmt.Errorf("digest %s/%s: %w", employeeID, weekStart.Format(time.DateOnly), ErrNotFound)
	}
	if err != nil {
		return model.WeeklyDigest{}, wrapStoreErr("find digest", err)
	}
	d.WeekStart, d.WeekEnd, d.GeneratedAt = unstamp(ws), unstamp(we), unstamp(gen)
	if err := json.Unmarshal([]byte(top), &d.TopRecognitions); err != nil {
		return model.WeeklyDigest{}, fmt.Errorf("decode top recognitions: %w", err)
	}
	if err := json.Unmarshal([]byte(hl), &d.Highlights); err != nil {
		return model.WeeklyDigest{}, fmt.Errorf("decode highlights: %w", err)
	}
	if err := json.Unmarshal([]byte(badges), &d.BadgesEarned); err != nil {
		return model.WeeklyDigest{}, fmt.Errorf("decode badges: %w", err)
	}
	return d, nil
}

func employeeExists(ctx context.Context, tx *sql.Tx, id string) error {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM employees WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("employee %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return wrapStoreErr("check employee", err)
	}
	return nil
}

// wrapStoreErr tags driver failures as transient so the orchestrator's
// retry policy can pick them up.
func wrapStoreErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
}

// stampLayout is fixed width so lexicographic order matches time order.
// RFC3339Nano would trim trailing fractional zeros, making whole-second
// stamps sort after fractional ones within the same second.
const stampLayout = "2006-01-02T15:04:05.000000000Z"

// stamp encodes instants as sortable UTC strings; zero times become NULL.
func stamp(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(stampLayout)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func unstamp(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
