package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"isitpayday/internal/domain/payday"
)

var migrations = map[string]string{
	DriverPostgres: `CREATE TABLE IF NOT EXISTS payday_profiles (
		id           BIGSERIAL PRIMARY KEY,
		name         TEXT NOT NULL UNIQUE,
		country      TEXT NOT NULL,
		frequency    TEXT NOT NULL,
		monthly_rule TEXT NOT NULL DEFAULT '',
		specific_day INTEGER NOT NULL DEFAULT 0,
		anchor_date  TEXT,
		weekday      INTEGER,
		bank_offset  INTEGER NOT NULL DEFAULT 0,
		created_at   TIMESTAMPTZ NOT NULL
	)`,
	DriverSQLite: `CREATE TABLE IF NOT EXISTS payday_profiles (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		name         TEXT NOT NULL UNIQUE,
		country      TEXT NOT NULL,
		frequency    TEXT NOT NULL,
		monthly_rule TEXT NOT NULL DEFAULT '',
		specific_day INTEGER NOT NULL DEFAULT 0,
		anchor_date  TEXT,
		weekday      INTEGER,
		bank_offset  INTEGER NOT NULL DEFAULT 0,
		created_at   TIMESTAMP NOT NULL
	)`,
}

const profileColumns = `id, name, country, frequency, monthly_rule, specific_day, anchor_date, weekday, bank_offset, created_at`

// SQLProfileRepository stores payday profiles in PostgreSQL or SQLite.
type SQLProfileRepository struct {
	db     *sql.DB
	driver string
}

// NewSQLProfileRepository creates the payday_profiles table if needed.
func NewSQLProfileRepository(ctx context.Context, db *sql.DB, driver string) (*SQLProfileRepository, error) {
	ddl, ok := migrations[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("error migrating payday_profiles: %w", err)
	}
	return &SQLProfileRepository{db: db, driver: driver}, nil
}

func (r *SQLProfileRepository) List(ctx context.Context) ([]*payday.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM payday_profiles ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing payday profiles: %w", err)
	}
	defer rows.Close()

	profiles := make([]*payday.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning payday profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payday profiles: %w", err)
	}
	return profiles, nil
}

func (r *SQLProfileRepository) Get(ctx context.Context, id int64) (*payday.Profile, error) {
	query := r.rebind(`SELECT ` + profileColumns + ` FROM payday_profiles WHERE id = ?`)

	p, err := scanProfile(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, payday.ErrProfileNotFound
		}
		return nil, fmt.Errorf("error getting payday profile by ID: %w", err)
	}
	return p, nil
}

func (r *SQLProfileRepository) Create(ctx context.Context, p *payday.Profile) error {
	query := r.rebind(`INSERT INTO payday_profiles
		(name, country, frequency, monthly_rule, specific_day, anchor_date, weekday, bank_offset, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	var anchor sql.NullString
	if p.Config.AnchorDate != nil {
		anchor = sql.NullString{String: p.Config.AnchorDate.String(), Valid: true}
	}
	var weekday sql.NullInt64
	if p.Config.Weekday != nil {
		weekday = sql.NullInt64{Int64: int64(payday.WeekdayIndex(*p.Config.Weekday)), Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query,
		p.Name,
		strings.ToUpper(p.Config.Country),
		string(p.Config.Frequency),
		string(p.Config.MonthlyRule),
		p.Config.SpecificDay,
		anchor,
		weekday,
		p.Config.BankOffset,
		p.CreatedAt,
	).Scan(&p.ID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique constraint") {
			return payday.ErrDuplicateProfileName
		}
		return fmt.Errorf("error creating payday profile: %w", err)
	}
	return nil
}

func (r *SQLProfileRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.rebind(`DELETE FROM payday_profiles WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("error deleting payday profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error deleting payday profile: %w", err)
	}
	if n == 0 {
		return payday.ErrProfileNotFound
	}
	return nil
}

// rebind turns ? placeholders into $n for PostgreSQL.
func (r *SQLProfileRepository) rebind(query string) string {
	if r.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*payday.Profile, error) {
	var (
		p         payday.Profile
		frequency string
		rule      string
		anchor    sql.NullString
		weekday   sql.NullInt64
	)
	err := row.Scan(&p.ID, &p.Name, &p.Config.Country, &frequency, &rule,
		&p.Config.SpecificDay, &anchor, &weekday, &p.Config.BankOffset, &p.CreatedAt)
	if err != nil {
		return nil, err
	}

	p.Config.Frequency = payday.Frequency(frequency)
	p.Config.MonthlyRule = payday.MonthlyRule(rule)
	if anchor.Valid {
		d, err := payday.ParseDate(anchor.String)
		if err != nil {
			return nil, fmt.Errorf("profile %d has malformed anchor_date %q: %w", p.ID, anchor.String, err)
		}
		p.Config.AnchorDate = &d
	}
	if weekday.Valid {
		wd, err := payday.WeekdayFromIndex(int(weekday.Int64))
		if err != nil {
			return nil, fmt.Errorf("profile %d: %w", p.ID, err)
		}
		p.Config.Weekday = &wd
	}
	return &p, nil
}

// StaticProfileRepository serves a fixed set of profiles, used when no database is
// configured.
type StaticProfileRepository struct {
	profiles []*payday.Profile
}

func NewStaticProfileRepository(profiles ...*payday.Profile) *StaticProfileRepository {
	return &StaticProfileRepository{profiles: profiles}
}

func (r *StaticProfileRepository) List(context.Context) ([]*payday.Profile, error) {
	out := make([]*payday.Profile, len(r.profiles))
	copy(out, r.profiles)
	return out, nil
}

func (r *StaticProfileRepository) Get(_ context.Context, id int64) (*payday.Profile, error) {
	for _, p := range r.profiles {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, payday.ErrProfileNotFound
}

func (r *StaticProfileRepository) Create(context.Context, *payday.Profile) error {
	return payday.ErrProfilesReadOnly
}

func (r *StaticProfileRepository) Delete(context.Context, int64) error {
	return payday.ErrProfilesReadOnly
}
