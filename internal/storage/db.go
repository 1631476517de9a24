package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog"

	"resume-parser/internal/types"
)

var ErrNotFound = errors.New("parsed resume not found")

const schema = `
CREATE TABLE IF NOT EXISTS parsed_resumes (
    id          TEXT PRIMARY KEY,
    filename    TEXT NOT NULL,
    digest      TEXT NOT NULL UNIQUE,
    file_type   TEXT NOT NULL,
    parsed_text TEXT NOT NULL DEFAULT '',
    name        TEXT,
    email       TEXT,
    phone       TEXT,
    skills      TEXT[] NOT NULL DEFAULT '{}',
    reparsed_at TIMESTAMPTZ,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
ALTER TABLE parsed_resumes ADD COLUMN IF NOT EXISTS reparsed_at TIMESTAMPTZ`

const selectColumns = `SELECT id, filename, digest, file_type, parsed_text, name, email, phone, skills, created_at, updated_at FROM parsed_resumes`

type DB struct {
	connection *sql.DB
	log        zerolog.Logger
}

func NewDB(dataSourceName string, log zerolog.Logger) (*DB, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, err
	}

	// Connection pool tuning
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{connection: db, log: log}, nil
}

// NewDBFromConn wraps an existing connection pool.
func NewDBFromConn(conn *sql.DB, log zerolog.Logger) *DB {
	return &DB{connection: conn, log: log}
}

func (db *DB) Close() {
	if err := db.connection.Close(); err != nil {
		db.log.Error().Err(err).Msg("closing the database connection")
	}
}

func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.connection.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create parsed_resumes: %w", err)
	}
	return nil
}

// SaveParsedResume inserts r, or refreshes the row with the same digest.
// r.ID is updated to the stored row's id.
func (db *DB) SaveParsedResume(ctx context.Context, r *ParsedResume) error {
	query := `INSERT INTO parsed_resumes (id, filename, digest, file_type, parsed_text, name, email, phone, skills)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
              ON CONFLICT (digest) DO UPDATE
                SET filename = EXCLUDED.filename,
                    parsed_text = EXCLUDED.parsed_text,
                    name = EXCLUDED.name,
                    email = EXCLUDED.email,
                    phone = EXCLUDED.phone,
                    skills = EXCLUDED.skills,
                    reparsed_at = NULL,
                    updated_at = NOW()
              RETURNING id`

	skills := r.Skills
	if skills == nil {
		skills = []string{}
	}
	return db.connection.QueryRowContext(ctx, query,
		r.ID,
		r.Filename,
		r.Digest,
		r.FileType,
		r.ParsedText,
		r.Name,
		r.Email,
		r.Phone,
		pq.Array(skills),
	).Scan(&r.ID)
}

func (db *DB) GetParsedResume(ctx context.Context, id string) (*ParsedResume, error) {
	row := db.connection.QueryRowContext(ctx, selectColumns+` WHERE id = $1`, id)
	r, err := scanResume(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return r, err
}

// SearchParsedResumes matches name and email with ILIKE and any of the
// given skills case-insensitively.
func (db *DB) SearchParsedResumes(ctx context.Context, criteria *Criteria) ([]*ParsedResume, error) {
	base := selectColumns
	var where []string
	var args []interface{}
	i := 1

	if criteria == nil {
		criteria = &Criteria{}
	}

	if criteria.Name != "" {
		where = append(where, fmt.Sprintf("name ILIKE $%d", i))
		args = append(args, "%"+criteria.Name+"%")
		i++
	}
	if criteria.Email != "" {
		where = append(where, fmt.Sprintf("email ILIKE $%d", i))
		args = append(args, "%"+criteria.Email+"%")
		i++
	}
	if len(criteria.Skills) > 0 {
		var skillConds []string
		for _, s := range criteria.Skills {
			skillConds = append(skillConds, fmt.Sprintf("EXISTS (SELECT 1 FROM unnest(skills) s WHERE s ILIKE $%d)", i))
			args = append(args, s)
			i++
		}
		where = append(where, "("+strings.Join(skillConds, " OR ")+")")
	}

	if len(where) > 0 {
		base += " WHERE " + strings.Join(where, " AND ")
	}
	base += " ORDER BY created_at DESC"

	limit := criteria.Limit
	if limit <= 0 {
		limit = 100
	}
	base += fmt.Sprintf(" LIMIT $%d", i)
	args = append(args, limit)

	rows, err := db.connection.QueryContext(ctx, base, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanResumes(rows)
}

// ListUnnamed returns stored results for which no name was found, oldest
// first. Rows already marked by MarkReparsed are left out unless
// includeTried is set.
func (db *DB) ListUnnamed(ctx context.Context, limit int, includeTried bool) ([]*ParsedResume, error) {
	rows, err := db.connection.QueryContext(ctx,
		selectColumns+` WHERE (name IS NULL OR name = '') AND ($2 OR reparsed_at IS NULL)
		ORDER BY created_at, id LIMIT $1`, limit, includeTried)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanResumes(rows)
}

// MarkReparsed records that re-extraction ran on a row without finding a
// name. Saving the row again clears the mark.
func (db *DB) MarkReparsed(ctx context.Context, id string) error {
	res, err := db.connection.ExecContext(ctx,
		`UPDATE parsed_resumes SET reparsed_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateFields overwrites the extracted fields of a stored result.
func (db *DB) UpdateFields(ctx context.Context, id string, f *types.Fields) error {
	skills := f.Skills
	if skills == nil {
		skills = []string{}
	}
	res, err := db.connection.ExecContext(ctx,
		`UPDATE parsed_resumes SET name = $1, email = $2, phone = $3, skills = $4, updated_at = NOW() WHERE id = $5`,
		f.Name, f.Email, f.Phone, pq.Array(skills), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanResume(s scanner) (*ParsedResume, error) {
	r := &ParsedResume{}
	var skills pq.StringArray
	err := s.Scan(&r.ID, &r.Filename, &r.Digest, &r.FileType, &r.ParsedText,
		&r.Name, &r.Email, &r.Phone, &skills, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	r.Skills = []string(skills)
	if r.Skills == nil {
		r.Skills = []string{}
	}
	return r, nil
}

func scanResumes(rows *sql.Rows) ([]*ParsedResume, error) {
	var res []*ParsedResume
	for rows.Next() {
		r, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	return res, rows.Err()
}
