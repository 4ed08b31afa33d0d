package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/job-scraper/internal/types"
)

const jobColumns = `id, title, job_type, organization, apply_link, locations, work_format,
	technical_skills, soft_skills, sectors, source_domain, posting_date, latitude, longitude,
	closed, first_seen_at, last_updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*types.JobRecord, error) {
	var (
		rec     types.JobRecord
		jobType string
		formats []string
		skills  []byte
	)
	err := row.Scan(&rec.ID, &rec.Title, &jobType, &rec.Organization, &rec.ApplyLink,
		&rec.Locations, &formats, &skills, &rec.SoftSkills, &rec.Sectors, &rec.SourceDomain,
		&rec.PostingDate, &rec.Latitude, &rec.Longitude, &rec.Closed, &rec.FirstSeenAt,
		&rec.LastUpdatedAt)
	if err != nil {
		return nil, err
	}
	rec.JobType = types.JobType(jobType)
	rec.WorkFormat = workFormatsFrom(formats)
	if len(skills) > 0 {
		if err := json.Unmarshal(skills, &rec.TechnicalSkills); err != nil {
			return nil, fmt.Errorf("failed to decode technical skills: %w", err)
		}
	}
	return &rec, nil
}

// FindJobByApplyLink returns the record with the given apply link, or nil if none exists.
func (db *DB) FindJobByApplyLink(ctx context.Context, applyLink string) (*types.JobRecord, error) {
	rec, err := scanJob(db.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM job_records WHERE apply_link = $1`, applyLink))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job by apply link: %w", err)
	}
	return rec, nil
}

// GetJob returns a record by ID, or nil if none exists.
func (db *DB) GetJob(ctx context.Context, id uuid.UUID) (*types.JobRecord, error) {
	rec, err := scanJob(db.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM job_records WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return rec, nil
}

// InsertJob stores a new record and fills its ID and timestamps. It returns
// types.ErrDuplicateApplyLink if the apply link is already taken.
func (db *DB) InsertJob(ctx context.Context, rec *types.JobRecord) error {
	skills := rec.TechnicalSkills
	if skills == nil {
		skills = map[string][]string{}
	}
	skillsJSON, err := json.Marshal(skills)
	if err != nil {
		return fmt.Errorf("failed to encode technical skills: %w", err)
	}

	err = db.pool.QueryRow(ctx,
		`INSERT INTO job_records (title, job_type, organization, apply_link, locations, work_format,
		                          technical_skills, soft_skills, sectors, source_domain, posting_date,
		                          latitude, longitude, closed)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 ON CONFLICT (apply_link) DO NOTHING
		 RETURNING id, first_seen_at, last_updated_at`,
		rec.Title, string(rec.JobType), rec.Organization, rec.ApplyLink, nonNil(rec.Locations),
		workFormatStrings(rec.WorkFormat), skillsJSON, nonNil(rec.SoftSkills), nonNil(rec.Sectors),
		rec.SourceDomain, rec.PostingDate, rec.Latitude, rec.Longitude, rec.Closed,
	).Scan(&rec.ID, &rec.FirstSeenAt, &rec.LastUpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.ErrDuplicateApplyLink
	}
	if err != nil {
		return fmt.Errorf("failed to insert job: %w", err)
	}
	return nil
}

// UpdateJobClosed sets the closed flag and bumps last_updated_at.
func (db *DB) UpdateJobClosed(ctx context.Context, id uuid.UUID, closed bool) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE job_records SET closed = $1, last_updated_at = NOW() WHERE id = $2`,
		closed, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job %s not found", id)
	}
	return nil
}

// CloseJobsFirstSeenBefore closes every open record first seen before cutoff and returns how
// many were closed.
func (db *DB) CloseJobsFirstSeenBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := db.pool.Exec(ctx,
		`UPDATE job_records SET closed = TRUE, last_updated_at = NOW()
		 WHERE closed = FALSE AND first_seen_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to close stale jobs: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteClosedJobsUpdatedBefore removes closed records not touched since cutoff.
func (db *DB) DeleteClosedJobsUpdatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM job_records WHERE closed = TRUE AND last_updated_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete closed jobs: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListJobs returns one page of records, newest first, plus the total number of matches.
func (db *DB) ListJobs(ctx context.Context, filter JobFilter) ([]types.JobRecord, int, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	if filter.JobType != "" {
		conditions = append(conditions, fmt.Sprintf("job_type = $%d", argIndex))
		args = append(args, string(filter.JobType))
		argIndex++
	}
	if filter.Sector != "" {
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(sectors)", argIndex))
		args = append(args, filter.Sector)
		argIndex++
	}
	if filter.WorkFormat != "" {
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(work_format)", argIndex))
		args = append(args, string(filter.WorkFormat))
		argIndex++
	}
	if filter.Closed != nil {
		conditions = append(conditions, fmt.Sprintf("closed = $%d", argIndex))
		args = append(args, *filter.Closed)
		argIndex++
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf(`title ILIKE $%d ESCAPE '\'`, argIndex))
		args = append(args, likePattern(filter.Search))
		argIndex++
	}
	if filter.State != "" {
		conditions = append(conditions, fmt.Sprintf(
			`EXISTS (SELECT 1 FROM unnest(locations) AS loc WHERE loc ILIKE $%d ESCAPE '\')`, argIndex))
		args = append(args, likePattern(filter.State))
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := db.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM job_records "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count jobs: %w", err)
	}

	limit, offset := filter.page()
	args = append(args, limit, offset)
	query := fmt.Sprintf(
		`SELECT %s FROM job_records %s
		 ORDER BY first_seen_at DESC, id
		 LIMIT $%d OFFSET $%d`,
		jobColumns, whereClause, argIndex, argIndex+1,
	)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []types.JobRecord
	for rows.Next() {
		rec, err := scanJob(rows)
		if err != nil {
			return nil, 0, err
		}
		jobs = append(jobs, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, total, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
