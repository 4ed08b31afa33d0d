package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/job-scraper/internal/types"
)

// ListActiveSubscribers returns every active subscriber.
func (db *DB) ListActiveSubscribers(ctx context.Context) ([]types.Subscriber, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, email, active, job_types, sectors, zip_code, max_distance_miles, subscribed_at
		 FROM subscribers
		 WHERE active = TRUE
		 ORDER BY subscribed_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}
	defer rows.Close()

	var subs []types.Subscriber
	for rows.Next() {
		var s types.Subscriber
		var jobTypes []string
		if err := rows.Scan(&s.ID, &s.Email, &s.Active, &jobTypes, &s.Sectors, &s.ZipCode,
			&s.MaxDistanceMiles, &s.SubscribedAt); err != nil {
			return nil, err
		}
		s.JobTypes = jobTypesFrom(jobTypes)
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

// UpsertSubscriber creates or replaces the subscriber with the same email and fills its ID.
func (db *DB) UpsertSubscriber(ctx context.Context, sub *types.Subscriber) error {
	if err := sub.Validate(); err != nil {
		return err
	}
	sub.Email = strings.ToLower(strings.TrimSpace(sub.Email))
	err := db.pool.QueryRow(ctx,
		`INSERT INTO subscribers (email, active, job_types, sectors, zip_code, max_distance_miles)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (email) DO UPDATE SET
		     active = EXCLUDED.active,
		     job_types = EXCLUDED.job_types,
		     sectors = EXCLUDED.sectors,
		     zip_code = EXCLUDED.zip_code,
		     max_distance_miles = EXCLUDED.max_distance_miles
		 RETURNING id, subscribed_at`,
		sub.Email, sub.Active, jobTypeStrings(sub.JobTypes), nonNil(sub.Sectors), sub.ZipCode,
		sub.MaxDistanceMiles,
	).Scan(&sub.ID, &sub.SubscribedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert subscriber: %w", err)
	}
	return nil
}
