package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"contest_tracker/internal/common"
	"contest_tracker/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type ContestRepository interface {
	Create(ctx context.Context, contest *model.Contest) error
	FindByKey(ctx context.Context, identityKey string) (*model.Contest, error)
	FindByID(ctx context.Context, id string) (*model.Contest, error)
	List(ctx context.Context) ([]model.Contest, error)
	ListWithoutSolution(ctx context.Context, platform model.Platform) ([]model.Contest, error)
	UpdateDuration(ctx context.Context, identityKey, duration string, updatedAt time.Time) error
	SetSolutionLink(ctx context.Context, id, link string) error
}

type pgContestRepository struct {
	db *sql.DB
}

func NewPgContestRepository(db *sql.DB) ContestRepository {
	return &pgContestRepository{db: db}
}

const contestColumns = `id, platform, title, slug, start_time, duration, url, solution_link, identity_key, added_at, last_updated`

func (r *pgContestRepository) Create(ctx context.Context, c *model.Contest) error {
	query := `INSERT INTO contests (` + contestColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.Platform, c.Title, c.Slug, c.StartTime, c.Duration, c.URL,
		c.SolutionLink, c.IdentityKey, c.AddedAt, c.LastUpdated,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint for identity_key
			return fmt.Errorf("contest with this identity key already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgContestRepository.Create: %w", err)
	}
	return nil
}

func (r *pgContestRepository) FindByKey(ctx context.Context, identityKey string) (*model.Contest, error) {
	query := `SELECT ` + contestColumns + ` FROM contests WHERE identity_key = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, identityKey), "FindByKey")
}

func (r *pgContestRepository) FindByID(ctx context.Context, id string) (*model.Contest, error) {
	query := `SELECT ` + contestColumns + ` FROM contests WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id), "FindByID")
}

func (r *pgContestRepository) scanOne(row *sql.Row, op string) (*model.Contest, error) {
	contest := &model.Contest{}
	err := row.Scan(
		&contest.ID, &contest.Platform, &contest.Title, &contest.Slug,
		&contest.StartTime, &contest.Duration, &contest.URL, &contest.SolutionLink,
		&contest.IdentityKey, &contest.AddedAt, &contest.LastUpdated,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgContestRepository.%s: %w", op, err)
	}
	return contest, nil
}

func (r *pgContestRepository) List(ctx context.Context) ([]model.Contest, error) {
	query := `SELECT ` + contestColumns + ` FROM contests ORDER BY added_at, id`
	return r.queryMany(ctx, "List", query)
}

func (r *pgContestRepository) ListWithoutSolution(ctx context.Context, platform model.Platform) ([]model.Contest, error) {
	query := `SELECT ` + contestColumns + ` FROM contests
	          WHERE platform = $1 AND solution_link IS NULL
	          ORDER BY added_at, id`
	return r.queryMany(ctx, "ListWithoutSolution", query, platform)
}

func (r *pgContestRepository) queryMany(ctx context.Context, op, query string, args ...interface{}) ([]model.Contest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgContestRepository.%s: %w", op, err)
	}
	defer rows.Close()

	var contests []model.Contest
	for rows.Next() {
		var c model.Contest
		if err := rows.Scan(
			&c.ID, &c.Platform, &c.Title, &c.Slug,
			&c.StartTime, &c.Duration, &c.URL, &c.SolutionLink,
			&c.IdentityKey, &c.AddedAt, &c.LastUpdated,
		); err != nil {
			return nil, fmt.Errorf("pgContestRepository.%s: %w", op, err)
		}
		contests = append(contests, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgContestRepository.%s: %w", op, err)
	}
	return contests, nil
}

// UpdateDuration refreshes the only mutable ingestion fields of an existing
// record. Title, start time, url and platform stay as first observed.
func (r *pgContestRepository) UpdateDuration(ctx context.Context, identityKey, duration string, updatedAt time.Time) error {
	query := `UPDATE contests SET duration = $1, last_updated = $2 WHERE identity_key = $3`
	res, err := r.db.ExecContext(ctx, query, duration, updatedAt, identityKey)
	if err != nil {
		return fmt.Errorf("pgContestRepository.UpdateDuration: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// SetSolutionLink writes the solution link exactly once. The guard clause
// keeps both the matcher and the manual admin path from overwriting a link
// that is already set.
func (r *pgContestRepository) SetSolutionLink(ctx context.Context, id, link string) error {
	query := `UPDATE contests SET solution_link = $1, last_updated = CURRENT_TIMESTAMP
	          WHERE id = $2 AND solution_link IS NULL`
	res, err := r.db.ExecContext(ctx, query, link, id)
	if err != nil {
		return fmt.Errorf("pgContestRepository.SetSolutionLink: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgContestRepository.SetSolutionLink: %w", err)
	}
	if n == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return err // ErrNotFound or a query failure
		}
		return fmt.Errorf("solution link already set: %w", common.ErrConflict)
	}
	return nil
}
