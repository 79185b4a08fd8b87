package projects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/dmitrijs2005/portfolio/internal/common"
	"github.com/dmitrijs2005/portfolio/internal/dbx"
	"github.com/dmitrijs2005/portfolio/internal/server/models"
)

const projectColumns = `id, title, short_description, full_description, problem_solved,
		 technologies, site_url, images, completion_date, status, created_at, updated_at`

type PostgresRepository struct {
	db    dbx.DBTX
	types *pgtype.Map
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db, types: pgtype.NewMap()}
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Project) (*models.Project, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO projects (id, title, short_description, full_description, problem_solved,
		 technologies, site_url, images, completion_date, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		p.ID, p.Title, p.ShortDescription, p.FullDescription, nullableString(p.ProblemSolved),
		nonNil(p.Technologies), nullableString(p.SiteURL), nonNil(p.Images), nullableDate(p.CompletionDate), p.Status,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Project, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}

	query := `SELECT ` + projectColumns + `
		 FROM projects
		 WHERE id = $1
		 `

	p, err := r.scan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) List(ctx context.Context, filter models.ProjectFilter) ([]*models.Project, error) {
	query := `SELECT ` + projectColumns + `
		 FROM projects
		 `
	var args []any
	if filter == models.ListPublished {
		query += `WHERE status = $1
		 `
		args = append(args, models.StatusPublished)
	}
	query += `ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Project, 0)
	for rows.Next() {
		p, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, p *models.Project) (*models.Project, error) {
	if _, err := uuid.Parse(p.ID); err != nil {
		return nil, common.ErrorNotFound
	}

	query :=
		`UPDATE projects SET title = $2, short_description = $3, full_description = $4,
		 problem_solved = $5, technologies = $6, site_url = $7, images = $8,
		 completion_date = $9, status = $10, updated_at = now()
		 WHERE id = $1
		 RETURNING created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		p.ID, p.Title, p.ShortDescription, p.FullDescription, nullableString(p.ProblemSolved),
		nonNil(p.Technologies), nullableString(p.SiteURL), nonNil(p.Images), nullableDate(p.CompletionDate), p.Status,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.ErrorNotFound
	}

	query :=
		`DELETE FROM projects
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PostgresRepository) scan(row rowScanner) (*models.Project, error) {
	p := &models.Project{}
	var (
		problem, site sql.NullString
		completion    sql.NullTime
	)

	err := row.Scan(&p.ID, &p.Title, &p.ShortDescription, &p.FullDescription, &problem,
		r.types.SQLScanner(&p.Technologies), &site, r.types.SQLScanner(&p.Images),
		&completion, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if problem.Valid {
		p.ProblemSolved = &problem.String
	}
	if site.Valid {
		p.SiteURL = &site.String
	}
	if completion.Valid {
		d := models.NewDate(completion.Time)
		p.CompletionDate = &d
	}
	p.Technologies = nonNil(p.Technologies)
	p.Images = nonNil(p.Images)

	return p, nil
}

func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullableDate(d *models.Date) sql.NullTime {
	if d == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: d.Time, Valid: true}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
