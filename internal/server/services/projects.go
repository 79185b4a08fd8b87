package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/portfolio/internal/dbx"
	"github.com/dmitrijs2005/portfolio/internal/logging"
	"github.com/dmitrijs2005/portfolio/internal/server/models"
	"github.com/dmitrijs2005/portfolio/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/portfolio/internal/server/validation"
)

type ProjectService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewProjectService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *ProjectService {
	return &ProjectService{db: db, repomanager: m, logger: logger.With("module", "projects")}
}

func (s *ProjectService) List(ctx context.Context, filter models.ProjectFilter) ([]*models.Project, error) {
	return s.repomanager.Projects(s.db).List(ctx, filter)
}

func (s *ProjectService) Get(ctx context.Context, id string) (*models.Project, error) {
	return s.repomanager.Projects(s.db).Get(ctx, id)
}

func (s *ProjectService) Create(ctx context.Context, in *validation.ProjectInput) (*models.Project, error) {
	p, err := in.Project()
	if err != nil {
		return nil, err
	}

	p, err = s.repomanager.Projects(s.db).Create(ctx, p)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "project created", "id", p.ID, "status", p.Status)
	return p, nil
}

// Update replaces every editable field of project id with the input's values.
func (s *ProjectService) Update(ctx context.Context, id string, in *validation.ProjectInput) (*models.Project, error) {
	p, err := in.Project()
	if err != nil {
		return nil, err
	}
	p.ID = id

	p, err = s.repomanager.Projects(s.db).Update(ctx, p)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "project updated", "id", p.ID, "status", p.Status)
	return p, nil
}

func (s *ProjectService) Delete(ctx context.Context, id string) error {
	if err := s.repomanager.Projects(s.db).Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info(ctx, "project deleted", "id", id)
	return nil
}

func demoProjects() []*models.Project {
	date := func(y int, m time.Month, d int) *models.Date {
		v := models.NewDate(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
		return &v
	}
	str := func(s string) *string { return &s }

	return []*models.Project{
		{
			Title:            "Restaurant management system",
			ShortDescription: "End-to-end application for restaurants",
			FullDescription:  "Handles orders, stock and finances in real time.",
			ProblemSolved:    str("Cut order errors by 80% and saved 3 hours a day"),
			Technologies:     []string{"React", "Node.js", "PostgreSQL", "Express"},
			Images:           []string{},
			CompletionDate:   date(2024, time.January, 15),
			Status:           models.StatusPublished,
		},
		{
			Title:            "Modern e-commerce site",
			ShortDescription: "Responsive online shop",
			FullDescription:  "E-commerce platform with integrated mobile money payments and full back office.",
			ProblemSolved:    str("Sales up 150% within 3 months"),
			Technologies:     []string{"Next.js", "Stripe", "Tailwind CSS", "PostgreSQL"},
			Images:           []string{},
			CompletionDate:   date(2024, time.February, 20),
			Status:           models.StatusPublished,
		},
	}
}

// SeedDemo inserts the demo projects when no project exists yet and reports
// how many were inserted.
func (s *ProjectService) SeedDemo(ctx context.Context) (int, error) {
	inserted := 0
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Projects(tx)
		existing, err := repo.List(ctx, models.ListAll)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return nil
		}
		for _, p := range demoProjects() {
			if _, err := repo.Create(ctx, p); err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("error seeding projects: %w", err)
	}
	if inserted > 0 {
		s.logger.Info(ctx, "demo projects seeded", "count", inserted)
	}
	return inserted, nil
}
