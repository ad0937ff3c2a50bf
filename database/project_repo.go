package database

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/myaicommunity/agenthub/models"
)

type ProjectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) *ProjectRepo {
	return &ProjectRepo{db}
}

// ProjectFilter narrows a page listing. Status is always applied; Category
// matches membership in the categories array when non-empty.
type ProjectFilter struct {
	Status   string
	Category string
	Page     int
	Limit    int
}

// FindPage returns one page of projects ordered by publish time descending,
// owners preloaded, along with the total count matching the filter. The
// page query and the count query run concurrently.
func (r *ProjectRepo) FindPage(ctx context.Context, filter ProjectFilter) ([]models.Project, int64, error) {
	filtered := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.Project{}).Where("status = ?", filter.Status)
		if filter.Category != "" {
			q = q.Where(datatypes.JSONArrayQuery("categories").Contains(filter.Category))
		}
		return q
	}

	var (
		projects []models.Project
		total    int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return filtered().WithContext(gctx).
			Preload("CreatedBy").
			Order("published_at DESC").
			Limit(filter.Limit).
			Offset((filter.Page - 1) * filter.Limit).
			Find(&projects).Error
	})
	g.Go(func() error {
		return filtered().WithContext(gctx).Count(&total).Error
	})

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

// FindByID returns a project with its owner preloaded.
func (r *ProjectRepo) FindByID(id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := r.db.Preload("CreatedBy").First(&project, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// Add inserts a new project into the database
func (r *ProjectRepo) Add(project *models.Project) error {
	return r.db.Create(project).Error
}

// Update updates an existing project in the database
func (r *ProjectRepo) Update(project *models.Project) error {
	return r.db.Save(project).Error
}

// Delete removes a project from the database by id
func (r *ProjectRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.Project{}, "id = ?", id).Error
}
