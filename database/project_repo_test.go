package database

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/myaicommunity/agenthub/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := &models.User{Email: email, PasswordHash: "x", Name: "Seed"}
	require.NoError(t, NewUserRepo(db).Add(user))
	return user
}

func TestFindPageOrderAndCount(t *testing.T) {
	db := newTestDB(t)
	repo := NewProjectRepo(db)
	user := seedUser(t, db, "seed@example.com")

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 15; i++ {
		project := &models.Project{
			Name:               "Author",
			ProjectName:        fmt.Sprintf("Project %02d", i),
			ProjectDescription: "desc",
			CreatedByID:        user.ID,
			PublishedAt:        base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Add(project))
	}

	first, total, err := repo.FindPage(context.Background(), ProjectFilter{
		Status: models.StatusPublished, Page: 1, Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(15), total)
	require.Len(t, first, 10)

	// Newest first.
	assert.Equal(t, "Project 14", first[0].ProjectName)
	for i := 1; i < len(first); i++ {
		assert.False(t, first[i].PublishedAt.After(first[i-1].PublishedAt))
	}

	// Owners come preloaded.
	require.NotNil(t, first[0].CreatedBy)
	assert.Equal(t, "seed@example.com", first[0].CreatedBy.Email)

	second, total, err := repo.FindPage(context.Background(), ProjectFilter{
		Status: models.StatusPublished, Page: 2, Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(15), total)
	assert.Len(t, second, 5)
}

func TestFindPageStatusFilter(t *testing.T) {
	db := newTestDB(t)
	repo := NewProjectRepo(db)
	user := seedUser(t, db, "seed@example.com")

	for _, status := range []string{models.StatusPublished, models.StatusDraft, models.StatusArchived} {
		require.NoError(t, repo.Add(&models.Project{
			Name: "A", ProjectName: "Bot " + status, ProjectDescription: "desc",
			Status: status, CreatedByID: user.ID,
		}))
	}

	drafts, total, err := repo.FindPage(context.Background(), ProjectFilter{
		Status: models.StatusDraft, Page: 1, Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, drafts, 1)
	assert.Equal(t, "Bot draft", drafts[0].ProjectName)
}

func TestFindPageCategoryFilter(t *testing.T) {
	db := newTestDB(t)
	repo := NewProjectRepo(db)
	user := seedUser(t, db, "seed@example.com")

	require.NoError(t, repo.Add(&models.Project{
		Name: "A", ProjectName: "Both", ProjectDescription: "desc",
		Categories:  datatypes.NewJSONSlice([]string{"Automation", "Research"}),
		CreatedByID: user.ID,
	}))
	require.NoError(t, repo.Add(&models.Project{
		Name: "B", ProjectName: "Research Only", ProjectDescription: "desc",
		Categories:  datatypes.NewJSONSlice([]string{"Research"}),
		CreatedByID: user.ID,
	}))

	matches, total, err := repo.FindPage(context.Background(), ProjectFilter{
		Status: models.StatusPublished, Category: "Automation", Page: 1, Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, matches, 1)
	assert.Equal(t, "Both", matches[0].ProjectName)
}

func TestProjectDefaultsOnCreate(t *testing.T) {
	db := newTestDB(t)
	repo := NewProjectRepo(db)
	user := seedUser(t, db, "seed@example.com")

	project := &models.Project{
		Name: "A", ProjectName: "Bot", ProjectDescription: "desc",
		CreatedByID: user.ID,
	}
	require.NoError(t, repo.Add(project))

	stored, err := repo.FindByID(project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, stored.Status)
	assert.False(t, stored.PublishedAt.IsZero())
	assert.Nil(t, stored.BackgroundImage)
}

func TestDeleteProjectRecord(t *testing.T) {
	db := newTestDB(t)
	repo := NewProjectRepo(db)
	user := seedUser(t, db, "seed@example.com")

	project := &models.Project{
		Name: "A", ProjectName: "Bot", ProjectDescription: "desc",
		CreatedByID: user.ID,
	}
	require.NoError(t, repo.Add(project))
	require.NoError(t, repo.Delete(project.ID))

	_, err := repo.FindByID(project.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestTouchLastLogin(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepo(db)
	user := seedUser(t, db, "seed@example.com")
	require.Nil(t, user.LastLogin)

	stamp := time.Now().Truncate(time.Second)
	require.NoError(t, users.TouchLastLogin(user.ID, stamp))

	stored, err := users.FindByID(user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLogin)
	assert.WithinDuration(t, stamp, *stored.LastLogin, time.Second)
}
