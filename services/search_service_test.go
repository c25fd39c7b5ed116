package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackslate/hackathon-system/models"
	"github.com/hackslate/hackathon-system/repositories"
)

type searchUserRepo struct {
	repositories.UserRepository

	users       []models.User
	suggestions []models.Suggestion
	summaries   map[int]models.OrganizerSummary
	summaryIDs  []int
	err         error
}

func (r *searchUserRepo) Search(_ context.Context, _ models.SearchQuery) ([]models.User, error) {
	return r.users, r.err
}

func (r *searchUserRepo) SuggestStudents(_ context.Context, _ string) ([]models.Suggestion, error) {
	return r.suggestions, nil
}

func (r *searchUserRepo) OrganizerSummaries(_ context.Context, ids []int) (map[int]models.OrganizerSummary, error) {
	r.summaryIDs = ids
	return r.summaries, nil
}

type searchProjectRepo struct {
	repositories.ProjectRepository

	projects []models.Project
	err      error
}

func (r *searchProjectRepo) Search(_ context.Context, _ models.SearchQuery) ([]models.Project, error) {
	return r.projects, r.err
}

func TestSearchCombinesCollections(t *testing.T) {
	userRepo := &searchUserRepo{
		users: []models.User{{ID: 1, Username: "ada", PasswordHash: "leaky"}},
		summaries: map[int]models.OrganizerSummary{
			10: {ID: 10, Username: "org", FullName: "Org Anizer"},
		},
	}
	projectRepo := &searchProjectRepo{
		projects: []models.Project{
			{ID: 1, PublicID: "hackslate-2026", OrganizerID: 10},
			{ID: 2, PublicID: "spring-jam", OrganizerID: 10},
		},
	}
	svc := NewSearchService(userRepo, projectRepo)

	result, err := svc.Search(context.Background(), models.SearchQuery{})
	require.NoError(t, err)

	require.Len(t, result.Users, 1)
	assert.Empty(t, result.Users[0].PasswordHash)

	require.Len(t, result.Projects, 2)
	for _, project := range result.Projects {
		require.NotNil(t, project.Organizer)
		assert.Equal(t, "org", project.Organizer.Username)
	}

	// One batched summary lookup over the distinct organizer set.
	assert.Equal(t, []int{10}, userRepo.summaryIDs)
}

func TestSearchPropagatesRepoError(t *testing.T) {
	boom := errors.New("query failed")
	svc := NewSearchService(
		&searchUserRepo{err: boom},
		&searchProjectRepo{},
	)

	_, err := svc.Search(context.Background(), models.SearchQuery{})
	assert.ErrorIs(t, err, boom)
}

func TestSuggestRequiresInput(t *testing.T) {
	svc := NewSearchService(&searchUserRepo{}, &searchProjectRepo{})

	_, err := svc.Suggest(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrSearchInputRequired)
}

func TestSuggestPassesThrough(t *testing.T) {
	svc := NewSearchService(&searchUserRepo{
		suggestions: []models.Suggestion{{Username: "ada", FullName: "Ada Lovelace"}},
	}, &searchProjectRepo{})

	suggestions, err := svc.Suggest(context.Background(), "ad")
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "ada", suggestions[0].Username)
}
