package services

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hackslate/hackathon-system/models"
	"github.com/hackslate/hackathon-system/repositories"
)

type SearchService interface {
	Search(ctx context.Context, q models.SearchQuery) (*models.SearchResult, error)
	Suggest(ctx context.Context, input string) ([]models.Suggestion, error)
}

type searchService struct {
	userRepo    repositories.UserRepository
	projectRepo repositories.ProjectRepository
}

func NewSearchService(userRepo repositories.UserRepository, projectRepo repositories.ProjectRepository) SearchService {
	return &searchService{
		userRepo:    userRepo,
		projectRepo: projectRepo,
	}
}

// Search runs the user and project filter pipelines concurrently, then
// attaches organizer summaries to the projects with one batched lookup over
// the distinct organizer set.
func (s *searchService) Search(ctx context.Context, q models.SearchQuery) (*models.SearchResult, error) {
	var users []models.User
	var projects []models.Project

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = s.userRepo.Search(gCtx, q)
		return err
	})
	g.Go(func() error {
		var err error
		projects, err = s.projectRepo.Search(gCtx, q)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range users {
		users[i].PasswordHash = ""
	}

	organizerIDs := distinctOrganizerIDs(projects)
	summaries, err := s.userRepo.OrganizerSummaries(ctx, organizerIDs)
	if err != nil {
		return nil, err
	}
	for i := range projects {
		if summary, ok := summaries[projects[i].OrganizerID]; ok {
			projects[i].Organizer = &summary
		}
	}

	return &models.SearchResult{Users: users, Projects: projects}, nil
}

// Suggest is the typeahead variant: students only, minimal projection, and an
// empty input is a client error rather than a match-all.
func (s *searchService) Suggest(ctx context.Context, input string) ([]models.Suggestion, error) {
	if strings.TrimSpace(input) == "" {
		return nil, ErrSearchInputRequired
	}
	return s.userRepo.SuggestStudents(ctx, input)
}

func distinctOrganizerIDs(projects []models.Project) []int {
	seen := make(map[int]struct{}, len(projects))
	ids := make([]int, 0, len(projects))
	for i := range projects {
		id := projects[i].OrganizerID
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
