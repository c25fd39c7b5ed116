package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hackslate/hackathon-system/models"
	"github.com/hackslate/hackathon-system/repositories"
	"github.com/hackslate/hackathon-system/storage"
)

// EventBroadcaster publishes project events to connected clients.
// Implemented by the websocket hub.
type EventBroadcaster interface {
	BroadcastToRoom(room string, eventType string, payload interface{})
}

type JudgeInput struct {
	Name   string `json:"name" validate:"required"`
	UserID *int   `json:"userId"`
}

type CreateProjectInput struct {
	Name              string       `json:"name" validate:"required,min=3,max=100"`
	Description       string       `json:"description" validate:"required"`
	RegistrationStart time.Time    `json:"registrationStart" validate:"required"`
	RegistrationEnd   time.Time    `json:"registrationEnd" validate:"required"`
	StartDate         time.Time    `json:"startDate" validate:"required"`
	MaxTeamSize       int          `json:"maxTeamSize" validate:"required,min=1"`
	Rules             *string      `json:"rules"`
	Theme             *string      `json:"theme"`
	Prizes            *string      `json:"prizes"`
	Tags              []string     `json:"tags"`
	Judges            []JudgeInput `json:"judges"`
}

type UpdateProjectInput struct {
	Name              *string               `json:"name"`
	Description       *string               `json:"description"`
	RegistrationStart *time.Time            `json:"registrationStart"`
	RegistrationEnd   *time.Time            `json:"registrationEnd"`
	StartDate         *time.Time            `json:"startDate"`
	MaxTeamSize       *int                  `json:"maxTeamSize"`
	Rules             *string               `json:"rules"`
	Theme             *string               `json:"theme"`
	Prizes            *string               `json:"prizes"`
	Tags              []string              `json:"tags"`
	Status            *models.ProjectStatus `json:"status"`
}

type RegisterTeamInput struct {
	Name        string   `json:"name" validate:"required,min=2,max=64"`
	Description *string  `json:"description"`
	Members     []string `json:"members"` // usernames, invited as pending
}

type ProjectService interface {
	Create(ctx context.Context, organizerID int, input CreateProjectInput) (*models.Project, error)
	GetByPublicID(ctx context.Context, publicID string) (*models.Project, error)
	List(ctx context.Context) ([]models.Project, error)
	Update(ctx context.Context, publicID string, actorID int, input UpdateProjectInput) (*models.Project, error)
	Delete(ctx context.Context, publicID string, actorID int) error
	UpdateLogo(ctx context.Context, publicID string, actorID int, reader io.Reader, contentType string) (*models.Project, error)
	RegisterTeam(ctx context.Context, publicID string, leaderID int, input RegisterTeamInput) (*models.Team, error)
	AcceptTeamMember(ctx context.Context, publicID string, teamID, actorID int, memberUsername string) (*models.Team, error)
	SyncStatusesByDates(ctx context.Context) error
}

type projectService struct {
	projectRepo repositories.ProjectRepository
	teamRepo    repositories.TeamRepository
	userRepo    repositories.UserRepository
	uploader    storage.FileUploader
	broadcaster EventBroadcaster
	logger      *slog.Logger
}

func NewProjectService(
	projectRepo repositories.ProjectRepository,
	teamRepo repositories.TeamRepository,
	userRepo repositories.UserRepository,
	uploader storage.FileUploader,
	broadcaster EventBroadcaster,
	logger *slog.Logger,
) ProjectService {
	return &projectService{
		projectRepo: projectRepo,
		teamRepo:    teamRepo,
		userRepo:    userRepo,
		uploader:    uploader,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// validateProjectDates enforces the creation-time ordering:
// now <= registrationStart < registrationEnd < start.
func validateProjectDates(regStart, regEnd, start, now time.Time) error {
	if regStart.Before(now) {
		return ErrProjectInvalidRegStart
	}
	if !regEnd.After(regStart) {
		return ErrProjectInvalidRegWindow
	}
	if !start.After(regEnd) {
		return ErrProjectInvalidStart
	}
	return nil
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// slugify derives the public id from the project name.
func slugify(name string) string {
	slug := strings.ToLower(name)
	slug = slugPattern.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

func (s *projectService) Create(ctx context.Context, organizerID int, input CreateProjectInput) (*models.Project, error) {
	now := time.Now()
	if err := validateProjectDates(input.RegistrationStart, input.RegistrationEnd, input.StartDate, now); err != nil {
		return nil, err
	}
	if input.MaxTeamSize <= 0 {
		return nil, ErrProjectInvalidCapacity
	}

	judges := make([]models.Judge, 0, len(input.Judges))
	for _, j := range input.Judges {
		if j.UserID != nil {
			if _, err := s.userRepo.GetByID(ctx, *j.UserID); err != nil {
				if errors.Is(err, repositories.ErrUserNotFound) {
					return nil, ErrUserNotFound
				}
				return nil, err
			}
		}
		judges = append(judges, models.Judge{Name: j.Name, UserID: j.UserID})
	}

	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}

	project := &models.Project{
		PublicID:          slugify(input.Name),
		Name:              input.Name,
		Description:       input.Description,
		RegistrationStart: input.RegistrationStart,
		RegistrationEnd:   input.RegistrationEnd,
		StartDate:         input.StartDate,
		OrganizerID:       organizerID,
		MaxTeamSize:       input.MaxTeamSize,
		Rules:             input.Rules,
		Theme:             input.Theme,
		Prizes:            input.Prizes,
		Tags:              tags,
		Status:            models.StatusForDates(input.StartDate, now),
		Judges:            judges,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}
	s.attachLogoURL(project)
	return project, nil
}

func (s *projectService) GetByPublicID(ctx context.Context, publicID string) (*models.Project, error) {
	project, err := s.projectRepo.GetByPublicID(ctx, publicID)
	if err != nil {
		if errors.Is(err, repositories.ErrProjectNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	teams, err := s.teamRepo.ListByProjectID(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	project.Teams = teams

	summaries, err := s.userRepo.OrganizerSummaries(ctx, []int{project.OrganizerID})
	if err != nil {
		return nil, err
	}
	if summary, ok := summaries[project.OrganizerID]; ok {
		project.Organizer = &summary
	}

	s.attachLogoURL(project)
	return project, nil
}

func (s *projectService) List(ctx context.Context) ([]models.Project, error) {
	projects, err := s.projectRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range projects {
		s.attachLogoURL(&projects[i])
	}
	return projects, nil
}

// Update is owner-only. Date changes are re-validated against each other but
// not against now, so an organizer can still edit a project already underway.
func (s *projectService) Update(ctx context.Context, publicID string, actorID int, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.ownedProject(ctx, publicID, actorID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		project.Name = *input.Name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.RegistrationStart != nil {
		project.RegistrationStart = *input.RegistrationStart
	}
	if input.RegistrationEnd != nil {
		project.RegistrationEnd = *input.RegistrationEnd
	}
	if input.StartDate != nil {
		project.StartDate = *input.StartDate
	}
	if input.MaxTeamSize != nil {
		if *input.MaxTeamSize <= 0 {
			return nil, ErrProjectInvalidCapacity
		}
		project.MaxTeamSize = *input.MaxTeamSize
	}
	if input.Rules != nil {
		project.Rules = input.Rules
	}
	if input.Theme != nil {
		project.Theme = input.Theme
	}
	if input.Prizes != nil {
		project.Prizes = input.Prizes
	}
	if input.Tags != nil {
		project.Tags = input.Tags
	}
	if input.Status != nil {
		project.Status = *input.Status
	}

	if !project.RegistrationEnd.After(project.RegistrationStart) {
		return nil, ErrProjectInvalidRegWindow
	}
	if !project.StartDate.After(project.RegistrationEnd) {
		return nil, ErrProjectInvalidStart
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, err
	}
	s.attachLogoURL(project)
	return project, nil
}

func (s *projectService) Delete(ctx context.Context, publicID string, actorID int) error {
	project, err := s.ownedProject(ctx, publicID, actorID)
	if err != nil {
		return err
	}
	return s.projectRepo.Delete(ctx, project.ID)
}

func (s *projectService) UpdateLogo(ctx context.Context, publicID string, actorID int, reader io.Reader, contentType string) (*models.Project, error) {
	project, err := s.ownedProject(ctx, publicID, actorID)
	if err != nil {
		return nil, err
	}

	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrValidationFailed
	}

	ext := ""
	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		ext = exts[0]
	}
	key := fmt.Sprintf("projects/%d/%s%s", project.ID, uuid.NewString(), ext)

	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload logo: %w", err)
	}

	oldKey := project.LogoKey
	project.LogoKey = &result.Key
	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, err
	}
	if oldKey != nil && *oldKey != result.Key {
		_ = s.uploader.Delete(ctx, *oldKey)
	}

	s.attachLogoURL(project)
	return project, nil
}

// RegisterTeam creates a team inside the project's registration window. The
// leader joins as accepted; the listed member usernames join as pending.
func (s *projectService) RegisterTeam(ctx context.Context, publicID string, leaderID int, input RegisterTeamInput) (*models.Team, error) {
	project, err := s.projectRepo.GetByPublicID(ctx, publicID)
	if err != nil {
		if errors.Is(err, repositories.ErrProjectNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	now := time.Now()
	if now.Before(project.RegistrationStart) || !now.Before(project.RegistrationEnd) {
		return nil, ErrRegistrationNotOpen
	}

	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrTeamNameRequired
	}

	members := []models.TeamMember{{UserID: leaderID, Status: models.MemberAccepted}}
	for _, username := range input.Members {
		member, err := s.userRepo.GetByUsername(ctx, username)
		if err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		if member.ID == leaderID {
			continue
		}
		members = append(members, models.TeamMember{UserID: member.ID, Status: models.MemberPending})
	}

	if len(members) > project.MaxTeamSize {
		return nil, ErrProjectInvalidCapacity
	}

	team := &models.Team{
		ProjectID:   project.ID,
		Name:        input.Name,
		Description: input.Description,
		LeaderID:    leaderID,
		Members:     members,
	}

	if err := s.teamRepo.Create(ctx, team); err != nil {
		return nil, err
	}

	// Reload to pick up member usernames from the join.
	created, err := s.teamRepo.GetByID(ctx, team.ID)
	if err != nil {
		return nil, err
	}

	s.broadcast(project.PublicID, "TEAM_REGISTERED", created)
	return created, nil
}

// AcceptTeamMember transitions a pending member to accepted. Leader-only.
func (s *projectService) AcceptTeamMember(ctx context.Context, publicID string, teamID, actorID int, memberUsername string) (*models.Team, error) {
	project, err := s.projectRepo.GetByPublicID(ctx, publicID)
	if err != nil {
		if errors.Is(err, repositories.ErrProjectNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	if team.ProjectID != project.ID {
		return nil, ErrTeamNotFound
	}
	if team.LeaderID != actorID {
		return nil, ErrLeaderActionForbidden
	}

	member, err := s.userRepo.GetByUsername(ctx, memberUsername)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := s.teamRepo.UpdateMemberStatus(ctx, team.ID, member.ID, models.MemberAccepted); err != nil {
		return nil, err
	}

	return s.teamRepo.GetByID(ctx, team.ID)
}

// SyncStatusesByDates moves planned projects whose start date has passed to
// ongoing. Run periodically by the scheduler in main.
func (s *projectService) SyncStatusesByDates(ctx context.Context) error {
	now := time.Now()
	due, err := s.projectRepo.ListPlannedBefore(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to list due projects: %w", err)
	}

	for i := range due {
		project := &due[i]
		next := models.StatusForDates(project.StartDate, now)
		if next == project.Status {
			continue
		}
		if err := s.projectRepo.UpdateStatus(ctx, project.ID, next); err != nil {
			s.logger.Error("failed to update project status",
				slog.String("public_id", project.PublicID), slog.Any("error", err))
			continue
		}
		s.logger.Info("project status updated",
			slog.String("public_id", project.PublicID),
			slog.String("status", string(next)))
		s.broadcast(project.PublicID, "STATUS_CHANGED", map[string]string{
			"publicId": project.PublicID,
			"status":   string(next),
		})
	}
	return nil
}

func (s *projectService) ownedProject(ctx context.Context, publicID string, actorID int) (*models.Project, error) {
	project, err := s.projectRepo.GetByPublicID(ctx, publicID)
	if err != nil {
		if errors.Is(err, repositories.ErrProjectNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	if project.OrganizerID != actorID {
		return nil, ErrForbiddenOperation
	}
	return project, nil
}

func (s *projectService) broadcast(room, eventType string, payload interface{}) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToRoom(room, eventType, payload)
	}
}

func (s *projectService) attachLogoURL(project *models.Project) {
	if project.LogoKey != nil && s.uploader != nil {
		url := s.uploader.GetPublicURL(*project.LogoKey)
		project.LogoURL = &url
	}
}
