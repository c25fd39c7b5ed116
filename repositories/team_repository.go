package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/hackslate/hackathon-system/models"
)

var (
	ErrTeamNotFound       = errors.New("team not found")
	ErrTeamNameConflict   = errors.New("team name conflict")
	ErrTeamMemberNotFound = errors.New("team member not found")
	ErrTeamMemberConflict = errors.New("user is already in this team")
)

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	ListByProjectID(ctx context.Context, projectID int) ([]models.Team, error)
	UpdateMemberStatus(ctx context.Context, teamID, userID int, status models.MemberStatus) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

// Create inserts the team and its initial member rows in one transaction.
// Member user IDs must be resolved by the caller before this point.
func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO teams (project_id, name, description, leader_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err = tx.QueryRowContext(ctx, query,
		team.ProjectID,
		team.Name,
		team.Description,
		team.LeaderID,
	).Scan(&team.ID, &team.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "teams_project_id_name_key" {
			return ErrTeamNameConflict
		}
		return err
	}

	for i := range team.Members {
		member := &team.Members[i]
		member.TeamID = team.ID
		err = tx.QueryRowContext(ctx,
			`INSERT INTO team_members (team_id, user_id, status) VALUES ($1, $2, $3) RETURNING joined_at`,
			member.TeamID, member.UserID, member.Status,
		).Scan(&member.JoinedAt)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23505" {
				return ErrTeamMemberConflict
			}
			return fmt.Errorf("failed to insert team member: %w", err)
		}
	}

	return tx.Commit()
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `
		SELECT id, project_id, name, description, leader_id, created_at
		FROM teams
		WHERE id = $1`

	team := &models.Team{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&team.ID,
		&team.ProjectID,
		&team.Name,
		&team.Description,
		&team.LeaderID,
		&team.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}

	members, err := r.listMembers(ctx, team.ID)
	if err != nil {
		return nil, err
	}
	team.Members = members

	return team, nil
}

func (r *postgresTeamRepository) ListByProjectID(ctx context.Context, projectID int) ([]models.Team, error) {
	query := `
		SELECT id, project_id, name, description, leader_id, created_at
		FROM teams
		WHERE project_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]models.Team, 0)
	for rows.Next() {
		var team models.Team
		scanErr := rows.Scan(
			&team.ID,
			&team.ProjectID,
			&team.Name,
			&team.Description,
			&team.LeaderID,
			&team.CreatedAt,
		)
		if scanErr != nil {
			return nil, scanErr
		}
		teams = append(teams, team)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	for i := range teams {
		members, err := r.listMembers(ctx, teams[i].ID)
		if err != nil {
			return nil, err
		}
		teams[i].Members = members
	}

	return teams, nil
}

func (r *postgresTeamRepository) UpdateMemberStatus(ctx context.Context, teamID, userID int, status models.MemberStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE team_members SET status = $1 WHERE team_id = $2 AND user_id = $3`,
		status, teamID, userID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamMemberNotFound)
}

func (r *postgresTeamRepository) listMembers(ctx context.Context, teamID int) ([]models.TeamMember, error) {
	query := `
		SELECT tm.team_id, tm.user_id, u.username, u.full_name, tm.status, tm.joined_at
		FROM team_members tm
		JOIN users u ON u.id = tm.user_id
		WHERE tm.team_id = $1
		ORDER BY tm.joined_at ASC`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]models.TeamMember, 0)
	for rows.Next() {
		var m models.TeamMember
		if err := rows.Scan(&m.TeamID, &m.UserID, &m.Username, &m.FullName, &m.Status, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
