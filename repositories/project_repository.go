package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/hackslate/hackathon-system/models"
)

var (
	ErrProjectNotFound         = errors.New("project not found")
	ErrProjectNameConflict     = errors.New("project name conflict")
	ErrProjectPublicIDConflict = errors.New("project public id conflict")
	ErrProjectOrganizerInvalid = errors.New("project organizer does not exist")
)

type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByPublicID(ctx context.Context, publicID string) (*models.Project, error)
	List(ctx context.Context) ([]models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id int) error
	Search(ctx context.Context, q models.SearchQuery) ([]models.Project, error)
	ListPlannedBefore(ctx context.Context, now time.Time) ([]models.Project, error)
	UpdateStatus(ctx context.Context, id int, status models.ProjectStatus) error
}

type postgresProjectRepository struct {
	db *sql.DB
}

func NewPostgresProjectRepository(db *sql.DB) ProjectRepository {
	return &postgresProjectRepository{db: db}
}

const projectColumns = `
	id, public_id, name, description, registration_start, registration_end,
	start_date, organizer_id, max_team_size, rules, theme, prizes, tags,
	status, logo_key, created_at`

// Create inserts the project and its judges in a single transaction.
func (r *postgresProjectRepository) Create(ctx context.Context, project *models.Project) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO projects (public_id, name, description, registration_start,
			registration_end, start_date, organizer_id, max_team_size,
			rules, theme, prizes, tags, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at`

	err = tx.QueryRowContext(ctx, query,
		project.PublicID,
		project.Name,
		project.Description,
		project.RegistrationStart,
		project.RegistrationEnd,
		project.StartDate,
		project.OrganizerID,
		project.MaxTeamSize,
		project.Rules,
		project.Theme,
		project.Prizes,
		pq.Array(project.Tags),
		project.Status,
	).Scan(&project.ID, &project.CreatedAt)
	if err != nil {
		return classifyProjectConstraint(err)
	}

	for i := range project.Judges {
		judge := &project.Judges[i]
		judge.ProjectID = project.ID
		err = tx.QueryRowContext(ctx,
			`INSERT INTO judges (project_id, name, user_id) VALUES ($1, $2, $3) RETURNING id`,
			judge.ProjectID, judge.Name, judge.UserID,
		).Scan(&judge.ID)
		if err != nil {
			return fmt.Errorf("failed to insert judge: %w", err)
		}
	}

	return tx.Commit()
}

func (r *postgresProjectRepository) GetByPublicID(ctx context.Context, publicID string) (*models.Project, error) {
	query := `SELECT` + projectColumns + ` FROM projects WHERE public_id = $1`

	project, err := scanProjectRow(r.db.QueryRowContext(ctx, query, publicID))
	if err != nil {
		return nil, err
	}

	judges, err := r.listJudges(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	project.Judges = judges

	return project, nil
}

func (r *postgresProjectRepository) List(ctx context.Context) ([]models.Project, error) {
	query := `SELECT` + projectColumns + ` FROM projects ORDER BY start_date ASC`
	return r.queryProjects(ctx, query)
}

func (r *postgresProjectRepository) Update(ctx context.Context, project *models.Project) error {
	query := `
		UPDATE projects SET
			name = $1,
			description = $2,
			registration_start = $3,
			registration_end = $4,
			start_date = $5,
			max_team_size = $6,
			rules = $7,
			theme = $8,
			prizes = $9,
			tags = $10,
			status = $11,
			logo_key = $12
		WHERE id = $13`

	result, err := r.db.ExecContext(ctx, query,
		project.Name,
		project.Description,
		project.RegistrationStart,
		project.RegistrationEnd,
		project.StartDate,
		project.MaxTeamSize,
		project.Rules,
		project.Theme,
		project.Prizes,
		pq.Array(project.Tags),
		project.Status,
		project.LogoKey,
		project.ID,
	)
	if err != nil {
		return classifyProjectConstraint(err)
	}
	return checkAffectedRows(result, ErrProjectNotFound)
}

func (r *postgresProjectRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrProjectNotFound)
}

// Search applies the project-side filter stages, ANDed like the user side.
func (r *postgresProjectRepository) Search(ctx context.Context, q models.SearchQuery) ([]models.Project, error) {
	where, args := buildProjectSearchFilter(q)
	query := `SELECT` + projectColumns + ` FROM projects` + where + ` ORDER BY start_date ASC`
	return r.queryProjects(ctx, query, args...)
}

// ListPlannedBefore returns planned projects whose start date has passed,
// i.e. candidates for the status sync.
func (r *postgresProjectRepository) ListPlannedBefore(ctx context.Context, now time.Time) ([]models.Project, error) {
	query := `SELECT` + projectColumns + ` FROM projects WHERE status = 'planned' AND start_date <= $1`
	return r.queryProjects(ctx, query, now)
}

func (r *postgresProjectRepository) UpdateStatus(ctx context.Context, id int, status models.ProjectStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE projects SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrProjectNotFound)
}

func buildProjectSearchFilter(q models.SearchQuery) (string, []interface{}) {
	var stages []string
	var args []interface{}

	if q.Status != nil {
		args = append(args, *q.Status)
		stages = append(stages, fmt.Sprintf("status = $%d", len(args)))
	}
	if q.MaxTeamSize != nil {
		args = append(args, *q.MaxTeamSize)
		stages = append(stages, fmt.Sprintf("max_team_size <= $%d", len(args)))
	}
	if q.InputText != "" {
		args = append(args, "%"+escapeLike(q.InputText)+"%")
		stages = append(stages, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if q.From != nil {
		args = append(args, *q.From)
		stages = append(stages, fmt.Sprintf("start_date >= $%d", len(args)))
	}
	if q.To != nil {
		args = append(args, *q.To)
		stages = append(stages, fmt.Sprintf("start_date <= $%d", len(args)))
	}

	if len(stages) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(stages, " AND "), args
}

func (r *postgresProjectRepository) queryProjects(ctx context.Context, query string, args ...interface{}) ([]models.Project, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := make([]models.Project, 0)
	for rows.Next() {
		project, scanErr := scanProjectRow(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		projects = append(projects, *project)
	}
	return projects, rows.Err()
}

func (r *postgresProjectRepository) listJudges(ctx context.Context, projectID int) ([]models.Judge, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, project_id, name, user_id FROM judges WHERE project_id = $1 ORDER BY id ASC`,
		projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	judges := make([]models.Judge, 0)
	for rows.Next() {
		var j models.Judge
		if err := rows.Scan(&j.ID, &j.ProjectID, &j.Name, &j.UserID); err != nil {
			return nil, err
		}
		judges = append(judges, j)
	}
	return judges, rows.Err()
}

func classifyProjectConstraint(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			switch pqErr.Constraint {
			case "projects_name_key":
				return ErrProjectNameConflict
			case "projects_public_id_key":
				return ErrProjectPublicIDConflict
			}
		case "23503":
			if pqErr.Constraint == "projects_organizer_id_fkey" {
				return ErrProjectOrganizerInvalid
			}
		}
	}
	return err
}

func scanProjectRow(row rowScanner) (*models.Project, error) {
	project := &models.Project{}
	err := row.Scan(
		&project.ID,
		&project.PublicID,
		&project.Name,
		&project.Description,
		&project.RegistrationStart,
		&project.RegistrationEnd,
		&project.StartDate,
		&project.OrganizerID,
		&project.MaxTeamSize,
		&project.Rules,
		&project.Theme,
		&project.Prizes,
		&project.Tags,
		&project.Status,
		&project.LogoKey,
		&project.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return project, nil
}
