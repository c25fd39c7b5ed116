package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/hackslate/hackathon-system/models"
)

var (
	ErrUserNotFound           = errors.New("user not found")
	ErrUserEmailConflict      = errors.New("user email conflict")
	ErrUserUsernameConflict   = errors.New("user username conflict")
	ErrUserEnrollmentConflict = errors.New("user enrollment number conflict")
)

// Duplication reports which unique identity fields already exist. More than
// one flag can be set when a single signup collides on several constraints.
type Duplication struct {
	Email            bool
	Username         bool
	EnrollmentNumber bool
}

func (d Duplication) Any() bool {
	return d.Email || d.Username || d.EnrollmentNumber
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEnrollmentNumber(ctx context.Context, enrollment string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	FindDuplicates(ctx context.Context, email, username string, enrollment *string) (Duplication, error)
	SetVerified(ctx context.Context, id int) error
	Search(ctx context.Context, q models.SearchQuery) ([]models.User, error)
	SuggestStudents(ctx context.Context, input string) ([]models.Suggestion, error)
	OrganizerSummaries(ctx context.Context, ids []int) (map[int]models.OrganizerSummary, error)
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

const userColumns = `
	id, username, email, enrollment_number, role, password_hash, verified,
	verify_code_hash, verify_code_sent_at, full_name, bio, skills,
	github_url, linkedin_url, portfolio_url, available, avatar_key, created_at`

func (r *postgresUserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, email, enrollment_number, role, password_hash,
			verify_code_hash, verify_code_sent_at, full_name, bio, skills,
			github_url, linkedin_url, portfolio_url, available)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.Username,
		user.Email,
		user.EnrollmentNumber,
		user.Role,
		user.PasswordHash,
		user.VerifyCodeHash,
		user.VerifyCodeSentAt,
		user.FullName,
		user.Bio,
		pq.Array(user.Skills),
		user.GithubURL,
		user.LinkedinURL,
		user.PortfolioURL,
		user.Available,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		return classifyUserConstraint(err)
	}
	return nil
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(ctx, query, id)
}

func (r *postgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(ctx, query, email)
}

func (r *postgresUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE username = $1`
	return r.scanUser(ctx, query, username)
}

func (r *postgresUserRepository) GetByEnrollmentNumber(ctx context.Context, enrollment string) (*models.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE enrollment_number = $1`
	return r.scanUser(ctx, query, enrollment)
}

func (r *postgresUserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET
			username = $1,
			email = $2,
			password_hash = $3,
			verified = $4,
			verify_code_hash = $5,
			verify_code_sent_at = $6,
			full_name = $7,
			bio = $8,
			skills = $9,
			github_url = $10,
			linkedin_url = $11,
			portfolio_url = $12,
			available = $13,
			avatar_key = $14
		WHERE id = $15`

	result, err := r.db.ExecContext(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Verified,
		user.VerifyCodeHash,
		user.VerifyCodeSentAt,
		user.FullName,
		user.Bio,
		pq.Array(user.Skills),
		user.GithubURL,
		user.LinkedinURL,
		user.PortfolioURL,
		user.Available,
		user.AvatarKey,
		user.ID,
	)
	if err != nil {
		return classifyUserConstraint(err)
	}

	return checkAffectedRows(result, ErrUserNotFound)
}

// FindDuplicates is the pre-insert duplication check. It is not atomic with
// the insert that follows; the unique constraints remain the backstop and
// classifyUserConstraint catches whatever slips through the race.
func (r *postgresUserRepository) FindDuplicates(ctx context.Context, email, username string, enrollment *string) (Duplication, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE email = $1),
			COUNT(*) FILTER (WHERE username = $2),
			COUNT(*) FILTER (WHERE enrollment_number = $3)
		FROM users
		WHERE email = $1 OR username = $2 OR enrollment_number = $3`

	var emailHits, usernameHits, enrollmentHits int
	err := r.db.QueryRowContext(ctx, query, email, username, enrollment).
		Scan(&emailHits, &usernameHits, &enrollmentHits)
	if err != nil {
		return Duplication{}, fmt.Errorf("failed to check duplicates: %w", err)
	}

	return Duplication{
		Email:            emailHits > 0,
		Username:         usernameHits > 0,
		EnrollmentNumber: enrollmentHits > 0,
	}, nil
}

func (r *postgresUserRepository) SetVerified(ctx context.Context, id int) error {
	query := `
		UPDATE users SET verified = TRUE, verify_code_hash = NULL, verify_code_sent_at = NULL
		WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

// Search applies the user-side filter stages. Stages are ANDed; absent flags
// contribute nothing, so an empty query matches everything.
func (r *postgresUserRepository) Search(ctx context.Context, q models.SearchQuery) ([]models.User, error) {
	where, args := buildUserSearchFilter(q)
	query := `SELECT` + userColumns + ` FROM users` + where + ` ORDER BY username ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		user, scanErr := scanUserRow(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (r *postgresUserRepository) SuggestStudents(ctx context.Context, input string) ([]models.Suggestion, error) {
	query := `
		SELECT username, full_name
		FROM users
		WHERE role = 'student' AND (username ILIKE $1 OR full_name ILIKE $1)
		ORDER BY username ASC`

	rows, err := r.db.QueryContext(ctx, query, "%"+escapeLike(input)+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	suggestions := make([]models.Suggestion, 0)
	for rows.Next() {
		var s models.Suggestion
		if err := rows.Scan(&s.Username, &s.FullName); err != nil {
			return nil, err
		}
		suggestions = append(suggestions, s)
	}
	return suggestions, rows.Err()
}

// OrganizerSummaries fetches the distinct organizer set in one round trip.
func (r *postgresUserRepository) OrganizerSummaries(ctx context.Context, ids []int) (map[int]models.OrganizerSummary, error) {
	summaries := make(map[int]models.OrganizerSummary, len(ids))
	if len(ids) == 0 {
		return summaries, nil
	}

	query := `SELECT id, username, full_name, email FROM users WHERE id = ANY($1)`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var s models.OrganizerSummary
		if err := rows.Scan(&s.ID, &s.Username, &s.FullName, &s.Email); err != nil {
			return nil, err
		}
		summaries[s.ID] = s
	}
	return summaries, rows.Err()
}

// buildUserSearchFilter appends one WHERE stage per active flag. The free-text
// stage is the only OR (username vs full name); everything else is ANDed.
func buildUserSearchFilter(q models.SearchQuery) (string, []interface{}) {
	var stages []string
	var args []interface{}

	if q.Role != nil {
		args = append(args, *q.Role)
		stages = append(stages, fmt.Sprintf("role = $%d", len(args)))
	}
	if q.Available != nil {
		args = append(args, *q.Available)
		stages = append(stages, fmt.Sprintf("available = $%d", len(args)))
	}
	if q.InputText != "" {
		args = append(args, "%"+escapeLike(q.InputText)+"%")
		stages = append(stages, fmt.Sprintf("(username ILIKE $%d OR full_name ILIKE $%d)", len(args), len(args)))
	}

	if len(stages) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(stages, " AND "), args
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	return strings.ReplaceAll(s, `_`, `\_`)
}

func classifyUserConstraint(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		switch pqErr.Constraint {
		case "users_email_key":
			return ErrUserEmailConflict
		case "users_username_key":
			return ErrUserUsernameConflict
		case "users_enrollment_number_key":
			return ErrUserEnrollmentConflict
		}
	}
	return err
}

func (r *postgresUserRepository) scanUser(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	return scanUserRow(r.db.QueryRowContext(ctx, query, args...))
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUserRow(row rowScanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.EnrollmentNumber,
		&user.Role,
		&user.PasswordHash,
		&user.Verified,
		&user.VerifyCodeHash,
		&user.VerifyCodeSentAt,
		&user.FullName,
		&user.Bio,
		&user.Skills,
		&user.GithubURL,
		&user.LinkedinURL,
		&user.PortfolioURL,
		&user.Available,
		&user.AvatarKey,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
