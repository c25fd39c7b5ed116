package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/google/uuid"

	"github.com/hackslate/hackathon-system/models"
	"github.com/hackslate/hackathon-system/repositories"
	"github.com/hackslate/hackathon-system/storage"
)

type UpdateProfileInput struct {
	FullName     *string  `json:"fullName"`
	Bio          *string  `json:"bio"`
	Skills       []string `json:"skills"`
	GithubURL    *string  `json:"githubUrl"`
	LinkedinURL  *string  `json:"linkedinUrl"`
	PortfolioURL *string  `json:"portfolioUrl"`
	Available    *bool    `json:"available"`
}

func (in UpdateProfileInput) Empty() bool {
	return in.FullName == nil && in.Bio == nil && in.Skills == nil &&
		in.GithubURL == nil && in.LinkedinURL == nil && in.PortfolioURL == nil &&
		in.Available == nil
}

type UserService interface {
	GetProfileByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id int) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int, input UpdateProfileInput) (*models.User, error)
	UpdateAvatar(ctx context.Context, userID int, reader io.Reader, contentType string) (*models.User, error)
}

type userService struct {
	userRepo repositories.UserRepository
	uploader storage.FileUploader
}

func NewUserService(userRepo repositories.UserRepository, uploader storage.FileUploader) UserService {
	return &userService{
		userRepo: userRepo,
		uploader: uploader,
	}
}

func (s *userService) GetProfileByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.PasswordHash = ""
	s.attachAvatarURL(user)
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	s.attachAvatarURL(user)
	return user, nil
}

// UpdateProfile applies only the fields present in the input. Identity fields
// (username, email, enrollment number, role) are immutable here.
func (s *userService) UpdateProfile(ctx context.Context, userID int, input UpdateProfileInput) (*models.User, error) {
	if input.Empty() {
		return nil, ErrNoFieldsToUpdate
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if input.FullName != nil {
		user.FullName = *input.FullName
	}
	if input.Bio != nil {
		user.Bio = input.Bio
	}
	if input.Skills != nil {
		user.Skills = input.Skills
	}
	if input.GithubURL != nil {
		user.GithubURL = input.GithubURL
	}
	if input.LinkedinURL != nil {
		user.LinkedinURL = input.LinkedinURL
	}
	if input.PortfolioURL != nil {
		user.PortfolioURL = input.PortfolioURL
	}
	if input.Available != nil {
		user.Available = *input.Available
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	s.attachAvatarURL(user)
	return user, nil
}

func (s *userService) UpdateAvatar(ctx context.Context, userID int, reader io.Reader, contentType string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrValidationFailed
	}

	ext := ""
	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		ext = exts[0]
	}
	key := fmt.Sprintf("avatars/%d/%s%s", user.ID, uuid.NewString(), ext)

	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	oldKey := user.AvatarKey
	user.AvatarKey = &result.Key
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if oldKey != nil && *oldKey != result.Key {
		// Old object is orphaned either way if this fails; not worth failing
		// the request over.
		_ = s.uploader.Delete(ctx, *oldKey)
	}

	user.PasswordHash = ""
	s.attachAvatarURL(user)
	return user, nil
}

func (s *userService) attachAvatarURL(user *models.User) {
	if user.AvatarKey != nil && s.uploader != nil {
		url := s.uploader.GetPublicURL(*user.AvatarKey)
		user.AvatarURL = &url
	}
}
