package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/medcamp/camp-system/models"
	"github.com/medcamp/camp-system/repositories"
	"github.com/medcamp/camp-system/storage"
)

type UserService interface {
	GetProfile(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int, name string, photoURL *string) (*models.User, error)
	UploadPhoto(ctx context.Context, userID int, file io.Reader, contentType string) (*models.User, error)
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

func (s *userService) GetProfile(ctx context.Context, email string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID int, name string, photoURL *string) (*models.User, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrParticipantNameRequired
	}

	if err := s.userRepo.UpdateProfile(ctx, userID, strings.TrimSpace(name), photoURL); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload user: %w", err)
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *userService) UploadPhoto(ctx context.Context, userID int, file io.Reader, contentType string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	key := fmt.Sprintf("users/%d/%s", userID, uuid.NewString())
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageUpload, err)
	}

	photoURL := result.Location
	if err := s.userRepo.UpdateProfile(ctx, userID, user.Name, &photoURL); err != nil {
		return nil, fmt.Errorf("failed to store photo url: %w", err)
	}

	user.PhotoURL = &photoURL
	user.PasswordHash = ""
	return user, nil
}
