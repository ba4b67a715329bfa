package services

import (
	"context"
	"engsupply-erp/apperrors"
	"engsupply-erp/models"
	"engsupply-erp/repositories"
	"engsupply-erp/types"
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

type UserService struct {
	db   *gorm.DB
	repo *repositories.UserRepository
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db, repo: repositories.NewUserRepository(db)}
}

// Authenticate cek username + password (bcrypt). User non-aktif dianggap tidak ada.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.repo.WithTx(s.db.WithContext(ctx)).GetByUsername(username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Get user by ID, with roles and permissions
func (s *UserService) GetProfile(ctx context.Context, id types.SnowflakeID) (*models.User, error) {
	user, err := s.repo.WithTx(s.db.WithContext(ctx)).GetWithPermissions(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("user", id)
	}
	return user, err
}

func (s *UserService) HasPermission(ctx context.Context, id types.SnowflakeID, permission string) (bool, error) {
	user, err := s.GetProfile(ctx, id)
	if err != nil {
		return false, err
	}
	if !user.IsActive {
		return false, nil
	}
	for _, role := range user.Roles {
		for _, perm := range role.Permissions {
			if perm.Name == permission {
				return true, nil
			}
		}
	}
	return false, nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}
