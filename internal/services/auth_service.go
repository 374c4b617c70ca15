package services

import (
	"errors"
	"strings"

	"github.com/takahashi-jo/care-emr/internal/models"
	"github.com/takahashi-jo/care-emr/internal/security"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

const initialAdminEmail = "admin@care-emr.local"

const passwordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghjkmnpqrstuvwxyz23456789"

type UserStore interface {
	CountUsers() (int64, error)
	FindByID(userID string) (models.User, error)
	FindByEmail(email string) (models.User, error)
	Create(user *models.User) error
}

type AuthService struct {
	users UserStore
}

func NewAuthService(users UserStore) *AuthService {
	return &AuthService{users: users}
}

// Authenticate resolves a staff account by email and verifies the password.
// The same error comes back for an unknown email and a wrong password.
func (service *AuthService) Authenticate(email string, password string) (models.User, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	user, err := service.users.FindByEmail(normalized)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, err
	}
	if !user.CheckPassword(password) {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (service *AuthService) FindByID(userID string) (models.User, error) {
	user, err := service.users.FindByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// EnsureInitialAdmin provisions the first admin account on an empty user
// table and returns its generated password, or "" when accounts already
// exist. The caller is responsible for surfacing the password exactly once.
func (service *AuthService) EnsureInitialAdmin() (string, error) {
	count, err := service.users.CountUsers()
	if err != nil {
		return "", err
	}
	if count > 0 {
		return "", nil
	}

	password, err := security.RandomString(16, passwordAlphabet)
	if err != nil {
		return "", err
	}

	admin := models.User{
		Email:       initialAdminEmail,
		DisplayName: "Administrator",
		Role:        models.RoleAdmin,
	}
	if err := admin.SetPassword(password); err != nil {
		return "", err
	}
	if err := service.users.Create(&admin); err != nil {
		return "", err
	}
	return password, nil
}
