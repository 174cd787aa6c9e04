// Package users implements registration, login and account management on
// top of the service's self-issued JWTs.
package users

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"eventx/internal/apperr"
	"eventx/internal/auth"
	"eventx/internal/logger"
	"eventx/internal/models"
	"eventx/internal/utils"
)

type DBLayer interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	ListUsers(ctx context.Context, page, perPage int) ([]models.User, int, error)
	DeleteUser(ctx context.Context, id string) error
}

type RegisterRequest struct {
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	Age       int      `json:"age,omitempty"`
	Gender    string   `json:"gender,omitempty"`
	Interests []string `json:"interests,omitempty"`
	City      string   `json:"city,omitempty"`
	Country   string   `json:"country,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileUpdate carries the self-service editable fields. Pointers
// distinguish "leave unchanged" from "clear".
type ProfileUpdate struct {
	Name      *string   `json:"name,omitempty"`
	Age       *int      `json:"age,omitempty"`
	Gender    *string   `json:"gender,omitempty"`
	Interests *[]string `json:"interests,omitempty"`
	City      *string   `json:"city,omitempty"`
	Country   *string   `json:"country,omitempty"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type UserService struct {
	DB     DBLayer
	Issuer *auth.TokenIssuer
	Logger *logger.Logger
}

func NewUserService(db DBLayer, issuer *auth.TokenIssuer, log *logger.Logger) *UserService {
	return &UserService{DB: db, Issuer: issuer, Logger: log}
}

// Register creates an account with a bcrypt-hashed password and signs the
// caller straight in. The role is always user; admins are promoted later.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperr.BadRequest("name is required")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return nil, apperr.BadRequest("a valid email is required")
	}
	if len(req.Password) < 6 {
		return nil, apperr.BadRequest("password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           utils.NewID(),
		Name:         req.Name,
		Email:        strings.ToLower(req.Email),
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		Age:          req.Age,
		Gender:       req.Gender,
		Interests:    req.Interests,
		City:         req.City,
		Country:      req.Country,
		CreatedAt:    time.Now(),
	}
	if err := s.DB.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.Issuer.Sign(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	s.Logger.LogSecurity("REGISTER", fmt.Sprintf("new account %s", user.Email))
	return &AuthResponse{Token: token, User: user}, nil
}

// Login verifies credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.DB.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid email or password")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		s.Logger.LogSecurity("LOGIN_FAILED", fmt.Sprintf("bad password for %s", user.Email))
		return nil, apperr.Unauthorized("Invalid email or password")
	}

	token, err := s.Issuer.Sign(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	s.Logger.LogSecurity("LOGIN", fmt.Sprintf("user %s logged in", user.Email))
	return &AuthResponse{Token: token, User: user}, nil
}

func (s *UserService) Get(ctx context.Context, userID string) (*models.User, error) {
	return s.DB.GetUserByID(ctx, userID)
}

// UpdateProfile applies the provided fields to the caller's own account.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req ProfileUpdate) (*models.User, error) {
	user, err := s.DB.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, apperr.BadRequest("name must not be empty")
		}
		user.Name = *req.Name
	}
	if req.Age != nil {
		user.Age = *req.Age
	}
	if req.Gender != nil {
		user.Gender = *req.Gender
	}
	if req.Interests != nil {
		user.Interests = *req.Interests
	}
	if req.City != nil {
		user.City = *req.City
	}
	if req.Country != nil {
		user.Country = *req.Country
	}

	if err := s.DB.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// List is the admin account listing.
func (s *UserService) List(ctx context.Context, page, perPage int) ([]models.User, int, error) {
	return s.DB.ListUsers(ctx, page, perPage)
}

// ChangeRole promotes or demotes an account.
func (s *UserService) ChangeRole(ctx context.Context, userID, role string) (*models.User, error) {
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, apperr.BadRequest("Invalid role")
	}
	user, err := s.DB.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Role = role
	if err := s.DB.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	s.Logger.LogSecurity("ROLE_CHANGE", fmt.Sprintf("user %s role -> %s", userID, role))
	return user, nil
}

// Delete removes an account. Admins cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, callerID, userID string) error {
	if callerID == userID {
		return apperr.BadRequest("You cannot delete your own account")
	}
	if err := s.DB.DeleteUser(ctx, userID); err != nil {
		return err
	}
	s.Logger.LogSecurity("USER_DELETE", fmt.Sprintf("account %s deleted by %s", userID, callerID))
	return nil
}
