package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"scango/internal/apperrors"
	"scango/internal/models"
	"scango/internal/repositories"
	"scango/internal/session"
	"scango/internal/validation"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// MinimumCustomerAge is the youngest age accepted at registration.
const MinimumCustomerAge = 13

// AdminCredentials are the configured store administrator login.
type AdminCredentials struct {
	Username string
	Password string
}

// RegisterRequest is the registration form.
type RegisterRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	DateOfBirth string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
}

// AuthResult is returned by every successful login.
type AuthResult struct {
	Token   string           `json:"token"`
	Session *session.Session `json:"session"`
	User    *models.User     `json:"user,omitempty"`
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo  repositories.UserRepository
	sessions  *session.Manager
	jwtSecret []byte
	admin     AdminCredentials
	validate  *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, sessions *session.Manager, jwtSecret string, admin AdminCredentials, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		sessions:  sessions,
		jwtSecret: []byte(jwtSecret),
		admin:     admin,
		validate:  validation.New(),
		logger:    logger,
		now:       time.Now,
	}
}

// RegisterUser creates a customer account and logs it in.
func (s *AuthService) RegisterUser(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	req.DateOfBirth = strings.TrimSpace(req.DateOfBirth)
	if err := validation.Struct(s.validate, req); err != nil {
		return nil, err
	}

	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		return nil, apperrors.Invalid("date_of_birth", "must be a date in YYYY-MM-DD format")
	}
	if models.AgeOn(dob, s.now()) < MinimumCustomerAge {
		return nil, apperrors.Invalid("date_of_birth", fmt.Sprintf("you must be at least %d years old", MinimumCustomerAge))
	}

	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, apperrors.Conflict("email '%s' already registered", req.Email)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:        req.Name,
		Email:       req.Email,
		Password:    string(hashedPassword),
		DateOfBirth: &dob,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	s.logger.Info("user registered", zap.String("user_id", user.ID))

	return s.startSession(ctx, user.ID, user.Email, user.Name, session.RoleCustomer, user)
}

// LoginCustomer authenticates a customer by email and password.
func (s *AuthService) LoginCustomer(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.startSession(ctx, user.ID, user.Email, user.Name, session.RoleCustomer, user)
}

// LoginAdmin authenticates the store administrator.
func (s *AuthService) LoginAdmin(ctx context.Context, username, password string) (*AuthResult, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.admin.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.admin.Password)) == 1
	if !userOK || !passOK {
		s.logger.Warn("rejected admin login", zap.String("username", username))
		return nil, apperrors.ErrInvalidCredentials
	}
	return s.startSession(ctx, "admin:"+s.admin.Username, "", s.admin.Username, session.RoleAdmin, nil)
}

// Logout ends the session so its token stops working.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.End(ctx, sessionID)
}

// Authenticate resolves a bearer token to its live session.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*session.Session, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	sid, _ := claims["sid"].(string)
	if sid == "" {
		return nil, fmt.Errorf("%w: token carries no session", apperrors.ErrUnauthorized)
	}
	return s.sessions.Lookup(ctx, sid)
}

func (s *AuthService) startSession(ctx context.Context, userID, email, name string, role session.Role, user *models.User) (*AuthResult, error) {
	sess, err := s.sessions.Start(ctx, userID, email, name, role)
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid":     sess.ID,
		"user_id": userID,
		"role":    string(role),
		"exp":     sess.ExpiresAt.Unix(),
		"iat":     sess.CreatedAt.Unix(),
	})
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("session started", zap.String("user_id", userID), zap.String("role", string(role)))
	return &AuthResult{Token: tokenString, Session: sess, User: user}, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: invalid token: %v", apperrors.ErrUnauthorized, err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("%w: invalid token", apperrors.ErrUnauthorized)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
