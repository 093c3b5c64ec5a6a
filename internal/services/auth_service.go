package services

import (
	"context"
	"errors"

	"github.com/uniexp/uniexp-admin-backend/internal/models"
	"github.com/uniexp/uniexp-admin-backend/internal/repositories"
	"github.com/uniexp/uniexp-admin-backend/internal/session"
	"github.com/uniexp/uniexp-admin-backend/pkg/jwt"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"
)

// AuthService defines the interface for admin authentication
type AuthService interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	Authenticate(ctx context.Context, token string) (session.Session, error)
}

type authService struct {
	adminRepo repositories.AdminUserRepository
	tokens    *jwt.TokenService
}

// NewAuthService creates a new AuthService implementation
func NewAuthService(adminRepo repositories.AdminUserRepository, tokens *jwt.TokenService) AuthService {
	return &authService{
		adminRepo: adminRepo,
		tokens:    tokens,
	}
}

// Login checks the admin's password and issues a session token
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	admin, err := s.adminRepo.FindByEmail(ctx, req.Email)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, storeErr("find admin", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)); err != nil {
		slog.Warn("Failed login attempt", "email", admin.Email)
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(admin.ID.Hex(), admin.FacultyID, admin.Email, admin.Role)
	if err != nil {
		return nil, err
	}
	slog.Info("Admin logged in", "adminID", admin.ID.Hex(), "facultyID", admin.FacultyID)
	return &models.LoginResponse{Token: token, ExpiresAt: expiresAt, FacultyID: admin.FacultyID}, nil
}

// Authenticate turns a bearer token into a session. The admin must still exist.
func (s *authService) Authenticate(ctx context.Context, token string) (session.Session, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return session.Session{}, err
	}
	id, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return session.Session{}, jwt.ErrInvalidToken
	}
	if _, err := s.adminRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return session.Session{}, session.ErrNoSession
		}
		return session.Session{}, storeErr("find admin", err)
	}
	return session.Session{
		AdminID:   claims.Subject,
		FacultyID: claims.FacultyID,
		Email:     claims.Email,
		Role:      claims.Role,
	}, nil
}

// HashPassword hashes a plain password for storage
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.New("failed to hash password")
	}
	return string(hashed), nil
}
