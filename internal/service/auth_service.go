package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v5"

	"salonhub-backend/internal/domain"
	"salonhub-backend/internal/repository"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	// ErrNotAdmin is returned for a valid Firebase user with no active
	// admin profile.
	ErrNotAdmin = errors.New("not an admin")
)

// IDTokenVerifier checks a Firebase ID token.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

type AuthService struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Admins     repository.AdminRepository
	Verifier   IDTokenVerifier
	Logger     *slog.Logger
}

type AuthResult struct {
	AccessToken  string
	RefreshToken string
	Admin        domain.Admin
	ExpiresAt    time.Time
}

// LoginWithFirebase exchanges a Firebase ID token for service tokens
// carrying the admin's role and branch.
func (s AuthService) LoginWithFirebase(ctx context.Context, idToken string) (*AuthResult, error) {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return nil, invalid("idToken", "is required")
	}
	if s.Verifier == nil {
		return nil, errors.New("firebase auth not configured")
	}
	tok, err := s.Verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		s.logger().Warn("firebase token rejected", "err", err)
		return nil, ErrInvalidToken
	}
	admin, err := s.admin(ctx, tok.UID)
	if err != nil {
		return nil, err
	}
	return s.issueTokens(admin)
}

func (s AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if claims["token_type"] != "refresh" {
		return nil, ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, ErrInvalidToken
	}

	admin, err := s.admin(ctx, sub)
	if err != nil {
		return nil, err
	}
	return s.issueTokens(admin)
}

func (s AuthService) admin(ctx context.Context, uid string) (*domain.Admin, error) {
	admin, err := s.Admins.GetByID(ctx, uid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotAdmin
	}
	if err != nil {
		return nil, err
	}
	if !admin.Active {
		return nil, ErrNotAdmin
	}
	switch admin.Role {
	case domain.RoleSuperAdmin:
	case domain.RoleBranchAdmin:
		if admin.Branch == "" || admin.BranchID == "" {
			return nil, fmt.Errorf("%w: branch admin %s has no branch", ErrNotAdmin, uid)
		}
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrNotAdmin, admin.Role)
	}
	return admin, nil
}

func (s AuthService) issueTokens(admin *domain.Admin) (*AuthResult, error) {
	now := time.Now()
	accessExp := now.Add(s.AccessTTL)
	refreshExp := now.Add(s.RefreshTTL)

	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        admin.ID,
		"email":      admin.Email,
		"name":       admin.Name,
		"role":       string(admin.Role),
		"branch":     admin.Branch,
		"branchId":   admin.BranchID,
		"token_type": "access",
		"exp":        accessExp.Unix(),
		"iat":        now.Unix(),
	}).SignedString([]byte(s.Secret))
	if err != nil {
		return nil, err
	}

	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        admin.ID,
		"token_type": "refresh",
		"exp":        refreshExp.Unix(),
		"iat":        now.Unix(),
	}).SignedString([]byte(s.Secret))
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		AccessToken:  access,
		RefreshToken: refresh,
		Admin:        *admin,
		ExpiresAt:    accessExp,
	}, nil
}

func (s AuthService) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
