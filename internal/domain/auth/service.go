package auth

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

type StoreAPI interface {
	FindActiveUserByEmail(ctx context.Context, email, status string) (AuthUser, error)
	UpdateLastLogin(ctx context.Context, userID string) error
	HasPermission(ctx context.Context, roleID, permission string) (bool, error)
}

type Service struct {
	store    StoreAPI
	secret   string
	tokenTTL time.Duration
}

func NewService(store StoreAPI, secret string, tokenTTL time.Duration) *Service {
	return &Service{store: store, secret: secret, tokenTTL: tokenTTL}
}

func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	user, err := s.store.FindActiveUserByEmail(ctx, strings.TrimSpace(email), UserStatusActive)
	if err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err := CheckPassword(user.Password, password); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := GenerateToken(s.secret, Claims{
		UserID:    user.ID,
		CompanyID: user.CompanyID,
		RoleID:    user.RoleID,
		RoleName:  user.RoleName,
	}, s.tokenTTL)
	if err != nil {
		return LoginResult{}, err
	}

	if err := s.store.UpdateLastLogin(ctx, user.ID); err != nil {
		slog.Warn("update last_login failed", "userId", user.ID, "err", err)
	}

	return LoginResult{
		Token: token,
		User: map[string]string{
			"id":        user.ID,
			"companyId": user.CompanyID,
			"roleId":    user.RoleID,
			"role":      user.RoleName,
			"fullName":  user.FullName,
		},
	}, nil
}

func (s *Service) HasPermission(ctx context.Context, roleID, permission string) (bool, error) {
	return s.store.HasPermission(ctx, roleID, permission)
}
