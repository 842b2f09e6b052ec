package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/yanqian/polyglot-faq/pkg/errors"
)

// Service issues and validates editor tokens.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (LoginResponse, error)
	ValidateToken(ctx context.Context, token string) (Claims, error)
}

type service struct {
	cfg     Config
	editors map[string]Editor
	logger  *slog.Logger
}

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// dummyHash keeps unknown usernames as slow as wrong passwords.
var dummyHash = []byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z6c6QGqW0S5PpN.3bCO0kYyK")

// NewService constructs a Service instance from the configured editors.
func NewService(cfg Config, logger *slog.Logger) Service {
	editors := make(map[string]Editor, len(cfg.Editors))
	for _, editor := range cfg.Editors {
		editors[normalizeUsername(editor.Username)] = editor
	}
	return &service{
		cfg:     cfg,
		editors: editors,
		logger:  logger.With("component", "auth.service"),
	}
}

func (s *service) Login(_ context.Context, req LoginRequest) (LoginResponse, error) {
	username := normalizeUsername(req.Username)
	if username == "" {
		return LoginResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "username cannot be empty", nil)
	}
	if strings.TrimSpace(req.Password) == "" {
		return LoginResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "password cannot be empty", nil)
	}
	editor, found := s.editors[username]
	if !found {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
		return LoginResponse{}, apperrors.Wrap(apperrors.CodeInvalidCredentials, "invalid username or password", nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(editor.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Info("editor login rejected", "username", username)
		return LoginResponse{}, apperrors.Wrap(apperrors.CodeInvalidCredentials, "invalid username or password", nil)
	}
	return s.buildLoginResponse(editor)
}

func (s *service) Refresh(_ context.Context, refreshToken string) (LoginResponse, error) {
	claims, err := s.parseToken(refreshToken)
	if err != nil {
		return LoginResponse{}, err
	}
	if claims.TokenType != tokenTypeRefresh {
		return LoginResponse{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token type mismatch", nil)
	}
	editor, found := s.editors[claims.Username]
	if !found {
		return LoginResponse{}, apperrors.Wrap(apperrors.CodeInvalidToken, "editor no longer configured", nil)
	}
	return s.buildLoginResponse(editor)
}

func (s *service) ValidateToken(_ context.Context, token string) (Claims, error) {
	if strings.TrimSpace(token) == "" {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token missing", nil)
	}
	claims, err := s.parseToken(token)
	if err != nil {
		return Claims{}, err
	}
	if claims.TokenType != tokenTypeAccess {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token type mismatch", nil)
	}
	if _, found := s.editors[claims.Username]; !found {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "editor no longer configured", nil)
	}
	return claims, nil
}

func (s *service) buildLoginResponse(editor Editor) (LoginResponse, error) {
	username := normalizeUsername(editor.Username)
	access, expiresAt, err := s.generateToken(username, tokenTypeAccess, s.cfg.TokenTTL)
	if err != nil {
		return LoginResponse{}, err
	}
	refresh, _, err := s.generateToken(username, tokenTypeRefresh, s.cfg.RefreshTokenTTL)
	if err != nil {
		return LoginResponse{}, err
	}
	return LoginResponse{
		Token:        access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
		Editor:       toView(editor),
	}, nil
}

func (s *service) generateToken(username, tokenType string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := tokenClaims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   username,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", time.Time{}, apperrors.Wrap("auth_error", "failed to sign token", err)
	}
	return signed, expiresAt, nil
}

func (s *service) parseToken(token string) (Claims, error) {
	options := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()}
	if s.cfg.Issuer != "" {
		options = append(options, jwt.WithIssuer(s.cfg.Issuer))
	}
	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return []byte(s.cfg.Secret), nil
	}, options...)
	if err != nil {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token validation failed", err)
	}
	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token invalid", nil)
	}
	return Claims{
		Username:  claims.Subject,
		TokenID:   claims.ID,
		TokenType: claims.TokenType,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func toView(editor Editor) EditorView {
	display := editor.DisplayName
	if display == "" {
		display = editor.Username
	}
	return EditorView{Username: normalizeUsername(editor.Username), DisplayName: display}
}

func normalizeUsername(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

type tokenClaims struct {
	jwt.RegisteredClaims
	TokenType string `json:"type"`
}
