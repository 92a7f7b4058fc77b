package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/shoplite/shoplite/internal/events"
	"github.com/shoplite/shoplite/internal/hash"
	"github.com/shoplite/shoplite/internal/logging"
	"github.com/shoplite/shoplite/internal/models"
	"github.com/shoplite/shoplite/internal/repo"
	"github.com/shoplite/shoplite/internal/tokens"
)

type AuthService struct {
	Repo      *repo.GormRepo
	Events    events.Publisher
	JWTSecret []byte
	TokenTTL  time.Duration
}

type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
}

func (s *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register", "username", username)

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register_failed", "reason", "cannot hash password", "error", err)
		return nil, err
	}

	user := models.User{
		Username:     username,
		PasswordHash: pwHash,
	}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExists) {
			l.Warn("register_failed", "reason", "username taken")
			return nil, fmt.Errorf("%w: username already taken", ErrConflict)
		}
		l.Error("register_failed", "error", err)
		return nil, err
	}

	s.publish(ctx, events.TopicUserEvents, strconv.FormatUint(uint64(user.ID), 10), map[string]any{
		"type":     "user_registered",
		"user_id":  user.ID,
		"username": user.Username,
	})

	l.Info("register_success", "user_id", user.ID)
	return &user, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	user, err := s.Repo.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("login_failed", "reason", "unknown username")
			return nil, fmt.Errorf("%w: invalid username or password", ErrUnauthorized)
		}
		l.Error("login_failed", "error", err)
		return nil, err
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "reason", "password mismatch")
		return nil, fmt.Errorf("%w: invalid username or password", ErrUnauthorized)
	}

	accessToken, exp, err := tokens.Sign(user.ID, user.Username, s.JWTSecret, s.TokenTTL)
	if err != nil {
		l.Error("login_failed", "reason", "cannot sign token", "error", err)
		return nil, err
	}

	s.publish(ctx, events.TopicUserEvents, strconv.FormatUint(uint64(user.ID), 10), map[string]any{
		"type":     "user_logged_in",
		"user_id":  user.ID,
		"username": user.Username,
	})

	l.Info("login_success", "user_id", user.ID)
	return &LoginResult{AccessToken: accessToken, ExpiresAt: exp}, nil
}

// CurrentUser resolves the user a raw bearer token was issued for. Any parse,
// signature or expiry failure surfaces as ErrUnauthorized.
func (s *AuthService) CurrentUser(ctx context.Context, rawToken string) (*models.User, error) {
	claims, err := tokens.Parse(rawToken, s.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid or expired token", ErrUnauthorized)
	}

	id, err := claims.UserID()
	if err != nil {
		return nil, fmt.Errorf("%w: invalid token subject", ErrUnauthorized)
	}

	user, err := s.Repo.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", ErrUnauthorized)
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) publish(ctx context.Context, topic, key string, event map[string]any) {
	if s.Events == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Events.Publish(pubCtx, topic, key, event); err != nil {
		logging.FromContext(ctx).Error("event_publish_failed", "topic", topic, "error", err)
	}
}
