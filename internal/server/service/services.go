package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"fundingintake/internal/server/config"
	"fundingintake/internal/server/metrics"
	"fundingintake/internal/shared/logging"
	"fundingintake/internal/shared/models"
	"fundingintake/internal/shared/passhash"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
)

// ValidationError lists the schema problems of a rejected submission.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid application: " + strings.Join(e.Problems, "; ")
}

type Repository interface {
	CreateApplication(ctx context.Context, rec models.ApplicationRecord) (models.ApplicationRecord, error)
	ListApplications(ctx context.Context) ([]models.ApplicationRecord, error)
	Ping(ctx context.Context) error
	Close() error
}

type Services struct {
	Applications *ApplicationsService
	Reviewers    *ReviewerAuthService
}

func NewServices(repo Repository, cfg config.Config, logger *zap.Logger) *Services {
	logger = logging.OrNop(logger)
	return &Services{
		Applications: &ApplicationsService{
			repo:   repo,
			logger: logger.Named("applications"),
			now:    time.Now,
		},
		Reviewers: &ReviewerAuthService{
			credential: passhash.Credential{Email: cfg.ReviewerEmail, Hash: cfg.ReviewerPasswordHash},
			secret:     []byte(cfg.JWTSecret),
			issuer:     cfg.JWTIssuer,
			ttl:        cfg.SessionDuration(),
			logger:     logger.Named("reviewers"),
			now:        time.Now,
		},
	}
}

// ApplicationsService validates and stores submitted applications.
type ApplicationsService struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

// Submit validates the raw JSON body and persists it. Client supplied id and
// created_at are discarded.
func (s *ApplicationsService) Submit(ctx context.Context, body []byte) (models.ApplicationRecord, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		metrics.SubmissionsTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return models.ApplicationRecord{}, &ValidationError{Problems: []string{"body: malformed JSON"}}
	}
	problems, err := validateDocument(doc, s.now())
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return models.ApplicationRecord{}, fmt.Errorf("validate application: %w", err)
	}
	if len(problems) > 0 {
		metrics.SubmissionsTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		s.logger.Info("application rejected", zap.Int("problems", len(problems)))
		return models.ApplicationRecord{}, &ValidationError{Problems: problems}
	}

	var rec models.ApplicationRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		metrics.SubmissionsTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return models.ApplicationRecord{}, &ValidationError{Problems: []string{"body: " + err.Error()}}
	}
	rec.ID = 0
	rec.CreatedAt = nil

	saved, err := s.repo.CreateApplication(ctx, rec)
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		s.logger.Error("store application", zap.Error(err))
		return models.ApplicationRecord{}, fmt.Errorf("store application: %w", err)
	}
	metrics.SubmissionsTotal.WithLabelValues(metrics.OutcomeOK).Inc()
	s.logger.Info("application stored", zap.Int64("id", saved.ID))
	return saved, nil
}

func (s *ApplicationsService) List(ctx context.Context) ([]models.ApplicationRecord, error) {
	list, err := s.repo.ListApplications(ctx)
	if err != nil {
		metrics.ListingsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		s.logger.Error("list applications", zap.Error(err))
		return nil, fmt.Errorf("list applications: %w", err)
	}
	metrics.ListingsTotal.WithLabelValues(metrics.OutcomeOK).Inc()
	return list, nil
}

// Ping reports whether the underlying store is reachable.
func (s *ApplicationsService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// ReviewerAuthService checks the configured reviewer credential and issues
// short-lived signed session tokens.
type ReviewerAuthService struct {
	credential passhash.Credential
	secret     []byte
	issuer     string
	ttl        time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// Enabled reports whether a reviewer credential is configured.
func (a *ReviewerAuthService) Enabled() bool {
	return a.credential.Configured()
}

func (a *ReviewerAuthService) Login(_ context.Context, email, password string) (models.ReviewerSession, error) {
	if !a.Enabled() || !a.credential.Matches(email, password) {
		metrics.ReviewerLoginsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		a.logger.Info("reviewer login rejected")
		return models.ReviewerSession{}, ErrInvalidCredentials
	}
	now := a.now()
	expires := now.Add(a.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   email,
		Issuer:    a.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		metrics.ReviewerLoginsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return models.ReviewerSession{}, fmt.Errorf("sign session: %w", err)
	}
	metrics.ReviewerLoginsTotal.WithLabelValues(metrics.OutcomeOK).Inc()
	a.logger.Info("reviewer logged in")
	return models.ReviewerSession{Token: signed, ExpiresAt: expires.UTC()}, nil
}

// ParseToken verifies a session token and returns its subject.
func (a *ReviewerAuthService) ParseToken(_ context.Context, token string) (string, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(a.issuer),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
