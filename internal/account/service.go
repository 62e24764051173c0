package account

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/fittrack/auth/password"
	"github.com/kbukum/fittrack/auth/session"
	apperrors "github.com/kbukum/fittrack/errors"
	"github.com/kbukum/fittrack/logger"
	"github.com/kbukum/fittrack/observability"
	"github.com/kbukum/fittrack/util"
	"github.com/kbukum/fittrack/validation"
)

// Sessions issues and revokes session tokens. *session.Manager satisfies it.
type Sessions interface {
	Issue(subjectID, subjectEmail string) (string, *session.Claims, error)
	Revoke(ctx context.Context, id session.Identity) error
}

// RegisterInput is the body of a registration request.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required"`
}

// LoginInput is the body of a login request.
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ProfileInput is the body of a profile update.
type ProfileInput struct {
	Age             int     `json:"age" validate:"gte=1,lte=130"`
	Weight          float64 `json:"weight" validate:"gt=0"`
	PrimaryGoal     string  `json:"primaryGoal" validate:"max=100"`
	ExperienceLevel string  `json:"experienceLevel" validate:"max=50"`
}

// Service implements registration, login, logout and profile management.
type Service struct {
	store    Store
	hasher   password.Hasher
	sessions Sessions
	log      *logger.Logger
	metrics  *observability.Metrics
}

// NewService wires a Service.
func NewService(store Store, hasher password.Hasher, sessions Sessions, log *logger.Logger) *Service {
	return &Service{
		store:    store,
		hasher:   hasher,
		sessions: sessions,
		log:      log.WithComponent("account"),
		metrics:  observability.DefaultMetrics(),
	}
}

// Register creates an account. The email is compared exactly as given,
// after trimming surrounding whitespace.
func (s *Service) Register(ctx context.Context, in RegisterInput) (_ *User, err error) {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, observability.SpanAccountRegister)
	defer func() { s.finish(ctx, span, observability.SpanAccountRegister, start, err) }()

	in.Name = util.SanitizeString(in.Name)
	in.Email = util.SanitizeString(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	if _, err := s.store.FindByEmail(ctx, in.Email); err == nil {
		return nil, apperrors.DuplicateEmail()
	} else if !apperrors.HasCode(err, apperrors.ErrCodeNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	u := &User{Name: in.Name, Email: in.Email, PasswordHash: hash}
	if err := s.store.Create(ctx, u); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String(observability.AttrUserID, u.ID))
	s.log.WithContext(ctx).Info("User registered", logger.Fields(logger.FieldUserID, u.ID))
	return u, nil
}

// Login checks the credentials and issues a session token.
func (s *Service) Login(ctx context.Context, in LoginInput) (_ *Session, err error) {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, observability.SpanAccountLogin)
	defer func() { s.finish(ctx, span, observability.SpanAccountLogin, start, err) }()

	in.Email = util.SanitizeString(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	u, err := s.store.FindByEmail(ctx, in.Email)
	if apperrors.HasCode(err, apperrors.ErrCodeNotFound) {
		return nil, apperrors.UserNotFound()
	}
	if err != nil {
		return nil, err
	}

	if !s.hasher.Verify(in.Password, u.PasswordHash) {
		s.log.WithContext(ctx).Warn("Login rejected", logger.Fields(
			logger.FieldUserID, u.ID,
			logger.FieldReason, string(apperrors.ErrCodeInvalidCredentials),
		))
		return nil, apperrors.InvalidCredentials()
	}

	token, _, err := s.sessions.Issue(u.ID, u.Email)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	span.SetAttributes(attribute.String(observability.AttrUserID, u.ID))
	return &Session{Token: token, User: u.Public()}, nil
}

// Logout revokes the token of id. A registry failure is reported as
// STORE_UNAVAILABLE with status 500: the token is still valid.
func (s *Service) Logout(ctx context.Context, id session.Identity) error {
	if err := s.sessions.Revoke(ctx, id); err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok && appErr.Code == apperrors.ErrCodeStoreUnavailable {
			return appErr.WithStatus(http.StatusInternalServerError)
		}
		return apperrors.StoreUnavailable(err).WithStatus(http.StatusInternalServerError)
	}
	s.log.WithContext(ctx).Info("User logged out", logger.Fields(logger.FieldUserID, id.SubjectID))
	return nil
}

// Profile returns the profile of userID.
func (s *Service) Profile(ctx context.Context, userID string) (*Profile, error) {
	return s.store.GetProfile(ctx, userID)
}

// SaveProfile creates or replaces the profile of userID.
func (s *Service) SaveProfile(ctx context.Context, userID string, in ProfileInput) (*Profile, error) {
	in.PrimaryGoal = util.SanitizeString(in.PrimaryGoal)
	in.ExperienceLevel = util.SanitizeString(in.ExperienceLevel)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	return s.store.UpsertProfile(ctx, &Profile{
		UserID:          userID,
		Age:             in.Age,
		Weight:          in.Weight,
		PrimaryGoal:     in.PrimaryGoal,
		ExperienceLevel: in.ExperienceLevel,
	})
}

func (s *Service) finish(ctx context.Context, span trace.Span, op string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if appErr, ok := apperrors.AsAppError(err); ok {
			outcome = string(appErr.Code)
		}
		s.metrics.RecordError(ctx, outcome, "account")
	}
	observability.EndSpan(span, outcome, err)
	s.metrics.RecordOperation(ctx, op, outcome, time.Since(start))
}
