package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/kbukum/filmotheque/auth"
	"github.com/kbukum/filmotheque/auth/jwt"
	"github.com/kbukum/filmotheque/auth/password"
	apperrors "github.com/kbukum/filmotheque/errors"
	"github.com/kbukum/filmotheque/logger"
	"github.com/kbukum/filmotheque/observability"
	"github.com/kbukum/filmotheque/resource"
	"github.com/kbukum/filmotheque/validation"
)

// Flow names used for spans and metrics.
const (
	FlowRegister = "register"
	FlowLogin    = "login"
	FlowGate     = "gate"
)

// RegisterInput is the registration request body.
type RegisterInput struct {
	Courriel  string     `json:"courriel" validate:"required,email,max=254"`
	Mdp       string     `json:"mdp" validate:"required,strongpassword"`
	Privilege *Privilege `json:"privilege" validate:"required"`
}

// LoginInput is the login request body.
type LoginInput struct {
	Courriel string `json:"courriel" validate:"required"`
	Mdp      string `json:"mdp" validate:"required"`
}

// Session is the login response.
type Session struct {
	Jeton    string `json:"jeton"`
	Role     string `json:"role"`
	Courriel string `json:"courriel"`
}

// TokenService is the session token issuer and verifier.
type TokenService = jwt.Service[*SessionClaims]

// NewTokenService builds the session token service from cfg.
func NewTokenService(cfg jwt.Config) (*TokenService, error) {
	return jwt.NewService(&cfg, func() *SessionClaims { return &SessionClaims{} })
}

// Service runs the registration, login and token resolution flows.
type Service struct {
	repo    *Repository
	hasher  password.Hasher
	tokens  *TokenService
	metrics *observability.Metrics
	log     *logger.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics records flow outcomes on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the service logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.log = l.WithComponent("account") }
}

// NewService creates the account service.
func NewService(repo *Repository, hasher password.Hasher, tokens *TokenService, opts ...Option) *Service {
	s := &Service{repo: repo, hasher: hasher, tokens: tokens, log: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an account after checking the email is not taken. The
// check and the insert are separate store calls, so two concurrent
// registrations of one email can both succeed.
func (s *Service) Register(ctx context.Context, in RegisterInput) (acc *Account, err error) {
	ctx, op := observability.StartOperation(ctx, FlowRegister, s.metrics)
	outcome := observability.OutcomeSuccess
	defer func() { op.End(ctx, outcome, err) }()

	in.Courriel = NormalizeCourriel(in.Courriel)
	if err := validation.Validate(in); err != nil {
		outcome = observability.OutcomeRejected
		return nil, err
	}

	existing, err := s.repo.FindByCourriel(ctx, in.Courriel)
	if err != nil {
		outcome = observability.OutcomeError
		return nil, apperrors.DatabaseError(err)
	}
	if len(existing) > 0 {
		outcome = observability.OutcomeRejected
		return nil, apperrors.AlreadyExists("user")
	}

	hash, err := s.hasher.Hash(in.Mdp)
	if err != nil {
		outcome = observability.OutcomeError
		return nil, apperrors.Internal(fmt.Errorf("hash secret: %w", err))
	}

	acc = &Account{Courriel: in.Courriel, SecretHash: hash, Privilege: int(*in.Privilege)}
	if err := s.repo.Create(ctx, acc); err != nil {
		outcome = observability.OutcomeError
		return nil, apperrors.DatabaseError(err)
	}
	acc.SecretHash = ""
	op.SetAccount(acc.ID)

	s.log.Info("Account registered", logger.Fields(logger.FieldAccountID, acc.ID, "privilege", acc.Privilege))
	return acc, nil
}

// Login verifies credentials and issues a session token. Unknown email,
// duplicate email and wrong password all return the same InvalidCredentials
// error.
func (s *Service) Login(ctx context.Context, in LoginInput) (sess *Session, err error) {
	ctx, op := observability.StartOperation(ctx, FlowLogin, s.metrics)
	outcome := observability.OutcomeSuccess
	defer func() { op.End(ctx, outcome, err) }()

	in.Courriel = NormalizeCourriel(in.Courriel)
	if err := validation.Validate(in); err != nil {
		outcome = observability.OutcomeRejected
		return nil, err
	}

	found, err := s.repo.FindByCourriel(ctx, in.Courriel)
	if err != nil {
		outcome = observability.OutcomeError
		return nil, apperrors.DatabaseError(err)
	}
	if len(found) != 1 {
		outcome = observability.OutcomeRejected
		s.log.Debug("Login rejected", logger.Fields("reason", "account count", "count", len(found)))
		return nil, apperrors.InvalidCredentials()
	}

	acc := found[0]
	hash := acc.SecretHash
	acc.SecretHash = ""
	if err := s.hasher.Verify(in.Mdp, hash); err != nil {
		outcome = observability.OutcomeRejected
		if !errors.Is(err, password.ErrMismatch) {
			s.log.Warn("Stored secret hash could not be verified", logger.Fields(logger.FieldAccountID, acc.ID, "error", err.Error()))
		}
		return nil, apperrors.InvalidCredentials()
	}

	token, err := s.tokens.GenerateAccess(&SessionClaims{Courriel: acc.Courriel, ID: acc.ID})
	if err != nil {
		outcome = observability.OutcomeError
		return nil, apperrors.Internal(err)
	}
	op.SetAccount(acc.ID)

	return &Session{Jeton: token, Role: acc.Role(), Courriel: acc.Courriel}, nil
}

// Resolve verifies a session token and loads its account. Token failures
// and deleted accounts wrap auth.ErrUnauthenticated; store failures are
// returned as is.
func (s *Service) Resolve(ctx context.Context, token string) (acc *Account, err error) {
	ctx, op := observability.StartOperation(ctx, FlowGate, s.metrics)
	outcome := observability.OutcomeSuccess
	defer func() { op.End(ctx, outcome, err) }()

	claims, err := s.tokens.Parse(token)
	if err != nil {
		outcome = observability.OutcomeRejected
		return nil, fmt.Errorf("%w: %w", auth.ErrUnauthenticated, err)
	}

	acc, err = s.repo.Get(ctx, claims.ID)
	if errors.Is(err, resource.ErrNotFound) {
		outcome = observability.OutcomeRejected
		return nil, fmt.Errorf("%w: account %s no longer exists", auth.ErrUnauthenticated, claims.ID)
	}
	if err != nil {
		outcome = observability.OutcomeError
		return nil, err
	}
	acc.SecretHash = ""
	op.SetAccount(acc.ID)
	return acc, nil
}

// ValidateToken implements auth.TokenValidator for the auth middleware.
func (s *Service) ValidateToken(ctx context.Context, token string) (any, error) {
	return s.Resolve(ctx, token)
}

var _ auth.TokenValidator = (*Service)(nil)
