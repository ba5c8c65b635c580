package v1

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/agentgate/auth-service/internal/core/domain"
	"github.com/agentgate/auth-service/middleware"
)

// dummyPasswordHash is verified when the account does not exist, so a login
// against an unknown account code costs the same as a wrong password.
// It is a fake hash that matches no password.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// AuthService implements authentication business rules.
// It depends on the repository interface (injected via constructor) and
// MUST NOT access the database or SQL directly. It holds no mutable state:
// the hasher, codec and TTL are fixed at startup.
type AuthService struct {
	accounts domain.AccountRepository
	hasher   *Argon2idHasher
	tokens   *TokenCodec
	tokenTTL time.Duration
}

// NewAuthService creates a new AuthService with the given dependencies.
func NewAuthService(accounts domain.AccountRepository, hasher *Argon2idHasher, tokens *TokenCodec, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		accounts: accounts,
		hasher:   hasher,
		tokens:   tokens,
		tokenTTL: tokenTTL,
	}
}

// Register creates a new account with a hashed password.
// Returns ErrAccountExists when the account code is already taken.
func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.Account, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.register", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("account_code", req.AccountCode),
	))
	defer span.End()

	exists, err := s.accounts.ExistsByCode(ctx, req.AccountCode)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("check existing account: %w", err)
	}
	if exists {
		span.SetAttributes(attribute.Bool("registration.success", false))
		return nil, fmt.Errorf("register account %q: %w", req.AccountCode, ErrAccountExists)
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	username := req.Username
	if username == "" {
		username = domain.DefaultUsername
	}

	row, err := s.accounts.Create(ctx, req.AccountCode, username, passwordHash)
	if err != nil {
		span.RecordError(err)
		// Concurrent registration can slip past the exists check; the
		// unique constraint is the authority.
		if errors.Is(err, domain.ErrDuplicateAccount) {
			return nil, fmt.Errorf("register account %q: %w", req.AccountCode, ErrAccountExists)
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	span.SetAttributes(
		attribute.String("account.code", row.AccountCode),
		attribute.Bool("registration.success", true),
	)
	span.AddEvent("account.registered")

	return row.View(), nil
}

// Login verifies credentials and issues a signed access token.
// Unknown account and wrong password both yield ErrInvalidCredentials;
// the unknown-account path still runs a hash verification so the two are
// not distinguishable by timing.
func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (*domain.Session, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.login", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("account_code", req.AccountCode),
	))
	defer span.End()

	row, err := s.accounts.GetByCode(ctx, req.AccountCode)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query account %q: %w", req.AccountCode, err)
	}

	targetHash := dummyPasswordHash
	if row != nil {
		targetHash = row.PasswordHash
	}

	ok, verifyErr := s.hasher.Verify(req.Password, targetHash)
	if row == nil || verifyErr != nil || !ok {
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		return nil, fmt.Errorf("authenticate account %q: %w", req.AccountCode, ErrInvalidCredentials)
	}

	// Best-effort: a failed timestamp update must not fail the login.
	if updateErr := s.accounts.UpdateLastLogin(ctx, row.ID); updateErr != nil {
		span.RecordError(fmt.Errorf("update last_login: %w", updateErr))
	}

	token, expiresAt, err := s.tokens.Issue(row.AccountCode, s.tokenTTL)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("issue token: %w", err)
	}

	span.SetAttributes(
		attribute.String("account.code", row.AccountCode),
		attribute.Bool("auth.success", true),
	)
	span.AddEvent("account.authenticated")

	return &domain.Session{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		Account:     *row.View(),
	}, nil
}

// ResolveCurrentUser validates a presented token and loads the account it
// asserts. Every failure — bad signature, expiry, malformed token, or an
// account deleted after issuance — surfaces as ErrUnauthenticated.
func (s *AuthService) ResolveCurrentUser(ctx context.Context, token string) (*domain.Account, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.resolve_current_user", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	subject, err := s.tokens.Validate(token)
	if err != nil {
		span.SetAttributes(attribute.Bool("token.valid", false))
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	row, err := s.accounts.GetByCode(ctx, subject)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query account %q: %w", subject, err)
	}
	if row == nil {
		span.SetAttributes(attribute.Bool("token.valid", false))
		return nil, fmt.Errorf("account %q no longer exists: %w", subject, ErrUnauthenticated)
	}

	span.SetAttributes(
		attribute.String("account.code", row.AccountCode),
		attribute.Bool("token.valid", true),
	)

	return row.View(), nil
}
