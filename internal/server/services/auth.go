// Package services contains server-side business logic. This file implements
// AuthService: password login, session issue and revocation, token
// authentication, and admin account provisioning.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/portfolio/internal/common"
	"github.com/dmitrijs2005/portfolio/internal/dbx"
	"github.com/dmitrijs2005/portfolio/internal/logging"
	"github.com/dmitrijs2005/portfolio/internal/server/auth"
	"github.com/dmitrijs2005/portfolio/internal/server/models"
	"github.com/dmitrijs2005/portfolio/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/portfolio/internal/server/validation"
)

// PasswordHasher hashes and verifies account passwords.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) (bool, error)
}

// Session is the outcome of a successful login.
type Session struct {
	Token     string
	Identity  auth.Identity
	ExpiresAt time.Time
}

type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      PasswordHasher
	codec       *auth.TokenCodec
	logger      logging.Logger
	now         func() time.Time

	// dummyHash is verified against when the email is unknown so both
	// failure paths cost one bcrypt comparison.
	dummyHash string
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, hasher PasswordHasher,
	codec *auth.TokenCodec, logger logging.Logger) (*AuthService, error) {
	dummy, err := hasher.Hash("portfolio-timing-equalizer")
	if err != nil {
		return nil, fmt.Errorf("prepare hasher: %w", err)
	}
	return &AuthService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		codec:       codec,
		logger:      logger.With("module", "auth"),
		now:         time.Now,
		dummyHash:   dummy,
	}, nil
}

// Login checks the credentials and opens a new session. Unknown email and
// wrong password both yield common.ErrorInvalidCredentials; a stored hash
// that is not bcrypt yields an error wrapping common.ErrorConfiguration.
func (s *AuthService) Login(ctx context.Context, in validation.LoginInput) (*Session, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}

	account, err := s.repomanager.Accounts(s.db).GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_, _ = s.hasher.Verify(in.Password, s.dummyHash)
			return nil, common.ErrorInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	ok, err := s.hasher.Verify(in.Password, account.PasswordHash)
	if err != nil {
		s.logger.Error(ctx, "stored password hash is unusable", "account", account.ID, "error", err)
		return nil, err
	}
	if !ok {
		return nil, common.ErrorInvalidCredentials
	}

	identity := auth.Identity{AccountID: account.ID, Email: account.Email}
	token, claims, err := s.codec.Issue(identity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	sessions := s.repomanager.Sessions(s.db)
	if err := sessions.Create(ctx, &models.Session{
		ID:        claims.ID,
		AccountID: account.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	if n, err := sessions.DeleteExpired(ctx, s.now()); err != nil {
		s.logger.Warn(ctx, "pruning expired sessions failed", "error", err)
	} else if n > 0 {
		s.logger.Debug(ctx, "pruned expired sessions", "count", n)
	}

	s.logger.Info(ctx, "login", "account", account.ID)
	return &Session{Token: token, Identity: identity, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Authenticate resolves a token to the identity it was issued for. The token
// must verify and its session must still exist and be unexpired.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.Identity, error) {
	claims, err := s.codec.Verify(token)
	if err != nil {
		return nil, err
	}

	session, err := s.repomanager.Sessions(s.db).Find(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrSessionRevoked
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	if session.AccountID != claims.Subject {
		return nil, common.ErrInvalidToken
	}
	if !session.ExpiresAt.After(s.now()) {
		return nil, common.ErrTokenExpired
	}

	id := claims.Identity()
	return &id, nil
}

// Logout revokes the session behind token. Tokens that no longer verify
// have nothing to revoke.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := s.codec.Verify(token)
	if err != nil {
		return nil
	}
	if err := s.repomanager.Sessions(s.db).Delete(ctx, claims.ID); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	s.logger.Info(ctx, "logout", "account", claims.Subject)
	return nil
}

// CreateAdmin provisions the admin account, replacing any account with the
// same email (and with it that account's sessions).
func (s *AuthService) CreateAdmin(ctx context.Context, email, password, name string) (*models.Account, error) {
	if err := validation.Struct(&validation.LoginInput{Email: email, Password: password}); err != nil {
		return nil, err
	}
	hash, err := s.hashPassword(password)
	if err != nil {
		return nil, err
	}

	var account *models.Account
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)
		if err := repo.DeleteByEmail(ctx, email); err != nil {
			return err
		}
		var err error
		account, err = repo.Create(ctx, &models.Account{Email: email, PasswordHash: hash, Name: name})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("error creating admin: %w", err)
	}

	s.logger.Info(ctx, "admin account created", "account", account.ID)
	return account, nil
}

// ChangePassword replaces the password of the account with the given email
// and ends every session the account holds.
func (s *AuthService) ChangePassword(ctx context.Context, email, password string) error {
	if err := validation.Struct(&validation.LoginInput{Email: email, Password: password}); err != nil {
		return err
	}
	hash, err := s.hashPassword(password)
	if err != nil {
		return err
	}

	var (
		account *models.Account
		revoked int64
	)
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)
		var err error
		if account, err = repo.GetByEmail(ctx, email); err != nil {
			return err
		}
		if err := repo.UpdatePassword(ctx, account.ID, hash); err != nil {
			return err
		}
		revoked, err = s.repomanager.Sessions(tx).DeleteByAccount(ctx, account.ID)
		return err
	})
	if err != nil {
		return fmt.Errorf("error changing password: %w", err)
	}

	s.logger.Info(ctx, "password changed", "account", account.ID, "sessions_revoked", revoked)
	return nil
}

func (s *AuthService) hashPassword(password string) (string, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return "", validation.NewError("password", err.Error())
		}
		return "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return hash, nil
}
