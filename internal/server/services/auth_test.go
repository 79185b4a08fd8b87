package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/portfolio/internal/common"
	"github.com/dmitrijs2005/portfolio/internal/logging"
	"github.com/dmitrijs2005/portfolio/internal/server/auth"
	"github.com/dmitrijs2005/portfolio/internal/server/models"
	"github.com/dmitrijs2005/portfolio/internal/server/validation"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "admin123"
)

type authFixture struct {
	svc    *AuthService
	rm     *fakeRepoManager
	codec  *auth.TokenCodec
	hasher *auth.BcryptHasher
	mock   sqlmock.Sqlmock
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	db, mock := newSQLMockDB(t)
	rm := newFakeRepoManager()
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	codec, err := auth.NewTokenCodec([]byte("test-secret"))
	require.NoError(t, err)

	svc, err := NewAuthService(db, rm, hasher, codec, logging.Nop())
	require.NoError(t, err)

	return &authFixture{svc: svc, rm: rm, codec: codec, hasher: hasher, mock: mock}
}

func (f *authFixture) seedAdmin(t *testing.T) *models.Account {
	t.Helper()
	hash, err := f.hasher.Hash(adminPassword)
	require.NoError(t, err)
	a, err := f.rm.accounts.Create(context.Background(), &models.Account{Email: adminEmail, PasswordHash: hash})
	require.NoError(t, err)
	return a
}

func TestLogin_Success(t *testing.T) {
	f := newAuthFixture(t)
	admin := f.seedAdmin(t)

	s, err := f.svc.Login(context.Background(), validation.LoginInput{Email: adminEmail, Password: adminPassword})
	require.NoError(t, err)
	assert.Equal(t, admin.ID, s.Identity.AccountID)
	assert.Equal(t, adminEmail, s.Identity.Email)
	assert.WithinDuration(t, time.Now().Add(common.SessionTTL), s.ExpiresAt, time.Minute)

	claims, err := f.codec.Verify(s.Token)
	require.NoError(t, err)
	assert.Contains(t, f.rm.sessions.byID, claims.ID)
}

func TestLogin_UnknownEmailAndWrongPasswordLookAlike(t *testing.T) {
	f := newAuthFixture(t)
	f.seedAdmin(t)

	_, errUnknown := f.svc.Login(context.Background(), validation.LoginInput{Email: "ghost@example.com", Password: adminPassword})
	_, errWrong := f.svc.Login(context.Background(), validation.LoginInput{Email: adminEmail, Password: "wrong-password"})

	assert.ErrorIs(t, errUnknown, common.ErrorInvalidCredentials)
	assert.ErrorIs(t, errWrong, common.ErrorInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrong.Error())
	assert.Empty(t, f.rm.sessions.byID)
}

func TestLogin_EmailIsCaseSensitive(t *testing.T) {
	f := newAuthFixture(t)
	f.seedAdmin(t)

	_, err := f.svc.Login(context.Background(), validation.LoginInput{Email: "Admin@Example.com", Password: adminPassword})
	assert.ErrorIs(t, err, common.ErrorInvalidCredentials)
}

func TestLogin_MalformedStoredHash(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.rm.accounts.Create(context.Background(), &models.Account{Email: adminEmail, PasswordHash: "admin123"})
	require.NoError(t, err)

	_, err = f.svc.Login(context.Background(), validation.LoginInput{Email: adminEmail, Password: adminPassword})
	assert.ErrorIs(t, err, common.ErrorConfiguration)
	assert.NotErrorIs(t, err, common.ErrorInvalidCredentials)
}

func TestLogin_InvalidInput(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Login(context.Background(), validation.LoginInput{Email: "nope", Password: "123"})
	var verr *validation.Error
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 2)
}

func TestLogin_RepositoryFailure(t *testing.T) {
	f := newAuthFixture(t)
	f.rm.accounts.getErr = errors.New("connection reset")

	_, err := f.svc.Login(context.Background(), validation.LoginInput{Email: adminEmail, Password: adminPassword})
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestLogin_SessionStoreFailure(t *testing.T) {
	f := newAuthFixture(t)
	f.seedAdmin(t)
	f.rm.sessions.createErr = errors.New("disk full")

	_, err := f.svc.Login(context.Background(), validation.LoginInput{Email: adminEmail, Password: adminPassword})
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestLogin_PrunesExpiredSessions(t *testing.T) {
	f := newAuthFixture(t)
	f.seedAdmin(t)
	f.rm.sessions.byID["old"] = &models.Session{ID: "old", ExpiresAt: time.Now().Add(-time.Hour)}

	_, err := f.svc.Login(context.Background(), validation.LoginInput{Email: adminEmail, Password: adminPassword})
	require.NoError(t, err)
	assert.NotContains(t, f.rm.sessions.byID, "old")
	assert.Equal(t, 1, f.rm.sessions.pruned)
}

func TestAuthenticate(t *testing.T) {
	f := newAuthFixture(t)
	admin := f.seedAdmin(t)

	s, err := f.svc.Login(context.Background(), validation.LoginInput{Email: adminEmail, Password: adminPassword})
	require.NoError(t, err)

	id, err := f.svc.Authenticate(context.Background(), s.Token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, id.AccountID)
	assert.Equal(t, adminEmail, id.Email)
}

func TestAuthenticate_Failures(t *testing.T) {
	f := newAuthFixture(t)
	f.seedAdmin(t)

	_, err := f.svc.Authenticate(context.Background(), "garbage")
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	// A validly signed token whose session was never recorded.
	tok, _, err := f.codec.Issue(auth.Identity{AccountID: "acc", Email: adminEmail})
	require.NoError(t, err)
	_, err = f.svc.Authenticate(context.Background(), tok)
	assert.ErrorIs(t, err, common.ErrSessionRevoked)

	// Session belongs to a different account.
	tok, claims, err := f.codec.Issue(auth.Identity{AccountID: "acc", Email: adminEmail})
	require.NoError(t, err)
	f.rm.sessions.byID[claims.ID] = &models.Session{ID: claims.ID, AccountID: "other", ExpiresAt: claims.ExpiresAt.Time}
	_, err = f.svc.Authenticate(context.Background(), tok)
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	// Session row expired before the token did.
	tok, claims, err = f.codec.Issue(auth.Identity{AccountID: "acc", Email: adminEmail})
	require.NoError(t, err)
	f.rm.sessions.byID[claims.ID] = &models.Session{ID: claims.ID, AccountID: "acc", ExpiresAt: time.Now().Add(-time.Second)}
	_, err = f.svc.Authenticate(context.Background(), tok)
	assert.ErrorIs(t, err, common.ErrTokenExpired)

	f.rm.sessions.findErr = errors.New("db down")
	_, err = f.svc.Authenticate(context.Background(), tok)
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestLogout_RevokesToken(t *testing.T) {
	f := newAuthFixture(t)
	f.seedAdmin(t)

	s, err := f.svc.Login(context.Background(), validation.LoginInput{Email: adminEmail, Password: adminPassword})
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(context.Background(), s.Token))

	_, err = f.svc.Authenticate(context.Background(), s.Token)
	assert.ErrorIs(t, err, common.ErrSessionRevoked)

	assert.NoError(t, f.svc.Logout(context.Background(), ""))
	assert.NoError(t, f.svc.Logout(context.Background(), "not-a-token"))
}

func TestCreateAdmin_ReplacesExisting(t *testing.T) {
	f := newAuthFixture(t)
	old := f.seedAdmin(t)

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	a, err := f.svc.CreateAdmin(context.Background(), adminEmail, "new-password", "Admin")
	require.NoError(t, err)
	assert.NotEqual(t, old.ID, a.ID)
	assert.Equal(t, "Admin", a.Name)
	require.NoError(t, f.mock.ExpectationsWereMet())

	_, err = f.svc.Login(context.Background(), validation.LoginInput{Email: adminEmail, Password: adminPassword})
	assert.ErrorIs(t, err, common.ErrorInvalidCredentials)
	_, err = f.svc.Login(context.Background(), validation.LoginInput{Email: adminEmail, Password: "new-password"})
	assert.NoError(t, err)
}

func TestCreateAdmin_RollsBackOnFailure(t *testing.T) {
	f := newAuthFixture(t)
	f.rm.accounts.createErr = errors.New("unique violation")

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.CreateAdmin(context.Background(), adminEmail, "new-password", "")
	require.Error(t, err)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreateAdmin_Validation(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.CreateAdmin(context.Background(), "not-an-email", "short", "")
	var verr *validation.Error
	assert.True(t, errors.As(err, &verr))

	long := make([]byte, auth.MaxPasswordBytes+1)
	for i := range long {
		long[i] = 'x'
	}
	_, err = f.svc.CreateAdmin(context.Background(), adminEmail, string(long), "")
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "password", verr.Fields[0].Field)
}

func TestChangePassword(t *testing.T) {
	f := newAuthFixture(t)
	f.seedAdmin(t)

	before, err := f.svc.Login(context.Background(), validation.LoginInput{Email: adminEmail, Password: adminPassword})
	require.NoError(t, err)
	_, err = f.svc.Authenticate(context.Background(), before.Token)
	require.NoError(t, err)

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	require.NoError(t, f.svc.ChangePassword(context.Background(), adminEmail, "brand-new-pass"))
	require.NoError(t, f.mock.ExpectationsWereMet())

	_, err = f.svc.Authenticate(context.Background(), before.Token)
	assert.ErrorIs(t, err, common.ErrSessionRevoked, "sessions issued before the change are gone")
	assert.Empty(t, f.rm.sessions.byID)

	_, err = f.svc.Login(context.Background(), validation.LoginInput{Email: adminEmail, Password: "brand-new-pass"})
	assert.NoError(t, err)

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	err = f.svc.ChangePassword(context.Background(), "ghost@example.com", "brand-new-pass")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestChangePassword_RollsBackWhenSessionsCannotBeRevoked(t *testing.T) {
	f := newAuthFixture(t)
	f.seedAdmin(t)
	f.rm.sessions.deleteErr = errors.New("db down")

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	err := f.svc.ChangePassword(context.Background(), adminEmail, "brand-new-pass")
	require.Error(t, err)
	require.NoError(t, f.mock.ExpectationsWereMet())
}
