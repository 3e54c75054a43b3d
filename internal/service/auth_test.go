package service

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitlg/fitlg/internal/model"
	"github.com/fitlg/fitlg/internal/repository"
	"github.com/fitlg/fitlg/internal/validation"
)

func (e *testEnv) tokenFor(t *testing.T, userID string, tokenType model.TokenType) string {
	t.Helper()

	var token string
	err := e.db.GetContext(context.Background(), &token,
		`SELECT token FROM tokens WHERE user_id = $1 AND type = $2`, userID, tokenType)
	require.NoError(t, err)
	return token
}

func TestAuthService_RegisterAndActivate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.auth.Register(ctx, RegisterInput{
		Username:      "athlete",
		Email:         "Athlete@Example.com",
		Password:      testPassword,
		PasswordCheck: testPassword,
	})
	require.NoError(t, err)
	assert.False(t, user.IsActive)
	assert.False(t, user.IsAdmin)
	assert.Equal(t, "athlete@example.com", user.Email)

	_, err = env.auth.Login(ctx, "athlete", testPassword)
	assert.ErrorIs(t, err, ErrUserInactive)

	_, err = env.auth.Activate(ctx, user.ID, "not-the-token")
	assert.ErrorIs(t, err, ErrInvalidLink)

	token := env.tokenFor(t, user.ID, model.TokenTypeAccountActivate)
	activated, err := env.auth.Activate(ctx, user.ID, token)
	require.NoError(t, err)
	assert.True(t, activated.IsActive)

	_, err = env.auth.Activate(ctx, user.ID, token)
	assert.ErrorIs(t, err, ErrInvalidLink)

	loggedIn, err := env.auth.Login(ctx, " athlete ", testPassword)
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	_, err = env.auth.Login(ctx, "athlete", "wrong-password-1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.auth.Login(ctx, "nobody", testPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_RegisterRemovesUserWhenEmailFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	in := RegisterInput{
		Username:      "unlucky",
		Email:         "unlucky@example.com",
		Password:      testPassword,
		PasswordCheck: testPassword,
	}

	unconfigured := NewEmailService("", "noreply@example.com", "http://localhost:8090", "fitlg", false)
	auth := NewAuthService(env.users, repository.NewTokenRepository(env.db), unconfigured, testAuthOptions("test-secret"))

	_, err := auth.Register(ctx, in)
	assert.ErrorIs(t, err, ErrEmailNotConfigured)

	_, err = env.users.ByUsername(ctx, "unlucky")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	user, err := env.auth.Register(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "unlucky", user.Username)
}

func TestAuthService_RegisterRejects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	valid := func() RegisterInput {
		return RegisterInput{
			Username:      "newcomer",
			Email:         "newcomer@example.com",
			Password:      testPassword,
			PasswordCheck: testPassword,
		}
	}

	_, err := env.auth.Register(ctx, valid())
	require.NoError(t, err)

	t.Run("username taken", func(t *testing.T) {
		in := valid()
		in.Email = "someone.else@example.com"
		_, err := env.auth.Register(ctx, in)
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("email taken", func(t *testing.T) {
		in := valid()
		in.Username = "someone_else"
		in.Email = "NewComer@example.com"
		_, err := env.auth.Register(ctx, in)
		assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	})

	t.Run("invalid email", func(t *testing.T) {
		in := valid()
		in.Email = "not-an-email"
		_, err := env.auth.Register(ctx, in)
		assert.ErrorIs(t, err, ErrInvalidEmail)
	})

	t.Run("passwords differ", func(t *testing.T) {
		in := valid()
		in.PasswordCheck = testPassword + "!"
		_, err := env.auth.Register(ctx, in)
		assert.ErrorIs(t, err, validation.ErrPasswordMismatch)
	})

	t.Run("weak password", func(t *testing.T) {
		in := valid()
		in.Password, in.PasswordCheck = "short", "short"
		_, err := env.auth.Register(ctx, in)
		var verr *validation.Error
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("bad username", func(t *testing.T) {
		in := valid()
		in.Username = "no spaces"
		_, err := env.auth.Register(ctx, in)
		var verr *validation.Error
		assert.ErrorAs(t, err, &verr)
	})
}

func TestAuthService_PasswordReset(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, false)

	assert.ErrorIs(t, env.auth.SendPasswordReset(ctx, "nobody@example.com"), ErrNoAccountForEmail)
	assert.ErrorIs(t, env.auth.SendPasswordReset(ctx, "nope"), ErrInvalidEmail)

	require.NoError(t, env.auth.SendPasswordReset(ctx, user.Email))
	token := env.tokenFor(t, user.ID, model.TokenTypePasswordReset)

	_, _, err := env.auth.VerifyPasswordReset(ctx, user.ID, "bogus")
	assert.ErrorIs(t, err, ErrInvalidLink)

	session, expiry, err := env.auth.VerifyPasswordReset(ctx, user.ID, token)
	require.NoError(t, err)
	assert.True(t, expiry.After(time.Now()))

	_, _, err = env.auth.VerifyPasswordReset(ctx, user.ID, token)
	assert.ErrorIs(t, err, ErrInvalidLink)

	_, err = env.auth.ResetPassword(ctx, session, "N3w-Strong-Pass", "N3w-Strong-Pazz")
	assert.ErrorIs(t, err, validation.ErrPasswordMismatch)

	_, err = env.auth.ResetPassword(ctx, session, "N3w-Strong-Pass", "N3w-Strong-Pass")
	require.NoError(t, err)

	_, err = env.auth.Login(ctx, user.Username, testPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = env.auth.Login(ctx, user.Username, "N3w-Strong-Pass")
	assert.NoError(t, err)
}

func TestAuthService_SendPasswordResetReplacesOldLinks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, false)

	require.NoError(t, env.auth.SendPasswordReset(ctx, user.Email))
	first := env.tokenFor(t, user.ID, model.TokenTypePasswordReset)
	require.NoError(t, env.auth.SendPasswordReset(ctx, user.Email))
	second := env.tokenFor(t, user.ID, model.TokenTypePasswordReset)

	assert.NotEqual(t, first, second)
	_, _, err := env.auth.VerifyPasswordReset(ctx, user.ID, first)
	assert.ErrorIs(t, err, ErrInvalidLink)
}

func TestAuthService_JWTPurposes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, false)

	session, expiry, err := env.auth.GenerateJWT(user)
	require.NoError(t, err)
	assert.True(t, expiry.After(time.Now()))

	userID, err := env.auth.VerifyJWT(session)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	_, err = env.auth.ResetPassword(ctx, session, "N3w-Strong-Pass", "N3w-Strong-Pass")
	assert.ErrorIs(t, err, ErrInvalidLink)

	require.NoError(t, env.auth.SendPasswordReset(ctx, user.Email))
	reset, _, err := env.auth.VerifyPasswordReset(ctx, user.ID, env.tokenFor(t, user.ID, model.TokenTypePasswordReset))
	require.NoError(t, err)

	_, err = env.auth.VerifyJWT(reset)
	assert.ErrorIs(t, err, ErrInvalidSession)

	other := NewAuthService(nil, nil, nil, testAuthOptions("another-secret"))
	_, err = other.VerifyJWT(session)
	assert.Error(t, err)

	_, err = env.auth.VerifyJWT("garbage")
	assert.Error(t, err)
}

func TestAuthService_Cookies(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.auth.SetPasswordResetCookie(rec, "signed", time.Now().Add(time.Minute))
	env.auth.SetJWTCookie(rec, "session", time.Now().Add(time.Hour))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)
	assert.Equal(t, PasswordResetCookieName, cookies[0].Name)
	assert.Equal(t, PasswordResetPath, cookies[0].Path)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, AuthCookieName, cookies[1].Name)
	assert.Equal(t, "/", cookies[1].Path)
	assert.False(t, cookies[1].Secure)
}
