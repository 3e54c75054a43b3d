package service

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fitlg/fitlg/internal/model"
)

const (
	AuthCookieName          = "auth_token"
	PasswordResetCookieName = "password_reset_token"
	PasswordResetPath       = "/users/password-reset/"
)

// A session JWT must never open the password reset form and the other way round.
const (
	purposeSession       = "session"
	purposePasswordReset = "password_reset"
)

var ErrInvalidSession = errors.New("invalid token")

type claims struct {
	UserID  string `json:"user_id"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// GenerateJWT signs a session token for user and returns it with its expiry.
func (s *AuthService) GenerateJWT(user *model.User) (string, time.Time, error) {
	expiry := time.Now().Add(s.opts.SessionTTL)
	signed, err := s.sign(user.ID, purposeSession, expiry)
	return signed, expiry, err
}

// VerifyJWT returns the user id of a valid session token.
func (s *AuthService) VerifyJWT(token string) (string, error) {
	return s.verify(token, purposeSession)
}

func (s *AuthService) sign(userID, purpose string, expiry time.Time) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID:  userID,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
	})
	return token.SignedString([]byte(s.opts.Secret))
}

func (s *AuthService) verify(token, purpose string) (string, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return []byte(s.opts.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("parse jwt: %w", err)
	}
	if c.Purpose != purpose || c.UserID == "" {
		return "", ErrInvalidSession
	}
	return c.UserID, nil
}

func (s *AuthService) SetJWTCookie(w http.ResponseWriter, token string, expiry time.Time) {
	s.setCookie(w, AuthCookieName, "/", token, expiry)
}

func (s *AuthService) ClearJWTCookie(w http.ResponseWriter) {
	s.setCookie(w, AuthCookieName, "/", "", time.Unix(0, 0))
}

// SetPasswordResetCookie scopes the reset session to the reset form.
func (s *AuthService) SetPasswordResetCookie(w http.ResponseWriter, token string, expiry time.Time) {
	s.setCookie(w, PasswordResetCookieName, PasswordResetPath, token, expiry)
}

func (s *AuthService) ClearPasswordResetCookie(w http.ResponseWriter) {
	s.setCookie(w, PasswordResetCookieName, PasswordResetPath, "", time.Unix(0, 0))
}

func (s *AuthService) setCookie(w http.ResponseWriter, name, path, value string, expiry time.Time) {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  expiry,
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		c.MaxAge = -1
	}
	http.SetCookie(w, c)
}
