// Package auth issues and verifies auth tokens of labelkitd.
//
// Tokens are JWS signed with HS256, and sent by clients as
//
//	Authorization: Token <token>
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/opst/labelkit/pkg/api/types/classification"
	apierr "github.com/opst/labelkit/pkg/api/types/errors"
)

var ErrInvalidToken error = errors.New("invalid token")

const (
	issuer = "labelkitd"

	// key of echo.Context where the authenticated username is set.
	ContextKeyUser = "user"
)

type Issuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

type Option func(*Issuer) *Issuer

// WithClock replaces the clock deciding issue and expiry time.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) *Issuer {
		i.now = now
		return i
	}
}

// NewIssuer creates an Issuer signing tokens with key.
//
// Tokens expire after ttl.
func NewIssuer(key []byte, ttl time.Duration, opts ...Option) *Issuer {
	i := &Issuer{key: key, ttl: ttl, now: time.Now}
	for _, o := range opts {
		i = o(i)
	}
	return i
}

// Issue returns a new token for the user.
func (i *Issuer) Issue(username string) (string, error) {
	now := i.now()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(i.key)
}

// Verify verifies the token, and returns its username.
//
// # Returns
//
// - string: username which the token is issued for
//
// - error: ErrInvalidToken joined with the cause when the token is not acceptable.
func (i *Issuer) Verify(token string) (string, error) {
	claims := new(jwt.RegisteredClaims)
	_, err := jwt.ParseWithClaims(
		token, claims,
		func(*jwt.Token) (interface{}, error) { return i.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return "", errors.Join(ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: no subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}

// Verifier verifies tokens.
type Verifier interface {
	Verify(token string) (string, error)
}

// Middleware rejects requests without valid token.
//
// The username of the token is set to the context with ContextKeyUser.
func Middleware(v Verifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			scheme, token, ok := strings.Cut(c.Request().Header.Get(echo.HeaderAuthorization), " ")
			if !ok || !strings.EqualFold(scheme, "Token") || token == "" {
				return apierr.NewError(
					http.StatusUnauthorized,
					"Authentication credentials were not provided.",
					nil,
				)
			}
			username, err := v.Verify(strings.TrimSpace(token))
			if err != nil {
				return apierr.Unauthorized(err)
			}
			c.Set(ContextKeyUser, username)
			return next(c)
		}
	}
}

// Authenticator checks pairs of username and password.
type Authenticator interface {
	Authenticate(username string, password string) bool
}

type tokenIssuer interface {
	Issue(username string) (string, error)
}

// LoginHandler exchanges username and password for a token.
func LoginHandler(users Authenticator, issuer tokenIssuer) echo.HandlerFunc {
	return func(c echo.Context) error {
		creds := classification.Credentials{}
		if err := (&echo.DefaultBinder{}).BindBody(c, &creds); err != nil {
			return apierr.BadRequest("can not understand the request body", err)
		}
		if err := classification.Validate(creds); err != nil {
			fields := classification.FieldErrors{}
			if errors.As(err, &fields) {
				return apierr.Invalid(fields)
			}
			return apierr.InternalServerError(err)
		}
		if !users.Authenticate(creds.Username, creds.Password) {
			return apierr.Invalid(map[string][]string{
				apierr.NonFieldErrorsKey: {"Unable to log in with provided credentials."},
			})
		}

		token, err := issuer.Issue(creds.Username)
		if err != nil {
			return apierr.InternalServerError(err)
		}
		return c.JSON(http.StatusOK, classification.AuthToken{Token: token})
	}
}
