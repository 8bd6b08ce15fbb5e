package http

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"pharmadelivery/internal/core/domain/model/order"
	"pharmadelivery/internal/pkg/errs"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const principalContextKey = "principal"

var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrTokenIsMissing      = errors.New("bearer token is required")
	ErrSigningMethodIsBad  = errors.New("unexpected signing method")
	ErrJWTSecretIsRequired = errs.NewValueIsRequiredError("jwtSecret")
)

// Principal is the authenticated caller.
type Principal struct {
	Subject string
	Actor   order.Actor
}

// Claims is the access token payload. Role holds an order.Actor value.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator validates HS256 bearer tokens.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) (Authenticator, error) {
	if strings.TrimSpace(secret) == "" {
		return Authenticator{}, ErrJWTSecretIsRequired
	}
	return Authenticator{secret: []byte(secret)}, nil
}

// IssueToken signs a token for subject acting as role.
func (a Authenticator) IssueToken(subject string, role order.Actor, ttl time.Duration, now time.Time) (string, error) {
	if err := role.Validate(); err != nil {
		return "", err
	}
	claims := Claims{
		Role: role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func (a Authenticator) Parse(raw string) (Principal, error) {
	tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, ErrSigningMethodIsBad
		}
		return a.secret, nil
	})
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid || claims.Subject == "" {
		return Principal{}, fmt.Errorf("%w: invalid claims", ErrUnauthorized)
	}
	actor, err := order.ParseActor(strings.ToLower(claims.Role))
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	return Principal{Subject: claims.Subject, Actor: actor}, nil
}

// Middleware resolves the caller when a token is presented. Requests without
// a token pass through anonymously; a bad token is rejected with 401.
// EventSource clients cannot set headers, so the access_token query
// parameter is accepted too.
func (a Authenticator) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := bearerToken(c)
			if err != nil {
				return writeError(c, err)
			}
			if raw == "" {
				return next(c)
			}

			p, err := a.Parse(raw)
			if err != nil {
				return writeError(c, err)
			}
			c.Set(principalContextKey, p)
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) (string, error) {
	if authz := c.Request().Header.Get(echo.HeaderAuthorization); authz != "" {
		parts := strings.SplitN(authz, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", fmt.Errorf("%w: invalid authorization header", ErrUnauthorized)
		}
		return strings.TrimSpace(parts[1]), nil
	}
	return strings.TrimSpace(c.QueryParam("access_token")), nil
}

func principalFrom(c echo.Context) (Principal, bool) {
	p, ok := c.Get(principalContextKey).(Principal)
	return p, ok
}

func requirePrincipal(c echo.Context) (Principal, error) {
	p, ok := principalFrom(c)
	if !ok {
		return Principal{}, fmt.Errorf("%w: %w", ErrUnauthorized, ErrTokenIsMissing)
	}
	return p, nil
}

func requireStaff(c echo.Context, action string) (Principal, error) {
	p, err := requirePrincipal(c)
	if err != nil {
		return Principal{}, err
	}
	if !p.Actor.IsStaff() {
		return Principal{}, errs.NewForbiddenError(p.Actor.String(), action)
	}
	return p, nil
}
