package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/xavierca1/hirelocal/internal/entity"
)

type ctxKey int

const identityKey ctxKey = iota

// Claims is what the identity provider signs. Tokens are issued elsewhere; this service
// only verifies them.
type Claims struct {
	Role      string `json:"role"`
	ProfileID string `json:"freelancer_profile_id,omitempty"`
	jwt.RegisteredClaims
}

type Authenticator struct {
	secret []byte
	issuer string
}

func NewAuthenticator(secret, issuer string) *Authenticator {
	return &Authenticator{secret: []byte(secret), issuer: issuer}
}

func (a *Authenticator) Parse(tokenStr string) (entity.Identity, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return entity.Identity{}, err
	}
	if !token.Valid || claims.Subject == "" {
		return entity.Identity{}, jwt.ErrTokenMalformed
	}

	role := entity.Role(claims.Role)
	switch role {
	case entity.RoleCustomer, entity.RoleFreelancer, entity.RoleAdmin:
	default:
		return entity.Identity{}, errors.New("unknown role in token")
	}
	return entity.Identity{UserID: claims.Subject, Role: role, FreelancerProfileID: claims.ProfileID}, nil
}

// Middleware requires a bearer token. Browsers cannot set headers on an EventSource, so an
// access_token query parameter is accepted when the header is missing.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := ""
		if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
			tokenStr = strings.TrimPrefix(h, "Bearer ")
		} else if q := r.URL.Query().Get("access_token"); q != "" {
			tokenStr = q
		}
		if tokenStr == "" {
			unauthorized(w, "missing bearer token")
			return
		}

		id, err := a.Parse(tokenStr)
		if err != nil {
			unauthorized(w, "invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

func WithIdentity(ctx context.Context, id entity.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFrom(ctx context.Context) (entity.Identity, bool) {
	id, ok := ctx.Value(identityKey).(entity.Identity)
	return id, ok
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized", "message": msg})
}
