package fakepb

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var errInvalidToken = errors.New("invalid token")

type adminClaims struct {
	jwt.RegisteredClaims
	Type string `json:"type"`
}

// signToken must be called with s.mu held.
func (s *Server) signToken() (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, adminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.adminID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
		Type: "admin",
	})
	return token.SignedString(s.secret)
}

func (s *Server) verifyToken(raw string) error {
	s.mu.Lock()
	secret, now := s.secret, s.now
	s.mu.Unlock()

	claims := &adminClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(now), jwt.WithExpirationRequired())
	if err != nil {
		return err
	}
	if !token.Valid || claims.Type != "admin" {
		return errInvalidToken
	}
	return nil
}

func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(h, "Bearer "); ok {
		return after
	}
	return h
}

func (s *Server) authorized(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.verifyToken(bearer(r)); err != nil {
			respondError(w, http.StatusUnauthorized, "The request requires valid admin authorization token to be set.")
			return
		}
		next(w, r)
	}
}

// ExpireTokens shifts validity so every token issued so far is rejected.
func (s *Server) ExpireTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	base := s.now
	s.now = func() time.Time { return base().Add(s.tokenTTL + time.Second) }
}
