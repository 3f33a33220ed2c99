package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"lexlib/internal/domain"
	"lexlib/internal/domain/models"
)

func testVerifier(t *testing.T) (*SupabaseJWTVerifier, *ecdsa.PrivateKey) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	kf := func(*jwt.Token) (interface{}, error) { return &key.PublicKey, nil }
	return newVerifier(kf, nil, slog.New(slog.DiscardHandler)), key
}

func sign(t *testing.T, key *ecdsa.PrivateKey, claims models.SupabaseClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodES256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func validClaims() models.SupabaseClaims {
	return models.SupabaseClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "4c7c1e9e-2a9b-4c59-9d3c-0f2f5d9b8a11",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: "authenticated",
	}
}

func TestVerifyToken(t *testing.T) {
	v, key := testVerifier(t)
	otherKey, _ := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)

	tests := []struct {
		name    string
		token   func() string
		wantErr bool
	}{
		{
			name:  "valid",
			token: func() string { return sign(t, key, validClaims()) },
		},
		{
			name: "expired",
			token: func() string {
				c := validClaims()
				c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
				return sign(t, key, c)
			},
			wantErr: true,
		},
		{
			name: "no expiry",
			token: func() string {
				c := validClaims()
				c.ExpiresAt = nil
				return sign(t, key, c)
			},
			wantErr: true,
		},
		{
			name: "anonymous role",
			token: func() string {
				c := validClaims()
				c.Role = "anon"
				return sign(t, key, c)
			},
			wantErr: true,
		},
		{
			name: "anonymous session",
			token: func() string {
				c := validClaims()
				c.IsAnonymous = true
				return sign(t, key, c)
			},
			wantErr: true,
		},
		{
			name: "missing subject",
			token: func() string {
				c := validClaims()
				c.Subject = ""
				return sign(t, key, c)
			},
			wantErr: true,
		},
		{
			name:    "wrong key",
			token:   func() string { return sign(t, otherKey, validClaims()) },
			wantErr: true,
		},
		{
			name: "hmac algorithm",
			token: func() string {
				s, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims()).SignedString([]byte("secret"))
				return s
			},
			wantErr: true,
		},
		{
			name:    "garbage",
			token:   func() string { return "not.a.token" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := v.VerifyToken(tt.token())
			if tt.wantErr {
				if !errors.Is(err, domain.ErrUnauthorized) {
					t.Fatalf("expected ErrUnauthorized, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("VerifyToken: %v", err)
			}
			if claims.GetUserID() != validClaims().Subject {
				t.Errorf("user id = %q", claims.GetUserID())
			}
		})
	}
}
