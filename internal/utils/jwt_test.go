package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestNewAccessTokenClaims(t *testing.T) {
	at, err := NewAccessToken("test-secret", 42, "RIDER", 7, 15)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if at.Token == "" {
		t.Fatal("empty token")
	}
	if remaining := time.Until(at.Exp); remaining < 14*time.Minute || remaining > 15*time.Minute {
		t.Fatalf("unexpected expiry distance: %s", remaining)
	}

	parsed, err := jwt.Parse(at.Token, func(tok *jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["sub"].(float64) != 42 {
		t.Fatalf("unexpected sub: %v", claims["sub"])
	}
	if claims["role"] != "RIDER" {
		t.Fatalf("unexpected role: %v", claims["role"])
	}
	if claims["profile_id"].(float64) != 7 {
		t.Fatalf("unexpected profile_id: %v", claims["profile_id"])
	}
}

func TestNewAccessTokenWrongSecret(t *testing.T) {
	at, err := NewAccessToken("right-secret", 1, "DRIVER", 1, 15)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	_, err = jwt.Parse(at.Token, func(tok *jwt.Token) (any, error) {
		return []byte("wrong-secret"), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err == nil {
		t.Fatal("token verified with the wrong secret")
	}
}

func TestNewRefreshToken(t *testing.T) {
	r1, err := NewRefreshToken(30)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	r2, err := NewRefreshToken(30)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if len(r1.Raw) != 96 {
		t.Fatalf("unexpected raw length: %d", len(r1.Raw))
	}
	if r1.Raw == r2.Raw {
		t.Fatal("two refresh tokens collided")
	}
	if !r1.Exp.After(time.Now().Add(29 * 24 * time.Hour)) {
		t.Fatalf("expiry too soon: %s", r1.Exp)
	}

	if h1, h2 := HashRefreshRaw(r1.Raw), HashRefreshRaw(r1.Raw); h1 != h2 {
		t.Fatal("hash not deterministic")
	}
	if HashRefreshRaw(r1.Raw) == HashRefreshRaw(r2.Raw) {
		t.Fatal("distinct tokens hashed equal")
	}
}
