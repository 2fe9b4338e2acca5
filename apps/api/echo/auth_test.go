package echoapi

import (
	"testing"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

func Test_newClaims(t *testing.T) {
	claims := newClaims(conf, KindStudent, 42, false)

	if _, err := uuid.Parse(claims.Id); err != nil {
		t.Errorf("claims.Id = %q; want a UUID: %v", claims.Id, err)
	}
	if claims.Subject != "42" {
		t.Errorf("claims.Subject = %q; want %q", claims.Subject, "42")
	}
	if claims.Kind != KindStudent {
		t.Errorf("claims.Kind = %q; want %q", claims.Kind, KindStudent)
	}
	if claims.Refresh {
		t.Error("access claims must not be marked refresh")
	}

	refresh := newClaims(conf, KindAdmin, 7, true)
	if !refresh.Refresh {
		t.Error("refresh claims must be marked refresh")
	}
	if refresh.ExpiresAt < claims.ExpiresAt {
		t.Error("refresh tokens must not expire before access tokens")
	}
	if refresh.Id == claims.Id {
		t.Error("each token must carry a unique jti")
	}
}

func Test_GenerateToken_roundTrip(t *testing.T) {
	ss, err := GenerateToken(conf, newClaims(conf, KindAdmin, 3, false))
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(ss, &claims, func(*jwt.Token) (interface{}, error) {
		return conf.SecretKey, nil
	})
	if err != nil {
		t.Fatalf("parsing token failed: %v", err)
	}
	if !token.Valid {
		t.Error("token is not valid")
	}
	if claims.Kind != KindAdmin || claims.Subject != "3" {
		t.Errorf("claims = %+v; want kind %q subject %q", claims, KindAdmin, "3")
	}
}
