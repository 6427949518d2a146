package service_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/msomdec/account-service/internal/domain"
	"github.com/msomdec/account-service/internal/service"
)

func TestTokenIssuer_IssueAndVerify(t *testing.T) {
	ti := service.NewTokenIssuer(testSecret, 0)
	in := domain.Claims{Account: "a1", Name: "N", Head: "h"}

	token, err := ti.Issue(in)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	got, err := ti.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got.Account != in.Account || got.Name != in.Name || got.Head != in.Head {
		t.Fatalf("expected claims %+v, got %+v", in, got)
	}

	ttl := time.Until(got.ExpiresAt)
	if ttl <= 29*time.Minute || ttl > 30*time.Minute {
		t.Fatalf("expected ~30m validity, got %v", ttl)
	}
}

func TestTokenIssuer_ReissueIsDistinct(t *testing.T) {
	ti := service.NewTokenIssuer(testSecret, 0)
	claims := domain.Claims{Account: "a1"}

	first, err := ti.Issue(claims)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	second, err := ti.Issue(claims)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if first == second {
		t.Fatal("expected two issuances of the same claims to differ")
	}
}

func TestTokenIssuer_NegativeTTLIsExpired(t *testing.T) {
	ti := service.NewTokenIssuer(testSecret, 0)

	token, err := ti.IssueWithTTL(domain.Claims{Account: "a1"}, -10*time.Second)
	if err != nil {
		t.Fatalf("IssueWithTTL: %v", err)
	}
	if _, err := ti.Verify(token); !errors.Is(err, domain.ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}

	expired, err := ti.Expired()
	if err != nil {
		t.Fatalf("Expired: %v", err)
	}
	if _, err := ti.Verify(expired); !errors.Is(err, domain.ErrExpired) {
		t.Fatalf("expected ErrExpired for logout token, got %v", err)
	}
}

func TestTokenIssuer_ExpiresAfterWindow(t *testing.T) {
	now := time.Now()
	ti := service.NewTokenIssuer(testSecret, 0).WithClock(func() time.Time { return now })

	token, err := ti.Issue(domain.Claims{Account: "a1"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	later := ti.WithClock(func() time.Time { return now.Add(31 * time.Minute) })
	if _, err := later.Verify(token); !errors.Is(err, domain.ErrExpired) {
		t.Fatalf("expected ErrExpired after 31m, got %v", err)
	}
}

func TestTokenIssuer_InvalidSignature(t *testing.T) {
	ti := service.NewTokenIssuer(testSecret, 0)
	token, err := ti.Issue(domain.Claims{Account: "a1"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	other := service.NewTokenIssuer("a-completely-different-secret-value!!", 0)

	// HS384 with the right secret is still rejected: only HS256 is accepted.
	hs384, err := jwt.NewWithClaims(jwt.SigningMethodHS384, jwt.MapClaims{
		"account": "a1",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign HS384: %v", err)
	}

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"account": "a1",
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign without exp: %v", err)
	}

	tests := []struct {
		name   string
		issuer *service.TokenIssuer
		token  string
	}{
		{"garbage", ti, "not-a-valid-jwt"},
		{"empty", ti, ""},
		{"tampered", ti, token[:len(token)-5] + "XXXXX"},
		{"payload swapped", ti, swapPayload(token)},
		{"wrong secret", other, token},
		{"wrong algorithm", ti, hs384},
		{"missing expiry", ti, noExp},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.issuer.Verify(tc.token); !errors.Is(err, domain.ErrInvalidSignature) {
				t.Fatalf("expected ErrInvalidSignature, got %v", err)
			}
		})
	}
}

// swapPayload replaces the payload segment while keeping the original signature.
func swapPayload(token string) string {
	parts := strings.Split(token, ".")
	parts[1] = "eyJhY2NvdW50IjoiYWRtaW4iLCJleHAiOjQxMDI0NDQ4MDB9"
	return strings.Join(parts, ".")
}
