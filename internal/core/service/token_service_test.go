package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/appiso/access-control/internal/core/domain"
)

var tokenIssuedAt = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	s, err := NewTokenService("test-secret", DefaultTokenTTL)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return s
}

func issue(t *testing.T, s *TokenService) string {
	t.Helper()
	token, err := s.Issue("7", "hr.lead", domain.RoleHR, tokenIssuedAt)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return token
}

func TestTokenService_RoundTrip(t *testing.T) {
	s := newTestTokenService(t)
	token := issue(t, s)

	claims, err := s.Verify(token, tokenIssuedAt)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != "7" || claims.Name != "hr.lead" || claims.Role != domain.RoleHR {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.TokenID == "" {
		t.Error("expected a token id")
	}
	if !claims.NotBefore.Equal(tokenIssuedAt) || !claims.IssuedAt.Equal(tokenIssuedAt) {
		t.Errorf("expected nbf and iat at %v, got %v / %v", tokenIssuedAt, claims.NotBefore, claims.IssuedAt)
	}
	if !claims.ExpiresAt.Equal(tokenIssuedAt.Add(time.Hour)) {
		t.Errorf("expected exp at %v, got %v", tokenIssuedAt.Add(time.Hour), claims.ExpiresAt)
	}
}

func TestTokenService_UniqueTokenIDs(t *testing.T) {
	s := newTestTokenService(t)
	a, _ := s.Verify(issue(t, s), tokenIssuedAt)
	b, _ := s.Verify(issue(t, s), tokenIssuedAt)
	if a.TokenID == b.TokenID {
		t.Fatal("expected distinct token ids")
	}
}

func TestTokenService_ValidityWindow(t *testing.T) {
	s := newTestTokenService(t)
	token := issue(t, s)

	cases := []struct {
		name  string
		at    time.Time
		valid bool
	}{
		{"one second before nbf", tokenIssuedAt.Add(-time.Second), false},
		{"at nbf", tokenIssuedAt, true},
		{"59 minutes later", tokenIssuedAt.Add(59 * time.Minute), true},
		{"one second before exp", tokenIssuedAt.Add(time.Hour - time.Second), true},
		{"at exp", tokenIssuedAt.Add(time.Hour), false},
		{"61 minutes later", tokenIssuedAt.Add(61 * time.Minute), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Verify(token, tc.at)
			if tc.valid && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tc.valid && !errors.Is(err, domain.ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestTokenService_SubSecondIssueTime(t *testing.T) {
	s := newTestTokenService(t)
	issuedAt := tokenIssuedAt.Add(700 * time.Millisecond)
	token, err := s.Issue("7", "hr.lead", domain.RoleHR, issuedAt)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := s.Verify(token, issuedAt)
	if err != nil {
		t.Fatalf("expected valid at issue time, got %v", err)
	}
	if !claims.NotBefore.Equal(tokenIssuedAt) || !claims.ExpiresAt.Equal(tokenIssuedAt.Add(time.Hour)) {
		t.Fatalf("expected window [%v, %v), got [%v, %v)",
			tokenIssuedAt, tokenIssuedAt.Add(time.Hour), claims.NotBefore, claims.ExpiresAt)
	}

	if _, err := s.Verify(token, claims.ExpiresAt.Add(-time.Millisecond)); err != nil {
		t.Fatalf("expected valid just before exp, got %v", err)
	}
	if _, err := s.Verify(token, claims.ExpiresAt); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken at exp, got %v", err)
	}
}

func TestTokenService_ExpiredIsDistinguishable(t *testing.T) {
	s := newTestTokenService(t)
	_, err := s.Verify(issue(t, s), tokenIssuedAt.Add(2*time.Hour))
	if !IsExpired(err) {
		t.Fatalf("expected expiry error, got %v", err)
	}
}

func TestTokenService_TamperedSignature(t *testing.T) {
	s := newTestTokenService(t)
	token := issue(t, s)

	dot := strings.LastIndex(token, ".")
	sig := []byte(token[dot+1:])
	mid := len(sig) / 2
	if sig[mid] == 'A' {
		sig[mid] = 'B'
	} else {
		sig[mid] = 'A'
	}
	tampered := token[:dot+1] + string(sig)

	if _, err := s.Verify(tampered, tokenIssuedAt); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenService_TamperedPayload(t *testing.T) {
	s := newTestTokenService(t)
	token := issue(t, s)
	parts := strings.Split(token, ".")

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "7",
		"name": "hr.lead",
		"role": "AdminSecurity",
		"nbf":  tokenIssuedAt.Unix(),
		"exp":  tokenIssuedAt.Add(time.Hour).Unix(),
	})
	forgedSigned, _ := forged.SignedString([]byte("other"))
	payload := strings.Split(forgedSigned, ".")[1]

	if _, err := s.Verify(parts[0]+"."+payload+"."+parts[2], tokenIssuedAt); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenService_WrongSecret(t *testing.T) {
	other, _ := NewTokenService("another-secret", time.Hour)
	token, _ := other.Issue("7", "hr.lead", domain.RoleHR, tokenIssuedAt)

	if _, err := newTestTokenService(t).Verify(token, tokenIssuedAt); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenService_RejectsOtherAlgorithms(t *testing.T) {
	s := newTestTokenService(t)
	claims := jwt.MapClaims{
		"sub":  "7",
		"name": "hr.lead",
		"role": "HR",
		"nbf":  tokenIssuedAt.Unix(),
		"exp":  tokenIssuedAt.Add(time.Hour).Unix(),
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign HS512: %v", err)
	}

	for name, token := range map[string]string{"none": none, "HS512": hs512} {
		if _, err := s.Verify(token, tokenIssuedAt); !errors.Is(err, domain.ErrInvalidToken) {
			t.Errorf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestTokenService_RequiresClaims(t *testing.T) {
	s := newTestTokenService(t)
	base := func() jwt.MapClaims {
		return jwt.MapClaims{
			"sub":  "7",
			"name": "hr.lead",
			"role": "HR",
			"nbf":  tokenIssuedAt.Unix(),
			"exp":  tokenIssuedAt.Add(time.Hour).Unix(),
		}
	}

	cases := map[string]func(jwt.MapClaims){
		"missing exp":  func(c jwt.MapClaims) { delete(c, "exp") },
		"missing nbf":  func(c jwt.MapClaims) { delete(c, "nbf") },
		"missing sub":  func(c jwt.MapClaims) { delete(c, "sub") },
		"unknown role": func(c jwt.MapClaims) { c["role"] = "Admin" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base()
			mutate(c)
			token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte("test-secret"))
			if err != nil {
				t.Fatalf("sign: %v", err)
			}
			if _, err := s.Verify(token, tokenIssuedAt); !errors.Is(err, domain.ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestTokenService_Garbage(t *testing.T) {
	s := newTestTokenService(t)
	for _, token := range []string{"", "abc", "a.b.c"} {
		if _, err := s.Verify(token, tokenIssuedAt); !errors.Is(err, domain.ErrInvalidToken) {
			t.Errorf("%q: expected ErrInvalidToken, got %v", token, err)
		}
	}
}

func TestNewTokenService_MissingSecret(t *testing.T) {
	for _, secret := range []string{"", "   "} {
		if _, err := NewTokenService(secret, time.Hour); !errors.Is(err, domain.ErrMissingSigningSecret) {
			t.Errorf("%q: expected ErrMissingSigningSecret, got %v", secret, err)
		}
	}
}

func TestNewTokenService_DefaultTTL(t *testing.T) {
	s, err := NewTokenService("x", 0)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	if s.TTL() != time.Hour {
		t.Errorf("expected 1h default ttl, got %v", s.TTL())
	}
}
