package auth

import (
	"errors"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"partsCatalog/internal/testutil"
)

const testSecret = "test-secret"

var epoch = time.Unix(1_700_000_000, 0)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func newTestTokens(t *testing.T, clock *fakeClock) *TokenService {
	t.Helper()
	s, err := NewTokenService(testSecret, time.Hour, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return s
}

func TestNewTokenService_Defaults(t *testing.T) {
	if _, err := NewTokenService("", time.Hour); err == nil {
		t.Fatalf("expected error for empty secret")
	}
	s, err := NewTokenService(testSecret, 0)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	if s.TTL() != DefaultTokenTTL {
		t.Fatalf("ttl = %v, want %v", s.TTL(), DefaultTokenTTL)
	}
}

func TestIssueValidate_RoundTrip(t *testing.T) {
	clock := &fakeClock{now: epoch}
	s := newTestTokens(t, clock)

	tok, err := s.Issue("alice@example.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	sub, err := s.Validate(tok)
	if err != nil || sub != "alice@example.com" {
		t.Fatalf("Validate = %q, %v", sub, err)
	}
	if _, err := s.Issue("  "); err == nil {
		t.Fatalf("expected error for empty subject")
	}
}

func TestValidate_ExpiryBoundary(t *testing.T) {
	clock := &fakeClock{now: epoch}
	s := newTestTokens(t, clock)
	tok, err := s.IssueAt("bob@example.com", epoch, time.Hour)
	if err != nil {
		t.Fatalf("IssueAt: %v", err)
	}

	tests := []struct {
		name  string
		at    time.Time
		valid bool
	}{
		{"at issue", epoch, true},
		{"mid life", epoch.Add(30 * time.Minute), true},
		{"last valid second", epoch.Add(time.Hour - time.Second), true},
		{"at expiry", epoch.Add(time.Hour), false},
		{"after expiry", epoch.Add(2 * time.Hour), false},
		{"before not-before", epoch.Add(-time.Second), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock.now = tt.at
			_, err := s.Validate(tok)
			if tt.valid && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestIssueAt_SubSecondIssueTime(t *testing.T) {
	clock := &fakeClock{}
	s := newTestTokens(t, clock)
	tok, err := s.IssueAt("erin@example.com", epoch.Add(700*time.Millisecond), time.Hour)
	if err != nil {
		t.Fatalf("IssueAt: %v", err)
	}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &claims); err != nil {
		t.Fatalf("ParseUnverified: %v", err)
	}
	if !claims.IssuedAt.Time.Equal(epoch) || !claims.ExpiresAt.Time.Equal(epoch.Add(time.Hour)) {
		t.Fatalf("iat=%v exp=%v, want whole seconds from %v", claims.IssuedAt, claims.ExpiresAt, epoch)
	}

	for _, tt := range []struct {
		at    time.Time
		valid bool
	}{
		{epoch.Add(100 * time.Millisecond), true},
		{epoch.Add(time.Hour - time.Nanosecond), true},
		{epoch.Add(time.Hour), false},
		{epoch.Add(time.Hour + 400*time.Millisecond), false},
	} {
		clock.now = tt.at
		_, err := s.Validate(tok)
		if tt.valid != (err == nil) {
			t.Fatalf("Validate at %v: err=%v, want valid=%v", tt.at, err, tt.valid)
		}
	}
}

func TestValidate_TamperingAnyByte(t *testing.T) {
	clock := &fakeClock{now: epoch}
	s := newTestTokens(t, clock)
	tok, err := s.Issue("carol@example.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	for i := 0; i < len(tok); i++ {
		b := []byte(tok)
		if b[i] == 'A' {
			b[i] = 'B'
		} else {
			b[i] = 'A'
		}
		if _, err := s.Validate(string(b)); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("tampered byte %d accepted", i)
		}
	}
}

func TestValidate_Rejections(t *testing.T) {
	clock := &fakeClock{now: epoch}
	s := newTestTokens(t, clock)
	claims := jwt.RegisteredClaims{
		Subject:   "dave@example.com",
		IssuedAt:  jwt.NewNumericDate(epoch),
		NotBefore: jwt.NewNumericDate(epoch),
		ExpiresAt: jwt.NewNumericDate(epoch.Add(time.Hour)),
	}

	hs384, err := jwt.NewWithClaims(jwt.SigningMethodHS384, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign HS384: %v", err)
	}
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	noExp := claims
	noExp.ExpiresAt = nil
	withoutExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, noExp).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign without exp: %v", err)
	}

	tests := map[string]string{
		"other hmac alg": hs384,
		"none alg":       none,
		"wrong secret":   testutil.GenerateJWTHS256(t, "other-secret", "dave@example.com", epoch, time.Hour),
		"empty subject":  testutil.GenerateJWTHS256(t, testSecret, "", epoch, time.Hour),
		"missing exp":    withoutExp,
		"garbage":        "not.a.token",
		"empty":          "",
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			if sub, err := s.Validate(tok); !errors.Is(err, ErrInvalidToken) || sub != "" {
				t.Fatalf("expected ErrInvalidToken, got %q, %v", sub, err)
			}
		})
	}
}

func TestParseBearer(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer  abc ", "abc", true},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"Bearer   ", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, err := ParseBearer(tt.header)
		if tt.ok && (err != nil || got != tt.want) {
			t.Fatalf("ParseBearer(%q) = %q, %v", tt.header, got, err)
		}
		if !tt.ok && err == nil {
			t.Fatalf("ParseBearer(%q) expected error", tt.header)
		}
	}
}
