package hmacverifier

import (
	"context"
	"testing"
	"time"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

const testUserID = "5b0c1a52-3f0e-4f6f-9a57-0e1c2a4d9b10"

func newTestVerifier(t *testing.T, now time.Time) *Verifier {
	t.Helper()
	v, err := NewWithClock(Config{
		Secret:             testSecret,
		Issuer:             "https://proj.supabase.co/auth/v1",
		Audience:           "authenticated",
		RequireUUIDSubject: true,
	}, func() time.Time { return now })
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return v
}

func mint(t *testing.T, o MintOptions) string {
	t.Helper()
	tok, err := Mint(testSecret, o)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	return tok
}

func TestVerify_ValidToken(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0)
	v := newTestVerifier(t, now)
	tok := mint(t, MintOptions{
		Subject:  testUserID,
		Email:    "seva@temple.org",
		Issuer:   "https://proj.supabase.co/auth/v1",
		Audience: "authenticated",
		Role:     "authenticated",
		Now:      now,
		TTL:      time.Hour,
	})

	p, err := v.Verify(context.Background(), tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if string(p.Subject) != testUserID || p.Email != "seva@temple.org" {
		t.Fatalf("unexpected principal: %+v", p)
	}
}

func TestVerify_Rejects(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0)
	v := newTestVerifier(t, now)
	base := MintOptions{
		Subject:  testUserID,
		Issuer:   "https://proj.supabase.co/auth/v1",
		Audience: "authenticated",
		Now:      now,
		TTL:      time.Hour,
	}

	expired := base
	expired.Now = now.Add(-2 * time.Hour)

	wrongAud := base
	wrongAud.Audience = "anon"

	wrongIss := base
	wrongIss.Issuer = "https://other.supabase.co/auth/v1"

	notUUID := base
	notUUID.Subject = "dev|alice"

	cases := map[string]string{
		"expired":      mint(t, expired),
		"wrong aud":    mint(t, wrongAud),
		"wrong iss":    mint(t, wrongIss),
		"non-uuid sub": mint(t, notUUID),
		"garbage":      "not.a.jwt",
	}

	other, err := Mint([]byte("ffffffffffffffffffffffffffffffff"), base)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	cases["wrong secret"] = other

	for name, tok := range cases {
		if _, err := v.Verify(context.Background(), tok); err == nil {
			t.Fatalf("%s: expected rejection", name)
		}
	}
}

func TestNew_ShortSecret(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{Secret: []byte("short")}); err == nil {
		t.Fatalf("expected error for short secret")
	}
}
