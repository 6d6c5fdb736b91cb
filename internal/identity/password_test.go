package identity

import (
	"errors"
	"testing"
)

func TestPasswordViolations(t *testing.T) {
	cases := []struct {
		password string
		want     int
	}{
		{"Str0ngEnough", 0},
		{"short1A", 1},
		{"alllowercase1", 1},
		{"ALLUPPERCASE1", 1},
		{"NoDigitsHere", 1},
		{"bad", 4},
	}
	for _, tc := range cases {
		if got := PasswordViolations(tc.password); len(got) != tc.want {
			t.Errorf("PasswordViolations(%q) = %v, want %d violations", tc.password, got, tc.want)
		}
	}
}

func TestCheckPasswordStrength(t *testing.T) {
	if err := CheckPasswordStrength("Str0ngEnough"); err != nil {
		t.Fatalf("strong password rejected: %v", err)
	}
	err := CheckPasswordStrength("weak")
	if !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Str0ngEnough")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "Str0ngEnough" {
		t.Fatal("hash equals plaintext")
	}
	if err := VerifyPassword(hash, "Str0ngEnough"); err != nil {
		t.Fatalf("verify correct password: %v", err)
	}
	if err := VerifyPassword(hash, "WrongPass1"); err == nil {
		t.Fatal("wrong password accepted")
	}
}
