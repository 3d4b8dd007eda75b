package security

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if hash == "hunter22" {
		t.Fatalf("hash must not equal the plain password")
	}

	if err := CheckPassword(hash, "hunter22"); err != nil {
		t.Fatalf("expected match, got %v", err)
	}

	if err := CheckPassword(hash, "hunter23"); err == nil {
		t.Fatalf("expected mismatch error")
	}
}

func TestBurnCompare_DoesNotPanic(t *testing.T) {
	BurnCompare("anything")
	BurnCompare("")
}
