package crypto

import (
	"errors"
	"strings"
	"testing"
)

func TestHashSecret_VerifyRoundTrip(t *testing.T) {
	svc := fastKeyChain()

	encoded, err := svc.HashSecret("Rex")
	if err != nil {
		t.Fatalf("HashSecret error: %v", err)
	}
	if !strings.HasPrefix(encoded, "argon2id$v=19$m=64,t=1,p=1$") {
		t.Fatalf("unexpected encoding %q", encoded)
	}

	if err := svc.VerifySecret(encoded, "Rex"); err != nil {
		t.Fatalf("VerifySecret error: %v", err)
	}
	if err := svc.VerifySecret(encoded, "rex"); !errors.Is(err, ErrAuthenticationFailure) {
		t.Fatalf("err = %v, want ErrAuthenticationFailure", err)
	}
}

func TestHashSecret_Salted(t *testing.T) {
	svc := fastKeyChain()

	h1, _ := svc.HashSecret("Pw1!")
	h2, _ := svc.HashSecret("Pw1!")
	if h1 == h2 {
		t.Fatalf("expected different encodings for the same secret")
	}
}

func TestVerifySecret_ReadsParamsFromHash(t *testing.T) {
	old := fastKeyChain()
	encoded, _ := old.HashSecret("Pw1!")

	// a chain configured differently still verifies the stored hash
	other := NewKeyChainService(WithArgon2Params(Argon2Params{Time: 2, Memory: 128, Threads: 2, SaltLen: 8, KeyLen: 16}))
	if err := other.VerifySecret(encoded, "Pw1!"); err != nil {
		t.Fatalf("VerifySecret error: %v", err)
	}
}

func TestVerifySecret_Malformed(t *testing.T) {
	svc := fastKeyChain()

	for _, encoded := range []string{
		"",
		"plain",
		"bcrypt$v=19$m=64,t=1,p=1$c2FsdA$aGFzaA",
		"argon2id$v=18$m=64,t=1,p=1$c2FsdA$aGFzaA",
		"argon2id$v=19$m=64,t=0,p=1$c2FsdA$aGFzaA",
		"argon2id$v=19$m=64,t=1,p=0$c2FsdA$aGFzaA",
		"argon2id$v=19$garbage$c2FsdA$aGFzaA",
		"argon2id$v=19$m=64,t=1,p=1$***$aGFzaA",
		"argon2id$v=19$m=64,t=1,p=1$c2FsdA$",
		// costs beyond the accepted bounds
		"argon2id$v=19$m=4194304,t=1,p=1$c2FsdA$aGFzaA",
		"argon2id$v=19$m=64,t=1000,p=1$c2FsdA$aGFzaA",
		"argon2id$v=19$m=64,t=1,p=200$c2FsdA$aGFzaA",
		"argon2id$v=19$m=64,t=1,p=1$c2FsdA$" + strings.Repeat("A", 200),
	} {
		if err := svc.VerifySecret(encoded, "x"); !errors.Is(err, ErrMalformedHash) {
			t.Fatalf("VerifySecret(%q) = %v, want ErrMalformedHash", encoded, err)
		}
	}
}
