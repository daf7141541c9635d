package security

import "testing"

func TestSHA256TokenHasher_DeterministicHex(t *testing.T) {
	t.Parallel()

	h := NewSHA256TokenHasher()

	a := h.Hash("token-1")
	b := h.Hash("token-1")
	if a != b {
		t.Fatalf("hash must be deterministic")
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
	if string(a) == "token-1" {
		t.Fatalf("hash must differ from plaintext")
	}
	if h.Hash("token-2") == a {
		t.Fatalf("different tokens must hash differently")
	}
}

func TestSHA256TokenHasher_KnownVector(t *testing.T) {
	t.Parallel()

	// sha256("abc")
	const want = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := NewSHA256TokenHasher().Hash("abc"); string(got) != want {
		t.Fatalf("got %s", got)
	}
}
