package tenant

import "testing"

func TestResolve_EmptyCredential(t *testing.T) {
	if got := Resolve(""); got != Anonymous {
		t.Fatalf("Resolve(\"\") = %q, want %q", got, Anonymous)
	}
}

func TestResolve_Deterministic(t *testing.T) {
	a := Resolve("sk-live-abc123")
	b := Resolve("sk-live-abc123")
	if a != b {
		t.Fatalf("same credential resolved to different tenants: %q vs %q", a, b)
	}
}

func TestResolve_DistinctCredentials(t *testing.T) {
	a := Resolve("credential-one")
	b := Resolve("credential-two")
	if a == b {
		t.Fatalf("distinct credentials collided: %q", a)
	}
}

func TestResolve_Shape(t *testing.T) {
	id := Resolve("anything")
	if len(id) != 2+idHexLen {
		t.Fatalf("unexpected id length %d: %q", len(id), id)
	}
	if id[:2] != "t_" {
		t.Fatalf("id missing t_ prefix: %q", id)
	}
}
