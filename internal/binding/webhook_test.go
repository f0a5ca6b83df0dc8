package binding

import (
	"strings"
	"testing"
)

func TestEndpointCreate(t *testing.T) {
	reg := NewEndpointRegistry()

	ep, err := reg.Create("door sensor", "http://localhost:8080")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if ep.ID == "" {
		t.Error("expected generated id")
	}
	if len(ep.Secret) != 48 {
		t.Errorf("expected 48 hex chars of secret, got %d", len(ep.Secret))
	}
	want := "http://localhost:8080/api/webhooks/scene/" + ep.ID
	if ep.URL != want {
		t.Errorf("url = %q, want %q", ep.URL, want)
	}
	if !strings.Contains(ep.URL, ep.ID) {
		t.Error("ingestion url must embed the webhook id")
	}

	got, ok := reg.Get(ep.ID)
	if !ok || got.Name != "door sensor" {
		t.Errorf("lookup failed: %+v ok=%v", got, ok)
	}
}

func TestEndpointSecretsAreUnique(t *testing.T) {
	reg := NewEndpointRegistry()
	a, _ := reg.Create("a", "http://x")
	b, _ := reg.Create("b", "http://x")
	if a.Secret == b.Secret {
		t.Error("two endpoints share a secret")
	}
}

func TestVerifySecret(t *testing.T) {
	reg := NewEndpointRegistry()
	ep, _ := reg.Create("sensor", "http://x")

	if !reg.VerifySecret(ep.ID, ep.Secret) {
		t.Error("correct secret rejected")
	}
	if reg.VerifySecret(ep.ID, "wrong") {
		t.Error("wrong secret accepted")
	}
	if reg.VerifySecret("no-such-endpoint", ep.Secret) {
		t.Error("unknown endpoint verified")
	}
}

func TestEndpointRemove(t *testing.T) {
	reg := NewEndpointRegistry()
	ep, _ := reg.Create("sensor", "http://x")

	reg.Remove(ep.ID)
	if _, ok := reg.Get(ep.ID); ok {
		t.Error("endpoint still present after remove")
	}
	if reg.VerifySecret(ep.ID, ep.Secret) {
		t.Error("removed endpoint still verifies")
	}

	// Removing twice is harmless.
	reg.Remove(ep.ID)

	if n := len(reg.All()); n != 0 {
		t.Errorf("expected empty registry, got %d", n)
	}
}
