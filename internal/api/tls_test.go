package api

import (
	"testing"
)

func TestInitTLS_NoEnvVars(t *testing.T) {
	t.Setenv("SCENEWIRE_TLS_CERT", "")
	t.Setenv("SCENEWIRE_TLS_KEY", "")
	SetTLSConfigForTest(nil)

	InitTLS()

	if IsTLSEnabled() {
		t.Error("TLS should not be enabled when env vars are not set")
	}
}

func TestInitTLS_OnlyCert(t *testing.T) {
	t.Setenv("SCENEWIRE_TLS_CERT", "/path/to/cert.pem")
	t.Setenv("SCENEWIRE_TLS_KEY", "")
	SetTLSConfigForTest(nil)

	InitTLS()

	if IsTLSEnabled() {
		t.Error("TLS should not be enabled when only cert is set")
	}
}

func TestInitTLS_BothSet(t *testing.T) {
	t.Setenv("SCENEWIRE_TLS_CERT", "/path/to/cert.pem")
	t.Setenv("SCENEWIRE_TLS_KEY", "/path/to/key.pem")
	SetTLSConfigForTest(nil)
	t.Cleanup(func() { SetTLSConfigForTest(nil) })

	InitTLS()

	if !IsTLSEnabled() {
		t.Error("TLS should be enabled when both cert and key are set")
	}

	// The files do not exist, so loading the pair fails gracefully.
	if cfg := LoadTLSConfig(); cfg != nil {
		t.Error("expected nil tls.Config for nonexistent cert files")
	}
}
