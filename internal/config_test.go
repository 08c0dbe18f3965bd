package internal

import (
	"strings"
	"testing"
	"time"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestSearchConfig_CacheTTLBounded(t *testing.T) {
	cfg := SearchConfig{CacheTTLMinutes: 61}
	if err := cfg.Validate(); err == nil {
		t.Fatal("cache TTL over an hour should fail validation")
	}
}

func TestSearchConfig_FractionBounded(t *testing.T) {
	cfg := SearchConfig{SufficientFraction: 1.5}
	if err := cfg.Validate(); err == nil {
		t.Fatal("sufficient fraction over 1 should fail validation")
	}
}

func TestSearchConfig_ServiceConfig(t *testing.T) {
	cfg := SearchConfig{Limit: 15, DebounceMS: 250, CacheTTLMinutes: 10}
	sc := cfg.ServiceConfig(5 * time.Second)
	if sc.Limit != 15 {
		t.Errorf("limit = %d, want 15", sc.Limit)
	}
	if sc.DebounceInterval != 250*time.Millisecond {
		t.Errorf("debounce = %v", sc.DebounceInterval)
	}
	if sc.CacheTTL != 10*time.Minute {
		t.Errorf("cache ttl = %v", sc.CacheTTL)
	}
	if sc.ProviderTimeout != 5*time.Second {
		t.Errorf("provider timeout = %v", sc.ProviderTimeout)
	}
}

func TestFDCConfig_EnabledRequiresKey(t *testing.T) {
	cfg := FDCConfig{Enabled: true, APIKey: ""}
	if err := cfg.Validate(); err == nil {
		t.Fatal("enabled fdc without api key should fail")
	}
	cfg.APIKey = "key"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("enabled fdc with api key should pass: %v", err)
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}
