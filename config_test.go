package parkgate

import (
	"testing"
	"time"
)

func TestDefaultConfigValidates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestConfigValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"relative login route", func(c *Config) { c.Routes.Login = "login" }},
		{"relative denied route", func(c *Config) { c.Routes.AccessDenied = "denied" }},
		{"login equals denied", func(c *Config) { c.Routes.AccessDenied = c.Routes.Login }},
		{"relative public route", func(c *Config) { c.Routes.Public = []string{"register"} }},
		{"zero probe timeout", func(c *Config) { c.Session.ProbeTimeout = 0 }},
		{"zero logout timeout", func(c *Config) { c.Session.LogoutTimeout = 0 }},
		{"zero coalescing window", func(c *Config) { c.Coordinator.CoalescingWindow = 0 }},
		{"oversized coalescing window", func(c *Config) { c.Coordinator.CoalescingWindow = time.Minute }},
		{"zero navigation buffer", func(c *Config) { c.Coordinator.NavigationBuffer = 0 }},
		{"invalid credential mode", func(c *Config) { c.Credential.Mode = CredentialMode(42) }},
		{"token mode without header", func(c *Config) {
			c.Credential.Mode = CredentialToken
			c.Credential.Header = ""
		}},
		{"audit enabled without buffer", func(c *Config) {
			c.Audit.Enabled = true
			c.Audit.BufferSize = 0
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected a validation error")
			}
		})
	}
}

func TestCloneConfigDetachesPublicRoutes(t *testing.T) {
	cfg := DefaultConfig()
	clone := cloneConfig(cfg)

	clone.Routes.Public[0] = "/mutated"
	if cfg.Routes.Public[0] == "/mutated" {
		t.Fatal("clone must not share the public routes slice")
	}
}
