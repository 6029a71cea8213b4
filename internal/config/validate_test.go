// internal/config/validate_test.go
package config

import "testing"

// helper to build a valid config quickly
func valid() *Config {
	return &Config{
		Node: NodeConfig{
			NodeNumber: 256,
			CANID:      5,
			Consumer:   true,
		},
		Events: EventsConfig{
			MaxEvents:         64,
			MaxEventVariables: 8,
		},
		Store: StoreConfig{Path: "node.img"},
	}
}

func u8(v uint8) *uint8 { return &v }

// ---- tests ----

func TestValidate_Minimal(t *testing.T) {
	if err := Validate(valid()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero node number", func(c *Config) { c.Node.NodeNumber = 0 }},
		{"can id zero", func(c *Config) { c.Node.CANID = 0 }},
		{"can id too large", func(c *Config) { c.Node.CANID = 128 }},
		{"unknown teaching", func(c *Config) { c.Node.Teaching = "fast" }},
		{"coe without consumer", func(c *Config) { c.Node.Consumer = false; c.Node.ConsumeOwnEvents = true }},
		{"no events", func(c *Config) { c.Events.MaxEvents = 0 }},
		{"too many events", func(c *Config) { c.Events.MaxEvents = 256 }},
		{"no EVs", func(c *Config) { c.Events.MaxEventVariables = 0 }},
		{"no store path", func(c *Config) { c.Store.Path = "" }},
		{"negative baud", func(c *Config) { c.Transport.BaudRate = -1 }},
		{"status without endpoint", func(c *Config) { c.Status = &StatusConfig{UnitID: u8(1)} }},
		{"status without unit", func(c *Config) { c.Status = &StatusConfig{Endpoint: "127.0.0.1:502"} }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
		{"status block past register space", func(c *Config) {
			c.Status = &StatusConfig{Endpoint: "127.0.0.1:502", UnitID: u8(1), BaseSlot: 3276}
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			if err := Validate(cfg); err == nil {
				t.Fatalf("expected error, got nil")
			}
		})
	}
}

func TestValidate_BoundsAccepted(t *testing.T) {
	cfg := valid()
	cfg.Node.CANID = 127
	cfg.Events.MaxEvents = 255
	cfg.Events.MaxEventVariables = 255
	cfg.Node.Teaching = TeachingEvent
	cfg.Status = &StatusConfig{Endpoint: "127.0.0.1:502", UnitID: u8(0), BaseSlot: 3275}
	cfg.Log.Level = "DEBUG"

	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_LevelsMatchLogger(t *testing.T) {
	for _, l := range []string{"trace", "debug", "info", "warn", "warning", "error", "disabled", "off", " Info "} {
		cfg := valid()
		cfg.Log.Level = l
		if err := Validate(cfg); err != nil {
			t.Fatalf("level %q: unexpected error: %v", l, err)
		}
	}
}

func TestValidate_DoesNotMutate(t *testing.T) {
	cfg := valid()
	cfg.Log.Level = "WARN"

	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Log.Level != "WARN" || cfg.Node.Teaching != "" || cfg.Transport.BaudRate != 0 {
		t.Fatalf("Validate mutated config: %+v", cfg)
	}
}

func TestNormalize_Defaults(t *testing.T) {
	cfg := valid()
	cfg.Status = &StatusConfig{Endpoint: "127.0.0.1:502", UnitID: u8(1)}
	cfg.Log.Level = "WARN"

	Normalize(cfg)

	if cfg.Node.Teaching != TeachingSlot {
		t.Fatalf("teaching=%q want %q", cfg.Node.Teaching, TeachingSlot)
	}
	if cfg.Transport.BaudRate != DefaultBaudRate || cfg.Transport.TimeoutMs != DefaultTransportTimeout {
		t.Fatalf("transport defaults not applied: %+v", cfg.Transport)
	}
	if cfg.Status.TimeoutMs != DefaultStatusTimeout {
		t.Fatalf("status timeout=%d", cfg.Status.TimeoutMs)
	}
	if cfg.Log.Level != "warn" {
		t.Fatalf("log level=%q", cfg.Log.Level)
	}
}
