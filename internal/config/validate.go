// internal/config/validate.go
package config

import (
	"fmt"

	"github.com/tamzrod/vlcb-node/internal/logging"
)

// maxBaseSlot keeps the 20-register status block inside the 16-bit
// register address space.
const maxBaseSlot = 65536/20 - 1

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	// ------------------------------------------------------------
	// NODE IDENTITY
	// ------------------------------------------------------------

	n := cfg.Node
	if n.NodeNumber == 0 {
		return fmt.Errorf("node: node_number must be non-zero")
	}
	if n.CANID < 1 || n.CANID > 127 {
		return fmt.Errorf("node: can_id %d out of range 1..127", n.CANID)
	}
	switch n.Teaching {
	case "", TeachingSlot, TeachingEvent:
	default:
		return fmt.Errorf("node: teaching must be %q or %q, got %q", TeachingSlot, TeachingEvent, n.Teaching)
	}
	if n.ConsumeOwnEvents && !n.Consumer {
		return fmt.Errorf("node: consume_own_events requires consumer")
	}

	// ------------------------------------------------------------
	// EVENT TABLE GEOMETRY
	// ------------------------------------------------------------

	if cfg.Events.MaxEvents < 1 || cfg.Events.MaxEvents > 255 {
		return fmt.Errorf("events: max_events %d out of range 1..255", cfg.Events.MaxEvents)
	}
	if cfg.Events.MaxEventVariables < 1 || cfg.Events.MaxEventVariables > 255 {
		return fmt.Errorf("events: max_event_variables %d out of range 1..255", cfg.Events.MaxEventVariables)
	}

	// ------------------------------------------------------------
	// TRANSPORT / STORE
	// ------------------------------------------------------------

	if cfg.Store.Path == "" {
		return fmt.Errorf("store: path is required")
	}
	if cfg.Transport.BaudRate < 0 {
		return fmt.Errorf("transport: baud_rate must not be negative")
	}
	if cfg.Transport.TimeoutMs < 0 {
		return fmt.Errorf("transport: timeout_ms must not be negative")
	}

	// ------------------------------------------------------------
	// STATUS MIRROR (OPT-IN)
	// ------------------------------------------------------------

	if s := cfg.Status; s != nil {
		if s.Endpoint == "" {
			return fmt.Errorf("status: endpoint is required when status is set")
		}
		if s.UnitID == nil {
			return fmt.Errorf("status: endpoint %q has no unit_id", s.Endpoint)
		}
		if s.TimeoutMs < 0 {
			return fmt.Errorf("status: timeout_ms must not be negative")
		}
		if s.BaseSlot > maxBaseSlot {
			return fmt.Errorf("status: base_slot %d exceeds %d", s.BaseSlot, maxBaseSlot)
		}
	}

	// ------------------------------------------------------------
	// LOGGING
	// ------------------------------------------------------------

	if cfg.Log.Level == "" {
		return nil
	}
	if _, ok := logging.ParseLevel(cfg.Log.Level); !ok {
		return fmt.Errorf("log: unknown level %q", cfg.Log.Level)
	}
	return nil
}
