// internal/config/config.go
package config

type Config struct {
	Node      NodeConfig      `yaml:"node"`
	Events    EventsConfig    `yaml:"events"`
	Store     StoreConfig     `yaml:"store"`
	Transport TransportConfig `yaml:"transport"`
	Status    *StatusConfig   `yaml:"status"` // optional Modbus mirror
	Log       LogConfig       `yaml:"log"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ---- NODE ----

const (
	TeachingSlot  = "slot"  // index addressed
	TeachingEvent = "event" // NN/EN addressed
)

type NodeConfig struct {
	NodeNumber       uint16 `yaml:"node_number"`
	CANID            uint8  `yaml:"can_id"`
	Producer         bool   `yaml:"producer"`
	Consumer         bool   `yaml:"consumer"`
	ConsumeOwnEvents bool   `yaml:"consume_own_events"`
	Teaching         string `yaml:"teaching"`
	FCUCompatible    bool   `yaml:"fcu_compatible"`
}

// ---- EVENT TABLE ----

type EventsConfig struct {
	MaxEvents         int `yaml:"max_events"`
	MaxEventVariables int `yaml:"max_event_variables"`
}

// ---- PERSISTENCE ----

type StoreConfig struct {
	Path string `yaml:"path"`
}

// ---- BUS TRANSPORT ----

type TransportConfig struct {
	Port      string `yaml:"port"`
	BaudRate  int    `yaml:"baud_rate"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// ---- STATUS MIRROR ----

type StatusConfig struct {
	Endpoint  string `yaml:"endpoint"`
	UnitID    *uint8 `yaml:"unit_id"`
	BaseSlot  uint16 `yaml:"base_slot"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// ---- LOGGING / METRICS ----

type LogConfig struct {
	Level string `yaml:"level"`
}

type MetricsConfig struct {
	Listen string `yaml:"listen"`
}
