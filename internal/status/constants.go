// internal/status/constants.go
package status

// Node Status Block layout constants.
// These values define the protocol and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerNode is the fixed number of logical slots per node.
const SlotsPerNode = 20

// ---- SLOT INDICES ----

// Transport health, maintained by the orchestrator.
const (
	SlotHealthCode     = 0
	SlotLastErrorCode  = 1
	SlotSecondsInError = 2
)

// Node identity and mode.
const (
	SlotNodeNumber = 3
	SlotFlags      = 4
)

// Event table geometry and occupancy.
const (
	SlotCapacity = 5
	SlotStored   = 6
	SlotFree     = 7
)

// Protocol counters. 32-bit counters are truncated to their low 16 bits.
const (
	SlotTaught       = 8
	SlotConsumed     = 9
	SlotAcknowledged = 10
	SlotReceived     = 11
	SlotSent         = 12
	SlotSendErrors   = 13
)

// ---- RESERVED RANGE ----

// Slots 14-19 are reserved for future use.
const SlotReservedStart = 14
const SlotReservedEnd = 19

// ---- FLAG BITS (SlotFlags) ----

const (
	FlagLearning     uint16 = 1 << 0
	FlagEventAck     uint16 = 1 << 1
	FlagResetPending uint16 = 1 << 2
)

// ---- HEALTH CODES ----

// HealthUnknown represents an unknown or boot state.
const HealthUnknown uint16 = 0

// HealthOK represents a working bus transport.
const HealthOK uint16 = 1

// HealthError represents a transport error state.
const HealthError uint16 = 2
