// internal/vlcb/constants.go
package vlcb

// Wire vocabulary of the VLCB/CBUS layout-control bus.
// These values define the protocol and MUST NOT be configurable.

// ---- TEACHING OPCODES ----

const (
	OpNNLRN  byte = 0x53 // place node into learn mode
	OpNNULN  byte = 0x54 // exit learn mode
	OpNNCLR  byte = 0x55 // clear all stored events
	OpNNEVN  byte = 0x56 // request free event slot count
	OpNERD   byte = 0x57 // read all stored events
	OpRQEVN  byte = 0x58 // request stored event count
	OpWRACK  byte = 0x59 // write acknowledge
	OpCMDERR byte = 0x6F // command error (deprecated, paired with GRSP)
	OpEVNLF  byte = 0x70 // free slot count response
	OpNENRD  byte = 0x72 // read stored event by index
	OpNUMEV  byte = 0x74 // stored event count response
	OpMODE   byte = 0x76 // set operating mode
	OpRDGN   byte = 0x87 // request diagnostics
	OpEVULN  byte = 0x95 // unlearn event by NN/EN
	OpREVAL  byte = 0x9C // read EV by event index
	OpGRSP   byte = 0xAF // generic response
	OpREQEV  byte = 0xB2 // read EV in learn mode by NN/EN
	OpNEVAL  byte = 0xB5 // EV value response (by index)
	OpDGN    byte = 0xC7 // diagnostic value response
	OpEVLRN  byte = 0xD2 // learn event by NN/EN
	OpEVANS  byte = 0xD3 // EV answer (by NN/EN)
	OpENACK  byte = 0xE6 // event acknowledge
	OpENRSP  byte = 0xF2 // stored event response
	OpEVLRNI byte = 0xF5 // learn event by index
)

// ---- ACCESSORY EVENT OPCODES ----

// Long events: identity is the embedded (NN, EN).
const (
	OpACON  byte = 0x90
	OpACOF  byte = 0x91
	OpARON  byte = 0x93
	OpAROF  byte = 0x94
	OpACON1 byte = 0xB0
	OpACOF1 byte = 0xB1
	OpACON2 byte = 0xD0
	OpACOF2 byte = 0xD1
	OpACON3 byte = 0xF0
	OpACOF3 byte = 0xF1
)

// Short events: identity is (0, EN); the embedded NN is the sender's.
const (
	OpASON  byte = 0x98
	OpASOF  byte = 0x99
	OpASON1 byte = 0xB8
	OpASOF1 byte = 0xB9
	OpASON2 byte = 0xD8
	OpASOF2 byte = 0xD9
	OpASON3 byte = 0xF8
	OpASOF3 byte = 0xF9
)

// ---- MODE SUB-COMMANDS ----

const (
	ModeLearnOn     byte = 0x08
	ModeLearnOff    byte = 0x09
	ModeEventAckOn  byte = 0x0A
	ModeEventAckOff byte = 0x0B
)

// ---- STATUS CODES ----

const (
	StatusOK                byte = 0x00
	StatusInvalidCommand    byte = 0x01
	StatusNotLearning       byte = 0x02
	StatusTooManyEvents     byte = 0x04
	StatusInvalidEVIndex    byte = 0x06
	StatusInvalidEvent      byte = 0x07
	StatusInvalidEventIndex byte = 0x08
	StatusInvalidDiagnostic byte = 0xFD
)

// ---- SERVICE IDS ----

const (
	ServiceCAN      byte = 3
	ServiceOldTeach byte = 4 // NN/EN addressed teaching
	ServiceConsumer byte = 6
	ServiceTeach    byte = 7 // index addressed teaching
)

// ---- NODE PARAMETER FLAGS ----

const (
	FlagConsumer    byte = 0x01
	FlagProducer    byte = 0x02
	FlagNormal      byte = 0x04
	FlagConsumeOwn  byte = 0x10
	FlagLearn       byte = 0x20
	FlagVLCBCapable byte = 0x40
)
