// internal/vlcb/message.go
package vlcb

import "fmt"

// MaxLen is the largest payload a bus frame carries (opcode included).
const MaxLen = 8

// Message is one bus frame payload: opcode followed by up to 7 data bytes.
// Fixed size, no heap allocation. Bytes past Len read as zero.
type Message struct {
	Len  uint8
	Data [MaxLen]byte
}

// New builds a message from raw bytes. Excess bytes are dropped.
func New(b ...byte) Message {
	var m Message
	m.Len = uint8(copy(m.Data[:], b))
	return m
}

// Opcode returns the first byte of the frame.
func (m Message) Opcode() byte { return m.Data[0] }

// NN returns the big-endian node number at bytes 1-2.
func (m Message) NN() uint16 { return u16(m.Data[1], m.Data[2]) }

// EN returns the big-endian event number at bytes 3-4.
func (m Message) EN() uint16 { return u16(m.Data[3], m.Data[4]) }

// Bytes returns the used part of the payload.
func (m Message) Bytes() []byte { return m.Data[:m.Len] }

func (m Message) String() string {
	if m.Len == 0 {
		return "[]"
	}
	return fmt.Sprintf("[%02X]% X", m.Opcode(), m.Data[1:m.Len])
}

// IsAccessoryEvent reports whether op is one of the ON/OFF event opcodes a
// consumer reacts to.
func IsAccessoryEvent(op byte) bool {
	return IsLongEvent(op) || IsShortEvent(op)
}

// IsLongEvent reports whether op identifies its event by the embedded (NN, EN).
func IsLongEvent(op byte) bool {
	switch op {
	case OpACON, OpACOF, OpARON, OpAROF,
		OpACON1, OpACOF1, OpACON2, OpACOF2, OpACON3, OpACOF3:
		return true
	}
	return false
}

// IsShortEvent reports whether op identifies its event by EN alone.
func IsShortEvent(op byte) bool {
	switch op {
	case OpASON, OpASOF, OpASON1, OpASOF1,
		OpASON2, OpASOF2, OpASON3, OpASOF3:
		return true
	}
	return false
}

// ---- response builders ----

// WithNN builds "opcode, NNhi, NNlo, data..." as sent by a node about itself.
func WithNN(op byte, nn uint16, data ...byte) Message {
	m := New(op, hi(nn), lo(nn))
	m.Len += uint8(copy(m.Data[3:], data))
	return m
}

// WRACK acknowledges a successful write.
func WRACK(nn uint16) Message { return WithNN(OpWRACK, nn) }

// GRSP is the generic response carrying the request opcode, service id and result.
func GRSP(nn uint16, op, serviceID, result byte) Message {
	return WithNN(OpGRSP, nn, op, serviceID, result)
}

// CMDERR is the deprecated error response kept for older tooling.
func CMDERR(nn uint16, code byte) Message { return WithNN(OpCMDERR, nn, code) }

// ENRSP reports one stored event and its table index.
func ENRSP(nn, evNN, evEN uint16, index byte) Message {
	return WithNN(OpENRSP, nn, hi(evNN), lo(evNN), hi(evEN), lo(evEN), index)
}

// NEVAL reports one EV addressed by event index.
func NEVAL(nn uint16, index, evNum, value byte) Message {
	return WithNN(OpNEVAL, nn, index, evNum, value)
}

// EVANS reports one EV addressed by the event's (NN, EN).
func EVANS(evNN, evEN uint16, evNum, value byte) Message {
	return New(OpEVANS, hi(evNN), lo(evNN), hi(evEN), lo(evEN), evNum, value)
}

// ENACK acknowledges a consumed event.
func ENACK(nn uint16, op byte, evNN, evEN uint16) Message {
	return WithNN(OpENACK, nn, op, hi(evNN), lo(evNN), hi(evEN), lo(evEN))
}

// DGN carries one 16-bit diagnostic value.
func DGN(nn uint16, serviceIndex, code byte, value uint16) Message {
	return WithNN(OpDGN, nn, serviceIndex, code, hi(value), lo(value))
}

func u16(h, l byte) uint16 { return uint16(h)<<8 | uint16(l) }
func hi(v uint16) byte     { return byte(v >> 8) }
func lo(v uint16) byte     { return byte(v) }
