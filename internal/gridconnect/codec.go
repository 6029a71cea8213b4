// internal/gridconnect/codec.go
package gridconnect

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tamzrod/vlcb-node/internal/vlcb"
)

// ErrMalformed reports a frame that is not valid GridConnect text.
var ErrMalformed = errors.New("gridconnect: malformed frame")

// DefaultPriority is the 4-bit CBUS priority (major 2, minor 3) used for
// every frame this node sends.
const DefaultPriority byte = 0xB

// maxFrameLen is ":X" + 8 header + "N" + 16 data + ";".
const maxFrameLen = 28

// Frame is one decoded CAN frame.
type Frame struct {
	ID       uint32 // 11-bit standard or 29-bit extended identifier
	Extended bool
	Remote   bool
	Msg      vlcb.Message
}

// CANID is the node's bus identifier carried in a standard frame.
func (f Frame) CANID() byte { return byte(f.ID & 0x7F) }

// Encode renders m as a standard data frame ":S<hhhh>N<data>;".
func Encode(canID byte, m vlcb.Message) string {
	id := uint16(DefaultPriority)<<7 | uint16(canID&0x7F)

	var b strings.Builder
	b.Grow(maxFrameLen)
	fmt.Fprintf(&b, ":S%04XN", id<<5)
	for _, v := range m.Bytes() {
		fmt.Fprintf(&b, "%02X", v)
	}
	b.WriteByte(';')
	return b.String()
}

// Decode parses one frame including its ':' and ';' delimiters.
func Decode(s string) (Frame, error) {
	s = strings.TrimSpace(s)
	if len(s) < 8 || s[0] != ':' || s[len(s)-1] != ';' {
		return Frame{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	body := s[1 : len(s)-1]

	var f Frame
	var headerLen int
	switch body[0] {
	case 'S':
		headerLen = 4
	case 'X':
		headerLen = 8
		f.Extended = true
	default:
		return Frame{}, fmt.Errorf("%w: frame type %q", ErrMalformed, body[0])
	}
	body = body[1:]
	if len(body) < headerLen+1 {
		return Frame{}, fmt.Errorf("%w: short header", ErrMalformed)
	}

	header, err := strconv.ParseUint(body[:headerLen], 16, 32)
	if err != nil {
		return Frame{}, fmt.Errorf("%w: header: %v", ErrMalformed, err)
	}
	if f.Extended {
		sidh := uint32(header >> 24)
		sidl := uint32(header>>16) & 0xFF
		eid := uint32(header) & 0xFFFF
		f.ID = sidh<<21 | (sidl>>5)<<18 | (sidl&0x03)<<16 | eid
	} else {
		f.ID = uint32(header >> 5)
	}
	body = body[headerLen:]

	switch body[0] {
	case 'N':
	case 'R':
		f.Remote = true
	default:
		return Frame{}, fmt.Errorf("%w: frame kind %q", ErrMalformed, body[0])
	}

	data := body[1:]
	if len(data)%2 != 0 || len(data) > 2*vlcb.MaxLen {
		return Frame{}, fmt.Errorf("%w: data length %d", ErrMalformed, len(data))
	}
	for i := 0; i < len(data); i += 2 {
		v, err := strconv.ParseUint(data[i:i+2], 16, 8)
		if err != nil {
			return Frame{}, fmt.Errorf("%w: data: %v", ErrMalformed, err)
		}
		f.Msg.Data[i/2] = byte(v)
	}
	f.Msg.Len = uint8(len(data) / 2)

	return f, nil
}
