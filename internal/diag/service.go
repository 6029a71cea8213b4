// internal/diag/service.go
package diag

import (
	"github.com/rs/zerolog"

	"github.com/tamzrod/vlcb-node/internal/vlcb"
)

// Counters are the transport-level values reported over the bus.
type Counters interface {
	ReceiveErrorCounter() uint16
	TransmitErrorCounter() uint16
	ErrorStatus() uint16
	TransmitCounter() uint16
	ReceiveCounter() uint16
}

// Controller is what the reporter needs from the owning node.
type Controller interface {
	NodeNumber() uint16
	Send(m vlcb.Message)
	ActedOn()
}

// Diagnostic codes of the CAN service. Codes not tracked at this layer
// report zero.
const (
	CodeAll               byte = 0x00
	CodeRxErrors          byte = 0x01
	CodeTxErrors          byte = 0x02
	CodeStatus            byte = 0x03
	CodeTxBufferUsage     byte = 0x04
	CodeTxOverruns        byte = 0x05
	CodeTxFrames          byte = 0x06
	CodeRxBufferUsage     byte = 0x07
	CodeRxOverruns        byte = 0x08
	CodeRxFrames          byte = 0x09
	CodeErrorFramesSeen   byte = 0x0A
	CodeErrorFramesSent   byte = 0x0B
	CodeArbitrationLost   byte = 0x0C
	CodeEnumerations      byte = 0x0D
	CodeIDConflicts       byte = 0x0E
	CodeIDChanges         byte = 0x0F
	CodeEnumerationFailed byte = 0x10
	CodeTxHighWatermark   byte = 0x11
	CodeRxHighWatermark   byte = 0x12

	// Count is the number of individual codes reported by CodeAll.
	Count byte = 0x12
)

// Service answers RDGN requests addressed to its service index.
type Service struct {
	c        Controller
	counters Counters
	index    byte
	log      zerolog.Logger
}

func New(c Controller, counters Counters, serviceIndex byte, log zerolog.Logger) *Service {
	return &Service{
		c:        c,
		counters: counters,
		index:    serviceIndex,
		log:      log.With().Str("service", "diag").Logger(),
	}
}

func (s *Service) ServiceID() byte { return vlcb.ServiceCAN }

// Index is this service's position in the node's service list.
func (s *Service) Index() byte { return s.index }

// Handle processes RDGN (NN, service index, code).
func (s *Service) Handle(m vlcb.Message) {
	if m.Opcode() != vlcb.OpRDGN || m.NN() != s.c.NodeNumber() || m.Data[3] != s.index {
		return
	}
	s.c.ActedOn()
	s.Report(m.Data[4])
}

// Report emits one DGN frame for code, or the whole set for CodeAll.
func (s *Service) Report(code byte) {
	if code == CodeAll {
		s.send(CodeAll, uint16(Count))
		for c := byte(1); c <= Count; c++ {
			s.Report(c)
		}
		return
	}

	v, ok := s.value(code)
	if !ok {
		s.log.Debug().Uint8("code", code).Msg("unknown diagnostic code")
		s.c.Send(vlcb.GRSP(s.c.NodeNumber(), vlcb.OpRDGN, s.index, vlcb.StatusInvalidDiagnostic))
		return
	}
	s.send(code, v)
}

func (s *Service) value(code byte) (uint16, bool) {
	switch code {
	case CodeRxErrors:
		return s.counters.ReceiveErrorCounter(), true
	case CodeTxErrors:
		return s.counters.TransmitErrorCounter(), true
	case CodeStatus:
		return s.counters.ErrorStatus(), true
	case CodeTxFrames:
		return s.counters.TransmitCounter(), true
	case CodeRxFrames:
		return s.counters.ReceiveCounter(), true
	}
	if code >= 1 && code <= Count {
		return 0, true
	}
	return 0, false
}

func (s *Service) send(code byte, v uint16) {
	s.c.Send(vlcb.DGN(s.c.NodeNumber(), s.index, code, v))
}
