// internal/consume/service.go
package consume

import (
	"github.com/rs/zerolog"

	"github.com/tamzrod/vlcb-node/internal/store"
	"github.com/tamzrod/vlcb-node/internal/vlcb"
)

// Controller is what the consumer needs from the owning node.
type Controller interface {
	NodeNumber() uint16
	Send(m vlcb.Message)
	ActedOn()
}

// Handler is called synchronously for every accessory event that matches a
// learned row.
type Handler func(index int, m vlcb.Message)

// Stats are the consumer's running counters.
type Stats struct {
	Consumed     uint32
	Acknowledged uint32
}

// Service matches accessory events against the event table.
type Service struct {
	c       Controller
	st      *store.EventStore
	handler Handler
	log     zerolog.Logger

	stats Stats
}

func New(c Controller, st *store.EventStore, h Handler, log zerolog.Logger) *Service {
	return &Service{
		c:       c,
		st:      st,
		handler: h,
		log:     log.With().Str("service", "consume").Logger(),
	}
}

func (s *Service) ServiceID() byte { return vlcb.ServiceConsumer }

func (s *Service) Stats() Stats { return s.stats }

// Handle processes an inbound frame.
func (s *Service) Handle(m vlcb.Message) {
	op := m.Opcode()
	switch {
	case vlcb.IsLongEvent(op):
		s.consume(m, m.NN(), m.EN())
	case vlcb.IsShortEvent(op):
		s.consume(m, 0, m.EN())
	case op == vlcb.OpMODE:
		s.handleMode(m)
	}
}

// HandleOutgoing feeds back a frame this node sent itself.
// The node calls it only when consume-own-events is enabled.
func (s *Service) HandleOutgoing(m vlcb.Message) {
	op := m.Opcode()
	switch {
	case vlcb.IsLongEvent(op):
		s.consume(m, m.NN(), m.EN())
	case vlcb.IsShortEvent(op):
		s.consume(m, 0, m.EN())
	}
}

func (s *Service) consume(m vlcb.Message, nn, en uint16) {
	if s.handler == nil {
		return
	}

	index, ok := s.st.Find(nn, en)
	if !ok {
		return
	}

	s.stats.Consumed++
	s.c.ActedOn()
	s.log.Debug().Int("index", index).Uint16("nn", nn).Uint16("en", en).Msg("event consumed")
	s.handler(index, m)

	if s.st.EventAck() {
		s.c.Send(vlcb.ENACK(s.c.NodeNumber(), m.Opcode(), nn, en))
		s.stats.Acknowledged++
	}
}

func (s *Service) handleMode(m vlcb.Message) {
	if m.NN() != s.c.NodeNumber() {
		return
	}

	switch m.Data[3] {
	case vlcb.ModeEventAckOn:
		s.st.SetEventAck(true)
	case vlcb.ModeEventAckOff:
		s.st.SetEventAck(false)
	default:
		return
	}
	s.c.ActedOn()
}
