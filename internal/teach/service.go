// internal/teach/service.go
package teach

import (
	"github.com/rs/zerolog"

	"github.com/tamzrod/vlcb-node/internal/store"
	"github.com/tamzrod/vlcb-node/internal/vlcb"
)

// Controller is what the teaching service needs from the owning node.
type Controller interface {
	NodeNumber() uint16
	Send(m vlcb.Message)
	ActedOn()
	SetParamFlag(flag byte, on bool)
	ParamFlag(flag byte) bool
	RequestReset()
}

// Validator lets the application veto a learn request. A non-zero return is
// sent back verbatim as the status code.
type Validator func(nn, en uint16, evNum, evVal byte) byte

// Options are fixed at node configuration time.
type Options struct {
	// FCUCompatible suppresses the per-EV expansion after an EV count reply.
	FCUCompatible bool
	Validator     Validator
}

// Data describes the service to introspection requests.
type Data struct {
	MaxEvents int
	MaxEVs    int
	Version   byte
}

type handler func(s *Service, m vlcb.Message)

// Service implements event teaching on top of an EventStore. The opcode set
// is the shared base plus the handlers of one Addressing strategy.
type Service struct {
	c    Controller
	st   *store.EventStore
	opts Options
	log  zerolog.Logger

	learn     LearnMode
	serviceID byte
	handlers  map[byte]handler
	taught    uint32
}

// New builds a teaching service for the given addressing strategy.
func New(c Controller, st *store.EventStore, a Addressing, opts Options, log zerolog.Logger) *Service {
	s := &Service{
		c:         c,
		st:        st,
		opts:      opts,
		log:       log.With().Str("service", "teach").Logger(),
		serviceID: a.ServiceID(),
		handlers: map[byte]handler{
			vlcb.OpMODE:  (*Service).handleMode,
			vlcb.OpNNLRN: (*Service).handleNodeLearn,
			vlcb.OpEVULN: (*Service).handleUnlearnEvent,
			vlcb.OpNNULN: (*Service).handleNodeUnlearn,
			vlcb.OpRQEVN: (*Service).handleEventCount,
			vlcb.OpNERD:  (*Service).handleReadEvents,
			vlcb.OpREVAL: (*Service).handleReadEventVariable,
			vlcb.OpNNCLR: (*Service).handleClearEvents,
			vlcb.OpNNEVN: (*Service).handleFreeSlots,
		},
	}
	for op, h := range a.handlers() {
		s.handlers[op] = h
	}
	return s
}

// ServiceID identifies the addressing variant on the bus.
func (s *Service) ServiceID() byte { return s.serviceID }

// Data reports the table geometry.
func (s *Service) Data() Data {
	return Data{MaxEvents: s.st.Capacity(), MaxEVs: s.st.VariableCount(), Version: 1}
}

// Taught counts successful learn commands.
func (s *Service) Taught() uint32 { return s.taught }

// Learning reports the learn mode state.
func (s *Service) Learning() bool { return s.learn.Learning() }

// Handle runs the handler registered for the frame's opcode, if any.
func (s *Service) Handle(m vlcb.Message) {
	if h, ok := s.handlers[m.Opcode()]; ok {
		h(s, m)
	}
}

// EnableLearn enters learn mode and raises the PF_LRN parameter flag.
func (s *Service) EnableLearn() {
	s.learn.Enable()
	s.c.SetParamFlag(vlcb.FlagLearn, true)
	s.log.Debug().Msg("learn mode on")
}

// InhibitLearn leaves learn mode and clears the PF_LRN parameter flag.
func (s *Service) InhibitLearn() {
	s.learn.Disable()
	s.c.SetParamFlag(vlcb.FlagLearn, false)
	s.log.Debug().Msg("learn mode off")
}

func (s *Service) isThisNode(nn uint16) bool { return nn == s.c.NodeNumber() }

// reject sends the deprecated CMDERR followed by GRSP.
func (s *Service) reject(op, code byte) {
	s.log.Debug().Hex("op", []byte{op}).Uint8("code", code).Msg("command rejected")
	s.c.Send(vlcb.CMDERR(s.c.NodeNumber(), code))
	s.c.Send(vlcb.GRSP(s.c.NodeNumber(), op, s.serviceID, code))
}

// malformed reports a short frame with GRSP only.
func (s *Service) malformed(op byte) {
	s.log.Debug().Hex("op", []byte{op}).Msg("short frame")
	s.c.Send(vlcb.GRSP(s.c.NodeNumber(), op, s.serviceID, vlcb.StatusInvalidCommand))
}

func (s *Service) accept(op byte) {
	s.c.Send(vlcb.WRACK(s.c.NodeNumber()))
	s.c.Send(vlcb.GRSP(s.c.NodeNumber(), op, s.serviceID, vlcb.StatusOK))
}

// ---- shared base handlers ----

func (s *Service) handleMode(m vlcb.Message) {
	if !s.isThisNode(m.NN()) {
		return
	}

	switch m.Data[3] {
	case vlcb.ModeLearnOn:
		s.EnableLearn()
	case vlcb.ModeLearnOff:
		s.InhibitLearn()
	default:
		return
	}
	s.c.ActedOn()
}

func (s *Service) handleNodeLearn(m vlcb.Message) {
	if s.isThisNode(m.NN()) {
		s.EnableLearn()
		s.c.ActedOn()
		return
	}

	// another node was put into learn mode: yield
	if s.learn.Learning() {
		s.InhibitLearn()
		s.c.ActedOn()
	}
}

func (s *Service) handleUnlearnEvent(m vlcb.Message) {
	if !s.learn.Learning() {
		return
	}
	s.c.ActedOn()

	if m.Len < 5 {
		s.malformed(vlcb.OpEVULN)
		return
	}

	nn, en := m.NN(), m.EN()
	index, ok := s.st.Find(nn, en)
	if !ok {
		s.reject(vlcb.OpEVULN, vlcb.StatusInvalidEvent)
		return
	}

	// index-addressed teaching can leave duplicates; remove them all
	for ok {
		if err := s.st.Remove(index); err != nil {
			s.log.Error().Err(err).Int("index", index).Msg("unlearn failed")
			return
		}
		index, ok = s.st.Find(nn, en)
	}

	s.accept(vlcb.OpEVULN)
}

func (s *Service) handleNodeUnlearn(m vlcb.Message) {
	if !s.isThisNode(m.NN()) {
		return
	}
	s.c.ActedOn()
	s.InhibitLearn()
}

func (s *Service) handleEventCount(m vlcb.Message) {
	if !s.isThisNode(m.NN()) {
		return
	}
	s.c.ActedOn()
	s.c.Send(vlcb.WithNN(vlcb.OpNUMEV, s.c.NodeNumber(), byte(s.st.Count())))
}

func (s *Service) handleReadEvents(m vlcb.Message) {
	if !s.isThisNode(m.NN()) {
		return
	}
	s.c.ActedOn()

	for i := 0; i < s.st.Capacity(); i++ {
		if !s.st.Occupied(i) {
			continue
		}
		nn, en, _ := s.st.Event(i)
		s.c.Send(vlcb.ENRSP(s.c.NodeNumber(), nn, en, byte(i)))
	}
}

func (s *Service) handleReadEventVariable(m vlcb.Message) {
	if !s.isThisNode(m.NN()) {
		return
	}
	s.c.ActedOn()

	if m.Len < 5 {
		s.malformed(vlcb.OpREVAL)
		return
	}

	index := int(m.Data[3])
	evNum := int(m.Data[4])

	if index >= s.st.Capacity() || !s.st.Occupied(index) {
		s.reject(vlcb.OpREVAL, vlcb.StatusInvalidEventIndex)
		return
	}
	if evNum > s.st.VariableCount() {
		s.reject(vlcb.OpREVAL, vlcb.StatusInvalidEVIndex)
		return
	}

	nn := s.c.NodeNumber()
	if evNum != 0 {
		v, _ := s.st.EV(index, evNum)
		s.c.Send(vlcb.NEVAL(nn, byte(index), byte(evNum), v))
		return
	}

	n := s.st.VariableCount()
	s.c.Send(vlcb.NEVAL(nn, byte(index), 0, byte(n)))
	if s.opts.FCUCompatible {
		return
	}
	for i := 1; i <= n; i++ {
		v, _ := s.st.EV(index, i)
		s.c.Send(vlcb.NEVAL(nn, byte(index), byte(i), v))
	}
}

func (s *Service) handleClearEvents(m vlcb.Message) {
	if !s.isThisNode(m.NN()) {
		return
	}
	s.c.ActedOn()

	if !s.learn.Learning() {
		s.reject(vlcb.OpNNCLR, vlcb.StatusNotLearning)
		return
	}

	s.st.ClearAll()
	s.log.Info().Msg("all events cleared")

	if s.c.ParamFlag(vlcb.FlagProducer) {
		s.c.RequestReset()
	}

	s.accept(vlcb.OpNNCLR)
}

func (s *Service) handleFreeSlots(m vlcb.Message) {
	if !s.isThisNode(m.NN()) {
		return
	}
	s.c.ActedOn()
	s.c.Send(vlcb.WithNN(vlcb.OpEVNLF, s.c.NodeNumber(), byte(s.st.FreeCount())))
}
