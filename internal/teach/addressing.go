// internal/teach/addressing.go
package teach

import "github.com/tamzrod/vlcb-node/internal/vlcb"

// Addressing selects the opcode set layered over the shared teaching base.
type Addressing interface {
	ServiceID() byte
	handlers() map[byte]handler
}

// IndexAddressed teaches events into explicit table rows (EVLRNI/NENRD).
type IndexAddressed struct{}

func (IndexAddressed) ServiceID() byte { return vlcb.ServiceTeach }

func (IndexAddressed) handlers() map[byte]handler {
	return map[byte]handler{
		vlcb.OpEVLRNI: (*Service).handleLearnEventIndex,
		vlcb.OpNENRD:  (*Service).handleReadEventIndex,
	}
}

// EventAddressed teaches events by their (NN, EN) identity (EVLRN/REQEV).
type EventAddressed struct{}

func (EventAddressed) ServiceID() byte { return vlcb.ServiceOldTeach }

func (EventAddressed) handlers() map[byte]handler {
	return map[byte]handler{
		vlcb.OpREQEV: (*Service).handleRequestEventVariable,
		vlcb.OpEVLRN: (*Service).handleLearnEvent,
	}
}

// ---- index addressed ----

func (s *Service) handleLearnEventIndex(m vlcb.Message) {
	if !s.learn.Learning() {
		return
	}
	s.c.ActedOn()

	if m.Len < 8 {
		s.malformed(vlcb.OpEVLRNI)
		return
	}

	index := int(m.Data[5])
	evIndex := int(m.Data[6])
	evVal := m.Data[7]

	if index >= s.st.Capacity() {
		s.c.Send(vlcb.GRSP(s.c.NodeNumber(), vlcb.OpEVLRNI, s.serviceID, vlcb.StatusInvalidEventIndex))
		return
	}
	if evIndex > s.st.VariableCount() {
		s.reject(vlcb.OpEVLRNI, vlcb.StatusInvalidEVIndex)
		return
	}

	if evIndex == 0 && evVal == 0 {
		if err := s.st.Remove(index); err != nil {
			s.log.Error().Err(err).Int("index", index).Msg("delete failed")
			return
		}
		s.accept(vlcb.OpEVLRNI)
		return
	}

	// (0,0) marks a free row and cannot be stored
	if m.NN() == 0 && m.EN() == 0 {
		s.reject(vlcb.OpEVLRNI, vlcb.StatusInvalidEvent)
		return
	}

	// identity is only rewritten when it differs
	nn, en, _ := s.st.Event(index)
	if nn != m.NN() || en != m.EN() {
		if err := s.st.Upsert(index, m.NN(), m.EN()); err != nil {
			s.log.Error().Err(err).Int("index", index).Msg("write event failed")
			return
		}
	}

	if evIndex != 0 {
		if err := s.st.SetEV(index, evIndex, evVal); err != nil {
			s.log.Error().Err(err).Int("index", index).Msg("write EV failed")
			return
		}
	}

	s.accept(vlcb.OpEVLRNI)
	s.taught++
}

func (s *Service) handleReadEventIndex(m vlcb.Message) {
	if !s.isThisNode(m.NN()) {
		return
	}
	s.c.ActedOn()

	index := int(m.Data[3])
	if index >= s.st.Capacity() || !s.st.Occupied(index) {
		s.reject(vlcb.OpNENRD, vlcb.StatusInvalidEventIndex)
		return
	}

	nn, en, _ := s.st.Event(index)
	s.c.Send(vlcb.ENRSP(s.c.NodeNumber(), nn, en, byte(index)))
}

// ---- NN/EN addressed ----

func (s *Service) handleRequestEventVariable(m vlcb.Message) {
	if !s.learn.Learning() {
		return
	}
	s.c.ActedOn()

	if m.Len < 6 {
		s.malformed(vlcb.OpREQEV)
		return
	}

	nn, en := m.NN(), m.EN()
	evNum := int(m.Data[5])

	index, ok := s.st.Find(nn, en)
	if !ok {
		s.reject(vlcb.OpREQEV, vlcb.StatusInvalidEvent)
		return
	}
	if evNum > s.st.VariableCount() {
		s.reject(vlcb.OpREQEV, vlcb.StatusInvalidEVIndex)
		return
	}

	if evNum != 0 {
		v, _ := s.st.EV(index, evNum)
		s.c.Send(vlcb.EVANS(nn, en, byte(evNum), v))
		return
	}

	n := s.st.VariableCount()
	s.c.Send(vlcb.EVANS(nn, en, 0, byte(n)))
	if s.opts.FCUCompatible {
		return
	}
	for i := 1; i <= n; i++ {
		v, _ := s.st.EV(index, i)
		s.c.Send(vlcb.EVANS(nn, en, byte(i), v))
	}
}

func (s *Service) handleLearnEvent(m vlcb.Message) {
	if !s.learn.Learning() {
		return
	}
	s.c.ActedOn()

	if m.Len < 7 {
		s.malformed(vlcb.OpEVLRN)
		return
	}

	nn, en := m.NN(), m.EN()
	evNum := m.Data[5]
	evVal := m.Data[6]

	if evNum == 0 || int(evNum) > s.st.VariableCount() {
		s.reject(vlcb.OpEVLRN, vlcb.StatusInvalidEVIndex)
		return
	}

	// (0,0) marks a free row and cannot be stored
	if nn == 0 && en == 0 {
		s.reject(vlcb.OpEVLRN, vlcb.StatusInvalidEvent)
		return
	}

	if s.opts.Validator != nil {
		if code := s.opts.Validator(nn, en, evNum, evVal); code != vlcb.StatusOK {
			s.reject(vlcb.OpEVLRN, code)
			return
		}
	}

	index, ok := s.st.Find(nn, en)
	if !ok {
		index, ok = s.st.FreeSlot()
		if !ok {
			s.reject(vlcb.OpEVLRN, vlcb.StatusTooManyEvents)
			return
		}
		if err := s.st.Upsert(index, nn, en); err != nil {
			s.log.Error().Err(err).Int("index", index).Msg("write event failed")
			return
		}
	}

	if err := s.st.SetEV(index, int(evNum), evVal); err != nil {
		s.log.Error().Err(err).Int("index", index).Msg("write EV failed")
		return
	}

	s.accept(vlcb.OpEVLRN)
	s.taught++
}
