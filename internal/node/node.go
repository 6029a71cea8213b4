// internal/node/node.go
package node

import (
	"github.com/rs/zerolog"

	"github.com/tamzrod/vlcb-node/internal/consume"
	"github.com/tamzrod/vlcb-node/internal/diag"
	"github.com/tamzrod/vlcb-node/internal/store"
	"github.com/tamzrod/vlcb-node/internal/teach"
	"github.com/tamzrod/vlcb-node/internal/vlcb"
)

// Transport puts frames on the bus.
type Transport interface {
	Send(m vlcb.Message) error
}

// Config is the node identity and behaviour fixed at start-up.
type Config struct {
	NodeNumber       uint16
	Producer         bool
	Consumer         bool
	ConsumeOwnEvents bool
	FCUCompatible    bool

	// Teaching selects the teaching opcode set. Nil means index addressed.
	Teaching  teach.Addressing
	Validator teach.Validator
	Handler   consume.Handler

	// OnActedOn is called every time a frame causes this node to act.
	OnActedOn func()
}

// Service is one bus service hosted by the node.
type Service interface {
	ServiceID() byte
	Handle(m vlcb.Message)
}

// Stats is a point-in-time view of the node counters.
type Stats struct {
	NodeNumber   uint16
	Learning     bool
	ResetPending bool
	EventAck     bool

	Capacity int
	Stored   int
	Free     int

	Taught       uint32
	Consumed     uint32
	Acknowledged uint32
	ActedOn      uint32

	Received   uint32
	Sent       uint32
	SendErrors uint32
}

// Node owns the services and the state they share. It is not safe for
// concurrent use; a single goroutine feeds it frames.
type Node struct {
	cfg Config
	st  *store.EventStore
	tr  Transport
	log zerolog.Logger

	params       byte
	resetPending bool

	teach    *teach.Service
	consume  *consume.Service
	diag     *diag.Service
	services []Service

	actedOn    uint32
	received   uint32
	sent       uint32
	sendErrors uint32
}

func New(cfg Config, st *store.EventStore, tr Transport, counters diag.Counters, log zerolog.Logger) *Node {
	n := &Node{
		cfg: cfg,
		st:  st,
		tr:  tr,
		log: log.With().Uint16("node", cfg.NodeNumber).Logger(),
	}

	n.params = vlcb.FlagNormal | vlcb.FlagVLCBCapable
	if cfg.Consumer {
		n.params |= vlcb.FlagConsumer
	}
	if cfg.Producer {
		n.params |= vlcb.FlagProducer
	}
	if cfg.Consumer && cfg.ConsumeOwnEvents {
		n.params |= vlcb.FlagConsumeOwn
	}

	a := cfg.Teaching
	if a == nil {
		a = teach.IndexAddressed{}
	}
	n.teach = teach.New(n, st, a, teach.Options{
		FCUCompatible: cfg.FCUCompatible,
		Validator:     cfg.Validator,
	}, n.log)
	n.services = append(n.services, n.teach)

	if cfg.Consumer {
		n.consume = consume.New(n, st, cfg.Handler, n.log)
		n.services = append(n.services, n.consume)
	}

	if counters != nil {
		// service indexes are 1-based
		n.diag = diag.New(n, counters, byte(len(n.services)+1), n.log)
		n.services = append(n.services, n.diag)
	}

	return n
}

// Handle offers one inbound frame to every service.
func (n *Node) Handle(m vlcb.Message) {
	n.received++
	n.log.Trace().Stringer("frame", m).Msg("rx")
	for _, s := range n.services {
		s.Handle(m)
	}
}

// Services lists the hosted services in index order.
func (n *Node) Services() []Service { return n.services }

func (n *Node) NodeNumber() uint16 { return n.cfg.NodeNumber }

// Send transmits m. Transport failures are logged and counted.
func (n *Node) Send(m vlcb.Message) {
	n.log.Trace().Stringer("frame", m).Msg("tx")
	if err := n.tr.Send(m); err != nil {
		n.sendErrors++
		n.log.Error().Err(err).Stringer("frame", m).Msg("send failed")
	} else {
		n.sent++
	}

	if n.consume != nil && n.ParamFlag(vlcb.FlagConsumeOwn) {
		n.consume.HandleOutgoing(m)
	}
}

func (n *Node) ActedOn() {
	n.actedOn++
	if n.cfg.OnActedOn != nil {
		n.cfg.OnActedOn()
	}
}

// Params is the node parameter flags byte.
func (n *Node) Params() byte { return n.params }

func (n *Node) SetParamFlag(flag byte, on bool) {
	if on {
		n.params |= flag
	} else {
		n.params &^= flag
	}
}

func (n *Node) ParamFlag(flag byte) bool { return n.params&flag != 0 }

// RequestReset marks the node as needing a restart.
func (n *Node) RequestReset() {
	if !n.resetPending {
		n.log.Info().Msg("reset requested")
	}
	n.resetPending = true
}

func (n *Node) ResetPending() bool { return n.resetPending }

func (n *Node) Learning() bool { return n.teach.Learning() }

// TeachingData describes the event table to introspection requests.
func (n *Node) TeachingData() teach.Data { return n.teach.Data() }

func (n *Node) Stats() Stats {
	s := Stats{
		NodeNumber:   n.cfg.NodeNumber,
		Learning:     n.teach.Learning(),
		ResetPending: n.resetPending,
		EventAck:     n.st.EventAck(),
		Capacity:     n.st.Capacity(),
		Stored:       n.st.Count(),
		Free:         n.st.FreeCount(),
		Taught:       n.teach.Taught(),
		ActedOn:      n.actedOn,
		Received:     n.received,
		Sent:         n.sent,
		SendErrors:   n.sendErrors,
	}
	if n.consume != nil {
		cs := n.consume.Stats()
		s.Consumed = cs.Consumed
		s.Acknowledged = cs.Acknowledged
	}
	return s
}
