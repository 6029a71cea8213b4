// internal/node/node_test.go
package node

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/tamzrod/vlcb-node/internal/store"
	"github.com/tamzrod/vlcb-node/internal/teach"
	"github.com/tamzrod/vlcb-node/internal/vlcb"
)

const thisNode uint16 = 0x0100

type fakeTransport struct {
	sent []vlcb.Message
	err  error
}

func (f *fakeTransport) Send(m vlcb.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m)
	return nil
}

type fakeCounters struct{}

func (fakeCounters) ReceiveErrorCounter() uint16  { return 0 }
func (fakeCounters) TransmitErrorCounter() uint16 { return 0 }
func (fakeCounters) ErrorStatus() uint16          { return 0 }
func (fakeCounters) TransmitCounter() uint16      { return 11 }
func (fakeCounters) ReceiveCounter() uint16       { return 22 }

func newTestNode(t *testing.T, cfg Config) (*Node, *store.EventStore, *fakeTransport) {
	t.Helper()
	st, err := store.New(store.NewImage(store.ImageSize(4, 2)), 4, 2)
	if err != nil {
		t.Fatalf("store.New err=%v", err)
	}
	cfg.NodeNumber = thisNode
	tr := &fakeTransport{}
	return New(cfg, st, tr, fakeCounters{}, zerolog.Nop()), st, tr
}

func TestServiceLayout(t *testing.T) {
	n, _, _ := newTestNode(t, Config{Consumer: true, Teaching: teach.EventAddressed{}})

	var ids []byte
	for _, s := range n.Services() {
		ids = append(ids, s.ServiceID())
	}
	want := []byte{vlcb.ServiceOldTeach, vlcb.ServiceConsumer, vlcb.ServiceCAN}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Fatalf("services (-want +got):\n%s", diff)
	}
}

func TestDiagnosticsThroughNode(t *testing.T) {
	n, _, tr := newTestNode(t, Config{})

	// teach=1, can=2
	n.Handle(vlcb.WithNN(vlcb.OpRDGN, thisNode, 2, 9))

	want := []vlcb.Message{vlcb.DGN(thisNode, 2, 9, 22)}
	if diff := cmp.Diff(want, tr.sent); diff != "" {
		t.Fatalf("sent (-want +got):\n%s", diff)
	}
}

func TestParamsFollowConfigAndLearn(t *testing.T) {
	n, _, _ := newTestNode(t, Config{Producer: true, Consumer: true, ConsumeOwnEvents: true})

	want := vlcb.FlagNormal | vlcb.FlagVLCBCapable | vlcb.FlagConsumer | vlcb.FlagProducer | vlcb.FlagConsumeOwn
	if n.Params() != want {
		t.Fatalf("params=%#x want %#x", n.Params(), want)
	}

	n.Handle(vlcb.WithNN(vlcb.OpNNLRN, thisNode))
	if !n.Learning() || !n.ParamFlag(vlcb.FlagLearn) {
		t.Fatalf("learn mode must raise PF_LRN")
	}
	n.Handle(vlcb.WithNN(vlcb.OpNNULN, thisNode))
	if n.Learning() || n.ParamFlag(vlcb.FlagLearn) {
		t.Fatalf("leaving learn mode must clear PF_LRN")
	}
}

func TestClearOnProducerRequestsReset(t *testing.T) {
	n, st, _ := newTestNode(t, Config{Producer: true})
	_ = st.Upsert(0, 1, 1)

	n.Handle(vlcb.WithNN(vlcb.OpNNLRN, thisNode))
	n.Handle(vlcb.WithNN(vlcb.OpNNCLR, thisNode))

	if st.Count() != 0 {
		t.Fatalf("table must be empty")
	}
	if !n.ResetPending() {
		t.Fatalf("producer node must be reset pending")
	}
}

func TestConsumeOwnEventsEcho(t *testing.T) {
	var consumed []int
	n, st, tr := newTestNode(t, Config{
		Consumer:         true,
		ConsumeOwnEvents: true,
		Handler:          func(index int, m vlcb.Message) { consumed = append(consumed, index) },
	})
	_ = st.Upsert(1, thisNode, 3)

	n.Send(vlcb.WithNN(vlcb.OpACON, thisNode, 0, 3))

	if diff := cmp.Diff([]int{1}, consumed); diff != "" {
		t.Fatalf("consumed (-want +got):\n%s", diff)
	}
	if len(tr.sent) != 1 {
		t.Fatalf("frame must still reach the transport, sent=%d", len(tr.sent))
	}
}

func TestNoEchoWithoutConsumeOwn(t *testing.T) {
	var consumed int
	n, st, _ := newTestNode(t, Config{
		Consumer: true,
		Handler:  func(int, vlcb.Message) { consumed++ },
	})
	_ = st.Upsert(1, thisNode, 3)

	n.Send(vlcb.WithNN(vlcb.OpACON, thisNode, 0, 3))

	if consumed != 0 {
		t.Fatalf("own events must not be consumed")
	}
}

func TestSendErrorsAreCounted(t *testing.T) {
	n, _, tr := newTestNode(t, Config{})
	tr.err = errors.New("port closed")

	n.Handle(vlcb.WithNN(vlcb.OpRQEVN, thisNode))

	s := n.Stats()
	if s.SendErrors != 1 || s.Sent != 0 || s.Received != 1 || s.ActedOn != 1 {
		t.Fatalf("stats=%+v", s)
	}
}

func TestStatsSnapshot(t *testing.T) {
	acted := 0
	n, _, _ := newTestNode(t, Config{
		Consumer:  true,
		Teaching:  teach.EventAddressed{},
		Handler:   func(int, vlcb.Message) {},
		OnActedOn: func() { acted++ },
	})

	n.Handle(vlcb.WithNN(vlcb.OpNNLRN, thisNode))
	n.Handle(vlcb.New(vlcb.OpEVLRN, 0x02, 0x00, 0x00, 0x05, 1, 9))
	n.Handle(vlcb.WithNN(vlcb.OpMODE, thisNode, vlcb.ModeEventAckOn))
	n.Handle(vlcb.New(vlcb.OpACON, 0x02, 0x00, 0x00, 0x05))

	got := n.Stats()
	want := Stats{
		NodeNumber:   thisNode,
		Learning:     true,
		EventAck:     true,
		Capacity:     4,
		Stored:       1,
		Free:         3,
		Taught:       1,
		Consumed:     1,
		Acknowledged: 1,
		ActedOn:      4,
		Received:     4,
		Sent:         3, // WRACK, GRSP, ENACK
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("stats (-want +got):\n%s", diff)
	}
	if acted != 4 {
		t.Fatalf("OnActedOn called %d times want 4", acted)
	}
}
