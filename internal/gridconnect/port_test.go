// internal/gridconnect/port_test.go
package gridconnect

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/goburrow/serial"
	"github.com/rs/zerolog"

	"github.com/tamzrod/vlcb-node/internal/vlcb"
)

// fakeLine replays read steps; a step with err set returns that error.
type fakeLine struct {
	steps []step
	out   bytes.Buffer
	wErr  error
}

type step struct {
	data string
	err  error
}

func (f *fakeLine) Read(p []byte) (int, error) {
	if len(f.steps) == 0 {
		return 0, io.EOF
	}
	s := f.steps[0]
	if s.err != nil {
		f.steps = f.steps[1:]
		return 0, s.err
	}
	n := copy(p, s.data)
	if n == len(s.data) {
		f.steps = f.steps[1:]
	} else {
		f.steps[0].data = s.data[n:]
	}
	return n, nil
}

func (f *fakeLine) Write(p []byte) (int, error) {
	if f.wErr != nil {
		return 0, f.wErr
	}
	return f.out.Write(p)
}

func (f *fakeLine) Close() error { return nil }

func TestPortSend(t *testing.T) {
	line := &fakeLine{}
	p := NewPort(line, 5)

	if err := p.Send(vlcb.New(vlcb.OpACON, 0x01, 0x00, 0x00, 0x07)); err != nil {
		t.Fatalf("Send err=%v", err)
	}
	if got := line.out.String(); got != ":SB0A0N9001000007;" {
		t.Fatalf("wrote %q", got)
	}

	line.wErr = errors.New("unplugged")
	if err := p.Send(vlcb.New(vlcb.OpACON)); err == nil {
		t.Fatalf("expected send error")
	}
	if p.TransmitCounter() != 1 || p.TransmitErrorCounter() != 1 || p.ErrorStatus()&StatusTxFailed == 0 {
		t.Fatalf("tx=%d txErr=%d status=%#x", p.TransmitCounter(), p.TransmitErrorCounter(), p.ErrorStatus())
	}
}

func TestPortReceiveSkipsNoiseAndCountsErrors(t *testing.T) {
	line := &fakeLine{steps: []step{{data: "noise:SB0A0N9001000007;\r\n:SB0A0NZZ;"}}}
	p := NewPort(line, 5)

	f, err := p.Receive()
	if err != nil {
		t.Fatalf("Receive err=%v", err)
	}
	if f.Msg.Opcode() != vlcb.OpACON || f.Msg.EN() != 7 {
		t.Fatalf("frame=%+v", f)
	}

	if _, err := p.Receive(); !errors.Is(err, ErrMalformed) {
		t.Fatalf("err=%v want ErrMalformed", err)
	}
	if _, err := p.Receive(); err != io.EOF {
		t.Fatalf("err=%v want EOF", err)
	}

	if p.ReceiveCounter() != 1 || p.ReceiveErrorCounter() != 1 {
		t.Fatalf("rx=%d rxErr=%d", p.ReceiveCounter(), p.ReceiveErrorCounter())
	}
	if p.ErrorStatus()&StatusRxFailed == 0 {
		t.Fatalf("rx failure bit not set")
	}
}

func TestPortReceiveResumesAfterTimeout(t *testing.T) {
	line := &fakeLine{steps: []step{
		{data: ":SB0A0N90"},
		{err: serial.ErrTimeout},
		{data: "01000007;"},
	}}
	p := NewPort(line, 5)

	if _, err := p.Receive(); !errors.Is(err, serial.ErrTimeout) {
		t.Fatalf("err=%v want timeout", err)
	}
	f, err := p.Receive()
	if err != nil {
		t.Fatalf("Receive err=%v", err)
	}
	if f.Msg.Len != 5 || f.Msg.NN() != 0x0100 {
		t.Fatalf("frame=%+v", f)
	}
}

func TestPortReceiveUnterminated(t *testing.T) {
	line := &fakeLine{steps: []step{{data: ":SB0A0N0011223344556677889900AABB"}}}
	p := NewPort(line, 5)

	if _, err := p.Receive(); !errors.Is(err, ErrMalformed) {
		t.Fatalf("err=%v want ErrMalformed", err)
	}
}

type fakeSource struct {
	frames []Frame
	errs   []error
}

func (f *fakeSource) Receive() (Frame, error) {
	if len(f.frames) == 0 {
		return Frame{}, io.EOF
	}
	fr, err := f.frames[0], f.errs[0]
	f.frames, f.errs = f.frames[1:], f.errs[1:]
	return fr, err
}

func TestRunForwardsDataFrames(t *testing.T) {
	acon := vlcb.New(vlcb.OpACON, 0, 1, 0, 2)
	src := &fakeSource{
		frames: []Frame{
			{Msg: acon},
			{},
			{},
			{Remote: true},
			{Extended: true, Msg: acon},
			{},
			{Msg: vlcb.New(vlcb.OpRQEVN, 0, 1)},
		},
		errs: []error{
			nil,
			serial.ErrTimeout,
			ErrMalformed,
			nil,
			nil,
			nil,
			nil,
		},
	}

	out := make(chan vlcb.Message, 8)
	err := Run(context.Background(), src, out, zerolog.Nop())
	if err != io.EOF {
		t.Fatalf("Run err=%v want EOF", err)
	}
	close(out)

	var got []byte
	for m := range out {
		got = append(got, m.Opcode())
	}
	if len(got) != 2 || got[0] != vlcb.OpACON || got[1] != vlcb.OpRQEVN {
		t.Fatalf("forwarded opcodes=%x", got)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := Run(ctx, &fakeSource{}, make(chan vlcb.Message), zerolog.Nop()); err != nil {
		t.Fatalf("Run err=%v want nil", err)
	}
}
