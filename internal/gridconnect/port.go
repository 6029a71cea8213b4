// internal/gridconnect/port.go
package gridconnect

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goburrow/serial"

	"github.com/tamzrod/vlcb-node/internal/vlcb"
)

// Error status bits reported through ErrorStatus.
const (
	StatusTxFailed uint16 = 0x0001
	StatusRxFailed uint16 = 0x0002
)

// Config is minimal serial transport config.
type Config struct {
	Port     string
	BaudRate int
	Timeout  time.Duration
	CANID    byte
}

// Port is a GridConnect link to a CAN interface. Receive is called from one
// goroutine and Send from another; the counters are safe to read from any.
type Port struct {
	rw    io.ReadWriteCloser
	r     *bufio.Reader
	canID byte

	// receive side, owned by the Receive caller
	buf     []byte
	inFrame bool

	wmu sync.Mutex

	rx     atomic.Uint32
	tx     atomic.Uint32
	rxErr  atomic.Uint32
	txErr  atomic.Uint32
	status atomic.Uint32
}

// Open opens the serial device (8N1).
func Open(cfg Config) (*Port, error) {
	if cfg.Port == "" {
		return nil, errors.New("gridconnect: port required")
	}

	sp, err := serial.Open(&serial.Config{
		Address:  cfg.Port,
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		StopBits: 1,
		Parity:   "N",
		Timeout:  cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("gridconnect: open %s: %w", cfg.Port, err)
	}
	return NewPort(sp, cfg.CANID), nil
}

// NewPort wraps an already open byte stream.
func NewPort(rw io.ReadWriteCloser, canID byte) *Port {
	return &Port{
		rw:    rw,
		r:     bufio.NewReader(rw),
		canID: canID,
		buf:   make([]byte, 0, maxFrameLen),
	}
}

func (p *Port) Close() error { return p.rw.Close() }

// Send implements node.Transport.
func (p *Port) Send(m vlcb.Message) error {
	p.wmu.Lock()
	defer p.wmu.Unlock()

	if _, err := io.WriteString(p.rw, Encode(p.canID, m)); err != nil {
		p.txErr.Add(1)
		p.setStatus(StatusTxFailed, true)
		return fmt.Errorf("gridconnect: send: %w", err)
	}
	p.tx.Add(1)
	p.setStatus(StatusTxFailed, false)
	return nil
}

// Receive returns the next frame. Partial input survives a read error
// (such as serial.ErrTimeout) and is completed by the next call.
func (p *Port) Receive() (Frame, error) {
	for {
		b, err := p.r.ReadByte()
		if err != nil {
			return Frame{}, err
		}

		if b == ':' {
			p.buf = append(p.buf[:0], b)
			p.inFrame = true
			continue
		}
		if !p.inFrame {
			continue
		}

		p.buf = append(p.buf, b)
		if b == ';' {
			p.inFrame = false
			f, err := Decode(string(p.buf))
			if err != nil {
				p.rxErr.Add(1)
				p.setStatus(StatusRxFailed, true)
				return Frame{}, err
			}
			p.rx.Add(1)
			p.setStatus(StatusRxFailed, false)
			return f, nil
		}
		if len(p.buf) >= maxFrameLen {
			p.inFrame = false
			p.rxErr.Add(1)
			p.setStatus(StatusRxFailed, true)
			return Frame{}, fmt.Errorf("%w: unterminated", ErrMalformed)
		}
	}
}

func (p *Port) setStatus(bit uint16, on bool) {
	for {
		old := p.status.Load()
		next := old &^ uint32(bit)
		if on {
			next |= uint32(bit)
		}
		if p.status.CompareAndSwap(old, next) {
			return
		}
	}
}

// ---- diag.Counters ----

func (p *Port) ReceiveErrorCounter() uint16  { return uint16(p.rxErr.Load()) }
func (p *Port) TransmitErrorCounter() uint16 { return uint16(p.txErr.Load()) }
func (p *Port) ErrorStatus() uint16          { return uint16(p.status.Load()) }
func (p *Port) TransmitCounter() uint16      { return uint16(p.tx.Load()) }
func (p *Port) ReceiveCounter() uint16       { return uint16(p.rx.Load()) }
