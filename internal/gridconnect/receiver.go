// internal/gridconnect/receiver.go
package gridconnect

import (
	"context"
	"errors"

	"github.com/goburrow/serial"
	"github.com/rs/zerolog"

	"github.com/tamzrod/vlcb-node/internal/vlcb"
)

// Source yields decoded frames. *Port implements it.
type Source interface {
	Receive() (Frame, error)
}

// Run reads frames and emits the VLCB messages they carry on out.
// Remote, extended and empty frames are not VLCB traffic and are dropped.
// Run returns nil when ctx is done and the read error otherwise.
func Run(ctx context.Context, src Source, out chan<- vlcb.Message, log zerolog.Logger) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		f, err := src.Receive()
		switch {
		case err == nil:
		case errors.Is(err, serial.ErrTimeout):
			continue
		case errors.Is(err, ErrMalformed):
			log.Debug().Err(err).Msg("frame dropped")
			continue
		default:
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if f.Extended || f.Remote || f.Msg.Len == 0 {
			continue
		}

		select {
		case <-ctx.Done():
			return nil
		case out <- f.Msg:
		}
	}
}
