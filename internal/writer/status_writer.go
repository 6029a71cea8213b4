// internal/writer/status_writer.go
package writer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/vlcb-node/internal/status"
)

var _ StatusWriter = (*NodeStatusWriter)(nil)

// NodeStatusWriter mirrors the node status block into holding registers.
type NodeStatusWriter struct {
	plan *StatusPlan
	cli  endpointClient

	needFull bool
	last     []uint16
}

// NewNodeStatusWriter builds a status writer if the mirror is enabled.
// If plan is nil, status is disabled.
func NewNodeStatusWriter(plan *StatusPlan, cli endpointClient) (*NodeStatusWriter, bool) {
	if plan == nil {
		return nil, false
	}

	return &NodeStatusWriter{
		plan:     plan,
		cli:      cli,
		needFull: true, // full re-assert on first successful write
		last:     make([]uint16, status.SlotsPerNode),
	}, true
}

// WriteStatus delivers a node status snapshot into status memory.
// Only slots that changed since the last write are sent, grouped into
// contiguous runs. On any write failure, the next successful call will
// re-assert the full block.
func (sw *NodeStatusWriter) WriteStatus(s status.Snapshot) error {
	if sw == nil || sw.plan == nil {
		return errors.New("status writer: disabled")
	}
	if sw.cli == nil {
		return fmt.Errorf("status writer: missing client for endpoint %s", sw.plan.Endpoint)
	}

	regs := status.Encode(s)
	baseAddr := sw.baseAddr()

	// ------------------------------------------------------------
	// Full block write (identity re-assert)
	// ------------------------------------------------------------
	if sw.needFull {
		if err := sw.cli.WriteRegisters(sw.plan.UnitID, baseAddr, regs); err != nil {
			sw.needFull = true
			return fmt.Errorf("status writer: full block write failed: %w", err)
		}

		sw.needFull = false
		copy(sw.last, regs)
		return nil
	}

	var errs []string

	for start := 0; start < len(regs); {
		if regs[start] == sw.last[start] {
			start++
			continue
		}
		end := start + 1
		for end < len(regs) && regs[end] != sw.last[end] {
			end++
		}

		if err := sw.cli.WriteRegisters(sw.plan.UnitID, baseAddr+uint16(start), regs[start:end]); err != nil {
			errs = append(errs, fmt.Sprintf("slots %d-%d write failed: %v", start, end-1, err))
		} else {
			copy(sw.last[start:end], regs[start:end])
		}
		start = end
	}

	if len(errs) > 0 {
		// Any partial failure introduces doubt: re-assert on next success.
		sw.needFull = true
		return errors.New("status writer: " + strings.Join(errs, " | "))
	}

	return nil
}

func (sw *NodeStatusWriter) baseAddr() uint16 {
	// Each node owns a fixed SlotsPerNode block.
	return sw.plan.BaseSlot * status.SlotsPerNode
}
