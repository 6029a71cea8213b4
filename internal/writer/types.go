// internal/writer/types.go
package writer

import "github.com/tamzrod/vlcb-node/internal/status"

// endpointClient is the exact contract the status writer uses.
// IMPORTANT: There must be NO other version of this interface anywhere.
type endpointClient interface {
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
}

// StatusPlan is the fully-built destination of the node status block.
type StatusPlan struct {
	Endpoint string
	UnitID   uint8
	BaseSlot uint16 // block index; address = BaseSlot * SlotsPerNode
}

// StatusWriter delivers a node status snapshot verbatim.
type StatusWriter interface {
	WriteStatus(s status.Snapshot) error
}
