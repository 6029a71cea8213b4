// internal/status/snapshot.go
package status

import "github.com/tamzrod/vlcb-node/internal/node"

// Snapshot represents exactly what the writer is allowed to deliver.
// It contains no logic and no memory of the past beyond current state.
type Snapshot struct {
	Health         uint16
	LastErrorCode  uint16
	SecondsInError uint16

	NodeNumber uint16
	Flags      uint16

	Capacity uint16
	Stored   uint16
	Free     uint16

	Taught       uint16
	Consumed     uint16
	Acknowledged uint16
	Received     uint16
	Sent         uint16
	SendErrors   uint16
}

// FromStats fills the node part of a snapshot. Health slots are left as zero.
func FromStats(st node.Stats) Snapshot {
	var flags uint16
	if st.Learning {
		flags |= FlagLearning
	}
	if st.EventAck {
		flags |= FlagEventAck
	}
	if st.ResetPending {
		flags |= FlagResetPending
	}

	return Snapshot{
		NodeNumber:   st.NodeNumber,
		Flags:        flags,
		Capacity:     uint16(st.Capacity),
		Stored:       uint16(st.Stored),
		Free:         uint16(st.Free),
		Taught:       uint16(st.Taught),
		Consumed:     uint16(st.Consumed),
		Acknowledged: uint16(st.Acknowledged),
		Received:     uint16(st.Received),
		Sent:         uint16(st.Sent),
		SendErrors:   uint16(st.SendErrors),
	}
}
