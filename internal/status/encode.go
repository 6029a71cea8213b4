// internal/status/encode.go
package status

// Encode converts a Snapshot into a full node status block.
// Layout is protocol-locked.
// No IO. No side effects.
func Encode(s Snapshot) []uint16 {
	regs := make([]uint16, SlotsPerNode)

	regs[SlotHealthCode] = s.Health
	regs[SlotLastErrorCode] = s.LastErrorCode
	regs[SlotSecondsInError] = s.SecondsInError

	regs[SlotNodeNumber] = s.NodeNumber
	regs[SlotFlags] = s.Flags

	regs[SlotCapacity] = s.Capacity
	regs[SlotStored] = s.Stored
	regs[SlotFree] = s.Free

	regs[SlotTaught] = s.Taught
	regs[SlotConsumed] = s.Consumed
	regs[SlotAcknowledged] = s.Acknowledged
	regs[SlotReceived] = s.Received
	regs[SlotSent] = s.Sent
	regs[SlotSendErrors] = s.SendErrors

	return regs
}
