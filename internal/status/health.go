// internal/status/health.go
package status

import "errors"

// Health tracks the transport health slots between snapshots.
// It is owned by the orchestrator goroutine.
type Health struct {
	Code           uint16
	LastErrorCode  uint16
	SecondsInError uint16
}

// Observe records the outcome of a transport operation and reports whether
// any slot changed.
func (h *Health) Observe(err error) bool {
	changed := false

	if err == nil {
		// Recovery / OK
		if h.Code != HealthOK {
			h.Code = HealthOK
			changed = true
		}
		if h.LastErrorCode != 0 {
			h.LastErrorCode = 0
			changed = true
		}
		if h.SecondsInError != 0 {
			h.SecondsInError = 0
			changed = true
		}
		return changed
	}

	if h.Code != HealthError {
		h.Code = HealthError
		changed = true
	}
	// seconds_in_error increments on Tick only
	code := ErrorCode(err)
	if h.LastErrorCode != code {
		h.LastErrorCode = code
		changed = true
	}
	return changed
}

// Tick advances seconds_in_error once per second while not OK.
// It saturates at 65535 and reports whether the slot changed.
func (h *Health) Tick() bool {
	if h.Code == HealthOK || h.SecondsInError == 65535 {
		return false
	}
	h.SecondsInError++
	return true
}

// Apply copies the health slots into s.
func (h *Health) Apply(s *Snapshot) {
	s.Health = h.Code
	s.LastErrorCode = h.LastErrorCode
	s.SecondsInError = h.SecondsInError
}

// ErrorCode extracts a best-effort uint16 code from an error without assuming concrete types.
// If the error does not expose a code, returns 1 (generic error).
func ErrorCode(err error) uint16 {
	if err == nil {
		return 0
	}

	var c interface{ Code() uint16 }
	if errors.As(err, &c) {
		return c.Code()
	}

	return 1
}
