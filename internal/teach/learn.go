// internal/teach/learn.go
package teach

// LearnState is the node's teaching state.
type LearnState uint8

const (
	Idle LearnState = iota
	Learning
)

func (s LearnState) String() string {
	if s == Learning {
		return "learning"
	}
	return "idle"
}

// LearnMode gates every mutating teaching opcode.
// The zero value is Idle, which is the boot state.
type LearnMode struct {
	state LearnState
}

func (l *LearnMode) Enable() { l.state = Learning }
func (l *LearnMode) Disable() { l.state = Idle }
func (l *LearnMode) State() LearnState { return l.state }
func (l *LearnMode) Learning() bool { return l.state == Learning }
