package thermostat

import "fmt"

// State is the session connection state. Transitions are driven by adapter
// calls inside Connect/Disconnect and are never reentrant: only one
// connect or disconnect attempt may be in flight per device.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateResolvingCharacteristics
	StateSubscribing
	StateReady
	StateDisconnecting
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateResolvingCharacteristics:
		return "resolving_characteristics"
	case StateSubscribing:
		return "subscribing"
	case StateReady:
		return "ready"
	case StateDisconnecting:
		return "disconnecting"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}
