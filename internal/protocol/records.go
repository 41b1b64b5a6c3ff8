package protocol

import "fmt"

// ReplyKind classifies a decoded notification so the session can match it
// against the pending command's expected reply.
type ReplyKind int

const (
	ReplyStatus ReplyKind = iota
	ReplyInfo
)

func (k ReplyKind) String() string {
	switch k {
	case ReplyStatus:
		return "status"
	case ReplyInfo:
		return "info"
	default:
		return fmt.Sprintf("ReplyKind(%d)", int(k))
	}
}

// Mode is the heating mode encoded in the low two bits of the status byte.
type Mode int

const (
	ModeAuto   Mode = 0
	ModeManual Mode = 1
	ModeAway   Mode = 2
)

func (m Mode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModeManual:
		return "manual"
	case ModeAway:
		return "away"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// AwaySchedule is the end of an away (holiday) period, present in a status
// record only while the device is in away mode.
type AwaySchedule struct {
	Day    int
	Month  int
	Year   int // full year, wire stores offset from 2000
	Hour   int
	Minute int // 0 or 30, from the half-hour bit of the raw hour byte
}

// Status is a decoded status notification. Window, Comfort, Eco and Offset
// are nil when the device sent a short status buffer without the extended
// fields.
type Status struct {
	Mode          Mode
	Boost         bool
	DST           bool
	WindowOpen    bool
	Locked        bool
	LowBattery    bool
	ValvePosition int     // raw 0-255, percent-like
	TargetTemp    float64 // degrees Celsius, half-degree precision

	Away *AwaySchedule

	WindowOpenTemp     *float64 // degrees Celsius
	WindowOpenDuration *int     // minutes, wire stores 5-minute units
	ComfortTemp        *float64
	EcoTemp            *float64
	TempOffset         *float64 // degrees Celsius, wire stores (offset*2)+7
}

// Info is a decoded firmware/serial notification.
type Info struct {
	Version int
	Serial  string
}

// Notification is the result of decoding one inbound buffer: exactly one of
// Status or Info is non-nil, matching Kind.
type Notification struct {
	Kind   ReplyKind
	Status *Status
	Info   *Info
}
