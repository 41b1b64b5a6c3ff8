package protocol

import "strings"

// Status byte (byte 2) bit assignments.
const (
	statusModeMask   = 0x03
	statusBitBoost   = 0x04
	statusBitDST     = 0x08
	statusBitWindow  = 0x10
	statusBitLock    = 0x20
	statusBitBattery = 0x80
)

// Decode dispatches an inbound notification buffer on its message-type byte.
// Unknown message types and status sub-types yield an UnrecognizedError so
// callers can report them without tearing down the session.
func Decode(data []byte) (*Notification, error) {
	if len(data) == 0 {
		return nil, &TruncatedError{Kind: UnrecognizedMessage, Len: 0, Min: 1}
	}

	switch data[0] {
	case msgInfo:
		info, err := decodeInfo(data)
		if err != nil {
			return nil, err
		}
		return &Notification{Kind: ReplyInfo, Info: info}, nil
	case msgStatus:
		status, err := decodeStatus(data)
		if err != nil {
			return nil, err
		}
		return &Notification{Kind: ReplyStatus, Status: status}, nil
	default:
		return nil, &UnrecognizedError{Kind: UnrecognizedMessage, Value: data[0]}
	}
}

func decodeInfo(data []byte) (*Info, error) {
	if len(data) < infoLen {
		return nil, &TruncatedError{Kind: "info", Len: len(data), Min: infoLen}
	}

	var serial strings.Builder
	for _, b := range data[4:14] {
		serial.WriteByte(b - serialOffset)
	}

	return &Info{
		Version: int(data[1]),
		Serial:  serial.String(),
	}, nil
}

func decodeStatus(data []byte) (*Status, error) {
	if len(data) < 2 {
		return nil, &TruncatedError{Kind: "status", Len: len(data), Min: 2}
	}

	// Only sub-type 1 is defined; the high nibble is ignored.
	if subType := data[1] & 0x0f; subType != statusSubTypeDefault {
		return nil, &UnrecognizedError{Kind: UnrecognizedStatusType, Value: subType}
	}

	if len(data) < minStatusLen {
		return nil, &TruncatedError{Kind: "status", Len: len(data), Min: minStatusLen}
	}

	bits := data[2]
	s := &Status{
		Mode:          Mode(bits & statusModeMask),
		Boost:         bits&statusBitBoost != 0,
		DST:           bits&statusBitDST != 0,
		WindowOpen:    bits&statusBitWindow != 0,
		Locked:        bits&statusBitLock != 0,
		LowBattery:    bits&statusBitBattery != 0,
		ValvePosition: int(data[3]),
		TargetTemp:    DecodeTemp(data[5]),
	}

	// Away schedule bytes carry stale data outside away mode.
	if s.Mode == ModeAway && len(data) >= 10 {
		s.Away = &AwaySchedule{
			Day:    int(data[6]),
			Year:   2000 + int(data[7]),
			Hour:   int(data[8] / 2),
			Minute: int(data[8]%2) * 30,
			Month:  int(data[9]),
		}
	}

	if len(data) >= extStatusLen {
		windowTemp := DecodeTemp(data[10])
		windowDuration := int(data[11]) * 5
		comfort := DecodeTemp(data[12])
		eco := DecodeTemp(data[13])
		offset := (float64(data[14]) - 7) / 2

		s.WindowOpenTemp = &windowTemp
		s.WindowOpenDuration = &windowDuration
		s.ComfortTemp = &comfort
		s.EcoTemp = &eco
		s.TempOffset = &offset
	}

	return s, nil
}
