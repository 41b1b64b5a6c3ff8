package protocol

import (
	"math"
	"time"
)

// EncodeTemp converts degrees Celsius to the device's half-degree fixed-point
// byte. Values between representable steps round to the nearest one.
func EncodeTemp(celsius float64) byte {
	return byte(math.Round(celsius * 2))
}

// DecodeTemp is the inverse of EncodeTemp.
func DecodeTemp(raw byte) float64 {
	return float64(raw) / 2
}

// GetInfo requests the firmware version and serial number. The reply is an
// info notification.
func GetInfo() []byte {
	return []byte{opGetInfo}
}

// GetStatus requests a status snapshot. The payload carries the current time
// (year mod 100), which the device uses to sync its clock on every poll.
func GetStatus(now time.Time) []byte {
	return []byte{
		opGetStatus,
		byte(now.Year() % 100),
		byte(now.Month()),
		byte(now.Day()),
		byte(now.Hour()),
		byte(now.Minute()),
		byte(now.Second()),
	}
}

// SetTargetTemperature sets the target temperature in degrees Celsius.
func SetTargetTemperature(celsius float64) []byte {
	return []byte{opSetTarget, EncodeTemp(celsius)}
}

// SetComfortTemperature switches the device to its stored comfort preset.
func SetComfortTemperature() []byte {
	return []byte{opSetComfort}
}

// SetEcoTemperature switches the device to its stored eco preset.
func SetEcoTemperature() []byte {
	return []byte{opSetEco}
}

// SetBoost enables or disables boost mode.
func SetBoost(enable bool) []byte {
	flag := byte(0x00)
	if enable {
		flag = 0x01
	}
	return []byte{opSetBoost, flag}
}
