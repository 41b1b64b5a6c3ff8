// Package protocol implements the CCRTBLE wire format: command encoding and
// status/info notification decoding. It is pure and stateless; all I/O lives
// in the adapter and thermostat packages.
package protocol

// GATT signature of a CCRTBLE radiator thermostat. UUIDs are normalized
// (lowercase hex, no dashes) to match adapter lookups.
const (
	// ServiceUUID identifies the thermostat control service in advertisements
	// and in the discovered GATT profile.
	ServiceUUID = "3e135142654f9090134aa6ff5bb77046"

	// CommandCharUUID is the writable command characteristic.
	CommandCharUUID = "3fa4585ace4a3baddb4bb8df8179ea09"

	// NotifyCharUUID is the characteristic that pushes status/info replies.
	NotifyCharUUID = "d0e8434dcd290996af416c90f4e0eb2a"
)

// Command opcodes (byte 0 of every command buffer).
const (
	opGetInfo    = 0x00
	opGetStatus  = 0x03
	opSetTarget  = 0x41
	opSetComfort = 0x43
	opSetEco     = 0x44
	opSetBoost   = 0x45
)

// Notification message types (byte 0 of every notification buffer).
const (
	msgInfo   = 0x01
	msgStatus = 0x02
)

// statusSubTypeDefault is the only status sub-type the device is known to
// emit. Any other value is surfaced as an UnrecognizedError.
const statusSubTypeDefault = 1

// minStatusLen is the shortest status buffer that carries mode, valve and
// target temperature. Extended buffers (extStatusLen and longer) additionally
// carry window-open, comfort, eco and offset fields.
const (
	minStatusLen = 6
	extStatusLen = 15
	infoLen      = 14
)

// serialOffset is subtracted from each raw serial byte to recover its ASCII
// character.
const serialOffset = 0x30
