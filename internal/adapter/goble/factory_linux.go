//go:build linux

package goble

import (
	"fmt"
	"strings"

	"github.com/go-ble/ble"
	"github.com/go-ble/ble/linux"
)

// DeviceFactory creates ble.Device instances (can be overridden in tests).
var DeviceFactory = func() (ble.Device, error) {
	dev, err := linux.NewDevice()
	if err != nil {
		// BlueZ reports a downed adapter as a "can't init" failure
		if strings.Contains(err.Error(), "can't init hci") {
			return nil, fmt.Errorf("bluetooth adapter unavailable: %w", errNotReady)
		}
		return nil, err
	}
	return dev, nil
}
