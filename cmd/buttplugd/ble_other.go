//go:build !linux && !darwin

package main

import (
	"fmt"

	blelib "github.com/go-ble/ble"
)

func newBLEDevice() (blelib.Device, error) {
	return nil, fmt.Errorf("buttplugd: BLE is not supported on this platform")
}
