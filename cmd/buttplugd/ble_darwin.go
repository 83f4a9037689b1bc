//go:build darwin

package main

import (
	blelib "github.com/go-ble/ble"
	"github.com/go-ble/ble/darwin"
)

func newBLEDevice() (blelib.Device, error) {
	return darwin.NewDevice()
}
