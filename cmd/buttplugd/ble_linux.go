//go:build linux

package main

import (
	blelib "github.com/go-ble/ble"
	"github.com/go-ble/ble/linux"
)

func newBLEDevice() (blelib.Device, error) {
	return linux.NewDevice()
}
