package devicemanager

import (
	"sync"

	"github.com/nonpolynomial/buttplug-go/device"
)

// deviceRegistry is the shared, RWMutex-guarded index->Device map. The
// eventLoop is the sole writer (it owns device add/remove in response
// to CommunicationEvents); DeviceManager only reads it to route
// messages and answer RequestDeviceList, so both hold the same pointer
// rather than the event loop owning a private copy.
type deviceRegistry struct {
	mu      sync.RWMutex
	devices map[uint32]*device.Device
}

func newDeviceRegistry() *deviceRegistry {
	return &deviceRegistry{devices: make(map[uint32]*device.Device)}
}

func (r *deviceRegistry) add(d *device.Device) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.devices[d.Index] = d
}

func (r *deviceRegistry) remove(index uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.devices, index)
}

func (r *deviceRegistry) get(index uint32) (*device.Device, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.devices[index]
	return d, ok
}

func (r *deviceRegistry) all() []*device.Device {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*device.Device, 0, len(r.devices))
	for _, d := range r.devices {
		out = append(out, d)
	}
	return out
}
