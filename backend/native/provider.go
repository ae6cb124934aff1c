package native

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"
)

// FromProvider wraps the device of a host application, such as a gogpu
// window, so bedrock renders with the host's GPU. The provider must expose
// HalDevice() and HalQueue() returning hal types. The host keeps ownership
// of the device.
func FromProvider(provider gpucontext.DeviceProvider, opts ...Option) (*HALAdapter, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrInvalidProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is %T", ErrInvalidProvider, hp.HalDevice())
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is %T", ErrInvalidProvider, hp.HalQueue())
	}
	a := NewHALAdapter(device, queue, nil, opts...)
	a.log.Debug("native: using host device", "surfaceFormat", provider.SurfaceFormat())
	return a, nil
}
