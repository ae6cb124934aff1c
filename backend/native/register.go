package native

import (
	"github.com/gogpu/bedrock/backend"
	"github.com/gogpu/bedrock/gpucore"
)

// init registers the native backend on package import.
func init() {
	backend.Register(backend.BackendNative, func() (gpucore.Device, error) {
		a, err := Open()
		if err != nil {
			return nil, err
		}
		return a, nil
	})
}
