package software

import (
	"github.com/gogpu/bedrock/backend"
	"github.com/gogpu/bedrock/gpucore"
)

// init registers the software backend on package import.
func init() {
	backend.Register(backend.BackendSoftware, func() (gpucore.Device, error) {
		return New(), nil
	})
}
