// Package native implements gpucore.Device on the Pure Go gogpu/wgpu HAL.
//
// Open bootstraps its own Vulkan device; FromProvider shares the device of
// a host application. Push constants are emulated with a dynamic uniform
// buffer bound after the pipeline's own bind groups, which the bedrock
// shader program declares at group 2. Texture clears are clear-only render
// passes.
//
// Windows are presented through a host-supplied Presenter:
//
//	dev, err := native.Open()
//	if err != nil {
//		return err
//	}
//	r, err := bedrock.New(dev)
//	...
//	r.HandleEvent(bedrock.Resumed{Target: presenter, Width: w, Height: h})
package native
