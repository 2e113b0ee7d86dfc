package renderer

import "github.com/cogentcore/webgpu/wgpu"

// WGPUShadowBackendBuilderOption is a function that configures a WGPUShadowBackend during construction.
type WGPUShadowBackendBuilderOption func(*wgpuShadowBackendImpl)

// WithDevice is an option builder that renders on an existing device instead of requesting
// a headless one. The backend does not release a device it did not create.
//
// Parameters:
//   - device: the WebGPU device
//   - queue: the device queue
//
// Returns:
//   - WGPUShadowBackendBuilderOption: a function that applies the device to the backend
func WithDevice(device *wgpu.Device, queue *wgpu.Queue) WGPUShadowBackendBuilderOption {
	return func(b *wgpuShadowBackendImpl) {
		b.device = device
		b.queue = queue
	}
}

// WithForceFallbackAdapter is an option builder that requests the software fallback adapter.
func WithForceFallbackAdapter(force bool) WGPUShadowBackendBuilderOption {
	return func(b *wgpuShadowBackendImpl) {
		b.forceFallbackAdapter = force
	}
}

// WithCasterShader is an option builder that replaces the default caster shader.
//
// Parameters:
//   - source: the WGSL source, validated during construction
//   - entryPoint: the vertex entry point
//
// Returns:
//   - WGPUShadowBackendBuilderOption: a function that applies the shader to the backend
func WithCasterShader(source, entryPoint string) WGPUShadowBackendBuilderOption {
	return func(b *wgpuShadowBackendImpl) {
		b.casterSource = source
		b.casterEntry = entryPoint
	}
}

// WithCasterVertexLayouts is an option builder that sets the vertex buffer layouts of the
// caster pipelines. The default is one float32x3 position at location 0.
func WithCasterVertexLayouts(layouts ...wgpu.VertexBufferLayout) WGPUShadowBackendBuilderOption {
	return func(b *wgpuShadowBackendImpl) {
		b.vertexLayouts = layouts
	}
}

// WithCasterBindGroupLayouts is an option builder that appends bind group layouts after the
// per-draw group 0, for example instance transforms bound by the CasterEncoder.
func WithCasterBindGroupLayouts(layouts ...*wgpu.BindGroupLayout) WGPUShadowBackendBuilderOption {
	return func(b *wgpuShadowBackendImpl) {
		b.extraGroupLayouts = layouts
	}
}

// WithCasterCullMode is an option builder that sets the caster face culling.
// CullModeFront suits closed meshes, CullModeNone flat geometry.
func WithCasterCullMode(mode wgpu.CullMode) WGPUShadowBackendBuilderOption {
	return func(b *wgpuShadowBackendImpl) {
		b.cullMode = mode
	}
}

// WithMaxDrawsPerSubmit is an option builder that sets how many draws share one submission
// before the backend flushes.
func WithMaxDrawsPerSubmit(n int) WGPUShadowBackendBuilderOption {
	return func(b *wgpuShadowBackendImpl) {
		if n > 0 {
			b.maxDraws = n
		}
	}
}

// WithCasterEncoder is an option builder that sets the initial CasterEncoder.
func WithCasterEncoder(encoder CasterEncoder) WGPUShadowBackendBuilderOption {
	return func(b *wgpuShadowBackendImpl) {
		b.caster = encoder
	}
}

// WithPancakingProperty is an option builder that sets the global float name that toggles
// depth pancaking. It must match the shadow system's ShaderProperties.
func WithPancakingProperty(name string) WGPUShadowBackendBuilderOption {
	return func(b *wgpuShadowBackendImpl) {
		b.pancakingName = name
	}
}
