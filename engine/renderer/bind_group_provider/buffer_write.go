package bind_group_provider

import "github.com/cogentcore/webgpu/wgpu"

// BufferWrite is one queued upload into the buffer a provider holds at Binding.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// Target returns the destination buffer, or nil when the write has nowhere to go: no provider, no
// buffer at Binding, or no data.
func (w BufferWrite) Target() *wgpu.Buffer {
	if w.Provider == nil || len(w.Data) == 0 {
		return nil
	}
	return w.Provider.Buffer(w.Binding)
}
