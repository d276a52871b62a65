//go:build windows

package gpu

import (
	"fmt"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"
)

// Uploader owns a WebGPU device and creates staging buffers from plans.
type Uploader struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
}

// NewUploader requests a high performance adapter and its device.
// Returns an error if WebGPU is not available.
func NewUploader() (u *Uploader, err error) {
	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			u = nil
			err = fmt.Errorf("webgpu: native library not available: %v", r)
		}
	}()

	instance := wgpu.CreateInstance(nil)
	adapter, adapterErr := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if adapterErr != nil {
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request adapter: %w", adapterErr)
	}

	device, deviceErr := adapter.RequestDevice(nil)
	if deviceErr != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request device: %w", deviceErr)
	}

	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to get queue")
	}

	return &Uploader{instance: instance, adapter: adapter, device: device, queue: queue}, nil
}

// StagingBuffer uploads the plan's padded rows into a new buffer usable as
// the source of a buffer-to-texture copy. The caller owns the buffer.
func (u *Uploader) StagingBuffer(p *Plan) (*wgpu.Buffer, error) {
	size := p.Size()

	buffer := u.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            wgpu.EmptyStringView(),
		Usage:            wgpu.BufferUsageCopySrc,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})
	if buffer == nil {
		return nil, fmt.Errorf("webgpu: failed to create %d byte staging buffer", size)
	}

	mappedPtr := buffer.GetMappedRange(0, size)
	if mappedPtr == nil {
		buffer.Release()
		return nil, fmt.Errorf("webgpu: staging buffer not mapped")
	}
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), size)
	copy(mappedSlice, p.Data)
	buffer.Unmap()

	return buffer, nil
}

// Upload creates a texture described by the plan, copies the staged rows
// into it and submits the copy. The caller owns the returned texture.
func (u *Uploader) Upload(p *Plan) (*wgpu.Texture, error) {
	desc, err := p.textureDescriptor()
	if err != nil {
		return nil, err
	}

	staging, err := u.StagingBuffer(p)
	if err != nil {
		return nil, err
	}
	defer staging.Release()

	texture := u.device.CreateTexture(desc)
	if texture == nil {
		return nil, fmt.Errorf("webgpu: failed to create %dx%d texture", p.Width, p.Height)
	}

	encoder := u.device.CreateCommandEncoder(nil)
	if encoder == nil {
		texture.Release()
		return nil, fmt.Errorf("webgpu: failed to create command encoder")
	}
	defer encoder.Release()

	extent := p.extent()
	encoder.CopyBufferToTexture(
		&wgpu.TexelCopyBufferInfo{Layout: p.bufferLayout(), Buffer: staging.Handle()},
		&wgpu.TexelCopyTextureInfo{Texture: texture.Handle(), Aspect: wgpu.TextureAspectAll},
		&extent,
	)

	commands := encoder.Finish(nil)
	if commands == nil {
		texture.Release()
		return nil, fmt.Errorf("webgpu: failed to finish command encoder")
	}
	defer commands.Release()

	u.queue.Submit(commands)
	return texture, nil
}

// Release releases all WebGPU resources.
func (u *Uploader) Release() {
	if u.queue != nil {
		u.queue.Release()
		u.queue = nil
	}
	if u.device != nil {
		u.device.Release()
		u.device = nil
	}
	if u.adapter != nil {
		u.adapter.Release()
		u.adapter = nil
	}
	if u.instance != nil {
		u.instance.Release()
		u.instance = nil
	}
}
