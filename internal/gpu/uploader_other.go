//go:build !windows

package gpu

import "github.com/go-webgpu/webgpu/wgpu"

// Uploader is a placeholder on platforms without the WebGPU native library.
type Uploader struct{}

// NewUploader always fails with ErrNoDevice on this platform.
func NewUploader() (*Uploader, error) {
	return nil, ErrNoDevice
}

// Upload always fails with ErrNoDevice on this platform.
func (u *Uploader) Upload(*Plan) (*wgpu.Texture, error) {
	return nil, ErrNoDevice
}

// Release is a no-op on this platform.
func (u *Uploader) Release() {}
