package loader

import (
	"encoding/binary"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// gltfLoaderBackend reads .gltf and .glb files.
type gltfLoaderBackend struct{}

var _ loaderBackend = gltfLoaderBackend{}

func newGLTFLoaderBackend() loaderBackend {
	return gltfLoaderBackend{}
}

func (gltfLoaderBackend) Load(path string) (*Asset, error) {
	f, err := parseGLTFFile(path)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return newGLTFMeshExtractor(f).extractAll(name)
}

func (gltfLoaderBackend) LoadReader(name string, r io.Reader, isGLB bool) (*Asset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if isGLB && (len(data) < glbHeaderSize || binary.LittleEndian.Uint32(data) != glbMagic) {
		return nil, fmt.Errorf("%w: stream is not GLB", ErrInvalidGLTF)
	}
	f, err := parseGLTF(data, "")
	if err != nil {
		return nil, err
	}
	return newGLTFMeshExtractor(f).extractAll(name)
}
