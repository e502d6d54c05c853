package loader

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrInvalidGLTF is wrapped by every structural problem found while parsing.
	ErrInvalidGLTF = errors.New("loader: invalid glTF")
	// ErrUnsupported is wrapped when a file uses a glTF feature the loader does not read.
	ErrUnsupported = errors.New("loader: unsupported glTF feature")
)

// gltfFile is a parsed document with every buffer resolved.
type gltfFile struct {
	doc     gltfDocument
	baseDir string
}

// parseGLTFFile reads a .gltf or .glb file. External buffers are resolved relative to its
// directory.
func parseGLTFFile(path string) (*gltfFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseGLTF(data, filepath.Dir(path))
}

// parseGLTF detects GLB by its magic number and falls back to JSON.
func parseGLTF(data []byte, baseDir string) (*gltfFile, error) {
	f := &gltfFile{baseDir: baseDir}

	jsonData, bin := data, []byte(nil)
	if len(data) >= 4 && binary.LittleEndian.Uint32(data) == glbMagic {
		var err error
		if jsonData, bin, err = splitGLB(data); err != nil {
			return nil, err
		}
	}

	if err := json.Unmarshal(jsonData, &f.doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGLTF, err)
	}
	if !strings.HasPrefix(f.doc.Asset.Version, "2.") {
		return nil, fmt.Errorf("%w: version %q", ErrUnsupported, f.doc.Asset.Version)
	}
	if err := f.loadBuffers(bin); err != nil {
		return nil, err
	}
	return f, nil
}

// splitGLB returns the JSON and BIN chunks of a GLB container.
func splitGLB(data []byte) (jsonChunk, binChunk []byte, err error) {
	if len(data) < glbHeaderSize {
		return nil, nil, fmt.Errorf("%w: GLB header truncated", ErrInvalidGLTF)
	}
	if v := binary.LittleEndian.Uint32(data[4:]); v != glbVersion {
		return nil, nil, fmt.Errorf("%w: GLB version %d", ErrUnsupported, v)
	}

	rest := data[glbHeaderSize:]
	for len(rest) >= 8 {
		length := int(binary.LittleEndian.Uint32(rest))
		kind := binary.LittleEndian.Uint32(rest[4:])
		rest = rest[8:]
		if length > len(rest) {
			return nil, nil, fmt.Errorf("%w: GLB chunk overruns file", ErrInvalidGLTF)
		}
		switch kind {
		case glbChunkJSON:
			jsonChunk = rest[:length]
		case glbChunkBIN:
			binChunk = rest[:length]
		}
		rest = rest[length:]
	}
	if jsonChunk == nil {
		return nil, nil, fmt.Errorf("%w: GLB has no JSON chunk", ErrInvalidGLTF)
	}
	return jsonChunk, binChunk, nil
}

func (f *gltfFile) loadBuffers(bin []byte) error {
	for i := range f.doc.Buffers {
		buf := &f.doc.Buffers[i]
		switch {
		case buf.URI == "" && i == 0 && bin != nil:
			buf.data = bin
		case buf.URI == "":
			return fmt.Errorf("%w: buffer %d has no data", ErrInvalidGLTF, i)
		case strings.HasPrefix(buf.URI, "data:"):
			data, err := decodeDataURI(buf.URI)
			if err != nil {
				return fmt.Errorf("buffer %d: %w", i, err)
			}
			buf.data = data
		default:
			data, err := os.ReadFile(filepath.Join(f.baseDir, filepath.FromSlash(buf.URI)))
			if err != nil {
				return fmt.Errorf("buffer %d: %w", i, err)
			}
			buf.data = data
		}
		if len(buf.data) < buf.ByteLength {
			return fmt.Errorf("%w: buffer %d holds %d of %d bytes", ErrInvalidGLTF, i, len(buf.data), buf.ByteLength)
		}
	}
	return nil
}

// decodeDataURI decodes data:[<mediatype>];base64,<data>.
func decodeDataURI(uri string) ([]byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("%w: malformed data URI", ErrInvalidGLTF)
	}
	if !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("%w: data URI encoding %q", ErrUnsupported, header)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGLTF, err)
	}
	return data, nil
}

// accessorElements returns one byte slice per element of accessor i, honouring byte strides.
func (f *gltfFile) accessorElements(i int, wantType string) ([][]byte, *gltfAccessor, error) {
	if i < 0 || i >= len(f.doc.Accessors) {
		return nil, nil, fmt.Errorf("%w: accessor %d out of range", ErrInvalidGLTF, i)
	}
	acc := &f.doc.Accessors[i]
	if acc.Type != wantType {
		return nil, nil, fmt.Errorf("%w: accessor %d is %s, want %s", ErrInvalidGLTF, i, acc.Type, wantType)
	}
	if acc.Sparse != nil {
		return nil, nil, fmt.Errorf("%w: sparse accessor %d", ErrUnsupported, i)
	}
	if acc.BufferView == nil || *acc.BufferView < 0 || *acc.BufferView >= len(f.doc.BufferViews) {
		return nil, nil, fmt.Errorf("%w: accessor %d has no buffer view", ErrInvalidGLTF, i)
	}
	bv := &f.doc.BufferViews[*acc.BufferView]
	if bv.Buffer < 0 || bv.Buffer >= len(f.doc.Buffers) {
		return nil, nil, fmt.Errorf("%w: buffer view %d references buffer %d", ErrInvalidGLTF, *acc.BufferView, bv.Buffer)
	}
	data := f.doc.Buffers[bv.Buffer].data

	size := componentSize(acc.ComponentType) * componentCount(acc.Type)
	if size == 0 {
		return nil, nil, fmt.Errorf("%w: accessor %d component type %d", ErrUnsupported, i, acc.ComponentType)
	}
	stride := size
	if bv.ByteStride != nil && *bv.ByteStride > 0 {
		stride = *bv.ByteStride
	}

	start := bv.ByteOffset + acc.ByteOffset
	if acc.Count > 0 && start+(acc.Count-1)*stride+size > len(data) {
		return nil, nil, fmt.Errorf("%w: accessor %d overruns its buffer", ErrInvalidGLTF, i)
	}
	elements := make([][]byte, acc.Count)
	for e := range elements {
		off := start + e*stride
		elements[e] = data[off : off+size]
	}
	return elements, acc, nil
}

// readFloats decodes n float components per element. Normalized integer components are mapped
// to [0, 1] or [-1, 1] as the glTF spec requires.
func (f *gltfFile) readFloats(i int, accessorType string, n int) ([][4]float32, error) {
	elements, acc, err := f.accessorElements(i, accessorType)
	if err != nil {
		return nil, err
	}
	if acc.ComponentType != gltfComponentTypeFloat && !acc.Normalized {
		return nil, fmt.Errorf("%w: accessor %d is not float", ErrUnsupported, i)
	}

	out := make([][4]float32, len(elements))
	cs := componentSize(acc.ComponentType)
	for e, b := range elements {
		for c := 0; c < n; c++ {
			out[e][c] = decodeComponent(b[c*cs:], acc.ComponentType)
		}
	}
	return out, nil
}

func (f *gltfFile) readVec3s(i int) ([]mgl32.Vec3, error) {
	raw, err := f.readFloats(i, "VEC3", 3)
	if err != nil {
		return nil, err
	}
	out := make([]mgl32.Vec3, len(raw))
	for e, v := range raw {
		out[e] = mgl32.Vec3{v[0], v[1], v[2]}
	}
	return out, nil
}

func (f *gltfFile) readVec2s(i int) ([]mgl32.Vec2, error) {
	raw, err := f.readFloats(i, "VEC2", 2)
	if err != nil {
		return nil, err
	}
	out := make([]mgl32.Vec2, len(raw))
	for e, v := range raw {
		out[e] = mgl32.Vec2{v[0], v[1]}
	}
	return out, nil
}

// readIndices accepts unsigned byte, short and int components.
func (f *gltfFile) readIndices(i int) ([]uint32, error) {
	elements, acc, err := f.accessorElements(i, "SCALAR")
	if err != nil {
		return nil, err
	}
	out := make([]uint32, len(elements))
	for e, b := range elements {
		switch acc.ComponentType {
		case gltfComponentTypeUnsignedByte:
			out[e] = uint32(b[0])
		case gltfComponentTypeUnsignedShort:
			out[e] = uint32(binary.LittleEndian.Uint16(b))
		case gltfComponentTypeUnsignedInt:
			out[e] = binary.LittleEndian.Uint32(b)
		default:
			return nil, fmt.Errorf("%w: index component type %d", ErrUnsupported, acc.ComponentType)
		}
	}
	return out, nil
}

func decodeComponent(b []byte, componentType int) float32 {
	switch componentType {
	case gltfComponentTypeFloat:
		return math.Float32frombits(binary.LittleEndian.Uint32(b))
	case gltfComponentTypeUnsignedByte:
		return float32(b[0]) / 255
	case gltfComponentTypeByte:
		return max(float32(int8(b[0]))/127, -1)
	case gltfComponentTypeUnsignedShort:
		return float32(binary.LittleEndian.Uint16(b)) / 65535
	case gltfComponentTypeShort:
		return max(float32(int16(binary.LittleEndian.Uint16(b)))/32767, -1)
	}
	return 0
}

func componentSize(componentType int) int {
	switch componentType {
	case gltfComponentTypeByte, gltfComponentTypeUnsignedByte:
		return 1
	case gltfComponentTypeShort, gltfComponentTypeUnsignedShort:
		return 2
	case gltfComponentTypeUnsignedInt, gltfComponentTypeFloat:
		return 4
	}
	return 0
}

func componentCount(accessorType string) int {
	switch accessorType {
	case "SCALAR":
		return 1
	case "VEC2":
		return 2
	case "VEC3":
		return 3
	case "VEC4", "MAT2":
		return 4
	case "MAT3":
		return 9
	case "MAT4":
		return 16
	}
	return 0
}
