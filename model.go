package vkbase

import (
	"fmt"
	"unsafe"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	vk "github.com/vulkan-go/vulkan"
	"golang.org/x/sync/errgroup"
)

// ModelVertex is the interleaved vertex layout shared by the model
// examples: position, normal, texture coordinate.
type ModelVertex struct {
	Pos    [3]float32
	Normal [3]float32
	UV     [2]float32
}

// ModelVertexBinding describes the ModelVertex layout for pipeline
// creation.
func ModelVertexBinding() (vk.VertexInputBindingDescription, []vk.VertexInputAttributeDescription) {
	binding := vk.VertexInputBindingDescription{
		Binding:   0,
		Stride:    uint32(unsafe.Sizeof(ModelVertex{})),
		InputRate: vk.VertexInputRateVertex,
	}
	attrs := []vk.VertexInputAttributeDescription{
		{Location: 0, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: uint32(unsafe.Offsetof(ModelVertex{}.Pos))},
		{Location: 1, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: uint32(unsafe.Offsetof(ModelVertex{}.Normal))},
		{Location: 2, Binding: 0, Format: vk.FormatR32g32Sfloat, Offset: uint32(unsafe.Offsetof(ModelVertex{}.UV))},
	}
	return binding, attrs
}

// MeshData is the host-side form of a loaded mesh.
type MeshData struct {
	Vertices []ModelVertex
	Indices  []uint32
}

// LoadGLTF reads the first primitive of the first mesh in a glTF file.
// Positions and indices are required; missing normals and UVs load as
// zeros.
func LoadGLTF(path string) (*MeshData, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf %s: %w", path, err)
	}
	if len(doc.Meshes) == 0 || len(doc.Meshes[0].Primitives) == 0 {
		return nil, fmt.Errorf("gltf %s: no mesh primitives", path)
	}
	prim := doc.Meshes[0].Primitives[0]

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, fmt.Errorf("gltf %s: primitive has no positions", path)
	}
	if prim.Indices == nil {
		return nil, fmt.Errorf("gltf %s: primitive is not indexed", path)
	}

	var (
		positions [][3]float32
		normals   [][3]float32
		uvs       [][2]float32
		indices   []uint32
	)

	var group errgroup.Group
	group.Go(func() error {
		var err error
		positions, err = modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
		return err
	})
	group.Go(func() error {
		var err error
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		return err
	})
	if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
		group.Go(func() error {
			var err error
			normals, err = modeler.ReadNormal(doc, doc.Accessors[normIdx], nil)
			return err
		})
	}
	if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		group.Go(func() error {
			var err error
			uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[uvIdx], nil)
			return err
		})
	}
	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("read gltf %s: %w", path, err)
	}

	data := &MeshData{
		Vertices: make([]ModelVertex, len(positions)),
		Indices:  indices,
	}
	for i, pos := range positions {
		data.Vertices[i].Pos = pos
		if i < len(normals) {
			data.Vertices[i].Normal = normals[i]
		}
		if i < len(uvs) {
			data.Vertices[i].UV = uvs[i]
		}
	}
	return data, nil
}

// CubeMesh returns a unit cube with per-face normals and UVs, for examples
// that want geometry without shipping an asset.
func CubeMesh() *MeshData {
	faces := []struct {
		normal [3]float32
		corner [4][3]float32
	}{
		{[3]float32{0, 0, 1}, [4][3]float32{{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1}}},
		{[3]float32{0, 0, -1}, [4][3]float32{{1, -1, -1}, {-1, -1, -1}, {-1, 1, -1}, {1, 1, -1}}},
		{[3]float32{1, 0, 0}, [4][3]float32{{1, -1, 1}, {1, -1, -1}, {1, 1, -1}, {1, 1, 1}}},
		{[3]float32{-1, 0, 0}, [4][3]float32{{-1, -1, -1}, {-1, -1, 1}, {-1, 1, 1}, {-1, 1, -1}}},
		{[3]float32{0, 1, 0}, [4][3]float32{{-1, 1, 1}, {1, 1, 1}, {1, 1, -1}, {-1, 1, -1}}},
		{[3]float32{0, -1, 0}, [4][3]float32{{-1, -1, -1}, {1, -1, -1}, {1, -1, 1}, {-1, -1, 1}}},
	}
	uvs := [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

	data := &MeshData{}
	for f, face := range faces {
		base := uint32(f * 4)
		for i := 0; i < 4; i++ {
			data.Vertices = append(data.Vertices, ModelVertex{
				Pos:    [3]float32{face.corner[i][0] * 0.5, face.corner[i][1] * 0.5, face.corner[i][2] * 0.5},
				Normal: face.normal,
				UV:     uvs[i],
			})
		}
		data.Indices = append(data.Indices, base, base+1, base+2, base+2, base+3, base)
	}
	return data
}

// Mesh is a mesh uploaded to device-local vertex and index buffers.
type Mesh struct {
	Vertices   *CoreBuffer
	Indices    *CoreBuffer
	IndexCount uint32
}

// UploadMesh stages MeshData into device-local buffers.
func UploadMesh(device *CoreDevice, pool *CorePool, data *MeshData) (*Mesh, error) {
	if len(data.Vertices) == 0 || len(data.Indices) == 0 {
		return nil, unsupportedErr("empty mesh")
	}
	vertexBytes := unsafe.Slice(
		(*byte)(unsafe.Pointer(&data.Vertices[0])),
		len(data.Vertices)*int(unsafe.Sizeof(ModelVertex{})))
	indexBytes := unsafe.Slice(
		(*byte)(unsafe.Pointer(&data.Indices[0])),
		len(data.Indices)*4)

	vbuf, err := NewDeviceLocalBuffer(device, pool, vertexBytes, vk.BufferUsageVertexBufferBit)
	if err != nil {
		return nil, err
	}
	ibuf, err := NewDeviceLocalBuffer(device, pool, indexBytes, vk.BufferUsageIndexBufferBit)
	if err != nil {
		vbuf.Destroy()
		return nil, err
	}
	return &Mesh{
		Vertices:   vbuf,
		Indices:    ibuf,
		IndexCount: uint32(len(data.Indices)),
	}, nil
}

// Draw binds the mesh buffers and issues an indexed draw.
func (m *Mesh) Draw(rec *CmdRecorder) {
	rec.BindVertexBuffer(m.Vertices.Handle).
		BindIndexBuffer(m.Indices.Handle, vk.IndexTypeUint32).
		DrawIndexed(m.IndexCount, 0)
}

func (m *Mesh) Destroy() {
	m.Indices.Destroy()
	m.Vertices.Destroy()
}

func (m *Mesh) Release() { m.Destroy() }
