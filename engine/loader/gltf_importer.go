package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-room/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// gltfImporterImpl is the implementation of the gltfImporter interface.
type gltfImporterImpl struct{}

// gltfImporter converts a decoded glTF document into a scene graph.
type gltfImporter interface {
	// Import builds one scene.Node per glTF node of the default scene, preserving names and hierarchy.
	// Triangle primitives of a node's mesh are merged into a single scene.Mesh.
	//
	// Parameters:
	//   - doc: the decoded document
	//   - name: the name given to the returned root node
	//
	// Returns:
	//   - *scene.Node: a root node whose children are the scene's root nodes
	//   - error: error if an accessor cannot be read or the graph is malformed
	Import(doc *gltf.Document, name string) (*scene.Node, error)
}

var _ gltfImporter = &gltfImporterImpl{}

// newGLTFImporter creates a new glTF importer.
//
// Returns:
//   - gltfImporter: the importer
func newGLTFImporter() gltfImporter {
	return &gltfImporterImpl{}
}

func (imp *gltfImporterImpl) Import(doc *gltf.Document, name string) (node *scene.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			node, err = nil, fmt.Errorf("malformed glTF document: %v", r)
		}
	}()

	roots, err := sceneRoots(doc)
	if err != nil {
		return nil, err
	}

	meshes := make(map[int]*scene.Mesh, len(doc.Meshes))
	visiting := make(map[int]bool, len(doc.Nodes))

	root := scene.NewNode(name)
	for _, idx := range roots {
		child, err := imp.importNode(doc, idx, meshes, visiting)
		if err != nil {
			return nil, err
		}
		root.Add(child)
	}
	return root, nil
}

// sceneRoots returns the root node indices of the document's default scene. Documents without
// scenes fall back to every node that is nobody's child.
func sceneRoots(doc *gltf.Document) ([]int, error) {
	if len(doc.Scenes) > 0 {
		sceneIdx := 0
		if doc.Scene != nil {
			sceneIdx = *doc.Scene
		}
		if sceneIdx < 0 || sceneIdx >= len(doc.Scenes) {
			return nil, fmt.Errorf("default scene %d out of range", sceneIdx)
		}
		return doc.Scenes[sceneIdx].Nodes, nil
	}

	isChild := make(map[int]bool)
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			isChild[c] = true
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !isChild[i] {
			roots = append(roots, i)
		}
	}
	return roots, nil
}

func (imp *gltfImporterImpl) importNode(doc *gltf.Document, idx int, meshes map[int]*scene.Mesh, visiting map[int]bool) (*scene.Node, error) {
	if idx < 0 || idx >= len(doc.Nodes) {
		return nil, fmt.Errorf("node index %d out of range", idx)
	}
	if visiting[idx] {
		return nil, fmt.Errorf("node %d is its own ancestor", idx)
	}
	visiting[idx] = true
	defer delete(visiting, idx)

	src := doc.Nodes[idx]
	node := scene.NewNode(src.Name, scene.WithLocal(localTransform(src)))

	if src.Mesh != nil {
		mesh, ok := meshes[*src.Mesh]
		if !ok {
			var err error
			mesh, err = readMesh(doc, *src.Mesh)
			if err != nil {
				return nil, fmt.Errorf("node %q: %w", src.Name, err)
			}
			meshes[*src.Mesh] = mesh
		}
		node.SetMesh(mesh)
	}

	for _, c := range src.Children {
		child, err := imp.importNode(doc, c, meshes, visiting)
		if err != nil {
			return nil, err
		}
		node.Add(child)
	}
	return node, nil
}

// localTransform returns the node matrix when one is authored, otherwise T * R * S.
func localTransform(n *gltf.Node) mgl32.Mat4 {
	m := n.MatrixOrDefault()
	var out mgl32.Mat4
	identity := true
	for i := range m {
		out[i] = float32(m[i])
		want := float32(0)
		if i%5 == 0 {
			want = 1
		}
		if out[i] != want {
			identity = false
		}
	}
	if !identity {
		return out
	}

	t := n.TranslationOrDefault()
	r := n.RotationOrDefault()
	s := n.ScaleOrDefault()
	rot := mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}
	return mgl32.Translate3D(float32(t[0]), float32(t[1]), float32(t[2])).
		Mul4(rot.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(float32(s[0]), float32(s[1]), float32(s[2])))
}

// readMesh merges the triangle-list primitives of mesh idx. Primitives in other modes are skipped.
func readMesh(doc *gltf.Document, idx int) (*scene.Mesh, error) {
	if idx < 0 || idx >= len(doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d out of range", idx)
	}
	out := &scene.Mesh{}

	for p, prim := range doc.Meshes[idx].Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			return nil, fmt.Errorf("mesh %d primitive %d: no POSITION attribute", idx, p)
		}
		posAcc, err := accessor(doc, posIdx)
		if err != nil {
			return nil, fmt.Errorf("mesh %d primitive %d: positions: %w", idx, p, err)
		}
		positions, err := modeler.ReadPosition(doc, posAcc, nil)
		if err != nil {
			return nil, fmt.Errorf("mesh %d primitive %d: read positions: %w", idx, p, err)
		}

		var uvs [][2]float32
		if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			uvAcc, err := accessor(doc, uvIdx)
			if err != nil {
				return nil, fmt.Errorf("mesh %d primitive %d: uvs: %w", idx, p, err)
			}
			uvs, err = modeler.ReadTextureCoord(doc, uvAcc, nil)
			if err != nil {
				return nil, fmt.Errorf("mesh %d primitive %d: read uvs: %w", idx, p, err)
			}
		}

		var indices []uint32
		if prim.Indices != nil {
			idxAcc, err := accessor(doc, *prim.Indices)
			if err != nil {
				return nil, fmt.Errorf("mesh %d primitive %d: indices: %w", idx, p, err)
			}
			indices, err = modeler.ReadIndices(doc, idxAcc, nil)
			if err != nil {
				return nil, fmt.Errorf("mesh %d primitive %d: read indices: %w", idx, p, err)
			}
		} else {
			indices = make([]uint32, len(positions))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}

		base := uint32(len(out.Positions))
		for i, pos := range positions {
			out.Positions = append(out.Positions, mgl32.Vec3{pos[0], pos[1], pos[2]})
			if i < len(uvs) {
				out.UVs = append(out.UVs, mgl32.Vec2{uvs[i][0], uvs[i][1]})
			} else {
				out.UVs = append(out.UVs, mgl32.Vec2{})
			}
		}
		for _, i := range indices[:len(indices)/3*3] {
			if int(i) >= len(positions) {
				return nil, fmt.Errorf("mesh %d primitive %d: index %d out of range", idx, p, i)
			}
			out.Indices = append(out.Indices, base+i)
		}
	}
	return out, nil
}

// accessor returns accessor idx of doc.
func accessor(doc *gltf.Document, idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(doc.Accessors) || doc.Accessors[idx] == nil {
		return nil, fmt.Errorf("accessor index %d out of range", idx)
	}
	return doc.Accessors[idx], nil
}
