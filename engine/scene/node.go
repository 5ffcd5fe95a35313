package scene

import (
	"github.com/Carmen-Shannon/oxy-room/engine/material"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Mesh is indexed triangle geometry in the node's local space.
type Mesh struct {
	Positions []mgl32.Vec3
	UVs       []mgl32.Vec2
	Indices   []uint32
}

// TriangleCount returns the number of complete triangles described by Indices.
func (m *Mesh) TriangleCount() int {
	if m == nil {
		return 0
	}
	return len(m.Indices) / 3
}

// Node is a named element of the scene graph. Names come from the model file and are not unique;
// ID is unique per node. A node may carry a mesh and the material it is drawn with.
type Node struct {
	id       string
	name     string
	parent   *Node
	children []*Node

	local    mgl32.Mat4
	mesh     *Mesh
	material material.Material
}

var (
	_ material.Bindable    = &Node{}
	_ material.Traversable = &Node{}
)

// NewNode creates a node with an identity transform.
//
// Parameters:
//   - name: the node name, may be empty
//   - options: functional options to configure the node
//
// Returns:
//   - *Node: the new node
func NewNode(name string, options ...NodeBuilderOption) *Node {
	n := &Node{
		id:    uuid.NewString(),
		name:  name,
		local: mgl32.Ident4(),
	}
	for _, opt := range options {
		opt(n)
	}
	return n
}

func (n *Node) ID() string                      { return n.id }
func (n *Node) Name() string                    { return n.name }
func (n *Node) Parent() *Node                   { return n.parent }
func (n *Node) Mesh() *Mesh                     { return n.mesh }
func (n *Node) SetMesh(mesh *Mesh)              { n.mesh = mesh }
func (n *Node) Material() material.Material     { return n.material }
func (n *Node) SetMaterial(m material.Material) { n.material = m }
func (n *Node) Local() mgl32.Mat4               { return n.local }
func (n *Node) SetLocal(m mgl32.Mat4)           { n.local = m }

// Children returns the direct children in insertion order. The slice must not be modified.
func (n *Node) Children() []*Node {
	return n.children
}

// Add attaches child under n, detaching it from any previous parent first.
func (n *Node) Add(child *Node) {
	if child == nil || child == n {
		return
	}
	if child.parent != nil {
		child.parent.Remove(child)
	}
	child.parent = n
	n.children = append(n.children, child)
}

// Remove detaches child from n. It is a no-op when child is not a direct child.
func (n *Node) Remove(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// World returns the node's transform composed with all of its ancestors.
func (n *Node) World() mgl32.Mat4 {
	m := n.local
	for p := n.parent; p != nil; p = p.parent {
		m = p.local.Mul4(m)
	}
	return m
}

// Traverse calls visit for n and then every descendant, depth first in child order.
func (n *Node) Traverse(visit func(node *Node)) {
	visit(n)
	for _, c := range n.children {
		c.Traverse(visit)
	}
}

// Walk adapts Traverse for material binding.
func (n *Node) Walk(visit func(node material.Bindable)) {
	n.Traverse(func(node *Node) { visit(node) })
}

// Find returns the first node named name in traversal order, or nil.
func (n *Node) Find(name string) *Node {
	if n.name == name {
		return n
	}
	for _, c := range n.children {
		if f := c.Find(name); f != nil {
			return f
		}
	}
	return nil
}

// Count returns the number of nodes in the subtree, n included.
func (n *Node) Count() int {
	count := 0
	n.Traverse(func(*Node) { count++ })
	return count
}
