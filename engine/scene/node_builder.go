package scene

import (
	"github.com/Carmen-Shannon/oxy-room/engine/material"
	"github.com/go-gl/mathgl/mgl32"
)

// NodeBuilderOption is a functional option for configuring a Node.
type NodeBuilderOption func(*Node)

// WithMesh attaches geometry to the node.
//
// Parameters:
//   - mesh: the node's mesh
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithMesh(mesh *Mesh) NodeBuilderOption {
	return func(n *Node) {
		n.mesh = mesh
	}
}

// WithMaterial sets the node's initial material.
//
// Parameters:
//   - m: the material
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithMaterial(m material.Material) NodeBuilderOption {
	return func(n *Node) {
		n.material = m
	}
}

// WithLocal sets the node's local transform.
//
// Parameters:
//   - m: the local transform
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithLocal(m mgl32.Mat4) NodeBuilderOption {
	return func(n *Node) {
		n.local = m
	}
}

// WithTRS sets the local transform from translation, rotation and scale.
//
// Parameters:
//   - t: translation
//   - r: rotation
//   - s: per-axis scale
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithTRS(t mgl32.Vec3, r mgl32.Quat, s mgl32.Vec3) NodeBuilderOption {
	return func(n *Node) {
		n.local = mgl32.Translate3D(t.X(), t.Y(), t.Z()).
			Mul4(r.Mat4()).
			Mul4(mgl32.Scale3D(s.X(), s.Y(), s.Z()))
	}
}

// WithChildren attaches children to the node.
//
// Parameters:
//   - children: the nodes to attach
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithChildren(children ...*Node) NodeBuilderOption {
	return func(n *Node) {
		for _, c := range children {
			n.Add(c)
		}
	}
}
