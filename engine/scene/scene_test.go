package scene

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-room/engine/material"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNode_Hierarchy(t *testing.T) {
	leaf := NewNode("Sphere001")
	table := NewNode("Table", WithChildren(leaf))
	room := NewNode("Room", WithChildren(table, NewNode("Foto")))

	assert.Same(t, table, leaf.Parent())
	assert.Equal(t, 4, room.Count())
	assert.Same(t, leaf, room.Find("Sphere001"))
	assert.Nil(t, room.Find("Missing"))
	assert.NotEqual(t, leaf.ID(), table.ID())

	var order []string
	room.Traverse(func(n *Node) { order = append(order, n.Name()) })
	assert.Equal(t, []string{"Room", "Table", "Sphere001", "Foto"}, order)

	// Reparenting detaches from the old parent.
	room.Add(leaf)
	assert.Same(t, room, leaf.Parent())
	assert.Empty(t, table.Children())
	assert.Equal(t, 4, room.Count())
}

func TestNode_World(t *testing.T) {
	child := NewNode("child", WithTRS(mgl32.Vec3{1, 0, 0}, mgl32.QuatIdent(), mgl32.Vec3{1, 1, 1}))
	NewNode("parent",
		WithLocal(mgl32.Translate3D(0, 2, 0).Mul4(mgl32.Scale3D(2, 2, 2))),
		WithChildren(child),
	)

	p := child.World().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 2, p.X(), 1e-5)
	assert.InDelta(t, 2, p.Y(), 1e-5)
	assert.InDelta(t, 0, p.Z(), 1e-5)
}

func TestNode_WalkBindsEveryNode(t *testing.T) {
	root := NewNode("Room", WithChildren(NewNode("Sphere002"), NewNode("Walls")))
	binder, err := material.NewBinder(material.NewBaked(nil), material.NewCandle(), material.NewBubble(), material.NewDoor())
	require.NoError(t, err)

	stats := binder.Bind(root)

	assert.Equal(t, 3, stats.Visited)
	assert.Equal(t, material.KindCandle, root.Find("Sphere002").Material().Kind())
	assert.Equal(t, material.KindBaked, root.Find("Walls").Material().Kind())
}

func TestScene_Materials(t *testing.T) {
	baked := material.NewBaked(nil)
	fireflies := material.NewFireflies(1, 15)
	model := NewNode("Room",
		WithMaterial(baked),
		WithChildren(NewNode("Walls", WithMaterial(baked)), NewNode("Empty")),
	)

	s := NewScene(
		WithName("room"),
		WithNodes(model),
		WithPoints(NewPoints("fireflies", []float32{0, 1, 0}, []float32{0.5}, fireflies)),
	)

	assert.Equal(t, "room", s.Name())
	assert.Equal(t, []material.Material{baked, fireflies}, s.Materials())
	require.Len(t, s.Points(), 1)
	assert.Equal(t, 1, s.Points()[0].Count())

	pos, scale := s.Points()[0].At(0)
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, pos)
	assert.Equal(t, float32(0.5), scale)

	s.Remove(model)
	assert.Equal(t, 1, s.Root().Count())
}
