package material

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNode struct {
	name     string
	material Material
	children []*fakeNode
}

func (n *fakeNode) Name() string           { return n.name }
func (n *fakeNode) SetMaterial(m Material) { n.material = m }

func (n *fakeNode) Walk(visit func(Bindable)) {
	visit(n)
	for _, c := range n.children {
		c.Walk(visit)
	}
}

func (n *fakeNode) find(name string) *fakeNode {
	if n.name == name {
		return n
	}
	for _, c := range n.children {
		if f := c.find(name); f != nil {
			return f
		}
	}
	return nil
}

func roomTree() *fakeNode {
	return &fakeNode{name: "Scene", children: []*fakeNode{
		{name: "Walls"},
		{name: "Table", children: []*fakeNode{
			{name: "Sphere001"},
			{name: "Sphere002"},
			{name: "Vela_Flama"},
			{name: "Vela_Flama010"},
			{name: "Vela_Flama011"},
		}},
		{name: "Foto"},
		{name: ""},
	}}
}

func newTestBinder(t *testing.T, options ...BinderBuilderOption) (*Binder, *Baked, *Candle, *Bubble, *Door) {
	t.Helper()
	baked, candle, bubble, door := NewBaked(nil), NewCandle(), NewBubble(), NewDoor()
	b, err := NewBinder(baked, candle, bubble, door, options...)
	require.NoError(t, err)
	return b, baked, candle, bubble, door
}

func TestBinder_Bind(t *testing.T) {
	b, baked, candle, bubble, door := newTestBinder(t)
	root := roomTree()

	stats := b.Bind(root)

	assert.Same(t, candle, root.find("Sphere001").material)
	assert.Same(t, candle, root.find("Sphere002").material)
	assert.Same(t, bubble, root.find("Vela_Flama").material)
	assert.Same(t, bubble, root.find("Vela_Flama010").material)
	assert.Same(t, baked, root.find("Vela_Flama011").material, "names between the two bubble ranges stay baked")
	assert.Same(t, door, root.find("Foto").material)
	assert.Same(t, baked, root.find("Walls").material)
	assert.Same(t, baked, root.find("Scene").material)
	assert.Same(t, baked, root.find("").material)

	assert.Equal(t, 10, stats.Visited)
	assert.Equal(t, 2, stats.ByKind[KindCandle])
	assert.Equal(t, 2, stats.ByKind[KindBubble])
	assert.Equal(t, 1, stats.ByKind[KindDoor])
	assert.Equal(t, 5, stats.ByKind[KindBaked])
	assert.Contains(t, stats.Unmatched, "Sphere003")
	assert.Contains(t, stats.Unmatched, "Vela_Flama024")
	assert.NotContains(t, stats.Unmatched, "Foto")
}

func TestBinder_BindIsIdempotent(t *testing.T) {
	b, _, _, _, _ := newTestBinder(t)
	root := roomTree()

	first := b.Bind(root)
	assigned := map[string]Material{}
	root.Walk(func(n Bindable) { assigned[n.Name()] = n.(*fakeNode).material })

	second := b.Bind(root)
	root.Walk(func(n Bindable) {
		assert.Same(t, assigned[n.Name()], n.(*fakeNode).material, n.Name())
	})
	assert.Equal(t, first, second)
}

func TestBinder_MissingNamesAreIgnored(t *testing.T) {
	b, baked, _, _, _ := newTestBinder(t)
	root := &fakeNode{name: "Empty", children: []*fakeNode{{name: "Chair"}}}

	stats := b.Bind(root)

	assert.Same(t, baked, root.find("Chair").material)
	assert.Equal(t, 2, stats.ByKind[KindBaked])
	assert.Len(t, stats.Unmatched, 3+17+1)
}

func TestBinder_CustomGroups(t *testing.T) {
	b, _, candle, _, door := newTestBinder(t, WithNameGroups(NameGroups{
		Candle: []string{"Lamp"},
		Door:   "Window",
	}))

	assert.Same(t, candle, b.Resolve("Lamp"))
	assert.Same(t, door, b.Resolve("Window"))
	assert.Equal(t, KindBaked, b.Resolve("Sphere001").Kind())
}

func TestNewBinder_OverlappingGroups(t *testing.T) {
	_, err := NewBinder(NewBaked(nil), NewCandle(), NewBubble(), NewDoor(), WithNameGroups(NameGroups{
		Candle:  []string{"Sphere001"},
		Bubbles: []string{"Sphere001"},
	}))
	assert.ErrorIs(t, err, ErrOverlappingGroups)
}

func TestDefaultNameGroups(t *testing.T) {
	g := DefaultNameGroups()
	assert.Equal(t, []string{"Sphere001", "Sphere002", "Sphere003"}, g.Candle)
	assert.Len(t, g.Bubbles, 17)
	assert.Equal(t, "Vela_Flama", g.Bubbles[0])
	assert.Equal(t, "Vela_Flama002", g.Bubbles[1])
	assert.Equal(t, "Vela_Flama010", g.Bubbles[9])
	assert.Equal(t, "Vela_Flama018", g.Bubbles[10])
	assert.Equal(t, "Vela_Flama024", g.Bubbles[16])
	assert.Equal(t, "Foto", g.Door)
	assert.NoError(t, g.Validate())
}
