package material

import (
	"errors"
	"fmt"
	"slices"
)

// ErrOverlappingGroups is returned when a node name is listed in more than one material group.
var ErrOverlappingGroups = errors.New("material groups overlap")

// NameGroups lists the node names that receive a shader material instead of the baked default.
type NameGroups struct {
	Candle  []string `toml:"candle"`
	Bubbles []string `toml:"bubbles"`
	Door    string   `toml:"door"`
}

// DefaultNameGroups returns the node names authored into the room model.
func DefaultNameGroups() NameGroups {
	bubbles := []string{"Vela_Flama"}
	for i := 2; i <= 10; i++ {
		bubbles = append(bubbles, fmt.Sprintf("Vela_Flama%03d", i))
	}
	for i := 18; i <= 24; i++ {
		bubbles = append(bubbles, fmt.Sprintf("Vela_Flama%03d", i))
	}
	return NameGroups{
		Candle:  []string{"Sphere001", "Sphere002", "Sphere003"},
		Bubbles: bubbles,
		Door:    "Foto",
	}
}

// Validate reports ErrOverlappingGroups when any name appears in two groups.
func (g NameGroups) Validate() error {
	seen := make(map[string]string, len(g.Candle)+len(g.Bubbles)+1)
	add := func(group, name string) error {
		if prev, ok := seen[name]; ok && prev != group {
			return fmt.Errorf("%w: %q is in both %s and %s", ErrOverlappingGroups, name, prev, group)
		}
		seen[name] = group
		return nil
	}
	for _, n := range g.Candle {
		if err := add("candle", n); err != nil {
			return err
		}
	}
	for _, n := range g.Bubbles {
		if err := add("bubbles", n); err != nil {
			return err
		}
	}
	if g.Door != "" {
		return add("door", g.Door)
	}
	return nil
}

// Bindable is a scene node that can carry a material.
type Bindable interface {
	Name() string
	SetMaterial(m Material)
}

// Traversable visits every node of a subtree exactly once, root included.
type Traversable interface {
	Walk(visit func(node Bindable))
}

// Stats summarizes a Bind pass.
type Stats struct {
	// Visited is the number of nodes visited.
	Visited int
	// ByKind counts nodes per assigned material variant.
	ByKind map[Kind]int
	// Unmatched lists configured names that matched no node, in group order.
	Unmatched []string
}

// Binder assigns materials to scene nodes by name.
// Each visited node first receives the baked material, then the candle material if its name is in the
// candle group, else the bubble material if it is in the bubbles group, else the door material if it
// equals the door name. Names that match no node are ignored.
type Binder struct {
	baked  *Baked
	candle *Candle
	bubble *Bubble
	door   *Door

	groups  NameGroups
	candles map[string]struct{}
	bubbles map[string]struct{}
}

// NewBinder creates a Binder over the four surface materials.
// Without WithNameGroups the binder uses DefaultNameGroups.
//
// Parameters:
//   - baked: the default material
//   - candle: the candle material
//   - bubble: the bubble material
//   - door: the door material
//   - options: functional options to configure the binder
//
// Returns:
//   - *Binder: the configured binder
//   - error: ErrOverlappingGroups if a name is in more than one group
func NewBinder(baked *Baked, candle *Candle, bubble *Bubble, door *Door, options ...BinderBuilderOption) (*Binder, error) {
	b := &Binder{
		baked:  baked,
		candle: candle,
		bubble: bubble,
		door:   door,
		groups: DefaultNameGroups(),
	}
	for _, opt := range options {
		opt(b)
	}
	if err := b.groups.Validate(); err != nil {
		return nil, err
	}

	b.candles = make(map[string]struct{}, len(b.groups.Candle))
	for _, n := range b.groups.Candle {
		b.candles[n] = struct{}{}
	}
	b.bubbles = make(map[string]struct{}, len(b.groups.Bubbles))
	for _, n := range b.groups.Bubbles {
		b.bubbles[n] = struct{}{}
	}
	return b, nil
}

// Baked returns the default material.
func (b *Binder) Baked() *Baked { return b.baked }

// Candle returns the candle material.
func (b *Binder) Candle() *Candle { return b.candle }

// Bubble returns the bubble material.
func (b *Binder) Bubble() *Bubble { return b.bubble }

// Door returns the door material.
func (b *Binder) Door() *Door { return b.door }

// Groups returns a copy of the configured name groups.
func (b *Binder) Groups() NameGroups {
	return NameGroups{
		Candle:  slices.Clone(b.groups.Candle),
		Bubbles: slices.Clone(b.groups.Bubbles),
		Door:    b.groups.Door,
	}
}

// Resolve returns the material a node named name receives.
//
// Parameters:
//   - name: the node name
//
// Returns:
//   - Material: the assigned material
func (b *Binder) Resolve(name string) Material {
	var m Material = b.baked
	if _, ok := b.candles[name]; ok {
		m = b.candle
	} else if _, ok := b.bubbles[name]; ok {
		m = b.bubble
	} else if b.groups.Door != "" && name == b.groups.Door {
		m = b.door
	}
	return m
}

// Bind walks root and assigns exactly one material to every node. Binding the same tree twice
// produces the same assignment.
//
// Parameters:
//   - root: the loaded model
//
// Returns:
//   - Stats: counts per variant and configured names with no matching node
func (b *Binder) Bind(root Traversable) Stats {
	stats := Stats{ByKind: make(map[Kind]int, 4)}
	found := make(map[string]struct{})

	root.Walk(func(node Bindable) {
		name := node.Name()
		m := b.Resolve(name)
		node.SetMaterial(m)

		stats.Visited++
		stats.ByKind[m.Kind()]++
		if m.Kind() != KindBaked {
			found[name] = struct{}{}
		}
	})

	for _, n := range b.groups.Candle {
		if _, ok := found[n]; !ok {
			stats.Unmatched = append(stats.Unmatched, n)
		}
	}
	for _, n := range b.groups.Bubbles {
		if _, ok := found[n]; !ok {
			stats.Unmatched = append(stats.Unmatched, n)
		}
	}
	if d := b.groups.Door; d != "" {
		if _, ok := found[d]; !ok {
			stats.Unmatched = append(stats.Unmatched, d)
		}
	}
	return stats
}
