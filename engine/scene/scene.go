package scene

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-room/engine/material"
)

// scene is the implementation of the Scene interface.
type scene struct {
	mu *sync.RWMutex

	name   string
	root   *Node
	points []*Points
}

// Scene is the set of objects drawn each frame: a root node whose subtrees are loaded models,
// plus point-sprite objects. Structural changes and reads are guarded so the render loop can
// snapshot the scene while a caller adds a model.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Root returns the root node. Models are attached beneath it.
	//
	// Returns:
	//   - *Node: the scene root
	Root() *Node

	// Add attaches a model subtree to the root.
	//
	// Parameters:
	//   - node: the subtree to attach
	Add(node *Node)

	// Remove detaches a model subtree from the root.
	//
	// Parameters:
	//   - node: the subtree to detach
	Remove(node *Node)

	// AddPoints registers a point-sprite object.
	//
	// Parameters:
	//   - p: the points object
	AddPoints(p *Points)

	// Points returns a copy of the registered point-sprite objects.
	//
	// Returns:
	//   - []*Points: the points objects in insertion order
	Points() []*Points

	// Traverse visits every node under the root, root included.
	//
	// Parameters:
	//   - visit: called once per node
	Traverse(visit func(node *Node))

	// Materials returns every distinct material in the scene, points included, in first-seen order.
	//
	// Returns:
	//   - []material.Material: the distinct materials
	Materials() []material.Material
}

var _ Scene = &scene{}

// NewScene creates an empty Scene.
//
// Parameters:
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the new scene
func NewScene(options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:   &sync.RWMutex{},
		name: "scene",
		root: NewNode("Scene"),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Root() *Node {
	return s.root
}

func (s *scene) Add(node *Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.root.Add(node)
}

func (s *scene) Remove(node *Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.root.Remove(node)
}

func (s *scene) AddPoints(p *Points) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points = append(s.points, p)
}

func (s *scene) Points() []*Points {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Points, len(s.points))
	copy(out, s.points)
	return out
}

func (s *scene) Traverse(visit func(node *Node)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.root.Traverse(visit)
}

func (s *scene) Materials() []material.Material {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[material.Material]struct{})
	var out []material.Material
	add := func(m material.Material) {
		if m == nil {
			return
		}
		if _, ok := seen[m]; ok {
			return
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	s.root.Traverse(func(n *Node) { add(n.material) })
	for _, p := range s.points {
		if p.Material != nil {
			add(p.Material)
		}
	}
	return out
}
