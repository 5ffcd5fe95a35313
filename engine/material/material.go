package material

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Kind tags which variant a Material is.
type Kind int

const (
	// KindBaked is the default lightmap material applied to every node.
	KindBaked Kind = iota
	// KindCandle is the flickering flame material.
	KindCandle
	// KindBubble is the hue-cycling material for the candle glass.
	KindBubble
	// KindDoor is the shimmering photo material.
	KindDoor
	// KindFireflies is the additive point-sprite material for the particle field.
	KindFireflies
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindBaked:
		return "baked"
	case KindCandle:
		return "candle"
	case KindBubble:
		return "bubble"
	case KindDoor:
		return "door"
	case KindFireflies:
		return "fireflies"
	default:
		return "unknown"
	}
}

// Blending selects how a shaded fragment is combined with the color buffer.
type Blending int

const (
	// BlendNormal composites with straight alpha ("source over").
	BlendNormal Blending = iota
	// BlendAdditive adds the source color scaled by its alpha.
	BlendAdditive
)

// Material is a closed set of shading variants: *Baked, *Candle, *Bubble, *Door and *Fireflies.
// Each variant owns its uniforms as typed fields which the animation clock mutates once per frame.
// Renderers switch on the concrete type (or Kind) to pick the vertex stage and call Shade for the fragment stage.
type Material interface {
	// Kind returns the variant tag.
	//
	// Returns:
	//   - Kind: the variant of this material
	Kind() Kind

	// Shade computes the straight-alpha RGBA color of one fragment.
	// Components are nominally in [0, 1]; emissive variants may exceed 1 before the output is clamped.
	//
	// Parameters:
	//   - f: the interpolated fragment inputs
	//
	// Returns:
	//   - mgl32.Vec4: the fragment color
	Shade(f Fragment) mgl32.Vec4

	// Blending returns how the fragment is written into the color buffer.
	//
	// Returns:
	//   - Blending: the blend mode
	Blending() Blending

	// DepthWrite reports whether fragments update the depth buffer.
	//
	// Returns:
	//   - bool: true if depth is written
	DepthWrite() bool
}

// Fragment carries the interpolated inputs of a single fragment.
type Fragment struct {
	// UV is the surface texture coordinate (unused by points).
	UV mgl32.Vec2
	// PointCoord is the position inside a point sprite in [0, 1]^2 (unused by surfaces).
	PointCoord mgl32.Vec2
	// World is the world-space position of the fragment.
	World mgl32.Vec3
}

var (
	_ Material = &Baked{}
	_ Material = &Candle{}
	_ Material = &Bubble{}
	_ Material = &Door{}
	_ Material = &Fireflies{}
)

// Baked samples the pre-baked lightmap texture with no lighting applied.
// Back faces are culled unless DoubleSided is set.
type Baked struct {
	Texture     *Texture
	DoubleSided bool
}

// NewBaked creates the default baked material for texture. A nil texture shades magenta
// so unbound geometry stays visible.
func NewBaked(texture *Texture) *Baked {
	return &Baked{Texture: texture, DoubleSided: true}
}

func (m *Baked) Kind() Kind         { return KindBaked }
func (m *Baked) Blending() Blending { return BlendNormal }
func (m *Baked) DepthWrite() bool   { return true }

// Candle is the flame material. Time advances every frame; Delay offsets the flicker phase,
// ColorSpeed sets the flicker frequency and BaseColor is the flame tint.
type Candle struct {
	Time       float32
	Delay      float32
	ColorSpeed float32
	BaseColor  mgl32.Vec3
}

// NewCandle creates a candle material with the scene's authored uniforms:
// time 1, delay 1, color speed 5 and base color #FFD7BC.
func NewCandle() *Candle {
	return &Candle{
		Time:       1,
		Delay:      1,
		ColorSpeed: 5,
		BaseColor:  HexColor(0xFFD7BC),
	}
}

func (m *Candle) Kind() Kind         { return KindCandle }
func (m *Candle) Blending() Blending { return BlendNormal }
func (m *Candle) DepthWrite() bool   { return true }

// Bubble is the translucent glass material around the candles.
type Bubble struct {
	Time float32
}

// NewBubble creates a bubble material starting at time 0.
func NewBubble() *Bubble {
	return &Bubble{}
}

func (m *Bubble) Kind() Kind         { return KindBubble }
func (m *Bubble) Blending() Blending { return BlendNormal }
func (m *Bubble) DepthWrite() bool   { return true }

// Door is the shimmering photo material. Resolution is the render buffer size in device pixels
// and is left at zero until the first resize.
type Door struct {
	Time       float32
	Resolution mgl32.Vec2
}

// NewDoor creates a door material starting at time 10.
func NewDoor() *Door {
	return &Door{Time: 10}
}

func (m *Door) Kind() Kind         { return KindDoor }
func (m *Door) Blending() Blending { return BlendNormal }
func (m *Door) DepthWrite() bool   { return true }

// Fireflies is the point-sprite material of the particle field.
// Size is in device pixels at unit view depth and is multiplied by PixelRatio and each particle's scale.
type Fireflies struct {
	Time       float32
	PixelRatio float32
	Size       float32
}

// NewFireflies creates the particle material with time 0, the given clamped pixel ratio and size.
func NewFireflies(pixelRatio, size float32) *Fireflies {
	return &Fireflies{PixelRatio: pixelRatio, Size: size}
}

func (m *Fireflies) Kind() Kind         { return KindFireflies }
func (m *Fireflies) Blending() Blending { return BlendAdditive }
func (m *Fireflies) DepthWrite() bool   { return false }

// HexColor converts a 0xRRGGBB value into an RGB vector in [0, 1].
func HexColor(hex uint32) mgl32.Vec3 {
	return mgl32.Vec3{
		float32((hex>>16)&0xFF) / 255,
		float32((hex>>8)&0xFF) / 255,
		float32(hex&0xFF) / 255,
	}
}
