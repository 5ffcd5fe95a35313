package material

import "slices"

// BinderBuilderOption is a functional option for configuring a Binder.
type BinderBuilderOption func(*Binder)

// WithNameGroups replaces the default name groups.
//
// Parameters:
//   - groups: the candle, bubbles and door names to match
//
// Returns:
//   - BinderBuilderOption: option function to apply
func WithNameGroups(groups NameGroups) BinderBuilderOption {
	return func(b *Binder) {
		b.groups = NameGroups{
			Candle:  slices.Clone(groups.Candle),
			Bubbles: slices.Clone(groups.Bubbles),
			Door:    groups.Door,
		}
	}
}
