package magnetics

import (
	"fmt"

	"github.com/notargets/gomag/types"
)

/*
Mask selects the receiver locations that measure a component. The zero value and MaskAll mean
every location measures it; MaskSubset restricts it to the locations flagged true.
*/
type Mask struct {
	subset []bool
	isSet  bool
}

func MaskAll() Mask { return Mask{} }

func MaskSubset(flags []bool) Mask {
	s := make([]bool, len(flags))
	copy(s, flags)
	return Mask{subset: s, isSet: true}
}

func (m Mask) IsAll() bool { return !m.isSet }

// Flags returns a copy of the subset flags, nil for MaskAll
func (m Mask) Flags() []bool {
	if !m.isSet {
		return nil
	}
	f := make([]bool, len(m.subset))
	copy(f, m.subset)
	return f
}

// Count is the number of data this mask contributes for a receiver with nLocations locations
func (m Mask) Count(nLocations int) (n int) {
	if !m.isSet {
		return nLocations
	}
	for _, f := range m.subset {
		if f {
			n++
		}
	}
	return
}

// Indices lists the locations selected, in location order
func (m Mask) Indices(nLocations int) (ind []int) {
	ind = make([]int, 0, m.Count(nLocations))
	for i := 0; i < nLocations; i++ {
		if !m.isSet || m.subset[i] {
			ind = append(ind, i)
		}
	}
	return
}

type ComponentMask struct {
	Component types.Component
	Mask      Mask
}

// Receiver is a set of observation locations and the components measured at them, in insertion order
type Receiver struct {
	Locations  [][3]float64
	components []ComponentMask
}

func NewReceiver(locations [][3]float64, components ...ComponentMask) (rx *Receiver, err error) {
	if len(locations) == 0 {
		err = fmt.Errorf("receiver has no locations: %w", ErrConfiguration)
		return
	}
	if len(components) == 0 {
		err = fmt.Errorf("receiver measures no components: %w", ErrConfiguration)
		return
	}
	seen := make(map[types.Component]bool, len(components))
	for _, cm := range components {
		if !cm.Component.IsValid() {
			err = fmt.Errorf("unsupported component %v: %w", cm.Component, ErrConfiguration)
			return
		}
		if seen[cm.Component] {
			err = fmt.Errorf("component %v listed twice: %w", cm.Component, ErrConfiguration)
			return
		}
		seen[cm.Component] = true
		if !cm.Mask.IsAll() && len(cm.Mask.subset) != len(locations) {
			err = fmt.Errorf("mask for %v has length %d, receiver has %d locations: %w",
				cm.Component, len(cm.Mask.subset), len(locations), ErrDimension)
			return
		}
	}
	rx = &Receiver{
		Locations:  make([][3]float64, len(locations)),
		components: make([]ComponentMask, len(components)),
	}
	copy(rx.Locations, locations)
	copy(rx.components, components)
	return
}

// PointReceiver measures every listed component at every location
func PointReceiver(locations [][3]float64, components ...types.Component) (*Receiver, error) {
	cms := make([]ComponentMask, len(components))
	for i, c := range components {
		cms[i] = ComponentMask{Component: c, Mask: MaskAll()}
	}
	return NewReceiver(locations, cms...)
}

func (rx *Receiver) NumLocations() int { return len(rx.Locations) }

// Components returns the measured components in insertion order
func (rx *Receiver) Components() []ComponentMask {
	c := make([]ComponentMask, len(rx.components))
	copy(c, rx.components)
	return c
}

// SourceField is the physical experiment: the receivers and the inducing field
type SourceField struct {
	ReceiverList []*Receiver
	Field        InducingField
}

func NewSourceField(field InducingField, receivers ...*Receiver) *SourceField {
	return &SourceField{ReceiverList: receivers, Field: field}
}
