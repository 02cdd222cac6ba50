package magnetics

import (
	"fmt"
	"sync"

	"github.com/notargets/gomag/types"
)

// DataBlock is the run of data rows produced by one component of one receiver
type DataBlock struct {
	Receiver  int
	Component types.Component
	Offset    int   // First row of the block in the data vector
	Locations []int // Receiver location index of each row in the block
}

/*
Survey orders the data of a SourceField: receivers in list order, then components in insertion
order, then locations in mask order. The per block counts (vnD) and total (nD) are computed on
first use and cached until Invalidate is called.
*/
type Survey struct {
	source *SourceField
	mu     sync.Mutex
	gen    uint64 // Incremented by every Invalidate
	cached bool
	vnD    []int
	nD     int
	blocks []DataBlock
}

func NewSurvey(source *SourceField) (s *Survey, err error) {
	if err = validateSource(source); err != nil {
		return
	}
	s = &Survey{source: source}
	return
}

func validateSource(source *SourceField) (err error) {
	if source == nil || len(source.ReceiverList) == 0 {
		return fmt.Errorf("survey needs at least one receiver: %w", ErrConfiguration)
	}
	f := source.Field
	if _, err = NewInducingField(f.Intensity, f.Inclination, f.Declination); err != nil {
		return
	}
	for i, rx := range source.ReceiverList {
		if rx == nil {
			return fmt.Errorf("receiver %d is nil: %w", i, ErrConfiguration)
		}
	}
	nRx := source.ReceiverList[0].NumLocations()
	for i, rx := range source.ReceiverList {
		for _, cm := range rx.components {
			if cm.Mask.IsAll() && rx.NumLocations() != nRx {
				return fmt.Errorf("receiver %d measures %v at all of its %d locations, survey counts %d per receiver: %w",
					i, cm.Component, rx.NumLocations(), nRx, ErrDimension)
			}
		}
	}
	return
}

func (s *Survey) SourceField() *SourceField { return s.source }

func (s *Survey) Field() InducingField { return s.source.Field }

// NRx is the location count of the first receiver
func (s *Survey) NRx() int { return s.source.ReceiverList[0].NumLocations() }

func (s *Survey) ReceiverLocations() [][3]float64 { return s.source.ReceiverList[0].Locations }

func (s *Survey) Components() []ComponentMask { return s.source.ReceiverList[0].Components() }

func (s *Survey) NumReceivers() int { return len(s.source.ReceiverList) }

func (s *Survey) Receiver(i int) *Receiver { return s.source.ReceiverList[i] }

// VnD is the number of data in each (receiver, component) block
func (s *Survey) VnD() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.build()
	vnD := make([]int, len(s.vnD))
	copy(vnD, s.vnD)
	return vnD
}

func (s *Survey) ND() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.build()
	return s.nD
}

func (s *Survey) Blocks() []DataBlock {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.build()
	blocks := make([]DataBlock, len(s.blocks))
	for i, blk := range s.blocks {
		blocks[i] = blk
		blocks[i].Locations = make([]int, len(blk.Locations))
		copy(blocks[i].Locations, blk.Locations)
	}
	return blocks
}

// Generation identifies the layout, it changes each time Invalidate succeeds
func (s *Survey) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Invalidate drops the cached layout after the receiver list has changed
func (s *Survey) Invalidate() (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err = validateSource(s.source); err != nil {
		return
	}
	s.cached = false
	s.vnD, s.blocks, s.nD = nil, nil, 0
	s.gen++
	return
}

func (s *Survey) build() {
	if s.cached {
		return
	}
	var (
		nRx    = s.source.ReceiverList[0].NumLocations()
		offset int
	)
	s.vnD = s.vnD[:0]
	s.blocks = s.blocks[:0]
	for ir, rx := range s.source.ReceiverList {
		for _, cm := range rx.components {
			var count int
			if cm.Mask.IsAll() {
				count = nRx
			} else {
				count = cm.Mask.Count(rx.NumLocations())
			}
			s.vnD = append(s.vnD, count)
			s.blocks = append(s.blocks, DataBlock{
				Receiver:  ir,
				Component: cm.Component,
				Offset:    offset,
				Locations: cm.Mask.Indices(rx.NumLocations()),
			})
			offset += count
		}
	}
	s.nD = offset
	s.cached = true
}
