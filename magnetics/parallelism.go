package magnetics

import (
	"golang.org/x/sync/errgroup"

	"github.com/notargets/gomag/types"
	"github.com/notargets/gomag/utils"
)

// stationRow is one datum measured at a station
type stationRow struct {
	Row       int
	Component types.Component
}

// station is a receiver location with every data row measured there
type station struct {
	Location [3]float64
	Rows     []stationRow
}

/*
stationsFromSurvey groups the data rows by (receiver, location) so that one prism kernel
evaluation serves every component measured at a location. Stations are ordered by receiver,
then location, and every data row belongs to exactly one station.
*/
func stationsFromSurvey(s *Survey) (stations []station) {
	index := make(map[[2]int]int)
	for ir := 0; ir < s.NumReceivers(); ir++ {
		rx := s.Receiver(ir)
		for il, loc := range rx.Locations {
			index[[2]int{ir, il}] = len(stations)
			stations = append(stations, station{Location: loc})
		}
	}
	for _, blk := range s.Blocks() {
		for k, il := range blk.Locations {
			is := index[[2]int{blk.Receiver, il}]
			stations[is].Rows = append(stations[is].Rows, stationRow{
				Row:       blk.Offset + k,
				Component: blk.Component,
			})
		}
	}
	// Locations that measure nothing do no work
	compact := stations[:0]
	for _, st := range stations {
		if len(st.Rows) != 0 {
			compact = append(compact, st)
		}
	}
	return compact
}

/*
runPartitioned splits [0, n) into contiguous buckets and runs work on each bucket in its own go
routine, at most procLimit at a time (all CPUs when procLimit is 0). A bucket is owned by one
worker, which is the only writer of the outputs indexed by that bucket.
*/
func runPartitioned(procLimit, n int, work func(bucket, kMin, kMax int) error) (np int, err error) {
	np = utils.ParallelDegree(procLimit, n)
	var (
		pm = utils.NewPartitionMap(np, n)
		g  errgroup.Group
	)
	g.SetLimit(np)
	for bn := 0; bn < np; bn++ {
		if pm.GetBucketDimension(bn) == 0 {
			continue
		}
		bn := bn
		kMin, kMax := pm.GetBucketRange(bn)
		g.Go(func() error {
			return work(bn, kMin, kMax)
		})
	}
	err = g.Wait()
	return
}
