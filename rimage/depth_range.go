package rimage

import (
	"context"
	"fmt"
	"sync"

	"go.viam.com/depthviz/utils"
)

// Range is the closed interval of samples observed in a depth map.
// Min == Max is a valid, flat range.
type Range struct {
	Min Depth
	Max Depth
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d]", r.Min, r.Max)
}

// Flat reports whether every sample had the same value.
func (r Range) Flat() bool {
	return r.Min == r.Max
}

// Span is Max - Min.
func (r Range) Span() Depth {
	return r.Max - r.Min
}

// Contains reports whether d lies within the range.
func (r Range) Contains(d Depth) bool {
	return d >= r.Min && d <= r.Max
}

func (r Range) merge(other Range) Range {
	if other.Min < r.Min {
		r.Min = other.Min
	}
	if other.Max > r.Max {
		r.Max = other.Max
	}
	return r
}

// emptyRange is the identity of merge.
var emptyRange = Range{Min: MaxDepth, Max: 0}

func foldRange(r Range, samples []Depth) Range {
	for _, z := range samples {
		if z < r.Min {
			r.Min = z
		}
		if z > r.Max {
			r.Max = z
		}
	}
	return r
}

func checkHasData(dm *DepthMap) error {
	if dm == nil {
		return utils.NewPreconditionErrorf("cannot find the range of a nil depth map")
	}
	if !dm.HasData() {
		return utils.NewPreconditionErrorf("cannot find the range of an empty %dx%d depth map", dm.width, dm.height)
	}
	return nil
}

// MinMax returns the smallest and largest samples. The depth map must have data;
// see FindRange for the checked version.
func (dm *DepthMap) MinMax() (Depth, Depth) {
	r := foldRange(emptyRange, dm.data)
	return r.Min, r.Max
}

// FindRange visits every sample once and returns the observed range. An empty
// depth map is a precondition violation.
func FindRange(dm *DepthMap) (Range, error) {
	if err := checkHasData(dm); err != nil {
		return Range{}, err
	}
	return foldRange(emptyRange, dm.data), nil
}

// FindRangeParallel is FindRange with the rows split across workers. Partial
// ranges are merged once every worker is done, so the result is identical.
func FindRangeParallel(ctx context.Context, dm *DepthMap) (Range, error) {
	if err := checkHasData(dm); err != nil {
		return Range{}, err
	}
	var mu sync.Mutex
	result := emptyRange
	err := utils.GroupWorkParallel(
		ctx,
		dm.height,
		nil,
		func(groupNum, groupSize, from, to int) (utils.MemberWorkFunc, utils.GroupWorkDoneFunc) {
			partial := emptyRange
			return func(memberNum, y int) {
					partial = foldRange(partial, dm.Row(y))
				}, func() {
					mu.Lock()
					result = result.merge(partial)
					mu.Unlock()
				}
		},
	)
	if err != nil {
		return Range{}, err
	}
	return result, nil
}
