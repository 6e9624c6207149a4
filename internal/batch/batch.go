// Package batch assigns timestamped entities to the time windows every analyzer shares.
package batch

import (
	"iter"
	"time"

	"github.com/huangsam/teamsmell/schema"
)

// Dynamic splits a time-ordered sequence into batches. The first entity at or
// after since opens batch 0 at its own timestamp; an entity at or past the end
// of the current batch seals it and opens the next one at its timestamp.
// Entities must arrive in non-decreasing time order; they are not re-sorted.
// It returns the batches and their start dates, which are the grid every other
// stream is placed against.
func Dynamic[T any](source iter.Seq[T], at func(T) time.Time, width schema.Window, since time.Time) ([][]T, []time.Time) {
	var (
		batches [][]T
		dates   []time.Time
		current []T
		end     time.Time
	)
	for item := range source {
		t := at(item)
		if !since.IsZero() && t.Before(since) {
			continue
		}
		switch {
		case dates == nil:
			dates = append(dates, t)
			end = width.End(t)
		case !t.Before(end):
			batches = append(batches, current)
			current = nil
			dates = append(dates, t)
			end = width.End(t)
		}
		current = append(current, item)
	}
	if dates != nil {
		batches = append(batches, current)
	}
	return batches, dates
}

// Overflow is the cell index reported for entities outside every grid cell.
const Overflow = -1

// Grid places entities into a fixed list of batch windows agreed on up front.
// Entities may arrive in any order. An entity no cell contains goes to a single
// overflow bucket keyed by the grid's "now".
type Grid[T any] struct {
	dates    []time.Time
	width    schema.Window
	now      time.Time
	cells    [][]T
	overflow []T
}

// NewGrid creates a grid over the given batch start dates.
func NewGrid[T any](dates []time.Time, width schema.Window, now time.Time) *Grid[T] {
	return &Grid[T]{
		dates: dates,
		width: width,
		now:   now,
		cells: make([][]T, len(dates)),
	}
}

// Cell returns the index of the first cell with date <= t < date+width, or Overflow.
func (g *Grid[T]) Cell(t time.Time) int {
	for i, start := range g.dates {
		if g.width.Contains(start, t) {
			return i
		}
	}
	return Overflow
}

// Place adds item to its cell and returns the cell index.
func (g *Grid[T]) Place(t time.Time, item T) int {
	idx := g.Cell(t)
	if idx == Overflow {
		g.overflow = append(g.overflow, item)
		return idx
	}
	g.cells[idx] = append(g.cells[idx], item)
	return idx
}

// Len is the number of declared cells.
func (g *Grid[T]) Len() int {
	return len(g.cells)
}

// Cells returns one entity list per declared batch date.
func (g *Grid[T]) Cells() [][]T {
	return g.cells
}

// Overflow returns the entities no declared cell contains.
func (g *Grid[T]) Overflow() []T {
	return g.overflow
}

// Batches returns the declared cells followed by the overflow bucket, which is
// only present when it holds entities, along with the matching start dates.
func (g *Grid[T]) Batches() ([][]T, []time.Time) {
	batches := append([][]T(nil), g.cells...)
	dates := append([]time.Time(nil), g.dates...)
	if len(g.overflow) > 0 {
		batches = append(batches, g.overflow)
		dates = append(dates, g.now)
	}
	return batches, dates
}
