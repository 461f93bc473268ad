// Package rangeset tracks sets of inclusive physical address ranges using
// fixed-size storage. The set is self-hosting: it never allocates, which
// allows it to describe free physical memory before any allocator exists.
package rangeset

import "github.com/relativehysteria/os-skelet/kernel"

// MaxRanges defines the number of range entries a set can track. The entries
// live inline in the RangeSet value so the set never allocates.
const MaxRanges = 256

var (
	// ErrSetFull is returned when an operation needs a new range entry but
	// the set already tracks MaxRanges disjoint ranges. Operations that
	// fail with ErrSetFull leave the set unchanged.
	ErrSetFull = &kernel.Error{Module: "rangeset", Message: "set is full; cannot track any more ranges"}

	errInvalidRange = &kernel.Error{Module: "rangeset", Message: "range end must not be less than range start"}
	errInvalidSize  = &kernel.Error{Module: "rangeset", Message: "allocation size must not be zero"}
	errInvalidAlign = &kernel.Error{Module: "rangeset", Message: "allocation alignment must be a non-zero power of two"}
)

// Range describes the inclusive interval of physical addresses
// [Start, End]. A Range with Start == End covers exactly one byte; the empty
// interval cannot be represented.
type Range struct {
	Start uintptr
	End   uintptr
}

// NewRange returns the range covering [start, end].
func NewRange(start, end uintptr) (Range, *kernel.Error) {
	if end < start {
		return Range{}, errInvalidRange
	}
	return Range{Start: start, End: end}, nil
}

// Size returns the number of bytes covered by r. A range covering the whole
// address space would overflow uintptr; it is reported as ^uintptr(0).
func (r Range) Size() uintptr {
	size := r.End - r.Start + 1
	if size == 0 {
		return ^uintptr(0)
	}
	return size
}

// Contains returns true if addr lies within r.
func (r Range) Contains(addr uintptr) bool {
	return r.Start <= addr && addr <= r.End
}

// Overlaps returns true if r and other share at least one address.
func (r Range) Overlaps(other Range) bool {
	return r.Start <= other.End && other.Start <= r.End
}

// AdjacentTo returns true if r and other touch without overlapping, i.e. one
// range ends exactly one byte before the other starts.
func (r Range) AdjacentTo(other Range) bool {
	return (r.End != ^uintptr(0) && r.End+1 == other.Start) ||
		(other.End != ^uintptr(0) && other.End+1 == r.Start)
}

// RangeSet tracks up to MaxRanges disjoint address ranges. The entries are
// kept sorted by start address and any two entries are separated by at least
// one byte that belongs to neither; overlapping or touching ranges are merged
// on insert. The zero value is an empty set ready for use.
type RangeSet struct {
	ranges [MaxRanges]Range
	count  int
}

// Len returns the number of disjoint ranges tracked by the set.
func (s *RangeSet) Len() int {
	return s.count
}

// TotalBytes returns the total number of bytes covered by the set. The count
// saturates at ^uintptr(0) if the set covers the entire address space.
func (s *RangeSet) TotalBytes() uintptr {
	var total uintptr
	for i := 0; i < s.count; i++ {
		sum := total + s.ranges[i].Size()
		if sum < total {
			return ^uintptr(0)
		}
		total = sum
	}
	return total
}

// Visit invokes visitFn for each tracked range in ascending start address
// order.
func (s *RangeSet) Visit(visitFn func(r Range)) {
	for i := 0; i < s.count; i++ {
		visitFn(s.ranges[i])
	}
}

// Reset discards all tracked ranges.
func (s *RangeSet) Reset() {
	s.count = 0
}

// Insert adds r to the set, merging it with any tracked ranges it overlaps or
// touches. Inserting a range already covered by the set is a no-op. If the
// set is full and r cannot be merged into an existing entry, Insert returns
// ErrSetFull and leaves the set unchanged.
func (s *RangeSet) Insert(r Range) *kernel.Error {
	if r.End < r.Start {
		return errInvalidRange
	}

	// Find the run of entries [first, last) that overlap or touch r. The
	// entries are sorted so the run is contiguous.
	first := s.count
	last := s.count
	for i := 0; i < s.count; i++ {
		e := s.ranges[i]
		if e.End < r.Start && !e.AdjacentTo(r) {
			continue
		}
		if e.Start > r.End && !e.AdjacentTo(r) {
			if first == s.count {
				first, last = i, i
			}
			break
		}

		if first == s.count {
			first = i
		}
		last = i + 1
	}

	if first == last {
		// No entry can absorb r; it needs a slot of its own.
		if s.count == MaxRanges {
			return ErrSetFull
		}
		s.insertAt(first, r)
		return nil
	}

	// Merge r with the run and close the gap left behind.
	merged := r
	if e := s.ranges[first]; e.Start < merged.Start {
		merged.Start = e.Start
	}
	if e := s.ranges[last-1]; e.End > merged.End {
		merged.End = e.End
	}

	s.ranges[first] = merged
	copy(s.ranges[first+1:s.count], s.ranges[last:s.count])
	s.count -= last - first - 1

	return nil
}

// Remove deletes every address in r from the set, trimming or splitting the
// tracked ranges as needed. Removing addresses the set does not cover is a
// no-op. Splitting a range requires a free entry; if none is available Remove
// returns ErrSetFull without modifying the set.
func (s *RangeSet) Remove(r Range) *kernel.Error {
	if r.End < r.Start {
		return errInvalidRange
	}

	// A removal that punches a hole strictly inside an entry splits it in
	// two. Check for the extra slot up front so a failed removal cannot
	// leave the set half-modified. Only one entry can strictly contain r
	// since the entries are disjoint.
	for i := 0; i < s.count; i++ {
		e := s.ranges[i]
		if e.Start < r.Start && r.End < e.End && s.count == MaxRanges {
			return ErrSetFull
		}
	}

	for i := 0; i < s.count; i++ {
		e := s.ranges[i]
		if !e.Overlaps(r) {
			if e.Start > r.End {
				break
			}
			continue
		}

		switch {
		case e.Start < r.Start && r.End < e.End:
			// Split: keep the left part in place, insert the right part.
			s.ranges[i].End = r.Start - 1
			s.insertAt(i+1, Range{Start: r.End + 1, End: e.End})
			return nil
		case r.Start <= e.Start && e.End <= r.End:
			// Fully covered; drop the entry.
			s.removeAt(i)
			i--
		case e.Start < r.Start:
			// Trim the tail.
			s.ranges[i].End = r.Start - 1
		default:
			// Trim the head.
			s.ranges[i].Start = r.End + 1
		}
	}

	return nil
}

// Allocate carves size bytes aligned to align out of the lowest suitable
// tracked range and returns the address of the carved block. Candidate ranges
// are examined in ascending address order and the block is always placed at
// the lowest aligned address that fits. The found flag reports whether any
// range could satisfy the request; a false flag with a nil error means the
// set simply has no suitable space.
func (s *RangeSet) Allocate(size, align uintptr) (addr uintptr, found bool, err *kernel.Error) {
	if size == 0 {
		return 0, false, errInvalidSize
	}
	if align == 0 || align&(align-1) != 0 {
		return 0, false, errInvalidAlign
	}

	for i := 0; i < s.count; i++ {
		e := s.ranges[i]

		base := (e.Start + align - 1) &^ (align - 1)
		if base < e.Start {
			// Aligning up wrapped past the end of the address space.
			continue
		}

		end := base + size - 1
		if end < base || end > e.End {
			continue
		}

		if err = s.Remove(Range{Start: base, End: end}); err != nil {
			return 0, false, err
		}
		return base, true, nil
	}

	return 0, false, nil
}

// insertAt places r at index i, shifting the entries at i and above one slot
// to the right. The caller must ensure a free slot exists.
func (s *RangeSet) insertAt(i int, r Range) {
	copy(s.ranges[i+1:s.count+1], s.ranges[i:s.count])
	s.ranges[i] = r
	s.count++
}

// removeAt deletes the entry at index i, shifting the entries above it one
// slot to the left.
func (s *RangeSet) removeAt(i int) {
	copy(s.ranges[i:s.count-1], s.ranges[i+1:s.count])
	s.count--
}
