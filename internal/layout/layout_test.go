// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package layout_test

import (
	"errors"
	"math"
	"testing"

	"code.hybscloud.com/shmq/internal/layout"
)

// TestPowerOfTwo checks the edge values around the predicate.
func TestPowerOfTwo(t *testing.T) {
	for _, n := range []uint64{1, 2, 4, 1024, 1 << 63} {
		if !layout.PowerOfTwo(n) {
			t.Fatalf("PowerOfTwo(%d): got false", n)
		}
	}
	for _, n := range []uint64{0, 3, 6, 1000, math.MaxUint64} {
		if layout.PowerOfTwo(n) {
			t.Fatalf("PowerOfTwo(%d): got true", n)
		}
	}
}

// TestCheckParams validates the geometry contract: element size at least 1,
// capacity an exact power of two, never rounded.
func TestCheckParams(t *testing.T) {
	cases := []struct {
		name        string
		elementSize uint64
		capacity    uint64
		ok          bool
	}{
		{"minimal", 1, 1, true},
		{"typical", 64, 1024, true},
		{"zero element size", 0, 4, false},
		{"zero capacity", 8, 0, false},
		{"capacity three", 8, 3, false},
		{"capacity thousand", 8, 1000, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := layout.CheckParams(tc.elementSize, tc.capacity)
			if tc.ok && err != nil {
				t.Fatalf("CheckParams: %v", err)
			}
			if !tc.ok && !errors.Is(err, layout.ErrBadParameters) {
				t.Fatalf("CheckParams: got %v, want ErrBadParameters", err)
			}
		})
	}
}

// TestSlotStride verifies the stride is the sequence counter plus payload
// rounded up to a whole cache line.
func TestSlotStride(t *testing.T) {
	cases := []struct {
		elementSize uint64
		want        uint64
	}{
		{1, 64},
		{56, 64},
		{57, 128},
		{64, 128},
		{120, 128},
		{121, 192},
	}
	for _, tc := range cases {
		if got := layout.SlotStride(tc.elementSize); got != tc.want {
			t.Fatalf("SlotStride(%d): got %d, want %d", tc.elementSize, got, tc.want)
		}
		if got := layout.SlotStride(tc.elementSize); got%layout.CacheLine != 0 {
			t.Fatalf("SlotStride(%d) = %d not cache line aligned", tc.elementSize, got)
		}
	}
}

// TestSegmentSize checks exact segment sizes and the overflow guard.
func TestSegmentSize(t *testing.T) {
	size, err := layout.SegmentSize(8, 4)
	if err != nil {
		t.Fatalf("SegmentSize: %v", err)
	}
	if want := uint64(layout.HeaderSize) + 4*64; size != want {
		t.Fatalf("SegmentSize(8, 4): got %d, want %d", size, want)
	}

	size, err = layout.SegmentSize(120, 2)
	if err != nil {
		t.Fatalf("SegmentSize: %v", err)
	}
	if want := uint64(layout.HeaderSize) + 2*128; size != want {
		t.Fatalf("SegmentSize(120, 2): got %d, want %d", size, want)
	}

	if _, err := layout.SegmentSize(8, 3); !errors.Is(err, layout.ErrBadParameters) {
		t.Fatalf("SegmentSize bad capacity: got %v, want ErrBadParameters", err)
	}
	if _, err := layout.SegmentSize(math.MaxUint64-16, 2); !errors.Is(err, layout.ErrTooLarge) {
		t.Fatalf("SegmentSize huge element: got %v, want ErrTooLarge", err)
	}
	if _, err := layout.SegmentSize(8, 1<<62); !errors.Is(err, layout.ErrTooLarge) {
		t.Fatalf("SegmentSize huge capacity: got %v, want ErrTooLarge", err)
	}
}

// TestSlotOffset verifies slot placement after the fixed header.
func TestSlotOffset(t *testing.T) {
	if got := layout.SlotOffset(8, 0); got != layout.HeaderSize {
		t.Fatalf("SlotOffset(8, 0): got %d, want %d", got, layout.HeaderSize)
	}
	if got := layout.SlotOffset(8, 3); got != layout.HeaderSize+3*64 {
		t.Fatalf("SlotOffset(8, 3): got %d, want %d", got, layout.HeaderSize+3*64)
	}
}

// TestHeaderOffsets pins the header field positions; they are a wire
// contract shared with every attached process.
func TestHeaderOffsets(t *testing.T) {
	if layout.MagicOffset != 0 ||
		layout.VersionOffset != 8 ||
		layout.ElementSizeOffset != 16 ||
		layout.CapacityOffset != 24 ||
		layout.ReadyOffset != 32 ||
		layout.EnqueuePosOffset != 64 ||
		layout.DequeuePosOffset != 128 {
		t.Fatal("header field offsets drifted from the layout contract")
	}
	if layout.HeaderSize != 192 {
		t.Fatalf("HeaderSize: got %d, want 192", layout.HeaderSize)
	}
	if len(layout.Magic) != 8 {
		t.Fatalf("Magic length: got %d, want 8", len(layout.Magic))
	}
}
