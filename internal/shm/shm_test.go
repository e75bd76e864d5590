// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build unix

package shm_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"code.hybscloud.com/atomix"

	"code.hybscloud.com/shmq/internal/shm"
)

var nameCounter atomix.Int64

func segName(t *testing.T) string {
	t.Helper()
	return fmt.Sprintf("shmtest_%d_%d", os.Getpid(), nameCounter.Add(1))
}

// TestCreateOpenShare maps one segment twice and checks writes through one
// mapping are visible through the other.
func TestCreateOpenShare(t *testing.T) {
	name := segName(t)
	creator, err := shm.Create(name, 4096)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() {
		creator.Close()
		shm.Unlink(name)
	})

	if creator.Size() != 4096 {
		t.Fatalf("Size: got %d, want 4096", creator.Size())
	}
	if !creator.Created() {
		t.Fatal("Created: got false on creating handle")
	}
	if creator.Name() != name {
		t.Fatalf("Name: got %q, want %q", creator.Name(), name)
	}

	copy(creator.Bytes(), "hello across mappings")

	opener, err := shm.Open(name)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer opener.Close()

	if opener.Size() != 4096 {
		t.Fatalf("opened Size: got %d, want 4096", opener.Size())
	}
	if opener.Created() {
		t.Fatal("Created: got true on opening handle")
	}
	if got := string(opener.Bytes()[:21]); got != "hello across mappings" {
		t.Fatalf("cross-mapping read: got %q", got)
	}

	// And the reverse direction
	copy(opener.Bytes()[100:], "back")
	if got := string(creator.Bytes()[100:104]); got != "back" {
		t.Fatalf("reverse cross-mapping read: got %q", got)
	}
}

// TestCreateExclusive rejects a second create under a live name.
func TestCreateExclusive(t *testing.T) {
	name := segName(t)
	seg, err := shm.Create(name, 1024)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() {
		seg.Close()
		shm.Unlink(name)
	})

	if _, err := shm.Create(name, 1024); err == nil {
		t.Fatal("second Create: got nil, want error")
	}
}

// TestOpenMissing fails for names that were never created.
func TestOpenMissing(t *testing.T) {
	if _, err := shm.Open(segName(t)); err == nil {
		t.Fatal("Open missing: got nil, want error")
	}
}

// TestCloseIdempotent allows repeated closes on one handle.
func TestCloseIdempotent(t *testing.T) {
	name := segName(t)
	seg, err := shm.Create(name, 1024)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { shm.Unlink(name) })

	if err := seg.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := seg.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

// TestUnlinkLifecycle removes the name while existing mappings keep working.
func TestUnlinkLifecycle(t *testing.T) {
	name := segName(t)
	seg, err := shm.Create(name, 1024)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer seg.Close()

	copy(seg.Bytes(), "survivor")
	if err := shm.Unlink(name); err != nil {
		t.Fatalf("Unlink: %v", err)
	}

	// The mapping outlives the name
	if got := string(seg.Bytes()[:8]); got != "survivor" {
		t.Fatalf("mapping after Unlink: got %q", got)
	}
	if _, err := shm.Open(name); err == nil {
		t.Fatal("Open after Unlink: got nil, want error")
	}
	if err := shm.Unlink(name); err == nil {
		t.Fatal("second Unlink: got nil, want error")
	}
}

// TestPath keeps segment files recognizable in the backing directory.
func TestPath(t *testing.T) {
	path := shm.Path("orders")
	if base := filepath.Base(path); !strings.HasPrefix(base, "shmq_") {
		t.Fatalf("Path base: got %q, want shmq_ prefix", base)
	}
	if !strings.HasSuffix(path, "orders") {
		t.Fatalf("Path: got %q, want orders suffix", path)
	}
}
