//go:build !windows

package nativebridge

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Page is one anonymous mapping sized to the platform's page granularity.
// Variable storage uses read/write pages; trampoline code uses
// read/write/exec pages, the only path that ever requests exec
// permission, per spec.md 4.3 and 5.
type Page struct {
	mem []byte
}

var pageSize = os.Getpagesize()

// NewPage allocates one fresh page-sized mapping. It never attempts to
// reclaim unused tail bytes within the page.
func NewPage(exec bool) (*Page, error) {
	prot := unix.PROT_READ | unix.PROT_WRITE
	if exec {
		prot |= unix.PROT_EXEC
	}
	mem, err := unix.Mmap(-1, 0, pageSize, prot, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("nativebridge: mmap: %w", err)
	}
	return &Page{mem: mem}, nil
}

// Bytes exposes the page's backing storage for in-place writes (variable
// storage slots, or JIT-emitted trampoline code; an exec page is mapped
// read/write/exec from the start, so no later protection change is made).
func (p *Page) Bytes() []byte { return p.mem }

// Free releases the mapping. Called when the owning scope pops.
func (p *Page) Free() error {
	if p.mem == nil {
		return nil
	}
	err := unix.Munmap(p.mem)
	p.mem = nil
	return err
}

// Size reports the platform's page granularity.
func Size() int { return pageSize }
