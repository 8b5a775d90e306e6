//go:build windows

package nativebridge

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Page mirrors the unix variant but is backed by VirtualAlloc, the way
// purego and gocpu's emulator obtain writable/executable memory on
// Windows without cgo.
type Page struct {
	addr uintptr
	size int
}

var pageSize = func() int {
	var info windows.SystemInfo
	windows.GetSystemInfo(&info)
	return int(info.PageSize)
}()

func NewPage(exec bool) (*Page, error) {
	protect := uint32(windows.PAGE_READWRITE)
	if exec {
		protect = windows.PAGE_EXECUTE_READWRITE
	}
	addr, err := windows.VirtualAlloc(0, uintptr(pageSize), windows.MEM_COMMIT|windows.MEM_RESERVE, protect)
	if err != nil {
		return nil, fmt.Errorf("nativebridge: VirtualAlloc: %w", err)
	}
	return &Page{addr: addr, size: pageSize}, nil
}

func (p *Page) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(p.addr)), p.size)
}

func (p *Page) Free() error {
	if p.addr == 0 {
		return nil
	}
	err := windows.VirtualFree(p.addr, 0, windows.MEM_RELEASE)
	p.addr = 0
	return err
}

func Size() int { return pageSize }
