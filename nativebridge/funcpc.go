package nativebridge

import "reflect"

// driverEntry has no Go body: it is implemented in driver_entry_amd64.s,
// shared by every amd64 platform since the call into it is a private
// convention rather than a platform ABI boundary.
func driverEntry()

// funcPC returns the text address of a package-level, non-closure Go
// function, the same trick purego's NewCallback machinery relies on to
// get a raw address a foreign caller can CALL into directly.
func funcPC(f func()) uintptr {
	return reflect.ValueOf(f).Pointer()
}
