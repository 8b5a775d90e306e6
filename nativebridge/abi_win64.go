//go:build windows && amd64

package nativebridge

// CurrentABI is Windows x64 on windows/amd64 builds: the first four slots
// (integer or float, sharing one counter) occupy rcx,rdx,r8,r9 /
// xmm0-xmm3, and the rest are on the stack, per spec.md 4.6.
const CurrentABI = Win64

const numSlotsWin64 = 4
