package main

import "github.com/relativehysteria/os-skelet/kernel/kmain"

var (
	imageHandle uintptr
	sysTablePtr uintptr
)

// main makes a dummy call to the actual kernel entrypoint function. It is
// intentionally defined to prevent the Go compiler from optimizing away the
// real kernel code.
//
// Global variables are passed as arguments to Kmain to prevent the compiler
// from inlining the actual call and removing Kmain from the generated .o
// file. The rt0 EFI stub populates both variables with the image handle and
// system table pointer the firmware handed to the application entry point
// before jumping here.
func main() {
	kmain.Kmain(imageHandle, sysTablePtr)
}
