//go:build !windows

package main

// enableVT is a no-op where terminals interpret ANSI sequences natively.
func enableVT() {}
