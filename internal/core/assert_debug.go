//go:build octbsp_debug

package core

import "fmt"

// Assert checks an internal invariant and panics when it does not hold
func Assert(cond bool, msg string) {
	if !cond {
		panic(fmt.Sprintf("octbsp: assertion failed: %s", msg))
	}
}
