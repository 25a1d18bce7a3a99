//go:build !octbsp_debug

package core

// Assert checks an internal invariant. Release builds ignore failures and
// continue best effort; build with -tags octbsp_debug to panic instead.
func Assert(cond bool, msg string) {}
