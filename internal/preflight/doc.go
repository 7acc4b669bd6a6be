// Package preflight provides readiness checks for the binaries and
// filesystem paths whisperwiz depends on.
//
// The "whisperwiz doctor" command runs every check and prints the results. A
// batch run does not invoke these checks itself; a missing transcoder
// surfaces as a transcode failure on the first video instead.
package preflight
