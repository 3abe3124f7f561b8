// Package resource bounds what loading a data set may consume: bytes of
// decoded sections, concurrent component builds and remote read bandwidth.
//
// A nil *Controller imposes no limits.
package resource
