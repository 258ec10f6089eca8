//go:build netlib

package main

import (
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/netlib/blas/netlib"
)

// This file forces gonum onto the system BLAS when you build with
// `-tags netlib`. Matrix products in the forward/backward passes go through
// blas64, so the swap needs no other code changes.
func init() {
	blas64.Use(netlib.Implementation{})
}
