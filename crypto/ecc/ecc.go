// Package ecc defines the elliptic curve point abstraction used by the
// homomorphic encryption layer. Implementations wrap a concrete curve library
// and must be deterministic in their Marshal output.
package ecc

import "math/big"

// Point defines the interface for elliptic curve points used across the
// cryptographic components. Operations store their result in the receiver.
type Point interface {
	// New creates a new point on the same curve (identity element).
	New() Point
	// Order returns the order of the curve group.
	Order() *big.Int
	// Add computes a+b and stores the result in the receiver.
	Add(a, b Point)
	// SafeAdd is like Add but safe for concurrent use of the receiver.
	SafeAdd(a, b Point)
	// ScalarMult computes scalar*a and stores the result in the receiver.
	ScalarMult(a Point, scalar *big.Int)
	// ScalarBaseMult computes scalar*G and stores the result in the receiver.
	ScalarBaseMult(scalar *big.Int)
	// Marshal serializes the point to a deterministic byte representation.
	Marshal() []byte
	// Unmarshal deserializes a point from its Marshal representation.
	Unmarshal(buf []byte) error
	// Equal checks if two points are equal.
	Equal(a Point) bool
	// Neg computes -a and stores the result in the receiver.
	Neg(a Point)
	// SetZero sets the receiver to the identity element.
	SetZero()
	// Set copies a into the receiver.
	Set(a Point)
	// SetGenerator sets the receiver to the curve base generator.
	SetGenerator()
	// Point returns the affine x and y coordinates.
	Point() (*big.Int, *big.Int)
	// SetPoint sets the point to the given affine coordinates.
	SetPoint(x, y *big.Int) Point
	// Type returns the curve type identifier.
	Type() string
	// String returns a human readable representation of the point.
	String() string
}
