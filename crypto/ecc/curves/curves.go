package curves

import (
	"slices"

	"github.com/voteguard/voteguard-node/crypto/ecc"
	"github.com/voteguard/voteguard-node/crypto/ecc/bn254"
)

// New creates a new instance of a Curve implementation based on the provided
// type string. If the type is not supported, it will panic. The supported
// types are defined in this package via the Curves() function, but you can
// also use the IsValid() function to check if a type is supported.
func New(curveType string) ecc.Point {
	switch curveType {
	case bn254.CurveType:
		return &bn254.G1{}
	default:
		panic("unsupported curve type: " + curveType)
	}
}

// Curves returns a list of supported curve types.
func Curves() []string {
	return []string{
		bn254.CurveType,
	}
}

func IsValid(curveType string) bool {
	return slices.Contains(Curves(), curveType)
}
