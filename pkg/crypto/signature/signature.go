// Package signature provides the registered TLS SignatureAlgorithm values
package signature

// Algorithm is the registered SignatureAlgorithm value
// https://www.iana.org/assignments/tls-parameters/tls-parameters.xhtml#tls-parameters-16
type Algorithm uint8

// Algorithm enums.
const (
	Anonymous Algorithm = 0
	RSA       Algorithm = 1
	ECDSA     Algorithm = 3
	Ed25519   Algorithm = 7
)

// String makes the Algorithm printable.
func (a Algorithm) String() string {
	switch a {
	case Anonymous:
		return "anonymous"
	case RSA:
		return "rsa"
	case ECDSA:
		return "ecdsa"
	case Ed25519:
		return "ed25519"
	default:
		return "unknown or unsupported signature algorithm"
	}
}

// Algorithms returns all registered Algorithms. Every value outside
// this set is reserved and rejected during deserialization.
func Algorithms() map[Algorithm]struct{} {
	return map[Algorithm]struct{}{
		Anonymous: {},
		RSA:       {},
		ECDSA:     {},
		Ed25519:   {},
	}
}
