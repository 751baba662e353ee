// Package clientcertificate provides the ClientCertificateType values
// carried by a CertificateRequest
// https://www.iana.org/assignments/tls-parameters/tls-parameters.xhtml#tls-parameters-2
package clientcertificate

// Type is the registered ClientCertificateType value.
type Type byte

// Type enums.
const (
	RSASign   Type = 1
	ECDSASign Type = 64
)

// Types returns all registered values. Every value outside this set is
// reserved and rejected during deserialization.
func Types() map[Type]struct{} {
	return map[Type]struct{}{
		RSASign:   {},
		ECDSASign: {},
	}
}
