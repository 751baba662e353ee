package handshake

import (
	"errors"

	"github.com/quartzsec/tlshake/pkg/protocol"
)

// Typed errors.
var (
	errUnableToMarshalFragmented    = &protocol.InternalError{Err: errors.New("unable to marshal fragmented handshakes")}
	errHandshakeMessageUnset        = &protocol.InternalError{Err: errors.New("handshake message unset, unable to marshal")}
	errBufferTooSmall               = &protocol.TemporaryError{Err: errors.New("buffer is too small")}
	errLengthMismatch               = &protocol.InternalError{Err: errors.New("data length and declared length do not match")}
	errMessageFragmented            = &protocol.InternalError{Err: errors.New("handshake message is fragmented, reassembly must happen in the transport")}
	errInvalidClientKeyExchange     = &protocol.FatalError{Err: errors.New("unable to determine if ClientKeyExchange is a public key or PSK Identity")}
	errInvalidHashAlgorithm         = &protocol.FatalError{Err: errors.New("invalid hash algorithm")}
	errInvalidSignatureAlgorithm    = &protocol.FatalError{Err: errors.New("invalid signature algorithm")}
	errInvalidClientCertificateType = &protocol.FatalError{Err: errors.New("invalid or unknown client certificate type")}
	errInvalidEllipticCurveType     = &protocol.FatalError{Err: errors.New("invalid or unknown elliptic curve type")}
	errInvalidNamedCurve            = &protocol.FatalError{Err: errors.New("invalid named curve")}
	errInvalidCompressionMethod     = &protocol.FatalError{Err: errors.New("invalid or unknown compression method")}
	errCookieTooLong                = &protocol.FatalError{Err: errors.New("cookie must not be longer then 255 bytes")}
	errRandomBytesLength            = &protocol.FatalError{Err: errors.New("random value is not 32 bytes")}
	errSessionIDTooLong             = &protocol.FatalError{Err: errors.New("session id must not be longer then 32 bytes")}
	errCipherSuiteListInvalid       = &protocol.FatalError{Err: errors.New("cipher suite list is empty or has an odd length")}
	errEmptyCertificate             = &protocol.FatalError{Err: errors.New("certificate entries must not be empty")}
	errCertificateTooLarge          = &protocol.FatalError{Err: errors.New("certificate list exceeds the maximum encodable size")}
	errCertificateTypesEmpty        = &protocol.FatalError{Err: errors.New("certificate request requires at least one certificate type")}
	errSignatureHashListInvalid     = &protocol.FatalError{Err: errors.New("signature hash algorithm list is empty or has an odd length")}
	errCANameInvalid                = &protocol.FatalError{Err: errors.New("certificate authority name has an invalid length")}
	errVerifyDataLength             = &protocol.FatalError{Err: errors.New("finished verify data has an invalid length")}
	errNotImplemented               = &protocol.InternalError{Err: errors.New("feature has not been implemented yet")}
)
