package protocol

// Version enums.
var (
	// VersionTLS1_2 is the ProtocolVersion carried by TLS 1.2 handshakes.
	VersionTLS1_2 = Version{Major: 0x03, Minor: 0x03} //nolint:gochecknoglobals

	// VersionDTLS1_0 only appears as the legacy version of a
	// HelloVerifyRequest, it is never negotiated.
	VersionDTLS1_0 = Version{Major: 0xfe, Minor: 0xff} //nolint:gochecknoglobals

	// VersionDTLS1_2 is the ProtocolVersion carried by DTLS 1.2 handshakes.
	VersionDTLS1_2 = Version{Major: 0xfe, Minor: 0xfd} //nolint:gochecknoglobals
)

// Version is the major/minor value in the record layer
// and ClientHello/ServerHello
//
// https://tools.ietf.org/html/rfc4346#section-6.2.1
type Version struct {
	Major, Minor uint8
}

// Equal determines if two protocol versions are equal.
func (v Version) Equal(x Version) bool {
	return v.Major == x.Major && v.Minor == x.Minor
}

// IsSupported returns true if the version can be negotiated. Only
// TLS 1.2 and DTLS 1.2 are supported.
func IsSupported(v Version) bool {
	return v.Equal(VersionTLS1_2) || v.Equal(VersionDTLS1_2)
}
