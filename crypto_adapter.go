package tlshake

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/binary"

	"github.com/quartzsec/tlshake/pkg/crypto/elliptic"
	"github.com/quartzsec/tlshake/pkg/crypto/prf"
	"github.com/quartzsec/tlshake/pkg/crypto/signaturehash"
)

// CryptoAdapter performs every cryptographic operation the handshake
// needs. The engine never touches key material directly, so alternative
// implementations (HSM backed, deterministic for tests) can be swapped
// in through the Config.
type CryptoAdapter interface {
	GenerateKeypair(curve elliptic.Curve) (*elliptic.Keypair, error)
	PreMasterSecret(peerPublicKey []byte, localKeypair *elliptic.Keypair) ([]byte, error)
	PSKPreMasterSecret(psk []byte) []byte
	MasterSecret(preMasterSecret, clientRandom, serverRandom []byte, hashFunc prf.HashFunc) ([]byte, error)
	VerifyDataClient(masterSecret, transcript []byte, hashFunc prf.HashFunc) ([]byte, error)
	VerifyDataServer(masterSecret, transcript []byte, hashFunc prf.HashFunc) ([]byte, error)

	SignKeyExchange(clientRandom, serverRandom, publicKey []byte, curve elliptic.Curve,
		algorithm signaturehash.Algorithm, privateKey crypto.PrivateKey) ([]byte, error)
	VerifyKeyExchange(clientRandom, serverRandom, publicKey []byte, curve elliptic.Curve,
		algorithm signaturehash.Algorithm, rawCertificates [][]byte, signature []byte) error
	SignTranscript(transcript []byte, algorithm signaturehash.Algorithm, privateKey crypto.PrivateKey) ([]byte, error)
	VerifyTranscript(transcript []byte, algorithm signaturehash.Algorithm, rawCertificates [][]byte, signature []byte) error
}

type defaultCryptoAdapter struct{}

func (defaultCryptoAdapter) GenerateKeypair(curve elliptic.Curve) (*elliptic.Keypair, error) {
	return elliptic.GenerateKeypair(curve)
}

func (defaultCryptoAdapter) PreMasterSecret(peerPublicKey []byte, localKeypair *elliptic.Keypair) ([]byte, error) {
	return prf.PreMasterSecret(peerPublicKey, localKeypair)
}

func (defaultCryptoAdapter) PSKPreMasterSecret(psk []byte) []byte {
	return prf.PSKPreMasterSecret(psk)
}

func (defaultCryptoAdapter) MasterSecret(preMasterSecret, clientRandom, serverRandom []byte, hashFunc prf.HashFunc) ([]byte, error) {
	return prf.MasterSecret(preMasterSecret, clientRandom, serverRandom, hashFunc)
}

func (defaultCryptoAdapter) VerifyDataClient(masterSecret, transcript []byte, hashFunc prf.HashFunc) ([]byte, error) {
	return prf.VerifyDataClient(masterSecret, transcript, hashFunc)
}

func (defaultCryptoAdapter) VerifyDataServer(masterSecret, transcript []byte, hashFunc prf.HashFunc) ([]byte, error) {
	return prf.VerifyDataServer(masterSecret, transcript, hashFunc)
}

// valueKeyExchangeMessage is the byte string covered by the server key
// exchange signature, both randoms followed by the ECDH parameters as
// they appear on the wire.
func valueKeyExchangeMessage(clientRandom, serverRandom, publicKey []byte, curve elliptic.Curve) []byte {
	serverECDHParams := make([]byte, 4)
	serverECDHParams[0] = byte(elliptic.CurveTypeNamedCurve)
	binary.BigEndian.PutUint16(serverECDHParams[1:], uint16(curve))
	serverECDHParams[3] = byte(len(publicKey))

	plaintext := []byte{}
	plaintext = append(plaintext, clientRandom...)
	plaintext = append(plaintext, serverRandom...)
	plaintext = append(plaintext, serverECDHParams...)
	plaintext = append(plaintext, publicKey...)

	return plaintext
}

func (defaultCryptoAdapter) SignKeyExchange(clientRandom, serverRandom, publicKey []byte, curve elliptic.Curve,
	algorithm signaturehash.Algorithm, privateKey crypto.PrivateKey,
) ([]byte, error) {
	msg := valueKeyExchangeMessage(clientRandom, serverRandom, publicKey, curve)

	return signMessage(msg, algorithm, privateKey)
}

func (a defaultCryptoAdapter) VerifyKeyExchange(clientRandom, serverRandom, publicKey []byte, curve elliptic.Curve,
	algorithm signaturehash.Algorithm, rawCertificates [][]byte, signature []byte,
) error {
	msg := valueKeyExchangeMessage(clientRandom, serverRandom, publicKey, curve)

	return verifyMessage(msg, algorithm, rawCertificates, signature)
}

func (defaultCryptoAdapter) SignTranscript(transcript []byte, algorithm signaturehash.Algorithm, privateKey crypto.PrivateKey) ([]byte, error) {
	return signMessage(transcript, algorithm, privateKey)
}

func (defaultCryptoAdapter) VerifyTranscript(transcript []byte, algorithm signaturehash.Algorithm, rawCertificates [][]byte, signature []byte) error {
	return verifyMessage(transcript, algorithm, rawCertificates, signature)
}

func signMessage(msg []byte, algorithm signaturehash.Algorithm, privateKey crypto.PrivateKey) ([]byte, error) {
	switch key := privateKey.(type) {
	case ed25519.PrivateKey:
		return key.Sign(rand.Reader, msg, crypto.Hash(0))
	case *ecdsa.PrivateKey:
		return key.Sign(rand.Reader, algorithm.Hash.Digest(msg), algorithm.Hash.CryptoHash())
	case *rsa.PrivateKey:
		return key.Sign(rand.Reader, algorithm.Hash.Digest(msg), algorithm.Hash.CryptoHash())
	}

	return nil, errInvalidSignatureAlgorithm
}

func verifyMessage(msg []byte, algorithm signaturehash.Algorithm, rawCertificates [][]byte, sig []byte) error {
	if len(sig) == 0 {
		return errKeySignatureMismatch
	}
	if len(rawCertificates) == 0 {
		return errCertificateMissing
	}
	certificate, err := x509.ParseCertificate(rawCertificates[0])
	if err != nil {
		return err
	}

	switch pub := certificate.PublicKey.(type) {
	case ed25519.PublicKey:
		if !ed25519.Verify(pub, msg, sig) {
			return errKeySignatureMismatch
		}

		return nil
	case *ecdsa.PublicKey:
		if !ecdsa.VerifyASN1(pub, algorithm.Hash.Digest(msg), sig) {
			return errKeySignatureMismatch
		}

		return nil
	case *rsa.PublicKey:
		return rsa.VerifyPKCS1v15(pub, algorithm.Hash.CryptoHash(), algorithm.Hash.Digest(msg), sig)
	}

	return errKeySignatureMismatch
}
