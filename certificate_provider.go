package tlshake

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"time"

	"github.com/quartzsec/tlshake/pkg/crypto/clientcertificate"
	"github.com/quartzsec/tlshake/pkg/crypto/signaturehash"
)

// CertificateProvider supplies the local certificate chain and decides
// whether peer chains are acceptable. The engine consults it when a
// certificate request arrives and when a peer chain must be verified.
type CertificateProvider interface {
	Chain() [][]byte
	PrivateKey() crypto.PrivateKey
	HasCompatibleCertificate(certificateTypes []clientcertificate.Type, algorithms []signaturehash.Algorithm) bool
	VerifyPeerChain(rawCertificates [][]byte) error
}

type configCertificateProvider struct {
	chain      [][]byte
	privateKey crypto.PrivateKey

	verifyPeerCertificate func(rawCertificates [][]byte) error
	rootCAs               *x509.CertPool
	insecureSkipVerify    bool
}

func (p *configCertificateProvider) Chain() [][]byte {
	return p.chain
}

func (p *configCertificateProvider) PrivateKey() crypto.PrivateKey {
	return p.privateKey
}

func (p *configCertificateProvider) HasCompatibleCertificate(certificateTypes []clientcertificate.Type, algorithms []signaturehash.Algorithm) bool {
	if len(p.chain) == 0 || p.privateKey == nil {
		return false
	}

	typeOK := false
	for _, certType := range certificateTypes {
		switch p.privateKey.(type) {
		case *rsa.PrivateKey:
			typeOK = typeOK || certType == clientcertificate.RSASign
		case *ecdsa.PrivateKey, ed25519.PrivateKey:
			typeOK = typeOK || certType == clientcertificate.ECDSASign
		}
	}
	if !typeOK {
		return false
	}

	if _, err := signaturehash.SelectSignatureScheme(algorithms, p.privateKey); err != nil {
		return false
	}

	return true
}

func (p *configCertificateProvider) VerifyPeerChain(rawCertificates [][]byte) error {
	if p.verifyPeerCertificate != nil {
		return p.verifyPeerCertificate(rawCertificates)
	}
	if p.insecureSkipVerify {
		return nil
	}

	certs := make([]*x509.Certificate, 0, len(rawCertificates))
	for _, raw := range rawCertificates {
		cert, err := x509.ParseCertificate(raw)
		if err != nil {
			return err
		}
		certs = append(certs, cert)
	}
	if len(certs) == 0 {
		return errCertificateMissing
	}

	intermediates := x509.NewCertPool()
	for _, cert := range certs[1:] {
		intermediates.AddCert(cert)
	}

	opts := x509.VerifyOptions{
		Roots:         p.rootCAs,
		Intermediates: intermediates,
		CurrentTime:   time.Now(),
		KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
	}
	_, err := certs[0].Verify(opts)

	return err
}
