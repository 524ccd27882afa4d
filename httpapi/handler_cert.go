package httpapi

import (
	"crypto/rsa"
	"encoding/json"
	"log/slog"
	"math/big"
	"net/http"

	"github.com/ldvx/certforge/asn1write"
	"github.com/ldvx/certforge/pemutil"
	"github.com/ldvx/certforge/pkiext"
	"github.com/ldvx/certforge/pkikey"
	"github.com/ldvx/certforge/x509write"
	"github.com/pkg/errors"
)

var errBadSerial = errors.New("invalid serial number")

// parseSerial parses s as a certificate serial number. An empty s
// returns (nil, nil): the caller leaves the certificate context's
// serial unset, and x509write.Certificate.DER assigns a random one.
func parseSerial(s string) (*big.Int, error) {
	if s == "" {
		return nil, nil
	}
	n := new(big.Int)
	base := 10
	if len(s) > 2 && (s[:2] == "0x" || s[:2] == "0X") {
		s = s[2:]
		base = 16
	}
	if _, ok := n.SetString(s, base); !ok {
		return nil, errBadSerial
	}
	return n, nil
}

// HandleCertificate Assemble an X.509 v3 certificate
// @Summary Assemble a certificate
// @Description Builds and signs an X.509 v3 Certificate from subject/issuer DNs, a validity window, and an RSA key pair
// @Tags Certificate
// @Accept json
// @Produce json
// @Param request body httpapi.CertificateRequest true "Certificate parameters"
// @Success 200 {object} httpapi.CertificateResponse
// @Failure 400 {object} httpapi.ErrorResponse
// @Failure 405 {object} httpapi.ErrorResponse
// @Failure 500 {object} httpapi.ErrorResponse
// @Router /api/v1/certificate [POST]
func HandleCertificate(w http.ResponseWriter, r *http.Request) {
	requestID := newRequestID()

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, requestID, "method not allowed")
		return
	}

	var req CertificateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, requestID, "failed to parse JSON: "+err.Error())
		return
	}

	serial, err := parseSerial(req.Serial)
	if err != nil {
		writeError(w, http.StatusBadRequest, requestID, err.Error())
		return
	}

	subjectKey, err := parseRSAPublicKeyPEM(req.SubjectKeyPEM)
	if err != nil {
		writeError(w, http.StatusBadRequest, requestID, "invalid subject key: "+err.Error())
		return
	}

	issuerSigner, err := parseRSAPrivateKeyPEM(req.IssuerKeyPEM)
	if err != nil {
		writeError(w, http.StatusBadRequest, requestID, "invalid issuer key: "+err.Error())
		return
	}

	hash, err := parseHash(req.Hash)
	if err != nil {
		writeError(w, http.StatusBadRequest, requestID, err.Error())
		return
	}

	cert := x509write.NewCertificate()
	if err := cert.SetSubjectName(req.Subject); err != nil {
		writeError(w, http.StatusBadRequest, requestID, "invalid subject: "+err.Error())
		return
	}
	if err := cert.SetIssuerName(req.Issuer); err != nil {
		writeError(w, http.StatusBadRequest, requestID, "invalid issuer: "+err.Error())
		return
	}
	if err := cert.SetValidity(req.NotBefore, req.NotAfter); err != nil {
		writeError(w, http.StatusBadRequest, requestID, "invalid validity: "+err.Error())
		return
	}
	if serial != nil {
		cert.SetSerial(serial)
	}
	cert.SetSubjectKey(subjectKey)
	cert.SetIssuerSigner(issuerSigner)
	cert.SetHash(hash)

	pathLen := req.PathLen
	if !req.IsCA {
		pathLen = -1
	}
	if err := cert.Extensions().BasicConstraints(req.BasicConstraintsCritical, req.IsCA, pathLen); err != nil {
		writeError(w, http.StatusBadRequest, requestID, "invalid basic constraints: "+err.Error())
		return
	}

	if req.KeyUsage != nil {
		if err := cert.Extensions().KeyUsage(req.KeyUsageCritical, byte(*req.KeyUsage)); err != nil {
			writeError(w, http.StatusBadRequest, requestID, "invalid key usage: "+err.Error())
			return
		}
	}

	if req.IncludeKeyIdentifiers {
		if err := attachKeyIdentifiers(cert.Extensions(), subjectKey, &issuerSigner.PublicKey); err != nil {
			writeError(w, http.StatusInternalServerError, requestID, "failed to build key identifiers: "+err.Error())
			return
		}
	}

	der, err := cert.DER()
	if err != nil {
		writeError(w, http.StatusInternalServerError, requestID, "failed to assemble certificate: "+err.Error())
		return
	}

	serialLog := "auto"
	if serial != nil {
		serialLog = serial.String()
	}
	slog.Info("certificate assembled",
		"request_id", requestID,
		"subject", req.Subject,
		"issuer", req.Issuer,
		"serial", serialLog,
		"der_len", len(der),
	)

	certPEM := pemutil.Encode(pemutil.BannerCertificate, der)
	notifyCertificateIssued(requestID, req.Subject, req.NotifyEmails, certPEM)

	resp := CertificateResponse{
		CertificatePEM: string(certPEM),
		RequestID:      requestID,
	}
	writeJSON(w, http.StatusOK, resp)
}

// rsaPublicKeyDERSize bounds the RSAPublicKey SEQUENCE encoding of pub:
// the modulus INTEGER (possibly one leading 0x00 sign-padding byte),
// the exponent INTEGER, and SEQUENCE/INTEGER tag-length headers.
func rsaPublicKeyDERSize(pub *rsa.PublicKey) int {
	modulusBytes := pub.N.BitLen()/8 + 1
	return modulusBytes + 64
}

func attachKeyIdentifiers(store *pkiext.Store, subjectKey, issuerKey *rsa.PublicKey) error {
	subjectBuf := make([]byte, rsaPublicKeyDERSize(subjectKey))
	sw := asn1write.NewWriter(subjectBuf)
	if _, err := pkikey.WriteRSAPublicKey(sw, subjectKey); err != nil {
		return err
	}
	if err := store.SubjectKeyIdentifier(sw.Bytes()); err != nil {
		return err
	}

	issuerBuf := make([]byte, rsaPublicKeyDERSize(issuerKey))
	iw := asn1write.NewWriter(issuerBuf)
	if _, err := pkikey.WriteRSAPublicKey(iw, issuerKey); err != nil {
		return err
	}
	return store.AuthorityKeyIdentifier(iw.Bytes())
}
