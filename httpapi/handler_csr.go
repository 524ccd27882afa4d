package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ldvx/certforge/pemutil"
	"github.com/ldvx/certforge/x509write"
)

// HandleCSR Assemble a PKCS#10 certificate signing request
// @Summary Assemble a CSR
// @Description Builds and signs a PKCS#10 CertificationRequest from a subject DN and an RSA key
// @Tags CSR
// @Accept json
// @Produce json
// @Param request body httpapi.CSRRequest true "CSR parameters"
// @Success 200 {object} httpapi.CSRResponse
// @Failure 400 {object} httpapi.ErrorResponse
// @Failure 405 {object} httpapi.ErrorResponse
// @Failure 500 {object} httpapi.ErrorResponse
// @Router /api/v1/csr [POST]
func HandleCSR(w http.ResponseWriter, r *http.Request) {
	requestID := newRequestID()

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, requestID, "method not allowed")
		return
	}

	var req CSRRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, requestID, "failed to parse JSON: "+err.Error())
		return
	}

	signer, err := parseRSAPrivateKeyPEM(req.PrivateKeyPEM)
	if err != nil {
		writeError(w, http.StatusBadRequest, requestID, "invalid private key: "+err.Error())
		return
	}

	hash, err := parseHash(req.Hash)
	if err != nil {
		writeError(w, http.StatusBadRequest, requestID, err.Error())
		return
	}

	csr := x509write.NewCSR()
	if err := csr.SetSubjectName(req.Subject); err != nil {
		writeError(w, http.StatusBadRequest, requestID, "invalid subject: "+err.Error())
		return
	}
	csr.SetPublicKey(&signer.PublicKey)
	csr.SetSigner(signer)
	csr.SetHash(hash)

	if req.KeyUsage != nil {
		if err := csr.Extensions().KeyUsage(req.KeyUsageCritical, byte(*req.KeyUsage)); err != nil {
			writeError(w, http.StatusBadRequest, requestID, "invalid key usage: "+err.Error())
			return
		}
	}

	der, err := csr.DER()
	if err != nil {
		writeError(w, http.StatusInternalServerError, requestID, "failed to assemble CSR: "+err.Error())
		return
	}

	slog.Info("csr assembled",
		"request_id", requestID,
		"subject", req.Subject,
		"der_len", len(der),
	)

	resp := CSRResponse{
		CSRPEM:    string(pemutil.Encode(pemutil.BannerCertificateRequest, der)),
		RequestID: requestID,
	}
	writeJSON(w, http.StatusOK, resp)
}
