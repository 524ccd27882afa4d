package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

// CSRRequest is the JSON request for /api/v1/csr.
// swagger:model
type CSRRequest struct {
	// Subject distinguished name, "CN=...,O=...,C=..."
	Subject string `json:"subject" example:"CN=leaf.example.com,O=Example Co"`
	// PEM-encoded PKCS#1 RSA private key; also signs the request
	PrivateKeyPEM string `json:"private_key_pem"`
	// Hash algorithm: SHA1, SHA256 (default), SHA384, SHA512
	Hash string `json:"hash,omitempty" example:"SHA256"`
	// Optional KeyUsage byte, e.g. 0xA0 for digitalSignature|keyEncipherment
	KeyUsage *int `json:"key_usage,omitempty"`
	// Whether the KeyUsage extension, if present, is marked critical
	KeyUsageCritical bool `json:"key_usage_critical,omitempty"`
}

// CSRResponse is the JSON response for /api/v1/csr.
// swagger:model
type CSRResponse struct {
	// PEM-encoded CertificationRequest
	CSRPEM string `json:"csr_pem"`
	// Correlation ID for this request
	RequestID string `json:"request_id"`
}

// CertificateRequest is the JSON request for /api/v1/certificate.
// swagger:model
type CertificateRequest struct {
	// Serial number, decimal or 0x-prefixed hex
	Serial string `json:"serial" example:"0x1"`
	// Subject distinguished name
	Subject string `json:"subject" example:"CN=leaf.example.com,O=Example Co"`
	// Issuer distinguished name
	Issuer string `json:"issuer" example:"CN=Test CA,O=Example Co"`
	// Validity start, "YYYYMMDDHHMMSS" or "YYYYMMDDHHMMSSZ"
	NotBefore string `json:"not_before" example:"20260101000000Z"`
	// Validity end, same format as not_before
	NotAfter string `json:"not_after" example:"20360101000000Z"`
	// Hash algorithm: SHA1, SHA256 (default), SHA384, SHA512
	Hash string `json:"hash,omitempty" example:"SHA256"`
	// PEM-encoded public key (PKIX "PUBLIC KEY" or PKCS#1 "RSA PUBLIC KEY") being certified
	SubjectKeyPEM string `json:"subject_key_pem"`
	// PEM-encoded PKCS#1 RSA private key of the issuer, signs the certificate
	IssuerKeyPEM string `json:"issuer_key_pem"`
	// Whether this certificate is a CA certificate
	IsCA bool `json:"is_ca,omitempty"`
	// BasicConstraints pathLenConstraint; negative omits the field
	PathLen int `json:"path_len,omitempty"`
	// Whether the BasicConstraints extension is marked critical
	BasicConstraintsCritical bool `json:"basic_constraints_critical,omitempty"`
	// Optional KeyUsage byte
	KeyUsage *int `json:"key_usage,omitempty"`
	// Whether the KeyUsage extension, if present, is marked critical
	KeyUsageCritical bool `json:"key_usage_critical,omitempty"`
	// Attach SubjectKeyIdentifier/AuthorityKeyIdentifier extensions
	IncludeKeyIdentifiers bool `json:"include_key_identifiers,omitempty"`
	// Email addresses to notify with the issued certificate, if an
	// SMTP relay has been configured on the server (see notify package)
	NotifyEmails []string `json:"notify_emails,omitempty"`
}

// CertificateResponse is the JSON response for /api/v1/certificate.
// swagger:model
type CertificateResponse struct {
	// PEM-encoded Certificate
	CertificatePEM string `json:"certificate_pem"`
	// Correlation ID for this request
	RequestID string `json:"request_id"`
}

// ErrorResponse is the JSON error response.
// swagger:model
type ErrorResponse struct {
	// Error message
	Error string `json:"error" example:"bad input data"`
	// Correlation ID for this request
	RequestID string `json:"request_id,omitempty"`
}

// HealthResponse is the JSON response for /health.
// swagger:model
type HealthResponse struct {
	// Service status
	Status string `json:"status" example:"ok"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, requestID, message string) {
	slog.Error("request error", "status", status, "request_id", requestID, "message", message)
	writeJSON(w, status, ErrorResponse{Error: message, RequestID: requestID})
}

func newRequestID() string {
	return uuid.New().String()
}
