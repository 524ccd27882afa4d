// Package httpapi provides HTTP handlers for issuing PKCS#10 certificate
// signing requests and X.509 v3 certificates over JSON.
//
// @title certforge API
// @version 1.0
// @description HTTP API for assembling DER-encoded CSRs and certificates
// @description from JSON requests, signed with an RSA key supplied by
// @description the caller.
// @description
// @description Supports:
// @description - PKCS#10 CertificationRequest assembly
// @description - X.509 v3 Certificate assembly
// @description - BasicConstraints / KeyUsage / NsCertType extensions
//
// @contact.name API Support
//
// @license.name MIT
//
// @host localhost:8080
// @BasePath /
// @schemes http https
//
// @tag.name Health
// @tag.description Health check endpoints
//
// @tag.name CSR
// @tag.description Assemble PKCS#10 certificate signing requests
//
// @tag.name Certificate
// @tag.description Assemble X.509 v3 certificates
package httpapi
