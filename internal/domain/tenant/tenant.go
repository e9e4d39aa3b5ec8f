// Package tenant maps opaque API credentials onto stable tenant identifiers.
//
// The derivation is not an authentication scheme: any credential resolves to
// a tenant, and the same credential always resolves to the same tenant.
// Isolation between tenants is enforced downstream by tagging every index
// read and write with the resolved identifier.
package tenant

import (
	"crypto/sha256"
	"encoding/hex"
)

// Anonymous is the shared, unisolated namespace used when no credential is presented.
const Anonymous = "anonymous"

// idHexLen is the number of hex characters kept from the credential digest.
// 64 bits of SHA-256 output — collision-tolerant for this domain, not a security boundary.
const idHexLen = 16

// Resolve derives a stable tenant identifier from a credential.
// An empty credential resolves to the Anonymous tenant. Never fails.
func Resolve(credential string) string {
	if credential == "" {
		return Anonymous
	}
	sum := sha256.Sum256([]byte(credential))
	return "t_" + hex.EncodeToString(sum[:])[:idHexLen]
}
