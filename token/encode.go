package token

import jwtlib "github.com/golang-jwt/jwt/v5"

// Encode mints an unsigned token carrying claims. Nothing in this module
// verifies signatures, so fixtures and the offline demo session use it.
func Encode(claims map[string]any) (string, error) {
	return jwtlib.NewWithClaims(jwtlib.SigningMethodNone, jwtlib.MapClaims(claims)).
		SignedString(jwtlib.UnsafeAllowNoneSignatureType)
}
