// Package token decodes the bearer tokens issued by the back-office API.
//
// Decoding is structural only: the payload segment is read and its claims
// resolved into a canonical [Claims] value. Signatures are never verified;
// the API remains the only party that trusts a token.
package token
