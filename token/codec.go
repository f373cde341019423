package token

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jzahidzamacona/Fronty-sub001/internal/errors"
	"github.com/jzahidzamacona/Fronty-sub001/internal/utils"
)

var (
	ErrDecode  = apperrors.ErrDecode
	ErrExpired = apperrors.ErrExpired
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Payloads are base64url, but some issuers emit the standard alphabet.
var toURLAlphabet = strings.NewReplacer("+", "-", "/", "_")

var segmentParser = jwtlib.NewParser(jwtlib.WithPaddingAllowed())

// Decode reads the payload segment of raw and resolves its claims. It fails
// with ErrDecode when raw has fewer than two dot-separated segments or the
// payload is not base64url-encoded JSON object text.
func Decode(raw string) (*Claims, error) {
	parts := strings.Split(strings.TrimSpace(raw), ".")
	if len(parts) < 2 {
		return nil, fmt.Errorf("%w: expected at least 2 segments, got %d", ErrDecode, len(parts))
	}

	payload, err := segmentParser.DecodeSegment(toURLAlphabet.Replace(parts[1]))
	if err != nil {
		return nil, fmt.Errorf("%w: payload is not base64url: %v", ErrDecode, err)
	}

	var mc jwtlib.MapClaims
	if err := json.Unmarshal(payload, &mc); err != nil {
		return nil, fmt.Errorf("%w: payload is not a JSON object: %v", ErrDecode, err)
	}
	if mc == nil {
		return nil, fmt.Errorf("%w: empty payload", ErrDecode)
	}

	return fromMapClaims(mc)
}

// Validate decodes raw and rejects it with ErrExpired when its expiry has
// passed at NowTimeFunc.
func Validate(raw string) (*Claims, error) {
	claims, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	if IsExpired(claims, NowTimeFunc()) {
		return nil, ErrExpired
	}
	return claims, nil
}

func fromMapClaims(mc jwtlib.MapClaims) (*Claims, error) {
	// type check only; NumericDate truncates fractional seconds
	if _, err := mc.GetExpirationTime(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	sub, _ := mc["sub"].(string)

	claims := &Claims{
		Subject:  sub,
		Username: firstString(mc, "username", "preferred_username"),
		Roles:    ExtractRoles(mc),
		Raw:      mc,
	}
	if exp, ok := utils.Float64(mc["exp"]); ok {
		claims.ExpiresAtMillis = utils.Ptr(int64(math.Floor(exp * 1000)))
	}
	for _, key := range []string{"employeeId", "employee_id"} {
		if id, ok := utils.Int64(mc[key]); ok {
			claims.EmployeeID = utils.Ptr(id)
			break
		}
	}

	return claims, nil
}

func firstString(mc jwtlib.MapClaims, keys ...string) string {
	for _, key := range keys {
		if s, ok := mc[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
