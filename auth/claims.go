package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims is the payload of an identity token.
// Subject carries the username.
type CustomClaims struct {
	UserID UserID `json:"userId"`
	jwt.RegisteredClaims
}

// UserID is the numeric identity carried by a token. Some issuers encode it
// as a float or a decimal string, so decoding accepts all three as long as the
// value is an integral int64. Floats are only trusted below 2^53: from there on
// neighbouring integers round to the same float.
type UserID int64

const maxExactFloat = 1 << 53

func (u UserID) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(u), 10)), nil
}

func (u *UserID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return fmt.Errorf("userId is missing")
	}
	raw := string(b)
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("userId %q is not a decimal integer", s)
		}
		*u = UserID(id)
		return nil
	}
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*u = UserID(id)
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("userId %s is not a number", raw)
	}
	if f != math.Trunc(f) {
		return fmt.Errorf("userId %s is not an integral number", raw)
	}
	if math.Abs(f) >= maxExactFloat {
		return fmt.Errorf("userId %s cannot be represented exactly", raw)
	}
	*u = UserID(int64(f))
	return nil
}
