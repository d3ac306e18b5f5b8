package auth

import (
	"encoding/json"
	"testing"
	"time"

	"chat-relay/domain"
	"chat-relay/errors"

	"github.com/benbjohnson/clock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret-with-enough-entropy-2026")

func TestTokenService_ValidUntilExpiry(t *testing.T) {
	req := require.New(t)
	clk := clock.NewMock()
	clk.Set(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
	tokens := NewTokenService(testSecret, time.Hour, clk)

	token, err := tokens.Issue(domain.Identity{ID: 42, Username: "alice"})
	req.NoError(err)

	// Given 59 minutes elapsed, the token is still accepted
	clk.Add(59 * time.Minute)
	userID, err := tokens.Verify(token)
	req.NoError(err)
	req.Equal(int64(42), userID)

	// When 61 minutes elapsed, the token is expired
	clk.Add(2 * time.Minute)
	_, err = tokens.Verify(token)
	req.ErrorIs(err, errors.ErrTokenExpired)
}

func TestTokenService_Malformed(t *testing.T) {
	clk := clock.NewMock()
	tokens := NewTokenService(testSecret, time.Hour, clk)
	foreign, err := NewTokenService([]byte("another-secret"), time.Hour, clk).Issue(domain.Identity{ID: 1})
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"userId": 1, "exp": clk.Now().Add(time.Hour).Unix()})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"empty", ""},
		{"wrong signature", foreign},
		{"none algorithm", unsigned},
		{"fractional user id", signRaw(t, jwt.MapClaims{"userId": 7.5, "exp": clk.Now().Add(time.Hour).Unix()})},
		{"textual user id", signRaw(t, jwt.MapClaims{"userId": "seven", "exp": clk.Now().Add(time.Hour).Unix()})},
		{"missing expiry", signRaw(t, jwt.MapClaims{"userId": 7})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tokens.Verify(tt.token)
			require.ErrorIs(t, err, errors.ErrTokenMalformed)
		})
	}
}

func TestTokenService_AcceptsStringAndFloatUserID(t *testing.T) {
	req := require.New(t)
	clk := clock.NewMock()
	tokens := NewTokenService(testSecret, time.Hour, clk)
	exp := clk.Now().Add(time.Hour).Unix()

	userID, err := tokens.Verify(signRaw(t, jwt.MapClaims{"userId": "7", "exp": exp}))
	req.NoError(err)
	req.Equal(int64(7), userID)

	userID, err = tokens.Verify(signRaw(t, jwt.MapClaims{"userId": 8.0, "exp": exp}))
	req.NoError(err)
	req.Equal(int64(8), userID)
}

func TestUserID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{`7`, 7, false},
		{`7.0`, 7, false},
		{`7e0`, 7, false},
		{`"7"`, 7, false},
		{`-3`, -3, false},
		{`7.5`, 0, true},
		{`"7.0"`, 0, true},
		{`1e19`, 0, true},
		{`9007199254740991.0`, 9007199254740991, false},
		{`-9007199254740991.0`, -9007199254740991, false},
		{`9007199254740992.0`, 0, true},
		{`9007199254740993.0`, 0, true},
		{`9007199254740993`, 9007199254740993, false},
		{`"9007199254740993"`, 9007199254740993, false},
		{`null`, 0, true},
		{`true`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			req := require.New(t)
			var id UserID
			err := json.Unmarshal([]byte(tt.raw), &id)
			if tt.wantErr {
				req.Error(err)
				return
			}
			req.NoError(err)
			req.Equal(tt.want, int64(id))
		})
	}
}

func signRaw(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)
	return signed
}
