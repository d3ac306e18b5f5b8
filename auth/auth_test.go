package auth

import (
	"strings"
	"testing"

	"chat-relay/errors"

	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	req := require.New(t)
	password := "MonMotDePasseTr0pSûr!"

	hash, err := HashPassword(password)
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	match, err := ComparePassword(password, hash)
	req.NoError(err)
	req.True(match)

	match, err = ComparePassword("MauvaisMDP", hash)
	req.NoError(err)
	req.False(match)
}

func TestComparePassword_MalformedHash(t *testing.T) {
	req := require.New(t)

	_, err := ComparePassword("whatever", "plain-text")
	req.ErrorIs(err, errors.ErrInvalidInput)

	_, err = ComparePassword("whatever", "$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA")
	req.ErrorIs(err, errors.ErrInvalidInput)
}

func TestRegistrationValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr error
	}{
		{"Valid request", RegisterRequest{"alice", "test@example.com", "ComplexPass123!"}, nil},
		{"Invalid email", RegisterRequest{"alice", "notanemail", "ComplexPass123!"}, errors.ErrInvalidInput},
		{"Username with slash", RegisterRequest{"al/ice", "test@example.com", "ComplexPass123!"}, errors.ErrInvalidInput},
		{"Username with space", RegisterRequest{"al ice", "test@example.com", "ComplexPass123!"}, errors.ErrInvalidInput},
		{"Missing username", RegisterRequest{"", "test@example.com", "ComplexPass123!"}, errors.ErrInvalidInput},
		{"Password too short", RegisterRequest{"alice", "test@example.com", "Short1!"}, errors.ErrInvalidInput},
		{"Missing digit", RegisterRequest{"alice", "test@example.com", "NoDigitPass!"}, errors.ErrInvalidPassword},
		{"Missing special char", RegisterRequest{"alice", "test@example.com", "NoSpecialChar123"}, errors.ErrInvalidPassword},
		{"Missing uppercase", RegisterRequest{"alice", "test@example.com", "nouppercase123!"}, errors.ErrInvalidPassword},
		{"Password too long", RegisterRequest{"alice", "test@example.com", strings.Repeat("a", 73)}, errors.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			err := ValidateRegister(tt.req)
			if tt.wantErr == nil {
				req.NoError(err)
				return
			}
			req.ErrorIs(err, tt.wantErr)
			req.ErrorIs(err, errors.ErrValidation)
		})
	}
}

func BenchmarkHashPassword(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = HashPassword("A-very-long-and-complex-password-for-bench-123!")
	}
}
