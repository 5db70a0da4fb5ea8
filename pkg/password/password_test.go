package password_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotlist/slotlist-backend-sub000/pkg/password"
)

func TestHashAndVerify(t *testing.T) {
	t.Parallel()

	hash, err := password.Hash("correct horse battery staple")
	require.NoError(t, err)

	assert.NoError(t, password.Verify(hash, "correct horse battery staple"))
	assert.ErrorIs(t, password.Verify(hash, "wrong password"), password.ErrMismatch)
	assert.ErrorIs(t, password.Verify([]byte("not-a-hash"), "whatever"), password.ErrMismatch)
}

func TestHash_LengthLimits(t *testing.T) {
	t.Parallel()

	_, err := password.Hash("short")
	assert.ErrorIs(t, err, password.ErrTooShort)

	long := make([]byte, password.MaxLength+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err = password.Hash(string(long))
	assert.ErrorIs(t, err, password.ErrTooLong)
}
