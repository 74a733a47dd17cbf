package models

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_DestroyZeroesKeys(t *testing.T) {
	dek := bytes.Repeat([]byte{0x01}, 32)
	enc := bytes.Repeat([]byte{0x02}, 32)
	search := bytes.Repeat([]byte{0x03}, 32)

	s := NewSession(7, "alice", []byte("epoch"), dek, enc, search)
	require.True(t, s.Active())

	s.Destroy()

	assert.False(t, s.Active())
	assert.Nil(t, s.EncKey())
	assert.Nil(t, s.SearchKey())
	assert.Nil(t, s.DEK())
	assert.Equal(t, []byte("epoch"), s.KeyEpoch())
	// the original backing arrays must be wiped as well
	assert.Equal(t, make([]byte, 32), dek)
	assert.Equal(t, make([]byte, 32), enc)
	assert.Equal(t, make([]byte, 32), search)

	// second call and nil receiver are no-ops
	s.Destroy()
	var nilSession *Session
	nilSession.Destroy()
	assert.False(t, nilSession.Active())
}

func TestSession_StringDoesNotLeakKeys(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	s := NewSession(1, "alice", nil, key, key, key)

	out := fmt.Sprintf("%v %s %+v", s, s, s)
	assert.Contains(t, out, "alice")
	assert.NotContains(t, out, string(key))
}

func TestSession_MarshalZerologObject(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	s := NewSession(42, "bob", nil, key, key, key)

	var buf bytes.Buffer
	log := zerolog.New(&buf)
	log.Info().Object("session", s).Msg("test")

	assert.Contains(t, buf.String(), `"user_id":42`)
	assert.Contains(t, buf.String(), `"username":"bob"`)
	assert.NotContains(t, buf.String(), string(key))
}

func TestUser_CredentialsRoundTrip(t *testing.T) {
	u := User{UserID: 1, Username: "alice", SecurityQuestion: "pet?"}
	creds := UserCredentials{
		PasswordHash: "hash",
		KEKSalt:      []byte("salt"),
		WrappedDEK:   []byte("wrapped"),
		WrapNonce:    []byte("nonce"),
		KDFVersion:   1,
	}

	updated := u.WithCredentials(creds)

	assert.Equal(t, creds, updated.Credentials())
	assert.Equal(t, "pet?", updated.SecurityQuestion)
	assert.Empty(t, u.PasswordHash, "receiver must not be modified")
}

func TestAppBuildInfo_DefaultsToNA(t *testing.T) {
	info := NewAppBuildInfo("", "2026-01-01", "")

	assert.Equal(t, "N/A", info.BuildVersion())
	assert.Equal(t, "2026-01-01", info.BuildDate())
	assert.Equal(t, "N/A", info.BuildCommit())
	assert.Contains(t, info.String(), "Build date: 2026-01-01")
}
