package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type payload struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func TestSealOpen_RoundTrip(t *testing.T) {
	key := DeriveStorageKey([]byte("device-secret"), []byte("salt-salt-salt-16"))
	require.Len(t, key, 32)

	in := payload{Access: "a", Refresh: "r"}
	ct, nonce, err := Seal(in, key)
	require.NoError(t, err)
	require.NotEmpty(t, ct)
	require.Len(t, nonce, 12)

	var out payload
	require.NoError(t, Open(ct, nonce, key, &out))
	require.Equal(t, in, out)
}

func TestOpen_WrongKey(t *testing.T) {
	key := DeriveStorageKey([]byte("secret"), []byte("salt"))
	other := DeriveStorageKey([]byte("other"), []byte("salt"))

	ct, nonce, err := Seal(payload{Access: "a"}, key)
	require.NoError(t, err)

	var out payload
	require.Error(t, Open(ct, nonce, other, &out))
}

func TestDeriveStorageKey_Deterministic(t *testing.T) {
	k1 := DeriveStorageKey([]byte("s"), []byte("salt"))
	k2 := DeriveStorageKey([]byte("s"), []byte("salt"))
	k3 := DeriveStorageKey([]byte("s"), []byte("other"))
	require.Equal(t, k1, k2)
	require.NotEqual(t, k1, k3)
}

func TestSeal_InvalidKeyLength(t *testing.T) {
	_, _, err := Seal(payload{}, []byte("short"))
	require.Error(t, err)
}
