package lockcrypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/EternisAI/lockfleet/internal/failure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "4f1c2a9e8b7d6c5a4f1c2a9e8b7d6c5a"

var testPlainKey = []byte("0123456789abcdef")

func sealedTicketKey(t *testing.T) []byte {
	t.Helper()
	sealed, err := SealTicketKey(testPlainKey, testSecret)
	require.NoError(t, err)
	raw, err := DecodeTicketKey(sealed)
	require.NoError(t, err)
	return raw
}

func TestDeriveKeyRecoversTicketKey(t *testing.T) {
	key, err := DeriveKey(sealedTicketKey(t), testSecret)
	require.NoError(t, err)
	assert.Equal(t, testPlainKey, key[:])
}

func TestDeriveKeyDeterministic(t *testing.T) {
	enc := sealedTicketKey(t)

	first, err := DeriveKey(enc, testSecret)
	require.NoError(t, err)
	second, err := DeriveKey(enc, testSecret)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDeriveKeyTruncatesLongPlaintext(t *testing.T) {
	long := []byte("0123456789abcdef0123456789abcdef")
	sealed, err := SealTicketKey(long, testSecret)
	require.NoError(t, err)
	raw, err := DecodeTicketKey(sealed)
	require.NoError(t, err)

	key, err := DeriveKey(raw, testSecret)
	require.NoError(t, err)
	assert.Equal(t, long[:KeySize], key[:])
}

func TestDeriveKeyRejectsShortPlaintext(t *testing.T) {
	sealed, err := SealTicketKey([]byte("short"), testSecret)
	require.NoError(t, err)
	raw, err := DecodeTicketKey(sealed)
	require.NoError(t, err)

	_, err = DeriveKey(raw, testSecret)
	assert.ErrorIs(t, err, failure.ErrCrypto)
}

func TestDeriveKeyWrongSecret(t *testing.T) {
	// A wrong secret either fails padding or yields a different key; it never
	// yields the original key.
	key, err := DeriveKey(sealedTicketKey(t), "another-secret")
	if err != nil {
		assert.ErrorIs(t, err, failure.ErrCrypto)
		return
	}
	assert.NotEqual(t, testPlainKey, key[:])
}

func TestDeriveKeyRejectsBadInput(t *testing.T) {
	_, err := DeriveKey([]byte{1, 2, 3}, testSecret)
	assert.ErrorIs(t, err, failure.ErrCrypto)

	_, err = DeriveKey(nil, testSecret)
	assert.ErrorIs(t, err, failure.ErrCrypto)

	_, err = DeriveKey(sealedTicketKey(t), "")
	assert.ErrorIs(t, err, failure.ErrCrypto)
}

func TestDecodeTicketKeyMalformedHex(t *testing.T) {
	_, err := DecodeTicketKey("zz11")
	assert.ErrorIs(t, err, failure.ErrCrypto)

	_, err = DecodeTicketKey("")
	assert.ErrorIs(t, err, failure.ErrCrypto)
}

func TestEncryptCodeRoundTrip(t *testing.T) {
	var key DerivedKey
	copy(key[:], testPlainKey)

	out, err := EncryptCode("1234567", key)
	require.NoError(t, err)
	assert.Len(t, out, 2*aes.BlockSize)
	assert.Equal(t, strings.ToUpper(out), out)

	plain, err := DecryptCode(out, key)
	require.NoError(t, err)
	assert.Equal(t, "1234567", plain)
}

func TestEncryptCodeMatchesDeclaredConfiguration(t *testing.T) {
	var key DerivedKey
	copy(key[:], testPlainKey)

	got, err := EncryptCode("1234567", key)
	require.NoError(t, err)

	// Independent rendition: AES-128-CBC, iv = key, PKCS#7 to one block.
	block, err := aes.NewCipher(testPlainKey)
	require.NoError(t, err)
	in := append([]byte("1234567"), 9, 9, 9, 9, 9, 9, 9, 9, 9)
	want := make([]byte, len(in))
	cipher.NewCBCEncrypter(block, testPlainKey).CryptBlocks(want, in)

	assert.Equal(t, strings.ToUpper(hex.EncodeToString(want)), got)

	again, err := EncryptCode("1234567", key)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestEncryptCodeRejectsWrongLength(t *testing.T) {
	var key DerivedKey
	for _, code := range []string{"", "123456", "12345678", "123456é"} {
		_, err := EncryptCode(code, key)
		assert.ErrorIs(t, err, failure.ErrValidation, "code %q", code)
	}
}

func TestValidateCodeReportsByteLength(t *testing.T) {
	// Seven characters, eight bytes.
	err := ValidateCode("123456é")
	require.Error(t, err)
	assert.Equal(t, "access code must be exactly 7 bytes, got 8", failure.Message(err))
}

// Fixed vectors for aes128-cbc-md5/v1. A change to any step of the protocol
// must break these and ship under a new Protocol value.
const (
	vectorSealedTicketKey = "cb08ee0f914017cbc275ab99c0b5ca8492e68a50ca8a25c1b537736ee9091eb6"
	vectorCode            = "1234567"
	vectorCodeCipher      = "6D588E3F5C136DBD5FA174FB63DB7948"
)

func TestKnownAnswerVectors(t *testing.T) {
	require.Equal(t, "aes128-cbc-md5/v1", Protocol)

	raw, err := DecodeTicketKey(vectorSealedTicketKey)
	require.NoError(t, err)
	key, err := DeriveKey(raw, testSecret)
	require.NoError(t, err)
	assert.Equal(t, testPlainKey, key[:])

	sealed, err := SealTicketKey(testPlainKey, testSecret)
	require.NoError(t, err)
	assert.Equal(t, vectorSealedTicketKey, sealed)

	got, err := EncryptCode(vectorCode, key)
	require.NoError(t, err)
	assert.Equal(t, vectorCodeCipher, got)

	plain, err := DecryptCode(vectorCodeCipher, key)
	require.NoError(t, err)
	assert.Equal(t, vectorCode, plain)
}

func TestSealTicketKeyUsesMD5Master(t *testing.T) {
	sealed, err := SealTicketKey(testPlainKey, testSecret)
	require.NoError(t, err)

	master := md5.Sum([]byte(testSecret))
	block, err := aes.NewCipher(master[:])
	require.NoError(t, err)
	raw, err := hex.DecodeString(sealed)
	require.NoError(t, err)
	out := make([]byte, len(raw))
	cipher.NewCBCDecrypter(block, master[:]).CryptBlocks(out, raw)

	assert.Equal(t, testPlainKey, out[:KeySize])
}

func TestWipe(t *testing.T) {
	var key DerivedKey
	copy(key[:], testPlainKey)
	key.Wipe()
	assert.Equal(t, DerivedKey{}, key)
}

func TestDecryptCodeMalformed(t *testing.T) {
	var key DerivedKey
	_, err := DecryptCode("not-hex", key)
	assert.ErrorIs(t, err, failure.ErrCrypto)
}
