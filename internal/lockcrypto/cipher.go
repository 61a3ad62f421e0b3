// Package lockcrypto implements the ticket key derivation and access code
// encryption used when provisioning lock credentials.
//
// Protocol aes128-cbc-md5/v1:
//
//	master  = MD5(service secret)                      16 bytes
//	derived = AES-128-CBC-decrypt(key=master, iv=master, ticket_key), PKCS#7 removed,
//	          truncated to 16 bytes (shorter output is rejected)
//	code    = upper-hex(AES-128-CBC-encrypt(key=derived, iv=derived, PKCS#7(code)))
//
// Changing any part of this breaks every ticket issued but not yet consumed,
// so a change must ship as a new Protocol value.
package lockcrypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"encoding/hex"
	"strings"

	"github.com/EternisAI/lockfleet/internal/failure"
)

const (
	Protocol = "aes128-cbc-md5/v1"

	// CodeLength is the fixed access code width accepted by the lock hardware.
	CodeLength = 7

	KeySize = 16
)

// DerivedKey is the per-ticket symmetric key. It must not outlive the
// provisioning call that derived it.
type DerivedKey [KeySize]byte

// Wipe zeroes the key in place.
func (k *DerivedKey) Wipe() {
	for i := range k {
		k[i] = 0
	}
}

func masterKey(secret string) []byte {
	sum := md5.Sum([]byte(secret))
	return sum[:]
}

// DecodeTicketKey parses the hex ticket_key sent by the vendor.
func DecodeTicketKey(s string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, failure.Wrap(failure.KindCrypto, err, "ticket key is not valid hex")
	}
	if len(b) == 0 {
		return nil, failure.Crypto("ticket key is empty")
	}
	return b, nil
}

// DeriveKey decrypts the ticket's encrypted key with the service secret.
func DeriveKey(encryptedKey []byte, secret string) (DerivedKey, error) {
	var key DerivedKey
	if secret == "" {
		return key, failure.Crypto("service secret is not configured")
	}
	master := masterKey(secret)
	plain, err := decryptCBC(encryptedKey, master, master)
	if err != nil {
		return key, err
	}
	defer wipe(plain)

	if len(plain) == 0 {
		return key, failure.Crypto("decrypted ticket key is empty")
	}
	if len(plain) < KeySize {
		return key, failure.Crypto("decrypted ticket key is %d bytes, want at least %d", len(plain), KeySize)
	}
	copy(key[:], plain[:KeySize])
	return key, nil
}

// ValidateCode checks the fixed width constraint. Width is counted in bytes,
// so a multi-byte character never fits where the lock expects one digit.
// Codes are never padded or truncated to fit.
func ValidateCode(code string) error {
	if len(code) != CodeLength {
		return failure.Validation("access code must be exactly %d bytes, got %d", CodeLength, len(code))
	}
	return nil
}

// EncryptCode encrypts an access code under key and returns upper-case hex.
func EncryptCode(code string, key DerivedKey) (string, error) {
	if err := ValidateCode(code); err != nil {
		return "", err
	}
	out, err := encryptCBC([]byte(code), key[:], key[:])
	if err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(out)), nil
}

// DecryptCode reverses EncryptCode.
func DecryptCode(cipherHex string, key DerivedKey) (string, error) {
	raw, err := hex.DecodeString(cipherHex)
	if err != nil {
		return "", failure.Wrap(failure.KindCrypto, err, "ciphertext is not valid hex")
	}
	plain, err := decryptCBC(raw, key[:], key[:])
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// SealTicketKey is the vendor side of DeriveKey: it encrypts a plain ticket key
// with the service secret and returns it hex encoded.
func SealTicketKey(plain []byte, secret string) (string, error) {
	if len(plain) == 0 {
		return "", failure.Crypto("ticket key is empty")
	}
	master := masterKey(secret)
	out, err := encryptCBC(plain, master, master)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(out), nil
}

func encryptCBC(plain, key, iv []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, failure.Wrap(failure.KindCrypto, err, "init cipher")
	}
	padded := pkcs7Pad(plain, aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)
	return out, nil
}

func decryptCBC(ciphertext, key, iv []byte) ([]byte, error) {
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, failure.Crypto("ciphertext length %d is not a positive multiple of %d", len(ciphertext), aes.BlockSize)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, failure.Wrap(failure.KindCrypto, err, "init cipher")
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, ciphertext)
	return pkcs7Unpad(out, aes.BlockSize)
}

func pkcs7Pad(b []byte, size int) []byte {
	n := size - len(b)%size
	return append(append(make([]byte, 0, len(b)+n), b...), bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(b []byte, size int) ([]byte, error) {
	if len(b) == 0 || len(b)%size != 0 {
		return nil, failure.Crypto("invalid padded length")
	}
	n := int(b[len(b)-1])
	if n == 0 || n > size || n > len(b) {
		return nil, failure.Crypto("invalid padding")
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, failure.Crypto("invalid padding")
		}
	}
	return b[:len(b)-n], nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
