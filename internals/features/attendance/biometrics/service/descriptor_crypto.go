package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/bytedance/sonic"
	"golang.org/x/crypto/hkdf"
)

var (
	ErrMissingMasterKey  = errors.New("master key biometrik belum dikonfigurasi")
	ErrDecryptionFailure = errors.New("descriptor tidak bisa didekripsi")
)

// DescriptorCrypto mengenkripsi descriptor wajah at-rest dengan AES-GCM.
// Kunci diturunkan per versi (encryption_key_id) dari master key via HKDF,
// jadi rotasi kunci tidak perlu re-encrypt baris lama.
type DescriptorCrypto struct {
	masterKey    []byte
	CurrentKeyID int
}

func NewDescriptorCrypto(masterKey string, currentKeyID int) (*DescriptorCrypto, error) {
	if masterKey == "" {
		return nil, ErrMissingMasterKey
	}
	if currentKeyID <= 0 {
		currentKeyID = 1
	}
	return &DescriptorCrypto{
		masterKey:    []byte(masterKey),
		CurrentKeyID: currentKeyID,
	}, nil
}

func (dc *DescriptorCrypto) deriveKey(keyID int) ([]byte, error) {
	info := fmt.Sprintf("presensiku/face-descriptor/v%d", keyID)
	r := hkdf.New(sha256.New, dc.masterKey, nil, []byte(info))
	key := make([]byte, 32)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return key, nil
}

// Encrypt: descriptor → JSON → AES-GCM → base64. Mengembalikan blob + key id
// yang dipakai, untuk disimpan berdampingan di kolom terpisah.
func (dc *DescriptorCrypto) Encrypt(descriptor []float64) (string, int, error) {
	plaintext, err := sonic.Marshal(descriptor)
	if err != nil {
		return "", 0, err
	}

	key, err := dc.deriveKey(dc.CurrentKeyID)
	if err != nil {
		return "", 0, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", 0, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", 0, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", 0, err
	}

	sealed := gcm.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), dc.CurrentKeyID, nil
}

// Decrypt: gagal apapun sebabnya (blob korup, key id salah) → ErrDecryptionFailure.
// Pesan error TIDAK membawa ciphertext ataupun material kunci.
func (dc *DescriptorCrypto) Decrypt(blob string, keyID int) ([]float64, error) {
	sealed, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, ErrDecryptionFailure
	}

	key, err := dc.deriveKey(keyID)
	if err != nil {
		return nil, ErrDecryptionFailure
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, ErrDecryptionFailure
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, ErrDecryptionFailure
	}

	if len(sealed) < gcm.NonceSize() {
		return nil, ErrDecryptionFailure
	}
	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailure
	}

	var descriptor []float64
	if err := sonic.Unmarshal(plaintext, &descriptor); err != nil {
		return nil, ErrDecryptionFailure
	}
	return descriptor, nil
}
