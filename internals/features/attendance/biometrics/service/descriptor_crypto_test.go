package service

import (
	"errors"
	"math"
	"testing"
)

func testDescriptor() []float64 {
	d := make([]float64, DescriptorLength)
	for i := range d {
		d[i] = math.Sin(float64(i)) * 0.5
	}
	return d
}

func TestNewDescriptorCryptoRequiresMasterKey(t *testing.T) {
	if _, err := NewDescriptorCrypto("", 1); !errors.Is(err, ErrMissingMasterKey) {
		t.Fatalf("expected ErrMissingMasterKey, got %v", err)
	}
}

func TestDescriptorCryptoRoundtrip(t *testing.T) {
	dc, err := NewDescriptorCrypto("super-secret-master-key", 3)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	original := testDescriptor()
	blob, keyID, err := dc.Encrypt(original)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if keyID != 3 {
		t.Fatalf("keyID = %d, want 3", keyID)
	}
	if blob == "" {
		t.Fatal("blob kosong")
	}

	decrypted, err := dc.Decrypt(blob, keyID)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if len(decrypted) != len(original) {
		t.Fatalf("length = %d, want %d", len(decrypted), len(original))
	}
	for i := range original {
		if decrypted[i] != original[i] {
			t.Fatalf("element %d: got %v, want %v", i, decrypted[i], original[i])
		}
	}
}

func TestDescriptorCryptoWrongKeyIDFails(t *testing.T) {
	dc, _ := NewDescriptorCrypto("super-secret-master-key", 1)

	blob, _, err := dc.Encrypt(testDescriptor())
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	if _, err := dc.Decrypt(blob, 2); !errors.Is(err, ErrDecryptionFailure) {
		t.Fatalf("expected ErrDecryptionFailure for wrong key id, got %v", err)
	}
}

func TestDescriptorCryptoTamperedBlobFails(t *testing.T) {
	dc, _ := NewDescriptorCrypto("super-secret-master-key", 1)

	blob, keyID, err := dc.Encrypt(testDescriptor())
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	tests := []struct {
		name string
		blob string
	}{
		{"not base64", "!!!not-base64!!!"},
		{"truncated", blob[:8]},
		{"flipped tail", blob[:len(blob)-4] + "AAAA"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := dc.Decrypt(tt.blob, keyID); !errors.Is(err, ErrDecryptionFailure) {
				t.Fatalf("expected ErrDecryptionFailure, got %v", err)
			}
		})
	}
}

func TestDescriptorCryptoDefaultsKeyID(t *testing.T) {
	dc, err := NewDescriptorCrypto("key", 0)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if dc.CurrentKeyID != 1 {
		t.Fatalf("CurrentKeyID = %d, want 1", dc.CurrentKeyID)
	}
}
