package storage

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestEncryptDecryptData(t *testing.T) {
	tests := []struct {
		name      string
		plaintext string
	}{
		{name: "simple text", plaintext: "#created by DeckOps\n#main\n14558127\n"},
		{name: "empty", plaintext: ""},
		{name: "large", plaintext: string(make([]byte, 10000))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sealed, err := EncryptData([]byte(tt.plaintext), "secret")
			if err != nil {
				t.Fatalf("EncryptData() error = %v", err)
			}
			if len(tt.plaintext) > 0 && bytes.Contains(sealed, []byte(tt.plaintext)) {
				t.Error("sealed data contains the plaintext")
			}

			opened, err := DecryptData(sealed, "secret")
			if err != nil {
				t.Fatalf("DecryptData() error = %v", err)
			}
			if string(opened) != tt.plaintext {
				t.Errorf("DecryptData() = %q, want %q", opened, tt.plaintext)
			}
		})
	}
}

func TestEncryptData_FreshSaltEachTime(t *testing.T) {
	a, err := EncryptData([]byte("deck"), "secret")
	if err != nil {
		t.Fatal(err)
	}
	b, err := EncryptData([]byte("deck"), "secret")
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(a, b) {
		t.Error("two encryptions of the same data should differ")
	}
}

func TestDecryptData_Failures(t *testing.T) {
	sealed, err := EncryptData([]byte("deck"), "secret")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := DecryptData(sealed, "wrong"); !errors.Is(err, ErrDecryptFailed) {
		t.Errorf("wrong password error = %v, want ErrDecryptFailed", err)
	}

	tampered := append([]byte(nil), sealed...)
	tampered[len(tampered)-1] ^= 0xFF
	if _, err := DecryptData(tampered, "secret"); !errors.Is(err, ErrDecryptFailed) {
		t.Errorf("tampered data error = %v, want ErrDecryptFailed", err)
	}

	if _, err := DecryptData(sealed[:10], "secret"); !errors.Is(err, ErrDecryptFailed) {
		t.Errorf("short data error = %v, want ErrDecryptFailed", err)
	}

	if _, err := EncryptData([]byte("deck"), ""); !errors.Is(err, ErrPasswordRequired) {
		t.Errorf("empty password error = %v, want ErrPasswordRequired", err)
	}
}

func TestEncryptFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "plain.db")
	enc := filepath.Join(dir, "plain.db.enc")
	out := filepath.Join(dir, "restored.db")

	if err := os.WriteFile(src, []byte("sqlite bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := encryptFile(src, enc, "secret"); err != nil {
		t.Fatalf("encryptFile() error = %v", err)
	}

	for path, want := range map[string]bool{src: false, enc: true} {
		got, err := IsEncrypted(path)
		if err != nil || got != want {
			t.Errorf("IsEncrypted(%s) = %v, %v; want %v", filepath.Base(path), got, err, want)
		}
	}

	if err := decryptFile(enc, out, "secret"); err != nil {
		t.Fatalf("decryptFile() error = %v", err)
	}
	data, _ := os.ReadFile(out)
	if string(data) != "sqlite bytes" {
		t.Errorf("decrypted = %q", data)
	}

	if err := decryptFile(src, out, "secret"); err == nil {
		t.Error("decrypting a plain file should fail")
	}
}
