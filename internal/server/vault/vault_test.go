package vault

import (
	"os"
	"path/filepath"
	"testing"

	cryptohelper "fundingintake/internal/shared/crypto"
)

func TestGenerateSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "card.key")

	if Exists(path) {
		t.Fatalf("key should not exist")
	}
	key, err := Generate(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(key) != cryptohelper.KeyLength {
		t.Fatalf("len: %d", len(key))
	}
	if !Exists(path) {
		t.Fatalf("key must exist after generate")
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("perm: %v", info.Mode().Perm())
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(loaded) != string(key) {
		t.Fatalf("loaded key differs")
	}
	if _, err := Generate(path); err == nil {
		t.Fatalf("generate must not overwrite an existing key")
	}
}

func TestLoadOrGenerate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "card.key")
	first, created, err := LoadOrGenerate(path)
	if err != nil || !created {
		t.Fatalf("first call: created=%v err=%v", created, err)
	}
	second, created, err := LoadOrGenerate(path)
	if err != nil || created {
		t.Fatalf("second call: created=%v err=%v", created, err)
	}
	if string(first) != string(second) {
		t.Fatalf("key changed between calls")
	}
}

func TestLoad_InvalidLength(t *testing.T) {
	path := filepath.Join(t.TempDir(), "card.key")
	if err := Save(path, []byte("short")); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadOrGenerate(path); err == nil {
		t.Fatalf("want error for invalid key length")
	}
}
