package checksum

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseWithPrefix(t *testing.T) {
	value, ht := Parse("sha256:abc123")
	if value != "abc123" || ht != HashTypeSHA256 {
		t.Errorf("got %s %s", value, ht)
	}
}

func TestParseByLength(t *testing.T) {
	hex32 := "00000000000000000000000000000000"[:32]
	_, ht := Parse(hex32)
	if ht != HashTypeMD5 {
		t.Errorf("expected md5 by length, got %s", ht)
	}
}

func TestVerifyRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "artifact.bin")
	if err := os.WriteFile(path, []byte("hello vx"), 0o644); err != nil {
		t.Fatal(err)
	}
	digest, err := OfFile(path, HashTypeSHA256)
	if err != nil {
		t.Fatal(err)
	}
	ok, actual, err := Verify(path, Format(digest, HashTypeSHA256))
	if err != nil {
		t.Fatal(err)
	}
	if !ok || actual != digest {
		t.Errorf("expected match, got ok=%v actual=%s", ok, actual)
	}
}

func TestVerifyMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "artifact.bin")
	if err := os.WriteFile(path, []byte("hello vx"), 0o644); err != nil {
		t.Fatal(err)
	}
	ok, _, err := Verify(path, Format("0000000000000000000000000000000000000000000000000000000000000000", HashTypeSHA256))
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected mismatch")
	}
}

func TestParseChecksumFileGoreleaserFormat(t *testing.T) {
	content := "abc123  tool_1.0.0_linux_amd64.tar.gz\ndef456  tool_1.0.0_darwin_arm64.tar.gz\n"
	value, ht, err := ParseChecksumFile(content, "tool_1.0.0_linux_amd64.tar.gz")
	if err != nil {
		t.Fatal(err)
	}
	if value != "abc123" || ht != HashTypeSHA256 {
		t.Errorf("got %s %s", value, ht)
	}
}

func TestParseChecksumFileNotFound(t *testing.T) {
	_, _, err := ParseChecksumFile("abc123 other.tar.gz", "missing.tar.gz")
	if err == nil {
		t.Fatal("expected error")
	}
}
