// Package checksum verifies downloaded artifacts and discovers
// checksums published alongside them, adapted from the predecessor's
// pkg/checksum (hash-type detection, "type:value" parsing, goreleaser- and
// HashiCorp-style checksum-file formats) and retargeted at vx's
// RuntimeSpec/installation model instead of the predecessor's types.Resolution.
package checksum

import (
	"bufio"
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// HashType identifies a supported digest algorithm.
type HashType string

const (
	HashTypeMD5    HashType = "md5"
	HashTypeSHA1   HashType = "sha1"
	HashTypeSHA256 HashType = "sha256"
	HashTypeSHA384 HashType = "sha384"
	HashTypeSHA512 HashType = "sha512"
)

// DetectHashType guesses the algorithm from a "type:value" prefix, or, absent
// one, from the hex value's length.
func DetectHashType(checksum string) HashType {
	checksum = strings.TrimSpace(checksum)
	if idx := strings.Index(checksum, ":"); idx >= 0 {
		switch strings.ToLower(strings.TrimSpace(checksum[:idx])) {
		case "md5":
			return HashTypeMD5
		case "sha1":
			return HashTypeSHA1
		case "sha256":
			return HashTypeSHA256
		case "sha384":
			return HashTypeSHA384
		case "sha512":
			return HashTypeSHA512
		}
		checksum = checksum[idx+1:]
	}
	switch len(strings.TrimSpace(checksum)) {
	case 32:
		return HashTypeMD5
	case 40:
		return HashTypeSHA1
	case 96:
		return HashTypeSHA384
	case 128:
		return HashTypeSHA512
	default:
		return HashTypeSHA256
	}
}

// NewHasher creates the hash.Hash for a HashType.
func NewHasher(t HashType) (hash.Hash, error) {
	switch t {
	case HashTypeMD5:
		return md5.New(), nil
	case HashTypeSHA1:
		return sha1.New(), nil
	case HashTypeSHA256:
		return sha256.New(), nil
	case HashTypeSHA384:
		return sha512.New384(), nil
	case HashTypeSHA512:
		return sha512.New(), nil
	default:
		return nil, fmt.Errorf("unsupported hash type: %s", t)
	}
}

// Parse splits a checksum string into its value and type, guessing the type
// when no "type:" prefix is present.
func Parse(checksum string) (value string, hashType HashType) {
	checksum = strings.TrimSpace(checksum)
	if idx := strings.Index(checksum, ":"); idx >= 0 {
		return strings.TrimSpace(checksum[idx+1:]), DetectHashType(checksum)
	}
	return checksum, DetectHashType(checksum)
}

// Format renders value with its type prefix ("sha256:abcd...").
func Format(value string, hashType HashType) string {
	return fmt.Sprintf("%s:%s", hashType, value)
}

// OfFile computes the digest of the file at path using hashType.
func OfFile(path string, hashType HashType) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	hasher, err := NewHasher(hashType)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(hasher, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}

// Verify checks that the file at path matches expected ("type:value" or a
// bare hex value), returning a *vxerrors-compatible mismatch description via
// the caller (this package stays error-taxonomy-agnostic to avoid an import
// cycle with internal/vxerrors).
func Verify(path, expected string) (ok bool, actual string, err error) {
	value, hashType := Parse(expected)
	actual, err = OfFile(path, hashType)
	if err != nil {
		return false, "", err
	}
	return strings.EqualFold(actual, value), actual, nil
}

// checksumLinePattern matches "<hex> <filename>" / "<hex> *<filename>" lines
// common to goreleaser's checksums.txt and HashiCorp's SHA256SUMS.
var checksumLinePattern = regexp.MustCompile(`^([a-fA-F0-9]+)\s+\*?(.+)$`)

// ParseChecksumFile extracts the checksum for filename out of the text
// content of a downloaded checksums.txt/SHA256SUMS-style file.
func ParseChecksumFile(content, filename string) (value string, hashType HashType, err error) {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m := checksumLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		digest, file := m[1], m[2]
		if file == filename || strings.HasSuffix(file, "/"+filename) {
			return digest, hashTypeByLength(len(digest)), nil
		}
	}
	return "", "", fmt.Errorf("checksum for %q not found in checksum file", filename)
}

func hashTypeByLength(n int) HashType {
	switch n {
	case 32:
		return HashTypeMD5
	case 40:
		return HashTypeSHA1
	case 96:
		return HashTypeSHA384
	case 128:
		return HashTypeSHA512
	default:
		return HashTypeSHA256
	}
}

// FetchChecksumFile downloads a checksum file's contents for use with
// ParseChecksumFile.
func FetchChecksumFile(ctx context.Context, client *http.Client, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building checksum request for %s: %w", url, err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching checksum file %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("checksum file %s returned status %d", url, resp.StatusCode)
	}

	var sb strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		sb.WriteString(scanner.Text())
		sb.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading checksum file %s: %w", url, err)
	}
	return sb.String(), nil
}

// GoreleaserChecksumURL derives the conventional checksums.txt URL goreleaser
// publishes alongside a release asset, by replacing the asset's filename in
// downloadURL.
func GoreleaserChecksumURL(downloadURL, assetName string) string {
	base := strings.TrimSuffix(downloadURL, assetName)
	return base + "checksums.txt"
}

// HashiCorpChecksumURL derives the conventional "<product>_<version>_SHA256SUMS"
// URL HashiCorp releases publish alongside a release asset.
func HashiCorpChecksumURL(downloadURL, product, version string) string {
	base := strings.TrimSuffix(downloadURL, filepath.Base(downloadURL))
	return fmt.Sprintf("%s%s_%s_SHA256SUMS", base, product, version)
}
