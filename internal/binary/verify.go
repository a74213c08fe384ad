package binary

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
)

// Verifier checks downloaded archives against the release checksums file
type Verifier struct {
	keyring openpgp.EntityList
}

// NewVerifier creates a verifier. armoredKey is an optional OpenPGP public
// key; when set, the checksums file must carry a valid detached signature
// made by it. Binary (non-armored) keys are accepted as well.
func NewVerifier(armoredKey string) (*Verifier, error) {
	if strings.TrimSpace(armoredKey) == "" {
		return &Verifier{}, nil
	}

	keyring, err := readKeyring(armoredKey)
	if err != nil {
		return nil, err
	}

	return &Verifier{keyring: keyring}, nil
}

// HasKey reports whether signature verification is configured
func (v *Verifier) HasKey() bool {
	return len(v.keyring) > 0
}

// VerifyArchive verifies archivePath against the checksums file.
// With a key configured the checksums file signature is checked first; a
// missing or invalid signature fails verification without a fallback.
func (v *Verifier) VerifyArchive(archivePath, checksumPath, signaturePath, archiveName string) (*VerificationResult, error) {
	if checksumPath == "" {
		return nil, fmt.Errorf("checksum file required but not available")
	}

	method := VerificationSHA256
	if v.HasKey() {
		if signaturePath == "" {
			return nil, fmt.Errorf("signature required but not available")
		}

		result, err := v.verifyGPG(checksumPath, signaturePath)
		if err != nil {
			return result, fmt.Errorf("GPG verification failed: %w", err)
		}
		method = VerificationGPG
	}

	result, err := v.verifySHA256(archivePath, checksumPath, archiveName)
	if err != nil {
		return result, fmt.Errorf("SHA256 verification failed: %w", err)
	}

	result.Method = method
	return result, nil
}

// verifyGPG verifies a file using a detached signature
func (v *Verifier) verifyGPG(signedPath, signaturePath string) (*VerificationResult, error) {
	signedFile, err := os.Open(signedPath)
	if err != nil {
		return &VerificationResult{
			Method:  VerificationGPG,
			Success: false,
			Error:   fmt.Errorf("open signed file: %w", err),
		}, err
	}
	defer signedFile.Close()

	sigFile, err := os.Open(signaturePath)
	if err != nil {
		return &VerificationResult{
			Method:  VerificationGPG,
			Success: false,
			Error:   fmt.Errorf("open signature: %w", err),
		}, err
	}
	defer sigFile.Close()

	// Verify signature (try armored first)
	_, err = openpgp.CheckArmoredDetachedSignature(v.keyring, signedFile, sigFile, nil)
	if err != nil {
		// Try non-armored signature
		if _, seekErr := signedFile.Seek(0, io.SeekStart); seekErr != nil {
			return nil, seekErr
		}
		if _, seekErr := sigFile.Seek(0, io.SeekStart); seekErr != nil {
			return nil, seekErr
		}
		_, err = openpgp.CheckDetachedSignature(v.keyring, signedFile, sigFile, nil)
	}
	if err != nil {
		return &VerificationResult{
			Method:  VerificationGPG,
			Success: false,
			Error:   fmt.Errorf("verify signature: %w", err),
		}, err
	}

	return &VerificationResult{
		Method:  VerificationGPG,
		Success: true,
		Error:   nil,
	}, nil
}

// verifySHA256 verifies a file using SHA256 checksum
func (v *Verifier) verifySHA256(archivePath, checksumPath, archiveName string) (*VerificationResult, error) {
	actualChecksum, err := calculateSHA256(archivePath)
	if err != nil {
		return &VerificationResult{
			Method:  VerificationSHA256,
			Success: false,
			Error:   fmt.Errorf("calculate checksum: %w", err),
		}, err
	}

	// Downloads land under random names, so look up the release asset name
	expectedChecksum, err := findChecksum(checksumPath, archiveName)
	if err != nil {
		return &VerificationResult{
			Method:  VerificationSHA256,
			Success: false,
			Error:   fmt.Errorf("find checksum: %w", err),
		}, err
	}

	// Compare checksums (case-insensitive)
	if !strings.EqualFold(actualChecksum, expectedChecksum) {
		return &VerificationResult{
			Method:  VerificationSHA256,
			Success: false,
			Error: fmt.Errorf("checksum mismatch:\nactual:   %s\nexpected: %s",
				actualChecksum, expectedChecksum),
		}, fmt.Errorf("checksum mismatch")
	}

	return &VerificationResult{
		Method:  VerificationSHA256,
		Success: true,
		Error:   nil,
	}, nil
}

// readKeyring parses an OpenPGP public key
func readKeyring(key string) (openpgp.EntityList, error) {
	keyring, err := openpgp.ReadArmoredKeyRing(strings.NewReader(key))
	if err != nil {
		// Try reading as non-armored keyring
		keyring, err = openpgp.ReadKeyRing(strings.NewReader(key))
		if err != nil {
			return nil, fmt.Errorf("read keyring: %w", err)
		}
	}

	if len(keyring) == 0 {
		return nil, fmt.Errorf("keyring is empty")
	}

	return keyring, nil
}

// calculateSHA256 calculates the SHA256 checksum of a file
func calculateSHA256(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// findChecksum finds the checksum for a specific filename in a checksum file
// Format: "abc123def456  filename.tar.gz"
func findChecksum(checksumPath, filename string) (string, error) {
	file, err := os.Open(checksumPath)
	if err != nil {
		return "", fmt.Errorf("open checksum file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}

		// Check if this line is for our file
		// Use exact match first, then basename comparison for files with paths
		checksumFilename := parts[1]
		if checksumFilename == filename {
			return parts[0], nil
		}

		// Also check basename (for checksums like "/path/to/file.tar.gz")
		if filepath.Base(checksumFilename) == filename {
			return parts[0], nil
		}
	}

	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("scan checksum file: %w", err)
	}

	return "", fmt.Errorf("checksum not found for %s", filename)
}
