// Package trust computes a TrustScore for a (package, source) pair and
// verifies detached OpenPGP signatures over tap recipe files. A signer is
// identified by key fingerprint, imported from a keyserver on a local
// keyring cache miss, rather than by a key-file URL.
package trust

import (
	"context"
	"crypto/hmac"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ProtonMail/gopenpgp/v2/crypto"

	"github.com/reap-dev/reap/internal/httputil"
	"github.com/reap-dev/reap/internal/source"
)

// Score weights, chosen so a valid signature from a verified publisher
// on a tap yields >=80, a missing signature on a tap yields <=30, and an
// official repo source always yields >=90. See DESIGN.md for the full
// derivation.
const (
	baseOfficialRepo         = 95
	baseThirdPartyBinaryRepo = 75
	baseAur                  = 35
	baseFlatpak              = 30
	baseTap                  = 20

	signatureValidBonus    = 45
	publisherVerifiedBonus = 15
)

// TrustScore is a 0-100 summary of signature validity, publisher
// verification, and source kind. Never persisted — computed fresh per
// (package, source) pair.
type TrustScore struct {
	Score             int
	SignatureValid    bool
	PublisherVerified bool
}

// Badge maps the score to a short display label.
func (t TrustScore) Badge() string {
	return DisplayTrustBadge(t.Score)
}

// DisplayTrustBadge maps a score to its display band label.
func DisplayTrustBadge(score int) string {
	switch {
	case score < 30:
		return "critical"
	case score < 50:
		return "low"
	case score < 70:
		return "medium"
	case score < 90:
		return "high"
	default:
		return "trusted"
	}
}

func baseWeight(kind source.Kind) int {
	switch kind {
	case source.OfficialRepo:
		return baseOfficialRepo
	case source.ThirdPartyBinaryRepo:
		return baseThirdPartyBinaryRepo
	case source.Aur:
		return baseAur
	case source.Flatpak:
		return baseFlatpak
	case source.Tap:
		return baseTap
	default:
		return 0
	}
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

// Score computes the TrustScore for src, given whether its signature was
// valid and whether its publisher is marked verified. OfficialRepo sources
// skip the signature pipeline entirely and are hard-coded to 95, keeping
// them comfortably above the ">=90" floor.
func Score(src source.Source, signatureValid, publisherVerified bool) TrustScore {
	if src.Kind == source.OfficialRepo {
		return TrustScore{Score: baseOfficialRepo, SignatureValid: true, PublisherVerified: true}
	}

	total := baseWeight(src.Kind)
	if signatureValid {
		total += signatureValidBonus
	}
	if signatureValid && publisherVerified {
		total += publisherVerifiedBonus
	}

	return TrustScore{
		Score:             clamp(total),
		SignatureValid:    signatureValid,
		PublisherVerified: publisherVerified,
	}
}

var fingerprintRegex = regexp.MustCompile(`^[0-9A-Fa-f]{40}$`)

// ValidateFingerprint checks that fingerprint is 40 hex characters.
func ValidateFingerprint(fingerprint string) error {
	if !fingerprintRegex.MatchString(fingerprint) {
		return fmt.Errorf("invalid fingerprint format: must be 40 hex characters, got %q", fingerprint)
	}
	return nil
}

// NormalizeFingerprint upper-cases a fingerprint for consistent comparison
// and cache-file naming.
func NormalizeFingerprint(fingerprint string) string {
	return strings.ToUpper(strings.ReplaceAll(fingerprint, " ", ""))
}

// KeyCache caches imported publisher keys on disk under <cache-dir>/keys,
// keyed by fingerprint, so a keyserver import only ever happens once per
// signer.
type KeyCache struct {
	dir string
}

// NewKeyCache returns a KeyCache rooted at dir.
func NewKeyCache(dir string) *KeyCache {
	return &KeyCache{dir: dir}
}

func (c *KeyCache) path(fingerprint string) string {
	return filepath.Join(c.dir, NormalizeFingerprint(fingerprint)+".asc")
}

// Load reads a previously-imported key from the cache, or returns an error
// if it is absent or its fingerprint no longer matches.
func (c *KeyCache) Load(fingerprint string) (*crypto.Key, error) {
	fingerprint = NormalizeFingerprint(fingerprint)

	data, err := os.ReadFile(c.path(fingerprint))
	if err != nil {
		return nil, err
	}

	key, err := crypto.NewKeyFromArmored(string(data))
	if err != nil {
		os.Remove(c.path(fingerprint))
		return nil, fmt.Errorf("cached key is invalid: %w", err)
	}

	if !hmac.Equal([]byte(NormalizeFingerprint(key.GetFingerprint())), []byte(fingerprint)) {
		os.Remove(c.path(fingerprint))
		return nil, fmt.Errorf("cached key fingerprint mismatch")
	}

	return key, nil
}

// Save writes an armored key to the cache under restrictive permissions.
func (c *KeyCache) Save(fingerprint, armoredKey string) error {
	if err := os.MkdirAll(c.dir, 0o700); err != nil {
		return err
	}
	return os.WriteFile(c.path(fingerprint), []byte(armoredKey), 0o600)
}

// VerifyDetached verifies a detached OpenPGP signature over fileData using
// key.
func VerifyDetached(fileData, signatureData []byte, key *crypto.Key) error {
	signature, err := crypto.NewPGPSignatureFromArmored(string(signatureData))
	if err != nil {
		signature = crypto.NewPGPSignature(signatureData)
	}

	keyRing, err := crypto.NewKeyRing(key)
	if err != nil {
		return fmt.Errorf("failed to create keyring: %w", err)
	}

	message := crypto.NewPlainMessage(fileData)

	if err := keyRing.VerifyDetached(message, signature, 0); err != nil {
		return fmt.Errorf("signature verification failed: %w", err)
	}
	return nil
}

// ImportFromKeyserver builds an importKey function (the shape
// buildpipeline.Pipeline.ImportKey and VerifyRecipe expect) that fetches a
// key over the HKP-over-HTTPS protocol from keyserverURL's /pks/lookup
// endpoint.
func ImportFromKeyserver(keyserverURL string) func(ctx context.Context, fingerprint string) (*crypto.Key, error) {
	client := httputil.NewSecureClient(httputil.DefaultOptions())

	return func(ctx context.Context, fingerprint string) (*crypto.Key, error) {
		base, err := url.Parse(keyserverURL)
		if err != nil {
			return nil, fmt.Errorf("invalid keyserver URL %q: %w", keyserverURL, err)
		}
		base.Path = "/pks/lookup"
		q := base.Query()
		q.Set("op", "get")
		q.Set("options", "mr")
		q.Set("search", "0x"+NormalizeFingerprint(fingerprint))
		base.RawQuery = q.Encode()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, base.String(), nil)
		if err != nil {
			return nil, fmt.Errorf("build keyserver request: %w", err)
		}

		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("keyserver request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("keyserver returned HTTP %d", resp.StatusCode)
		}

		armored, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return nil, fmt.Errorf("read keyserver response: %w", err)
		}

		key, err := crypto.NewKeyFromArmored(string(armored))
		if err != nil {
			return nil, fmt.Errorf("parse key from keyserver response: %w", err)
		}
		return key, nil
	}
}

// VerifyRecipe verifies PKGBUILD.sig against PKGBUILD in recipeDir using a
// key looked up or imported for fingerprint. importKey is called only on a
// cache miss (typically an hkps keyserver import); it may return an error,
// which VerifyRecipe wraps and returns as a verification failure, so the
// caller applies the same policy to it as to a bad signature.
func VerifyRecipe(ctx context.Context, cache *KeyCache, recipeDir, fingerprint string, importKey func(context.Context, string) (*crypto.Key, error)) error {
	sigPath := filepath.Join(recipeDir, "PKGBUILD.sig")
	pkgbuildPath := filepath.Join(recipeDir, "PKGBUILD")

	sigData, err := os.ReadFile(sigPath)
	if err != nil {
		return fmt.Errorf("signature missing: %w", err)
	}

	fileData, err := os.ReadFile(pkgbuildPath)
	if err != nil {
		return fmt.Errorf("failed to read PKGBUILD: %w", err)
	}

	key, err := cache.Load(fingerprint)
	if err != nil {
		key, err = importKey(ctx, fingerprint)
		if err != nil {
			return fmt.Errorf("failed to import signer key %s: %w", fingerprint, err)
		}
		if armored, armorErr := key.Armor(); armorErr == nil {
			_ = cache.Save(fingerprint, armored)
		}
	}

	return VerifyDetached(fileData, sigData, key)
}
