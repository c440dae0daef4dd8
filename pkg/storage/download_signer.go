package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const downloadTokenVersion = "v1"

// DownloadSigner mints and verifies the HMAC tokens that gate export
// downloads. A token binds a job id to the artifact path it may fetch, so a
// leaked URL cannot be replayed against another teacher's export.
type DownloadSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewDownloadSigner returns a signer using the given secret. A non-positive
// TTL falls back to 24 hours.
func NewDownloadSigner(secret string, ttl time.Duration) *DownloadSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &DownloadSigner{secret: []byte(secret), ttl: ttl}
}

// Generate mints a token for the given export job and artifact path and
// returns it together with its expiry.
func (s *DownloadSigner) Generate(jobID, relPath string) (string, time.Time, error) {
	if jobID == "" || relPath == "" {
		return "", time.Time{}, fmt.Errorf("job id and artifact path required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("download signing secret missing")
	}
	expiresAt := time.Now().Add(s.ttl)
	payload := strings.Join([]string{
		downloadTokenVersion,
		jobID,
		strconv.FormatInt(expiresAt.Unix(), 10),
		relPath,
	}, "|")
	encoded := base64.RawURLEncoding.EncodeToString([]byte(payload))
	return encoded + "." + s.sign(encoded), expiresAt, nil
}

// Parse verifies a token and returns the job id, artifact path and expiry it
// carries. With allowExpired set, the expiry check is skipped; the retention
// sweep still resolves tokens for artifacts it is about to delete.
func (s *DownloadSigner) Parse(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	encoded, signature, ok := strings.Cut(token, ".")
	if !ok || encoded == "" || signature == "" {
		return "", "", time.Time{}, fmt.Errorf("malformed download token")
	}
	if !hmac.Equal([]byte(s.sign(encoded)), []byte(signature)) {
		return "", "", time.Time{}, fmt.Errorf("download token signature mismatch")
	}
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("decode download token: %w", err)
	}
	fields := strings.SplitN(string(raw), "|", 4)
	if len(fields) != 4 || fields[0] != downloadTokenVersion {
		return "", "", time.Time{}, fmt.Errorf("unsupported download token payload")
	}
	expUnix, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("invalid download token expiry")
	}
	expiresAt = time.Unix(expUnix, 0)
	if !allowExpired && time.Now().After(expiresAt) {
		return "", "", time.Time{}, fmt.Errorf("download token expired")
	}
	return fields[1], fields[3], expiresAt, nil
}

func (s *DownloadSigner) sign(encodedPayload string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(encodedPayload))
	return hex.EncodeToString(mac.Sum(nil))
}
