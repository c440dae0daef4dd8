package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDownloadSignerRoundTrip(t *testing.T) {
	signer := NewDownloadSigner("test_secret", time.Hour)

	token, expiresAt, err := signer.Generate("job-42", "journal/journal-20250106.csv")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	jobID, relPath, parsedExpiry, err := signer.Parse(token, false)
	require.NoError(t, err)
	require.Equal(t, "job-42", jobID)
	require.Equal(t, "journal/journal-20250106.csv", relPath)
	require.WithinDuration(t, expiresAt, parsedExpiry, time.Second)
}

func TestDownloadSignerRejectsTampering(t *testing.T) {
	signer := NewDownloadSigner("test_secret", time.Hour)
	token, _, err := signer.Generate("job-42", "journal/journal-20250106.pdf")
	require.NoError(t, err)

	_, _, _, err = signer.Parse(token+"x", false)
	require.Error(t, err)

	other := NewDownloadSigner("another_secret", time.Hour)
	_, _, _, err = other.Parse(token, false)
	require.Error(t, err)

	_, _, _, err = signer.Parse(strings.ReplaceAll(token, ".", ","), false)
	require.Error(t, err)
}

func TestDownloadSignerExpiry(t *testing.T) {
	signer := NewDownloadSigner("test_secret", 10*time.Millisecond)
	token, _, err := signer.Generate("job-42", "journal/journal-20250106.csv")
	require.NoError(t, err)

	time.Sleep(25 * time.Millisecond)

	_, _, _, err = signer.Parse(token, false)
	require.Error(t, err)

	jobID, relPath, _, err := signer.Parse(token, true)
	require.NoError(t, err)
	require.Equal(t, "job-42", jobID)
	require.Equal(t, "journal/journal-20250106.csv", relPath)
}
