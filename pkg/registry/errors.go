package registry

import "errors"

// Sentinel errors for resolution. The attempt runner classifies outcomes
// with errors.Is against these.
var (
	// ErrNotFound indicates no published version matches the package identifier
	ErrNotFound = errors.New("not in registry")

	// ErrDownloadFailed indicates a matching version could not be fetched or unpacked
	ErrDownloadFailed = errors.New("failed to download")

	// ErrChecksumMismatch indicates a downloaded archive does not match the index
	ErrChecksumMismatch = errors.New("checksum mismatch")
)
