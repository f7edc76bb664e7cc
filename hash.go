package epublate

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashText computes the SHA-256 hash of the trimmed text.
func HashText(text string) string {
	trimmed := strings.TrimSpace(text)
	hash := sha256.Sum256([]byte(trimmed))
	return hex.EncodeToString(hash[:])
}

// ChunkKey generates a run-scoped cache key for one chunk. The run ID keeps
// entries from one translation run from ever being reused by another.
func ChunkKey(runID, hash, targetLang, model string) string {
	return runID + ":" + hash + ":" + targetLang + ":" + model
}
