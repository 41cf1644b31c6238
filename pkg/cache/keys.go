package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Keyer derives cache keys.
type Keyer interface {
	// PayloadKey is the key of the encoded diagram of a macro source.
	PayloadKey(sourceHash string, opts PayloadKeyOpts) string

	// TreeKey is the key of the lowered tree of a macro source.
	TreeKey(sourceHash string, opts TreeKeyOpts) string
}

// PayloadKeyOpts lists everything besides the source that changes a payload.
type PayloadKeyOpts struct {
	KeepInternal bool   `json:"keep_internal"`
	NoFold       bool   `json:"no_fold"`
	Title        string `json:"title"`
	NoLegend     bool   `json:"no_legend"`
	ThemeHash    string `json:"theme"`
	Schema       int    `json:"schema"`
}

// TreeKeyOpts lists everything besides the source that changes a tree.
type TreeKeyOpts struct {
	KeepInternal bool   `json:"keep_internal"`
	NoFold       bool   `json:"no_fold"`
	Stage        string `json:"stage"`
	Schema       int    `json:"schema"`
}

// DefaultKeyer produces unscoped keys of the form kind:sha256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// PayloadKey implements Keyer.
func (DefaultKeyer) PayloadKey(sourceHash string, opts PayloadKeyOpts) string {
	return hashKey("payload", sourceHash, opts)
}

// TreeKey implements Keyer.
func (DefaultKeyer) TreeKey(sourceHash string, opts TreeKeyOpts) string {
	return hashKey("tree", sourceHash, opts)
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
