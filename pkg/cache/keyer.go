package cache

import "fmt"

// Keyer generates cache keys.
type Keyer interface {
	// ArtifactKey identifies a rendered artifact of the tree whose content
	// hash is treeHash.
	ArtifactKey(treeHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts lists every option that changes a rendered artifact.
type ArtifactKeyOpts struct {
	Format         string `json:"format"`
	Root           string `json:"root,omitempty"`
	MaxDepth       int    `json:"max_depth,omitempty"`
	Page           bool   `json:"page,omitempty"`
	Detailed       bool   `json:"detailed,omitempty"`
	SkipSuppressed bool   `json:"skip_suppressed,omitempty"`
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns a [DefaultKeyer].
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ArtifactKey returns "artifact:<format>:<hash>" where the hash covers the
// tree hash and every option.
func (DefaultKeyer) ArtifactKey(treeHash string, opts ArtifactKeyOpts) string {
	return hashKey(fmt.Sprintf("artifact:%s", opts.Format), treeHash, opts)
}
