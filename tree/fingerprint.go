package tree

import (
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint returns a structural digest of the subtree rooted at n: each
// node's formatted value, its unmapped flag, and the tree shape. Two subtrees
// with equal fingerprints are structurally isomorphic with equal value
// formatting at every position, which makes the digest a cheap clone check.
//
// The walk never forces materialization: an unmapped node contributes its
// flag and no children, so a clone of a pending subtree fingerprints equal to
// its original without either being walked.
func (n *Node) Fingerprint() uint64 {
	digest := xxhash.New()
	n.fingerprintInto(digest)
	return digest.Sum64()
}

func (n *Node) fingerprintInto(digest *xxhash.Digest) {
	n.mu.Lock()
	fmt.Fprintf(digest, "(%v|%t", n.value, n.unmapped.Load())
	kids := make([]*Node, len(n.children))
	copy(kids, n.children)
	n.mu.Unlock()
	for _, k := range kids {
		k.fingerprintInto(digest)
	}
	io.WriteString(digest, ")")
}
