// Package merkle stores tutor transcripts as a content-addressed Merkle DAG.
// Each message is a node whose hash covers its content and its parent's hash,
// so identical conversation prefixes deduplicate and diverging replies branch.
package merkle

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// BucketTypeMessage marks a bucket holding a single chat message.
const BucketTypeMessage = "message"

// Bucket is the hashable content of a node.
type Bucket struct {
	Type    string `json:"type"`
	Role    string `json:"role"`
	Content string `json:"content"`
	Skill   string `json:"skill,omitempty"`
}

// Node represents a single content-addressed node in a Merkle DAG
type Node struct {
	// Hash is the content-addressed identifier (SHA-256, hex-encoded)
	Hash string `json:"hash"`

	// ParentHash links to the previous node hash.
	// This will be nil for root nodes.
	ParentHash *string `json:"parent_hash"`

	Bucket Bucket `json:"bucket"`

	// Model is the upstream model that generated an assistant reply. It is
	// not part of the hash: the same reply sent back as history must land
	// on the same node.
	Model string `json:"model,omitempty"`
}

// input is the canonical form that gets hashed.
type input struct {
	Bucket Bucket `json:"bucket"`
	Parent string `json:"parent,omitempty"`
}

// NewNode creates a new node with the computed hash for the provided bucket
func NewNode(bucket Bucket, parent *Node) *Node {
	n := &Node{
		Bucket: bucket,
	}

	if parent != nil {
		h := parent.Hash
		n.ParentHash = &h
	}

	n.Hash = n.computeHash()
	return n
}

// computeHash calculates the content-addressed hash for a node
func (n *Node) computeHash() string {
	i := &input{
		Bucket: n.Bucket,
	}

	if n.ParentHash != nil {
		i.Parent = *n.ParentHash
	}

	// Struct field order makes the encoding deterministic.
	data, err := json.Marshal(i)
	if err != nil {
		panic("failed to marshal hash input: " + err.Error())
	}

	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// IsRoot reports whether the node starts a conversation.
func (n *Node) IsRoot() bool {
	return n.ParentHash == nil
}
