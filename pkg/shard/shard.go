// Package shard maps shape identifiers to the shard that holds them and scans
// shard content for a record.
//
// A dataset root has the layout:
//
//	<root>/info.json
//	<root>/chunks/chunk_1.json
//	<root>/chunks/chunk_2.json
//	...
//
// Shard indexes are 1-based: identifiers 1..size live in chunk_1, size+1..2*size
// in chunk_2, and so on. The shard size is an external constant that must match
// the value used when the chunks were produced.
package shard

import (
	"fmt"
	"path"
)

// DefaultShapesPerChunk is the shard size used by the dataset producer.
const DefaultShapesPerChunk = 100000

// Index returns the 1-based shard index holding id, ceil(id / size).
// Callers guarantee id >= 1 and size >= 1.
func Index(id, size int) int {
	return (id + size - 1) / size
}

// InfoKey returns the object key of a dataset's metadata descriptor.
func InfoKey(root string) string {
	return path.Join(root, "info.json")
}

// ChunkKey returns the object key of shard index under root.
func ChunkKey(root string, index int) string {
	return path.Join(root, "chunks", fmt.Sprintf("chunk_%d.json", index))
}
