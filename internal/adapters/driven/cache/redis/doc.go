// Package redis caches embeddings in Redis in front of any driven.EmbeddingService.
//
// Keys are "voiceos:emb:<model>:<sha256(text)>" and values are little-endian
// float32 blobs, so a cache shared by several processes stays model-safe.
package redis
