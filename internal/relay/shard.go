package relay

import "hash/fnv"

const shardCount = 16

// shardIndex picks a stable shard for an identity (FNV-1a).
func shardIndex(id string) int {
	h := fnv.New32a()
	h.Write([]byte(id))
	return int(h.Sum32() % shardCount)
}
