// Package shard assigns change events to projection lanes.
package shard

import "hash/fnv"

// Lane returns the lane for key among numLanes lanes.
// Equal keys always map to the same lane. With numLanes<=1 every key maps to lane 0.
func Lane(key string, numLanes int) int {
	if numLanes <= 1 {
		return 0
	}
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % uint32(numLanes))
}
