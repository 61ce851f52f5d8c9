// Copyright (c) 2026 plume authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package plume

import (
	"sort"

	"github.com/pkg/errors"
)

const (
	// blockHeaderSize is the accounting cost of one block's bookkeeping
	// inside its backing segment. Payload offsets and coalescing math both
	// include it, so segment bytes are fully conserved across splits.
	blockHeaderSize = 32

	// arenaAlign is the alignment granule; every payload size is rounded up
	// to a multiple of it.
	arenaAlign = 16

	// blockMinSize is the smallest tail a split may leave behind: room for a
	// header plus one aligned granule.
	blockMinSize = blockHeaderSize + arenaAlign

	// vectorCacheLimit bounds how many emptied free-list bucket slices are
	// kept around for reuse.
	vectorCacheLimit = 16
)

// Block is a chunk handed out by the Arena. The payload is a view into the
// segment the block was carved from.
type Block struct {
	payload      []byte // full payload capacity, len == size
	size         int
	used         bool
	allocationID uint32
	next, prev   *Block
}

// Bytes returns the payload of an allocated block.
func (b *Block) Bytes() []byte { return b.payload[:b.size] }

type sizeBucket struct {
	size   int
	blocks []*Block
}

// Arena is a single-threaded free-list allocator with coalescing. The backend
// worker owns it exclusively; no locking anywhere.
//
// Backing memory grows in segments. Each segment is laid out as a doubly
// linked chain of blocks; the first block of every new segment is linked
// after the tail block of the previous one, so a single chain walk visits
// every block the arena ever created. Blocks from different segments carry
// different allocation ids and are never merged.
type Arena struct {
	segments [][]byte

	// segmentHeads holds the first block carved from each segment; chain
	// walks to a segment tail start here.
	segmentHeads []*Block

	// freeList is kept sorted by size; lookups use binary search. Each block
	// appears in exactly one bucket while free and in none while used.
	freeList []sizeBucket

	// vectorCache recycles emptied bucket slices so churn on the free list
	// does not hit the runtime allocator.
	vectorCache [][]*Block

	minimumAllocation int
}

// NewArena returns an empty arena. Memory is acquired lazily on the first
// allocation unless Reserve is called.
func NewArena() *Arena {
	return &Arena{
		freeList:    make([]sizeBucket, 0, 8),
		vectorCache: make([][]*Block, 0, 8),
	}
}

// NewArenaWithCapacity returns an arena with an initial reserved segment.
func NewArenaWithCapacity(capacity int) *Arena {
	a := &Arena{
		freeList:    make([]sizeBucket, 0, 16),
		vectorCache: make([][]*Block, 0, 16),
	}
	a.Reserve(capacity)
	return a
}

// Reserve acquires a new segment of at least capacity bytes (rounded up to
// the alignment granule) and places it on the free list as one block.
func (a *Arena) Reserve(capacity int) {
	block := a.requestSegment(alignUp(capacity))
	a.insertFree(block)
}

// SetMinimumAllocation sets the granularity of segment requests. New segment
// sizes are rounded up to a multiple of n, which must be a power of two.
func (a *Arena) SetMinimumAllocation(n int) error {
	if n <= 0 || n&(n-1) != 0 {
		return errors.Errorf("plume: minimum allocation %d is not a power of two", n)
	}
	a.minimumAllocation = n
	return nil
}

// Allocate hands out a block with at least size payload bytes.
func (a *Arena) Allocate(size int) *Block {
	padded := alignUp(size)

	if block := a.findFreeBlock(padded); block != nil {
		return block
	}

	// Nothing suitable on the free list; grow by one segment.
	requested := padded
	if a.minimumAllocation != 0 {
		mask := a.minimumAllocation - 1
		requested = (requested + mask) &^ mask
	}

	block := a.requestSegment(requested)
	block = a.slice(block, padded)
	block.used = true
	return block
}

// Deallocate returns a block to the free list, coalescing it with free
// neighbours from the same segment. Passing a block that is not currently
// allocated is a programmer error and panics.
func (a *Arena) Deallocate(b *Block) {
	if b == nil || !b.used {
		panic("plume: Deallocate of a block that is not allocated")
	}

	b = a.coalesceWithNext(b)
	b = a.coalesceWithPrevious(b)
	b.used = false
	a.insertFree(b)
}

// findFreeBlock detaches and returns a used-marked block of at least size
// payload bytes, or nil when no bucket can satisfy the request.
func (a *Arena) findFreeBlock(size int) *Block {
	idx := sort.Search(len(a.freeList), func(i int) bool {
		return a.freeList[i].size >= size
	})
	if idx == len(a.freeList) {
		return nil
	}

	bucket := &a.freeList[idx]
	block := bucket.blocks[len(bucket.blocks)-1]
	bucket.blocks = bucket.blocks[:len(bucket.blocks)-1]

	if len(bucket.blocks) == 0 {
		a.storeCachedVector(bucket.blocks)
		a.freeList = append(a.freeList[:idx], a.freeList[idx+1:]...)
	}

	block = a.slice(block, size)
	block.used = true
	return block
}

// slice splits block so its payload shrinks to requested bytes, pushing the
// remainder onto the free list as a new block. Blocks too small to hold a
// header and one granule in the tail are handed out whole.
func (a *Arena) slice(block *Block, requested int) *Block {
	remaining := block.size - requested
	if remaining < blockMinSize {
		return block
	}

	tailPayload := block.payload[requested+blockHeaderSize:]
	free := &Block{
		payload:      tailPayload,
		size:         block.size - requested - blockHeaderSize,
		used:         false,
		allocationID: block.allocationID,
		next:         block.next,
		prev:         block,
	}
	if free.next != nil {
		free.next.prev = free
	}

	a.insertFree(free)

	block.payload = block.payload[:requested]
	block.size = requested
	block.next = free
	return block
}

// coalesceWithNext merges block with its successor when the successor is
// free and shares the segment.
func (a *Arena) coalesceWithNext(block *Block) *Block {
	next := block.next
	if next == nil || next.used || next.allocationID != block.allocationID {
		return block
	}

	a.removeFree(next)

	block.size += next.size + blockHeaderSize
	block.payload = block.payload[:cap(block.payload)][:block.size]
	block.next = next.next
	if block.next != nil {
		block.next.prev = block
	}
	return block
}

// coalesceWithPrevious merges block into its predecessor when the
// predecessor is free and shares the segment. The surviving block is the
// predecessor.
func (a *Arena) coalesceWithPrevious(block *Block) *Block {
	prev := block.prev
	if prev == nil || prev.used || prev.allocationID != block.allocationID {
		return block
	}

	a.removeFree(prev)

	prev.size += block.size + blockHeaderSize
	prev.payload = prev.payload[:cap(prev.payload)][:prev.size]
	prev.next = block.next
	if prev.next != nil {
		prev.next.prev = prev
	}
	return prev
}

// insertFree places a block in its size bucket, creating the bucket in
// sorted position when absent.
func (a *Arena) insertFree(block *Block) {
	idx := sort.Search(len(a.freeList), func(i int) bool {
		return a.freeList[i].size >= block.size
	})
	if idx < len(a.freeList) && a.freeList[idx].size == block.size {
		a.freeList[idx].blocks = append(a.freeList[idx].blocks, block)
		return
	}

	vec := append(a.getCachedVector(), block)
	a.freeList = append(a.freeList, sizeBucket{})
	copy(a.freeList[idx+1:], a.freeList[idx:])
	a.freeList[idx] = sizeBucket{size: block.size, blocks: vec}
}

// removeFree detaches a specific free block from its bucket. The block must
// be present; anything else means the chain and the free list disagree.
func (a *Arena) removeFree(block *Block) {
	idx := sort.Search(len(a.freeList), func(i int) bool {
		return a.freeList[i].size >= block.size
	})
	if idx == len(a.freeList) || a.freeList[idx].size != block.size {
		panic("plume: free list does not contain a block present in the chain")
	}

	bucket := &a.freeList[idx]
	for i, b := range bucket.blocks {
		if b == block {
			bucket.blocks = append(bucket.blocks[:i], bucket.blocks[i+1:]...)
			break
		}
	}

	if len(bucket.blocks) == 0 {
		a.storeCachedVector(bucket.blocks)
		a.freeList = append(a.freeList[:idx], a.freeList[idx+1:]...)
	}
}

// requestSegment acquires fresh backing memory holding a single free block
// of exactly size payload bytes, chained after the tail block of the
// previous segment.
func (a *Arena) requestSegment(size int) *Block {
	segment := make([]byte, size+blockHeaderSize)

	block := &Block{
		payload:      segment[blockHeaderSize:],
		size:         size,
		allocationID: uint32(len(a.segments)) + 1,
	}

	if len(a.segments) > 0 {
		tail := a.segmentHeads[len(a.segmentHeads)-1]
		for tail.next != nil {
			tail = tail.next
		}
		tail.next = block
		block.prev = tail
	}

	a.segments = append(a.segments, segment)
	a.segmentHeads = append(a.segmentHeads, block)
	return block
}

// getCachedVector returns a recycled empty bucket slice, or a fresh one.
func (a *Arena) getCachedVector() []*Block {
	if len(a.vectorCache) == 0 {
		return make([]*Block, 0, 16)
	}
	vec := a.vectorCache[len(a.vectorCache)-1]
	a.vectorCache = a.vectorCache[:len(a.vectorCache)-1]
	return vec
}

func (a *Arena) storeCachedVector(vec []*Block) {
	if len(a.vectorCache) >= vectorCacheLimit {
		return
	}
	a.vectorCache = append(a.vectorCache, vec[:0])
}

func alignUp(s int) int {
	return (s + arenaAlign - 1) &^ (arenaAlign - 1)
}
