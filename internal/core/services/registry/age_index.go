package registry

import (
	"bytes"
	"container/heap"
	"time"

	"github.com/lcalzada-xor/wreveal/internal/core/domain"
)

type ageItem struct {
	key      domain.MAC
	lastSeen time.Time
	index    int
}

// ageHeap is a min-heap on lastSeen. Ties break on the key so eviction
// order is deterministic.
type ageHeap []*ageItem

func (h ageHeap) Len() int { return len(h) }

func (h ageHeap) Less(i, j int) bool {
	if !h[i].lastSeen.Equal(h[j].lastSeen) {
		return h[i].lastSeen.Before(h[j].lastSeen)
	}
	return bytes.Compare(h[i].key[:], h[j].key[:]) < 0
}

func (h ageHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *ageHeap) Push(x interface{}) {
	item := x.(*ageItem)
	item.index = len(*h)
	*h = append(*h, item)
}

func (h *ageHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*h = old[:n-1]
	return item
}

// ageIndex tracks last_seen per key and yields the oldest in O(log n).
type ageIndex struct {
	heap  ageHeap
	items map[domain.MAC]*ageItem
}

func newAgeIndex() *ageIndex {
	return &ageIndex{items: make(map[domain.MAC]*ageItem)}
}

// touch inserts key or moves it to its new position.
func (a *ageIndex) touch(key domain.MAC, lastSeen time.Time) {
	if item, ok := a.items[key]; ok {
		item.lastSeen = lastSeen
		heap.Fix(&a.heap, item.index)
		return
	}
	item := &ageItem{key: key, lastSeen: lastSeen}
	heap.Push(&a.heap, item)
	a.items[key] = item
}

func (a *ageIndex) remove(key domain.MAC) {
	item, ok := a.items[key]
	if !ok {
		return
	}
	heap.Remove(&a.heap, item.index)
	delete(a.items, key)
}

// oldest returns the key with the minimum lastSeen.
func (a *ageIndex) oldest() (domain.MAC, time.Time, bool) {
	if len(a.heap) == 0 {
		return domain.MAC{}, time.Time{}, false
	}
	return a.heap[0].key, a.heap[0].lastSeen, true
}

func (a *ageIndex) len() int { return len(a.heap) }

func (a *ageIndex) clear() {
	a.heap = nil
	a.items = make(map[domain.MAC]*ageItem)
}
