package governor

import (
	"math"
	"runtime/debug"
	"runtime/metrics"

	"github.com/pbnjay/memory"
)

// MemoryProbe reports memory readings. Implementations must not panic and
// should return conservative values when a reading is unavailable.
type MemoryProbe interface {
	// HeapBytes returns the bytes occupied by live and unswept heap objects.
	HeapBytes() uint64

	// FreeBytes returns the memory still available to the process.
	FreeBytes() uint64
}

const (
	metricHeap  = "/memory/classes/heap/objects:bytes"
	metricTotal = "/memory/classes/total:bytes"
)

// RuntimeProbe reads the Go runtime and the host operating system.
type RuntimeProbe struct{}

// HeapBytes implements MemoryProbe.
func (RuntimeProbe) HeapBytes() uint64 {
	return readUint64(metricHeap)
}

// FreeBytes implements MemoryProbe. It is the smaller of the free system
// memory and the distance to the runtime's soft memory limit; either source
// is ignored when it is unavailable.
func (RuntimeProbe) FreeBytes() uint64 {
	free := uint64(math.MaxUint64)
	if sys := memory.FreeMemory(); sys > 0 {
		free = sys
	}
	if limit := debug.SetMemoryLimit(-1); limit > 0 && limit < math.MaxInt64 {
		total := readUint64(metricTotal)
		room := uint64(0)
		if uint64(limit) > total {
			room = uint64(limit) - total
		}
		free = min(free, room)
	}
	return free
}

func readUint64(name string) uint64 {
	s := []metrics.Sample{{Name: name}}
	metrics.Read(s)
	if s[0].Value.Kind() != metrics.KindUint64 {
		return 0
	}
	return s[0].Value.Uint64()
}
