package metrics

import "runtime"

// MemorySnapshot holds a point-in-time memory reading.
type MemorySnapshot struct {
	HeapAlloc    uint64 // bytes in use by application
	HeapSys      uint64 // bytes obtained from OS for heap
	Sys          uint64 // total bytes obtained from OS
	NumGC        uint32 // number of completed GC cycles
	PauseTotalNs uint64 // cumulative GC pause time
	HeapObjects  uint64 // number of allocated heap objects
	Goroutines   int    // live goroutines, including idle unit workers
}

// MemoryDelta is the change between two snapshots taken around a run.
type MemoryDelta struct {
	HeapAllocDelta int64
	GCCycles       uint32
	PauseNs        uint64
}

// MemoryCollector reads runtime memory statistics.
type MemoryCollector struct{}

// NewMemoryCollector creates a new memory collector.
func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{}
}

// Snapshot reads current memory statistics.
func (mc *MemoryCollector) Snapshot() MemorySnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemorySnapshot{
		HeapAlloc:    m.HeapAlloc,
		HeapSys:      m.HeapSys,
		Sys:          m.Sys,
		NumGC:        m.NumGC,
		PauseTotalNs: m.PauseTotalNs,
		HeapObjects:  m.HeapObjects,
		Goroutines:   runtime.NumGoroutine(),
	}
}

// Since returns what changed between before and s.
func (s MemorySnapshot) Since(before MemorySnapshot) MemoryDelta {
	return MemoryDelta{
		HeapAllocDelta: int64(s.HeapAlloc) - int64(before.HeapAlloc),
		GCCycles:       s.NumGC - before.NumGC,
		PauseNs:        s.PauseTotalNs - before.PauseTotalNs,
	}
}
