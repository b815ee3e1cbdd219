// Package sysmon samples machine and process resource usage for the verbose
// run report.
package sysmon

import (
	"context"
	"os"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

// Stats holds a single snapshot of resource usage.
type Stats struct {
	CPUPercent float64 // system-wide, 0.0 .. 100.0
	MemPercent float64 // system-wide, 0.0 .. 100.0
	LogicalCPU int
	ProcessRSS uint64 // resident set size of this process, bytes
}

// Sample collects a snapshot. CPU uses interval=0 (delta since the previous
// call). Fields that cannot be read stay zero.
func Sample(ctx context.Context) Stats {
	var s Stats
	if pcts, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(pcts) > 0 {
		s.CPUPercent = pcts[0]
	}
	if n, err := cpu.CountsWithContext(ctx, true); err == nil {
		s.LogicalCPU = n
	}
	if vmem, err := mem.VirtualMemoryWithContext(ctx); err == nil && vmem != nil {
		s.MemPercent = vmem.UsedPercent
	}
	if p, err := process.NewProcessWithContext(ctx, int32(os.Getpid())); err == nil {
		if info, err := p.MemoryInfoWithContext(ctx); err == nil && info != nil {
			s.ProcessRSS = info.RSS
		}
	}
	return s
}
