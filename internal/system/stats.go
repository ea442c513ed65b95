package system

import (
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// HostStats is a coarse view of the machine load for the performance report.
type HostStats struct {
	CPUPercent  float64
	MemUsedPct  float64
	MemUsedMB   uint64
	LogicalCPUs int
}

// ReadHostStats samples CPU usage over interval. Failing probes leave zeros.
func ReadHostStats(interval time.Duration) HostStats {
	var s HostStats
	if pct, err := cpu.Percent(interval, false); err == nil && len(pct) > 0 {
		s.CPUPercent = pct[0]
	}
	if n, err := cpu.Counts(true); err == nil {
		s.LogicalCPUs = n
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		s.MemUsedPct = vm.UsedPercent
		s.MemUsedMB = vm.Used / (1024 * 1024)
	}
	return s
}
