package api

import (
	"net/http"
	"runtime"
	"time"
)

// SystemMetrics is the /api/v1/metrics response.
type SystemMetrics struct {
	Timestamp     string           `json:"timestamp"`
	Version       string           `json:"version"`
	Site          string           `json:"site,omitempty"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	Runtime       RuntimeMetrics   `json:"runtime"`
	Inventory     InventoryMetrics `json:"inventory"`
	Database      *DatabaseMetrics `json:"database,omitempty"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// InventoryMetrics counts what the engine was loaded with.
type InventoryMetrics struct {
	Devices  int            `json:"devices"`
	Commands int            `json:"commands"`
	ByDriver map[string]int `json:"by_driver"`
	ByGroup  map[string]int `json:"by_group"`
}

// DatabaseMetrics contains database connection pool statistics.
type DatabaseMetrics struct {
	OpenConnections int   `json:"open_connections"`
	InUse           int   `json:"in_use"`
	Idle            int   `json:"idle"`
	WaitCount       int64 `json:"wait_count"`
}

const bytesPerMB = 1024 * 1024

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	devices := s.engine.ListDevices()
	inv := InventoryMetrics{
		Devices:  len(devices),
		Commands: len(s.engine.ListCommands()),
		ByDriver: make(map[string]int),
		ByGroup:  make(map[string]int),
	}
	for _, d := range devices {
		inv.ByDriver[d.Driver]++
		inv.ByGroup[d.Group]++
	}

	metrics := SystemMetrics{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		Site:          s.site.ID,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / bytesPerMB,
			MemoryTotalMB: float64(memStats.TotalAlloc) / bytesPerMB,
			NumGC:         memStats.NumGC,
		},
		Inventory: inv,
	}

	if s.dbStats != nil {
		st := s.dbStats.Stats()
		metrics.Database = &DatabaseMetrics{
			OpenConnections: st.OpenConnections,
			InUse:           st.InUse,
			Idle:            st.Idle,
			WaitCount:       st.WaitCount,
		}
	}

	writeJSON(w, http.StatusOK, metrics)
}
