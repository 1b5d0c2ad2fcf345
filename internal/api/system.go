package api

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

const systemInfoCacheKey = "system_info"

// SystemInfoResponse reports host resource usage and platform details.
type SystemInfoResponse struct {
	CPUUsage       float64 `json:"cpuUsage"`
	MemoryUsage    float64 `json:"memoryUsage"`
	TotalMemory    uint64  `json:"totalMemory"`
	UsedMemory     uint64  `json:"usedMemory"`
	FreeMemory     uint64  `json:"freeMemory"`
	DiskUsage      float64 `json:"diskUsage"`
	TotalDiskSpace uint64  `json:"totalDiskSpace"`
	FreeDiskSpace  uint64  `json:"freeDiskSpace"`
	OSName         string  `json:"osName"`
	OSVersion      string  `json:"osVersion"`
	OSArch         string  `json:"osArch"`
	GoVersion      string  `json:"goVersion"`
	Uptime         string  `json:"uptime"`
	ProcessorCount int     `json:"processorCount"`
}

func (c *Controller) initSystemRoutes(group *echo.Group) {
	group.GET("/system/info", c.GetSystemInfo)
}

// GetSystemInfo returns host resource usage. Results are cached briefly so
// dashboard polling does not hammer the probes; the CPU sample alone blocks
// for a second.
func (c *Controller) GetSystemInfo(ctx echo.Context) error {
	if cached, found := c.systemCache.Get(systemInfoCacheKey); found {
		return ctx.JSON(http.StatusOK, cached)
	}

	info, err := c.collectSystemInfo()
	if err != nil {
		return c.HandleError(ctx, err, "시스템 정보 조회 실패", http.StatusInternalServerError)
	}

	c.systemCache.SetDefault(systemInfoCacheKey, info)
	return ctx.JSON(http.StatusOK, info)
}

func (c *Controller) collectSystemInfo() (*SystemInfoResponse, error) {
	info := &SystemInfoResponse{
		OSArch:         runtime.GOARCH,
		GoVersion:      runtime.Version(),
		ProcessorCount: runtime.NumCPU(),
		Uptime:         formatUptime(time.Since(c.startTime)),
	}

	// CPU: average over all cores, 1 second sample.
	if cpuPercent, err := cpu.Percent(time.Second, false); err == nil && len(cpuPercent) > 0 {
		info.CPUUsage = roundTenth(clampPercent(cpuPercent[0]))
	} else if err != nil {
		c.logger.Warn("cpu usage probe failed", "error", err)
	}

	if memInfo, err := mem.VirtualMemory(); err == nil {
		info.TotalMemory = memInfo.Total
		info.UsedMemory = memInfo.Used
		info.FreeMemory = memInfo.Available
		info.MemoryUsage = roundTenth(memInfo.UsedPercent)
	} else {
		c.logger.Warn("memory probe failed", "error", err)
	}

	diskPath := "/"
	if runtime.GOOS == "windows" {
		diskPath = "C:"
	}
	if diskInfo, err := disk.Usage(diskPath); err == nil {
		info.TotalDiskSpace = diskInfo.Total
		info.FreeDiskSpace = diskInfo.Free
		info.DiskUsage = roundTenth(diskInfo.UsedPercent)
	} else {
		c.logger.Warn("disk probe failed", "path", diskPath, "error", err)
	}

	if hostInfo, err := host.Info(); err == nil {
		info.OSName = hostInfo.Platform
		info.OSVersion = hostInfo.PlatformVersion
	} else {
		info.OSName = runtime.GOOS
	}

	return info, nil
}

func formatUptime(uptime time.Duration) string {
	days := int(uptime.Hours()) / 24
	hours := int(uptime.Hours()) % 24
	minutes := int(uptime.Minutes()) % 60
	return fmt.Sprintf("%d일 %d시간 %d분", days, hours, minutes)
}

func clampPercent(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}

func roundTenth(value float64) float64 {
	return float64(int(value*10+0.5)) / 10
}
