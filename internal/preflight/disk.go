package preflight

import (
	"fmt"
	"syscall"
)

// MinDiskSpaceBytes is the free space needed for logs and usage counters
// (10 MB). The corpus itself is read-only, so the bar is low.
const MinDiskSpaceBytes = 10 * 1024 * 1024

// CheckDiskSpace verifies free space at path.
func (c *Checker) CheckDiskSpace(path string) CheckResult {
	result := CheckResult{Name: "disk_space", Required: true}

	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		// The stats dir may not exist yet; that is CheckStatsDir's concern.
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("cannot check disk space at %s", path)
		result.Details = err.Error()
		result.Required = false
		return result
	}

	availableBytes := stat.Bavail * uint64(stat.Bsize)
	if availableBytes < MinDiskSpaceBytes {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("%s free (minimum: 10 MB)", formatBytes(availableBytes))
		return result
	}

	result.Status = StatusPass
	result.Message = fmt.Sprintf("%s free (minimum: 10 MB)", formatBytes(availableBytes))
	return result
}

func formatBytes(bytes uint64) string {
	const (
		kb = 1024
		mb = 1024 * kb
		gb = 1024 * mb
		tb = 1024 * gb
	)
	switch {
	case bytes >= tb:
		return fmt.Sprintf("%.1f TB", float64(bytes)/tb)
	case bytes >= gb:
		return fmt.Sprintf("%.1f GB", float64(bytes)/gb)
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/mb)
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/kb)
	default:
		return fmt.Sprintf("%d bytes", bytes)
	}
}
