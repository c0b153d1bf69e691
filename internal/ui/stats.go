package ui

import "sync/atomic"

type Stats struct {
	TotalTables atomic.Int64
	TotalRows   atomic.Int64
	TotalCharts atomic.Int64
	TotalBytes  atomic.Int64
}
