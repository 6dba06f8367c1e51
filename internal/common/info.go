/*
author: akashmaji
email: akashmaji@iisc.ac.in
file: go-redis-batch/internal/common/info.go
*/
package common

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/shirou/gopsutil/v4/mem"
)

// BatchInfo holds client-side information organized into categories for
// the CLI info report. Each category is a map of key-value pairs that will
// be formatted and displayed.
type BatchInfo struct {
	client  map[string]string
	memory  map[string]string
	batches map[string]string
}

// NewBatchInfo creates and returns a new BatchInfo instance.
func NewBatchInfo() *BatchInfo {
	return &BatchInfo{}
}

// Build populates the categories from the config, the batch counters and
// the host's memory statistics.
//
// Categories populated:
//   - client: server address, config path, process id
//   - memory: total/available/used system memory
//   - batches: every BatchStats counter
func (info *BatchInfo) Build(conf *Config, stats *BatchStats) {
	info.client = map[string]string{
		"server_addr": conf.Addr,
		"config_path": conf.Filepath,
		"process_id":  strconv.Itoa(os.Getpid()),
	}

	info.memory = map[string]string{}
	vm, err := mem.VirtualMemory()
	if err != nil {
		logger.Warn("reading virtual memory: %v", err)
	} else {
		info.memory["total_memory"] = fmt.Sprintf("%d B", vm.Total)
		info.memory["available_memory"] = fmt.Sprintf("%d B", vm.Available)
		info.memory["used_memory"] = fmt.Sprintf("%d B", vm.Used)
		info.memory["used_memory_pct"] = fmt.Sprintf("%.2f%%", vm.UsedPercent)
	}

	info.batches = map[string]string{}
	for k, v := range stats.Snapshot() {
		info.batches[k] = strconv.FormatInt(v, 10)
	}
}

// PrintCategory formats a category header and its key-value pairs, sorted by key.
//
// Format:
//
//	# <header>
//	<key>: <value>
//	...
func (info *BatchInfo) PrintCategory(header string, m map[string]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s := fmt.Sprintf("# %s\n", header)
	for _, k := range keys {
		s += fmt.Sprintf("%30s: %s\n", k, m[k])
	}
	s += "\n"
	return s
}

// Print builds every category and returns the complete report.
func (info *BatchInfo) Print(conf *Config, stats *BatchStats) string {
	info.Build(conf, stats)

	msg := info.PrintCategory("Client", info.client)
	msg += info.PrintCategory("Memory", info.memory)
	msg += info.PrintCategory("Batches", info.batches)
	return msg
}
