package util

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
)

// TempSuffix marks files that are still being written.
const TempSuffix = ".tmp"

// SetupInterruptHandler removes half-written output from outputDir when
// the process is interrupted, then exits.
func SetupInterruptHandler(outputDir string, w io.Writer) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sig
		fmt.Fprintln(w, "\nInterrupt received. Cleaning up...")

		CleanupUnfinished(outputDir, w)
		RemoveIfEmpty(outputDir, w)
		fmt.Fprintln(w, "Exiting due to interrupt.")

		os.Exit(1)
	}()
}

// CleanupUnfinished deletes the *.tmp files directly inside outputDir and
// returns how many were removed.
func CleanupUnfinished(outputDir string, w io.Writer) int {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return 0
	}

	removed := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, TempSuffix) {
			continue
		}

		full := filepath.Join(outputDir, name)
		if err := os.Remove(full); err != nil {
			fmt.Fprintf(w, "Error cleaning up %s: %v\n", full, err)
			continue
		}
		fmt.Fprintf(w, "Removed %s\n", full)
		removed++
	}
	return removed
}

func RemoveIfEmpty(dir string, w io.Writer) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	if len(entries) == 0 {
		if err := os.Remove(dir); err == nil {
			fmt.Fprintf(w, "Removed empty output folder: %s\n", dir)
		}
	}
}
