/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Utility functions for log management in the Akaylee Repairer.
Provides the retention sweep over the log directory (rotation of oversized
files, optional compression, pruning) and candidate preview escaping for
readable oracle-call logs.
*/

package logging

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// previewLimit bounds how much of a candidate appears in a log line
const previewLimit = 120

// EscapePreview renders candidate bytes for logging: control characters are
// escaped, long candidates are truncated, and the empty candidate is shown
// explicitly.
func EscapePreview(candidate []byte) string {
	var out strings.Builder
	n := len(candidate)
	if n > previewLimit {
		n = previewLimit
	}
	for _, ch := range candidate[:n] {
		switch {
		case ch == '\n':
			out.WriteString(`\n`)
		case ch == '\t':
			out.WriteString(`\t`)
		case ch < 32 || ch == 127:
			out.WriteString(fmt.Sprintf(`\x%02X`, ch))
		default:
			out.WriteByte(ch)
		}
	}
	if len(candidate) > previewLimit {
		out.WriteString("…")
	}
	if out.Len() == 0 {
		return "<EMPTY>"
	}
	return out.String()
}

// logFilePattern matches the session log files this package writes
const logFilePattern = "akaylee-repairer_*.log"

// LogManager enforces the retention policy over the repairer's log
// directory. The Logger runs a sweep on Close; long-lived callers may also
// sweep periodically.
type LogManager struct {
	dir      string
	maxFiles int
	maxSize  int64
	compress bool
}

// NewLogManager creates a log manager from the logger configuration
func NewLogManager(config *LoggerConfig) *LogManager {
	return &LogManager{
		dir:      config.OutputDir,
		maxFiles: config.MaxFiles,
		maxSize:  config.MaxSize,
		compress: config.Compress,
	}
}

// Sweep applies the retention policy: oversized session logs are rotated
// (and optionally compressed), then the oldest files beyond the retention
// count are removed.
func (lm *LogManager) Sweep() error {
	if lm.dir == "" {
		return nil
	}
	if err := lm.rotateOversized(); err != nil {
		return err
	}
	return lm.prune()
}

// rotateOversized renames every session log that grew past the size limit
func (lm *LogManager) rotateOversized() error {
	files, err := filepath.Glob(filepath.Join(lm.dir, logFilePattern))
	if err != nil {
		return fmt.Errorf("failed to glob log files: %w", err)
	}

	for _, file := range files {
		stat, err := os.Stat(file)
		if err != nil {
			continue
		}
		if stat.Size() < lm.maxSize {
			continue
		}

		rotated := fmt.Sprintf("%s.%s", file, time.Now().Format("2006-01-02_15-04-05"))
		if err := os.Rename(file, rotated); err != nil {
			return fmt.Errorf("failed to rotate %s: %w", file, err)
		}
		if lm.compress {
			if err := compressFile(rotated); err != nil {
				return fmt.Errorf("failed to compress %s: %w", rotated, err)
			}
		}
	}
	return nil
}

// prune removes the oldest files (session logs, rotated logs, compressed
// logs alike) once the directory holds more than the retention count
func (lm *LogManager) prune() error {
	files, err := filepath.Glob(filepath.Join(lm.dir, logFilePattern+"*"))
	if err != nil {
		return fmt.Errorf("failed to glob log files: %w", err)
	}

	if len(files) <= lm.maxFiles {
		return nil
	}

	// Oldest first
	sort.Slice(files, func(i, j int) bool {
		statI, _ := os.Stat(files[i])
		statJ, _ := os.Stat(files[j])
		return statI.ModTime().Before(statJ.ModTime())
	})

	for _, file := range files[:len(files)-lm.maxFiles] {
		if err := os.Remove(file); err != nil {
			return fmt.Errorf("failed to remove file %s: %w", file, err)
		}
	}
	return nil
}

// compressFile gzips a rotated log and removes the original
func compressFile(path string) error {
	source, err := os.Open(path)
	if err != nil {
		return err
	}
	defer source.Close()

	compressed, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}
	defer compressed.Close()

	gzipWriter := gzip.NewWriter(compressed)
	if _, err := io.Copy(gzipWriter, source); err != nil {
		gzipWriter.Close()
		return err
	}
	if err := gzipWriter.Close(); err != nil {
		return err
	}

	return os.Remove(path)
}
