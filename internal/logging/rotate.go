package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Option configures NewLogger.
type Option func(*options)

type options struct {
	maxSizeMB  int
	maxBackups int
}

// WithRotation rotates the log file once it exceeds maxSizeMB megabytes,
// keeping maxBackups old files named courtside.log.1 (newest) through
// courtside.log.N. A maxSizeMB of 0 disables rotation.
func WithRotation(maxSizeMB, maxBackups int) Option {
	return func(o *options) {
		o.maxSizeMB = maxSizeMB
		o.maxBackups = maxBackups
	}
}

// rotatingFile is an append-only log file that rolls over by size.
type rotatingFile struct {
	mu         sync.Mutex
	path       string
	maxBytes   int64
	maxBackups int
	file       *os.File
	size       int64
}

func openRotatingFile(path string, maxBytes int64, maxBackups int) (*rotatingFile, error) {
	rf := &rotatingFile{path: path, maxBytes: maxBytes, maxBackups: maxBackups}
	if err := rf.open(); err != nil {
		return nil, err
	}
	return rf, nil
}

func (rf *rotatingFile) open() error {
	if err := os.MkdirAll(filepath.Dir(rf.path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(rf.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}
	rf.file = file
	rf.size = info.Size()
	return nil
}

// Write appends p, rolling the file first when p would push it past the
// size limit. A failed rollover keeps writing to the current file.
func (rf *rotatingFile) Write(p []byte) (int, error) {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	if rf.file == nil {
		return 0, fmt.Errorf("log file is closed")
	}
	if rf.maxBytes > 0 && rf.size > 0 && rf.size+int64(len(p)) > rf.maxBytes {
		if err := rf.rollover(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: log rotation failed: %v\n", err)
		}
	}
	n, err := rf.file.Write(p)
	rf.size += int64(n)
	return n, err
}

// rollover shifts backups up by one and starts a fresh file.
// The caller must hold rf.mu.
func (rf *rotatingFile) rollover() error {
	if err := rf.file.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	rf.file = nil

	if rf.maxBackups <= 0 {
		_ = os.Remove(rf.path)
	} else {
		_ = os.Remove(rf.backup(rf.maxBackups))
		for i := rf.maxBackups - 1; i >= 1; i-- {
			_ = os.Rename(rf.backup(i), rf.backup(i+1))
		}
		if err := os.Rename(rf.path, rf.backup(1)); err != nil {
			if openErr := rf.open(); openErr != nil {
				return fmt.Errorf("failed to rename log file and reopen: %w", openErr)
			}
			return fmt.Errorf("failed to rename log file: %w", err)
		}
	}
	return rf.open()
}

func (rf *rotatingFile) backup(n int) string {
	return fmt.Sprintf("%s.%d", rf.path, n)
}

// Close syncs and closes the current file. It is idempotent.
func (rf *rotatingFile) Close() error {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	if rf.file == nil {
		return nil
	}
	defer func() { rf.file = nil }()
	if err := rf.file.Sync(); err != nil {
		rf.file.Close()
		return fmt.Errorf("failed to sync log file: %w", err)
	}
	if err := rf.file.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	return nil
}
