package runlog

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// DefaultDir is the default directory for run log files relative to home
const DefaultDir = ".azsam/runs"

// TimestampFormat is the timestamp format used in run log filenames
const TimestampFormat = "20060102-150405"

// File represents one recorded run log
type File struct {
	Path      string    `json:"path"`
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
	Size      int64     `json:"size"`
	Prefix    string    `json:"prefix,omitempty"`
}

// DefaultDirPath returns the default run log directory path
func DefaultDirPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultDir
	}
	return filepath.Join(home, DefaultDir)
}

// GeneratePath creates a timestamped run log file path, creating the
// directory if needed
func GeneratePath(dir, prefix string) (string, error) {
	if dir == "" {
		dir = DefaultDirPath()
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create run log directory: %w", err)
	}

	timestamp := time.Now().Format(TimestampFormat)
	sanitized := sanitizePrefix(prefix)
	filename := fmt.Sprintf("%s-%s.ndjson", timestamp, sanitized)

	return filepath.Join(dir, filename), nil
}

// sanitizePrefix removes or replaces characters that are problematic in filenames
func sanitizePrefix(prefix string) string {
	// Replace dots and slashes with underscores, keep alphanumerics and hyphens
	re := regexp.MustCompile(`[^a-zA-Z0-9\-]`)
	sanitized := re.ReplaceAllString(prefix, "_")

	// Collapse multiple underscores
	re = regexp.MustCompile(`_+`)
	sanitized = re.ReplaceAllString(sanitized, "_")

	// Trim leading/trailing underscores
	sanitized = strings.Trim(sanitized, "_")

	if sanitized == "" {
		sanitized = "run"
	}

	return sanitized
}

// List returns run log files sorted by time (newest first)
func List(dir string) ([]File, error) {
	if dir == "" {
		dir = DefaultDirPath()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // No run logs yet
		}
		return nil, fmt.Errorf("failed to read run log directory: %w", err)
	}

	var runs []File
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.HasSuffix(name, ".ndjson") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		// Parse timestamp from filename (format: 20060102-150405-prefix.ndjson)
		run := File{
			Path: filepath.Join(dir, name),
			Name: name,
			Size: info.Size(),
		}

		if len(name) >= 15 {
			timestampStr := name[:15] // "20060102-150405"
			if t, err := time.Parse(TimestampFormat, timestampStr); err == nil {
				run.Timestamp = t
			}

			// Extract prefix (everything between timestamp and .ndjson)
			if len(name) > 16 {
				run.Prefix = name[16 : len(name)-7]
			}
		}

		// Fallback to file mod time if timestamp parsing failed
		if run.Timestamp.IsZero() {
			run.Timestamp = info.ModTime()
		}

		runs = append(runs, run)
	}

	// Sort by timestamp, newest first
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})

	return runs, nil
}

// Latest returns the most recent run log file
func Latest(dir string) (*File, error) {
	runs, err := List(dir)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

// Clean removes old run log files, keeping the specified number
func Clean(dir string, keep int) ([]string, error) {
	runs, err := List(dir)
	if err != nil {
		return nil, err
	}

	if len(runs) <= keep {
		return nil, nil // Nothing to delete
	}

	var deleted []string
	for _, run := range runs[keep:] {
		if err := os.Remove(run.Path); err != nil {
			return deleted, fmt.Errorf("failed to remove %s: %w", run.Path, err)
		}
		deleted = append(deleted, run.Path)
	}

	return deleted, nil
}
