package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var timestampRegex = regexp.MustCompile(
	`(\d{2}):(\d{2}):(\d{2}),(\d{3})\s*-->\s*(\d{2}):(\d{2}):(\d{2}),(\d{3})`,
)

// ParseSRT reads SubRip text from r. Blocks are separated by blank lines:
// an index line, a timestamp line, then one or more text lines. Malformed
// blocks are skipped rather than failing the whole file.
func ParseSRT(r io.Reader) ([]Entry, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var entries []Entry
	var block []string
	first := true

	flush := func() {
		if entry, ok := parseBlock(block); ok {
			entries = append(entries, entry)
		}
		block = nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
			first = false
		}

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		block = append(block, line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading SRT input: %w", err)
	}

	return entries, nil
}

// parseBlock converts one SRT block to an entry. A block needs a timestamp
// line and at least one text line after it; the leading index line is
// tolerated but its value is ignored, ids come from NewID.
func parseBlock(lines []string) (Entry, bool) {
	if len(lines) == 0 {
		return Entry{}, false
	}

	i := 0
	if _, err := strconv.Atoi(strings.TrimSpace(lines[i])); err == nil {
		i++
	}
	if i >= len(lines) {
		return Entry{}, false
	}

	matches := timestampRegex.FindStringSubmatch(lines[i])
	if len(matches) != 9 {
		return Entry{}, false
	}

	startTime, err := parseTimestamp(matches[1], matches[2], matches[3], matches[4])
	if err != nil {
		return Entry{}, false
	}
	endTime, err := parseTimestamp(matches[5], matches[6], matches[7], matches[8])
	if err != nil {
		return Entry{}, false
	}
	i++

	if i >= len(lines) {
		return Entry{}, false
	}

	return Entry{
		ID:           NewID(),
		StartTime:    startTime,
		EndTime:      endTime,
		OriginalText: strings.Join(lines[i:], "\n"),
	}, true
}

func parseTimestamp(hours, minutes, seconds, millis string) (time.Duration, error) {
	h, err := strconv.Atoi(hours)
	if err != nil {
		return 0, err
	}
	m, err := strconv.Atoi(minutes)
	if err != nil {
		return 0, err
	}
	s, err := strconv.Atoi(seconds)
	if err != nil {
		return 0, err
	}
	ms, err := strconv.Atoi(millis)
	if err != nil {
		return 0, err
	}

	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(ms)*time.Millisecond, nil
}

// WriteSRT serializes entries as SubRip text. Each entry emits its
// translated text when present, otherwise the original.
func WriteSRT(w io.Writer, entries []Entry) error {
	var sb strings.Builder
	for i, entry := range entries {
		sb.WriteString(fmt.Sprintf("%d\n", i+1))
		sb.WriteString(fmt.Sprintf("%s --> %s\n",
			FormatTimestamp(entry.StartTime),
			FormatTimestamp(entry.EndTime)))
		sb.WriteString(entry.DisplayText())
		sb.WriteString("\n\n")
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("error writing SRT output: %w", err)
	}
	return nil
}

// FormatTimestamp renders a duration as HH:MM:SS,mmm.
func FormatTimestamp(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	millis := int(d.Milliseconds()) % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}

// OpenSRT parses an SRT file from disk.
func OpenSRT(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SRT file: %w", err)
	}
	defer file.Close()

	return ParseSRT(file)
}

// SaveSRT writes entries to an SRT file, creating parent directories.
func SaveSRT(path string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create SRT file: %w", err)
	}
	defer file.Close()

	return WriteSRT(file, entries)
}
