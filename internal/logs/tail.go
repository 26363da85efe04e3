package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

const pollEvery = 250 * time.Millisecond

// TailOptions controls one Tail call.
type TailOptions struct {
	// Offset is the byte position to resume from. Negative means "the last
	// Limit lines of the file".
	Offset int64
	// Limit bounds how many trailing lines a negative-offset read returns.
	Limit int
	// Follow keeps polling for up to Wait when the read returns nothing.
	Follow bool
	Wait   time.Duration
}

// TailResult carries the lines read and the offset to resume from.
type TailResult struct {
	Lines  []string
	Offset int64
}

// Tail reads the log file once. A missing file is not an error: runs that
// never started logging simply have nothing to show yet.
func Tail(ctx context.Context, path string, opts TailOptions) (TailResult, error) {
	result := TailResult{Offset: opts.Offset}

	if opts.Wait < 0 {
		opts.Wait = 0
	}

	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		result.Offset = 0
		if opts.Follow && opts.Wait > 0 {
			return pollLines(ctx, path, 0, opts.Wait)
		}
		return result, nil
	}
	if err != nil {
		return result, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return result, fmt.Errorf("log path %q is a directory", path)
	}

	offset := opts.Offset
	var lines []string
	if offset < 0 {
		lines, offset, err = lastLines(path, opts.Limit)
	} else {
		// Guard against truncation between calls.
		if offset > info.Size() {
			offset = info.Size()
		}
		lines, offset, err = linesFrom(path, offset)
	}
	if err != nil {
		return result, err
	}

	result.Lines = lines
	result.Offset = offset
	if opts.Follow && opts.Wait > 0 && len(lines) == 0 {
		return pollLines(ctx, path, offset, opts.Wait)
	}
	return result, nil
}

// lastLines returns up to limit trailing lines and the end-of-file offset.
func lastLines(path string, limit int) ([]string, int64, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if limit <= 0 {
		end, err := file.Seek(0, io.SeekEnd)
		if err != nil {
			return nil, 0, fmt.Errorf("seek log file: %w", err)
		}
		return nil, end, nil
	}

	scanner := newLineScanner(file)
	ring := make([]string, limit)
	count, next := 0, 0
	for scanner.Scan() {
		ring[next] = scanner.Text()
		next = (next + 1) % limit
		if count < limit {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("read log file: %w", err)
	}

	end, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, 0, fmt.Errorf("seek log file: %w", err)
	}

	lines := make([]string, count)
	if count == limit {
		for i := 0; i < count; i++ {
			lines[i] = ring[(next+i)%limit]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, end, nil
}

// linesFrom reads every complete line starting at offset and returns the new
// end position.
func linesFrom(path string, offset int64) ([]string, int64, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, 0, fmt.Errorf("seek log file: %w", err)
	}

	scanner := newLineScanner(file)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("read log file: %w", err)
	}

	end, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, 0, fmt.Errorf("determine log offset: %w", err)
	}
	return lines, end, nil
}

// pollLines re-reads from offset until lines appear, wait elapses, or ctx is
// canceled.
func pollLines(ctx context.Context, path string, offset int64, wait time.Duration) (TailResult, error) {
	deadline := time.Now().Add(wait)
	ticker := time.NewTicker(pollEvery)
	defer ticker.Stop()

	result := TailResult{Offset: offset}
	for {
		lines, end, err := linesFrom(path, result.Offset)
		if err != nil {
			return result, err
		}
		result.Offset = end
		if len(lines) > 0 {
			result.Lines = lines
			return result, nil
		}
		if time.Now().After(deadline) {
			return result, nil
		}
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-ticker.C:
		}
	}
}

func newLineScanner(file *os.File) *bufio.Scanner {
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return scanner
}
