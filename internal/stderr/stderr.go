// Package stderr captures stderr output from C libraries (GStreamer, its
// plugins, mpv's libraries) that write directly to file descriptor 2,
// bypassing Go's os.Stderr. This prevents raw messages from corrupting the
// TUI layout; captured lines are forwarded to the log instead.
package stderr

import (
	"bufio"
	"io"
	"os"
	"strings"
	"sync"
	"syscall"

	"github.com/rs/zerolog"
)

var (
	mu         sync.Mutex
	origStderr int
	pipeRead   *os.File
	pipeWrite  *os.File
	started    bool
	wg         sync.WaitGroup
)

// Start begins capturing stderr output and logs every captured line.
// Must be called early in main(), before any C library initialization.
// Returns an error if capture cannot be set up, but the program can continue
// without stderr capture (output will just go to the original stderr).
func Start(log zerolog.Logger) error {
	mu.Lock()
	defer mu.Unlock()
	if started {
		return nil
	}

	// Create a pipe
	r, w, err := os.Pipe()
	if err != nil {
		return err
	}

	// Save original stderr file descriptor
	origStderr, err = syscall.Dup(int(os.Stderr.Fd()))
	if err != nil {
		r.Close()
		w.Close()
		return err
	}

	// Redirect stderr (fd 2) to the pipe's write end
	err = syscall.Dup2(int(w.Fd()), int(os.Stderr.Fd()))
	if err != nil {
		syscall.Close(origStderr)
		r.Close()
		w.Close()
		return err
	}

	pipeRead = r
	pipeWrite = w
	started = true

	wg.Add(1)
	go func() {
		defer wg.Done()
		forward(pipeRead, log.With().Str("source", "native").Logger())
	}()

	return nil
}

// forward logs each non-empty line read from r.
func forward(r io.Reader, log zerolog.Logger) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if isErrorLine(line) {
			log.Warn().Msg(line)
		} else {
			log.Debug().Msg(line)
		}
	}
}

func isErrorLine(line string) bool {
	lower := strings.ToLower(line)
	return strings.Contains(lower, "error") || strings.Contains(lower, "critical")
}

// WriteOriginal writes directly to the original stderr, bypassing capture.
// Useful for fatal errors that must be visible even if TUI is running.
func WriteOriginal(msg string) {
	mu.Lock()
	fd := origStderr
	mu.Unlock()
	if fd > 0 {
		_, _ = syscall.Write(fd, []byte(msg))
		return
	}
	_, _ = os.Stderr.WriteString(msg)
}

// Stop restores the original stderr. Should be called on program exit.
func Stop() {
	mu.Lock()
	defer mu.Unlock()
	if !started {
		return
	}

	// Restore original stderr
	_ = syscall.Dup2(origStderr, int(os.Stderr.Fd()))
	_ = syscall.Close(origStderr)
	origStderr = 0

	// Close the write end first so the forwarder sees EOF
	pipeWrite.Close()
	wg.Wait()
	pipeRead.Close()

	started = false
}
