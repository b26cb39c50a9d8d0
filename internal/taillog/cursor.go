package taillog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// ReadNew performs one tailing pass: open the log, seek to offset, parse
// every complete line up to end-of-file and return the parsed events together
// with the new offset.
//
// A missing log file is not an error; the pass simply yields nothing and the
// offset stays put. An offset beyond the current file size means the log was
// truncated or rotated, so the pass restarts from the beginning. The returned
// offset advances over every consumed byte, parseable or not, so a burst of
// foreign lines is never re-scanned on the next pass. A trailing line without
// its newline is left for the next pass to read whole.
func ReadNew(path string, offset int64) ([]Event, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, offset, nil
		}
		return nil, offset, fmt.Errorf("taillog: open %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, offset, fmt.Errorf("taillog: stat %s: %w", path, err)
	}

	if offset < 0 || offset > info.Size() {
		log.Warn("Access log shrank below stored offset, restarting from the top",
			"path", path, "offset", offset, "size", info.Size())
		offset = 0
	}

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, offset, fmt.Errorf("taillog: seek %s: %w", path, err)
	}

	var (
		events   []Event
		consumed int64
		now      = time.Now()
		reader   = bufio.NewReader(file)
	)

	for {
		line, err := reader.ReadString('\n')
		if err == io.EOF {
			break
		}
		if err != nil {
			return events, offset + consumed, fmt.Errorf("taillog: read %s: %w", path, err)
		}

		consumed += int64(len(line))

		event, ok := ParseLine(strings.TrimRight(line, "\r\n"), now)
		if !ok {
			log.Debug("Skipping unparseable log line", "line", strings.TrimRight(line, "\r\n"))
			continue
		}
		events = append(events, event)
	}

	return events, offset + consumed, nil
}

// EndOffset returns the log's current size, or zero when the file does not
// exist. Used to fast-forward the cursor past history that should not be
// re-ingested.
func EndOffset(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("taillog: stat %s: %w", path, err)
	}
	return info.Size(), nil
}
