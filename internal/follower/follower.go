package follower

import (
	"bufio"
	"context"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/LeoDroves/mtga-log-client/internal/logger"
	pkgerrors "github.com/LeoDroves/mtga-log-client/pkg/errors"
	"github.com/LeoDroves/mtga-log-client/pkg/metrics"
)

// Entry is one logical, possibly multi-line unit of the Arena log, delimited
// by start markers, joined into a single blob with the most recent timestamp
// observed while it accumulated.
type Entry struct {
	Text    string
	LogTime time.Time
	RawTime string
}

// Sink receives segmented output. HandleLine sees every raw line regardless
// of entry boundaries; the account-identity pattern can appear embedded in
// unrelated entries. HandleEntry receives each closed entry; its error is
// logged and the follow loop continues regardless.
type Sink interface {
	HandleLine(ctx context.Context, line, rawTime string)
	HandleEntry(ctx context.Context, entry Entry) error
}

var (
	logStartRegexp      = regexp.MustCompile(`^\[(UnityCrossThreadLogger|Client GRE)\]`)
	logStartTimedRegexp = regexp.MustCompile(`^\[(UnityCrossThreadLogger|Client GRE)\]([\d:/ -]+(AM|PM)?)`)
	timestampRegexp     = regexp.MustCompile(`^([\d/.-]+[ T][\d]+:[\d]+:[\d]+( AM| PM)?)`)
)

// Follower turns the raw, growing log file into complete entries handed to a
// Sink, in file order. It is single-threaded: all downstream parsing,
// aggregation, and publishing happen synchronously on its loop.
type Follower struct {
	sink         Sink
	log          logger.Logger
	pollInterval time.Duration

	buffer      []string
	curLogTime  time.Time
	lastRawTime string
}

func New(sink Sink, log logger.Logger, pollInterval time.Duration) *Follower {
	return &Follower{
		sink:         sink,
		log:          log,
		pollInterval: pollInterval,
	}
}

// Run reads the log at path until ctx is cancelled. In follow mode it waits
// for the file to appear, polls for growth, and reopens it when the on-disk
// file is modified after the last successful read (rotation or truncation).
// When follow is false it stops after one full pass.
func (f *Follower) Run(ctx context.Context, path string, follow bool) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		file, err := os.Open(path)
		if err != nil {
			f.log.Debugw("Log file not readable yet", "path", path, "error", err)
			if !follow {
				f.log.Info("Done processing file.")
				return nil
			}
			if err := f.sleep(ctx); err != nil {
				return err
			}
			continue
		}

		reopen, err := f.readAll(ctx, file, path, follow)
		file.Close()
		if err != nil {
			return err
		}
		if reopen {
			continue
		}

		if !follow {
			f.log.Info("Done processing file.")
			return nil
		}
	}
}

// readAll consumes the open file line by line. It returns reopen=true when
// the file was modified after the last read, which signals truncation or
// replacement and requires reopening from the start.
func (f *Follower) readAll(ctx context.Context, file *os.File, path string, follow bool) (bool, error) {
	reader := bufio.NewReader(file)
	lastRead := time.Now()

	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		line, err := reader.ReadString('\n')
		if line != "" {
			f.appendLine(ctx, line)
			lastRead = time.Now()
			if err == nil {
				continue
			}
		}
		if err != nil && err != io.EOF {
			return false, err
		}

		// Temporary end of data: flush the open entry and decide whether
		// to wait, reopen, or stop. A single pass ends here no matter
		// what the on-disk file looks like by now.
		f.closeEntry(ctx)
		if !follow {
			return false, nil
		}

		info, statErr := os.Stat(path)
		if statErr != nil {
			return true, nil
		}
		if info.ModTime().After(lastRead) {
			return true, nil
		}
		if err := f.sleep(ctx); err != nil {
			return false, err
		}
	}
}

func (f *Follower) sleep(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(f.pollInterval):
		return nil
	}
}

// appendLine adds one physical line (not necessarily a complete entry).
func (f *Follower) appendLine(ctx context.Context, line string) {
	f.sink.HandleLine(ctx, line, f.lastRawTime)

	if m := timestampRegexp.FindStringSubmatch(line); m != nil {
		if t, err := ParseLogTime(m[1]); err == nil {
			f.lastRawTime = m[1]
			f.curLogTime = t
		} else {
			f.log.Warnw("Unparseable leading timestamp", "raw", m[1])
		}
	}

	loc := logStartRegexp.FindStringIndex(line)
	if loc == nil {
		f.buffer = append(f.buffer, line)
		return
	}

	// A start marker closes the previously accumulating entry.
	f.closeEntry(ctx)

	if m := logStartTimedRegexp.FindStringSubmatchIndex(line); m != nil {
		raw := line[m[4]:m[5]]
		if t, err := ParseLogTime(raw); err == nil {
			f.lastRawTime = raw
			f.curLogTime = t
		} else {
			f.log.Warnw("Unparseable entry timestamp", "raw", raw)
		}
		f.buffer = append(f.buffer, line[m[1]:])
	} else {
		f.buffer = append(f.buffer, line[loc[1]:])
	}
}

// closeEntry hands the accumulated entry to the sink. An empty buffer is a
// no-op; a buffer accumulated before any timestamp was ever observed is
// discarded without processing. Sink errors never stop the loop.
func (f *Follower) closeEntry(ctx context.Context) {
	if len(f.buffer) == 0 {
		return
	}
	if f.curLogTime.IsZero() {
		f.buffer = f.buffer[:0]
		return
	}

	entry := Entry{
		Text:    strings.Join(f.buffer, ""),
		LogTime: f.curLogTime,
		RawTime: f.lastRawTime,
	}
	f.buffer = f.buffer[:0]

	if err := f.dispatch(ctx, entry); err != nil {
		metrics.EntriesProcessedTotal.WithLabelValues("failed").Inc()
		f.log.Errorw("Error while processing entry",
			"error", err,
			"entry", entry.Text,
		)
		return
	}
	metrics.EntriesProcessedTotal.WithLabelValues("ok").Inc()
}

// dispatch shields the follow loop from panics in the sink: a handler panic
// is demoted to a per-entry error and the loop keeps reading.
func (f *Follower) dispatch(ctx context.Context, entry Entry) (err error) {
	defer func() {
		if rerr := pkgerrors.RecoverPanic(recover()); rerr != nil {
			err = rerr
		}
	}()
	return f.sink.HandleEntry(ctx, entry)
}
