package configfile

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-configfile/pkg/activity"
)

// maxLineSize bounds a single input line.
const maxLineSize = 1 << 20

// Load reads the config stored at path. A missing or unopenable file yields
// an error matching ErrNotFound; the handle is closed on every path.
func Load(path string, opts ...Option) (*Config, error) {
	o := applyOptions(opts)
	start := time.Now()

	file, err := openConfig(path)
	if err != nil {
		o.logger.LogEvent(Event{Kind: EventLoad, Config: o.name, Path: path, Duration: time.Since(start), Err: err})
		return nil, err
	}
	defer file.Close()

	cfg, err := parse(file, path, o)
	if err != nil {
		o.logger.LogEvent(Event{Kind: EventLoad, Config: o.name, Path: path, Duration: time.Since(start), Err: err})
		return nil, err
	}
	cfg.source = path
	cfg.log(Event{Kind: EventLoad, Path: path, Keys: cfg.Len(), Duration: time.Since(start)})
	cfg.emit(activity.BuildConfigLoadedEvent(activity.ConfigEventInput{
		Config: cfg.name,
		Source: path,
		Keys:   cfg.Keys(),
	}))
	return cfg, nil
}

// openConfig opens path for reading. Anything that cannot serve as a config
// resource, a directory included, is reported as ErrNotFound.
func openConfig(path string) (*os.File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &ResourceError{Op: "load", Path: path, Kind: ErrNotFound, Err: err}
	}
	info, err := file.Stat()
	if err == nil && info.IsDir() {
		err = errIsDirectory
	}
	if err != nil {
		file.Close()
		return nil, &ResourceError{Op: "load", Path: path, Kind: ErrNotFound, Err: err}
	}
	return file, nil
}

var errIsDirectory = errors.New("is a directory")

// Parse reads config lines from r.
func Parse(r io.Reader, opts ...Option) (*Config, error) {
	return parse(r, "", applyOptions(opts))
}

func parse(r io.Reader, source string, o options) (*Config, error) {
	cfg := newConfig(o)
	cfg.source = source

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		if lineNo == 1 {
			raw = strings.TrimPrefix(raw, "\ufeff")
		}
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, commentMarker) {
			continue
		}

		key, value, ok := splitAssignment(line)
		if !ok {
			lineErr := &ParseError{Source: source, Line: lineNo, Text: raw, Err: ErrMalformedLine}
			if o.strict {
				return nil, lineErr
			}
			cfg.log(Event{Kind: EventParseSkip, Path: source, Line: lineNo, Text: raw, Err: lineErr})
			continue
		}

		switch o.duplicates {
		case DuplicateReplace:
			cfg.putValues(key, []string{value})
		case DuplicateReject:
			if cfg.Has(key) {
				return nil, &ParseError{Source: source, Line: lineNo, Text: raw, Err: ErrDuplicateKey}
			}
			cfg.putValues(key, []string{value})
		default:
			cfg.appendValue(key, value)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &ResourceError{Op: "parse", Path: source, Kind: ErrIO, Err: err}
	}
	return cfg, nil
}

// splitAssignment splits on the first '=' and trims both sides.
func splitAssignment(line string) (string, string, bool) {
	rawKey, rawValue, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}
	key := strings.TrimSpace(rawKey)
	if key == "" {
		return "", "", false
	}
	return key, strings.TrimSpace(rawValue), true
}
