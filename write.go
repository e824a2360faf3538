package configfile

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/goliatone/go-configfile/pkg/activity"
	"github.com/google/renameio/v2"
)

// WriteTo renders the config as "key = value" lines in canonical order, one
// line per stored value.
func (c *Config) WriteTo(w io.Writer) (int64, error) {
	data, err := c.render()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// Write stores the config at path, creating or replacing the file. The file
// is written to a temporary sibling, synced and renamed into place, so readers
// never observe a partial file. Comments from the original input are not
// preserved.
func (c *Config) Write(path string) error {
	start := time.Now()
	err := c.writeFile(path)
	c.log(Event{Kind: EventWrite, Path: path, Keys: c.Len(), Duration: time.Since(start), Err: err})
	if err != nil {
		return err
	}
	c.emit(activity.BuildConfigWrittenEvent(activity.ConfigEventInput{
		Config: c.name,
		Source: path,
		Keys:   c.Keys(),
	}))
	return nil
}

func (c *Config) writeFile(path string) error {
	data, err := c.render()
	if err != nil {
		return &ResourceError{Op: "write", Path: path, Kind: ErrIO, Err: err}
	}

	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return &ResourceError{Op: "write", Path: path, Kind: ErrIO, Err: err}
	}
	defer func() {
		if cleanupErr := pending.Cleanup(); cleanupErr != nil {
			c.log(Event{Kind: EventWrite, Path: path, Text: "cleanup pending file", Err: cleanupErr})
		}
	}()

	if _, err := pending.Write(data); err != nil {
		return &ResourceError{Op: "write", Path: path, Kind: ErrIO, Err: err}
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return &ResourceError{Op: "write", Path: path, Kind: ErrIO, Err: err}
	}
	return nil
}

func (c *Config) render() ([]byte, error) {
	var buf bytes.Buffer
	if c == nil {
		return buf.Bytes(), nil
	}
	for _, entry := range c.entries {
		for _, value := range entry.Values {
			if strings.ContainsAny(value, "\r\n") {
				return nil, malformed("WriteTo", entry.Key, value, ErrMalformedValue, fmt.Errorf("value spans multiple lines"))
			}
			if value == "" {
				fmt.Fprintf(&buf, "%s =\n", entry.Key)
				continue
			}
			fmt.Fprintf(&buf, "%s = %s\n", entry.Key, value)
		}
	}
	return buf.Bytes(), nil
}
