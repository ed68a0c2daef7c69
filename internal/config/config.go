// Package config loads and persists tool settings as JSON.
package config

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Options holds the runtime settings.
type Options struct {
	// TabStop is the column width of a tab character. Minimum 1.
	TabStop int

	// FifoChunkSize is the per-read chunk size for stream ingestion.
	FifoChunkSize int

	// FifoMaxReads bounds reads per readiness notification.
	FifoMaxReads int

	// LogLevel is one of debug, info, warn, error.
	LogLevel string

	// AutoReload re-reads file buffers when the on-disk copy changes.
	AutoReload bool

	// Scroll keeps the insertion point following appended fifo content
	// instead of pinning the first line.
	Scroll bool
}

// Default returns the built-in settings.
func Default() Options {
	return Options{
		TabStop:       8,
		FifoChunkSize: 2048,
		FifoMaxReads:  16,
		LogLevel:      "info",
		AutoReload:    false,
		Scroll:        false,
	}
}

// Load parses JSON settings over the defaults. Absent keys keep their
// default values.
func Load(data []byte) (Options, error) {
	o := Default()
	if len(data) == 0 {
		return o, nil
	}
	if !gjson.ValidBytes(data) {
		return o, ErrInvalidJSON
	}

	if r := gjson.GetBytes(data, "tabstop"); r.Exists() {
		o.TabStop = int(r.Int())
	}
	if r := gjson.GetBytes(data, "fifo.chunk_size"); r.Exists() {
		o.FifoChunkSize = int(r.Int())
	}
	if r := gjson.GetBytes(data, "fifo.max_reads"); r.Exists() {
		o.FifoMaxReads = int(r.Int())
	}
	if r := gjson.GetBytes(data, "log_level"); r.Exists() {
		o.LogLevel = r.String()
	}
	if r := gjson.GetBytes(data, "auto_reload"); r.Exists() {
		o.AutoReload = r.Bool()
	}
	if r := gjson.GetBytes(data, "scroll"); r.Exists() {
		o.Scroll = r.Bool()
	}

	if err := o.Validate(); err != nil {
		return Default(), err
	}
	return o, nil
}

// LoadFile reads settings from path. A missing file yields the defaults.
func LoadFile(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("read config %s: %w", path, err)
	}
	return Load(data)
}

// Marshal renders the settings as JSON.
func (o Options) Marshal() ([]byte, error) {
	data := []byte("{}")
	var err error

	set := func(path string, value any) {
		if err != nil {
			return
		}
		data, err = sjson.SetBytes(data, path, value)
	}
	set("tabstop", o.TabStop)
	set("fifo.chunk_size", o.FifoChunkSize)
	set("fifo.max_reads", o.FifoMaxReads)
	set("log_level", o.LogLevel)
	set("auto_reload", o.AutoReload)
	set("scroll", o.Scroll)

	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// SaveFile writes the settings to path.
func (o Options) SaveFile(path string) error {
	data, err := o.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// Validate checks that the settings are usable.
func (o Options) Validate() error {
	if o.TabStop < 1 {
		return fmt.Errorf("%w: tabstop %d", ErrOutOfRange, o.TabStop)
	}
	if o.FifoChunkSize < 1 {
		return fmt.Errorf("%w: fifo.chunk_size %d", ErrOutOfRange, o.FifoChunkSize)
	}
	if o.FifoMaxReads < 1 {
		return fmt.Errorf("%w: fifo.max_reads %d", ErrOutOfRange, o.FifoMaxReads)
	}
	switch o.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log_level %q", ErrOutOfRange, o.LogLevel)
	}
	return nil
}
