package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tidwall/gjson"
)

func TestLoadDefaultsOnEmpty(t *testing.T) {
	o, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if o != Default() {
		t.Errorf("options = %+v, want defaults", o)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	data := []byte(`{
		"tabstop": 4,
		"fifo": {"chunk_size": 512, "max_reads": 4},
		"log_level": "debug",
		"auto_reload": true,
		"scroll": true
	}`)

	o, err := Load(data)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Options{
		TabStop:       4,
		FifoChunkSize: 512,
		FifoMaxReads:  4,
		LogLevel:      "debug",
		AutoReload:    true,
		Scroll:        true,
	}
	if o != want {
		t.Errorf("options = %+v, want %+v", o, want)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	o, err := Load([]byte(`{"tabstop": 2}`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if o.TabStop != 2 {
		t.Errorf("tabstop = %d, want 2", o.TabStop)
	}
	if o.FifoChunkSize != Default().FifoChunkSize {
		t.Errorf("chunk size = %d, want default", o.FifoChunkSize)
	}
}

func TestLoadRejectsInvalidJSON(t *testing.T) {
	_, err := Load([]byte(`{tabstop:`))
	if !errors.Is(err, ErrInvalidJSON) {
		t.Errorf("err = %v, want ErrInvalidJSON", err)
	}
}

func TestLoadRejectsOutOfRange(t *testing.T) {
	for _, data := range []string{
		`{"tabstop": 0}`,
		`{"fifo": {"chunk_size": -1}}`,
		`{"fifo": {"max_reads": 0}}`,
		`{"log_level": "verbose"}`,
	} {
		if _, err := Load([]byte(data)); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Load(%s) err = %v, want ErrOutOfRange", data, err)
		}
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	o := Default()
	o.TabStop = 3
	o.Scroll = true

	data, err := o.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if got := gjson.GetBytes(data, "tabstop").Int(); got != 3 {
		t.Errorf("tabstop in JSON = %d, want 3", got)
	}

	back, err := Load(data)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back != o {
		t.Errorf("round trip = %+v, want %+v", back, o)
	}
}

func TestLoadFileMissingYieldsDefaults(t *testing.T) {
	o, err := LoadFile(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if o != Default() {
		t.Errorf("options = %+v, want defaults", o)
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	o := Default()
	o.LogLevel = "warn"
	if err := o.SaveFile(path); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("stat: %v", err)
	}

	back, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if back != o {
		t.Errorf("round trip = %+v, want %+v", back, o)
	}
}
