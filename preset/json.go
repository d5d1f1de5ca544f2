package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cwbudde/algo-synth/param"
	"github.com/cwbudde/algo-synth/synth"
)

// File is the JSON schema for render presets. Every field is optional;
// omitted values keep the engine's current setting.
type File struct {
	Name           string             `json:"name"`
	Parameters     map[string]float32 `json:"parameters"`
	MaxVoices      *int               `json:"max_voices"`
	PitchBendRange *int               `json:"pitch_bend_range"`
	KeyboardMode   string             `json:"keyboard_mode"`
	ScaleFile      string             `json:"scale_file"`
	KeyMapFile     string             `json:"keymap_file"`
}

// LoadJSON reads and validates a preset file. Relative tuning file paths are
// resolved against the preset's directory.
func LoadJSON(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("preset %s: %w", path, err)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("preset %s: %w", path, err)
	}

	base := filepath.Dir(path)
	f.ScaleFile = resolve(base, f.ScaleFile)
	f.KeyMapFile = resolve(base, f.KeyMapFile)
	return &f, nil
}

func resolve(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// Validate checks names and ranges without touching an engine.
func (f *File) Validate() error {
	for _, name := range f.parameterNames() {
		id, ok := param.ByName(name)
		if !ok {
			return fmt.Errorf("unknown parameter %q", name)
		}
		v := f.Parameters[name]
		p := param.Props(id)
		if v < p.Min || v > p.Max {
			return fmt.Errorf("parameter %s=%g outside [%g,%g]", name, v, p.Min, p.Max)
		}
	}
	if f.MaxVoices != nil && (*f.MaxVoices < 0 || *f.MaxVoices > synth.NumSlots) {
		return fmt.Errorf("max_voices must be in [0,%d]", synth.NumSlots)
	}
	if f.PitchBendRange != nil && (*f.PitchBendRange < 0 || *f.PitchBendRange > 24) {
		return fmt.Errorf("pitch_bend_range must be in [0,24]")
	}
	if f.KeyboardMode != "" {
		if _, ok := synth.ParseKeyboardMode(f.KeyboardMode); !ok {
			return fmt.Errorf("invalid keyboard_mode %q (expected poly, mono or legato)", f.KeyboardMode)
		}
	}
	return nil
}

func (f *File) parameterNames() []string {
	names := make([]string, 0, len(f.Parameters))
	for k := range f.Parameters {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Apply pushes the preset onto e. Parameters are applied in name order,
// then keyboard_mode, polyphony, bend range and tuning files.
func (f *File) Apply(e *synth.Engine) error {
	if e == nil {
		return fmt.Errorf("nil engine")
	}
	if err := f.Validate(); err != nil {
		return err
	}
	for _, name := range f.parameterNames() {
		id, _ := param.ByName(name)
		e.UpdateParameter(id, f.Parameters[name])
	}
	if f.KeyboardMode != "" {
		mode, _ := synth.ParseKeyboardMode(f.KeyboardMode)
		e.SetKeyboardMode(mode)
	}
	if f.MaxVoices != nil {
		e.SetMaxVoices(*f.MaxVoices)
	}
	if f.PitchBendRange != nil {
		e.SetPitchBendRange(*f.PitchBendRange)
	}
	if f.ScaleFile != "" {
		if err := e.LoadScale(f.ScaleFile); err != nil {
			return err
		}
	}
	if f.KeyMapFile != "" {
		if err := e.LoadKeyMap(f.KeyMapFile); err != nil {
			return err
		}
	}
	return nil
}
