// Package param defines the stable parameter identities shared by the engine,
// the voices and the preset layer.
package param

// ID is a stable integer parameter identity. Values never change between
// releases because presets and plugin hosts store them.
type ID int

const (
	AmpEnvAttack ID = iota
	AmpEnvDecay
	AmpEnvSustain
	AmpEnvRelease
	Oscillator1Waveform
	FilterEnvAttack
	FilterEnvDecay
	FilterEnvSustain
	FilterEnvRelease
	FilterResonance
	FilterEnvAmount
	FilterCutoff
	Oscillator2Detune
	Oscillator2Waveform
	MasterVolume
	LFOFreq
	LFOWaveform
	Oscillator2Octave
	OscillatorMix
	LFOToOscillators
	LFOToFilterCutoff
	LFOToAmp
	OscillatorMixRingMod
	Oscillator1Pulsewidth
	Oscillator2Pulsewidth
	ReverbRoomsize
	ReverbDamp
	ReverbWet
	ReverbWidth
	AmpDistortion
	Oscillator2Sync
	PortamentoTime
	KeyboardMode
	Oscillator2Pitch
	FilterType
	FilterSlope
	LFOOscillatorSelect
	FilterKbdTrack
	FilterVelocitySens
	AmpVelocitySens

	// Count is the number of defined parameters.
	Count int = iota
)

// Properties describes the accepted range of a parameter.
type Properties struct {
	Name    string
	Min     float32
	Max     float32
	Default float32
	Step    float32
}

var table = [Count]Properties{
	AmpEnvAttack:          {"amp_attack", 0, 2.5, 0, 0},
	AmpEnvDecay:           {"amp_decay", 0, 2.5, 0, 0},
	AmpEnvSustain:         {"amp_sustain", 0, 1, 1, 0},
	AmpEnvRelease:         {"amp_release", 0, 2.5, 0, 0},
	Oscillator1Waveform:   {"osc1_waveform", 0, 4, 2, 1},
	FilterEnvAttack:       {"filter_attack", 0, 2.5, 0, 0},
	FilterEnvDecay:        {"filter_decay", 0, 2.5, 0, 0},
	FilterEnvSustain:      {"filter_sustain", 0, 1, 1, 0},
	FilterEnvRelease:      {"filter_release", 0, 2.5, 0, 0},
	FilterResonance:       {"filter_resonance", 0, 0.97, 0, 0},
	FilterEnvAmount:       {"filter_env_amount", -16, 16, 0, 0},
	FilterCutoff:          {"filter_cutoff", -0.5, 1.5, 1.5, 0},
	Oscillator2Detune:     {"osc2_detune", -1, 1, 0, 0},
	Oscillator2Waveform:   {"osc2_waveform", 0, 4, 2, 1},
	MasterVolume:          {"master_vol", 0, 1, 0.67, 0},
	LFOFreq:               {"lfo_freq", 0, 7.5, 0, 0},
	LFOWaveform:           {"lfo_waveform", 0, 6, 0, 1},
	Oscillator2Octave:     {"osc2_range", -3, 4, 0, 1},
	OscillatorMix:         {"osc_mix", -1, 1, 0, 0},
	LFOToOscillators:      {"freq_mod_amount", 0, 1.25992, 0, 0},
	LFOToFilterCutoff:     {"filter_mod_amount", -1, 1, -1, 0},
	LFOToAmp:              {"amp_mod_amount", -1, 1, -1, 0},
	OscillatorMixRingMod:  {"osc_mix_mode", 0, 1, 0, 0},
	Oscillator1Pulsewidth: {"osc1_pulsewidth", 0, 1, 0, 0},
	Oscillator2Pulsewidth: {"osc2_pulsewidth", 0, 1, 0, 0},
	ReverbRoomsize:        {"reverb_roomsize", 0, 1, 0, 0},
	ReverbDamp:            {"reverb_damp", 0, 1, 0, 0},
	ReverbWet:             {"reverb_wet", 0, 1, 0, 0},
	ReverbWidth:           {"reverb_width", 0, 1, 1, 0},
	AmpDistortion:         {"distortion_crunch", 0, 0.9, 0, 0},
	Oscillator2Sync:       {"osc2_sync", 0, 1, 0, 1},
	PortamentoTime:        {"portamento_time", 0, 1, 0, 0},
	KeyboardMode:          {"keyboard_mode", 0, 2, 0, 1},
	Oscillator2Pitch:      {"osc2_pitch", -12, 12, 0, 1},
	FilterType:            {"filter_type", 0, 2, 0, 1},
	FilterSlope:           {"filter_slope", 0, 1, 1, 1},
	LFOOscillatorSelect:   {"freq_mod_osc", 0, 2, 0, 1},
	FilterKbdTrack:        {"filter_kbd_track", 0, 1, 1, 0},
	FilterVelocitySens:    {"filter_vel_sens", 0, 1, 1, 0},
	AmpVelocitySens:       {"amp_vel_sens", 0, 1, 1, 0},
}

var byName = func() map[string]ID {
	m := make(map[string]ID, Count)
	for i := range table {
		m[table[i].Name] = ID(i)
	}
	return m
}()

// Valid reports whether id names a defined parameter.
func (id ID) Valid() bool {
	return id >= 0 && int(id) < Count
}

// String returns the parameter's persisted name.
func (id ID) String() string {
	if !id.Valid() {
		return "unknown"
	}
	return table[id].Name
}

// Props returns the range description of id. Unknown IDs yield the zero value.
func Props(id ID) Properties {
	if !id.Valid() {
		return Properties{}
	}
	return table[id]
}

// ByName looks up a parameter by its persisted name.
func ByName(name string) (ID, bool) {
	id, ok := byName[name]
	return id, ok
}

// Defaults returns the default value of every parameter, indexed by ID.
func Defaults() [Count]float32 {
	var out [Count]float32
	for i := range table {
		out[i] = table[i].Default
	}
	return out
}

// Clamp limits v to the range of id.
func Clamp(id ID, v float32) float32 {
	p := Props(id)
	if v < p.Min {
		return p.Min
	}
	if v > p.Max {
		return p.Max
	}
	return v
}
