package synth

import "github.com/cwbudde/algo-synth/param"

// UpdateParameter applies a parameter value. Engine and effect parameters
// are handled here; all others are sent to every voice, active or not.
func (e *Engine) UpdateParameter(id param.ID, value float32) {
	switch id {
	case param.MasterVolume:
		e.masterVolume = value
	case param.ReverbRoomsize:
		e.effects.Reverb.SetRoomSize(value)
	case param.ReverbDamp:
		e.effects.Reverb.SetDamp(value)
	case param.ReverbWet:
		e.effects.Reverb.SetWet(value)
		e.effects.Reverb.SetDry(1 - value)
	case param.ReverbWidth:
		e.effects.Reverb.SetWidth(value)
	case param.AmpDistortion:
		e.effects.Distortion.SetCrunch(value)
	case param.PortamentoTime:
		e.portamentoTime = value
	case param.KeyboardMode:
		e.SetKeyboardMode(KeyboardMode(int(value + 0.5)))
	default:
		for i := range e.slots {
			e.slots[i].voice.UpdateParameter(id, value)
		}
	}
}
