//go:build js && wasm

package main

import (
	"bytes"
	"syscall/js"
	"unsafe"

	"gitlab.com/gomidi/midi/v2"

	"github.com/cwbudde/algo-synth/param"
	"github.com/cwbudde/algo-synth/synth"
)

const maxBlockFrames = 128

var (
	globalSynth  *synth.Engine
	outputBuffer []float32
)

func main() {
	// Keep program running
	c := make(chan struct{})

	js.Global().Set("wasmInit", js.FuncOf(wasmInit))
	js.Global().Set("wasmNoteOn", js.FuncOf(wasmNoteOn))
	js.Global().Set("wasmNoteOff", js.FuncOf(wasmNoteOff))
	js.Global().Set("wasmSetSustain", js.FuncOf(wasmSetSustain))
	js.Global().Set("wasmPitchWheel", js.FuncOf(wasmPitchWheel))
	js.Global().Set("wasmMIDI", js.FuncOf(wasmMIDI))
	js.Global().Set("wasmSetParameter", js.FuncOf(wasmSetParameter))
	js.Global().Set("wasmAllNotesOff", js.FuncOf(wasmAllNotesOff))
	js.Global().Set("wasmAllSoundOff", js.FuncOf(wasmAllSoundOff))
	js.Global().Set("wasmLoadScale", js.FuncOf(wasmLoadScale))
	js.Global().Set("wasmProcessBlock", js.FuncOf(wasmProcessBlock))
	js.Global().Set("wasmGetMemoryBuffer", js.FuncOf(wasmGetMemoryBuffer))

	println("WASM synth module loaded")
	<-c
}

func wasmInit(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	sampleRate := args[0].Int()
	globalSynth = synth.NewEngine(sampleRate)
	if len(args) > 1 {
		globalSynth.SetMaxVoices(args[1].Int())
	}

	outputBuffer = make([]float32, maxBlockFrames*2)

	println("Synth initialized at", sampleRate, "Hz")
	return nil
}

func wasmNoteOn(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 || globalSynth == nil {
		return nil
	}
	globalSynth.NoteOn(args[0].Int(), float32(args[1].Int())/127)
	return nil
}

func wasmNoteOff(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || globalSynth == nil {
		return nil
	}
	globalSynth.NoteOff(args[0].Int())
	return nil
}

func wasmSetSustain(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || globalSynth == nil {
		return nil
	}
	globalSynth.SustainPedal(args[0].Bool())
	return nil
}

func wasmPitchWheel(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || globalSynth == nil {
		return nil
	}
	globalSynth.PitchWheel(float32(args[0].Float()))
	return nil
}

// wasmMIDI takes the status and data bytes of one channel message.
func wasmMIDI(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || globalSynth == nil {
		return nil
	}
	msg := make(midi.Message, len(args))
	for i, a := range args {
		msg[i] = byte(a.Int())
	}
	globalSynth.HandleMIDI(msg)
	return nil
}

// wasmSetParameter accepts a parameter name and value; it returns false for
// unknown names.
func wasmSetParameter(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 || globalSynth == nil {
		return false
	}
	id, ok := param.ByName(args[0].String())
	if !ok {
		return false
	}
	globalSynth.UpdateParameter(id, param.Clamp(id, float32(args[1].Float())))
	return true
}

func wasmAllNotesOff(this js.Value, args []js.Value) interface{} {
	if globalSynth == nil {
		return nil
	}
	globalSynth.AllNotesOff()
	return nil
}

func wasmAllSoundOff(this js.Value, args []js.Value) interface{} {
	if globalSynth == nil {
		return nil
	}
	globalSynth.AllSoundOff()
	return nil
}

// wasmLoadScale reads .scl text; an optional second argument holds .kbm text.
func wasmLoadScale(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || globalSynth == nil {
		return false
	}
	if err := globalSynth.ReadScale(bytes.NewBufferString(args[0].String())); err != nil {
		println("Failed to load scale:", err.Error())
		return false
	}
	if len(args) > 1 {
		if err := globalSynth.ReadKeyMap(bytes.NewBufferString(args[1].String())); err != nil {
			println("Failed to load keymap:", err.Error())
			return false
		}
	}
	return true
}

func wasmProcessBlock(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || globalSynth == nil {
		return 0
	}

	numFrames := args[0].Int()
	if numFrames > maxBlockFrames {
		numFrames = maxBlockFrames
	}
	if numFrames < 1 {
		return 0
	}

	globalSynth.ProcessInterleaved(outputBuffer[:numFrames*2])

	// Return pointer to buffer in WASM linear memory
	ptr := &outputBuffer[0]
	return js.ValueOf(uintptr(unsafe.Pointer(ptr)))
}

func wasmGetMemoryBuffer(this js.Value, args []js.Value) interface{} {
	return js.Global().Get("Go").Get("_inst").Get("exports").Get("mem").Get("buffer")
}
