package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/audiospace/atomspace/pkg/atom"
)

// ErrPatch marks a patch file that loaded but does not describe a valid setup
var ErrPatch = errors.New("invalid patch")

// patchTimeout bounds how long a patch script may run
const patchTimeout = 2 * time.Second

// Value is one parameter setting from a patch: a number, or text to be
// parsed by the parameter's own parser ("1.5 kHz", "carrier").
type Value struct {
	Number float64
	Text   string
}

// IsText reports whether the value needs parsing
func (v Value) IsText() bool {
	return v.Text != ""
}

// VoicePatch describes one voice to instantiate
type VoicePatch struct {
	Kind   atom.Kind
	Active bool
	Params map[string]Value // keyed by parameter short name
}

// Patch is the voice setup of one host run
type Patch struct {
	Name        string
	BPM         float64 // 0 leaves the configured tempo
	BeatsPerBar float64 // 0 leaves the default meter
	Voices      []VoicePatch
}

// DefaultPatch is a single womp voice at the configured tempo
func DefaultPatch() Patch {
	return Patch{
		Name: "default",
		Voices: []VoicePatch{
			{Kind: atom.KindWomp, Active: true, Params: map[string]Value{}},
		},
	}
}

// ParamNames returns the voice's parameter names in sorted order
func (v VoicePatch) ParamNames() []string {
	names := make([]string, 0, len(v.Params))
	for name := range v.Params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadPatch runs a Lua patch file. An empty path gives DefaultPatch.
func LoadPatch(path string) (Patch, error) {
	if path == "" {
		return DefaultPatch(), nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return Patch{}, fmt.Errorf("read patch: %w", err)
	}
	return ParsePatch(path, string(src))
}

// ParsePatch runs Lua source that either returns a patch table or assigns
// it to the global "patch":
//
//	return {
//	  bpm = 128,
//	  voices = {
//	    { kind = "womp", bass_freq = 55, sidechain = 0.9 },
//	    { kind = "bassline", peak_source = "carrier", active = false },
//	  },
//	}
func ParsePatch(name, src string) (Patch, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	if err := openSafeLibs(L); err != nil {
		return Patch{}, fmt.Errorf("patch %s: %w", name, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), patchTimeout)
	defer cancel()
	L.SetContext(ctx)

	fn, err := L.LoadString(src)
	if err != nil {
		return Patch{}, fmt.Errorf("patch %s: %w", name, err)
	}
	L.Push(fn)
	if err := L.PCall(0, 1, nil); err != nil {
		return Patch{}, fmt.Errorf("patch %s: %w", name, err)
	}

	ret := L.Get(-1)
	L.Pop(1)
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		tbl, ok = L.GetGlobal("patch").(*lua.LTable)
	}
	if !ok {
		return Patch{}, fmt.Errorf("%w: %s returns no table", ErrPatch, name)
	}

	p, err := decodePatch(tbl)
	if err != nil {
		return Patch{}, fmt.Errorf("%w: %s: %v", ErrPatch, name, err)
	}
	if p.Name == "" {
		p.Name = name
	}
	return p, nil
}

// openSafeLibs opens the libraries a patch may use; no io, os or file loading
func openSafeLibs(L *lua.LState) error {
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		if err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(lib.fn),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name)); err != nil {
			return fmt.Errorf("open %s: %w", lib.name, err)
		}
	}
	for _, unsafe := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(unsafe, lua.LNil)
	}
	return nil
}

func decodePatch(tbl *lua.LTable) (Patch, error) {
	var p Patch

	if v := tbl.RawGetString("name"); v != lua.LNil {
		s, ok := v.(lua.LString)
		if !ok {
			return p, fmt.Errorf("name must be a string, got %s", v.Type())
		}
		p.Name = string(s)
	}

	var err error
	if p.BPM, err = optionalNumber(tbl, "bpm"); err != nil {
		return p, err
	}
	if p.BeatsPerBar, err = optionalNumber(tbl, "beats_per_bar"); err != nil {
		return p, err
	}

	voices, ok := tbl.RawGetString("voices").(*lua.LTable)
	if !ok {
		return p, errors.New("voices must be a list of tables")
	}

	n := voices.Len()
	if n == 0 {
		return p, errors.New("voices is empty")
	}
	for i := 1; i <= n; i++ {
		entry, ok := voices.RawGetInt(i).(*lua.LTable)
		if !ok {
			return p, fmt.Errorf("voice %d is not a table", i)
		}
		vp, err := decodeVoice(entry)
		if err != nil {
			return p, fmt.Errorf("voice %d: %w", i, err)
		}
		p.Voices = append(p.Voices, vp)
	}
	return p, nil
}

func decodeVoice(tbl *lua.LTable) (VoicePatch, error) {
	vp := VoicePatch{Active: true, Params: make(map[string]Value)}

	kind, ok := tbl.RawGetString("kind").(lua.LString)
	if !ok {
		return vp, errors.New("missing kind")
	}
	k, err := atom.ParseKind(string(kind))
	if err != nil {
		return vp, err
	}
	vp.Kind = k

	var decodeErr error
	tbl.ForEach(func(key, value lua.LValue) {
		if decodeErr != nil {
			return
		}
		name, ok := key.(lua.LString)
		if !ok {
			decodeErr = fmt.Errorf("non-string key %s", key.String())
			return
		}
		switch strings.ToLower(string(name)) {
		case "kind":
			return
		case "active":
			vp.Active = lua.LVAsBool(value)
			return
		}
		switch v := value.(type) {
		case lua.LNumber:
			vp.Params[string(name)] = Value{Number: float64(v)}
		case lua.LString:
			vp.Params[string(name)] = Value{Text: string(v)}
		case lua.LBool:
			if v {
				vp.Params[string(name)] = Value{Number: 1}
			} else {
				vp.Params[string(name)] = Value{Number: 0}
			}
		default:
			decodeErr = fmt.Errorf("%s: unsupported value type %s", name, value.Type())
		}
	})
	return vp, decodeErr
}

func optionalNumber(tbl *lua.LTable, key string) (float64, error) {
	v := tbl.RawGetString(key)
	if v == lua.LNil {
		return 0, nil
	}
	n, ok := v.(lua.LNumber)
	if !ok {
		return 0, fmt.Errorf("%s must be a number, got %s", key, v.Type())
	}
	return float64(n), nil
}
