// Package settings holds the viewer-configurable game settings and compiles
// them into console commands for the game client.
package settings

import (
	"fmt"
	"strconv"

	"github.com/iancoleman/orderedmap"
)

const restartCommand = "vid_restart"

type kind int

const (
	kindToggle kind = iota
	kindRange
)

// Descriptor maps one setting name to its console variable. Toggle settings
// carry the two literal values for off/on; range settings carry numeric
// bounds. VidRestart settings require the game client to reinitialize its
// video subsystem before taking effect.
type Descriptor struct {
	CVar       string
	Kind       kind
	Off, On    int
	Min, Max   float64
	Default    any
	VidRestart bool
	Decimals   bool
}

var descriptors = map[string]Descriptor{
	"triggers":    {CVar: "r_rendertriggerBrushes", Kind: kindToggle, Off: 0, On: 1, Default: false},
	"sky":         {CVar: "r_fastsky", Kind: kindToggle, Off: 1, On: 0, Default: true},
	"clips":       {CVar: "r_renderClipBrushes", Kind: kindToggle, Off: 0, On: 1, Default: false},
	"slick":       {CVar: "r_renderSlickSurfaces", Kind: kindToggle, Off: 0, On: 1, Default: false},
	"brightness":  {CVar: "r_mapoverbrightbits", Kind: kindRange, Min: 1, Max: 5, Default: 2, VidRestart: true},
	"picmip":      {CVar: "r_picmip", Kind: kindRange, Min: 0, Max: 5, Default: 0, VidRestart: true},
	"fullbright":  {CVar: "r_fullbright", Kind: kindToggle, Off: 0, On: 1, Default: false, VidRestart: true},
	"gamma":       {CVar: "r_gamma", Kind: kindRange, Min: 1.0, Max: 1.6, Default: 1.2, Decimals: true},
	"drawgun":     {CVar: "cg_drawgun", Kind: kindToggle, Off: 2, On: 1, Default: false},
	"angles":      {CVar: "df_chs1_Info6", Kind: kindToggle, Off: 0, On: 40, Default: false},
	"lagometer":   {CVar: "cg_lagometer", Kind: kindToggle, Off: 0, On: 1, Default: false},
	"snaps":       {CVar: "mdd_snap", Kind: kindToggle, Off: 0, On: 3, Default: true},
	"cgaz":        {CVar: "mdd_cgaz", Kind: kindToggle, Off: 0, On: 1, Default: true},
	"speedinfo":   {CVar: "df_chs1_Info5", Kind: kindToggle, Off: 0, On: 23, Default: true},
	"speedorig":   {CVar: "df_drawSpeed", Kind: kindToggle, Off: 0, On: 1, Default: false},
	"inputs":      {CVar: "df_chs0_draw", Kind: kindToggle, Off: 0, On: 1, Default: true},
	"obs":         {CVar: "df_chs1_Info7", Kind: kindToggle, Off: 0, On: 50, Default: false},
	"nodraw":      {CVar: "df_mp_NoDrawRadius", Kind: kindToggle, Off: 100, On: 100000, Default: false},
	"thirdperson": {CVar: "cg_thirdperson", Kind: kindToggle, Off: 0, On: 1, Default: false},
	"miniview":    {CVar: "df_ghosts_MiniviewDraw", Kind: kindToggle, Off: 0, On: 6, Default: false},
	"gibs":        {CVar: "cg_gibs", Kind: kindToggle, Off: 0, On: 1, Default: false},
	"blood":       {CVar: "com_blood", Kind: kindToggle, Off: 0, On: 1, Default: false},
}

// Defaults returns the built-in settings map served when no snapshot has
// been persisted yet.
func Defaults() map[string]any {
	defaults := make(map[string]any, len(descriptors))
	for name, desc := range descriptors {
		defaults[name] = desc.Default
	}
	return defaults
}

// Compile turns a submitted settings batch into game console commands, one
// "<cvar> <value>" per recognized setting, in the submission order of the
// batch. Unknown settings are skipped. If any compiled setting requires a
// video restart, a single restart command is appended after all the
// per-setting commands.
func Compile(batch *orderedmap.OrderedMap) []string {
	var commands []string
	needsRestart := false

	for _, name := range batch.Keys() {
		desc, known := descriptors[name]
		if !known {
			continue
		}
		value, _ := batch.Get(name)

		if desc.VidRestart {
			needsRestart = true
		}

		var rendered string
		switch desc.Kind {
		case kindToggle:
			// Booleans map to the descriptor's toggle literals; anything
			// else passes through as a direct override.
			if on, isBool := value.(bool); isBool {
				if on {
					rendered = strconv.Itoa(desc.On)
				} else {
					rendered = strconv.Itoa(desc.Off)
				}
			} else {
				rendered = formatValue(value)
			}
		case kindRange:
			if desc.Decimals {
				rendered = fmt.Sprintf("%.1f", toFloat(value))
			} else {
				rendered = formatValue(value)
			}
		}

		commands = append(commands, desc.CVar+" "+rendered)
	}

	if needsRestart {
		commands = append(commands, restartCommand)
	}

	return commands
}

func formatValue(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case int:
		return strconv.Itoa(value)
	case bool:
		return strconv.FormatBool(value)
	default:
		return fmt.Sprint(value)
	}
}

func toFloat(v any) float64 {
	switch value := v.(type) {
	case float64:
		return value
	case int:
		return float64(value)
	case string:
		f, _ := strconv.ParseFloat(value, 64)
		return f
	default:
		return 0
	}
}
