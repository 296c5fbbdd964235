package settings

import (
	"encoding/json"
	"testing"

	"github.com/iancoleman/orderedmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func batchFromJSON(t *testing.T, raw string) *orderedmap.OrderedMap {
	t.Helper()
	batch := orderedmap.New()
	require.NoError(t, json.Unmarshal([]byte(raw), batch))
	return batch
}

func TestCompile_ToggleOn(t *testing.T) {
	commands := Compile(batchFromJSON(t, `{"fullbright": true}`))
	assert.Equal(t, []string{"r_fullbright 1", "vid_restart"}, commands)
}

func TestCompile_ToggleOff(t *testing.T) {
	commands := Compile(batchFromJSON(t, `{"triggers": false}`))
	assert.Equal(t, []string{"r_rendertriggerBrushes 0"}, commands)
}

func TestCompile_InvertedToggle(t *testing.T) {
	// sky uses r_fastsky with inverted literals: on means fastsky off
	commands := Compile(batchFromJSON(t, `{"sky": true}`))
	assert.Equal(t, []string{"r_fastsky 0"}, commands)
}

func TestCompile_ToggleNumericOverride(t *testing.T) {
	// Non-boolean values on toggle settings pass through unchanged
	commands := Compile(batchFromJSON(t, `{"drawgun": 3}`))
	assert.Equal(t, []string{"cg_drawgun 3"}, commands)
}

func TestCompile_GammaKeepsOneDecimal(t *testing.T) {
	commands := Compile(batchFromJSON(t, `{"gamma": 1.0}`))
	assert.Equal(t, []string{"r_gamma 1.0"}, commands)

	commands = Compile(batchFromJSON(t, `{"gamma": 1.25}`))
	assert.Equal(t, []string{"r_gamma 1.2"}, commands)
}

func TestCompile_RangePassthrough(t *testing.T) {
	commands := Compile(batchFromJSON(t, `{"picmip": 5}`))
	assert.Equal(t, []string{"r_picmip 5", "vid_restart"}, commands)
}

func TestCompile_SingleRestartForMultipleRestartSettings(t *testing.T) {
	commands := Compile(batchFromJSON(t, `{"brightness": 3, "picmip": 2, "fullbright": true}`))
	assert.Equal(t, []string{
		"r_mapoverbrightbits 3",
		"r_picmip 2",
		"r_fullbright 1",
		"vid_restart",
	}, commands)
}

func TestCompile_RestartCommandIsLast(t *testing.T) {
	commands := Compile(batchFromJSON(t, `{"brightness": 3, "sky": false}`))
	assert.Equal(t, []string{
		"r_mapoverbrightbits 3",
		"r_fastsky 1",
		"vid_restart",
	}, commands)
}

func TestCompile_UnknownSettingSkipped(t *testing.T) {
	commands := Compile(batchFromJSON(t, `{"nonsense": true, "blood": true}`))
	assert.Equal(t, []string{"com_blood 1"}, commands)
}

func TestCompile_EmptyBatch(t *testing.T) {
	assert.Empty(t, Compile(orderedmap.New()))
}

func TestCompile_SubmissionOrderPreserved(t *testing.T) {
	commands := Compile(batchFromJSON(t, `{"blood": true, "gibs": false, "cgaz": true}`))
	assert.Equal(t, []string{"com_blood 1", "cg_gibs 0", "mdd_cgaz 1"}, commands)
}

func TestDefaults_CoversAllDescriptors(t *testing.T) {
	defaults := Defaults()
	assert.Len(t, defaults, len(descriptors))
	assert.Equal(t, true, defaults["sky"])
	assert.Equal(t, false, defaults["fullbright"])
	assert.Equal(t, 2, defaults["brightness"])
	assert.Equal(t, 1.2, defaults["gamma"])
}
