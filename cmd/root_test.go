package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evcurve/core/params"
)

const exampleOutput = "10,10.57:20,8.34:30,7.94:40,8.14:50,8.68:60,9.48:" +
	"70,10.50:80,11.73:90,13.15:100,14.76:110,16.56:120,18.54:130,20.70:" +
	"140,23.05:150,25.57:160,28.27:170,31.14:180,34.20:190,37.43:200,40.84"

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRootExampleCurve(t *testing.T) {
	out, err := runCmd(t, "--weight=1812", "--width=1.805", "--height=1.570")
	require.NoError(t, err)
	assert.Equal(t, exampleOutput+"\n", out)
}

func TestRootMissingWeight(t *testing.T) {
	_, err := runCmd(t, "--drag-area=0.6")
	var missing *params.MissingParameterError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"weight"}, missing.Parameters)
}

func TestRootMissingDragArea(t *testing.T) {
	_, err := runCmd(t, "--weight=1812")
	var missing *params.MissingParameterError
	require.ErrorAs(t, err, &missing)
}

func TestRootDragAreaOverridesDerivation(t *testing.T) {
	direct, err := runCmd(t, "--weight=1812", "--drag-area=0.75")
	require.NoError(t, err)
	derived, err := runCmd(t, "--weight=1812", "--frontal-area=2.2")
	require.NoError(t, err)
	assert.NotEqual(t, direct, derived)
	assert.Len(t, strings.Split(strings.TrimSpace(direct), ":"), 20)
}

func TestRootJSONFormat(t *testing.T) {
	out, err := runCmd(t, "--weight=1812", "--width=1.805", "--height=1.570", "--format=json")
	require.NoError(t, err)
	var pts []struct {
		SpeedKmh    int     `json:"speed_kmh"`
		KWhPer100Km float64 `json:"kwh_per_100km"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &pts))
	require.Len(t, pts, 20)
	assert.Equal(t, 10, pts[0].SpeedKmh)
	assert.Equal(t, 200, pts[19].SpeedKmh)
}

func TestRootCSVFormat(t *testing.T) {
	out, err := runCmd(t, "--weight=1812", "--drag-area=0.6", "--format=csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 21)
	assert.Equal(t, "speed_kmh,kwh_per_100km", lines[0])
}

func TestRootUnknownFormat(t *testing.T) {
	_, err := runCmd(t, "--weight=1812", "--drag-area=0.6", "--format=xml")
	require.Error(t, err)
}

func TestRootMaxSpeed(t *testing.T) {
	out, err := runCmd(t, "--weight=1812", "--drag-area=0.6", "--max-speed=120")
	require.NoError(t, err)
	pairs := strings.Split(strings.TrimSpace(out), ":")
	require.Len(t, pairs, 12)
	assert.True(t, strings.HasPrefix(pairs[11], "120,"))
}

func TestRootPreset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "presets.yaml")
	data := "presets:\n  m3:\n    curb_weight_kg: 1722\n    width_m: 1.805\n    height_m: 1.570\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	out, err := runCmd(t, "--config", path, "--preset", "m3")
	require.NoError(t, err)
	assert.Equal(t, exampleOutput+"\n", out)

	// An explicit flag wins over the preset's weight group.
	overridden, err := runCmd(t, "--config", path, "--preset", "m3", "--weight=1500")
	require.NoError(t, err)
	assert.NotEqual(t, out, overridden)
}

func TestRootPresetRequiresConfig(t *testing.T) {
	_, err := runCmd(t, "--preset=m3", "--weight=1812", "--drag-area=0.6")
	require.Error(t, err)
}

func TestRootUnknownPreset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "presets.yaml")
	require.NoError(t, os.WriteFile(path, []byte("presets:\n  m3:\n    weight_kg: 1812\n"), 0o644))
	_, err := runCmd(t, "--config", path, "--preset", "nope")
	require.Error(t, err)
}

func TestRootRangeError(t *testing.T) {
	_, err := runCmd(t, "--weight=50", "--drag-area=0.6")
	var rng *params.RangeError
	require.ErrorAs(t, err, &rng)
	assert.Equal(t, "weight", rng.Parameter)
}

func TestRootConflictError(t *testing.T) {
	_, err := runCmd(t, "--weight=1812", "--curb-weight=1722", "--drag-area=0.6")
	var conflict *params.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
}

func TestAtSubcommand(t *testing.T) {
	out, err := runCmd(t, "at", "--speed=100", "--weight=1812", "--width=1.805", "--height=1.570")
	require.NoError(t, err)
	assert.Equal(t, "14.76\n", out)
}

func TestAtRequiresSpeed(t *testing.T) {
	_, err := runCmd(t, "at", "--weight=1812", "--drag-area=0.6")
	require.Error(t, err)
}

func TestFloatFlagWrongTypePanics(t *testing.T) {
	cmd := &cobra.Command{Use: "broken"}
	cmd.Flags().String("weight", "", "")
	require.NoError(t, cmd.Flags().Set("weight", "1812"))
	assert.Panics(t, func() { floatFlag(cmd, "weight") })
}

func TestHighwayConsumptionCalibration(t *testing.T) {
	out, err := runCmd(t, "--weight=1812", "--width=1.805", "--height=1.570",
		"--temperature=23", "--highway-consumption=160")
	require.NoError(t, err)
	for _, pair := range strings.Split(strings.TrimSpace(out), ":") {
		if strings.HasPrefix(pair, "110,") {
			assert.Equal(t, "110,16.00", pair)
			return
		}
	}
	t.Fatalf("no 110 km/h sample in %q", out)
}
