package config

import (
	"strings"
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"diesel.com/drape/cloth"
	"diesel.com/drape/geometry"
	V "diesel.com/drape/vector"
)

const testPreset = `
dt = 0.02
seed = 7

[grid]
grid_width = 10
grid_height = 5

[params]
wind = 0.5
gravity = [0.0, -1.0, 0.0]

[params.springs]
k0 = 2.0

[[spheres]]
center = [0, -1, 0]
radius = 0.5
`

func writeFile(t *testing.T, fs afero.Fs, path string, content string) {
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
}

func TestDefaultPresetIsValid(t *testing.T) {
	p := Default()
	require.NoError(t, p.Validate())

	opts := p.Options()
	require.Equal(t, cloth.DefaultOptions(), opts)
	require.Len(t, p.Colliders().Spheres, 3)
}

func TestLoadDefaults(t *testing.T) {
	_, p, err := Load(afero.NewMemMapFs(), "")
	require.NoError(t, err)
	require.Equal(t, Default(), p)
	require.Equal(t, cloth.DefaultParams(), p.Params)
	require.True(t, p.Params.AutoCollisions)
	require.True(t, p.Params.SphereCollisions)
}

func TestLoadFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/presets/flag.toml", testPreset)

	_, p, err := Load(fs, "/presets/flag.toml")
	require.NoError(t, err)

	require.Equal(t, float32(0.02), p.Dt)
	require.Equal(t, int64(7), p.Seed)
	require.Equal(t, 10, p.Grid.GridWidth)
	require.Equal(t, 5, p.Grid.GridHeight)
	require.Equal(t, Default().Grid.Width, p.Grid.Width)
	require.Equal(t, float32(0.5), p.Params.WindTarget)
	require.Equal(t, V.Vec32{0, -1, 0}, p.Params.Gravity)
	require.Equal(t, float32(2), p.Params.Springs.K0)
	require.Equal(t, Default().Params.Springs.V0, p.Params.Springs.V0)
	require.Equal(t, []Sphere{{Center: V.Vec32{0, -1, 0}, Radius: 0.5}}, p.Spheres)
}

func TestLoadYAML(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/flag.yaml", "params:\n  wind: 0.25\n  gravity: [0, -2, 0]\n")

	_, p, err := Load(fs, "/flag.yaml")
	require.NoError(t, err)
	require.Equal(t, float32(0.25), p.Params.WindTarget)
	require.Equal(t, V.Vec32{0, -2, 0}, p.Params.Gravity)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		content string
	}{
		{
			name: "missing file",
			path: "/missing.toml",
		},
		{
			name:    "malformed toml",
			path:    "/bad.toml",
			content: "[grid\n",
		},
		{
			name:    "short vector",
			path:    "/short.toml",
			content: "[params]\ngravity = [0.0, 1.0]\n",
		},
		{
			name:    "negative dt",
			path:    "/dt.toml",
			content: "dt = -1.0\n",
		},
		{
			name:    "cloth outside octree",
			path:    "/octree.toml",
			content: "[octree]\nextent = [1.0, 1.0, 1.0]\n",
		},
		{
			name:    "degenerate grid",
			path:    "/grid.toml",
			content: "[grid]\ngrid_width = 1\n",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			if test.content != "" {
				writeFile(t, fs, test.path, test.content)
			}

			_, _, err := Load(fs, test.path)
			require.Error(t, err)
			require.True(t, errors.IsType(err, ErrTypeConfig))
		})
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("DRAPE_PARAMS_WIND", "0.75")
	t.Setenv("DRAPE_PARAMS_GRAVITY", "0,-0.5,0")
	t.Setenv("DRAPE_GRID_GRID_WIDTH", "12")

	_, p, err := Load(afero.NewMemMapFs(), "")
	require.NoError(t, err)
	require.Equal(t, float32(0.75), p.Params.WindTarget)
	require.Equal(t, V.Vec32{0, -0.5, 0}, p.Params.Gravity)
	require.Equal(t, 12, p.Grid.GridWidth)
}

func TestLoadFlags(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Float32("dt", 0.01, "")
	flags.String("log-level", "info", "")
	require.NoError(t, flags.Parse([]string{"--log-level", "debug"}))

	_, p, err := Load(afero.NewMemMapFs(), "",
		WithFlag("dt", flags.Lookup("dt")),
		WithFlag("log_level", flags.Lookup("log-level")),
	)
	require.NoError(t, err)
	require.Equal(t, "debug", p.LogLevel)
	require.Equal(t, Default().Dt, p.Dt)
}

func TestEncodeRoundTrip(t *testing.T) {
	p := Default()
	p.Params.WindTarget = 0.3
	p.Spheres = p.Spheres[:1]

	b, err := Encode(p)
	require.NoError(t, err)
	require.Contains(t, string(b), "[[spheres]]")

	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/dump.toml", string(b))
	_, loaded, err := Load(fs, "/dump.toml")
	require.NoError(t, err)
	require.Equal(t, p, loaded)

	unknown, err := Check(fs, "/dump.toml")
	require.NoError(t, err)
	require.Empty(t, unknown)
}

func TestEncodeDefaults(t *testing.T) {
	b, err := Encode(Default())
	require.NoError(t, err)

	text := string(b)
	springs := strings.Index(text, "[params.springs]")
	require.Positive(t, springs, text)
	for _, key := range []string{"gravity =", "wind =", "repulse_max_dst =", "sphere_collisions ="} {
		i := strings.Index(text, key)
		require.Positive(t, i, key)
		require.Less(t, i, springs, key)
	}

	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/defaults.toml", text)
	unknown, err := Check(fs, "/defaults.toml")
	require.NoError(t, err)
	require.Empty(t, unknown)

	_, loaded, err := Load(fs, "/defaults.toml")
	require.NoError(t, err)
	require.Equal(t, Default(), loaded)
}

func TestCheck(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/typo.toml", "[params]\nwindd = 0.3\n\n[grid]\ngrid_width = 10\n")
	writeFile(t, fs, "/flag.json", `{"params": {"windd": 0.3}}`)

	unknown, err := Check(fs, "/typo.toml")
	require.NoError(t, err)
	require.Equal(t, []string{"params.windd"}, unknown)

	unknown, err = Check(fs, "/flag.json")
	require.NoError(t, err)
	require.Empty(t, unknown)

	_, err = Check(fs, "/missing.toml")
	require.True(t, errors.IsType(err, ErrTypeConfig))
}

func TestTunerSet(t *testing.T) {
	tuner, err := Open(afero.NewMemMapFs(), "")
	require.NoError(t, err)

	require.NoError(t, tuner.Set("params.wind", "0.3"))
	require.Equal(t, float32(0.3), tuner.Params().WindTarget)

	require.NoError(t, tuner.Set("params.gravity", "0, -0.1, 0"))
	require.Equal(t, V.Vec32{0, -0.1, 0}, tuner.Params().Gravity)

	require.NoError(t, tuner.Set("params.auto_collisions", "false"))
	require.False(t, tuner.Params().AutoCollisions)

	require.NoError(t, tuner.Set("octree.depth", "5"))
	require.Equal(t, 5, tuner.Preset().Octree.Depth)

	err = tuner.Set("params.nope", "1")
	require.True(t, errors.IsType(err, ErrTypeConfig))

	err = tuner.Set("params.wind", "windy")
	require.True(t, errors.IsType(err, ErrTypeConfig))

	err = tuner.Set("dt", "-1")
	require.True(t, errors.IsType(err, ErrTypeConfig))
	require.Equal(t, Default().Dt, tuner.Preset().Dt)
	require.Equal(t, float32(0.3), tuner.Params().WindTarget)
}

func TestTunerUpdate(t *testing.T) {
	tuner, err := Open(afero.NewMemMapFs(), "")
	require.NoError(t, err)

	tuner.Update(func(p *cloth.Params) {
		p.Wireframe = !p.Wireframe
		p.WindTarget += 0.5
	})

	params := tuner.Params()
	require.True(t, params.Wireframe)
	require.Equal(t, Default().Params.WindTarget+0.5, params.WindTarget)
}

func TestTunerReload(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/flag.toml", testPreset)

	tuner, err := Open(fs, "/flag.toml")
	require.NoError(t, err)
	require.Equal(t, float32(0.5), tuner.Params().WindTarget)

	writeFile(t, fs, "/flag.toml", "[params]\nwind = 0.125\n")
	require.NoError(t, tuner.Reload())
	require.Equal(t, float32(0.125), tuner.Params().WindTarget)
	require.Equal(t, Default().Grid, tuner.Preset().Grid)

	writeFile(t, fs, "/flag.toml", "dt = 0.0\n")
	err = tuner.Reload()
	require.True(t, errors.IsType(err, ErrTypeConfig))
	require.Equal(t, float32(0.125), tuner.Params().WindTarget)
}

func TestTunerConfigChanged(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/flag.toml", testPreset)

	tuner, err := Open(fs, "/flag.toml")
	require.NoError(t, err)

	var reloaded []Preset
	tuner.onReload = func(p Preset) {
		reloaded = append(reloaded, p)
	}

	writeFile(t, fs, "/flag.toml", "[params]\nwind = 0.2\n")
	require.NoError(t, tuner.v.ReadInConfig())
	tuner.configChanged(fsnotify.Event{Name: "/flag.toml", Op: fsnotify.Write})

	require.Len(t, reloaded, 1)
	require.Equal(t, float32(0.2), reloaded[0].Params.WindTarget)
	require.Equal(t, float32(0.2), tuner.Params().WindTarget)
}

func TestTunerColliders(t *testing.T) {
	tuner, err := Open(afero.NewMemMapFs(), "")
	require.NoError(t, err)

	set := tuner.Preset().Colliders()
	tuner.MoveSphere(0, V.Vec32{0, 1, 0})
	tuner.MoveSphere(42, V.Vec32{0, 1, 0})
	tuner.ApplyColliders(&set)

	require.Equal(t, V.Vec32{0, -2, 2}, set.Spheres[0].Target)
	require.Equal(t, V.Vec32{0, -3, 2}, set.Spheres[0].Center)
	require.Equal(t, set.Spheres[1].Center, set.Spheres[1].Target)

	set.Ease(1)
	require.Equal(t, V.Vec32{0, -2, 2}, set.Spheres[0].Center)

	var empty geometry.ColliderSet
	tuner.ApplyColliders(&empty)
	require.Equal(t, Default().Params.SphereMultiplier, empty.Multiplier)
}
