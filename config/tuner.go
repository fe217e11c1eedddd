package config

import (
	"sync"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"diesel.com/drape/cloth"
	"diesel.com/drape/geometry"
	V "diesel.com/drape/vector"
)

//Tuner holds the live tunables. Key handlers and the preset file watcher
//write, the simulation loop reads a copy once per tick.
type Tuner struct {
	mutex    sync.RWMutex
	v        *viper.Viper
	preset   Preset
	onReload func(Preset)
}

//Open loads the preset at path and wraps it into a tuner.
func Open(fs afero.Fs, path string, options ...Option) (*Tuner, error) {
	v, p, err := Load(fs, path, options...)
	if err != nil {
		return nil, err
	}
	return NewTuner(v, p), nil
}

func NewTuner(v *viper.Viper, p Preset) *Tuner {
	return &Tuner{
		v:      v,
		preset: p,
	}
}

//Preset returns a copy of the current preset.
func (t *Tuner) Preset() Preset {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	p := t.preset
	p.Spheres = append([]Sphere(nil), t.preset.Spheres...)
	return p
}

func (t *Tuner) Params() cloth.Params {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return t.preset.Params
}

//Update edits the tunables in memory. A later file reload replaces them.
func (t *Tuner) Update(fn func(p *cloth.Params)) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	fn(&t.preset.Params)
}

//Set overrides a single preset key, e.g. "params.wind" = "0.3" or
//"params.gravity" = "0,-0.1,0". The value is parsed to the type of the
//current value.
func (t *Tuner) Set(key string, value string) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	current := t.v.Get(key)
	if current == nil {
		return errors.New("unknown preset key").
			WithType(ErrTypeConfig).
			WithTag("key", key)
	}

	var parsed interface{}
	var err error
	switch current.(type) {
	case bool:
		parsed, err = cast.ToBoolE(value)
	case int, int32, int64:
		parsed, err = cast.ToInt64E(value)
	case float32, float64:
		parsed, err = cast.ToFloat64E(value)
	default:
		parsed = value
	}
	if err != nil {
		return errors.New("invalid preset value").
			WithType(ErrTypeConfig).
			WithTag("key", key).
			WithTag("value", value).
			Wrap(err)
	}

	t.v.Set(key, parsed)
	p, err := decode(t.v)
	if err != nil {
		t.v.Set(key, current)
		return err
	}

	t.preset = p
	logs.WithTag("key", key).
		WithTag("value", value).
		Debug("preset key overridden")
	return nil
}

//Reload reads the preset file again. Tunables edited with Update are replaced.
func (t *Tuner) Reload() error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.v.ConfigFileUsed() != "" {
		if err := t.v.ReadInConfig(); err != nil {
			return errors.New("reading preset failed").
				WithType(ErrTypeConfig).
				WithTag("path", t.v.ConfigFileUsed()).
				Wrap(err)
		}
	}
	return t.apply()
}

//Watch reloads the tunables whenever the preset file changes on disk.
//onReload, if not nil, is called with the new preset after each reload.
func (t *Tuner) Watch(onReload func(Preset)) {
	t.mutex.Lock()
	t.onReload = onReload
	t.mutex.Unlock()

	if t.v.ConfigFileUsed() == "" {
		return
	}
	t.v.OnConfigChange(t.configChanged)
	t.v.WatchConfig()
}

func (t *Tuner) configChanged(e fsnotify.Event) {
	t.mutex.Lock()
	err := t.apply()
	p := t.preset
	onReload := t.onReload
	t.mutex.Unlock()

	if err != nil {
		logs.Warn(errors.New("reloading preset failed").
			WithTag("file", e.Name).
			WithTag("op", e.Op.String()).
			Wrap(err))
		return
	}

	logs.WithTag("file", e.Name).Info("preset reloaded")
	if onReload != nil {
		onReload(p)
	}
}

//apply decodes the viper state into the preset. The previous preset is kept
//when the new one is invalid. Callers hold the mutex.
func (t *Tuner) apply() error {
	p, err := decode(t.v)
	if err != nil {
		return err
	}
	t.preset = p
	return nil
}

//MoveSphere shifts the easing target of sphere i.
func (t *Tuner) MoveSphere(i int, delta V.Vec32) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if i < 0 || i >= len(t.preset.Spheres) {
		return
	}
	t.preset.Spheres[i].Center.Add(delta)
}

//ApplyColliders copies sphere targets and radii into set. Centers are left
//alone so the set can ease toward the new targets.
func (t *Tuner) ApplyColliders(set *geometry.ColliderSet) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	for i := range set.Spheres {
		if i >= len(t.preset.Spheres) {
			break
		}
		set.Spheres[i].Target = t.preset.Spheres[i].Center
		set.Spheres[i].Radius = t.preset.Spheres[i].Radius
	}
	set.RadiusDelta = t.preset.Params.RadiusDelta
	set.Multiplier = t.preset.Params.SphereMultiplier
}
