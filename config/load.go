package config

import (
	"reflect"
	"strings"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml"
	"github.com/spf13/afero"
	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	V "diesel.com/drape/vector"
)

const (
	//EnvPrefix prefixes environment overrides: DRAPE_PARAMS_WIND=0.1.
	EnvPrefix = "DRAPE"
)

//Option customizes the viper instance before the preset is read.
type Option func(v *viper.Viper) error

//WithFlag binds a command line flag to a preset key. The flag only wins when
//it was set explicitly.
func WithFlag(key string, flag *pflag.Flag) Option {
	return func(v *viper.Viper) error {
		if flag == nil {
			return nil
		}
		return v.BindPFlag(key, flag)
	}
}

//Load reads the preset at path on top of the defaults. An empty path loads the
//defaults with environment and flag overrides only. Supported formats are the
//ones viper knows by extension: toml, yaml, json.
func Load(fs afero.Fs, path string, options ...Option) (*viper.Viper, Preset, error) {
	v, err := newViper(fs)
	if err != nil {
		return nil, Preset{}, err
	}

	for _, opt := range options {
		if err := opt(v); err != nil {
			return nil, Preset{}, errors.New("binding option failed").
				WithType(ErrTypeConfig).
				Wrap(err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, Preset{}, errors.New("reading preset failed").
				WithType(ErrTypeConfig).
				WithTag("path", path).
				Wrap(err)
		}
	}

	p, err := decode(v)
	if err != nil {
		return nil, Preset{}, err
	}
	return v, p, nil
}

func newViper(fs afero.Fs) (*viper.Viper, error) {
	v := viper.New()
	v.SetFs(fs)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	b, err := Encode(Default())
	if err != nil {
		return nil, err
	}
	tree, err := toml.LoadBytes(b)
	if err != nil {
		return nil, errors.New("loading defaults failed").
			WithType(ErrTypeConfig).
			Wrap(err)
	}
	setDefaults(v, "", tree.ToMap())
	return v, nil
}

//setDefaults registers every leaf key so env overrides and AllSettings see it.
func setDefaults(v *viper.Viper, prefix string, values map[string]interface{}) {
	for k, val := range values {
		key := prefix + k
		if sub, ok := val.(map[string]interface{}); ok {
			setDefaults(v, key+".", sub)
			continue
		}
		v.SetDefault(key, val)
	}
}

func decode(v *viper.Viper) (Preset, error) {
	var p Preset
	hook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.DecodeHookFuncType(vec32Hook),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
	if err := v.Unmarshal(&p, viper.DecodeHook(hook)); err != nil {
		return Preset{}, errors.New("decoding preset failed").
			WithType(ErrTypeConfig).
			Wrap(err)
	}

	if err := p.Validate(); err != nil {
		return Preset{}, err
	}
	return p, nil
}

var vec32Type = reflect.TypeOf(V.Vec32{})

//vec32Hook decodes "x,y,z" strings (env, flags) and 3 element lists (files)
//into vectors.
func vec32Hook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != vec32Type {
		return data, nil
	}

	var parts []interface{}
	switch d := data.(type) {
	case string:
		d = strings.Trim(strings.TrimSpace(d), "[]()")
		for _, s := range strings.Split(d, ",") {
			parts = append(parts, strings.TrimSpace(s))
		}
	case []interface{}:
		parts = d
	case []float64:
		for _, f := range d {
			parts = append(parts, f)
		}
	default:
		return data, nil
	}

	if len(parts) != 3 {
		return nil, errors.Newf("vector needs 3 components, got %d", len(parts)).
			WithType(ErrTypeConfig).
			WithTag("value", data)
	}

	var vec V.Vec32
	for i, part := range parts {
		f, err := cast.ToFloat32E(part)
		if err != nil {
			return nil, errors.New("invalid vector component").
				WithType(ErrTypeConfig).
				WithTag("value", data).
				Wrap(err)
		}
		vec[i] = f
	}
	return vec, nil
}
