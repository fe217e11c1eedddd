package config

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/aukilabs/go-tooling/pkg/errors"
	gotoml "github.com/pelletier/go-toml"
	"github.com/spf13/afero"
)

//Encode renders a preset as TOML, keeping the struct field order.
func Encode(p Preset) ([]byte, error) {
	var b bytes.Buffer
	if err := gotoml.NewEncoder(&b).Order(gotoml.OrderPreserve).Encode(p); err != nil {
		return nil, errors.New("encoding preset failed").
			WithType(ErrTypeConfig).
			Wrap(err)
	}
	return b.Bytes(), nil
}

//Check strictly decodes a TOML preset and returns the keys that do not map to
//any preset field. Viper silently ignores those, so a typo would otherwise
//fall back to a default. Other formats are not checked.
func Check(fs afero.Fs, path string) ([]string, error) {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".toml" {
		return nil, nil
	}

	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.New("reading preset failed").
			WithType(ErrTypeConfig).
			WithTag("path", path).
			Wrap(err)
	}

	var p Preset
	md, err := toml.Decode(string(b), &p)
	if err != nil {
		return nil, errors.New("parsing preset failed").
			WithType(ErrTypeConfig).
			WithTag("path", path).
			Wrap(err)
	}

	var unknown []string
	for _, k := range md.Undecoded() {
		unknown = append(unknown, k.String())
	}
	return unknown, nil
}
