//go:build nogl
// +build nogl

package app

import (
	"context"

	"github.com/aukilabs/go-tooling/pkg/errors"

	"diesel.com/drape/cloth"
	"diesel.com/drape/config"
)

func Run(ctx context.Context, tuner *config.Tuner, sim *cloth.Simulation, opts ViewerOptions) error {
	return errors.New("built without OpenGL support").
		WithType(ErrTypeViewer)
}
