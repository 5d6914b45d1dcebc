package logging

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// Interface is the minimal logging surface the service relies on.
type Interface interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

var (
	global Interface
	once   sync.Once
)

// Logger returns the lazily initialized zerolog-backed process logger.
func Logger() Interface {
	once.Do(func() {
		base := zerolog.New(os.Stdout).With().Timestamp().Logger()
		global = &adapter{log: base}
	})
	return global
}

type adapter struct {
	log zerolog.Logger
}

func (a *adapter) Infof(format string, args ...interface{}) {
	a.log.Info().Msgf(format, args...)
}

func (a *adapter) Errorf(format string, args ...interface{}) {
	a.log.Error().Msgf(format, args...)
}

func (a *adapter) Debugf(format string, args ...interface{}) {
	a.log.Debug().Msgf(format, args...)
}

func (a *adapter) Warnf(format string, args ...interface{}) {
	a.log.Warn().Msgf(format, args...)
}
