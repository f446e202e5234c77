package domain

import (
	"errors"
	"fmt"
)

// ErrMissingFeeSchedule indica que una plataforma no tiene fila en la tabla de fees.
// Nunca se sustituye por fees en cero: eso falsearía todos los márgenes.
var ErrMissingFeeSchedule = errors.New("missing fee schedule")

// ConfigError es un error de configuración, fatal en el punto de lookup.
type ConfigError struct {
	Platform Platform
	Err      error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for platform %q: %v", e.Platform, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// AdapterError envuelve un fallo de un adapter concreto (red, auth, parseo).
// El scanner lo registra y trata la plataforma como vacía.
type AdapterError struct {
	Platform Platform
	Op       string
	Err      error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("adapter %s %s: %v", e.Platform, e.Op, e.Err)
}

func (e *AdapterError) Unwrap() error { return e.Err }
