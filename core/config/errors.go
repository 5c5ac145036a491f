package config

import "errors"

var (
	ErrInvalidPoolKind = errors.New("invalid pool kind")
	ErrInvalidPoolSize = errors.New("invalid pool size")
	ErrInvalidDuration = errors.New("invalid duration")
	ErrInvalidCache    = errors.New("invalid cache")
	ErrInvalidArchive  = errors.New("invalid archive")
)

var (
	ErrConfigParse = errors.New("config parse error")
	ErrEnvironment = errors.New("environment variable error")
)
