package config

import "errors"

const (
	DefaultHome        = "~/.ondevice"
	DefaultEnvironment = "dev"
)

var (
	ErrHomeNotSet       = errors.New("ondevice home directory is not set")
	ErrHomeExpandFailed = errors.New("failed to expand ondevice home directory")
	ErrModelPathNotSet  = errors.New("model path is not set")
)
