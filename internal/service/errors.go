package service

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalid         = errors.New("invalid")
	ErrSweepInProgress = errors.New("upload sweep already in progress")
	ErrOffline         = errors.New("network offline")
	ErrUploadsDisabled = errors.New("uploads disabled")
)
