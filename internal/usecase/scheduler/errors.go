package scheduler

import "errors"

var (
	errAlreadyRunning = errors.New("scheduler already running")
	errNotRunning     = errors.New("scheduler not running")
)
