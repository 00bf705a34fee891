package db

import "github.com/phigen/phivault/internal/logging"

func dbLogf(format string, v ...any) {
	logging.Debugf(format, v...)
}
