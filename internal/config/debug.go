package config

import "os"

func IsDebug() bool {
	return os.Getenv("RIZZA_DEBUG") == "1"
}
