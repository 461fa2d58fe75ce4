// Package scenario is the root of an SDK that builds the actions of a
// blockchain test scenario: implicit accounts, contract originations, contract
// calls and assertions on the simulated chain state. The actions are grouped
// in test suites and submitted to an external execution engine.
//
// The root package only holds the global logger. The data model lives in the
// action and suite packages, and the wire format in their json sub-packages.
package scenario

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Version is the version of the SDK.
const Version = "0.3.0"

var logout = zerolog.ConsoleWriter{
	Out:        os.Stderr,
	TimeFormat: time.RFC3339,
}

// Logger is a globally available logger instance. The level is info by default
// and can be changed with SetLogLevel.
var Logger = zerolog.New(logout).
	With().Timestamp().Logger().
	Level(zerolog.InfoLevel)

// SetLogLevel parses the level and applies it to the global logger. An empty
// level leaves the logger untouched.
func SetLogLevel(level string) error {
	if level == "" {
		return nil
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}

	Logger = Logger.Level(lvl)

	return nil
}
