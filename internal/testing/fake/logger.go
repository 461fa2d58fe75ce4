package fake

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// CheckLog returns a logger and a function to check that a message has been
// logged by the logger.
func CheckLog(msg string) (zerolog.Logger, func(t *testing.T)) {
	buffer := new(bytes.Buffer)

	check := func(t *testing.T) {
		require.True(t, strings.Contains(buffer.String(), msg),
			"message %q not found in %q", msg, buffer.String())
	}

	return zerolog.New(buffer), check
}
