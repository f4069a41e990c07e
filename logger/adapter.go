package logger

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Adapter exposes a zerolog.Logger through Debug/Info/Warn/Error(msg, args...)
// where args are alternating keys and values.
type Adapter struct {
	log zerolog.Logger
}

// NewAdapter wraps l
func NewAdapter(l zerolog.Logger) *Adapter {
	return &Adapter{log: l}
}

func (a *Adapter) Debug(msg string, args ...any) {
	a.log.Debug().Fields(fields(args)).Msg(msg)
}

func (a *Adapter) Info(msg string, args ...any) {
	a.log.Info().Fields(fields(args)).Msg(msg)
}

func (a *Adapter) Warn(msg string, args ...any) {
	a.log.Warn().Fields(fields(args)).Msg(msg)
}

func (a *Adapter) Error(msg string, args ...any) {
	a.log.Error().Fields(fields(args)).Msg(msg)
}

// fields turns key/value pairs into a map. A dangling key is kept with a
// "[MISSING]" value and errors are rendered with Error().
func fields(args []any) map[string]any {
	if len(args) == 0 {
		return nil
	}
	out := make(map[string]any, (len(args)+1)/2)
	for i := 0; i < len(args); i += 2 {
		key := fmt.Sprint(args[i])
		if i+1 >= len(args) {
			out[key] = "[MISSING]"
			continue
		}
		val := args[i+1]
		if err, ok := val.(error); ok && err != nil {
			val = err.Error()
		}
		out[key] = val
	}
	return out
}
