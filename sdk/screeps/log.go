package screeps

import (
	"fmt"

	"github.com/wippyai/screeps-wasm/game"
)

// Log sends msg to the host log. Characters outside Latin-1 are replaced
// with '?'.
func Log(level game.LogLevel, msg string) {
	raw, ok := latin1(msg)
	if !ok {
		raw = make([]byte, 0, len(msg))
		for _, r := range msg {
			if r > 0xff {
				r = '?'
			}
			raw = append(raw, byte(r))
		}
	}
	logMessage(level, raw)
}

func Debugf(format string, args ...any) {
	Log(game.LogDebug, fmt.Sprintf(format, args...))
}

func Infof(format string, args ...any) {
	Log(game.LogInfo, fmt.Sprintf(format, args...))
}

func Warnf(format string, args ...any) {
	Log(game.LogWarn, fmt.Sprintf(format, args...))
}

func Errorf(format string, args ...any) {
	Log(game.LogError, fmt.Sprintf(format, args...))
}
