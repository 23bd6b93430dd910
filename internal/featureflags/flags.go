package featureflags

import (
	"os"
	"strings"
)

// LiveEvents gates the websocket event feed.
const LiveEvents = "live_events"

// Enabled reports whether a flag is switched on through the environment.
// A flag named "live_events" is read from FLAG_LIVE_EVENTS=1/true/yes/on.
func Enabled(name string) bool {
	switch strings.ToLower(os.Getenv("FLAG_" + strings.ToUpper(name))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
