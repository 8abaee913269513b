package instance

import (
	"os"

	"github.com/angelmondragon/jewelry-admin/pkg/env"
)

const fallbackID = "console-0"

// GetID identifies this console process in logs. JEWELRY_INSTANCE_ID wins, then the
// hostname.
func GetID() string {
	if id := env.Get("JEWELRY_INSTANCE_ID", ""); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return fallbackID
}
