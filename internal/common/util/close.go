package util

import (
	"io"

	log "github.com/sirupsen/logrus"
)

// CloseResource closes c, logging rather than propagating any error — used
// for best-effort cleanup in defer statements.
func CloseResource(name string, c io.Closer) {
	if err := c.Close(); err != nil {
		log.WithError(err).Warnf("failed to close %s cleanly", name)
	}
}
