package logging

import (
	"fmt"
	"path/filepath"
	"time"
)

// LogFilePath builds a log file path using OS-appropriate path separators.
// role keeps the files of two peers on one machine apart.
func LogFilePath(logsDir, name, role string, sessionStart time.Time) string {
	return filepath.Join(
		logsDir,
		fmt.Sprintf("%s.%s.%s.log", name, role, sessionStart.Format("20060102_150405")),
	)
}
