package arenapath

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
)

// Discovery of the Arena client's output log across the installers we know
// about: native Windows (either drive), Lutris, and plain Wine prefixes.

const logFileName = "output_log.txt"

func relativeLogPath(username string) string {
	return filepath.Join("users", username, "AppData", "LocalLow",
		"Wizards Of The Coast", "MTGA", logFileName)
}

// Candidates returns the ordered list of locations the log may live at.
func Candidates() []string {
	username := "unknown"
	if u, err := user.Current(); err == nil {
		username = u.Username
	}
	onDrive := relativeLogPath(username)

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	return []string{
		filepath.Join("C:/", onDrive),
		filepath.Join("D:/", onDrive),
		filepath.Join(home, "Games", "magic-the-gathering-arena", "drive_c", onDrive),
		filepath.Join(home, ".wine", "drive_c", onDrive),
	}
}

// Resolve picks the log file to follow: an explicit override wins, otherwise
// the first candidate that exists on disk.
func Resolve(override string) (string, error) {
	if override != "" {
		return override, nil
	}

	candidates := Candidates()
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no Arena log file found; tried %v", candidates)
}
