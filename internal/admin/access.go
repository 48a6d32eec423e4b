// Package admin dispatches operator console and chat commands.
package admin

// Access levels. Level 0 is a regular player and cannot run commands.
const (
	LevelUser      int32 = 0
	LevelModerator int32 = 1
	LevelAdmin     int32 = 100
)

// LevelName returns a display name for an access level.
func LevelName(level int32) string {
	switch {
	case level >= LevelAdmin:
		return "Admin"
	case level >= LevelModerator:
		return "Moderator"
	default:
		return "User"
	}
}
