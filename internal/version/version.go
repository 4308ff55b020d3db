// Package version holds build metadata stamped in with -ldflags, e.g.
//
//	-X github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/version.Commit=$(git rev-parse HEAD)
package version

var (
	Version = "dev"
	Commit  = "none"
	Date    = ""
	Dirty   = "false"
)

// Build is the metadata served at /api/version and logged on startup.
type Build struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date,omitempty"`
	Dirty   bool   `json:"dirty"`
}

// Current returns the stamped build metadata.
func Current() Build {
	return Build{Version: Version, Commit: Commit, Date: Date, Dirty: Dirty == "true"}
}
