package api

import (
	"encoding/json"
	"net/http"
	"runtime"
)

type buildInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// VersionHandler serves build metadata. The values arrive via ldflags;
// blanks fall back to the dev placeholders.
func VersionHandler(version, gitCommit, buildDate string) http.Handler {
	info := buildInfo{
		Version:   orElse(version, "dev"),
		GitCommit: orElse(gitCommit, "unknown"),
		BuildDate: orElse(buildDate, "unknown"),
		GoVersion: runtime.Version(),
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(info)
	})
}

func orElse(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
