package version

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/Masterminds/semver"
)

const devVersion = "0.0.0-dev"

// Sobrescritos por ldflags:
//
//	-X github.com/diillson/finly-dashboard-go/pkg/version.Version=1.2.0
var (
	Version   = devVersion
	Commit    = ""
	BuildTime = ""
)

// Info describes the running binary.
type Info struct {
	Version   string
	Commit    string
	BuildTime string
	Dirty     bool
}

// Current returns the version set by ldflags, completed with the VCS data
// the Go toolchain embeds in module builds.
func Current() Info {
	info := Info{Version: Version, Commit: Commit, BuildTime: BuildTime}
	if info.Version == "" {
		info.Version = devVersion
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	settings := make(map[string]string, len(bi.Settings))
	for _, s := range bi.Settings {
		settings[s.Key] = s.Value
	}

	if info.Commit == "" && len(settings["vcs.revision"]) >= 7 {
		info.Commit = settings["vcs.revision"][:7]
	}
	if info.BuildTime == "" {
		if ts, err := time.Parse(time.RFC3339, settings["vcs.time"]); err == nil {
			info.BuildTime = ts.UTC().Format(time.RFC3339)
		}
	}
	info.Dirty = strings.EqualFold(settings["vcs.modified"], "true")

	// go install ...@v1.2.3 grava a versão do módulo
	if info.Version == devVersion && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = strings.TrimPrefix(bi.Main.Version, "v")
	}
	return info
}

// String formats the version for --version and the banner, e.g.
// "1.2.3 (commit: abc1234, built at: 2025-10-23T10:20:30Z)".
func (i Info) String() string {
	ver := i.Version
	if i.Dirty {
		ver += "-dirty"
	}
	switch {
	case i.Commit == "" && i.BuildTime == "":
		return ver + " (development)"
	case i.BuildTime == "":
		return fmt.Sprintf("%s (commit: %s)", ver, i.Commit)
	case i.Commit == "":
		return fmt.Sprintf("%s (built at: %s)", ver, i.BuildTime)
	default:
		return fmt.Sprintf("%s (commit: %s, built at: %s)", ver, i.Commit, i.BuildTime)
	}
}

// IsDev reports whether the binary was built without a release version.
func (i Info) IsDev() bool {
	return strings.HasSuffix(i.Version, "-dev")
}

// Release is the latest published version found by CheckLatest.
type Release struct {
	Version string
	Newer   bool
}

// CheckLatest asks releaseURL for the latest release. The endpoint answers
// with a GitHub style document ({"tag_name": "v1.2.3"}). An empty url or a dev
// build skips the check and returns a nil release.
func CheckLatest(ctx context.Context, client *http.Client, releaseURL, current string) (*Release, error) {
	if releaseURL == "" || strings.HasSuffix(current, "-dev") {
		return nil, nil
	}
	if client == nil {
		client = &http.Client{Timeout: 3 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, releaseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid release url: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("release check failed with status code %d", resp.StatusCode)
	}

	var payload struct {
		TagName string `json:"tag_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("invalid release document: %w", err)
	}

	latest, err := semver.NewVersion(payload.TagName)
	if err != nil {
		return nil, fmt.Errorf("invalid release tag %q: %w", payload.TagName, err)
	}
	running, err := semver.NewVersion(strings.TrimSuffix(current, "-dirty"))
	if err != nil {
		return nil, fmt.Errorf("invalid current version %q: %w", current, err)
	}

	return &Release{
		Version: latest.String(),
		Newer:   latest.GreaterThan(running),
	}, nil
}
