// internal/browser/session/driver.go
package session

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/chromedp/chromedp"

	"github.com/xkilldash9x/trackrunner/internal/config"
)

// ErrNoBrowser is returned when no Chrome-compatible binary can be found.
var ErrNoBrowser = errors.New("no compatible Chrome/Chromium binary found")

// Variables so tests can pin discovery to a controlled environment.
var (
	execCandidates = []string{
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/local/bin/chromium",
		"/snap/bin/chromium",
		"/headless-shell/headless-shell",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		"/Applications/Chromium.app/Contents/MacOS/Chromium",
	}
	pathNames = []string{
		"google-chrome",
		"google-chrome-stable",
		"chromium",
		"chromium-browser",
		"headless-shell",
		"chrome",
	}
	lookPath = exec.LookPath
)

// ResolveExecPath finds the browser binary to launch. An explicitly requested
// path must exist; otherwise the well-known install locations are tried
// first and PATH second.
func ResolveExecPath(requested string) (string, error) {
	if path := strings.TrimSpace(requested); path != "" {
		if isExecutableFile(path) {
			return path, nil
		}
		return "", fmt.Errorf("%w: configured exec_path %q is not an executable file", ErrNoBrowser, path)
	}

	for _, candidate := range execCandidates {
		if isExecutableFile(candidate) {
			return candidate, nil
		}
	}
	for _, name := range pathNames {
		if path, err := lookPath(name); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("%w; tried %s and PATH entries %s",
		ErrNoBrowser, strings.Join(execCandidates, ", "), strings.Join(pathNames, ", "))
}

func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode()&0o111 != 0
}

// launchFlag is a single command line switch passed to the browser. A bool
// value of false removes a switch that the chromedp defaults would set.
type launchFlag struct {
	name  string
	value interface{}
}

// unattendedFlags keep the browser quiet when nobody is watching it.
var unattendedFlags = []launchFlag{
	{"disable-gpu", true},
	{"no-sandbox", true},
	{"disable-dev-shm-usage", true},
	{"disable-extensions", true},
	{"disable-background-networking", true},
	{"disable-default-apps", true},
	{"disable-sync", true},
	{"disable-translate", true},
	{"metrics-recording-only", true},
	{"mute-audio", true},
	{"no-first-run", true},
}

// launchFlags builds the switch list for a browser launch from configuration.
func launchFlags(cfg config.BrowserConfig) []launchFlag {
	flags := make([]launchFlag, 0, len(unattendedFlags)+len(cfg.Args)+2)

	switch strings.ToLower(cfg.HeadlessMode) {
	case "old":
		flags = append(flags, launchFlag{"headless", true})
	case "off":
		flags = append(flags, launchFlag{"headless", false}, launchFlag{"hide-scrollbars", false})
	default:
		// New headless renders like a windowed browser, scrollbars included.
		flags = append(flags, launchFlag{"headless", "new"}, launchFlag{"hide-scrollbars", false})
	}
	flags = append(flags, unattendedFlags...)

	// Extra args from config: "--flag" or "--key=value", dashes optional.
	for _, arg := range cfg.Args {
		arg = strings.TrimLeft(strings.TrimSpace(arg), "-")
		if arg == "" {
			continue
		}
		if key, value, ok := strings.Cut(arg, "="); ok {
			flags = append(flags, launchFlag{key, value})
			continue
		}
		flags = append(flags, launchFlag{arg, true})
	}
	return flags
}

// allocatorOptions converts configuration into chromedp allocator options.
func allocatorOptions(cfg config.BrowserConfig, execPath, profileDir string) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.ExecPath(execPath),
		chromedp.UserDataDir(profileDir),
		chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight),
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	for _, f := range launchFlags(cfg) {
		opts = append(opts, chromedp.Flag(f.name, f.value))
	}
	return opts
}
