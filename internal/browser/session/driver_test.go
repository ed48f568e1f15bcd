package session

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/trackrunner/internal/config"
)

// pinDiscovery replaces the discovery inputs for the duration of a test.
func pinDiscovery(t *testing.T, candidates, names []string, look func(string) (string, error)) {
	t.Helper()
	origCandidates, origNames, origLook := execCandidates, pathNames, lookPath
	execCandidates, pathNames, lookPath = candidates, names, look
	t.Cleanup(func() {
		execCandidates, pathNames, lookPath = origCandidates, origNames, origLook
	})
}

func writeExecutable(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))
	return path
}

func notFound(string) (string, error) { return "", exec.ErrNotFound }

func TestResolveExecPath(t *testing.T) {
	t.Run("explicit path wins", func(t *testing.T) {
		dir := t.TempDir()
		bin := writeExecutable(t, dir, "chrome")
		pinDiscovery(t, nil, nil, notFound)

		got, err := ResolveExecPath(bin)
		require.NoError(t, err)
		assert.Equal(t, bin, got)
	})

	t.Run("explicit path that does not exist fails", func(t *testing.T) {
		pinDiscovery(t, nil, nil, notFound)
		_, err := ResolveExecPath(filepath.Join(t.TempDir(), "missing"))
		assert.ErrorIs(t, err, ErrNoBrowser)
	})

	t.Run("non-executable file is skipped", func(t *testing.T) {
		dir := t.TempDir()
		plain := filepath.Join(dir, "chromium")
		require.NoError(t, os.WriteFile(plain, []byte("x"), 0o644))
		bin := writeExecutable(t, dir, "google-chrome")
		pinDiscovery(t, []string{plain, bin}, nil, notFound)

		got, err := ResolveExecPath("")
		require.NoError(t, err)
		assert.Equal(t, bin, got)
	})

	t.Run("falls back to PATH lookup", func(t *testing.T) {
		pinDiscovery(t, []string{filepath.Join(t.TempDir(), "nope")}, []string{"chromium"}, func(name string) (string, error) {
			if name == "chromium" {
				return "/opt/bin/chromium", nil
			}
			return "", exec.ErrNotFound
		})

		got, err := ResolveExecPath("")
		require.NoError(t, err)
		assert.Equal(t, "/opt/bin/chromium", got)
	})

	t.Run("nothing available", func(t *testing.T) {
		pinDiscovery(t, []string{filepath.Join(t.TempDir(), "nope")}, []string{"chromium"}, notFound)

		_, err := ResolveExecPath("")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNoBrowser))
	})
}

func flagMap(flags []launchFlag) map[string]interface{} {
	m := make(map[string]interface{}, len(flags))
	for _, f := range flags {
		m[f.name] = f.value
	}
	return m
}

func TestLaunchFlags(t *testing.T) {
	base := config.NewDefaultConfig().Browser

	t.Run("defaults use the new headless mode", func(t *testing.T) {
		m := flagMap(launchFlags(base))
		assert.Equal(t, "new", m["headless"])
		assert.Equal(t, false, m["hide-scrollbars"], "new headless keeps scrollbars like an interactive window")
		assert.Equal(t, true, m["no-sandbox"])
		assert.Equal(t, true, m["disable-dev-shm-usage"])
		assert.Equal(t, true, m["no-first-run"])
	})

	t.Run("old and off modes", func(t *testing.T) {
		old := base
		old.HeadlessMode = "old"
		oldFlags := flagMap(launchFlags(old))
		assert.Equal(t, true, oldFlags["headless"])
		assert.NotContains(t, oldFlags, "hide-scrollbars", "old headless keeps the allocator default")

		off := base
		off.HeadlessMode = "off"
		m := flagMap(launchFlags(off))
		assert.Equal(t, false, m["headless"])
		assert.Equal(t, false, m["hide-scrollbars"])
	})

	t.Run("extra args are normalised", func(t *testing.T) {
		cfg := base
		cfg.Args = []string{"--lang=en-GB", "no-zygote", "  ", "--proxy-server=http://127.0.0.1:3128"}
		flags := launchFlags(cfg)
		m := flagMap(flags)
		assert.Equal(t, "en-GB", m["lang"])
		assert.Equal(t, true, m["no-zygote"])
		assert.Equal(t, "http://127.0.0.1:3128", m["proxy-server"])
		assert.NotContains(t, m, "")

		// Extra args come last so they can override the unattended set.
		assert.Equal(t, "proxy-server", flags[len(flags)-1].name)
	})

	t.Run("allocator options include every flag", func(t *testing.T) {
		opts := allocatorOptions(base, "/usr/bin/chromium", "/tmp/profile")
		// defaults + exec path + profile + window + user agent + flags
		want := len(chromedp.DefaultExecAllocatorOptions) + 4 + len(launchFlags(base))
		assert.Len(t, opts, want)
	})
}
