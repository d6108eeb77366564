package securefile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// EnvVar selects a per-environment state subfolder (local/ or develop/).
const EnvVar = "QWR_ENV"

// AtomicWriteFile writes data next to path and renames it into place, so
// readers never see a partial file.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	_ = os.Remove(tmp)

	if err := os.WriteFile(tmp, data, perm); err != nil {
		return errors.Wrap(err, "securefile: write tmp")
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(err, "securefile: rename")
	}
	return nil
}

// WriteJSON writes v as indented JSON, creating parent directories with
// permDir.
func WriteJSON[T any](path string, v T, permFile, permDir os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, permDir); err != nil {
		return errors.Wrapf(err, "securefile: mkdir %s", dir)
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "securefile: marshal")
	}
	return AtomicWriteFile(path, b, permFile)
}

// ResolvePath returns the first existing candidate for app/filename, or the
// preferred location when none exists yet.
func ResolvePath(app, filename string) (string, error) {
	env, err := EnvFolder()
	if err != nil {
		return "", err
	}
	cands, err := candidates(app, filename, env)
	if err != nil {
		return "", err
	}
	for _, p := range cands {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return cands[0], nil
}

// candidates lists <home>/.config/<app>/<env>/<filename> for the snap home
// and HOME, then the OS config dir.
func candidates(app, filename, env string) ([]string, error) {
	if app == "" || filename == "" {
		return nil, errors.New("securefile: app and filename are required")
	}

	var out []string
	seen := map[string]bool{}
	add := func(base string) {
		p := filepath.Join(base, app, env, filename)
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, key := range []string{"SNAP_REAL_HOME", "HOME"} {
		if home := os.Getenv(key); home != "" {
			add(filepath.Join(home, ".config"))
		}
	}
	dir, err := os.UserConfigDir()
	if err == nil {
		add(dir)
	}
	if len(out) == 0 {
		return nil, errors.Wrap(err, "securefile: no config directory")
	}
	return out, nil
}

func EnvFolder() (string, error) {
	raw := strings.TrimSpace(os.Getenv(EnvVar))
	switch strings.ToLower(raw) {
	case "", "prod", "production":
		return "", nil
	case "local":
		return "local", nil
	case "dev", "develop", "development":
		return "develop", nil
	default:
		return "", errors.Newf("securefile: invalid %s %q (allowed: local, develop, empty)", EnvVar, raw)
	}
}
