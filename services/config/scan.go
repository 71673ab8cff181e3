package config

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/orla-io/patron-feed/services/tier"
)

var tierPrefixes = map[tier.Tier]string{
	tier.Bronze: "bronze-",
	tier.Silver: "silver-",
	tier.Gold:   "gold-",
}

type MissingTierError struct {
	Tier tier.Tier
}

func (e *MissingTierError) Error() string {
	return "no file for tier " + e.Tier.String()
}

// ScanMediaDir picks one file per tier from dir. Files are matched by the
// tier name prefix and the latest modification time wins, ties keep the
// first seen entry. Any filesystem error aborts the scan, files with a
// failed metadata lookup are never silently skipped.
func ScanMediaDir(dir string) (map[tier.Tier]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "read media dir")
	}
	files := map[tier.Tier]string{}
	mtimes := map[tier.Tier]time.Time{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		for t, prefix := range tierPrefixes {
			if !strings.HasPrefix(name, prefix) {
				continue
			}
			info, err := e.Info()
			if err != nil {
				return nil, errors.Wrapf(err, "stat %v", name)
			}
			if _, ok := files[t]; !ok || info.ModTime().After(mtimes[t]) {
				files[t] = name
				mtimes[t] = info.ModTime()
			}
		}
	}
	for _, t := range tier.Tiers {
		if _, ok := files[t]; !ok {
			return nil, &MissingTierError{Tier: t}
		}
	}
	return files, nil
}
