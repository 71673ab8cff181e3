package config

import (
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli"
	"gopkg.in/yaml.v3"

	"github.com/orla-io/patron-feed/services/patreon"
	"github.com/orla-io/patron-feed/services/tier"
)

const (
	PathFlag = "config"
)

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   PathFlag,
			Usage:  "path to config file",
			Value:  "config.yaml",
			EnvVar: "CONFIG",
		},
	)
}

// Outputs holds the per-tier content values served to patrons.
type Outputs struct {
	Bronze string `yaml:"bronze"`
	Silver string `yaml:"silver"`
	Gold   string `yaml:"gold"`
}

// Config is an immutable configuration snapshot. It is never mutated in
// place, a reload builds a fresh Config and swaps it into the Store.
type Config struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURI  string `yaml:"redirect_uri"`
	CampaignID   string `yaml:"campaign_id"`

	// Exactly one of Outputs and MediaDir is set. In media mode Outputs
	// is filled from a directory scan during Load.
	Outputs  *Outputs `yaml:"outputs"`
	MediaDir string   `yaml:"media_dir"`
}

// Load reads, parses and validates the config file at path. In media mode
// it also scans the media directory, so a returned Config always carries a
// complete set of tier outputs. Any failure leaves nothing applied.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config file")
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, errors.Wrap(err, "parse config file")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.MediaDir != "" {
		files, err := ScanMediaDir(cfg.MediaDir)
		if err != nil {
			return nil, errors.Wrap(err, "scan media dir")
		}
		cfg.Outputs = &Outputs{
			Bronze: files[tier.Bronze],
			Silver: files[tier.Silver],
			Gold:   files[tier.Gold],
		}
	}
	return &cfg, nil
}

func (s *Config) validate() error {
	required := map[string]string{
		"client_id":     s.ClientID,
		"client_secret": s.ClientSecret,
		"redirect_uri":  s.RedirectURI,
		"campaign_id":   s.CampaignID,
	}
	for name, v := range required {
		if v == "" {
			return errors.Errorf("%v is required", name)
		}
	}
	if s.Outputs == nil && s.MediaDir == "" {
		return errors.New("either outputs or media_dir must be set")
	}
	if s.Outputs != nil && s.MediaDir != "" {
		return errors.New("outputs and media_dir are mutually exclusive")
	}
	if s.Outputs != nil {
		if s.Outputs.Bronze == "" || s.Outputs.Silver == "" || s.Outputs.Gold == "" {
			return errors.New("outputs must set bronze, silver and gold")
		}
	}
	return nil
}

// Credentials returns the OAuth client credentials of this snapshot.
func (s *Config) Credentials() patreon.Credentials {
	return patreon.Credentials{
		ClientID:     s.ClientID,
		ClientSecret: s.ClientSecret,
		RedirectURI:  s.RedirectURI,
	}
}

// Output returns the content value configured for t.
func (s *Config) Output(t tier.Tier) string {
	switch t {
	case tier.Bronze:
		return s.Outputs.Bronze
	case tier.Silver:
		return s.Outputs.Silver
	case tier.Gold:
		return s.Outputs.Gold
	}
	return ""
}
