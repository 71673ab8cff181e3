package static

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

const (
	assetsDirFlag = "assets-dir"
)

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   assetsDirFlag,
			Usage:  "directory with web assets",
			Value:  "public",
			EnvVar: "ASSETS_DIR",
		},
	)
}

// RegisterHandler serves the asset directory for unmatched routes with a
// single-page-app fallback to index.html.
func RegisterHandler(c *cli.Context, r *gin.Engine) error {
	dir := c.String(assetsDirFlag)
	if dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); err != nil {
		return errors.Wrapf(err, "assets dir %v is not accessible", dir)
	}
	index := filepath.Join(dir, "index.html")
	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.Status(http.StatusNotFound)
			return
		}
		p := filepath.Join(dir, filepath.Clean("/"+c.Request.URL.Path))
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			c.File(p)
			return
		}
		c.File(index)
	})
	return nil
}
