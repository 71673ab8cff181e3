package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	cs "github.com/webtor-io/common-services"

	"github.com/orla-io/patron-feed/handlers/feed"
	sta "github.com/orla-io/patron-feed/handlers/static"
	"github.com/orla-io/patron-feed/services/common"
	"github.com/orla-io/patron-feed/services/config"
	"github.com/orla-io/patron-feed/services/patreon"
	"github.com/orla-io/patron-feed/services/tier"
	w "github.com/orla-io/patron-feed/services/web"
)

func makeServeCMD() cli.Command {
	serveCMD := cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Serves web server",
		Action:  serve,
	}
	configureServe(&serveCMD)
	return serveCMD
}

func configureServe(c *cli.Command) {
	c.Flags = cs.RegisterProbeFlags(c.Flags)
	c.Flags = cs.RegisterPprofFlags(c.Flags)
	c.Flags = w.RegisterFlags(c.Flags)
	c.Flags = config.RegisterFlags(c.Flags)
	c.Flags = patreon.RegisterFlags(c.Flags)
	c.Flags = sta.RegisterFlags(c.Flags)
}

func serve(c *cli.Context) error {
	// Setting HTTP Client
	cl := &http.Client{
		Timeout: c.Duration(patreon.ApiTimeoutFlag),
	}

	// Setting Config
	path := c.String(config.PathFlag)
	cfg, err := config.Load(path)
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	// Setting Config Store
	store := config.NewStore(cfg)

	// Setting Reloader
	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)
	defer signal.Stop(reload)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	config.NewReloader(path, store, reload).Start(ctx)

	var servers []cs.Servable
	// Setting Probe
	probe := cs.NewProbe(c)
	if probe != nil {
		servers = append(servers, probe)
		defer probe.Close()
	}

	// Setting Pprof
	pprof := cs.NewPprof(c)
	if pprof != nil {
		servers = append(servers, pprof)
		defer pprof.Close()
	}

	// Setting Gin
	r := gin.Default()
	r.RedirectTrailingSlash = false

	// CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"content-type"},
		MaxAge:       1 * time.Minute,
	}))

	// Setting RequestID
	r.Use(common.RequestID())

	// Setting Patreon Api
	papi := patreon.New(c, cl)

	// Setting Tier Resolver
	res := tier.NewResolver(papi)

	// Setting FeedHandler
	feed.RegisterHandler(r, papi, res, store)

	// Setting Static
	err = sta.RegisterHandler(c, r)
	if err != nil {
		return err
	}

	// Setting Web
	web, err := w.New(c, r)
	if err != nil {
		return err
	}
	servers = append(servers, web)
	defer web.Close()

	// Setting Serve
	serve := cs.NewServe(servers...)

	// And SERVE!
	err = serve.Serve()
	if err != nil {
		log.WithError(err).Error("got server error")
	}
	return err
}
