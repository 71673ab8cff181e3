package web

import (
	"fmt"
	"net"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

const (
	hostFlag = "host"
	portFlag = "port"
)

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   hostFlag,
			Usage:  "listening host",
			Value:  "",
			EnvVar: "WEB_HOST",
		},
		cli.IntFlag{
			Name:   portFlag,
			Usage:  "listening port",
			Value:  8080,
			EnvVar: "WEB_PORT",
		},
	)
}

// Web serves the gin engine as a cs.Servable.
type Web struct {
	host string
	port int
	ln   net.Listener
	h    http.Handler
}

func New(c *cli.Context, h http.Handler) (*Web, error) {
	return &Web{
		host: c.String(hostFlag),
		port: c.Int(portFlag),
		h:    h,
	}, nil
}

func (s *Web) Serve() error {
	addr := fmt.Sprintf("%v:%v", s.host, s.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.ln = ln
	log.Infof("serving web at %v", addr)
	return http.Serve(ln, s.h)
}

func (s *Web) Close() {
	if s.ln != nil {
		_ = s.ln.Close()
	}
}
