package main

import (
	"fmt"
	"os"

	"github.com/ssoellinger/open-ldap-viewer/config"
	"github.com/ssoellinger/open-ldap-viewer/logger"
	"github.com/ssoellinger/open-ldap-viewer/registry"
	"github.com/ssoellinger/open-ldap-viewer/web"
)

func main() {
	var cfg config.Config
	if err := cfg.Init(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.LogPath, cfg.Debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	reg := registry.New(log)
	defaults := cfg.DefaultConnection()

	srv := web.NewServer(reg, cfg.ListenAddr, defaults, log)
	log.Infof("listening on http://%s", cfg.ListenAddr)
	if err := srv.Start(); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
