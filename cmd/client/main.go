package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/atinyakov/schemeseva/internal/client/api"
	"github.com/atinyakov/schemeseva/internal/client/app"
	"github.com/atinyakov/schemeseva/internal/client/render"
	"github.com/atinyakov/schemeseva/internal/client/session"
	"github.com/atinyakov/schemeseva/internal/logger"
)

var (
	version   string
	buildDate string
)

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "session.json"
	}
	return filepath.Join(dir, "schemeseva", "session.json")
}

// main parses command-line flags and starts the interactive client.
func main() {
	var (
		baseURL     string
		caFile      string
		sessionPath string
		style       string
		logLevel    string
		width       int
		showVer     bool
	)

	flag.StringVar(&baseURL, "url", "http://localhost:8080", "server base URL")
	flag.StringVar(&caFile, "ca", "", "path to an extra CA cert for HTTPS servers")
	flag.StringVar(&sessionPath, "session", defaultSessionPath(), "path to the session file")
	flag.StringVar(&style, "style", "", "markdown style: dark, light, notty (empty auto-detects)")
	flag.StringVar(&logLevel, "l", "error", "log level")
	flag.IntVar(&width, "width", 80, "output width")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("SchemeSeva Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	lg := logger.New()
	if err := lg.Init(logLevel); err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Log.Sync() }()

	httpClient, err := api.NewHTTPClient(caFile)
	if err != nil {
		log.Fatal(err)
	}
	client := api.New(baseURL, httpClient)

	store, err := session.Open(sessionPath)
	if err != nil {
		lg.Log.Warn("discarding unreadable session", zap.Error(err))
		_ = os.Remove(sessionPath)
		if store, err = session.Open(sessionPath); err != nil {
			log.Fatal(err)
		}
	}
	client.Token = store.Token

	renderer, err := render.New(width, style)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := app.New(app.Options{
		API:     client,
		Session: store,
		In:      os.Stdin,
		Out:     os.Stdout,
		Render:  renderer,
		Log:     lg.Log,
	})
	if err := a.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal(err)
	}
}
