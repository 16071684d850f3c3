package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/elifnazdmn/HomeStock-Web/config"
	"github.com/elifnazdmn/HomeStock-Web/internal/adminapi"
	"github.com/elifnazdmn/HomeStock-Web/internal/api"
	"github.com/elifnazdmn/HomeStock-Web/internal/app"
	"github.com/elifnazdmn/HomeStock-Web/internal/webserver"
)

var (
	configFile = flag.String("c", "/etc/homestock.yml", "config file path")
	initDb     = flag.Bool("initdb", false, "drop and recreate all tables, then exit")
	showVer    = flag.Bool("v", false, "print version and exit")
)

var version = "dev"

func main() {
	flag.Parse()

	if *showVer {
		fmt.Println("homestock", version)
		return
	}

	cfg := config.LoadConfig(*configFile)

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initDb {
		application.InitDb()
		zap.L().Info("database initialized")
		return
	}

	webserver.Init(application)
	api.InitRouter(cfg, application.Bus())
	adminapi.InitRouter()

	errChan := make(chan error, 1)
	go func() {
		errChan <- webserver.Listen()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		zap.L().Error("webserver stopped", zap.Error(err))
	case sig := <-sigChan:
		zap.L().Info("shutting down", zap.String("signal", sig.String()))
	}
}
