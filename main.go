package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/network"
	"github.com/subosito/gotenv"

	"github.com/montelibero/stellarlab/config"
	"github.com/montelibero/stellarlab/controllers"
	"github.com/montelibero/stellarlab/db"
	"github.com/montelibero/stellarlab/handlers"
	"github.com/montelibero/stellarlab/server"
)

func main() {
	environment := flag.String("e", "development", "")
	flag.Usage = func() {
		fmt.Println("Usage: server -e {mode}")
		os.Exit(1)
	}
	flag.Parse()

	gotenv.Load()
	config.Init(*environment)
	cfg := config.GetConfig()

	level, err := logrus.ParseLevel(cfg.GetString("log.level"))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logger := logrus.WithField("service", "laboratory")

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		databaseURL = cfg.GetString("database.url")
	}
	dbConn, err := db.Connect(databaseURL)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to database")
	}
	defer dbConn.Close()

	passphrase := network.TestNetworkPassphrase
	if cfg.GetString("horizon.network") == "public" {
		passphrase = network.PublicNetworkPassphrase
	}
	horizon := &horizonclient.Client{
		HorizonURL: cfg.GetString("horizon.url"),
		HTTP: &http.Client{
			Timeout: time.Duration(cfg.GetInt("horizon.timeout_seconds")) * time.Second,
		},
	}

	resolver := handlers.NewHorizonResolver(horizon, logrus.WithField("service", "resolver"))
	codec := handlers.NewXDRCodec(passphrase)
	assembler := handlers.NewAssembler(codec, resolver, logrus.WithField("service", "assembler"))

	apiKey := os.Getenv("LAB_API_KEY")
	if apiKey == "" {
		apiKey = cfg.GetString("lab.api_key")
	}
	controller := controllers.NewLaboratoryController(dbConn, resolver, assembler, codec, apiKey, logger)

	srv := &server.Server{Port: cfg.GetString("server.port")}
	logger.WithField("network", cfg.GetString("horizon.network")).Info("starting laboratory server")
	if err := srv.Run(server.NewRouter(controller)); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}
