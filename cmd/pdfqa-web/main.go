package main

import (
	"errors"
	"flag"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"pdfqa/internal/app"
	"pdfqa/internal/config"
	"pdfqa/internal/domain"
	"pdfqa/internal/web"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/pdfqa/config.yaml if not provided)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	indexer, err := app.NewIndexer(cfg)
	if err != nil {
		log.Fatalf("indexer init failed: %v", err)
	}

	// Without an API key the server still starts and reports the problem on /ask.
	agent, agentErr := app.NewAgent(cfg, log.Default())
	if agentErr != nil {
		if !errors.Is(agentErr, domain.ErrMissingAPIKey) {
			log.Fatalf("llm init failed: %v", agentErr)
		}
		log.Printf("warning: %v", agentErr)
	}

	opts := web.Options{
		Config:   cfg.Server,
		Indexer:  indexer,
		AgentErr: agentErr,
		Secret:   os.Getenv(cfg.Server.SecretKeyEnv),
	}
	if agent != nil {
		opts.Agent = agent
	}
	srv, err := web.NewServer(opts)
	if err != nil {
		log.Fatalf("server init failed: %v", err)
	}

	addr := cfg.Server.Addr()
	log.Printf("listening on http://%s", addr)
	if err := http.ListenAndServe(addr, srv.Router()); err != nil {
		log.Fatal(err)
	}
}
