package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/zarif007/RepliKat/pkg/config"
	"github.com/zarif007/RepliKat/pkg/crawler"
	"github.com/zarif007/RepliKat/pkg/fetch"
)

func main() {
	// Subcommand dispatch: "replikat mcp-server ..." starts the MCP server,
	// everything else is the one-shot mapping CLI
	if len(os.Args) > 1 && os.Args[1] == "mcp-server" {
		runMcpServer(os.Args[2:])
		return
	}

	// --- Early Initialization & Flags ---
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05.000"})
	log.SetLevel(logrus.InfoLevel) // Default level

	urlFlag := flag.String("url", "", "Starting URL of the site to map (required; https assumed if no scheme)")
	noteFlag := flag.String("note", "", "Free-text note carried into the crawl report")
	configFileFlag := flag.String("config", "", "Path to YAML config file (optional)")
	logLevelFlag := flag.String("loglevel", "info", "Log level (debug, info, warn, error, fatal)")
	maxDepthFlag := flag.Int("max-depth", -1, "Maximum link depth to follow (overrides config)")
	maxPagesFlag := flag.Int("max-pages", -1, "Maximum number of pages to fetch (overrides config)")
	timeoutFlag := flag.Duration("timeout", 0, "Per-attempt fetch timeout (overrides config)")
	delayFlag := flag.Duration("delay", -1, "Politeness delay between fetches (overrides config)")
	concurrencyFlag := flag.Int("concurrency", -1, "Maximum simultaneous fetches (overrides config)")
	jsonFlag := flag.Bool("json", false, "Print the route tree as JSON instead of a text tree")
	reportFlag := flag.String("report", "", "Write a YAML crawl report to this path (overrides config)")
	flag.Parse()

	// --- Logger Configuration ---
	level, err := logrus.ParseLevel(*logLevelFlag)
	if err != nil {
		log.Warnf("Invalid log level '%s', using default 'info'. Error: %v", *logLevelFlag, err)
	} else {
		log.SetLevel(level)
	}

	if *urlFlag == "" {
		log.Fatal("Error: -url flag is required.")
	}

	// --- Load Application Configuration ---
	appCfg := &config.AppConfig{Crawl: config.DefaultCrawlConfig()}
	if *configFileFlag != "" {
		log.Infof("Loading configuration from %s", *configFileFlag)
		appCfg, err = config.Load(*configFileFlag)
		if err != nil {
			log.Fatalf("Config error: %v", err)
		}
	}

	// --- Apply Flag Overrides ---
	if *maxDepthFlag >= 0 {
		appCfg.Crawl.MaxDepth = *maxDepthFlag
	}
	if *maxPagesFlag >= 0 {
		appCfg.Crawl.MaxPages = *maxPagesFlag
	}
	if *timeoutFlag > 0 {
		appCfg.Crawl.Timeout = *timeoutFlag
	}
	if *delayFlag >= 0 {
		appCfg.Crawl.Delay = *delayFlag
	}
	if *concurrencyFlag > 0 {
		appCfg.Crawl.MaxConcurrency = *concurrencyFlag
	}
	if *reportFlag != "" {
		appCfg.ReportFilename = *reportFlag
	}

	// --- Validate Configuration ---
	warnings, err := appCfg.Validate()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	for _, w := range warnings {
		log.Warn(w)
	}
	log.Infof("Crawl Config: MaxDepth:%d, MaxPages:%d, Timeout:%v, Delay:%v, Concurrency:%d",
		appCfg.Crawl.MaxDepth, appCfg.Crawl.MaxPages, appCfg.Crawl.Timeout, appCfg.Crawl.Delay, appCfg.Crawl.MaxConcurrency)

	// ===========================================================
	// == Setup Global Context & Signal Handling ==
	// ===========================================================
	crawlCtx, cancelCrawl := context.WithCancel(context.Background())
	defer cancelCrawl()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		sig := <-sigChan
		log.Warnf("Received signal: %v. Initiating graceful shutdown...", sig)
		cancelCrawl()

		select {
		case sig = <-sigChan:
			log.Warnf("Received second signal: %v. Forcing exit.", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			log.Warn("Graceful shutdown period exceeded after signal. Forcing exit.")
			os.Exit(1)
		}
	}()

	// ===========================================================
	// == Initialize Components & Run ==
	// ===========================================================
	crawlLog := log.WithField("component", "crawler")
	httpClient := fetch.NewClient(appCfg.HTTPClientSettings, log)
	fetcher := fetch.NewRetryingFetcher(httpClient, &appCfg.Crawl, crawlLog)
	c := crawler.New(&appCfg.Crawl, fetcher, crawlLog)

	root, report := c.Crawl(crawlCtx, *urlFlag)
	report.Note = *noteFlag

	// ===========================================================
	// == Output ==
	// ===========================================================
	if *jsonFlag {
		b, err := json.MarshalIndent(root, "", "  ")
		if err != nil {
			log.Fatalf("Failed to encode route tree as JSON: %v", err)
		}
		fmt.Println(string(b))
	} else {
		if err := crawler.RenderTree(os.Stdout, root); err != nil {
			log.Fatalf("Failed to render route tree: %v", err)
		}
	}

	if appCfg.ReportFilename != "" {
		if err := writeReport(appCfg.ReportFilename, report); err != nil {
			log.Errorf("Failed to write crawl report: %v", err)
		} else {
			log.Infof("Crawl report written to %s", appCfg.ReportFilename)
		}
	}

	log.WithFields(logrus.Fields{
		"pages_fetched": report.PagesFetched,
		"routes":        report.RoutesDiscovered,
		"duration":      report.Duration().String(),
	}).Info("Route mapping completed.")
}

// writeReport marshals the crawl report to YAML and writes it to path
func writeReport(path string, report interface{}) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report file '%s': %w", path, err)
	}
	return nil
}
