package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ocdb/ocdb-query/catalog"
	"github.com/ocdb/ocdb-query/config"
	"github.com/ocdb/ocdb-query/parser"
	"github.com/ocdb/ocdb-query/query"
)

const maxExprLength = 4096

type appConfig struct {
	Port     *int    `kong:"short='p',help='Port to listen on'"`
	Config   string  `kong:"short='c',help='YAML configuration file'"`
	Store    string  `kong:"short='s',help='YAML dataset catalog file to serve'"`
	LogLevel *string `kong:"short='l',help='Log level (debug, info, warn, error)'"`
}

func parseFlags() *appConfig {
	cfg := &appConfig{}

	desc := config.Description
	desc += " [" + config.Version + "]"

	ctx := kong.Parse(cfg,
		kong.Description(desc),
		kong.UsageOnError(),
	)
	if ctx.Error != nil {
		fmt.Fprintln(os.Stderr, ctx.Error)
		os.Exit(1)
	}
	return cfg
}

func setupLogger(level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		log.Error().Err(err).Str("level", level).Msg("Invalid log level, defaulting to info")
		lvl = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

// setupFiberLogger configures fiber's logger middleware to integrate with zerolog
func setupFiberLogger() fiber.Handler {
	currentLevel := zerolog.GlobalLevel()

	// Only enable HTTP request logging if log level is debug or info
	if currentLevel > zerolog.InfoLevel {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		latency := time.Since(start)
		status := c.Response().StatusCode()

		logEvent := log.Info()
		if status >= 400 && status < 500 {
			logEvent = log.Warn()
		} else if status >= 500 {
			logEvent = log.Error()
		}

		logEvent.
			Int("status", status).
			Dur("latency", latency).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("ip", c.IP()).
			Msg("HTTP request")

		return err
	}
}

func main() {
	flags := parseFlags()

	yamlConfig, err := config.LoadFile(flags.Config)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Command line values override the config file
	if flags.Port != nil {
		yamlConfig.Port = *flags.Port
	}
	if flags.LogLevel != nil {
		yamlConfig.LogLevel = *flags.LogLevel
	}
	if flags.Store != "" {
		yamlConfig.Store = flags.Store
	}

	setupLogger(yamlConfig.LogLevel)

	exprParser, err := parser.NewParser(yamlConfig.MaxQueryDepth)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create query parser")
	}

	var store *catalog.Store
	if yamlConfig.Store != "" {
		store, err = catalog.LoadStore(yamlConfig.Store)
		if err != nil {
			log.Fatal().Err(err).Str("file", yamlConfig.Store).Msg("Failed to load dataset catalog")
		}
		log.Info().Int("datasets", store.Len()).Str("file", yamlConfig.Store).Msg("Loaded dataset catalog")
	}

	app := newApp(exprParser, store)

	go func() {
		log.Info().Int("port", yamlConfig.Port).Msg("Starting server")

		if err := app.Listen(fmt.Sprintf(":%d", yamlConfig.Port)); err != nil {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("Shutting down server")
	if err := app.Shutdown(); err != nil {
		log.Error().Err(err).Msg("Error during shutdown")
	}
}

// newApp builds the fiber application and its routes
func newApp(exprParser *parser.Parser, store *catalog.Store) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(setupFiberLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	app.Get("/query", handleQuery(exprParser))
	app.Get("/datasets", handleDatasets(exprParser, store))

	return app
}

// parseExprParam reads and parses the expr request parameter
func parseExprParam(c *fiber.Ctx, exprParser *parser.Parser) (query.Query, error) {
	expr := c.Query("expr", "")
	if expr == "" {
		return nil, fmt.Errorf("missing expr parameter")
	}
	if len(expr) > maxExprLength {
		return nil, fmt.Errorf("expr too long (max %d bytes)", maxExprLength)
	}
	return exprParser.Parse(expr)
}

// handleQuery parses an expression and returns its canonical forms
func handleQuery(exprParser *parser.Parser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tree, err := parseExprParam(c, exprParser)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"canonical": tree.String(),
			"repr":      tree.Repr(),
			"depth":     query.Depth(tree),
			"filter":    catalog.BuildFilter(tree),
		})
	}
}

// handleDatasets searches the catalog with the given expression
func handleDatasets(exprParser *parser.Parser, store *catalog.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if store == nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "no dataset catalog configured",
			})
		}

		tree, err := parseExprParam(c, exprParser)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		hits, err := store.Search(tree)
		if err != nil {
			log.Error().Err(err).Str("expr", tree.String()).Msg("Failed to search catalog")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		if hits == nil {
			hits = []catalog.Dataset{}
		}
		return c.JSON(fiber.Map{
			"query":    tree.String(),
			"total":    len(hits),
			"datasets": hits,
		})
	}
}
