package main

import (
	"fmt"
	"os"
	"time"

	"octbsp/internal/config"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type SceneFlags struct {
	Seed  int64 `help:"Seed for the generated level." default:"1"`
	Boxes int   `help:"Number of random boxes in the generated level." default:"40"`
}

var CLI struct {
	Debug   bool     `help:"Whether to enable debug logging."`
	Configs []string `name:"config" short:"c" help:"Configuration files, later ones override earlier ones."`

	Stats struct {
		SceneFlags `embed:""`
		JSON bool `help:"Print the statistics as JSON."`
	} `cmd:"" help:"Build the tree over a generated level and print statistics."`

	Order struct {
		SceneFlags `embed:""`
		Eye   []float64 `help:"Viewer position." default:"0,10,0" sep:","`
		Front bool      `help:"Print front to back instead of back to front."`
		Limit int       `help:"Print at most this many polygons, 0 for all." default:"20"`
	} `cmd:"" help:"Print the visibility order of the level seen from a point."`

	Outline struct {
		Eye    []float64 `help:"Viewer position." default:"-100,50,-100" sep:","`
		Target []float64 `help:"Point selecting the octree leaf, outside the level selects the root." default:"1000,1000,1000" sep:","`
		SceneFlags `embed:""`
	} `cmd:"" help:"Print the silhouette of an octree region."`

	Cache struct {
		Save struct {
			SceneFlags `embed:""`
			File string `arg:"" help:"Cache file to write."`
		} `cmd:"" help:"Build the level and write the tree cache."`
		Load struct {
			SceneFlags `embed:""`
			File string `arg:"" help:"Cache file to read."`
		} `cmd:"" help:"Restore the level tree from a cache file."`
	} `cmd:"" help:"Save or load the octree cache."`

	Config struct {
	} `cmd:"" help:"Write the default configuration to standard output."`
}

func writeError(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", err)
	os.Exit(1)
}

func main() {
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(consoleWriter)

	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	ctx := kong.Parse(&CLI,
		kong.Name("octbsp"),
		kong.Description("hybrid octree and BSP visibility ordering"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	if CLI.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Warn().Msg("debug logging enabled")
	}

	if ctx.Command() == "config" {
		os.Stdout.Write(config.DEFAULT)
		return
	}

	cfg, err := config.Load(CLI.Configs...)
	if err != nil {
		writeError(err)
	}

	switch ctx.Command() {
	case "stats":
		err = statsCommand(cfg, CLI.Stats.SceneFlags, CLI.Stats.JSON)
	case "order":
		err = orderCommand(cfg, CLI.Order.SceneFlags, CLI.Order.Eye, CLI.Order.Front, CLI.Order.Limit)
	case "outline":
		err = outlineCommand(cfg, CLI.Outline.SceneFlags, CLI.Outline.Eye, CLI.Outline.Target)
	case "cache save <file>":
		err = saveCommand(cfg, CLI.Cache.Save.SceneFlags, CLI.Cache.Save.File)
	case "cache load <file>":
		err = loadCommand(cfg, CLI.Cache.Load.SceneFlags, CLI.Cache.Load.File)
	default:
		err = fmt.Errorf("unknown command %q", ctx.Command())
	}
	if err != nil {
		writeError(err)
	}

	if cfg.Metrics.Enabled {
		if err := dumpMetrics(os.Stderr); err != nil {
			writeError(err)
		}
	}
}
