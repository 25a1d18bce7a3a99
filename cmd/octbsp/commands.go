package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"octbsp/internal/config"
	"octbsp/internal/core"
	"octbsp/internal/octree"
	"octbsp/internal/polygon"
	"octbsp/pkg/octbsp"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/encoding/json"
)

func newLevel(cfg config.Config, flags SceneFlags) *octbsp.Scene {
	scene := octbsp.NewScene(octbsp.ConfigFrom(cfg))
	scene.AddLevel(flags.Seed, flags.Boxes)
	return scene
}

func buildLevel(cfg config.Config, flags SceneFlags) (*octbsp.Scene, error) {
	scene := newLevel(cfg, flags)
	if err := scene.Build(); err != nil {
		return nil, fmt.Errorf("failed to build level: %w", err)
	}
	return scene, nil
}

func vector(v []float64) (core.Vector3D, error) {
	if len(v) != 3 {
		return core.Vector3D{}, fmt.Errorf("expected 3 coordinates, got %d", len(v))
	}
	return core.Vec3(v[0], v[1], v[2]), nil
}

func statsCommand(cfg config.Config, flags SceneFlags, asJSON bool) error {
	scene, err := buildLevel(cfg, flags)
	if err != nil {
		return err
	}
	defer scene.Close()

	stats, err := scene.Stats()
	if err != nil {
		return err
	}
	if !asJSON {
		stats.Log()
		return nil
	}

	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func orderCommand(cfg config.Config, flags SceneFlags, eye []float64, front bool, limit int) error {
	pos, err := vector(eye)
	if err != nil {
		return err
	}
	scene, err := buildLevel(cfg, flags)
	if err != nil {
		return err
	}
	defer scene.Close()

	printed := 0
	visit := func(group []polygon.Polygon, samePlane bool) bool {
		for _, p := range group {
			c := polygon.Center(p)
			fmt.Printf("%4d %-14v same_plane=%-5t center=(%.2f, %.2f, %.2f)\n",
				printed, originatorOf(p), samePlane, c[0], c[1], c[2])
			printed++
			if limit > 0 && printed >= limit {
				return true
			}
		}
		return false
	}

	if front {
		_, err = scene.Front2Back(pos, visit, nil)
	} else {
		_, err = scene.Back2Front(pos, visit, nil)
	}
	return err
}

func outlineCommand(cfg config.Config, flags SceneFlags, eye, target []float64) error {
	pos, err := vector(eye)
	if err != nil {
		return err
	}
	at, err := vector(target)
	if err != nil {
		return err
	}
	scene, err := buildLevel(cfg, flags)
	if err != nil {
		return err
	}
	defer scene.Close()

	outline, err := scene.Outline(at, pos)
	if err != nil {
		return err
	}
	if len(outline) == 0 {
		fmt.Println("viewer is inside the region")
		return nil
	}
	for _, v := range outline {
		fmt.Printf("(%.2f, %.2f, %.2f)\n", v[0], v[1], v[2])
	}
	return nil
}

func saveCommand(cfg config.Config, flags SceneFlags, path string) error {
	scene, err := buildLevel(cfg, flags)
	if err != nil {
		return err
	}
	defer scene.Close()

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := scene.SaveCache(file); err != nil {
		return err
	}
	log.Info().Str("file", path).Msg("wrote octree cache")
	return nil
}

func loadCommand(cfg config.Config, flags SceneFlags, path string) error {
	scene := newLevel(cfg, flags)
	defer scene.Close()

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	err = scene.LoadCache(file)
	switch {
	case errors.Is(err, octree.ErrCacheMismatch):
		log.Warn().Err(err).Msg("cache was stale, level rebuilt")
	case err != nil:
		return err
	default:
		log.Info().Str("file", path).Msg("restored octree from cache")
	}

	stats, err := scene.Stats()
	if err != nil {
		return err
	}
	stats.Log()
	return nil
}

func originatorOf(p polygon.Polygon) any {
	type originated interface{ Originator() any }
	if o, ok := p.UnsplitPolygon().(originated); ok {
		return o.Originator()
	}
	return nil
}

func dumpMetrics(w io.Writer) error {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
