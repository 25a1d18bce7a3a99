package octree

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"octbsp/internal/core"
	"octbsp/internal/polygon"

	"github.com/cespare/xxhash/v2"
	"github.com/fxamacker/cbor/v2"
	"github.com/rs/zerolog/log"
)

// ErrCacheMismatch is returned by LoadCache when the cache was written for
// different polygons or different build parameters.
var ErrCacheMismatch = errors.New("octree cache does not match")

const cacheVersion = 1

type cacheFile struct {
	Version     int          `cbor:"1,keyasint"`
	Fingerprint uint64       `cbor:"2,keyasint"`
	Polygons    int          `cbor:"3,keyasint"`
	BSPNum      int          `cbor:"4,keyasint"`
	MaxDepth    int          `cbor:"5,keyasint"`
	Mode        int          `cbor:"6,keyasint"`
	Bounds      [6]float64   `cbor:"7,keyasint"`
	Leaves      [][]int32    `cbor:"8,keyasint"`
	Stats       cacheSummary `cbor:"9,keyasint"`
}

type cacheSummary struct {
	Nodes  int `cbor:"1,keyasint"`
	Leaves int `cbor:"2,keyasint"`
}

// Fingerprint hashes the vertices of polys in order. Two polygon lists with
// the same fingerprint produce the same octree.
func Fingerprint(polys []polygon.Polygon) uint64 {
	h := xxhash.New()
	var buf [8]byte
	write := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	write(uint64(len(polys)))
	for _, p := range polys {
		write(uint64(p.VertexCount()))
		for i := 0; i < p.VertexCount(); i++ {
			v := p.Vertex(i)
			write(math.Float64bits(v[0]))
			write(math.Float64bits(v[1]))
			write(math.Float64bits(v[2]))
		}
	}
	return h.Sum64()
}

// Cache writes the decisions needed to rebuild this octree from polys
// without evaluating splitters again. polys must be the list given to Build.
func (o *Octree) Cache(w io.Writer, polys []polygon.Polygon) error {
	stats := o.Statistics()
	f := cacheFile{
		Version:     cacheVersion,
		Fingerprint: Fingerprint(polys),
		Polygons:    len(polys),
		BSPNum:      o.bspNum,
		MaxDepth:    o.maxDepth,
		Mode:        int(o.mode),
		Bounds:      boundsArray(o.bounds),
		Leaves:      o.choices,
		Stats:       cacheSummary{Nodes: stats.Nodes, Leaves: stats.Leaves},
	}

	data, err := cbor.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to encode octree cache: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write octree cache: %w", err)
	}
	return nil
}

// LoadCache rebuilds the octree from polys using the splitter decisions
// stored by Cache. It fails with ErrCacheMismatch, leaving the octree
// untouched, when the cache belongs to other polygons or parameters.
func (o *Octree) LoadCache(r io.Reader, polys []polygon.Polygon) error {
	var f cacheFile
	if err := cbor.NewDecoder(r).Decode(&f); err != nil {
		cacheLoadsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to decode octree cache: %w", err)
	}

	if err := o.checkCache(f, polys); err != nil {
		cacheLoadsTotal.WithLabelValues("mismatch").Inc()
		return err
	}

	o.bounds = core.AABB3D{
		Min: core.Vec3(f.Bounds[0], f.Bounds[1], f.Bounds[2]),
		Max: core.Vec3(f.Bounds[3], f.Bounds[4], f.Bounds[5]),
	}
	o.Clear()
	o.replay = f.Leaves
	o.Build(polys)

	if stats := o.Statistics(); stats.Nodes != f.Stats.Nodes || stats.Leaves != f.Stats.Leaves {
		// Replayed choices must reproduce the cached shape.
		core.Assert(false, "octree rebuilt from cache differs in shape")
	}

	cacheLoadsTotal.WithLabelValues("ok").Inc()
	log.Debug().Int("leaves", len(f.Leaves)).Msg("octree restored from cache")
	return nil
}

func (o *Octree) checkCache(f cacheFile, polys []polygon.Polygon) error {
	switch {
	case f.Version != cacheVersion:
		return fmt.Errorf("%w: version %d, want %d", ErrCacheMismatch, f.Version, cacheVersion)
	case f.Polygons != len(polys) || f.Fingerprint != Fingerprint(polys):
		return fmt.Errorf("%w: polygon set differs", ErrCacheMismatch)
	case f.BSPNum != o.bspNum || f.MaxDepth != o.maxDepth || f.Mode != int(o.mode):
		return fmt.Errorf("%w: built with bsp_num=%d max_depth=%d mode=%d", ErrCacheMismatch, f.BSPNum, f.MaxDepth, f.Mode)
	}
	for i, leaf := range f.Leaves {
		for _, c := range leaf {
			if c < -1 {
				return fmt.Errorf("%w: leaf %d has splitter %d", ErrCacheMismatch, i, c)
			}
		}
	}
	return nil
}

func boundsArray(b core.AABB3D) [6]float64 {
	return [6]float64{b.Min[0], b.Min[1], b.Min[2], b.Max[0], b.Max[1], b.Max[2]}
}
