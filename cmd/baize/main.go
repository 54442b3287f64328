// Command baize assembles a table without the desktop shell. It steps the
// scene for a number of frames, logs where the cue ball ends up and can
// export every solid as STL.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chazu/baize/pkg/config"
	"github.com/chazu/baize/pkg/engine"
	"github.com/chazu/baize/pkg/kernel"
	"github.com/chazu/baize/pkg/kernel/sdfx"
	"github.com/chazu/baize/pkg/scene"
	"github.com/chazu/baize/pkg/table"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()

	tablePath := flag.String("table", cfg.TablePath, "table file (.baize or .yaml); the standard table when empty")
	frames := flag.Int("frames", 60, "frames to simulate")
	dt := flag.Float64("dt", 1.0/60, "seconds per frame")
	stlDir := flag.String("stl", "", "directory to export STL files into")
	level := flag.String("log-level", cfg.LogLevel, "log level")
	flag.Parse()

	config.InitLogger(*level)

	if err := run(cfg, *tablePath, *frames, *dt, *stlDir); err != nil {
		log.WithError(err).Error("baize failed")
		os.Exit(1)
	}
}

func run(cfg *config.Config, tablePath string, frames int, dt float64, stlDir string) error {
	tbl := table.Standard()
	if tablePath != "" {
		var err error
		if tbl, err = engine.LoadTable(tablePath); err != nil {
			return err
		}
	}

	k := sdfx.New(sdfx.WithMeshCells(cfg.MeshCells))
	asm := scene.NewAssembler(k,
		scene.WithCutterMargin(cfg.CutterMargin),
		scene.WithSurface(cfg.Width, cfg.Height),
	)
	sc, err := asm.Build(tbl)
	if err != nil {
		return err
	}
	defer sc.Teardown()

	logger := log.WithField("scene", sc.ID())
	var last scene.Frame
	for i := 0; i < frames; i++ {
		if last, err = sc.Frame(dt); err != nil {
			return err
		}
	}
	cue := sc.CueBall().Position()
	logger.WithFields(log.Fields{
		"frames": last.Index,
		"time":   last.Time,
		"x":      cue.X(),
		"y":      cue.Y(),
		"z":      cue.Z(),
	}).Info("cue ball position")

	if stlDir == "" {
		return nil
	}
	return exportSTL(k, sc, stlDir, logger)
}

// exportSTL writes each object's solid to dir/<id>.stl.
func exportSTL(k kernel.Kernel, sc *scene.Scene, dir string, logger *log.Entry) error {
	ex, ok := k.(kernel.Exporter)
	if !ok {
		return fmt.Errorf("kernel %T cannot export STL", k)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, o := range sc.Objects() {
		path := filepath.Join(dir, o.ID+".stl")
		if err := ex.ExportSTL(o.Solid, path); err != nil {
			return fmt.Errorf("export %s: %w", o.ID, err)
		}
		logger.WithField("path", path).Debug("exported")
	}
	logger.WithFields(log.Fields{"dir": dir, "objects": len(sc.Objects())}).Info("STL export done")
	return nil
}
