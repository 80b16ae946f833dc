// Command metaballs refines a metaball scene frame by frame the way an
// interactive viewer would, then writes a preview image of the surface
// and a chart of the refinement progress.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/soypat/implicit"
	"github.com/soypat/implicit/helpers/sdfxforce"
	"github.com/soypat/implicit/render"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	flagLevel    = "level"
	flagStrategy = "strategy"
	flagCutoff   = "cutoff"
	flagDistance = "distance"
	flagBudget   = "budget"
	flagFrames   = "frames"
	flagRough    = "rough"
	flagOutward  = "outward"
	flagSDF      = "sdf"
	flagPNG      = "png"
	flagPlot     = "plot"
	flagDebug    = "debug"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "metaballs",
		Usage: "adaptively polygonize a metaball scene",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    flagLevel,
				Aliases: []string{"l"},
				Value:   5,
				Usage:   "octree target level of cells holding surface",
			},
			&cli.StringFlag{
				Name:  flagStrategy,
				Value: render.Tetrahedra.String(),
				Usage: "polygonization strategy: tetrahedra or cubes",
			},
			&cli.Float64Flag{
				Name:  flagCutoff,
				Value: implicit.DefaultCutoff,
				Usage: "isovalue of the surface",
			},
			&cli.Float64Flag{
				Name:    flagDistance,
				Aliases: []string{"d"},
				Value:   3,
				Usage:   "distance between the two metaballs",
			},
			&cli.DurationFlag{
				Name:  flagBudget,
				Value: render.FrameBudget,
				Usage: "refinement time budget per frame",
			},
			&cli.IntFlag{
				Name:  flagFrames,
				Value: 1000,
				Usage: "maximum number of frames",
			},
			&cli.BoolFlag{
				Name:  flagRough,
				Usage: "place crossings at edge midpoints",
			},
			&cli.BoolFlag{
				Name:  flagOutward,
				Usage: "orient triangles towards cold space",
			},
			&cli.BoolFlag{
				Name:  flagSDF,
				Usage: "add an sdfx rounded box to the scene",
			},
			&cli.StringFlag{
				Name:  flagPNG,
				Value: "metaballs.png",
				Usage: "preview image `FILE`, empty to skip",
			},
			&cli.StringFlag{
				Name:  flagPlot,
				Value: "progress.png",
				Usage: "refinement progress chart `FILE`, empty to skip",
			},
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable debug logging",
			},
		},
		Action: run,
	}
}

type config struct {
	level    int
	strategy render.Strategy
	cutoff   float64
	distance float64
	budget   time.Duration
	frames   int
	rough    bool
	outward  bool
	sdf      bool
	png      string
	plot     string
}

func parseConfig(c *cli.Context) (config, error) {
	cfg := config{
		level:    c.Int(flagLevel),
		cutoff:   c.Float64(flagCutoff),
		distance: c.Float64(flagDistance),
		budget:   c.Duration(flagBudget),
		frames:   c.Int(flagFrames),
		rough:    c.Bool(flagRough),
		outward:  c.Bool(flagOutward),
		sdf:      c.Bool(flagSDF),
		png:      c.String(flagPNG),
		plot:     c.String(flagPlot),
	}
	var ok bool
	cfg.strategy, ok = render.ParseStrategy(c.String(flagStrategy))
	switch {
	case !ok:
		return cfg, errors.Errorf("unknown strategy %q", c.String(flagStrategy))
	case cfg.level < 0 || cfg.level > render.MaxTargetLevel:
		return cfg, errors.Errorf("level %d out of range [0,%d]", cfg.level, render.MaxTargetLevel)
	case !(cfg.cutoff > 0):
		return cfg, errors.Errorf("cutoff must be positive, got %g", cfg.cutoff)
	case cfg.distance < 0:
		return cfg, errors.Errorf("negative distance %g", cfg.distance)
	case cfg.budget <= 0:
		return cfg, errors.Errorf("budget must be positive, got %s", cfg.budget)
	case cfg.frames <= 0:
		return cfg, errors.Errorf("frames must be positive, got %d", cfg.frames)
	}
	return cfg, nil
}

func run(c *cli.Context) error {
	cfg, err := parseConfig(c)
	if err != nil {
		return err
	}
	logger := zap.NewNop()
	if c.Bool(flagDebug) {
		logger, err = zap.NewDevelopment()
		if err != nil {
			return errors.Wrap(err, "creating logger")
		}
	}
	defer logger.Sync() //nolint:errcheck
	return polygonize(cfg, logger.Sugar(), c.App.Writer)
}

// scene returns two metaballs distance apart on the x axis and a torus
// around them.
func scene(cfg config) (*implicit.ForceFunction, error) {
	red := r3.Vec{X: 0.9, Y: 0.1, Z: 0.1}
	blue := r3.Vec{X: 0.1, Y: 0.2, Z: 0.9}
	half := cfg.distance / 2
	f := implicit.NewForceFunction(
		implicit.NewMetaBall(r3.Vec{X: -half}, 1, red),
		implicit.NewMetaBall(r3.Vec{X: half}, 1, blue),
		implicit.Translate(implicit.MetaTorus{Major: 3, Strength: 0.6}, r3.Vec{Y: 0.5}),
	)
	if cfg.sdf {
		box, err := sdfxforce.Box(r3.Vec{Y: -2.5}, r3.Vec{X: 4, Y: 1, Z: 2}, 0.3, 1, r3.Vec{X: 0.2, Y: 0.8, Z: 0.2})
		if err != nil {
			return nil, err
		}
		f.Add(box)
	}
	f.SetCutoff(cfg.cutoff)
	return f, nil
}

// frame is the refinement progress after a Refine call.
type frame struct {
	elapsed time.Duration
	stats   render.Stats
}

func polygonize(cfg config, logger *zap.SugaredLogger, out io.Writer) error {
	f, err := scene(cfg)
	if err != nil {
		return err
	}
	half := 4.5 + cfg.distance/2
	r, err := render.NewRefiner(r3.Vec{X: -half, Y: -4.5, Z: -4.5}, r3.Vec{X: half, Y: 4.5, Z: 4.5}, f,
		render.WithTargetLevel(cfg.level),
		render.WithStrategy(cfg.strategy),
		render.WithSmoothInterpolation(!cfg.rough),
		render.WithOutwardNormals(cfg.outward),
		render.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	var frames []frame
	start := time.Now()
	for i := 0; i < cfg.frames; i++ {
		changed := r.Refine(cfg.budget)
		s := r.Stats()
		frames = append(frames, frame{elapsed: time.Since(start), stats: s})
		logger.Infow("frame", "frame", i, "changed", changed, "queued", s.Queued, "finished", s.Finished, "triangles", s.Triangles, "elapsed", frames[i].elapsed)
		if !changed && s.Queued == 0 && s.PendingChecks == 0 {
			break
		}
	}
	m, err := r.ToMesh()
	if err != nil {
		logger.Warnw("mesh is not closed", "error", err)
	}
	fmt.Fprintf(out, "%d frames, %d evaluations, %d vertices, %d faces, %d components\n",
		len(frames), f.Evaluations(), len(m.Vertices), len(m.Faces), m.Components())

	if cfg.png != "" {
		if err := savePreview(cfg.png, r.Triangles(), cfg.outward); err != nil {
			return errors.Wrap(err, "saving preview")
		}
	}
	if cfg.plot != "" {
		if err := saveProgress(cfg.plot, frames); err != nil {
			return errors.Wrap(err, "saving progress chart")
		}
	}
	return nil
}
