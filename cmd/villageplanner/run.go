package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ChicagoDave/villageplanner/internal/server"
	"github.com/ChicagoDave/villageplanner/pkg/config"
	"github.com/ChicagoDave/villageplanner/pkg/layout"
	"github.com/ChicagoDave/villageplanner/pkg/render"
	"github.com/ChicagoDave/villageplanner/pkg/scene"
	"github.com/ChicagoDave/villageplanner/pkg/store"
	"github.com/ChicagoDave/villageplanner/pkg/validation"
)

// loadAndValidate loads the project config and runs schema validation. An
// empty path uses the built-in defaults; a path to a YAML file loads that
// file directly.
func loadAndValidate(projectPath string) (*config.Config, *validation.Report, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case projectPath == "":
		cfg = config.Default()
	case isYAML(projectPath):
		cfg, err = config.Load(projectPath)
	default:
		cfg, err = config.LoadProject(projectPath)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, validation.ValidateConfig(cfg), nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// loadValid is loadAndValidate for commands that cannot continue on errors.
func loadValid(projectPath string) (*config.Config, error) {
	cfg, report, err := loadAndValidate(projectPath)
	if err != nil {
		return nil, err
	}
	if !report.Valid {
		printValidationReport(os.Stderr, report)
		return nil, fmt.Errorf("config has validation errors")
	}
	return cfg, nil
}

// resolveSeed fixes a zero seed to the clock so the document records the
// seed that was actually used.
func resolveSeed(seed int64) int64 {
	if seed == 0 {
		return time.Now().UnixNano()
	}
	return seed
}

func canvasOptions(cfg *config.Config) render.Options {
	opts := render.DefaultOptions()
	opts.Width = cfg.Canvas.Width
	opts.Height = cfg.Canvas.Height
	opts.Debug = cfg.Debug
	opts.Seed = cfg.Seed
	return opts
}

// generateDocument runs one layout from cfg and wraps it as a document.
func generateDocument(cfg *config.Config) (*scene.Document, *validation.Report, error) {
	req, err := layout.RequestFromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	sc, report, err := layout.Generate(layout.NewSource(cfg.Seed), req)
	if err != nil {
		return nil, report, fmt.Errorf("generating layout: %w", err)
	}
	d := scene.FromScene(sc, req.Attractors, cfg.Debug)
	d.Stamp(cfg.Seed, req.Aspect, time.Now())
	report.Merge(scene.ValidateDocument(d))
	return d, report, nil
}

func runGenerate(projectPath, output string, seed *int64) error {
	cfg, err := loadValid(projectPath)
	if err != nil {
		return err
	}
	if seed != nil {
		cfg.Seed = *seed
	}
	cfg.Seed = resolveSeed(cfg.Seed)

	d, report, err := generateDocument(cfg)
	if err != nil {
		return err
	}
	for _, r := range report.Info {
		slog.Info(r.Message, "seed", cfg.Seed)
	}

	if output == "" {
		return d.Encode(os.Stdout)
	}
	if err := scene.WriteFile(output, d); err != nil {
		return err
	}
	printDocumentSummary(os.Stdout, output, d)
	return nil
}

func runValidate(projectPath, documentPath string) error {
	var report *validation.Report
	if documentPath != "" {
		d, err := scene.ReadFile(documentPath)
		if err != nil {
			return err
		}
		report = scene.ValidateDocument(d)
	} else {
		var err error
		if _, report, err = loadAndValidate(projectPath); err != nil {
			return err
		}
	}

	printValidationReport(os.Stdout, report)
	if !report.Valid {
		return fmt.Errorf("validation failed")
	}
	return nil
}

func runRender(source, output string, texture bool, debug *bool) error {
	var (
		sc   *layout.Scene
		opts render.Options
	)

	if strings.EqualFold(filepath.Ext(source), ".json") {
		d, err := scene.ReadFile(source)
		if err != nil {
			return err
		}
		if sc, _, err = d.Scene(); err != nil {
			return err
		}
		opts = render.DefaultOptions()
		opts.Debug = d.Debug
		if d.Metadata != nil {
			opts.Seed = d.Metadata.Seed
			if d.Metadata.Aspect > 0 {
				opts.Height = int(float64(opts.Width) / d.Metadata.Aspect)
			}
		}
	} else {
		cfg, err := loadValid(source)
		if err != nil {
			return err
		}
		cfg.Seed = resolveSeed(cfg.Seed)
		d, _, err := generateDocument(cfg)
		if err != nil {
			return err
		}
		if sc, _, err = d.Scene(); err != nil {
			return err
		}
		opts = canvasOptions(cfg)
	}

	opts.Texture = texture
	if debug != nil {
		opts.Debug = *debug
	}

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating %s: %w", output, err)
		}
		defer f.Close()
		w = f
	}
	if err := render.SVG(w, sc, opts); err != nil {
		return err
	}
	if output != "" {
		slog.Info("rendered", "file", output, "entities", len(sc.Entities), "width", opts.Width, "height", opts.Height)
	}
	return nil
}

func runServe(ctx context.Context, projectPath string, port int, dbPath string) error {
	cfg, err := loadValid(projectPath)
	if err != nil {
		return err
	}
	cfg.Seed = resolveSeed(cfg.Seed)

	req, err := layout.RequestFromConfig(cfg)
	if err != nil {
		return err
	}
	session, err := layout.NewSession(layout.NewSource(cfg.Seed), req)
	if err != nil {
		return fmt.Errorf("starting session: %w", err)
	}
	session.SetDebug(cfg.Debug)

	if dbPath == "" {
		dbPath = cfg.Store.Path
	}
	var st *store.Store
	if dbPath != "" {
		if st, err = store.Open(dbPath); err != nil {
			return err
		}
		defer st.Close()
		slog.Info("scene archive opened", "path", dbPath)
	}

	srv := server.New(session, server.Options{
		Port:   port,
		Canvas: canvasOptions(cfg),
		Seed:   cfg.Seed,
		Store:  st,
	})
	return srv.Start(ctx)
}

func runSchema() error {
	data, err := scene.SchemaJSON()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(data))
	return err
}

func openStore(dbPath string) (*store.Store, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("scene archive %s: %w", dbPath, err)
	}
	return store.Open(dbPath)
}

func runSavesList(ctx context.Context, dbPath string) error {
	st, err := openStore(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := st.List(ctx)
	if err != nil {
		return err
	}
	printRecords(os.Stdout, records)
	return nil
}

func runSavesShow(ctx context.Context, dbPath, id string) error {
	st, err := openStore(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	d, rec, err := st.Load(ctx, id)
	if err != nil {
		return err
	}
	slog.Debug("loaded save", "id", rec.ID, "name", rec.Name)
	return d.Encode(os.Stdout)
}

func runSavesDelete(ctx context.Context, dbPath, id string) error {
	st, err := openStore(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Printf("deleted %s\n", id)
	return nil
}
