package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/atelierlog/reportcard/internal/calendar"
	"github.com/atelierlog/reportcard/internal/config"
	"github.com/atelierlog/reportcard/internal/export"
	"github.com/atelierlog/reportcard/internal/gallery"
	"github.com/atelierlog/reportcard/internal/layout"
	"github.com/atelierlog/reportcard/internal/session"
)

var renderCmd = &cobra.Command{
	Use:   "render [snapshot.json]",
	Short: "Render a report card from a snapshot or the live gallery",
	Long: `Render a report card PNG without a running server.
With a snapshot argument the artwork records are read from the file, in
the shape the gallery API returns them: {"artworks": [{"id", "imageUrl",
"uploadedAt", "durationMinutes", ...}]}. Without one they are fetched
live from GALLERY_URL for the chosen period. Cells are auto-filled for
the template and reference date; the finished card is written to disk.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().String("template", "monthly", "Template kind (weekly-single, weekly-double, monthly, four-image, yearly, timeline, comparison)")
	renderCmd.Flags().String("reference", "", "Reference date YYYY-MM-DD (default today)")
	renderCmd.Flags().String("out", "reportcard.png", "Output PNG path")
	renderCmd.Flags().String("title", "", "Card title")
	renderCmd.Flags().String("username", "", "Footer handle")
	renderCmd.Flags().String("aspect", "square", "Aspect preset: square or 4:5")
	renderCmd.Flags().StringSlice("allow-host", nil, "Extra image hosts to allow (repeatable)")
}

type snapshot struct {
	Artworks []gallery.Artwork `json:"artworks"`
}

func loadSnapshot(path string) ([]gallery.Artwork, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing snapshot %s: %w", path, err)
	}
	if len(snap.Artworks) == 0 {
		return nil, fmt.Errorf("snapshot %s holds no artworks", path)
	}
	return snap.Artworks, nil
}

// fetchWindow is the live-gallery fetch range: the grid span for calendar
// templates, the whole year for yearly, the trailing year otherwise.
func fetchWindow(kind layout.Kind, ref time.Time, grid calendar.Grid) (time.Time, time.Time) {
	switch kind {
	case layout.KindMonthly, layout.KindWeeklySingle, layout.KindWeeklyDouble:
		return grid.Start, grid.End()
	case layout.KindYearly:
		jan1 := time.Date(ref.Year(), 1, 1, 0, 0, 0, 0, ref.Location())
		return jan1, jan1.AddDate(1, 0, -1)
	default:
		return ref.AddDate(-1, 0, 0), ref
	}
}

func clampHandle(name string) string {
	const max = 24
	runes := []rune(name)
	if len(runes) > max {
		return string(runes[:max])
	}
	return name
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	loc, err := time.LoadLocation(cfg.Gallery.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", cfg.Gallery.Timezone, err)
	}

	kind, err := layout.ParseKind(mustGetString(cmd, "template"))
	if err != nil {
		return err
	}

	refStr := mustGetString(cmd, "reference")
	var ref time.Time
	if refStr == "" {
		now := time.Now().In(loc)
		ref = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	} else {
		ref, err = calendar.ParseReference(refStr, loc)
		if err != nil {
			return err
		}
	}

	grid, err := calendar.BuildGrid(ref, kind.GridMode(), loc)
	if err != nil {
		return err
	}

	var artworks []gallery.Artwork
	if len(args) == 1 {
		artworks, err = loadSnapshot(args[0])
		if err != nil {
			return err
		}
	} else {
		if cfg.Gallery.URL == "" {
			return fmt.Errorf("either pass a snapshot file or set GALLERY_URL")
		}
		g, err := gallery.New(cfg.Gallery.URL, cfg.Gallery.Token)
		if err != nil {
			return err
		}
		from, to := fetchWindow(kind, ref, grid)
		artworks, err = g.GetArtworks(context.Background(), from, to)
		if err != nil {
			return fmt.Errorf("fetching artworks: %w", err)
		}
		fmt.Printf("Fetched %d artworks from %s\n", len(artworks), cfg.Gallery.URL)
	}

	s := session.New(string(kind), kind.Fill(), ref, grid, kind.CellCount(grid), artworks)
	s.Content.Title = mustGetString(cmd, "title")
	s.Content.Username = clampHandle(mustGetString(cmd, "username"))
	s.Content.Aspect = mustGetString(cmd, "aspect")

	filled := s.AutoFill(calendar.NewBucketIndex(s.Artworks(), loc))
	fmt.Printf("Auto-filled %d of %d cells\n", filled, len(s.Cells))

	spec, ok := cfg.Canvas(string(kind))
	if !ok {
		return fmt.Errorf("no canvas spec for template %q", kind)
	}
	vm, err := layout.Build(kind, spec, s)
	if err != nil {
		return err
	}

	// Snapshot exports have no gallery client; anchor the allowlist on the
	// configured gallery URL (if any) plus the --allow-host flags.
	exportCfg := cfg.Export
	exportCfg.AllowedImageHosts = append(exportCfg.AllowedImageHosts, mustGetStringSlice(cmd, "allow-host")...)
	galleryHost := ""
	if cfg.Gallery.URL != "" {
		if u, err := url.Parse(cfg.Gallery.URL); err == nil {
			galleryHost = u.Host
		}
	}

	pipeline, err := export.NewPipeline(exportCfg, galleryHost)
	if err != nil {
		return err
	}

	refs := export.AssetsFor(vm, s)
	bar := progressbar.Default(int64(len(refs)), "loading images")
	pipeline.Resolver().OnProgress = func(done, total int) {
		_ = bar.Set(done)
	}

	data, err := pipeline.Export(context.Background(), vm, s)
	if err != nil {
		return err
	}

	out := mustGetString(cmd, "out")
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	fmt.Printf("Wrote %s (%d bytes)\n", out, len(data))
	return nil
}
