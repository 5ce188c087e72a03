package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fTr0ut/ShelvesAI-sub003/pkg/backend"
	"github.com/fTr0ut/ShelvesAI-sub003/pkg/cache"
	apperrors "github.com/fTr0ut/ShelvesAI-sub003/pkg/errors"
	"github.com/fTr0ut/ShelvesAI-sub003/pkg/httputil"
	"github.com/fTr0ut/ShelvesAI-sub003/pkg/layout"
	"github.com/fTr0ut/ShelvesAI-sub003/pkg/media"
	"github.com/fTr0ut/ShelvesAI-sub003/pkg/pipeline"
	"github.com/fTr0ut/ShelvesAI-sub003/pkg/render"
)

// renderCommand creates the render command for generating shelf artifacts.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		shelfID    string
		output     string
		formatsStr string
		noCache    bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render [items.json]",
		Short: "Render a shelf layout to JSON or SVG",
		Long: `Render a shelf layout to JSON or SVG.

The render command runs the full pipeline - resolve, layout, render - on an
item payload (a local items.json file, or a shelf fetched via --shelf) and
writes one output file per requested format.

Formats:
  json   the normalized layout document consumed by the ShelvesAI client
  svg    a schematic shelf preview with boards and item tiles`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			input := ""
			if len(args) > 0 {
				input = args[0]
			}
			return c.runRender(cmd.Context(), input, shelfID, opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&shelfID, "shelf", "s", "", "shelf ID to fetch from the ShelvesAI backend")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output base path (format extension is appended)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): json (default), svg (comma-separated)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass caches and refetch")

	cmd.Flags().Float64Var(&opts.RowTolerance, "row-tolerance", 0, "row clustering tolerance (default 0.06)")
	cmd.Flags().Float64Var(&opts.SpacingPad, "spacing-pad", 0, "horizontal spacing pad as a fraction of the median gap (default 0.2)")
	cmd.Flags().StringVar(&opts.BaseURL, "base-url", "", "media base URL for cover references")

	cmd.Flags().StringVar(&opts.Style, "style", "", fmt.Sprintf("SVG style: %s (default %s)", strings.Join(pipeline.StyleNames(), ", "), pipeline.DefaultStyle))
	cmd.Flags().Float64Var(&opts.Width, "width", 0, "SVG frame width")
	cmd.Flags().Float64Var(&opts.Height, "height", 0, "SVG frame height")
	cmd.Flags().BoolVar(&opts.Titles, "titles", false, "render item titles in the SVG")
	cmd.Flags().BoolVar(&opts.Covers, "covers", false, "embed cover images in the SVG")

	return cmd
}

// runRender executes the pipeline and writes one file per format.
func (c *CLI) runRender(ctx context.Context, input, shelfID string, opts pipeline.Options, output string, noCache bool) error {
	if (input == "") == (shelfID == "") {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "provide either an items.json file or --shelf, not both")
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	opts.ItemsFile = input
	opts.ShelfID = shelfID

	if shelfID != "" {
		cfg, err := c.loadConfig()
		if err != nil {
			return err
		}
		opts.Backend = backend.NewClient(cfg.Backend.BaseURL, runner.Cache, cfg.Cache.Duration(),
			backend.WithToken(cfg.Backend.Token))
	}

	spinner := newSpinnerWithContext(ctx, "Rendering shelf...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	// With --covers, re-render the SVG with images inlined as data URIs so
	// the file is self-contained. Failed downloads keep their remote href.
	if opts.Covers {
		if _, ok := result.Artifacts[pipeline.FormatSVG]; ok {
			result.Artifacts[pipeline.FormatSVG] = c.embedCovers(ctx, result.Layout, opts)
		}
	}

	base := output
	if base == "" {
		switch {
		case input != "":
			base = strings.TrimSuffix(input, filepath.Ext(input))
		default:
			base = shelfID
		}
	}

	printSuccess("Render complete")
	for _, format := range opts.Formats {
		path := base + "." + format
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write output %s: %w", path, err)
		}
		printFile(path)
	}

	dropped := result.Stats.ItemCount - result.Stats.PlacedCount
	printStats(result.Stats.PlacedCount, dropped, result.Stats.RowCount, result.CacheInfo.RenderHit)

	return nil
}

// embedCovers renders the SVG with cover images fetched and inlined. Covers
// are cached on disk so repeated renders don't refetch.
func (c *CLI) embedCovers(ctx context.Context, placed []layout.Item, opts pipeline.Options) []byte {
	var coverCache *httputil.Cache
	if dir, err := cacheDir(); err == nil {
		coverCache, _ = httputil.NewCache(filepath.Join(dir, "covers"), cache.TTLArtifact)
	}
	fetcher := media.NewFetcher(coverCache)

	items := make([]layout.Item, len(placed))
	copy(items, placed)
	for i := range items {
		if items[i].CoverURI == "" {
			continue
		}
		uri, err := fetcher.DataURI(ctx, items[i].CoverURI)
		if err != nil {
			c.Logger.Debug("cover fetch failed", "uri", items[i].CoverURI, "err", err)
			continue
		}
		items[i].CoverURI = uri
	}

	svgOpts := []render.SVGOption{render.WithSize(opts.Width, opts.Height), render.WithCovers()}
	if opts.Style != "" {
		svgOpts = append(svgOpts, render.WithStyle(render.Style(opts.Style)))
	}
	if opts.Titles {
		svgOpts = append(svgOpts, render.WithTitles())
	}
	return render.RenderSVG(items, svgOpts...)
}
