package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fTr0ut/ShelvesAI-sub003/pkg/backend"
	"github.com/fTr0ut/ShelvesAI-sub003/pkg/catalog"
	apperrors "github.com/fTr0ut/ShelvesAI-sub003/pkg/errors"
	"github.com/fTr0ut/ShelvesAI-sub003/pkg/pipeline"
)

// layoutCommand creates the layout command for normalizing item positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		shelfID   string
		output    string
		saveItems string
		noCache   bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout [items.json]",
		Short: "Normalize item positions into shelf rows",
		Long: `Normalize item positions into shelf rows.

The layout command takes an item payload - either a local items.json file or
a shelf fetched from the ShelvesAI backend via --shelf - and computes the
normalized layout: resolved positions clustered into rows, evenly spaced,
and anchored to the bottom of the shelf frame.

The output is a layout.json file that can be rendered with 'render' or
inspected with 'preview'.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) > 0 {
				input = args[0]
			}
			return c.runLayout(cmd.Context(), input, shelfID, opts, output, saveItems, noCache)
		},
	}

	cmd.Flags().StringVarP(&shelfID, "shelf", "s", "", "shelf ID to fetch from the ShelvesAI backend")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().StringVar(&saveItems, "save-items", "", "also write the resolved item payload to this file, for offline reuse")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass caches and refetch")

	cmd.Flags().Float64Var(&opts.RowTolerance, "row-tolerance", 0, "row clustering tolerance (default 0.06)")
	cmd.Flags().Float64Var(&opts.SpacingPad, "spacing-pad", 0, "horizontal spacing pad as a fraction of the median gap (default 0.2)")
	cmd.Flags().StringVar(&opts.BaseURL, "base-url", "", "media base URL for cover references")

	return cmd
}

// runLayout resolves the payload, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input, shelfID string, opts pipeline.Options, output, saveItems string, noCache bool) error {
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
	opts.Formats = []string{pipeline.FormatJSON}

	if shelfID != "" {
		cfg, err := c.loadConfig()
		if err != nil {
			return err
		}
		opts.Backend = backend.NewClient(cfg.Backend.BaseURL, runner.Cache, cfg.Cache.Duration(),
			backend.WithToken(cfg.Backend.Token))
		if opts.RowTolerance == 0 {
			opts.RowTolerance = cfg.Layout.RowTolerance
		}
		if opts.SpacingPad == 0 {
			opts.SpacingPad = cfg.Layout.SpacingPad
		}
	}

	spinner := newSpinnerWithContext(ctx, "Computing shelf layout...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		switch {
		case input != "":
			outputPath = strings.TrimSuffix(input, filepath.Ext(input)) + ".layout.json"
		default:
			outputPath = shelfID + ".layout.json"
		}
	}

	if err := os.WriteFile(outputPath, result.Artifacts[pipeline.FormatJSON], 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	if saveItems != "" {
		if err := catalog.WriteItemsFile(result.Items, saveItems); err != nil {
			return fmt.Errorf("write items %s: %w", saveItems, err)
		}
		printFile(saveItems)
	}

	dropped := result.Stats.ItemCount - result.Stats.PlacedCount
	if result.Stats.PlacedCount == 0 && result.Stats.ItemCount > 0 {
		printWarning("No items carried usable positions; layout is empty")
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(result.Stats.PlacedCount, dropped, result.Stats.RowCount, result.CacheInfo.LayoutHit)
	printNewline()
	printNextStep("Render", appName+" render "+outputPath)

	return nil
}
