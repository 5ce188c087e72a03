package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/fTr0ut/ShelvesAI-sub003/pkg/backend"
	apperrors "github.com/fTr0ut/ShelvesAI-sub003/pkg/errors"
	"github.com/fTr0ut/ShelvesAI-sub003/pkg/layout"
	"github.com/fTr0ut/ShelvesAI-sub003/pkg/pipeline"
)

// Preview styles
var (
	previewSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	previewNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	previewBoardStyle    = lipgloss.NewStyle().Foreground(colorGray)
)

// previewCommand creates the preview command for inspecting layouts in the terminal.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		shelfID string
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "preview [items.json]",
		Short: "Preview a shelf layout interactively in the terminal",
		Long: `Preview a shelf layout interactively in the terminal.

The preview command runs the layout pipeline and opens a terminal view of the
resulting shelf: one line of tiles per row, bottom row at the bottom. Use the
arrow keys to walk the shelf and inspect individual items.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) > 0 {
				input = args[0]
			}
			return c.runPreview(cmd.Context(), input, shelfID, opts, noCache)
		},
	}

	cmd.Flags().StringVarP(&shelfID, "shelf", "s", "", "shelf ID to fetch from the ShelvesAI backend")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass caches and refetch")
	cmd.Flags().Float64Var(&opts.RowTolerance, "row-tolerance", 0, "row clustering tolerance (default 0.06)")
	cmd.Flags().Float64Var(&opts.SpacingPad, "spacing-pad", 0, "horizontal spacing pad as a fraction of the median gap (default 0.2)")

	return cmd
}

func (c *CLI) runPreview(ctx context.Context, input, shelfID string, opts pipeline.Options, noCache bool) error {
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
	}

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}

	if len(result.Layout) == 0 {
		printWarning("Nothing to preview: no items could be placed")
		return nil
	}

	model := NewShelfPreviewModel(result.Layout)
	program := tea.NewProgram(model, tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	return nil
}

// =============================================================================
// ShelfPreviewModel - Interactive shelf layout preview
// =============================================================================

// previewRow is one shelf board with its items, ordered left to right.
type previewRow struct {
	Y     float64
	Items []layout.Item
}

// ShelfPreviewModel is the bubbletea model for the shelf layout preview.
type ShelfPreviewModel struct {
	Rows  []previewRow
	Row   int
	Col   int
	Width int
	quit  bool
}

// NewShelfPreviewModel groups placed items into rows, top row first.
func NewShelfPreviewModel(items []layout.Item) ShelfPreviewModel {
	byLevel := map[float64]int{}
	rows := []previewRow{}
	for _, it := range items {
		idx, ok := byLevel[it.Y]
		if !ok {
			idx = len(rows)
			byLevel[it.Y] = idx
			rows = append(rows, previewRow{Y: it.Y})
		}
		rows[idx].Items = append(rows[idx].Items, it)
	}
	return ShelfPreviewModel{Rows: rows, Width: 80}
}

func (m ShelfPreviewModel) Init() tea.Cmd {
	return nil
}

func (m ShelfPreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quit = true
			return m, tea.Quit
		case "up", "k":
			if m.Row > 0 {
				m.Row--
				m.clampCol()
			}
		case "down", "j":
			if m.Row < len(m.Rows)-1 {
				m.Row++
				m.clampCol()
			}
		case "left", "h":
			if m.Col > 0 {
				m.Col--
			}
		case "right", "l":
			if m.Col < len(m.Rows[m.Row].Items)-1 {
				m.Col++
			}
		}
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		if m.Width < 40 {
			m.Width = 40
		}
	}
	return m, nil
}

func (m *ShelfPreviewModel) clampCol() {
	if max := len(m.Rows[m.Row].Items) - 1; m.Col > max {
		m.Col = max
	}
}

func (m ShelfPreviewModel) View() string {
	if m.quit {
		return ""
	}

	var b strings.Builder

	b.WriteString(StyleTitle.Render("Shelf Preview"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ rows  ←/→ items  q quit"))
	b.WriteString("\n\n")

	boardWidth := m.Width - 4
	if boardWidth < 20 {
		boardWidth = 20
	}

	for ri, row := range m.Rows {
		var rendered strings.Builder
		rendered.WriteString("  ")
		used := 0
		for ci, it := range row.Items {
			pos := int(it.X * float64(boardWidth-4))
			for used < pos {
				rendered.WriteString(" ")
				used++
			}
			tile := "[" + truncate(it.Title, 10) + "]"
			if ri == m.Row && ci == m.Col {
				rendered.WriteString(previewSelectedStyle.Render(tile))
			} else {
				rendered.WriteString(previewNormalStyle.Render(tile))
			}
			used += len([]rune(tile))
		}

		b.WriteString(rendered.String())
		b.WriteString("\n  ")
		b.WriteString(previewBoardStyle.Render(strings.Repeat("─", boardWidth)))
		b.WriteString("\n\n")
	}

	cur := m.Rows[m.Row].Items[m.Col]
	b.WriteString(StyleDim.Render("  selected: "))
	b.WriteString(StyleValue.Render(cur.Title))
	if cur.Detail != "" {
		b.WriteString(StyleDim.Render(" · " + cur.Detail))
	}
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  x=%.2f y=%.2f", cur.X, cur.Y)))
	if cur.CoverURI != "" {
		b.WriteString(StyleDim.Render("  cover: " + cur.CoverURI))
	}
	b.WriteString("\n")

	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
