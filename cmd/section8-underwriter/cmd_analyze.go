package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"text/tabwriter"
	"time"

	"section8-underwriter/internal"
	"section8-underwriter/internal/adapters/sheet"
	"section8-underwriter/internal/core/domain"
	"section8-underwriter/internal/core/port/usecases_port"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	analyzeInput    string
	analyzeOutput   string
	analyzeFormat   string
	analyzeGoodOnly bool
	analyzeQuiet    bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Underwrite a CSV/XLSX property list and write an offer sheet",
	Long: `Reads a property list (Address, Zip, Bedrooms, List Price and optional
Description, Sqft, Agent Name, Agent Email columns), underwrites every row
and writes the tier-sorted offer sheet.

Examples:
  section8-underwriter analyze --input listings.csv
  section8-underwriter analyze --input listings.xlsx --out deals.csv --good-only
  section8-underwriter analyze --input listings.csv --config policy.yaml --workers 8`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeInput, "input", "i", "", "Input CSV or XLSX file")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "out", "o", "", "Output file (default: offers_<timestamp>.<format>)")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "", "Output format: xlsx or csv (default: from --out, else xlsx)")
	analyzeCmd.Flags().BoolVar(&analyzeGoodOnly, "good-only", false, "Export only Green Light and Caution deals")
	analyzeCmd.Flags().BoolVarP(&analyzeQuiet, "quiet", "q", false, "Disable the progress line")
	_ = analyzeCmd.MarkFlagRequired("input")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	format, output, err := resolveOutput(analyzeFormat, analyzeOutput, time.Now())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := globalOpts
	opts.LogWriter = os.Stderr

	var progress *progressLine
	if !analyzeQuiet && term.IsTerminal(int(os.Stderr.Fd())) {
		progress = &progressLine{w: os.Stderr}
	}

	result, err := internal.RunAnalyze(ctx, opts, internal.AnalyzeOptions{
		Input:    analyzeInput,
		Output:   output,
		Format:   format,
		GoodOnly: analyzeGoodOnly,
		Progress: progress.callback(),
	})
	progress.finish()
	if err != nil {
		return err
	}

	printSummary(cmd.OutOrStdout(), result, output)
	return nil
}

// resolveOutput выбирает формат и имя выходного файла по флагам
func resolveOutput(formatFlag, out string, now time.Time) (sheet.Format, string, error) {
	var format sheet.Format
	switch strings.ToLower(formatFlag) {
	case "":
	case string(sheet.FormatXLSX):
		format = sheet.FormatXLSX
	case string(sheet.FormatCSV):
		format = sheet.FormatCSV
	default:
		return "", "", fmt.Errorf("unsupported --format %q, use xlsx or csv", formatFlag)
	}

	if out == "" {
		if format == "" {
			format = sheet.FormatXLSX
		}
		return format, fmt.Sprintf("offers_%s.%s", now.Format("20060102_150405"), format), nil
	}
	if format == "" {
		f, err := sheet.FormatFromFilename(out)
		if err != nil {
			return "", "", err
		}
		format = f
	}
	return format, out, nil
}

// progressLine перерисовывает одну строку прогресса в терминале.
// nil-значение ничего не выводит
type progressLine struct {
	mu    sync.Mutex
	w     io.Writer
	width int
}

func (p *progressLine) callback() usecases_port.ProgressFunc {
	if p == nil {
		return nil
	}
	return func(done, total int, address string) {
		p.mu.Lock()
		defer p.mu.Unlock()

		line := fmt.Sprintf("[%d/%d] %s", done, total, address)
		if len(line) > 100 {
			line = line[:97] + "..."
		}
		pad := ""
		if n := p.width - len(line); n > 0 {
			pad = strings.Repeat(" ", n)
		}
		p.width = len(line)
		fmt.Fprintf(p.w, "\r%s%s", line, pad)
	}
}

func (p *progressLine) finish() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.width > 0 {
		fmt.Fprintln(p.w)
	}
}

func printSummary(w io.Writer, result domain.BatchResult, output string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Run\t%s\n", result.RunID)
	for _, tier := range domain.AllTiers() {
		fmt.Fprintf(tw, "%s\t%d\n", tier, result.Summary[tier])
	}
	fmt.Fprintf(tw, "Skipped (< $%.0f)\t%d\n", domain.MinListPrice, len(result.Skipped))
	fmt.Fprintf(tw, "Elapsed\t%s\n", result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond))
	fmt.Fprintf(tw, "Offer sheet\t%s\n", output)
	tw.Flush()
}
