package cli

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ragqa/internal/domain"
	"ragqa/internal/usecase"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path|glob]...",
	Short: "Process documents into the collection",
	Long: `Extract, chunk and embed PDF, DOCX and TXT files and add them to the
collection. Arguments may be files, directories or glob patterns. Files over
the size limit and repeated filenames are skipped.

Examples:
  ragqa ingest .                        # Ingest the current directory
  ragqa ingest report.pdf notes.txt     # Ingest specific files
  ragqa ingest "papers/**/*.pdf"        # Ingest by pattern`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if len(args) == 0 {
		args = []string{GetRootDir()}
	}

	a, err := newApp(cmd.Context(), cfg, GetRootDir(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	batch := a.collector.Collect(args)
	for _, r := range batch.Rejected {
		fmt.Fprintf(os.Stderr, "Skipped %s: %v\n", r.Path, r.Err)
	}
	if len(batch.Accepted) == 0 {
		return errors.New("no files to process")
	}

	fmt.Printf("Processing %d files...\n", len(batch.Accepted))

	var progress usecase.ProgressFunc
	if term.IsTerminal(int(os.Stderr.Fd())) {
		progress = newProgress()
	}

	result, err := a.session.Ingest(cmd.Context(), batch.Accepted, progress)
	if result != nil && len(result.Errors) > 0 {
		fmt.Printf("\nWarnings:\n")
		for _, e := range result.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}
	if err != nil {
		if errors.Is(err, domain.ErrNoDocuments) {
			return err
		}
		return fmt.Errorf("ingest failed: %w", err)
	}

	fmt.Printf("\nIngest complete:\n")
	fmt.Printf("  Files processed: %d\n", result.FilesProcessed)
	fmt.Printf("  Files failed:    %d\n", result.FilesFailed)
	fmt.Printf("  Chunks created:  %d\n", result.ChunksCreated)
	fmt.Printf("  Words extracted: %d\n", result.WordsExtracted)

	info := a.session.Info(cmd.Context())
	fmt.Printf("\n%s (%d chunks)\n", info.Status, info.Count)
	if cfg.Index.Backend == "memory" {
		fmt.Println("Note: the memory backend does not persist; the collection is gone when this command exits.")
	}
	return nil
}

// newProgress renders ingest progress on stderr with an ETA.
func newProgress() usecase.ProgressFunc {
	var (
		bar         *progressbar.ProgressBar
		mu          sync.Mutex
		startTime   time.Time
		initialized bool
	)

	return func(processed, total int, currentFile string) {
		mu.Lock()
		defer mu.Unlock()

		if !initialized {
			startTime = time.Now()
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Processing[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(os.Stderr)
				}),
			)
			initialized = true
		}

		bar.Set(processed)

		if processed > 0 {
			elapsed := time.Since(startTime)
			rate := float64(processed) / elapsed.Seconds()
			remaining := total - processed
			if rate > 0 {
				eta := time.Duration(float64(remaining)/rate) * time.Second
				bar.Describe(fmt.Sprintf("[cyan]Processing[reset] ETA: %s", formatDuration(eta)))
			}
		}
	}
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}
