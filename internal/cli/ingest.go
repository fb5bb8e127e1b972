package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"semvec/internal/adapter/fs"
	"semvec/internal/usecase"
)

var (
	ingestFile     string
	ingestDir      string
	ingestIncludes []string
	ingestExcludes []string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [text]...",
	Short: "Embed texts and persist them in the vector store",
	Long: `Embed the given texts and append them to the vector store.
Texts can be passed as arguments, read line by line from a file, or
collected from files in a directory.

Examples:
  semvec ingest "这是一个测试句子。" "Hello world"
  semvec ingest --file corpus.txt
  semvec ingest --dir ./notes --include "**/*.md"`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringVar(&ingestFile, "file", "", "read one text per line from this file")
	ingestCmd.Flags().StringVar(&ingestDir, "dir", "", "ingest files under this directory, one item per file")
	ingestCmd.Flags().StringSliceVar(&ingestIncludes, "include", nil, "glob patterns for --dir (default **/*.txt, **/*.md)")
	ingestCmd.Flags().StringSliceVar(&ingestExcludes, "exclude", nil, "glob patterns to skip for --dir")
}

func runIngest(cmd *cobra.Command, args []string) error {
	texts, err := collectTexts(args)
	if err != nil {
		return err
	}
	if len(texts) == 0 {
		return fmt.Errorf("nothing to ingest: pass texts as arguments or use --file/--dir")
	}

	cfg := GetConfig()

	embedder, cleanup, err := buildEmbedder(cfg, GetRootDir())
	if err != nil {
		return err
	}
	defer cleanup()

	st, err := openStore(cfg, GetRootDir())
	if err != nil {
		return err
	}
	defer st.Close()

	bar := progressbar.NewOptions(len(texts),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("Embedding"),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)

	ingestUC := usecase.NewIngestUseCase(embedder, st, cfg.Embedding.BatchSize)
	result, err := ingestUC.Ingest(cmd.Context(), texts, func(done, total int) {
		_ = bar.Set(done)
	})
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("Inserted %d items (%d total in store)\n", result.Inserted, result.Total)
	return nil
}

func collectTexts(args []string) ([]string, error) {
	var texts []string
	texts = append(texts, args...)

	if ingestFile != "" {
		f, err := os.Open(ingestFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", ingestFile, err)
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line != "" {
				texts = append(texts, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", ingestFile, err)
		}
	}

	if ingestDir != "" {
		walker := fs.NewWalker(ingestIncludes, ingestExcludes)
		files, err := walker.Walk(ingestDir)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", ingestDir, err)
		}
		for _, path := range files {
			content, err := fs.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", path, err)
			}
			if content = strings.TrimSpace(content); content != "" {
				texts = append(texts, content)
			}
		}
	}

	return texts, nil
}
