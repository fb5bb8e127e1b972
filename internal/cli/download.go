package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"semvec/internal/adapter/modelcache"
	"semvec/internal/adapter/modelscope"
	"semvec/internal/usecase"
)

var (
	downloadCacheDir string
	downloadInstall  bool
)

var downloadCmd = &cobra.Command{
	Use:   "download [model]",
	Short: "Download an embedding model into the local cache",
	Long: `Download the model's complete artifact set into the local snapshot
cache using the modelscope tool. An already-cached model is returned
immediately without any transfer.

Exit codes: 0 on success, 1 when the download fails, 2 when the
modelscope tool is missing and could not be installed.

Examples:
  semvec download
  semvec download BAAI/bge-m3 --install`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)
	downloadCmd.Flags().StringVar(&downloadCacheDir, "cache-dir", "", "snapshot cache root (default ~/.cache/modelscope/hub/models)")
	downloadCmd.Flags().BoolVar(&downloadInstall, "install", false, "pip install the modelscope tool when missing")
}

func runDownload(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	modelID := cfg.Model.ID
	if len(args) > 0 {
		modelID = args[0]
	}

	cacheDir := cfg.Model.CacheDir
	if downloadCacheDir != "" {
		cacheDir = downloadCacheDir
	}

	autoInstall := cfg.Download.AutoInstall || downloadInstall

	fetcher := modelscope.NewCLIFetcher(cfg.Download.Python)
	acquireUC := usecase.NewAcquireUseCase(modelcache.NewLocator(cacheDir), fetcher, cacheDir, autoInstall)

	fmt.Printf("Downloading model: %s\n", modelID)

	path, err := acquireUC.Download(cmd.Context(), modelID)
	if errors.Is(err, usecase.ErrFetcherUnavailable) {
		fmt.Println()
		fmt.Println("The `modelscope` tool is not available. Install it manually:")
		fmt.Printf("  %s -m pip install --upgrade modelscope\n", cfg.Download.Python)
		fmt.Println("or rerun with --install to let semvec install it.")
		os.Exit(2)
	}
	if err != nil {
		fmt.Printf("Download failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Model available at: %s\n", path)
	return nil
}
