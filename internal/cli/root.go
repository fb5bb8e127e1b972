package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"semvec/config"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
)

var rootCmd = &cobra.Command{
	Use:   "semvec",
	Short: "Embed text into vectors and answer nearest-neighbor queries",
	Long: `semvec embeds short texts with a local or online embedding model,
persists the vectors in a SQLite store with vector-similarity indexing,
and answers top-K nearest-neighbor queries under euclidean and cosine
distance.

Example usage:
  semvec ingest "这是一个测试句子。" "Hello world"
  semvec search -q "这是一个查询句子。"
  semvec download BAAI/bge-m3`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./semvec.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}
