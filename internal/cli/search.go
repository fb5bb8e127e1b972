package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"semvec/internal/domain"
	"semvec/internal/usecase"
)

var (
	searchQuery  string
	searchTopK   int
	searchMetric string
	searchJSON   bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Rank stored items against a query text",
	Long: `Embed the query and return the top-K nearest stored items.
By default both euclidean and cosine rankings are printed; euclidean
reports raw L2 distance, cosine reports similarity (1 - cosine distance).

Examples:
  semvec search -q "这是一个查询句子。"
  semvec search -q "greeting" --metric cosine -k 5 --json`,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "query text (required)")
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 0, "number of results (default from config)")
	searchCmd.Flags().StringVar(&searchMetric, "metric", "", "euclidean or cosine (default both)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output as JSON")
	searchCmd.MarkFlagRequired("query")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	metrics := []domain.Metric{domain.MetricEuclidean, domain.MetricCosine}
	if searchMetric != "" {
		m := domain.Metric(searchMetric)
		if !m.Valid() {
			return fmt.Errorf("unsupported metric: %s", searchMetric)
		}
		metrics = []domain.Metric{m}
	}

	topK := cfg.Retrieve.TopK
	if searchTopK > 0 {
		topK = searchTopK
	}

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

	searchUC := usecase.NewSearchUseCase(embedder, st)
	rankings, err := searchUC.SearchAll(cmd.Context(), searchQuery, metrics, topK)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rankings)
	}

	for _, ranking := range rankings {
		fmt.Printf("Top-%d results (%s):\n", topK, ranking.Metric)
		for _, r := range ranking.Results {
			if ranking.Metric == domain.MetricCosine {
				fmt.Printf("  id=%d, cos_sim=%.6f, text=%s\n", r.ItemID, r.Similarity(), r.Text)
			} else {
				fmt.Printf("  id=%d, dist=%.6f, text=%s\n", r.ItemID, r.Distance, r.Text)
			}
		}
	}
	return nil
}
