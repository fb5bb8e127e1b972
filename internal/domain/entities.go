package domain

// Metric selects the distance function used for nearest-neighbor ranking.
type Metric string

const (
	MetricEuclidean Metric = "euclidean"
	MetricCosine    Metric = "cosine"
)

// Valid reports whether m names a supported metric.
func (m Metric) Valid() bool {
	return m == MetricEuclidean || m == MetricCosine
}

// Item is a persisted (text, embedding) pair. The store assigns IDs on
// insertion; text and embedding are never updated afterwards.
type Item struct {
	ID        int64
	Text      string
	Embedding []float32
}

// RankedResult is one row of a nearest-neighbor ranking, ordered ascending
// by distance.
type RankedResult struct {
	ItemID   int64   `json:"item_id"`
	Text     string  `json:"text"`
	Distance float64 `json:"distance"`
}

// Similarity converts a cosine distance into a cosine similarity. Only
// meaningful for results ranked under MetricCosine.
func (r RankedResult) Similarity() float64 {
	return 1 - r.Distance
}

// SourceKind discriminates how a model should be loaded.
type SourceKind int

const (
	// SourceLocalPath points at a fully materialized snapshot on disk.
	// Loading it must not touch the network.
	SourceLocalPath SourceKind = iota
	// SourceRemoteID is a bare model identifier; the loading side may
	// fetch and cache it on demand.
	SourceRemoteID
)

// ModelSource is the single resolution of "do we already have this model":
// either a local snapshot path or an identifier for online loading.
type ModelSource struct {
	Kind  SourceKind
	Value string
}

func (s ModelSource) IsLocal() bool {
	return s.Kind == SourceLocalPath
}
