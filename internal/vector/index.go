// Package vector loads the persisted embedding snapshot and answers
// nearest-neighbor queries over it. The snapshot is optional: it is only
// required by the hybrid searcher, and its absence degrades search to
// keyword-only mode rather than failing startup.
package vector

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/coder/hnsw"

	"github.com/nataliafedorovabi/OBS-book-search/internal/errors"
)

// Result is a single nearest-neighbor hit.
type Result struct {
	// ID is the chapter or chunk id the vector was stored under.
	ID string

	// Score is cosine similarity clamped into [0, 1]: 1 = identical,
	// opposed vectors floor at 0.
	Score float64
}

// Snapshot is the persisted embedding file: id → fixed-length vector.
type Snapshot struct {
	Model      string               `json:"model"`
	Dimensions int                  `json:"dimensions"`
	Vectors    map[string][]float32 `json:"vectors"`
}

// Index is an in-memory HNSW graph over the snapshot vectors.
// Read-only after Build; safe for concurrent searches.
type Index struct {
	mu         sync.RWMutex
	graph      *hnsw.Graph[uint64]
	keyMap     map[uint64]string
	dimensions int
}

// LoadSnapshot reads an embedding snapshot from path.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.ErrCodeSnapshotCorrupt,
			fmt.Sprintf("embedding snapshot not readable: %s", path), err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.New(errors.ErrCodeSnapshotCorrupt,
			"embedding snapshot is not valid JSON", err)
	}
	return &snap, nil
}

// Build constructs an HNSW index from the snapshot. Vectors whose length
// does not match the snapshot's declared dimension are rejected.
func Build(snap *Snapshot) (*Index, error) {
	graph := hnsw.NewGraph[uint64]()
	graph.Distance = hnsw.CosineDistance
	graph.M = 16
	graph.EfSearch = 20
	graph.Ml = 0.25

	ix := &Index{
		graph:      graph,
		keyMap:     make(map[uint64]string, len(snap.Vectors)),
		dimensions: snap.Dimensions,
	}

	var key uint64
	for id, vec := range snap.Vectors {
		if len(vec) != snap.Dimensions {
			return nil, errors.New(errors.ErrCodeSnapshotCorrupt,
				fmt.Sprintf("vector %q has %d dimensions, snapshot declares %d",
					id, len(vec), snap.Dimensions), nil)
		}
		graph.Add(hnsw.MakeNode(key, vec))
		ix.keyMap[key] = id
		key++
	}
	return ix, nil
}

// Dimensions returns the vector dimension the index was built with.
func (ix *Index) Dimensions() int { return ix.dimensions }

// Len returns the number of indexed vectors.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.keyMap)
}

// Search returns the k nearest neighbors of query, scored by cosine
// similarity descending.
func (ix *Index) Search(query []float32, k int) ([]Result, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if len(query) != ix.dimensions {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("query vector has %d dimensions, index has %d",
				len(query), ix.dimensions), nil)
	}
	if ix.graph.Len() == 0 {
		return []Result{}, nil
	}

	nodes := ix.graph.Search(query, k)
	results := make([]Result, 0, len(nodes))
	for _, node := range nodes {
		id, ok := ix.keyMap[node.Key]
		if !ok {
			continue
		}
		// CosineDistance returns 1 - cos(a, b), so 1 - distance is the
		// raw cosine in [-1, 1]. Opposed vectors floor at 0.
		distance := ix.graph.Distance(query, node.Value)
		score := float64(1 - distance)
		if score < 0 {
			score = 0
		}
		results = append(results, Result{ID: id, Score: score})
	}
	return results, nil
}
