//go:build ignore

// Package main generates a synthetic corpus snapshot for benchmarking and
// manual testing. It emits a corpus tree plus a matching embedding snapshot
// with random unit vectors, so the hybrid path can be exercised without
// calling a real embedding provider.
//
// Usage: go run scripts/generate-test-corpus.go -books 3 -chapters 12 -output data
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"
)

var (
	numBooks    = flag.Int("books", 3, "Number of books to generate")
	numChapters = flag.Int("chapters", 12, "Chapters per book")
	numSections = flag.Int("sections", 4, "Sections per chapter")
	numChunks   = flag.Int("chunks", 5, "Chunks per section")
	dimensions  = flag.Int("dims", 1024, "Embedding dimensions")
	outputDir   = flag.String("output", "data", "Output directory")
	seed        = flag.Int64("seed", 42, "Random seed for reproducibility")
)

var topics = []string{
	"делегирование полномочий", "мотивация персонала", "контроль исполнения",
	"стратегическое планирование", "корпоративная культура", "управление конфликтами",
	"оценка эффективности", "командообразование", "лидерство", "постановка целей",
}

var sentences = []string{
	"Руководитель передаёт часть своих полномочий подчинённым вместе с ответственностью за результат.",
	"Система мотивации опирается на сочетание материальных и нематериальных стимулов.",
	"Контроль без обратной связи превращается в формальность и демотивирует сотрудников.",
	"Стратегия определяет долгосрочные приоритеты и рамки для оперативных решений.",
	"Культура организации проявляется в том, как принимаются решения в отсутствие регламентов.",
	"Конфликт интересов разрешается через прояснение целей и зон ответственности сторон.",
	"Оценка эффективности строится на заранее согласованных и измеримых показателях.",
	"Команда проходит стадии формирования, шторма, нормирования и продуктивной работы.",
}

type chunk struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Keywords []string `json:"keywords"`
}

type section struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Summary string  `json:"summary"`
	Chunks  []chunk `json:"chunks"`
}

type chapter struct {
	ID          string    `json:"id"`
	Number      int       `json:"number"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	KeyConcepts []string  `json:"key_concepts"`
	Sections    []section `json:"sections"`
}

type book struct {
	Title    string    `json:"title"`
	Chapters []chapter `json:"chapters"`
}

type tree struct {
	Version   string `json:"version"`
	CreatedAt string `json:"created_at"`
	Books     []book `json:"books"`
}

type vectorSnapshot struct {
	Model      string               `json:"model"`
	Dimensions int                  `json:"dimensions"`
	Vectors    map[string][]float32 `json:"vectors"`
}

func main() {
	flag.Parse()
	rng := rand.New(rand.NewSource(*seed))

	t := tree{
		Version:   "1",
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	vectors := map[string][]float32{}

	for b := 0; b < *numBooks; b++ {
		bk := book{Title: fmt.Sprintf("Учебник %d: Управление организацией", b+1)}
		for c := 0; c < *numChapters; c++ {
			topic := topics[rng.Intn(len(topics))]
			ch := chapter{
				ID:          fmt.Sprintf("b%d-ch%d", b+1, c+1),
				Number:      c + 1,
				Title:       fmt.Sprintf("Глава %d. %s", c+1, topic),
				Summary:     fmt.Sprintf("Глава о теме: %s.", topic),
				KeyConcepts: []string{topic},
			}
			vectors[ch.ID] = randomUnitVector(rng, *dimensions)

			for s := 0; s < *numSections; s++ {
				sec := section{
					ID:    fmt.Sprintf("%s-s%d", ch.ID, s+1),
					Title: fmt.Sprintf("Раздел %d.%d", c+1, s+1),
				}
				for k := 0; k < *numChunks; k++ {
					cnk := chunk{
						ID:       fmt.Sprintf("%s-c%d", sec.ID, k+1),
						Text:     sentences[rng.Intn(len(sentences))] + " " + sentences[rng.Intn(len(sentences))],
						Keywords: []string{topic},
					}
					sec.Chunks = append(sec.Chunks, cnk)
				}
				ch.Sections = append(ch.Sections, sec)
			}
			bk.Chapters = append(bk.Chapters, ch)
		}
		t.Books = append(t.Books, bk)
	}

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		fatal(err)
	}
	if err := writeJSON(filepath.Join(*outputDir, "corpus.json"), t); err != nil {
		fatal(err)
	}
	if err := writeJSON(filepath.Join(*outputDir, "vectors.json"), vectorSnapshot{
		Model:      "synthetic",
		Dimensions: *dimensions,
		Vectors:    vectors,
	}); err != nil {
		fatal(err)
	}

	fmt.Printf("Generated %d books, %d chapter vectors in %s\n",
		len(t.Books), len(vectors), *outputDir)
}

func randomUnitVector(rng *rand.Rand, dims int) []float32 {
	v := make([]float32, dims)
	var norm float64
	for i := range v {
		x := rng.NormFloat64()
		v[i] = float32(x)
		norm += x * x
	}
	norm = math.Sqrt(norm)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return v
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
