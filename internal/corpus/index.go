package corpus

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nataliafedorovabi/OBS-book-search/internal/errors"
)

// Index holds the flat lookup tables built by walking the tree once at
// load time. All slices preserve document order, which keeps iteration
// deterministic across runs.
type Index struct {
	tree *Tree

	chapters map[string]*ChapterInfo
	sections map[string]*SectionInfo
	chunks   map[string]*ChunkInfo

	chapterOrder []*ChapterInfo
	chunkOrder   []*ChunkInfo

	chunksByChapter map[string][]*ChunkInfo
	chunksBySection map[string][]*ChunkInfo
}

// Load reads a corpus snapshot from path and builds the index.
// A missing or malformed snapshot is fatal to the retrieval subsystem:
// the error is surfaced to the operator and never retried.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New(errors.ErrCodeCorpusNotFound,
			fmt.Sprintf("corpus snapshot not found: %s", path), err)
	}
	defer f.Close()

	ix, err := Read(f)
	if err != nil {
		return nil, err
	}

	st := ix.Stats()
	slog.Info("corpus loaded",
		"path", path,
		"books", st.Books,
		"chapters", st.Chapters,
		"sections", st.Sections,
		"chunks", st.Chunks)
	return ix, nil
}

// Read parses a corpus snapshot from r and builds the index.
func Read(r io.Reader) (*Index, error) {
	var tree Tree
	dec := json.NewDecoder(r)
	if err := dec.Decode(&tree); err != nil {
		return nil, errors.New(errors.ErrCodeCorpusMalformed,
			"corpus snapshot is not valid JSON", err)
	}

	ix := &Index{
		tree:            &tree,
		chapters:        make(map[string]*ChapterInfo),
		sections:        make(map[string]*SectionInfo),
		chunks:          make(map[string]*ChunkInfo),
		chunksByChapter: make(map[string][]*ChunkInfo),
		chunksBySection: make(map[string][]*ChunkInfo),
	}
	ix.build()
	return ix, nil
}

// build walks Book→Chapter→Section→Chunk once, denormalizing ancestor
// attributes onto each descendant record.
func (ix *Index) build() {
	for bi := range ix.tree.Books {
		book := &ix.tree.Books[bi]

		for ci := range book.Chapters {
			ch := &book.Chapters[ci]
			chInfo := &ChapterInfo{
				ID:          ch.ID,
				Number:      ch.Number,
				Title:       ch.Title,
				Summary:     ch.Summary,
				KeyConcepts: ch.KeyConcepts,
				BookTitle:   book.Title,
			}
			ix.chapters[ch.ID] = chInfo
			ix.chapterOrder = append(ix.chapterOrder, chInfo)

			for si := range ch.Sections {
				sec := &ch.Sections[si]
				ix.sections[sec.ID] = &SectionInfo{
					ID:             sec.ID,
					Title:          sec.Title,
					Summary:        sec.Summary,
					BookTitle:      book.Title,
					ChapterID:      ch.ID,
					ChapterTitle:   ch.Title,
					ChapterSummary: ch.Summary,
				}

				for ki := range sec.Chunks {
					chunk := &sec.Chunks[ki]
					info := &ChunkInfo{
						ID:             chunk.ID,
						Text:           chunk.Text,
						Keywords:       chunk.Keywords,
						BookTitle:      book.Title,
						ChapterID:      ch.ID,
						ChapterTitle:   ch.Title,
						ChapterSummary: ch.Summary,
						SectionID:      sec.ID,
						SectionTitle:   sec.Title,
						SectionSummary: sec.Summary,
					}
					ix.chunks[chunk.ID] = info
					ix.chunkOrder = append(ix.chunkOrder, info)
					ix.chunksByChapter[ch.ID] = append(ix.chunksByChapter[ch.ID], info)
					ix.chunksBySection[sec.ID] = append(ix.chunksBySection[sec.ID], info)
				}
			}
		}
	}
}

// Chapters returns all chapters with their summaries and key concepts,
// in document order.
func (ix *Index) Chapters() []*ChapterInfo {
	return ix.chapterOrder
}

// Chapter returns the chapter with the given id.
func (ix *Index) Chapter(id string) (*ChapterInfo, bool) {
	ch, ok := ix.chapters[id]
	return ch, ok
}

// Section returns the section with the given id.
func (ix *Index) Section(id string) (*SectionInfo, bool) {
	sec, ok := ix.sections[id]
	return sec, ok
}

// Chunk returns the chunk with the given id.
func (ix *Index) Chunk(id string) (*ChunkInfo, bool) {
	c, ok := ix.chunks[id]
	return c, ok
}

// Chunks returns every chunk in the corpus, in document order.
func (ix *Index) Chunks() []*ChunkInfo {
	return ix.chunkOrder
}

// ChapterChunks returns all chunks belonging to the given chapter,
// in document order. Returns nil for an unknown chapter.
func (ix *Index) ChapterChunks(chapterID string) []*ChunkInfo {
	return ix.chunksByChapter[chapterID]
}

// SectionChunks returns all chunks belonging to the given section,
// in document order.
func (ix *Index) SectionChunks(sectionID string) []*ChunkInfo {
	return ix.chunksBySection[sectionID]
}

// Stats returns corpus counts and snapshot metadata.
func (ix *Index) Stats() Stats {
	return Stats{
		Version:   ix.tree.Version,
		CreatedAt: ix.tree.CreatedAt,
		Books:     len(ix.tree.Books),
		Chapters:  len(ix.chapters),
		Sections:  len(ix.sections),
		Chunks:    len(ix.chunks),
	}
}

// maxDigestSummary bounds the per-chapter summary length in the digest.
const maxDigestSummary = 200

// ChapterDigest renders a compact chapter listing (number, title,
// truncated summary, key concepts) for embedding into an oracle prompt
// as topic-grounding context.
func (ix *Index) ChapterDigest() string {
	var b strings.Builder
	for _, ch := range ix.chapterOrder {
		fmt.Fprintf(&b, "Глава %d. %s\n", ch.Number, ch.Title)
		if ch.Summary != "" {
			summary := ch.Summary
			if len([]rune(summary)) > maxDigestSummary {
				summary = string([]rune(summary)[:maxDigestSummary]) + "..."
			}
			fmt.Fprintf(&b, "  %s\n", summary)
		}
		if len(ch.KeyConcepts) > 0 {
			fmt.Fprintf(&b, "  Ключевые концепции: %s\n", strings.Join(ch.KeyConcepts, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}
