// Package corpus loads the hierarchical context tree (books, chapters,
// sections, chunks) from a persisted snapshot and exposes flat, read-only
// lookup tables over it. The tree is loaded once at process start and never
// mutated; a reload requires re-running ingestion and restarting.
package corpus

// Tree is the persisted corpus snapshot as produced by offline ingestion.
type Tree struct {
	Version   string `json:"version"`
	CreatedAt string `json:"created_at"`
	Books     []Book `json:"books"`
}

// Book is the top-level corpus unit.
type Book struct {
	Title    string    `json:"title"`
	Chapters []Chapter `json:"chapters"`
}

// Chapter belongs to exactly one book.
type Chapter struct {
	ID          string    `json:"id"`
	Number      int       `json:"number"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	KeyConcepts []string  `json:"key_concepts"`
	Sections    []Section `json:"sections"`
}

// Section belongs to exactly one chapter.
type Section struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Summary string  `json:"summary"`
	Chunks  []Chunk `json:"chunks"`
}

// Chunk is the leaf unit of retrieval and the only entity ever returned
// to a caller as a match.
type Chunk struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Keywords []string `json:"keywords"`
}

// ChapterInfo is a chapter record enriched with its book title.
// Index tables hand these out; they must be treated as read-only.
type ChapterInfo struct {
	ID          string
	Number      int
	Title       string
	Summary     string
	KeyConcepts []string
	BookTitle   string
}

// SectionInfo is a section record enriched with ancestor attributes.
type SectionInfo struct {
	ID             string
	Title          string
	Summary        string
	BookTitle      string
	ChapterID      string
	ChapterTitle   string
	ChapterSummary string
}

// ChunkInfo is a chunk record enriched with ancestor attributes, so a
// search hit carries everything needed for citation without extra lookups.
type ChunkInfo struct {
	ID             string
	Text           string
	Keywords       []string
	BookTitle      string
	ChapterID      string
	ChapterTitle   string
	ChapterSummary string
	SectionID      string
	SectionTitle   string
	SectionSummary string
}

// Stats summarizes a loaded corpus for health reporting. It plays no
// retrieval role.
type Stats struct {
	Version   string `json:"version"`
	CreatedAt string `json:"created_at"`
	Books     int    `json:"books"`
	Chapters  int    `json:"chapters"`
	Sections  int    `json:"sections"`
	Chunks    int    `json:"chunks"`
}
