package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/nataliafedorovabi/OBS-book-search/internal/corpus"
	"github.com/nataliafedorovabi/OBS-book-search/internal/escalate"
	"github.com/nataliafedorovabi/OBS-book-search/internal/search"
)

// snippetLen caps the chunk text preview in result listings.
const snippetLen = 200

// Renderer writes search outcomes to a terminal.
type Renderer struct {
	out    io.Writer
	styles Styles
}

// NewRenderer creates a renderer for w with TTY-appropriate styling.
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{out: w, styles: StylesFor(w)}
}

// Outcome renders an escalation outcome: the result list plus expansion
// and exhaustion markers.
func (r *Renderer) Outcome(out escalate.Outcome) {
	if out.Expanded {
		fmt.Fprintln(r.out, r.styles.Dim.Render(fmt.Sprintf("расширенный поиск, раунд %d", out.Round)))
	}
	r.Results(out.Results)
	if out.Exhausted {
		fmt.Fprintln(r.out, r.styles.Warning.Render("поиск исчерпан: новых фрагментов в книгах не найдено"))
	}
}

// Results renders a ranked result list.
func (r *Renderer) Results(results []search.Result) {
	if len(results) == 0 {
		fmt.Fprintln(r.out, r.styles.Dim.Render("ничего не найдено"))
		return
	}

	for i, res := range results {
		header := fmt.Sprintf("%d. %s", i+1, res.SectionTitle)
		fmt.Fprintln(r.out, r.styles.Header.Render(header))

		source := fmt.Sprintf("   %s / %s", res.BookTitle, res.ChapterTitle)
		fmt.Fprintln(r.out, r.styles.Source.Render(source))

		line := fmt.Sprintf("   score %.3f", res.Score)
		if res.DoublyConfirmed {
			line += " " + r.styles.Badge.Render("[подтверждено дважды]")
		}
		if res.Degraded {
			line += " " + r.styles.Warning.Render("[только по ключевым словам]")
		}
		fmt.Fprintln(r.out, r.styles.Score.Render(line))

		fmt.Fprintln(r.out, "   "+snippet(res.Text))
		fmt.Fprintln(r.out)
	}
}

// Stats renders corpus statistics.
func (r *Renderer) Stats(s corpus.Stats) {
	fmt.Fprintln(r.out, r.styles.Header.Render("Корпус"))
	fmt.Fprintf(r.out, "  книги:    %d\n", s.Books)
	fmt.Fprintf(r.out, "  главы:    %d\n", s.Chapters)
	fmt.Fprintf(r.out, "  разделы:  %d\n", s.Sections)
	fmt.Fprintf(r.out, "  фрагменты: %d\n", s.Chunks)
}

// Error renders an error line.
func (r *Renderer) Error(err error) {
	fmt.Fprintln(r.out, r.styles.Error.Render("ошибка: "+err.Error()))
}

func snippet(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= snippetLen {
		return text
	}
	return string(runes[:snippetLen]) + "…"
}
