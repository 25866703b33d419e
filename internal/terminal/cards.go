package terminal

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/straye-as/toolshelf/internal/domain"
)

const maxDescriptionWidth = 60

// RenderCards writes one row per tool: id, title, tags, a shortened
// description and the link.
func RenderCards(w io.Writer, tools []domain.Tool, query string) error {
	if len(tools) == 0 {
		if query != "" {
			_, err := fmt.Fprintf(w, "No tools found matching %q\n", query)
			return err
		}
		_, err := fmt.Fprintln(w, "No tools yet")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tTAGS\tDESCRIPTION\tURL")
	for _, t := range tools {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			t.ID,
			t.Title,
			strings.Join(t.Tags, ","),
			shorten(t.Description, maxDescriptionWidth),
			t.URL)
	}
	return tw.Flush()
}

// shorten collapses whitespace and cuts s to at most n runes
func shorten(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
