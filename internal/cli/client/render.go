package client

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cloo-solutions/khub/internal/domain"
	"github.com/cloo-solutions/khub/internal/pagination"
	"github.com/cloo-solutions/khub/internal/service"
)

const snippetWidth = 160

func decodeState(raw json.RawMessage) (*service.State, error) {
	var st service.State
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("failed to parse session state: %w", err)
	}
	return &st, nil
}

func printJSON(w io.Writer, v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// renderState prints the session the way the explorer page lays it out.
func renderState(w io.Writer, st *service.State) {
	fmt.Fprintf(w, "[%s]\n", st.Status)
	if st.Notice {
		fmt.Fprintf(w, "! %s\n", st.NoticeText)
	}
	if st.Query == "" {
		return
	}
	fmt.Fprintf(w, "Query: %s\n", st.Query)
	if st.Statistics != "" {
		fmt.Fprintln(w, st.Statistics)
	}

	switch {
	case st.Results != nil:
		fmt.Fprintln(w)
		renderPage(w, "", st.Results)
	case st.Left != nil && st.Right != nil:
		fmt.Fprintln(w)
		renderPage(w, "Left", st.Left)
		fmt.Fprintln(w)
		renderPage(w, "Right", st.Right)
		fmt.Fprintln(w)
		switch {
		case st.Voted:
			fmt.Fprintln(w, "Vote recorded. Thank you!")
		case st.CanVote:
			fmt.Fprintln(w, "Which list is better? khub vote left|right")
		}
	}
}

func renderPage(w io.Writer, heading string, page *pagination.Page[domain.SearchResult]) {
	if heading != "" {
		fmt.Fprintf(w, "== %s (%d) ==\n", heading, page.TotalItems)
	}
	if page.TotalItems == 0 {
		fmt.Fprintln(w, "No results.")
		return
	}

	offset := (page.Current - 1) * page.PageSize
	for i, r := range page.Items {
		renderResult(w, offset+i+1, r)
	}
	if page.TotalPages > 1 {
		fmt.Fprintln(w, pageLine(page))
	}
}

func renderResult(w io.Writer, n int, r domain.SearchResult) {
	title := r.Link
	if r.Title != nil && *r.Title != "" {
		title = *r.Title
	}
	fmt.Fprintf(w, "%d. %s\n", n, title)
	if len(r.Ancestors) > 0 {
		crumbs := make([]string, len(r.Ancestors))
		for i, a := range r.Ancestors {
			crumbs[i] = a.Title
		}
		fmt.Fprintf(w, "   %s\n", strings.Join(crumbs, " / "))
	}
	fmt.Fprintf(w, "   %s\n", r.Link)
	if r.Content != nil && *r.Content != "" {
		content := *r.Content
		if runes := []rune(content); len(runes) > snippetWidth {
			content = string(runes[:snippetWidth-3]) + "..."
		}
		fmt.Fprintf(w, "   %s\n", content)
	}
	if line := r.DisplayTime(); line != "" {
		if r.Email != nil {
			line += " by " + *r.Email
		}
		fmt.Fprintf(w, "   %s\n", line)
	}
}

// pageLine renders the pagination control, e.g. "< 2 3 [4] 5 6 7 >".
func pageLine(page *pagination.Page[domain.SearchResult]) string {
	parts := make([]string, 0, len(page.Window)+2)
	if page.HasPrev {
		parts = append(parts, "<")
	}
	for _, n := range page.Window {
		label := strconv.Itoa(n)
		if n == page.Current {
			label = "[" + label + "]"
		}
		parts = append(parts, label)
	}
	if page.HasNext {
		parts = append(parts, ">")
	}
	return fmt.Sprintf("Page %d of %d: %s", page.Current, page.TotalPages, strings.Join(parts, " "))
}
