package client

import (
	"bytes"
	"testing"

	"github.com/cloo-solutions/khub/internal/domain"
	"github.com/cloo-solutions/khub/internal/pagination"
	"github.com/cloo-solutions/khub/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderState_Single(t *testing.T) {
	results := []domain.SearchResult{
		{
			Link:           "https://wiki/pages/1",
			Title:          domain.StringPtr("Budget"),
			Content:        domain.StringPtr("Quarterly budget"),
			LastUpdateTime: domain.StringPtr("2 May 2023"),
			Ancestors:      []domain.Ancestor{{Title: "Finance"}, {Title: "Reports"}},
		},
		{Link: "https://graph/2"},
	}
	page := pagination.Paginate(results, 1, 2)

	var buf bytes.Buffer
	renderState(&buf, &service.State{
		Status:     "Server available",
		Query:      "budget",
		Statistics: "Retrieved 2 items in 0.5 seconds",
		Results:    &page,
	})

	out := buf.String()
	assert.Contains(t, out, "[Server available]")
	assert.Contains(t, out, "Retrieved 2 items in 0.5 seconds")
	assert.Contains(t, out, "2. https://graph/2")
	assert.NotContains(t, out, "Budget")
	assert.Contains(t, out, "Page 2 of 2: < 1 [2]")
}

func TestRenderState_Compare(t *testing.T) {
	left := pagination.Paginate([]domain.SearchResult{{Link: "https://a", Title: domain.StringPtr("A")}}, 10, 1)
	right := pagination.Paginate([]domain.SearchResult{}, 10, 1)

	var buf bytes.Buffer
	renderState(&buf, &service.State{Status: "Server available", Query: "q", Left: &left, Right: &right, CanVote: true})

	out := buf.String()
	assert.Contains(t, out, "== Left (1) ==")
	assert.Contains(t, out, "1. A")
	assert.Contains(t, out, "== Right (0) ==")
	assert.Contains(t, out, "No results.")
	assert.Contains(t, out, "khub vote left|right")
}

func TestRenderState_Notice(t *testing.T) {
	var buf bytes.Buffer
	renderState(&buf, &service.State{Status: "Server available", Notice: true, NoticeText: service.NoticeText})

	assert.Contains(t, buf.String(), "! Unable to send a request!")
}

func TestRenderResult_Details(t *testing.T) {
	var buf bytes.Buffer
	renderResult(&buf, 3, domain.SearchResult{
		Link:         "https://teams/1",
		Title:        domain.StringPtr("MS Teams Message"),
		Email:        domain.StringPtr("a@example.com"),
		CreationTime: domain.StringPtr("1 May 2023"),
		Ancestors:    []domain.Ancestor{{Title: "Finance"}, {Title: "Reports"}},
	})

	out := buf.String()
	assert.Contains(t, out, "3. MS Teams Message")
	assert.Contains(t, out, "Finance / Reports")
	assert.Contains(t, out, "Created 1 May 2023 by a@example.com")
}

func TestPageQuery(t *testing.T) {
	q, err := pageQuery("", 2)
	require.NoError(t, err)
	assert.Equal(t, "page=2", q)

	q, err = pageQuery("right", 4)
	require.NoError(t, err)
	assert.Equal(t, "right_page=4", q)

	_, err = pageQuery("middle", 1)
	assert.Error(t, err)
}
