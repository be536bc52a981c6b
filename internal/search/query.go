package search

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Sort orders.
const (
	SortRelevance = "relevance"
	SortRecent    = "recent"
	SortName      = "name"
)

// SearchParams configures a search.
type SearchParams struct {
	Query      string
	GenreSlugs []string // OR across slugs
	MinYear    int
	MaxYear    int

	Limit  int
	Offset int
	SortBy string

	IncludeFacets bool
}

// SearchResult is one page of hits.
type SearchResult struct {
	Query  string       `json:"query"`
	Total  uint64       `json:"total"`
	TookMs int64        `json:"took_ms"`
	Hits   []SearchHit  `json:"hits"`
	Genres []FacetCount `json:"genres,omitempty"`
}

// SearchHit is a matching book. Highlights are keyed by field.
type SearchHit struct {
	ID         string            `json:"id"`
	Score      float64           `json:"score"`
	Name       string            `json:"name"`
	Author     string            `json:"author"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// FacetCount is a facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search runs params against the index.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	if params.Limit <= 0 {
		params.Limit = 12
	}
	if params.Offset < 0 {
		return nil, fmt.Errorf("negative offset %d", params.Offset)
	}

	req := bleve.NewSearchRequestOptions(buildQuery(params), params.Limit, params.Offset, false)
	req.Fields = []string{"name", "author"}
	req.Highlight = bleve.NewHighlight()
	req.Highlight.AddField("name")
	req.Highlight.AddField("author")

	switch params.SortBy {
	case SortRecent:
		req.SortBy([]string{"-created_at", "_id"})
	case SortName:
		req.SortBy([]string{"name", "_id"})
	default:
		req.SortBy([]string{"-_score", "-created_at"})
	}

	if params.IncludeFacets {
		req.AddFacet("genre_slugs", bleve.NewFacetRequest("genre_slugs", 20))
	}

	res, err := s.run(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(res.Hits)),
	}

	for _, hit := range res.Hits {
		h := SearchHit{ID: hit.ID, Score: hit.Score}
		h.Name, _ = hit.Fields["name"].(string)
		h.Author, _ = hit.Fields["author"].(string)
		for field, fragments := range hit.Fragments {
			if len(fragments) == 0 {
				continue
			}
			if h.Highlights == nil {
				h.Highlights = make(map[string]string)
			}
			h.Highlights[field] = fragments[0]
		}
		result.Hits = append(result.Hits, h)
	}

	if facet, ok := res.Facets["genre_slugs"]; ok && facet.Terms != nil {
		for _, term := range facet.Terms.Terms() {
			result.Genres = append(result.Genres, FacetCount{Value: term.Term, Count: term.Count})
		}
	}

	return result, nil
}

// buildQuery matches the text against title (strongest), author, genre
// names, publisher and description, with a fuzzy and a prefix clause on the
// title for typos and as-you-type lookups. Filters are ANDed on top.
func buildQuery(params SearchParams) query.Query {
	var must []query.Query

	if q := strings.TrimSpace(params.Query); q != "" {
		match := func(field string, boost float64) query.Query {
			m := bleve.NewMatchQuery(q)
			m.SetField(field)
			m.SetBoost(boost)
			return m
		}

		text := []query.Query{
			match("name", 3.0),
			match("author", 2.0),
			match("genre_names", 1.2),
			match("publication", 1.0),
			match("description", 0.6),
		}

		fuzzy := bleve.NewFuzzyQuery(strings.ToLower(q))
		fuzzy.SetFuzziness(1)
		fuzzy.SetField("name")
		fuzzy.SetBoost(0.8)
		text = append(text, fuzzy)

		if utf8.RuneCountInString(q) >= 2 && !strings.ContainsAny(q, " \t") {
			prefix := bleve.NewPrefixQuery(strings.ToLower(q))
			prefix.SetField("name")
			prefix.SetBoost(0.5)
			text = append(text, prefix)
		}

		must = append(must, bleve.NewDisjunctionQuery(text...))
	}

	if len(params.GenreSlugs) > 0 {
		genres := make([]query.Query, len(params.GenreSlugs))
		for i, slug := range params.GenreSlugs {
			tq := bleve.NewTermQuery(slug)
			tq.SetField("genre_slugs")
			genres[i] = tq
		}
		must = append(must, bleve.NewDisjunctionQuery(genres...))
	}

	if params.MinYear > 0 || params.MaxYear > 0 {
		lo, hi := float64(params.MinYear), float64(params.MaxYear)
		if params.MaxYear == 0 {
			hi = 9999
		}
		inclusive := true
		r := bleve.NewNumericRangeInclusiveQuery(&lo, &hi, &inclusive, &inclusive)
		r.SetField("publication_year")
		must = append(must, r)
	}

	switch len(must) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return must[0]
	default:
		return bleve.NewConjunctionQuery(must...)
	}
}

func (s *SearchIndex) run(ctx context.Context, req *bleve.SearchRequest) (*bleve.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.SearchInContext(ctx, req)
}
