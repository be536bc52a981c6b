package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve mapping for book documents.
//
// Titles and descriptions are mostly Russian, so text fields use the
// standard (unicode, lowercased, no stemming) analyzer rather than a
// language-specific one.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = standard.Name

	doc := bleve.NewDocumentMapping()

	text := func(analyzer string, store, vectors bool) *mapping.FieldMapping {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = analyzer
		fm.Store = store
		fm.IncludeTermVectors = vectors
		return fm
	}

	doc.AddFieldMappingsAt("name", text(standard.Name, true, true))
	doc.AddFieldMappingsAt("author", text(standard.Name, true, true))
	// Not stored: descriptions are read from the database.
	doc.AddFieldMappingsAt("description", text(standard.Name, false, false))
	doc.AddFieldMappingsAt("publication", text(simple.Name, true, false))
	doc.AddFieldMappingsAt("genre_names", text(standard.Name, false, false))

	doc.AddFieldMappingsAt("id", text(keyword.Name, false, false))
	doc.AddFieldMappingsAt("genre_slugs", text(keyword.Name, true, false))

	for _, field := range []string{"publication_year", "price_cents", "created_at"} {
		nm := bleve.NewNumericFieldMapping()
		nm.Store = true
		doc.AddFieldMappingsAt(field, nm)
	}

	indexMapping.AddDocumentMapping("_default", doc)
	return indexMapping
}
