package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve mapping for asset documents.
//
// The mapping is designed with these priorities:
//  1. Fast full-text search on filenames and descriptions with English stemming
//  2. Exact keyword matching for group, tag, and status filters
//  3. Facet counts on group and tags for the browse UI
//  4. Numeric range queries on file size and ingest time
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	// --- Text fields (full-text searchable) ---

	// Name - the original filename, primary search target
	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = simple.Name
	nameFieldMapping.Store = true
	nameFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)

	// Description - the AI-written summary, searchable but not stored
	descFieldMapping := bleve.NewTextFieldMapping()
	descFieldMapping.Analyzer = en.AnalyzerName
	descFieldMapping.Store = false
	descFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("description", descFieldMapping)

	// --- Keyword fields (exact match, facetable) ---

	// Group classification code
	groupFieldMapping := bleve.NewTextFieldMapping()
	groupFieldMapping.Analyzer = keyword.Name
	groupFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("group", groupFieldMapping)

	// Tags - normalized controlled-vocabulary labels.
	// Keyword analyzer keeps multi-word labels intact (e.g., "fresh produce").
	tagsFieldMapping := bleve.NewTextFieldMapping()
	tagsFieldMapping.Analyzer = keyword.Name
	tagsFieldMapping.Store = true
	tagsFieldMapping.IncludeTermVectors = true // For faceting
	docMapping.AddFieldMappingsAt("tags", tagsFieldMapping)

	// Facet names from the vocabulary (Dishes, Beverages, ...)
	facetsFieldMapping := bleve.NewTextFieldMapping()
	facetsFieldMapping.Analyzer = keyword.Name
	facetsFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("facets", facetsFieldMapping)

	// ID - stored but not analyzed
	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	extFieldMapping := bleve.NewTextFieldMapping()
	extFieldMapping.Analyzer = keyword.Name
	extFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("extension", extFieldMapping)

	mimeFieldMapping := bleve.NewTextFieldMapping()
	mimeFieldMapping.Analyzer = keyword.Name
	mimeFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("mime_type", mimeFieldMapping)

	reviewFieldMapping := bleve.NewTextFieldMapping()
	reviewFieldMapping.Analyzer = keyword.Name
	reviewFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("review_status", reviewFieldMapping)

	previewFieldMapping := bleve.NewTextFieldMapping()
	previewFieldMapping.Analyzer = keyword.Name
	previewFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("preview_status", previewFieldMapping)

	// --- Numeric fields (range queries, sorting) ---

	sizeFieldMapping := bleve.NewNumericFieldMapping()
	sizeFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("file_size", sizeFieldMapping)

	ingestedAtFieldMapping := bleve.NewNumericFieldMapping()
	ingestedAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("ingested_at", ingestedAtFieldMapping)

	updatedAtFieldMapping := bleve.NewNumericFieldMapping()
	updatedAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("updated_at", updatedAtFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
