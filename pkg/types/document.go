// Package types defines the core data structures for the schemaground
// grounding engine: indexed schema documents, per-question entities, and the
// scored grounding result returned to callers.
package types

import "fmt"

// DocumentKind identifies what a schema document describes.
// The set is closed; it is never extended at runtime.
type DocumentKind string

const (
	// KindModel is a document describing a model/table as a whole.
	KindModel DocumentKind = "model"

	// KindColumn is a document describing a single column.
	KindColumn DocumentKind = "column"

	// KindRecipe is a curated or template-generated query pattern.
	KindRecipe DocumentKind = "recipe"
)

// Valid reports whether k is one of the closed set of document kinds.
func (k DocumentKind) Valid() bool {
	switch k {
	case KindModel, KindColumn, KindRecipe:
		return true
	}
	return false
}

// RecipeType classifies a recipe document by the query pattern it encodes.
type RecipeType string

const (
	// RecipeAggregation covers counting/summing/averaging patterns.
	RecipeAggregation RecipeType = "aggregation"

	// RecipeTemporal covers date-range and recency patterns.
	RecipeTemporal RecipeType = "temporal"

	// RecipeStatus covers lifecycle/status filtering patterns.
	RecipeStatus RecipeType = "status"

	// RecipeRelationship covers foreign-key/join patterns.
	RecipeRelationship RecipeType = "relationship"

	// RecipeNone marks a recipe without a specific pattern classification.
	RecipeNone RecipeType = "none"
)

// Document is an indexed unit of schema knowledge. Documents are immutable
// once the index is built; the engine never mutates them.
type Document struct {
	// ID is the stable, unique key. It encodes the kind unambiguously:
	// no two documents share an ID across kinds.
	ID string `json:"id"`

	// Kind identifies the document type (model, column, recipe).
	Kind DocumentKind `json:"doc_type"`

	// Text is the natural-language description used for embedding.
	Text string `json:"text"`

	// Metadata holds kind-dependent attributes.
	Metadata Metadata `json:"metadata"`
}

// Metadata holds the kind-dependent attributes of a document. Fields that do
// not apply to a document's kind are left at their zero value.
type Metadata struct {
	// Model/table identification (model and column kinds; recipes may carry
	// a model+column reference when the recipe targets a specific cell).
	Model  string `json:"model,omitempty"`
	Table  string `json:"table,omitempty"`
	Column string `json:"column,omitempty"`

	// Column attributes (column kind only).
	DataType string `json:"data_type,omitempty"`
	Nullable bool   `json:"nullable,omitempty"`

	// Keywords are lexical anchors for matching: column value vocabulary for
	// column documents, topic terms for recipes.
	Keywords []string `json:"keywords,omitempty"`

	// Recipe attributes (recipe kind only).
	JoinHints      []string   `json:"join_hints,omitempty"`
	SemanticsNotes []string   `json:"semantics_notes,omitempty"`
	Curated        bool       `json:"curated,omitempty"`
	RecipeType     RecipeType `json:"recipe_type,omitempty"`
}

// HasKeyword reports whether kw (already lower-cased) is present in the
// document's keyword set.
func (m *Metadata) HasKeyword(kw string) bool {
	for _, k := range m.Keywords {
		if k == kw {
			return true
		}
	}
	return false
}

// Validate checks the structural invariants of a document.
func (d *Document) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("document: ID is required")
	}
	if !d.Kind.Valid() {
		return fmt.Errorf("document %s: unknown kind %q", d.ID, d.Kind)
	}
	if d.Text == "" {
		return fmt.Errorf("document %s: text is required", d.ID)
	}
	if d.Kind == KindColumn && d.Metadata.Column == "" {
		return fmt.Errorf("document %s: column documents require metadata.column", d.ID)
	}
	if d.Kind == KindRecipe && d.Metadata.RecipeType != "" {
		switch d.Metadata.RecipeType {
		case RecipeAggregation, RecipeTemporal, RecipeStatus, RecipeRelationship, RecipeNone:
		default:
			return fmt.Errorf("document %s: unknown recipe type %q", d.ID, d.Metadata.RecipeType)
		}
	}
	return nil
}
