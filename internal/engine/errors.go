package engine

import "errors"

var (
	// ErrNotInitialized indicates the pipeline was invoked before a document
	// store and retriever were configured. Fatal to the call, never retried.
	ErrNotInitialized = errors.New("grounding pipeline not initialized")

	// ErrRetrieval indicates the retrieval boundary failed or returned
	// malformed data (e.g. a candidate id absent from the document store).
	// The grounding attempt fails; the pipeline does not retry.
	ErrRetrieval = errors.New("retrieval failed")
)
