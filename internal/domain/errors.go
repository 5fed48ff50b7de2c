// Package domain holds errors shared across the query pipeline.
package domain

import "errors"

var (
	// ErrEmptyRequest signals a search request built with no tokens and
	// no numeric features, which is a caller bug, not a data condition.
	ErrEmptyRequest = errors.New("request has no tokens and no features")
	// ErrInvalidVariant signals an unknown query variant tag.
	ErrInvalidVariant = errors.New("invalid query variant")
	// ErrIndexUnavailable signals that the search index did not answer.
	ErrIndexUnavailable = errors.New("search index unavailable")
)
