package search

import (
	"context"

	"github.com/torgcloud/prefiks/internal/domain/query/token"
	"github.com/torgcloud/prefiks/internal/domain/search/request"
	"github.com/torgcloud/prefiks/internal/domain/search/result"
)

// Repository executes one structured request against the external
// index and returns raw hits in native relevance order.
type Repository interface {
	Search(ctx context.Context, req *request.Request, limit int) ([]result.Hit, error)
}

// Corrector produces a keyboard-layout-corrected token alternative, or
// reports that none is plausible.
type Corrector interface {
	Correct(tokens []token.Token) ([]token.Token, bool)
}
