package memory

import (
	"context"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/HendryAvila/evermem-bridge/internal/evermem"
	"go.uber.org/zap"
)

const (
	// MinRecallPromptLength is the shortest prompt worth searching on.
	MinRecallPromptLength = 10

	// RecallQueryLength caps the prompt prefix sent as the search query.
	RecallQueryLength = 200

	// RecallTopK is the result cap requested from the store.
	RecallTopK = 3

	// MaxRecallSummaries caps how many summaries are injected.
	MaxRecallSummaries = 5

	recallHeader = "The following memories from past conversations may be relevant:"
	recallClose  = "</relevant-memories>"
)

// Searcher is the slice of the store transport that recall needs.
type Searcher interface {
	Search(ctx context.Context, p evermem.SearchParams) (json.RawMessage, error)
}

// Recaller builds the context block injected before an agent turn.
type Recaller struct {
	searcher Searcher
	userID   string
	logger   *zap.Logger
}

// NewRecaller creates a Recaller that searches on behalf of userID.
func NewRecaller(searcher Searcher, userID string, logger *zap.Logger) *Recaller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recaller{searcher: searcher, userID: userID, logger: logger}
}

// Recall searches the store for memories relevant to prompt and returns the
// block to prepend to the agent's context. The boolean is false when there
// is nothing to inject: short prompt, no matches, or a failed search.
// Failures are logged, never returned.
func (r *Recaller) Recall(ctx context.Context, prompt string) (string, bool) {
	if utf8.RuneCountInString(prompt) < MinRecallPromptLength {
		return "", false
	}

	data, err := r.searcher.Search(ctx, evermem.SearchParams{
		Query:          truncateRunes(prompt, RecallQueryLength),
		RetrieveMethod: evermem.MethodKeyword,
		TopK:           RecallTopK,
		UserID:         r.userID,
	})
	if err != nil {
		r.logger.Warn("auto-recall failed", zap.Error(err))
		return "", false
	}

	summaries := ExtractSummaries(data)
	if len(summaries) == 0 {
		return "", false
	}

	r.logger.Info("injecting memories into context", zap.Int("count", len(summaries)))
	return RenderRecallContext(summaries), true
}

// RenderRecallContext wraps at most MaxRecallSummaries summaries as a
// bulleted list inside the recall delimiters.
func RenderRecallContext(summaries []string) string {
	if len(summaries) > MaxRecallSummaries {
		summaries = summaries[:MaxRecallSummaries]
	}

	var b strings.Builder
	b.WriteString(RecallMarker)
	b.WriteString("\n")
	b.WriteString(recallHeader)
	for _, s := range summaries {
		b.WriteString("\n- ")
		b.WriteString(s)
	}
	b.WriteString("\n")
	b.WriteString(recallClose)
	return b.String()
}
