package memory

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/HendryAvila/evermem-bridge/internal/evermem"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	// MaxCapturePerInteraction caps how many candidates one interaction persists.
	MaxCapturePerInteraction = 3

	// DefaultSenderName labels messages persisted on the user's behalf.
	DefaultSenderName = "OpenClaw User"

	// CreateTimeLayout matches the store's ISO-8601 millisecond timestamps.
	CreateTimeLayout = "2006-01-02T15:04:05.000Z07:00"

	roleUser = "user"
)

// now and newID are package-level vars to allow test injection.
var (
	now   = time.Now
	newID = uuid.NewString
)

// Storer is the slice of the store transport that capture needs.
type Storer interface {
	Store(ctx context.Context, p evermem.StoreParams) (json.RawMessage, error)
}

// Interaction is a completed agent run as reported by the host.
// Messages are kept raw: the host does not guarantee their shape.
type Interaction struct {
	Success  bool              `json:"success"`
	Messages []json.RawMessage `json:"messages"`
}

// CaptureCandidate is a text span extracted from one message.
type CaptureCandidate struct {
	Role string
	Text string
}

// CaptureAttempt describes one store call made by auto-capture.
type CaptureAttempt struct {
	MessageID string
	UserID    string
	Content   string
	CreatedAt string
	Stored    bool
	Error     string
}

// CaptureJournal records capture attempts. It's an optional dependency.
type CaptureJournal interface {
	RecordCapture(ctx context.Context, a CaptureAttempt) error
}

// Capturer persists qualifying user text after an interaction completes.
type Capturer struct {
	storer  Storer
	userID  string
	logger  *zap.Logger
	journal CaptureJournal
}

// NewCapturer creates a Capturer that stores on behalf of userID.
func NewCapturer(storer Storer, userID string, logger *zap.Logger) *Capturer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Capturer{storer: storer, userID: userID, logger: logger}
}

// SetJournal attaches a journal that records every store attempt.
func (c *Capturer) SetJournal(j CaptureJournal) {
	c.journal = j
}

// Capture extracts user text from a completed interaction, keeps what
// ShouldCapture accepts and persists up to MaxCapturePerInteraction items,
// one store call each. It returns how many were stored.
//
// Persistence is best-effort: the first failure stops the remaining
// attempts, but items already stored stay stored.
func (c *Capturer) Capture(ctx context.Context, in Interaction) int {
	if !in.Success || len(in.Messages) == 0 {
		return 0
	}

	var selected []CaptureCandidate
	for _, cand := range ExtractCandidates(in.Messages) {
		if ShouldCapture(cand.Text) {
			selected = append(selected, cand)
		}
	}
	if len(selected) > MaxCapturePerInteraction {
		selected = selected[:MaxCapturePerInteraction]
	}

	stored := 0
	for _, cand := range selected {
		params := evermem.StoreParams{
			MessageID:  "auto_" + newID(),
			CreateTime: now().UTC().Format(CreateTimeLayout),
			Sender:     c.userID,
			SenderName: DefaultSenderName,
			Content:    cand.Text,
			Role:       cand.Role,
		}
		_, err := c.storer.Store(ctx, params)
		c.record(ctx, params, err)
		if err != nil {
			c.logger.Warn("auto-capture failed", zap.Int("stored", stored), zap.Error(err))
			return stored
		}
		stored++
	}

	if stored > 0 {
		c.logger.Info("auto-captured memories", zap.Int("count", stored))
	}
	return stored
}

func (c *Capturer) record(ctx context.Context, p evermem.StoreParams, storeErr error) {
	if c.journal == nil {
		return
	}
	attempt := CaptureAttempt{
		MessageID: p.MessageID,
		UserID:    p.Sender,
		Content:   p.Content,
		CreatedAt: p.CreateTime,
		Stored:    storeErr == nil,
	}
	if storeErr != nil {
		attempt.Error = storeErr.Error()
	}
	if err := c.journal.RecordCapture(ctx, attempt); err != nil {
		c.logger.Warn("capture journal write failed", zap.String("message_id", p.MessageID), zap.Error(err))
	}
}

// ExtractCandidates returns the text of every user-authored message.
// A message body is either a string or a list of typed blocks, in which case
// the text blocks are joined with newlines. Anything else is ignored.
func ExtractCandidates(messages []json.RawMessage) []CaptureCandidate {
	var out []CaptureCandidate
	for _, raw := range messages {
		if !gjson.ValidBytes(raw) {
			continue
		}
		msg := gjson.ParseBytes(raw)
		if !msg.IsObject() {
			continue
		}
		if role := msg.Get("role"); role.Type != gjson.String || role.Str != roleUser {
			continue
		}

		content := msg.Get("content")
		switch {
		case content.Type == gjson.String:
			out = append(out, CaptureCandidate{Role: roleUser, Text: content.Str})
		case content.IsArray():
			var parts []string
			content.ForEach(func(_, block gjson.Result) bool {
				if !block.IsObject() {
					return true
				}
				typ, text := block.Get("type"), block.Get("text")
				if typ.Type == gjson.String && typ.Str == "text" && text.Type == gjson.String {
					parts = append(parts, text.Str)
				}
				return true
			})
			if len(parts) > 0 {
				out = append(out, CaptureCandidate{Role: roleUser, Text: strings.Join(parts, "\n")})
			}
		}
	}
	return out
}
