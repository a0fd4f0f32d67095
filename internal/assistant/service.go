package assistant

import (
	"context"
	"strings"
	"time"

	"github.com/arialabs/aria-server/internal/store"
)

// Generator produces the assistant's raw reply for a user command.
// Implementations call an external model; the reply is untrusted free text.
type Generator interface {
	Generate(ctx context.Context, command, assistantName, userName string) (string, error)
}

// Service orchestrates the command pipeline: validate input, append history,
// invoke the model, parse the reply, route the intent. Each stage is a
// possible early exit; nothing is retried mid-stream and every failure maps
// to exactly one Kind.
type Service struct {
	repo    store.Repository
	history *HistoryStore
	gen     Generator
	now     func() time.Time
}

// NewService creates the pipeline service.
func NewService(repo store.Repository, history *HistoryStore, gen Generator) *Service {
	return &Service{repo: repo, history: history, gen: gen, now: time.Now}
}

// WithClock overrides the time source. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// HandleCommand runs one command through the pipeline and returns a single
// terminal result.
func (s *Service) HandleCommand(ctx context.Context, userID, command string) (Result, error) {
	if userID == "" {
		return Result{}, &Error{Kind: KindUnauthorized, Message: "unauthorized"}
	}
	if strings.TrimSpace(command) == "" {
		return Result{}, &Error{Kind: KindValidation, Message: "missing command"}
	}

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return Result{}, &Error{Kind: KindStorage, Message: "load user failed", Err: err}
	}
	if user == nil {
		return Result{}, &Error{Kind: KindNotFound, Message: "user not found"}
	}

	// History is appended durably before the model call so a model timeout
	// still leaves an accurate record of what was asked.
	if err := s.history.Append(ctx, user, command, s.now()); err != nil {
		return Result{}, &Error{Kind: KindStorage, Message: "append history failed", Err: err}
	}

	raw, err := s.gen.Generate(ctx, command, user.AssistantDisplayName(), user.DisplayName())
	if err != nil {
		return Result{}, &Error{Kind: KindUpstreamInvalid, Message: "assistant returned invalid response", Err: err}
	}
	if strings.TrimSpace(raw) == "" {
		return Result{}, &Error{Kind: KindUpstreamInvalid, Message: "assistant returned empty response"}
	}

	intent, perr := Parse(raw, command)
	if perr != nil {
		return Result{}, perr
	}

	routed, rerr := Route(intent, s.now())
	if rerr != nil {
		return Result{}, rerr
	}

	return Result{Type: routed.Type, UserInput: intent.UserInput, Response: routed.Response}, nil
}
