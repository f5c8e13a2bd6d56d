package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"travel-agent/internal/dialogue"
	"travel-agent/internal/domain"
	"travel-agent/internal/fetch"
	"travel-agent/internal/repository"
)

const (
	defaultMaxHistory  = 5
	defaultMaxQuestion = 500

	// FallbackAnswer is returned to users whenever a turn cannot be answered.
	FallbackAnswer = "Sorry, I could not process that request."
	cancelAnswer   = "No problem, I have cancelled that request. How else can I help you?"
)

type ParamGetter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

type IntentRouter interface {
	Route(ctx context.Context, turn domain.Turn, flight *domain.FlightContext, hotel *domain.HotelContext) dialogue.Decision
}

type FlightFlow interface {
	Handle(ctx context.Context, turn domain.Turn, current *domain.FlightContext) (dialogue.Outcome[domain.FlightContext], error)
}

type HotelFlow interface {
	Handle(ctx context.Context, turn domain.Turn, current *domain.HotelContext) (dialogue.Outcome[domain.HotelContext], error)
}

type VisaFlow interface {
	Handle(ctx context.Context, turn domain.Turn, country string, current *domain.VisaContext) dialogue.Outcome[domain.VisaContext]
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

// ChatDeps are the collaborators of a ChatService. Params and Logger are
// optional.
type ChatDeps struct {
	Store  repository.UserStore
	Router IntentRouter
	Flight FlightFlow
	Hotel  HotelFlow
	Visa   VisaFlow
	LLM    dialogue.TextCompletion
	Params ParamGetter
	Logger *slog.Logger
}

// ChatConfig holds the tunables read by main.
type ChatConfig struct {
	ParamPrefix     string
	MaxHistoryItems int
	MaxQuestionLen  int
}

// ChatService runs one conversation turn end to end.
type ChatService struct {
	store  repository.UserStore
	router IntentRouter
	flight FlightFlow
	hotel  HotelFlow
	visa   VisaFlow
	llm    dialogue.TextCompletion
	params ParamGetter
	logger *slog.Logger

	paramPrefix    string
	maxHistory     int
	maxQuestionLen int

	validate *validator.Validate
	locks    *userLocks
	now      func() time.Time

	cacheMu        sync.RWMutex
	cacheLoaded    bool
	companyContext string
}

type ChatInput struct {
	Question string `validate:"required"`
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
}

type ChatOutput struct {
	Answer string
	Intent string
}

func NewChatService(deps ChatDeps, cfg ChatConfig) (*ChatService, error) {
	switch {
	case deps.Store == nil:
		return nil, errors.New("usecase: user store must not be nil")
	case deps.Router == nil:
		return nil, errors.New("usecase: router must not be nil")
	case deps.Flight == nil:
		return nil, errors.New("usecase: flight dialogue must not be nil")
	case deps.Hotel == nil:
		return nil, errors.New("usecase: hotel dialogue must not be nil")
	case deps.Visa == nil:
		return nil, errors.New("usecase: visa dialogue must not be nil")
	case deps.LLM == nil:
		return nil, errors.New("usecase: llm client must not be nil")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxHistoryItems <= 0 {
		cfg.MaxHistoryItems = defaultMaxHistory
	}
	if cfg.MaxQuestionLen <= 0 {
		cfg.MaxQuestionLen = defaultMaxQuestion
	}
	return &ChatService{
		store:          deps.Store,
		router:         deps.Router,
		flight:         deps.Flight,
		hotel:          deps.Hotel,
		visa:           deps.Visa,
		llm:            deps.LLM,
		params:         deps.Params,
		logger:         logger.With("component", "chat"),
		paramPrefix:    strings.TrimRight(strings.TrimSpace(cfg.ParamPrefix), "/"),
		maxHistory:     cfg.MaxHistoryItems,
		maxQuestionLen: cfg.MaxQuestionLen,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
		locks:          newUserLocks(),
		now:            time.Now,
	}, nil
}

// Chat answers one user message. Turns of the same user are serialized in
// process; concurrent writers elsewhere surface as ErrorConflict. Nothing is
// persisted when an error is returned.
func (s *ChatService) Chat(ctx context.Context, in ChatInput) (ChatOutput, error) {
	in, err := s.normalizeInput(in)
	if err != nil {
		return ChatOutput{}, err
	}
	userID := repository.NormalizeUserID(in.Email)

	unlock := s.locks.Lock(userID)
	defer unlock()

	state, err := s.store.LoadUser(ctx, userID)
	if err != nil {
		return ChatOutput{}, newError(ErrorInternal, "state_load_error", err)
	}

	turn := domain.Turn{
		Question:       in.Question,
		Name:           in.Name,
		History:        state.History,
		IsFirstMessage: len(state.History) == 0,
	}
	decision := s.router.Route(ctx, turn, state.Flight, state.Hotel)

	answer, err := s.dispatch(ctx, turn, decision, &state)
	if err != nil {
		s.logger.Warn("turn failed", "intent", string(decision.Intent), "err", err)
		return ChatOutput{}, err
	}

	now := s.now().UTC()
	if state.CreatedAt.IsZero() {
		state.CreatedAt = now
	}
	state.LastSeenAt = now
	state.Name = in.Name
	state.AppendHistory(s.maxHistory,
		domain.HistoryEntry{Role: domain.RoleUser, Text: in.Question, At: now},
		domain.HistoryEntry{Role: domain.RoleAssistant, Text: answer, At: now},
	)

	if err := s.store.SaveUser(ctx, &state); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return ChatOutput{}, newError(ErrorConflict, "state_version_conflict", err)
		}
		return ChatOutput{}, newError(ErrorInternal, "state_write_error", err)
	}

	return ChatOutput{Answer: answer, Intent: string(decision.Intent)}, nil
}

func (s *ChatService) normalizeInput(in ChatInput) (ChatInput, error) {
	in.Question = strings.TrimSpace(in.Question)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)

	if err := s.validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			prefix := "invalid_"
			if fe.Tag() == "required" {
				prefix = "empty_"
			}
			return ChatInput{}, newError(ErrorInvalidInput, prefix+strings.ToLower(fe.Field()), err)
		}
		return ChatInput{}, newError(ErrorInternal, "validation_error", err)
	}
	if len(in.Question) > s.maxQuestionLen {
		return ChatInput{}, newError(ErrorInvalidInput, "question_too_long", nil)
	}
	return in, nil
}

// dispatch runs the dialogue chosen by the router and applies its outcome to
// state. At most one of the flight and hotel contexts stays active.
func (s *ChatService) dispatch(ctx context.Context, turn domain.Turn, d dialogue.Decision, state *domain.UserState) (string, error) {
	switch d.Intent {
	case dialogue.IntentCancel:
		state.Flight = nil
		state.Hotel = nil
		return cancelAnswer, nil

	case dialogue.IntentFlight:
		out, err := s.flight.Handle(ctx, turn, d.Flight)
		if err != nil {
			return "", searchError("flight", err)
		}
		if out.Persist {
			state.Flight = out.Context
			state.Hotel = nil
		}
		return out.Answer, nil

	case dialogue.IntentHotel:
		out, err := s.hotel.Handle(ctx, turn, d.Hotel)
		if err != nil {
			return "", searchError("hotel", err)
		}
		if out.Persist {
			state.Hotel = out.Context
			state.Flight = nil
		}
		return out.Answer, nil

	case dialogue.IntentVisa:
		out := s.visa.Handle(ctx, turn, d.Country, state.Visa)
		if out.Persist {
			state.Visa = out.Context
		}
		return out.Answer, nil

	default:
		return s.generalAnswer(ctx, turn)
	}
}

func (s *ChatService) generalAnswer(ctx context.Context, turn domain.Turn) (string, error) {
	answer, err := s.llm.Generate(ctx, buildGeneralPrompt(s.loadCompanyContext(ctx), turn))
	if err != nil {
		if status, ok := upstreamStatusCode(err); ok && status == http.StatusTooManyRequests {
			return "", newError(ErrorRateLimited, "llm_rate_limited", err)
		}
		return "", newError(ErrorUpstream, "llm_error", err)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return FallbackAnswer, nil
	}
	return answer, nil
}

// loadCompanyContext reads <prefix>/company-context once. A failed read
// falls back to DefaultCompanyContext and is retried on the next turn.
func (s *ChatService) loadCompanyContext(ctx context.Context) string {
	if s.params == nil || s.paramPrefix == "" {
		return DefaultCompanyContext
	}

	s.cacheMu.RLock()
	if s.cacheLoaded {
		defer s.cacheMu.RUnlock()
		return s.companyContext
	}
	s.cacheMu.RUnlock()

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if s.cacheLoaded {
		return s.companyContext
	}
	v, err := s.params.GetParameter(ctx, s.paramPrefix+"/company-context")
	if err != nil || strings.TrimSpace(v) == "" {
		s.logger.Warn("company context unavailable, using default", "err", err)
		return DefaultCompanyContext
	}
	s.companyContext = v
	s.cacheLoaded = true
	return v
}

func searchError(kind string, err error) *Error {
	if errors.Is(err, fetch.ErrMissingCredentials) {
		return newError(ErrorConfiguration, kind+"_credentials_missing", err)
	}
	if status, ok := upstreamStatusCode(err); ok && status == http.StatusTooManyRequests {
		return newError(ErrorRateLimited, kind+"_rate_limited", err)
	}
	return newError(ErrorUpstream, kind+"_search_error", err)
}

func upstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}
