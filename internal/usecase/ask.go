package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"job-advisor/internal/cache"
	"job-advisor/internal/config"
	"job-advisor/internal/domain"
	"job-advisor/internal/integrations/openai"
	"job-advisor/internal/jobcontext"
	"job-advisor/internal/jobmatch"
)

const (
	defaultHistoryLimit = 5
	defaultMaxQuestion  = 1000
	logTextLimit        = 80
)

type ConfigLoader interface {
	Load(ctx context.Context) (config.Snapshot, error)
}

type LLMClient interface {
	Chat(ctx context.Context, apiKey, model string, messages []domain.ChatMessage) (string, error)
}

// Catalog is the job catalog as the service sees it: title lookup, record
// reads and ingestion.
type Catalog interface {
	jobmatch.Catalog
	jobcontext.RecordSource
	InsertJob(ctx context.Context, r domain.JobRecord) (int64, error)
}

type PayloadCache interface {
	Get(ctx context.Context, key string) (*domain.ResponsePayload, bool, error)
	Set(ctx context.Context, key string, p domain.ResponsePayload, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPrefix(ctx context.Context, prefix string) (int, error)
}

type HistoryStore interface {
	GetRecent(ctx context.Context, sessionID, userID string, limit int) ([]domain.Turn, error)
	NewChatRecord(sessionID, userID, category, message, response string, source domain.Source) domain.ChatRecord
	SaveChat(ctx context.Context, rec domain.ChatRecord) error
}

type FeedbackStore interface {
	GetLatest(ctx context.Context, normalizedMessage, sessionID, userID string) (*domain.FeedbackRecord, error)
	Insert(ctx context.Context, f domain.FeedbackRecord) error
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

// Deps are the collaborators of AskService. Logger may be nil.
type Deps struct {
	Config   ConfigLoader
	LLM      LLMClient
	Catalog  Catalog
	Cache    PayloadCache
	History  HistoryStore
	Feedback FeedbackStore
	Logger   *slog.Logger
}

type AskService struct {
	cfg            ConfigLoader
	llm            LLMClient
	catalog        Catalog
	cache          PayloadCache
	history        HistoryStore
	feedback       FeedbackStore
	log            *slog.Logger
	historyLimit   int
	maxQuestionLen int
}

type AskInput struct {
	Message   string
	Category  string
	Model     string
	SessionID string
	UserID    string
	JobTitle  string
	JobSlug   string
	// SystemPrompt replaces the built-in advisor instruction when set.
	SystemPrompt string
}

func NewAskService(d Deps, historyLimit, maxQuestionLen int) (*AskService, error) {
	if d.Config == nil {
		return nil, errors.New("usecase: config loader must not be nil")
	}
	if d.LLM == nil {
		return nil, errors.New("usecase: llm client must not be nil")
	}
	if d.Catalog == nil {
		return nil, errors.New("usecase: catalog must not be nil")
	}
	if d.Cache == nil {
		return nil, errors.New("usecase: cache must not be nil")
	}
	if d.History == nil {
		return nil, errors.New("usecase: history store must not be nil")
	}
	if d.Feedback == nil {
		return nil, errors.New("usecase: feedback store must not be nil")
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if historyLimit <= 0 {
		historyLimit = defaultHistoryLimit
	}
	if maxQuestionLen <= 0 {
		maxQuestionLen = defaultMaxQuestion
	}
	return &AskService{
		cfg:            d.Config,
		llm:            d.LLM,
		catalog:        d.Catalog,
		cache:          d.Cache,
		history:        d.History,
		feedback:       d.Feedback,
		log:            d.Logger,
		historyLimit:   historyLimit,
		maxQuestionLen: maxQuestionLen,
	}, nil
}

// request is the per-call state shared by the answering steps.
type request struct {
	in       AskInput
	message  string
	snap     config.Snapshot
	model    string
	category string
	jc       domain.JobContext
	fp       cache.Fingerprint
	ttl      time.Duration
}

func (r request) extras() PayloadExtras {
	return PayloadExtras{
		Model:             r.model,
		Category:          r.category,
		JobTitle:          r.in.JobTitle,
		JobSlug:           r.in.JobSlug,
		NormalizedMessage: r.message,
	}
}

// Ask answers one question. Apart from invalid input, it only fails when the
// model call fails and no job data can stand in for it.
func (s *AskService) Ask(ctx context.Context, in AskInput) (domain.ResponsePayload, error) {
	message := jobmatch.NormalizeMessage(in.Message)
	if message == "" {
		return domain.ResponsePayload{}, newError(ErrorInvalidInput, "empty_message", nil)
	}
	if utf8.RuneCountInString(message) > s.maxQuestionLen {
		return domain.ResponsePayload{}, newError(ErrorInvalidInput, "message_too_long", nil)
	}
	snap, err := s.cfg.Load(ctx)
	if err != nil {
		return domain.ResponsePayload{}, newError(ErrorInternal, "config_load_error", err)
	}

	r := s.newRequest(ctx, in, message, snap)
	p, err := s.answer(ctx, r)
	if err != nil {
		return domain.ResponsePayload{}, err
	}
	s.recordTurn(ctx, r, p)
	return p, nil
}

func (s *AskService) newRequest(ctx context.Context, in AskInput, message string, snap config.Snapshot) request {
	r := request{
		in:       in,
		message:  message,
		snap:     snap,
		model:    snap.ResolveModel(in.Model),
		category: strings.TrimSpace(in.Category),
	}
	r.jc = s.jobContext(ctx, message, in)
	r.ttl = snap.CacheTTL(r.model)

	cacheTitle := r.jc.JobTitle
	if cacheTitle == "" {
		cacheTitle = in.JobTitle
	}
	r.fp = cache.Fingerprint{Message: message, Category: r.category, Model: r.model}.WithJobTitle(cacheTitle)
	return r
}

// jobContext resolves and loads the job the request is about. Catalog
// failures degrade to the unmatched context.
func (s *AskService) jobContext(ctx context.Context, message string, in AskInput) domain.JobContext {
	title, err := jobmatch.NewResolver(s.catalog).Resolve(ctx, message, jobmatch.Hints{
		JobTitle: in.JobTitle,
		JobSlug:  in.JobSlug,
	})
	if err != nil {
		s.log.Warn("job title lookup failed", "err", err, "message", truncateForLog(message, logTextLimit))
		return domain.JobContext{}
	}
	jc, err := jobcontext.NewBuilder(s.catalog).Build(ctx, title, in.JobSlug)
	if err != nil {
		s.log.Warn("job context load failed", "err", err, "job_title", title)
		return domain.JobContext{}
	}
	return jc
}

func (s *AskService) answer(ctx context.Context, r request) (domain.ResponsePayload, error) {
	if p, ok := s.lookup(ctx, r); ok {
		return p, nil
	}

	text, err := s.complete(ctx, r)
	if err != nil {
		code := CodeOf(err)
		switch {
		case code == ErrorNoCapability:
			return s.offlinePayload(ctx, r), nil
		case fallbackEligible(code) && r.jc.Matched():
			s.log.Warn("model call failed, answering from job data", "err", err, "job_title", r.jc.JobTitle)
			p := BuildPayload(formatJobContextReply(r.jc), r.jc, r.in.Message, domain.SourceJobContext, r.extras())
			s.store(context.WithoutCancel(ctx), r, p)
			return p, nil
		}
		return domain.ResponsePayload{}, err
	}

	p := BuildPayload(text, r.jc, r.in.Message, domain.SourceOpenAI, r.extras())
	s.store(ctx, r, p)
	return p, nil
}

// lookup serves an acceptable stored answer. Entries found under the legacy
// key are moved to the current one.
func (s *AskService) lookup(ctx context.Context, r request) (domain.ResponsePayload, bool) {
	if !r.snap.CacheEnabled {
		return domain.ResponsePayload{}, false
	}
	keys := []string{r.fp.Key()}
	if r.fp.JobTitle != nil {
		keys = append(keys, r.fp.LegacyKey())
	}

	for i, key := range keys {
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.log.Warn("cache read failed", "err", err, "key", key)
			continue
		}
		if !ok {
			continue
		}
		if !cache.ShouldAccept(r.message, cached, r.snap.HasCredential()) {
			s.log.Debug("cached answer rejected", "key", key, "source", cached.EffectiveSource())
			continue
		}
		p := s.fromCache(r, *cached)
		if i > 0 {
			s.store(ctx, r, p, key)
		}
		s.log.Debug("cache hit", "key", key, "source", p.Source)
		return p, true
	}
	return domain.ResponsePayload{}, false
}

// fromCache refreshes request-derived fields of a stored payload.
func (s *AskService) fromCache(r request, p domain.ResponsePayload) domain.ResponsePayload {
	p.FromCache = true
	if p.Model == "" {
		p.Model = r.model
	}
	p.Category = r.category
	if title := r.jc.JobTitle; title != "" {
		p.JobTitle = title
	} else if p.JobTitle == "" {
		p.JobTitle = strings.TrimSpace(r.in.JobTitle)
	}
	if slug := r.jc.Slug(); slug != "" {
		p.JobSlug = slug
	} else if p.JobSlug == "" {
		p.JobSlug = strings.TrimSpace(r.in.JobSlug)
	}
	p.NormalizedMessage = r.message
	p.SyncMeta()
	return p
}

// complete asks the model. It returns non-empty text or a classified error.
func (s *AskService) complete(ctx context.Context, r request) (string, error) {
	if !r.snap.HasCredential() {
		return "", newError(ErrorNoCapability, "no_api_key", nil)
	}

	messages := buildPromptMessages(promptInput{
		system:   r.in.SystemPrompt,
		context:  r.jc,
		feedback: s.latestFeedback(ctx, r),
		history:  s.recentTurns(ctx, r),
		message:  r.message,
	})
	text, err := s.llm.Chat(ctx, r.snap.APIKey, r.model, messages)
	if err != nil {
		return "", classifyModelError(err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", newError(ErrorUpstream, "openai_empty_completion", nil)
	}
	return text, nil
}

func classifyModelError(err error) *Error {
	if _, ok := upstreamStatusCode(err); ok {
		return newError(ErrorUpstream, "openai_status_error", err)
	}
	if errors.Is(err, openai.ErrMalformedResponse) {
		return newError(ErrorUpstream, "openai_malformed_response", err)
	}
	return newError(ErrorTransport, "openai_request_error", err)
}

// offlinePayload answers without a model. Only the catalog-derived answer is
// stored; the credential notice must not outlive a newly configured key.
func (s *AskService) offlinePayload(ctx context.Context, r request) domain.ResponsePayload {
	if r.jc.Matched() {
		p := BuildPayload(formatJobContextReply(r.jc), r.jc, r.in.Message, domain.SourceDatabase, r.extras())
		s.store(ctx, r, p)
		return p
	}
	return BuildPayload(localFallbackText, r.jc, r.in.Message, domain.SourceLocalFallback, r.extras())
}

// store writes p under the fingerprint of its job title and removes stale keys,
// including the lookup key when the title differs from it.
func (s *AskService) store(ctx context.Context, r request, p domain.ResponsePayload, stale ...string) {
	if !r.snap.CacheEnabled {
		return
	}
	target := r.fp
	if p.JobTitle != "" {
		target = r.fp.WithJobTitle(p.JobTitle)
	}
	key := target.Key()
	if lookupKey := r.fp.Key(); key != lookupKey {
		stale = append(stale, lookupKey)
	}

	p.FromCache = false
	p.SyncMeta()
	if err := s.cache.Set(ctx, key, p, r.ttl); err != nil {
		s.log.Warn("cache write failed", "err", err, "key", key)
		return
	}
	if len(stale) == 0 {
		return
	}
	if err := s.cache.Delete(ctx, stale...); err != nil {
		s.log.Warn("stale cache delete failed", "err", err, "keys", stale)
	}
}

func (s *AskService) recentTurns(ctx context.Context, r request) []domain.Turn {
	turns, err := s.history.GetRecent(ctx, r.in.SessionID, r.in.UserID, s.historyLimit)
	if err != nil {
		s.log.Warn("history read failed", "err", err, "session_id", r.in.SessionID)
		return nil
	}
	return turns
}

func (s *AskService) latestFeedback(ctx context.Context, r request) *domain.FeedbackRecord {
	f, err := s.feedback.GetLatest(ctx, r.message, r.in.SessionID, r.in.UserID)
	if err != nil {
		s.log.Warn("feedback read failed", "err", err, "session_id", r.in.SessionID)
		return nil
	}
	return f
}

// recordTurn persists the exchange for later history. Anonymous requests are
// not recorded.
func (s *AskService) recordTurn(ctx context.Context, r request, p domain.ResponsePayload) {
	rec := s.history.NewChatRecord(r.in.SessionID, r.in.UserID, r.category, strings.TrimSpace(r.in.Message), p.Text, p.Source)
	if rec.PK == "" {
		return
	}
	if err := s.history.SaveChat(ctx, rec); err != nil {
		s.log.Warn("history write failed", "err", err, "session_id", r.in.SessionID)
	}
}

func upstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}

func truncateForLog(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
