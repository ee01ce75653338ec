package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gopherai-insight/internal/ai"
	"gopherai-insight/internal/model"
)

const (
	// HistoryWindow is the number of recent messages loaded and cached per user.
	HistoryWindow       = 500
	DefaultHistoryLimit = 200
)

const (
	missingAPIKeyMessage   = "I'm sorry, but I need an OpenAI API key to provide intelligent responses. Please add your OpenAI API key to the configuration (LLM_API_KEY) to enable real AI analysis."
	completionFailedFormat = "I encountered an error while processing your request: %s. Please check your OpenAI API key and try again."
	emptyCompletionMessage = "The model returned an empty response."
)

// MessagePublisher appends a message to a user's conversation log.
type MessagePublisher interface {
	Publish(ctx context.Context, msg model.ChatMessage) error
}

type MessageStore interface {
	ListByUserID(ctx context.Context, userID uint, limit int) ([]model.ChatMessage, error)
}

// HistoryCache is a read-through cache of a user's conversation log.
// Invalidate is called before every append.
type HistoryCache interface {
	Get(ctx context.Context, userID uint) ([]model.ChatMessage, bool, error)
	Set(ctx context.Context, userID uint, messages []model.ChatMessage) error
	Invalidate(ctx context.Context, userID uint) error
}

type ChatService struct {
	datasets     DatasetStore
	messages     MessageStore
	publisher    MessagePublisher
	historyCache HistoryCache
	turns        TurnTracker
	completer    ai.Completer
	defaultLLM   ai.ChatConfig
	logger       *zap.Logger
	now          func() time.Time
}

type ChatServiceDeps struct {
	Datasets     DatasetStore
	Messages     MessageStore
	Publisher    MessagePublisher
	HistoryCache HistoryCache
	Turns        TurnTracker
	Completer    ai.Completer
	DefaultLLM   ai.ChatConfig
	Logger       *zap.Logger
}

type SendMessageInput struct {
	UserID    uint
	Content   string
	Mode      string
	DatasetID string
	LLM       LLMOverride
}

type LLMOverride struct {
	BaseURL string
	APIKey  string
	Model   string
}

type LLMRequestLog struct {
	BaseURL      string           `json:"base_url"`
	Model        string           `json:"model"`
	APIKeyMasked string           `json:"api_key_masked"`
	Messages     []ai.ChatMessage `json:"messages,omitempty"`
}

type SendMessageResult struct {
	Messages   []model.ChatMessage `json:"messages"`
	LLMRequest LLMRequestLog       `json:"llm_request"`
}

func NewChatService(deps ChatServiceDeps) *ChatService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	turns := deps.Turns
	if turns == nil {
		turns = NewMemoryTurnTracker()
	}
	return &ChatService{
		datasets:     deps.Datasets,
		messages:     deps.Messages,
		publisher:    deps.Publisher,
		historyCache: deps.HistoryCache,
		turns:        turns,
		completer:    deps.Completer,
		defaultLLM:   deps.DefaultLLM,
		logger:       logger,
		now:          time.Now,
	}
}

// SendMessage runs one conversation turn: the user message is logged, a
// completion is requested and the assistant reply is logged. A completion
// failure never fails the turn; it becomes the reply instead. Only one turn
// per user may be in flight.
func (s *ChatService) SendMessage(ctx context.Context, input SendMessageInput) (*SendMessageResult, error) {
	if input.UserID == 0 {
		return nil, ErrInvalidInput
	}
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrMessageEmpty
	}
	mode, err := ParseChatMode(input.Mode)
	if err != nil {
		return nil, err
	}

	var dataset *model.Dataset
	if id := strings.TrimSpace(input.DatasetID); id != "" {
		dataset, err = s.datasets.GetByIDAndUserID(ctx, id, input.UserID)
		if err != nil {
			return nil, storeErr("load dataset", err)
		}
		if dataset == nil {
			return nil, ErrDatasetNotFound
		}
	}

	claimed, err := s.turns.Begin(ctx, input.UserID)
	if err != nil {
		return nil, storeErr("claim chat turn", err)
	}
	if !claimed {
		return nil, ErrTurnInFlight
	}
	defer func() {
		if err := s.turns.End(context.WithoutCancel(ctx), input.UserID); err != nil {
			s.logger.Warn("release chat turn failed", zap.Uint("user_id", input.UserID), zap.Error(err))
		}
	}()

	var datasetContext *string
	if dataset != nil {
		name := dataset.Name
		datasetContext = &name
	}

	userMessage := s.newMessage(input.UserID, content, true, datasetContext)
	if err := s.publish(ctx, userMessage); err != nil {
		return nil, storeErr("log user message", err)
	}

	s.advance(ctx, input.UserID, model.TurnAwaitingCompletion)
	cfg := s.resolveLLM(input.LLM)
	prompt := ComposePrompt(content, mode, dataset)
	reply := s.complete(ctx, cfg, prompt)

	s.advance(ctx, input.UserID, model.TurnSendingAssistant)
	assistantMessage := s.newMessage(input.UserID, reply, false, datasetContext)
	if err := s.publish(ctx, assistantMessage); err != nil {
		return nil, storeErr("log assistant message", err)
	}

	requestLog := LLMRequestLog{
		BaseURL:      cfg.BaseURL,
		Model:        cfg.Model,
		APIKeyMasked: maskSecret(cfg.APIKey),
	}
	if cfg.APIKey != "" {
		requestLog.Messages = prompt.Messages()
	}
	return &SendMessageResult{
		Messages:   []model.ChatMessage{userMessage, assistantMessage},
		LLMRequest: requestLog,
	}, nil
}

// History returns the most recent limit messages of the user's conversation
// log in ascending order. The cache always holds the full history window.
func (s *ChatService) History(ctx context.Context, userID uint, limit int) ([]model.ChatMessage, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	if limit <= 0 || limit > HistoryWindow {
		limit = DefaultHistoryLimit
	}

	if s.historyCache != nil {
		if cached, hit, err := s.historyCache.Get(ctx, userID); err == nil && hit {
			return trimMessages(cached, limit), nil
		}
	}

	messages, err := s.messages.ListByUserID(ctx, userID, HistoryWindow)
	if err != nil {
		return nil, storeErr("list chat messages", err)
	}
	if s.historyCache != nil {
		if err := s.historyCache.Set(ctx, userID, messages); err != nil {
			s.logger.Debug("cache chat history failed", zap.Uint("user_id", userID), zap.Error(err))
		}
	}
	return trimMessages(messages, limit), nil
}

func (s *ChatService) TurnState(ctx context.Context, userID uint) (model.TurnState, error) {
	if userID == 0 {
		return "", ErrInvalidInput
	}
	state, err := s.turns.State(ctx, userID)
	if err != nil {
		return "", storeErr("load chat turn", err)
	}
	return state, nil
}

func (s *ChatService) newMessage(userID uint, content string, isUser bool, datasetContext *string) model.ChatMessage {
	return model.ChatMessage{
		ID:             uuid.NewString(),
		UserID:         userID,
		Content:        content,
		IsUser:         isUser,
		DatasetContext: datasetContext,
		CreatedAt:      s.now(),
	}
}

func (s *ChatService) publish(ctx context.Context, msg model.ChatMessage) error {
	if s.publisher == nil {
		return errors.New("conversation log is not configured")
	}
	if s.historyCache != nil {
		if err := s.historyCache.Invalidate(ctx, msg.UserID); err != nil {
			s.logger.Warn("invalidate chat history failed", zap.Uint("user_id", msg.UserID), zap.Error(err))
		}
	}
	return s.publisher.Publish(ctx, msg)
}

func (s *ChatService) advance(ctx context.Context, userID uint, state model.TurnState) {
	if err := s.turns.Advance(ctx, userID, state); err != nil {
		s.logger.Warn("advance chat turn failed",
			zap.Uint("user_id", userID),
			zap.String("state", string(state)),
			zap.Error(err),
		)
	}
}

// complete always yields the text of the assistant message.
func (s *ChatService) complete(ctx context.Context, cfg ai.ChatConfig, prompt PromptPair) string {
	if cfg.APIKey == "" {
		return missingAPIKeyMessage
	}
	if s.completer == nil {
		return (&CompletionError{Err: errors.New("no completion provider configured")}).AssistantMessage()
	}

	s.logger.Info("requesting completion",
		zap.String("model", cfg.Model),
		zap.Int("prompt_bytes", len(prompt.System)+len(prompt.User)),
	)
	text, err := s.completer.Complete(ctx, cfg, prompt.Messages())
	if err != nil {
		completionErr := &CompletionError{Err: err}
		s.logger.Warn("completion failed", zap.String("model", cfg.Model), zap.Error(err))
		return completionErr.AssistantMessage()
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return emptyCompletionMessage
	}
	return text
}

// resolveLLM applies a per-request override. The server key is only ever
// sent to the configured base URL; a foreign base URL needs its own key.
func (s *ChatService) resolveLLM(override LLMOverride) ai.ChatConfig {
	cfg := s.defaultLLM
	if v := strings.TrimSpace(override.BaseURL); v != "" && v != s.defaultLLM.BaseURL {
		cfg.BaseURL = v
		cfg.APIKey = ""
	}
	if v := strings.TrimSpace(override.APIKey); v != "" {
		cfg.APIKey = v
	}
	if v := strings.TrimSpace(override.Model); v != "" {
		cfg.Model = v
	}
	return cfg
}

func trimMessages(messages []model.ChatMessage, limit int) []model.ChatMessage {
	if limit <= 0 || limit >= len(messages) {
		return messages
	}
	return messages[len(messages)-limit:]
}

func maskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + strings.Repeat("*", len(secret)-8) + secret[len(secret)-4:]
}
