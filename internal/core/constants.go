package core

// SSE framing constants
const (
	StreamChunkPrefix      = "data: "
	StreamChunkDoneMessage = "[DONE]"
)

// HTTP header constants
const (
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderCacheControl  = "Cache-Control"
	HeaderConnection    = "Connection"
	HeaderXRequestID    = "X-Request-ID"
)

// Content type constants
const (
	ContentTypeJSON        = "application/json"
	ContentTypeEventStream = "text/event-stream"
	CacheControlNoCache    = "no-cache"
	ConnectionKeepAlive    = "keep-alive"
)

// AuthBearerPrefix is the bearer token prefix in the Authorization header.
const AuthBearerPrefix = "Bearer "

// OpenAI object type constants
const (
	ChatCompletionObjectType = "chat.completion"
	ModelObjectType          = "model"
	ModelListObjectType      = "list"
)

// JSON body field names shared by the normalizers and the stream transformer
const (
	FieldModel   = "model"
	FieldStream  = "stream"
	FieldObject  = "object"
	FieldCreated = "created"
	FieldUsage   = "usage"
	FieldChoices = "choices"
	FieldMessage = "message"
	FieldContent = "content"
	FieldText    = "text"
)

// Per-endpoint default external model names, used when a request carries no
// model field. These match the hosted-service names clients expect.
const (
	DefaultChatModel       = "gpt-3.5-turbo"
	DefaultCompletionModel = "text-davinci-003"
	DefaultEmbeddingModel  = "text-embedding-ada-002"
)

// FallbackModelOwner is the owned_by value in the static model list fallback.
const FallbackModelOwner = "local"

// API path constants
const (
	PathHealth          = "/health"
	PathModels          = "/v1/models"
	PathChatCompletions = "/v1/chat/completions"
	PathCompletions     = "/v1/completions"
	PathEmbeddings      = "/v1/embeddings"
)
