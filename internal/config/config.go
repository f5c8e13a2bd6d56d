// Package config turns environment variables into a validated Config. It
// never reads the process environment itself: main passes a lookup func.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	BackendDynamo = "dynamodb"
	BackendMongo  = "mongo"
	BackendRedis  = "redis"

	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	State     StateConfig
	LLM       LLMConfig
	Travel    TravelConfig
	Chat      ChatConfig
	HTTPAddr  string `validate:"omitempty,hostname_port"`
	CORSAllow []string
}

type StateConfig struct {
	Backend         string `validate:"oneof=dynamodb mongo redis"`
	Table           string `validate:"required_if=Backend dynamodb"`
	MongoURI        string `validate:"required_if=Backend mongo"`
	MongoDB         string `validate:"required_if=Backend mongo"`
	MongoCollection string `validate:"required_if=Backend mongo"`
	RedisAddr       string `validate:"required_if=Backend redis"`
	RedisPassword   string
	RedisDB         int `validate:"min=0,max=15"`
}

type LLMConfig struct {
	Provider string `validate:"oneof=gemini openai"`
	Model    string
}

type TravelConfig struct {
	ParamPrefix    string `validate:"required,startswith=/"`
	TravelBaseURL  string `validate:"required,url"`
	VisaBaseURL    string `validate:"required,url"`
	RequestsPerMin int    `validate:"min=0"`
}

type ChatConfig struct {
	MaxHistoryItems    int `validate:"min=1,max=100"`
	MaxQuestionLength  int `validate:"min=1"`
	KeepFlightContext  bool
	LenientChildAges   bool
	VisaDisclaimerText string
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Load reads every setting through lookup, applies defaults and validates
// the result.
func Load(lookup LookupFunc) (Config, error) {
	r := reader{lookup: lookup}
	cfg := Config{
		State: StateConfig{
			Backend:         strings.ToLower(r.str("STATE_BACKEND", BackendDynamo)),
			Table:           r.str("STATE_TABLE", ""),
			MongoURI:        r.str("MONGO_URI", ""),
			MongoDB:         r.str("MONGO_DB", "marhaba"),
			MongoCollection: r.str("MONGO_COLLECTION", "users"),
			RedisAddr:       r.str("REDIS_ADDR", ""),
			RedisPassword:   r.str("REDIS_PASSWORD", ""),
			RedisDB:         r.int("REDIS_DB", 0),
		},
		LLM: LLMConfig{
			Provider: strings.ToLower(r.str("LLM_PROVIDER", ProviderGemini)),
			Model:    r.str("LLM_MODEL", ""),
		},
		Travel: TravelConfig{
			ParamPrefix:    strings.TrimRight(r.str("PARAM_PREFIX", "/travel-agent"), "/"),
			TravelBaseURL:  r.str("TRAVEL_API_BASE_URL", "https://api.bdsd.technology"),
			VisaBaseURL:    r.str("VISA_API_BASE_URL", "https://devapi.visa2fly.com"),
			RequestsPerMin: r.int("TRAVEL_API_RPM", 0),
		},
		Chat: ChatConfig{
			MaxHistoryItems:    r.int("MAX_HISTORY_ITEMS", 5),
			MaxQuestionLength:  r.int("MAX_QUESTION_LENGTH", 500),
			KeepFlightContext:  r.bool("KEEP_FLIGHT_CONTEXT", false),
			LenientChildAges:   r.bool("LENIENT_FLIGHT_CHILD_AGES", false),
			VisaDisclaimerText: r.str("VISA_DISCLAIMER", ""),
		},
		HTTPAddr:  r.str("HTTP_ADDR", ":8080"),
		CORSAllow: r.list("CORS_ALLOWED_ORIGINS"),
	}
	if len(r.errs) > 0 {
		return Config{}, fmt.Errorf("config: %s", strings.Join(r.errs, "; "))
	}
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

type reader struct {
	lookup LookupFunc
	errs   []string
}

func (r *reader) str(key, def string) string {
	v, ok := r.lookup(key)
	v = unquote(strings.TrimSpace(v))
	if !ok || v == "" {
		return def
	}
	return v
}

func (r *reader) int(key string, def int) int {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Sprintf("%s: %q is not an integer", key, v))
		return def
	}
	return n
}

func (r *reader) bool(key string, def bool) bool {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Sprintf("%s: %q is not a boolean", key, v))
		return def
	}
	return b
}

func (r *reader) list(key string) []string {
	var out []string
	for _, part := range strings.Split(r.str(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// unquote strips one pair of matching quotes left by hand-written .env files.
func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}
