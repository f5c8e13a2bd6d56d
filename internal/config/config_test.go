package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func envOf(vals map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := vals[key]
		return v, ok
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(envOf(map[string]string{"STATE_TABLE": "travel-agent-state"}))
	require.NoError(t, err)

	require.Equal(t, BackendDynamo, cfg.State.Backend)
	require.Equal(t, "travel-agent-state", cfg.State.Table)
	require.Equal(t, ProviderGemini, cfg.LLM.Provider)
	require.Equal(t, "/travel-agent", cfg.Travel.ParamPrefix)
	require.Equal(t, "https://api.bdsd.technology", cfg.Travel.TravelBaseURL)
	require.Equal(t, "https://devapi.visa2fly.com", cfg.Travel.VisaBaseURL)
	require.Equal(t, 5, cfg.Chat.MaxHistoryItems)
	require.Equal(t, 500, cfg.Chat.MaxQuestionLength)
	require.False(t, cfg.Chat.KeepFlightContext)
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Empty(t, cfg.CORSAllow)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load(envOf(map[string]string{
		"STATE_BACKEND":             "Mongo",
		"MONGO_URI":                 `"mongodb://localhost:27017"`,
		"LLM_PROVIDER":              "openai",
		"LLM_MODEL":                 "gpt-4o",
		"PARAM_PREFIX":              "/prod/agent/",
		"TRAVEL_API_RPM":            "120",
		"MAX_HISTORY_ITEMS":         "10",
		"KEEP_FLIGHT_CONTEXT":       "true",
		"LENIENT_FLIGHT_CHILD_AGES": "1",
		"CORS_ALLOWED_ORIGINS":      "https://a.example, https://b.example,",
		"HTTP_ADDR":                 "127.0.0.1:9000",
	}))
	require.NoError(t, err)

	require.Equal(t, BackendMongo, cfg.State.Backend)
	require.Equal(t, "mongodb://localhost:27017", cfg.State.MongoURI)
	require.Equal(t, "marhaba", cfg.State.MongoDB)
	require.Equal(t, "users", cfg.State.MongoCollection)
	require.Equal(t, "openai", cfg.LLM.Provider)
	require.Equal(t, "gpt-4o", cfg.LLM.Model)
	require.Equal(t, "/prod/agent", cfg.Travel.ParamPrefix)
	require.Equal(t, 120, cfg.Travel.RequestsPerMin)
	require.Equal(t, 10, cfg.Chat.MaxHistoryItems)
	require.True(t, cfg.Chat.KeepFlightContext)
	require.True(t, cfg.Chat.LenientChildAges)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllow)
	require.Equal(t, "127.0.0.1:9000", cfg.HTTPAddr)
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]map[string]string{
		"dynamodb without table": {},
		"unknown backend":        {"STATE_BACKEND": "sqlite"},
		"mongo without uri":      {"STATE_BACKEND": "mongo"},
		"redis without addr":     {"STATE_BACKEND": "redis"},
		"unknown provider":       {"STATE_TABLE": "t", "LLM_PROVIDER": "claude"},
		"relative prefix":        {"STATE_TABLE": "t", "PARAM_PREFIX": "travel-agent"},
		"bad base url":           {"STATE_TABLE": "t", "TRAVEL_API_BASE_URL": "not a url"},
		"bad integer":            {"STATE_TABLE": "t", "MAX_HISTORY_ITEMS": "ten"},
		"bad boolean":            {"STATE_TABLE": "t", "KEEP_FLIGHT_CONTEXT": "sometimes"},
		"zero history":           {"STATE_TABLE": "t", "MAX_HISTORY_ITEMS": "0"},
		"bad redis db":           {"STATE_BACKEND": "redis", "REDIS_ADDR": "localhost:6379", "REDIS_DB": "42"},
		"bad http addr":          {"STATE_TABLE": "t", "HTTP_ADDR": "localhost"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(envOf(env))
			require.Error(t, err)
		})
	}
}
