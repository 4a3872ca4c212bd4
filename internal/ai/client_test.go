package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/conorfennell/brainstack/internal/domain"
	mock_practice "github.com/conorfennell/brainstack/internal/practice/mock"
)

var cards = []domain.CardContent{
	{Front: "Capital of France", Back: "Paris"},
	{Front: "Capital of Spain", Back: "Madrid"},
}

func chatServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req chatRequest
		if assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) && assert.Len(t, req.Messages, 2) {
			assert.Equal(t, "test-model", req.Model)
			assert.Contains(t, req.Messages[1].Content, "Q: Capital of France\nA: Paris")
		}

		w.WriteHeader(status)
		if status != http.StatusOK {
			w.Write([]byte(`{"error":"boom"}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(url string) *Client {
	return NewClient(Config{URL: url, Model: "test-model", APIKey: "secret", Timeout: time.Second}, zap.NewNop())
}

func TestClient_GenerateQuestions(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		content string
		count   int
		want    []domain.GeneratedQuestion
		wantErr bool
	}{
		{
			name:    "parses pairs",
			status:  http.StatusOK,
			content: "Q: Which city is the capital of France?\nA: Paris\nQ: Name Spain's capital.\nA: Madrid",
			count:   2,
			want: []domain.GeneratedQuestion{
				{Question: "Which city is the capital of France?", CorrectAnswer: "Paris"},
				{Question: "Name Spain's capital.", CorrectAnswer: "Madrid"},
			},
		},
		{
			name:    "extra pairs are dropped",
			status:  http.StatusOK,
			content: "Here you go:\nQ: one\nA: 1\n\nQ: two\nA: 2\nQ: three\nA: 3",
			count:   2,
			want: []domain.GeneratedQuestion{
				{Question: "one", CorrectAnswer: "1"},
				{Question: "two", CorrectAnswer: "2"},
			},
		},
		{
			name:    "too few pairs",
			status:  http.StatusOK,
			content: "Q: only one\nA: 1",
			count:   2,
			wantErr: true,
		},
		{
			name:    "nothing parseable",
			status:  http.StatusOK,
			content: `{"questions": []}`,
			count:   1,
			wantErr: true,
		},
		{
			name:    "upstream error",
			status:  http.StatusTooManyRequests,
			count:   1,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := chatServer(t, tt.status, tt.content)
			got, err := newTestClient(srv.URL).GenerateQuestions(context.Background(), cards, tt.count)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_NoAPIKey(t *testing.T) {
	c := NewClient(Config{URL: "http://127.0.0.1:0"}, zap.NewNop())
	_, err := c.GenerateQuestions(context.Background(), cards, 1)
	assert.ErrorContains(t, err, "API key")
}

func TestClient_Defaults(t *testing.T) {
	c := NewClient(Config{}, zap.NewNop())
	assert.Equal(t, DefaultURL, c.cfg.URL)
	assert.Equal(t, DefaultModel, c.cfg.Model)
	assert.Equal(t, DefaultTimeout, c.http.Timeout)
	assert.Equal(t, DefaultMaxTokens, c.cfg.MaxTokens)
}

func TestBuildPrompt(t *testing.T) {
	p := buildPrompt(cards, 3)
	assert.Contains(t, p, "generate 3 diverse practice test questions")
	assert.Equal(t, 2, strings.Count(p, "Q: Capital of"))
}

func TestFallback(t *testing.T) {
	got, err := Fallback{}.GenerateQuestions(context.Background(), cards, 3)
	require.NoError(t, err)
	assert.Equal(t, []domain.GeneratedQuestion{
		{Question: "What is the answer to: Capital of France?", CorrectAnswer: "Paris"},
		{Question: "What is the answer to: Capital of Spain?", CorrectAnswer: "Madrid"},
		{Question: "What is the answer to: Capital of France?", CorrectAnswer: "Paris"},
	}, got)

	_, err = Fallback{}.GenerateQuestions(context.Background(), nil, 1)
	assert.Error(t, err)
}

func TestWithFallback(t *testing.T) {
	want := []domain.GeneratedQuestion{{Question: "q", CorrectAnswer: "a"}}

	tests := []struct {
		name    string
		ctx     func() context.Context
		f       func(primary, fallback *mock_practice.MockGenerator)
		want    []domain.GeneratedQuestion
		wantErr bool
	}{
		{
			name: "primary succeeds",
			ctx:  context.Background,
			f: func(primary, _ *mock_practice.MockGenerator) {
				primary.EXPECT().GenerateQuestions(gomock.Any(), cards, 1).Return(want, nil)
			},
			want: want,
		},
		{
			name: "primary fails",
			ctx:  context.Background,
			f: func(primary, fallback *mock_practice.MockGenerator) {
				primary.EXPECT().GenerateQuestions(gomock.Any(), cards, 1).Return(nil, errors.New("503"))
				fallback.EXPECT().GenerateQuestions(gomock.Any(), cards, 1).Return(want, nil)
			},
			want: want,
		},
		{
			name: "cancelled context skips fallback",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			f: func(primary, _ *mock_practice.MockGenerator) {
				primary.EXPECT().GenerateQuestions(gomock.Any(), cards, 1).Return(nil, context.Canceled)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			primary := mock_practice.NewMockGenerator(ctrl)
			fallback := mock_practice.NewMockGenerator(ctrl)
			tt.f(primary, fallback)

			got, err := WithFallback(primary, fallback, zap.NewNop()).GenerateQuestions(tt.ctx(), cards, 1)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
