package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/robalobadob/wordle/apps/mcp-server/internal/words"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func completionServer(t *testing.T, reply string, got *chatRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if got != nil {
			if err := json.Unmarshal(body, got); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{
			"id":      "cmpl-1",
			"object":  "chat.completion",
			"created": 0,
			"model":   "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": reply},
			}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewOpenAIRequiresKey(t *testing.T) {
	if _, err := NewOpenAI(Config{}); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestGenerateWordSendsHistory(t *testing.T) {
	var req chatRequest
	srv := completionServer(t, "  Quart\n", &req)
	o, err := NewOpenAI(Config{APIKey: "k", BaseURL: srv.URL + "/", Model: "test-model"})
	if err != nil {
		t.Fatalf("NewOpenAI: %v", err)
	}

	w, err := o.GenerateWord(context.Background(), []string{"crane", "slate"})
	if err != nil {
		t.Fatalf("GenerateWord: %v", err)
	}
	if w != "Quart" {
		t.Fatalf("word = %q, want trimmed model output", w)
	}
	if req.Model != "test-model" {
		t.Fatalf("model = %q", req.Model)
	}
	if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
		t.Fatalf("messages = %+v", req.Messages)
	}
	if !strings.Contains(req.Messages[0].Content, "crane, slate") {
		t.Fatalf("system prompt missing history: %q", req.Messages[0].Content)
	}
}

func TestGenerateHintReplaysPriorHints(t *testing.T) {
	var req chatRequest
	srv := completionServer(t, "It has two vowels.", &req)
	o, err := NewOpenAI(Config{APIKey: "k", BaseURL: srv.URL + "/"})
	if err != nil {
		t.Fatalf("NewOpenAI: %v", err)
	}

	h, err := o.GenerateHint(context.Background(), "crane", []string{"first", "second"})
	if err != nil {
		t.Fatalf("GenerateHint: %v", err)
	}
	if h != "It has two vowels." {
		t.Fatalf("hint = %q", h)
	}
	roles := make([]string, 0, len(req.Messages))
	for _, m := range req.Messages {
		roles = append(roles, m.Role)
	}
	if strings.Join(roles, ",") != "system,assistant,assistant,user" {
		t.Fatalf("roles = %v", roles)
	}
	if req.Model != DefaultModel {
		t.Fatalf("model = %q, want default", req.Model)
	}
	if last := req.Messages[3].Content; !strings.HasSuffix(last, "crane") {
		t.Fatalf("user message = %q", last)
	}
}

func TestEmptyCompletion(t *testing.T) {
	srv := completionServer(t, "   ", nil)
	o, _ := NewOpenAI(Config{APIKey: "k", BaseURL: srv.URL + "/"})
	if _, err := o.GenerateWord(context.Background(), nil); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("got %v, want ErrEmptyResponse", err)
	}
}

func TestUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusBadRequest)
	}))
	t.Cleanup(srv.Close)
	o, _ := NewOpenAI(Config{APIKey: "k", BaseURL: srv.URL + "/"})
	if _, err := o.GenerateHint(context.Background(), "crane", nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestLocalGenerateWordSkipsHistory(t *testing.T) {
	l := NewLocal(words.FromList([]string{"crane", "slate"}))
	l.intn = func(int) int { return 0 }
	w, err := l.GenerateWord(context.Background(), []string{"crane"})
	if err != nil {
		t.Fatalf("GenerateWord: %v", err)
	}
	if w != "slate" {
		t.Fatalf("word = %s, want slate", w)
	}
	if _, err := l.GenerateWord(context.Background(), []string{"crane", "slate"}); !errors.Is(err, ErrLexiconExhausted) {
		t.Fatalf("got %v, want ErrLexiconExhausted", err)
	}
}

func TestLocalHintsAreUniqueAndNeverNameTheWord(t *testing.T) {
	l := NewLocal(nil)
	var prior []string
	for i := 0; i < 4; i++ {
		h, err := l.GenerateHint(context.Background(), "llama", prior)
		if err != nil {
			t.Fatalf("hint %d: %v", i, err)
		}
		if strings.Contains(h, "llama") {
			t.Fatalf("hint leaks the word: %q", h)
		}
		prior = append(prior, h)
	}
	if prior[0] != "The word contains 2 vowels." {
		t.Fatalf("first hint = %q", prior[0])
	}
	if prior[3] != "The word has 2 repeated letters." {
		t.Fatalf("last hint = %q", prior[3])
	}
	if _, err := l.GenerateHint(context.Background(), "llama", prior); err == nil {
		t.Fatal("expected exhaustion error")
	}
}
