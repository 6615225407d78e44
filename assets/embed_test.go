package assets

import (
	"strings"
	"testing"
)

func TestWordPromptListsExcludedWords(t *testing.T) {
	p, err := WordPrompt([]string{"crane", "slate"})
	if err != nil {
		t.Fatalf("WordPrompt: %v", err)
	}
	if !strings.HasSuffix(p, "crane, slate") {
		t.Fatalf("prompt does not end with the history: %q", p)
	}
	if strings.Contains(p, "{{") {
		t.Fatalf("template not rendered: %q", p)
	}
}

func TestHintPrompt(t *testing.T) {
	p, err := HintPrompt()
	if err != nil {
		t.Fatalf("HintPrompt: %v", err)
	}
	if !strings.HasPrefix(p, "You are a helpful assistant that provides hints") {
		t.Fatalf("unexpected prompt: %q", p)
	}
}

func TestAnswersList(t *testing.T) {
	list, err := AnswersList()
	if err != nil {
		t.Fatalf("AnswersList: %v", err)
	}
	if len(list) < 100 {
		t.Fatalf("answers = %d, want a usable list", len(list))
	}
	for _, w := range list {
		if len(w) != 5 || strings.HasPrefix(w, "#") {
			t.Fatalf("bad entry %q", w)
		}
	}
}
