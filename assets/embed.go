package assets

import (
	"bufio"
	"embed"
	"strings"
	"text/template"
)

//go:embed answers.txt prompts/word_system.txt prompts/hint_system.txt
var FS embed.FS

var wordTmpl = template.Must(template.ParseFS(FS, "prompts/word_system.txt"))

func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, strings.ToLower(s))
	}
	return out, sc.Err()
}

// AnswersList is the built-in answer list used without a language model.
func AnswersList() ([]string, error) {
	return readLines("answers.txt")
}

func readPrompt(name string) (string, error) {
	b, err := FS.ReadFile(name)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// WordPrompt renders the word generation system prompt with the words that
// must not be produced again.
func WordPrompt(exclude []string) (string, error) {
	var sb strings.Builder
	err := wordTmpl.Execute(&sb, struct{ Exclude string }{strings.Join(exclude, ", ")})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(sb.String()), nil
}

func HintPrompt() (string, error) {
	return readPrompt("prompts/hint_system.txt")
}
