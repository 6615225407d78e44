// internal/words/daily_exports.go
//
// Built-in daily answers for deployments without a language model.
// Wraps assets.AnswersList and exposes:
//   - DailyAnswers(): lexicon of the embedded answers
//
// Notes:
//   • Data is lazily initialized once via sync.Once, reading from embedded files.

package words

import (
	"sync"

	"github.com/robalobadob/wordle/apps/mcp-server/assets"
)

var (
	dailyOnce    sync.Once
	dailyAnswers *Lexicon
	dailyInitErr error
)

func initDaily() {
	list, err := assets.AnswersList()
	if err != nil {
		dailyInitErr = err
		return
	}
	lex := FromList(list)
	if lex.Size() == 0 {
		dailyInitErr = ErrEmptyLexicon
		return
	}
	dailyAnswers = lex
}

// DailyAnswers returns the embedded answer list as a lexicon.
func DailyAnswers() (*Lexicon, error) {
	dailyOnce.Do(initDaily)
	return dailyAnswers, dailyInitErr
}
