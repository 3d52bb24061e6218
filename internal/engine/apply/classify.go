// Package apply drives the application pipeline: form-field classification,
// question handling, the per-job state machine and the job loop.
package apply

import (
	"strings"

	"github.com/anatolykoptev/go-apply/internal/engine/board"
)

// Field is one classified form question.
type Field struct {
	Kind     board.QuestionKind
	Question string
	Options  []string
}

// termsPhrases are the canonical label fragments of a mandatory
// terms-of-service checkbox, matched case-insensitively.
var termsPhrases = []string{
	"terms of service",
	"terms of use",
	"terms & conditions",
	"terms and conditions",
	"privacy policy",
	"i agree",
	"i consent",
}

// Classify decides what one form section is. Uploads are recognized first;
// the remaining predicates run in fixed order: terms, radio, textbox, date,
// dropdown. The first match wins and the section counts as handled.
// Returns false for sections that match nothing.
func Classify(sec board.FormSection) (Field, bool) {
	if sec.HasFileInput() {
		return Field{Kind: board.KindUpload, Question: sec.Label()}, true
	}
	if isTerms(sec) {
		return Field{Kind: board.KindTerms, Question: sec.Label()}, true
	}
	if opts := sec.RadioOptions(); len(opts) >= 2 {
		return Field{Kind: board.KindRadio, Question: sec.Label(), Options: opts}, true
	}
	if inputs := sec.TextInputs(); len(inputs) == 1 {
		kind := board.KindTextboxText
		if isNumericInput(inputs[0]) {
			kind = board.KindTextboxNumeric
		}
		return Field{Kind: kind, Question: sec.Label()}, true
	}
	if sec.HasDatePicker() {
		return Field{Kind: board.KindDate, Question: sec.Label()}, true
	}
	if opts := sec.DropdownOptions(); len(opts) > 0 {
		return Field{Kind: board.KindDropdown, Question: sec.Label(), Options: opts}, true
	}
	return Field{}, false
}

// isTerms matches sections whose text contains a canonical terms phrase.
func isTerms(sec board.FormSection) bool {
	text := strings.ToLower(sec.Text())
	for _, phrase := range termsPhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}

// isNumericInput discriminates numeric textboxes by declared type and id.
func isNumericInput(in board.TextInput) bool {
	return in.Type == "number" || strings.Contains(strings.ToLower(in.ID), "numeric")
}
