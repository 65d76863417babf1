package http

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/mylearnapp/quiz-platform/internal/apperr"
	"github.com/mylearnapp/quiz-platform/internal/domain/entities"
)

var errAnswerMap = apperr.Validation("answers must be a JSON object mapping question ids to option ids")

// decodeAnswers reads a JSON object mapping question IDs to option IDs.
// Answers keep the order of the keys in the body. Option IDs may be given
// as numbers or numeric strings.
func decodeAnswers(r io.Reader) ([]entities.Answer, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil, errAnswerMap
	}

	var answers []entities.Answer
	seen := make(map[int64]struct{})

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, errAnswerMap
		}
		key, _ := tok.(string)
		questionID, err := parseID(key, "question id")
		if err != nil {
			return nil, err
		}
		if _, dup := seen[questionID]; dup {
			return nil, apperr.Errorf(apperr.KindValidation, "question %d answered more than once", questionID)
		}
		seen[questionID] = struct{}{}

		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, errAnswerMap
		}
		optionID, err := optionIDValue(v)
		if err != nil {
			return nil, apperr.Errorf(apperr.KindValidation, "answer to question %d: %s", questionID, apperr.Message(err))
		}

		answers = append(answers, entities.Answer{QuestionID: questionID, OptionID: optionID})
	}

	if tok, err := dec.Token(); err != nil || tok != json.Delim('}') {
		return nil, errAnswerMap
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errAnswerMap
	}

	return answers, nil
}

func optionIDValue(v any) (int64, error) {
	switch t := v.(type) {
	case json.Number:
		return parseID(t.String(), "option id")
	case string:
		return parseID(strings.TrimSpace(t), "option id")
	default:
		return 0, apperr.Validation("option id must be a positive integer")
	}
}
