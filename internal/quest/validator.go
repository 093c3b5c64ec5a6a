package quest

import (
	"strings"

	"github.com/spf13/cast"
	"github.com/uniexp/uniexp-admin-backend/internal/validation"
)

// Fields is a candidate quest as submitted by a form
type Fields map[string]any

// Validate checks fields against kind's schema and the shared reward rules.
// The error is non-nil only for an unknown kind; field problems are reported
// in the returned map, which is empty when the quest is valid.
func Validate(kind Kind, fields Fields) (validation.Errors, error) {
	if _, err := Describe(kind); err != nil {
		return nil, err
	}
	errs := validation.Errors{}

	switch kind {
	case KindAttendance, KindFeedback:
		// system generated, never user edited
		return errs, nil
	}

	if _, msg := validation.PositiveInt(fields[FieldPointsRewards], "Points reward"); msg != "" {
		errs.Add(FieldPointsRewards, msg)
	}
	if _, msg := validation.PositiveInt(fields[FieldDiamondsRewards], "Diamonds reward"); msg != "" {
		errs.Add(FieldDiamondsRewards, msg)
	}

	switch kind {
	case KindEarlyBird:
		if _, msg := validation.PositiveInt(fields[FieldMaxEarlyBird], "Maximum early birds"); msg != "" {
			errs.Add(FieldMaxEarlyBird, msg)
		}
	case KindQnA:
		if validation.Blank(fields[FieldQuestion]) {
			errs.Add(FieldQuestion, "Question is required")
		}
		if validation.Blank(fields[FieldCorrectAnswer]) {
			errs.Add(FieldCorrectAnswer, "Answer is required")
		}
	case KindNetworking:
		if _, msg := validation.PositiveInt(fields[FieldCompletionNum], "Number of connections"); msg != "" {
			errs.Add(FieldCompletionNum, msg)
		}
	}
	return errs, nil
}

// Build validates fields and constructs the definition. Blank names and
// descriptions fall back to the kind's templates.
func Build(kind Kind, fields Fields) (Definition, validation.Errors, error) {
	errs, err := Validate(kind, fields)
	if err != nil {
		return Definition{}, nil, err
	}
	if !errs.Empty() {
		return Definition{}, errs, nil
	}
	desc, _ := Describe(kind)
	if kind == KindAttendance || kind == KindFeedback {
		return defaultDefinition(desc), errs, nil
	}

	def := Definition{
		Kind:          kind,
		QuestName:     text(fields[FieldQuestName], desc.DefaultName),
		Description:   text(fields[FieldDescription], desc.DefaultDescription),
		CompletionNum: 1,
	}
	def.PointsRewards, _ = validation.PositiveInt(fields[FieldPointsRewards], "")
	def.DiamondsRewards, _ = validation.PositiveInt(fields[FieldDiamondsRewards], "")

	switch kind {
	case KindEarlyBird:
		def.MaxEarlyBird, _ = validation.PositiveInt(fields[FieldMaxEarlyBird], "")
	case KindQnA:
		def.Question = strings.TrimSpace(cast.ToString(fields[FieldQuestion]))
		def.CorrectAnswer = strings.TrimSpace(cast.ToString(fields[FieldCorrectAnswer]))
	case KindNetworking:
		def.CompletionNum, _ = validation.PositiveInt(fields[FieldCompletionNum], "")
	}
	return def, errs, nil
}

func text(v any, fallback string) string {
	s := strings.TrimSpace(cast.ToString(v))
	if s == "" {
		return fallback
	}
	return s
}
