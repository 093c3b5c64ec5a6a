package quest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uniexp/uniexp-admin-backend/internal/validation"
)

func TestDescribe(t *testing.T) {
	for _, k := range []Kind{KindAttendance, KindFeedback} {
		d, err := Describe(k)
		require.NoError(t, err)
		assert.False(t, d.Editable, k)
		assert.False(t, d.Removable, k)
		assert.Equal(t, 1, d.FixedCompletionNum, k)
	}
	for _, k := range []Kind{KindEarlyBird, KindQnA, KindNetworking} {
		d, err := Describe(k)
		require.NoError(t, err)
		assert.True(t, d.Editable, k)
		assert.True(t, d.Removable, k)
	}

	d, _ := Describe(KindQnA)
	assert.True(t, d.Multiple)
	assert.Contains(t, d.Fields, FieldCorrectAnswer)

	_, err := Describe(Kind("scavengerHunt"))
	assert.ErrorIs(t, err, ErrUnknownQuestKind)
	_, err = ParseKind("")
	assert.ErrorIs(t, err, ErrUnknownQuestKind)
}

func TestDescribeReturnsCopy(t *testing.T) {
	d, _ := Describe(KindEarlyBird)
	d.Fields[0] = "mutated"
	again, _ := Describe(KindEarlyBird)
	assert.Equal(t, FieldQuestName, again.Fields[0])
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		kind   Kind
		fields Fields
		want   validation.Errors
	}{
		{
			name:   "valid early bird",
			kind:   KindEarlyBird,
			fields: Fields{FieldPointsRewards: 10, FieldDiamondsRewards: "5", FieldMaxEarlyBird: 20},
			want:   validation.Errors{},
		},
		{
			name:   "early bird missing cap",
			kind:   KindEarlyBird,
			fields: Fields{FieldPointsRewards: 10, FieldDiamondsRewards: 5},
			want:   validation.Errors{FieldMaxEarlyBird: "Maximum early birds is required"},
		},
		{
			name:   "rewards must be positive numbers",
			kind:   KindNetworking,
			fields: Fields{FieldPointsRewards: 0, FieldDiamondsRewards: "lots", FieldCompletionNum: 3},
			want: validation.Errors{
				FieldPointsRewards:   "Points reward must be greater than 0",
				FieldDiamondsRewards: "Diamonds reward must be a number",
			},
		},
		{
			name:   "networking connections",
			kind:   KindNetworking,
			fields: Fields{FieldPointsRewards: 1, FieldDiamondsRewards: 1, FieldCompletionNum: -2},
			want:   validation.Errors{FieldCompletionNum: "Number of connections must be greater than 0"},
		},
		{
			name:   "blank correct answer",
			kind:   KindQnA,
			fields: Fields{FieldPointsRewards: 1, FieldDiamondsRewards: 1, FieldQuestion: "Who spoke first?", FieldCorrectAnswer: "   "},
			want:   validation.Errors{FieldCorrectAnswer: "Answer is required"},
		},
		{
			name:   "blank question",
			kind:   KindQnA,
			fields: Fields{FieldPointsRewards: 1, FieldDiamondsRewards: 1, FieldCorrectAnswer: "Ada"},
			want:   validation.Errors{FieldQuestion: "Question is required"},
		},
		{
			name:   "attendance is never validated",
			kind:   KindAttendance,
			fields: Fields{},
			want:   validation.Errors{},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Validate(tc.kind, tc.fields)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := Validate(Kind("bogus"), Fields{})
	assert.ErrorIs(t, err, ErrUnknownQuestKind)
}

func TestBuild(t *testing.T) {
	def, errs, err := Build(KindNetworking, Fields{
		FieldPointsRewards:   "30",
		FieldDiamondsRewards: 4,
		FieldCompletionNum:   "5",
	})
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, Definition{
		Kind:            KindNetworking,
		QuestName:       "Networking",
		Description:     "Connect with other attendees at the event.",
		DiamondsRewards: 4,
		PointsRewards:   30,
		CompletionNum:   5,
	}, def)

	def, _, _ = Build(KindQnA, Fields{
		FieldQuestName:       " Trivia ",
		FieldPointsRewards:   1,
		FieldDiamondsRewards: 1,
		FieldQuestion:        " What is 2+2? ",
		FieldCorrectAnswer:   "4",
	})
	assert.Equal(t, "Trivia", def.QuestName)
	assert.Equal(t, "What is 2+2?", def.Question)
	assert.Equal(t, 1, def.CompletionNum)

	_, errs, err = Build(KindQnA, Fields{FieldPointsRewards: 1, FieldDiamondsRewards: 1, FieldQuestion: "Q"})
	require.NoError(t, err)
	assert.Equal(t, validation.Errors{FieldCorrectAnswer: "Answer is required"}, errs)
}

func earlyBird() Definition {
	return Definition{Kind: KindEarlyBird, QuestName: "Early Bird", DiamondsRewards: 2, PointsRewards: 5, CompletionNum: 1, MaxEarlyBird: 10}
}

func qna(q string) Definition {
	return Definition{Kind: KindQnA, QuestName: "Q&A", DiamondsRewards: 1, PointsRewards: 1, CompletionNum: 1, Question: q, CorrectAnswer: "a"}
}

func TestSetAtMostOnce(t *testing.T) {
	s := NewSet()
	require.NoError(t, s.Add(earlyBird()))
	assert.ErrorIs(t, s.Add(earlyBird()), ErrQuestExists)

	require.NoError(t, s.Add(qna("one")))
	require.NoError(t, s.Add(qna("two")))
	assert.Len(t, s.QnA, 2)

	assert.ErrorIs(t, s.Add(Definition{Kind: KindAttendance}), ErrNotEditable)
	assert.ErrorIs(t, s.Add(Definition{Kind: "bogus"}), ErrUnknownQuestKind)
}

func TestSetRemoveAndReplace(t *testing.T) {
	s := NewSet()
	require.NoError(t, s.Add(qna("one")))
	require.NoError(t, s.Add(qna("two")))

	assert.ErrorIs(t, s.Remove(KindAttendance, 0), ErrNotRemovable)
	assert.ErrorIs(t, s.Remove(KindFeedback, 0), ErrNotRemovable)
	assert.ErrorIs(t, s.Remove(KindEarlyBird, 0), ErrQuestNotFound)
	assert.ErrorIs(t, s.Remove(KindQnA, 5), ErrQuestNotFound)

	require.NoError(t, s.Replace(KindQnA, 1, qna("changed")))
	assert.Equal(t, "changed", s.QnA[1].Question)
	assert.Error(t, s.Replace(KindQnA, 0, earlyBird()))

	require.NoError(t, s.Remove(KindQnA, 0))
	require.Len(t, s.QnA, 1)
	assert.Equal(t, "changed", s.QnA[0].Question)
}

func TestSetOrderedForcesCompletion(t *testing.T) {
	s := NewSet()
	s.Attendance.CompletionNum = 7
	s.Feedback.CompletionNum = 0
	require.NoError(t, s.Add(qna("one")))
	net := Definition{Kind: KindNetworking, DiamondsRewards: 1, PointsRewards: 1, CompletionNum: 4}
	require.NoError(t, s.Add(net))
	require.NoError(t, s.Add(earlyBird()))

	got := s.Ordered()
	kinds := make([]Kind, len(got))
	for i, d := range got {
		kinds[i] = d.Kind
	}
	assert.Equal(t, []Kind{KindAttendance, KindEarlyBird, KindQnA, KindNetworking, KindFeedback}, kinds)
	assert.Equal(t, 1, got[0].CompletionNum)
	assert.Equal(t, 4, got[3].CompletionNum)
	assert.Equal(t, 1, got[4].CompletionNum)
}

func TestSetCloneAndEqual(t *testing.T) {
	s := NewSet()
	require.NoError(t, s.Add(earlyBird()))
	require.NoError(t, s.Add(qna("one")))

	c := s.Clone()
	assert.True(t, s.Equal(c))

	c.EarlyBird.MaxEarlyBird = 99
	c.QnA[0].Question = "other"
	assert.Equal(t, 10, s.EarlyBird.MaxEarlyBird)
	assert.Equal(t, "one", s.QnA[0].Question)
	assert.False(t, s.Equal(c))

	back, err := FromOrdered(s.Ordered())
	require.NoError(t, err)
	assert.True(t, s.Equal(back))
}
