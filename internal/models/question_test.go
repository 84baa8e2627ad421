package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerUnmarshalShapes(t *testing.T) {
	tests := []struct {
		in   string
		want Answer
	}{
		{`null`, Answer{}},
		{`"B"`, SingleAnswer("B")},
		{`2`, SingleAnswer("2")},
		{`["A","C"]`, MultipleAnswer("A", "C")},
		{`{"Box 1":"Yes","Box 2":"No"}`, HotspotAnswer(map[string]string{"Box 1": "Yes", "Box 2": "No"})},
	}

	for _, tt := range tests {
		var got Answer
		require.NoError(t, json.Unmarshal([]byte(tt.in), &got), tt.in)
		assert.Equal(t, tt.want.Kind, got.Kind, tt.in)
		assert.True(t, tt.want.Equal(got), "unmarshal %s = %+v, want %+v", tt.in, got, tt.want)
	}
}

func TestAnswerMarshalKeepsWireShape(t *testing.T) {
	answers := []Answer{{}, SingleAnswer("A"), MultipleAnswer("B", "D"), HotspotAnswer(map[string]string{"x": "1"})}

	data, err := json.Marshal(answers)
	require.NoError(t, err)
	assert.JSONEq(t, `[null,"A",["B","D"],{"x":"1"}]`, string(data))

	_, err = json.Marshal(Answer{Kind: "essay"})
	assert.Error(t, err)
}

func TestAnswerUnmarshalInsideProgress(t *testing.T) {
	raw := `{"user_answers":[null,"A",["A","B"],{"Slot":"On"}],"question_submitted":[false,true,true,true],"total_questions":4,"completed_questions":3}`

	var p Progress
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	require.Len(t, p.UserAnswers, 4)
	assert.True(t, p.UserAnswers[0].IsEmpty())
	assert.Equal(t, KindSingle, p.UserAnswers[1].Kind)
	assert.Equal(t, KindMultiple, p.UserAnswers[2].Kind)
	assert.Equal(t, KindHotspot, p.UserAnswers[3].Kind)
	assert.Equal(t, 3, p.SubmittedCount())
}

func TestAnswerEqual(t *testing.T) {
	assert.True(t, MultipleAnswer("A", "B").Equal(MultipleAnswer("B", "A")))
	assert.False(t, MultipleAnswer("A").Equal(MultipleAnswer("A", "B")))
	assert.False(t, SingleAnswer("A").Equal(MultipleAnswer("A")))
	assert.False(t, HotspotAnswer(map[string]string{"a": "1"}).Equal(HotspotAnswer(map[string]string{"a": "2"})))
	assert.True(t, Answer{}.Equal(Answer{}))
}

func TestProgressPerfect(t *testing.T) {
	one, zero := 1.0, 0.0

	p := Progress{
		QuestionScore:      []*float64{&one, &one},
		QuestionSubmitted:  []bool{true, true},
		TotalQuestions:     2,
		CompletedQuestions: 2,
	}
	assert.True(t, p.Completed())
	assert.True(t, p.Perfect())

	p.QuestionScore[1] = &zero
	assert.False(t, p.Perfect())

	p.QuestionScore[1] = nil
	assert.False(t, p.Perfect())

	assert.False(t, Progress{}.Completed())
}

func TestAnswerUnmarshalLegacyAndBadShapes(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		want      Answer
		malformed bool
	}{
		{"index list", `[0,1]`, MultipleAnswer("0", "1"), false},
		{"hotspot numbers", `{"Box 1":2,"Box 2":true}`, HotspotAnswer(map[string]string{"Box 1": "2", "Box 2": "true"}), false},
		{"hotspot null slot", `{"Box 1":"Yes","Box 2":null}`, HotspotAnswer(map[string]string{"Box 1": "Yes"}), false},
		{"nested list", `[["A"]]`, Answer{}, true},
		{"hotspot object value", `{"Box 1":{"v":1}}`, Answer{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Answer
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.malformed, got.Malformed)
			assert.True(t, tt.want.Equal(got), "unmarshal %s = %+v, want %+v", tt.in, got, tt.want)
		})
	}
}

func TestMalformedAnswerKeepsRecordDecodable(t *testing.T) {
	raw := `{"user_answers":["A",[["x"]],{"s":[1]}],"total_questions":3}`

	var p Progress
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	require.Len(t, p.UserAnswers, 3)
	assert.False(t, p.UserAnswers[0].Malformed)
	assert.True(t, p.UserAnswers[1].Malformed)
	assert.True(t, p.UserAnswers[2].Malformed)

	data, err := json.Marshal(p.UserAnswers)
	require.NoError(t, err)
	assert.JSONEq(t, `["A",null,null]`, string(data))
}
