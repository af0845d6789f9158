package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptional_Decoding(t *testing.T) {
	var p RoundPolicy
	require.NoError(t, json.Unmarshal([]byte(`{"title":"Q1","startAt":null,"questionCount":5}`), &p))

	assert.True(t, p.Title.Set)
	require.NotNil(t, p.Title.Value)
	assert.Equal(t, "Q1", *p.Title.Value)

	assert.True(t, p.StartAt.Set, "explicit null is present")
	assert.Nil(t, p.StartAt.Value)

	assert.False(t, p.Category.Set, "absent field")
	assert.Equal(t, 5, *p.QuestionCount.Value)
	assert.False(t, p.Empty())
}

func TestOptional_TypeMismatch(t *testing.T) {
	var p RoundPolicy
	assert.Error(t, json.Unmarshal([]byte(`{"questionCount":"many"}`), &p))
}

func TestRoundPolicy_Empty(t *testing.T) {
	var p RoundPolicy
	require.NoError(t, json.Unmarshal([]byte(`{}`), &p))
	assert.True(t, p.Empty())

	require.NoError(t, json.Unmarshal([]byte(`{"unknown":1}`), &p))
	assert.True(t, p.Empty())
}

func TestOptional_Marshal(t *testing.T) {
	b, err := json.Marshal(struct {
		A Optional[int] `json:"a"`
		B Optional[int] `json:"b"`
	}{A: Some(3), B: Null[int]()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":3,"b":null}`, string(b))
}

func TestRound_IsLive(t *testing.T) {
	assert.True(t, (&Round{Active: true, Status: RoundStatusActive}).IsLive())
	assert.False(t, (&Round{Active: true, Status: RoundStatusDraft}).IsLive())
	assert.False(t, (&Round{Active: false, Status: RoundStatusActive}).IsLive())
}
