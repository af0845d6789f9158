package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skill-assessment/internal/events"
	"skill-assessment/internal/models"
)

func decodePolicy(t *testing.T, raw string) *models.RoundPolicy {
	t.Helper()
	var p models.RoundPolicy
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	return &p
}

func assertCode(t *testing.T, err error, kind ErrorKind, code string) {
	t.Helper()
	require.Error(t, err)
	se, ok := AsError(err)
	require.True(t, ok, "expected a service error, got %v", err)
	assert.Equal(t, kind, se.Kind)
	assert.Equal(t, code, se.Code)
}

func newTestRoundService() (*RoundService, *stubRoundStore, *events.Recorder) {
	store := newStubRoundStore()
	rec := &events.Recorder{}
	svc := NewRoundService(store, rec)
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc, store, rec
}

func TestRoundService_CreateRequiresCategoryAndTitle(t *testing.T) {
	svc, _, _ := newTestRoundService()
	ctx := context.Background()

	_, err := svc.Create(ctx, decodePolicy(t, `{"title":"Q1"}`), "admin")
	assertCode(t, err, KindInvalidInput, CodeInvalidCategory)

	_, err = svc.Create(ctx, decodePolicy(t, `{"category":"structural"}`), "admin")
	assertCode(t, err, KindInvalidInput, CodeInvalidTitle)

	_, err = svc.Create(ctx, decodePolicy(t, `{"category":"  ","title":"Q1"}`), "admin")
	assertCode(t, err, KindInvalidInput, CodeInvalidCategory)

	_, err = svc.Create(ctx, decodePolicy(t, `{"category":"structural","title":null}`), "admin")
	assertCode(t, err, KindInvalidInput, CodeInvalidTitle)
}

func TestRoundService_CreateAppliesDefaults(t *testing.T) {
	svc, _, rec := newTestRoundService()

	round, err := svc.Create(context.Background(), decodePolicy(t, `{"category":"structural","title":"Q1","questionCount":5}`), "admin")
	require.NoError(t, err)

	assert.NotEmpty(t, round.ID)
	assert.Equal(t, 5, round.QuestionCount)
	assert.Equal(t, models.DefaultPassingScore, round.PassingScore)
	assert.Equal(t, models.DefaultDurationMinutes, round.DurationMinutes)
	assert.True(t, round.ShowScore)
	assert.False(t, round.ShowAnswers)
	assert.True(t, round.ShowBreakdown)
	assert.Equal(t, models.RoundStatusDraft, round.Status)
	assert.True(t, round.Active)
	assert.Equal(t, models.DifficultyWeights{}, round.DifficultyWeights)
	assert.Equal(t, models.DefaultCriteria(), round.Criteria)
	require.NotNil(t, round.CreatedBy)
	assert.Equal(t, "admin", *round.CreatedBy)

	require.Len(t, round.History, 1)
	created := round.History[0]
	assert.Equal(t, models.HistoryActionCreated, created.Action)
	assert.Equal(t, "admin", created.Actor)
	assert.Equal(t, models.HistoryVersion, created.Version)
	assert.Len(t, created.Changes, len(roundFields))
	for _, c := range created.Changes {
		assert.JSONEq(t, "null", string(c.From), c.Field)
	}

	assert.Equal(t, []string{events.RoundCreated}, rec.Types())
}

func TestRoundService_CreateGeneratesFreshIDs(t *testing.T) {
	svc, _, _ := newTestRoundService()
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		round, err := svc.Create(context.Background(), &models.RoundPolicy{
			Category: models.Some("structural"),
			Title:    models.Some("Round " + string(rune('A'+i))),
		}, "")
		require.NoError(t, err)
		assert.False(t, seen[round.ID], "id %s reused", round.ID)
		seen[round.ID] = true
		assert.Equal(t, SystemActor, *round.CreatedBy)
	}
}

func TestRoundService_CreateRejectsDuplicateTitle(t *testing.T) {
	svc, _, _ := newTestRoundService()
	ctx := context.Background()

	first, err := svc.Create(ctx, decodePolicy(t, `{"category":"structural","title":"Q1"}`), "admin")
	require.NoError(t, err)

	_, err = svc.Create(ctx, decodePolicy(t, `{"category":"plumbing","title":"q1"}`), "admin")
	assertCode(t, err, KindConflict, CodeDuplicateTitle)

	require.NoError(t, svc.Delete(ctx, first.ID, "admin"))
	_, err = svc.Create(ctx, decodePolicy(t, `{"category":"plumbing","title":"Q1"}`), "admin")
	assert.NoError(t, err, "archived rounds release their title")
}

func TestRoundService_CreateValidatesFields(t *testing.T) {
	svc, _, _ := newTestRoundService()

	tests := []struct {
		body string
		code string
	}{
		{`{"category":"c","title":"t","questionCount":0}`, "invalid_questionCount"},
		{`{"category":"c","title":"t","questionCount":501}`, "invalid_questionCount"},
		{`{"category":"c","title":"t","passingScore":101}`, "invalid_passingScore"},
		{`{"category":"c","title":"t","durationMinutes":0}`, "invalid_durationMinutes"},
		{`{"category":"c","title":"t","status":"open"}`, "invalid_status"},
		{`{"category":"c","title":"t","active":null}`, "invalid_active"},
		{`{"category":"c","title":"t","difficultyWeights":{"easy":120}}`, "invalid_difficultyWeights"},
		{`{"category":"c","title":"t","criteria":{"level1":90,"level2":70,"level3":80}}`, "invalid_criteria"},
		{`{"category":"c","title":"t","subcategoryQuotas":{"wiring":-1}}`, "invalid_subcategoryQuotas"},
		{`{"category":"c","title":"t","startAt":"2024-02-01T00:00:00Z","endAt":"2024-01-01T00:00:00Z"}`, "invalid_endAt"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			_, err := svc.Create(context.Background(), decodePolicy(t, tt.body), "admin")
			assertCode(t, err, KindInvalidInput, tt.code)
		})
	}
}

func TestRoundService_CreateAcceptsZeroPassingScore(t *testing.T) {
	svc, _, _ := newTestRoundService()
	round, err := svc.Create(context.Background(), decodePolicy(t, `{"category":"c","title":"t","passingScore":0}`), "admin")
	require.NoError(t, err)
	assert.Equal(t, 0, round.PassingScore)
}

func TestRoundService_UpdateRecordsDiffs(t *testing.T) {
	svc, _, rec := newTestRoundService()
	ctx := context.Background()

	round, err := svc.Create(ctx, decodePolicy(t, `{"category":"structural","title":"Q1"}`), "admin")
	require.NoError(t, err)

	updated, err := svc.Update(ctx, round.ID, decodePolicy(t, `{"status":"active","title":"Q1","questionCount":10}`), "editor")
	require.NoError(t, err)

	assert.Equal(t, models.RoundStatusActive, updated.Status)
	assert.Equal(t, 10, updated.QuestionCount)
	require.NotNil(t, updated.UpdatedBy)
	assert.Equal(t, "editor", *updated.UpdatedBy)

	require.Len(t, updated.History, 2)
	entry := updated.History[1]
	assert.Equal(t, models.HistoryActionUpdated, entry.Action)
	assert.Equal(t, "editor", entry.Actor)

	fields := map[string]models.FieldDiff{}
	for _, c := range entry.Changes {
		fields[c.Field] = c
	}
	assert.Len(t, fields, 2, "unchanged title is not recorded")
	assert.JSONEq(t, `"draft"`, string(fields["status"].From))
	assert.JSONEq(t, `"active"`, string(fields["status"].To))
	assert.JSONEq(t, `60`, string(fields["questionCount"].From))
	assert.JSONEq(t, `10`, string(fields["questionCount"].To))

	assert.Equal(t, []string{events.RoundCreated, events.RoundUpdated}, rec.Types())
}

func TestRoundService_UpdateMapOrderIndependent(t *testing.T) {
	svc, _, _ := newTestRoundService()
	ctx := context.Background()

	round, err := svc.Create(ctx, decodePolicy(t, `{"category":"c","title":"t","subcategoryQuotas":{"a":1,"b":2}}`), "admin")
	require.NoError(t, err)

	updated, err := svc.Update(ctx, round.ID, decodePolicy(t, `{"subcategoryQuotas":{"b":2,"a":1}}`), "admin")
	require.NoError(t, err)
	require.Len(t, updated.History, 2)
	assert.Empty(t, updated.History[1].Changes)
}

func TestRoundService_HistoryIsAppendOnly(t *testing.T) {
	svc, _, _ := newTestRoundService()
	ctx := context.Background()

	round, err := svc.Create(ctx, decodePolicy(t, `{"category":"c","title":"t"}`), "admin")
	require.NoError(t, err)
	first := round.History[0]

	const updates = 4
	for i := 0; i < updates; i++ {
		// the second call repeats the first and records an empty diff list
		round, err = svc.Update(ctx, round.ID, decodePolicy(t, `{"description":"d"}`), "admin")
		require.NoError(t, err)
	}

	require.Len(t, round.History, 1+updates)
	assert.Equal(t, first, round.History[0])
	assert.Len(t, round.History[1].Changes, 1)
	for _, entry := range round.History[2:] {
		assert.Empty(t, entry.Changes)
		assert.NotNil(t, entry.Changes, "empty diff lists encode as []")
	}

	history, err := svc.History(ctx, round.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1+updates)
}

func TestRoundService_UpdateErrors(t *testing.T) {
	svc, _, _ := newTestRoundService()
	ctx := context.Background()

	round, err := svc.Create(ctx, decodePolicy(t, `{"category":"c","title":"t"}`), "admin")
	require.NoError(t, err)

	_, err = svc.Update(ctx, round.ID, decodePolicy(t, `{}`), "admin")
	assertCode(t, err, KindInvalidInput, CodeNoFieldsToUpdate)

	_, err = svc.Update(ctx, "missing", decodePolicy(t, `{"title":"x"}`), "admin")
	assertCode(t, err, KindNotFound, CodeNotFound)

	_, err = svc.Update(ctx, round.ID, decodePolicy(t, `{"category":""}`), "admin")
	assertCode(t, err, KindInvalidInput, CodeInvalidCategory)

	_, err = svc.Update(ctx, round.ID, decodePolicy(t, `{"questionCount":null}`), "admin")
	assertCode(t, err, KindInvalidInput, "invalid_questionCount")
}

func TestRoundService_UpdateNullClearsWindow(t *testing.T) {
	svc, _, _ := newTestRoundService()
	ctx := context.Background()

	round, err := svc.Create(ctx, decodePolicy(t, `{"category":"c","title":"t","endAt":"2030-01-01T00:00:00Z"}`), "admin")
	require.NoError(t, err)
	require.NotNil(t, round.EndAt)

	updated, err := svc.Update(ctx, round.ID, decodePolicy(t, `{"endAt":null}`), "admin")
	require.NoError(t, err)
	assert.Nil(t, updated.EndAt)
	require.Len(t, updated.History[1].Changes, 1)
	assert.JSONEq(t, `null`, string(updated.History[1].Changes[0].To))
}

func TestRoundService_DeleteIsSoft(t *testing.T) {
	svc, store, rec := newTestRoundService()
	ctx := context.Background()

	round, err := svc.Create(ctx, decodePolicy(t, `{"category":"c","title":"t","status":"active"}`), "admin")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, round.ID, "admin"))

	stored, err := store.GetByID(ctx, round.ID)
	require.NoError(t, err)
	require.NotNil(t, stored, "row is kept")
	assert.False(t, stored.Active)
	assert.Equal(t, models.RoundStatusArchived, stored.Status)
	require.Len(t, stored.History, 2)
	assert.Equal(t, models.HistoryActionDeleted, stored.History[1].Action)
	assert.Nil(t, stored.History[1].Changes)

	assertCode(t, svc.Delete(ctx, "missing", "admin"), KindNotFound, CodeNotFound)
	assert.Equal(t, []string{events.RoundCreated, events.RoundDeleted}, rec.Types())
}

func TestRoundService_List(t *testing.T) {
	svc, _, _ := newTestRoundService()
	ctx := context.Background()

	_, err := svc.Create(ctx, decodePolicy(t, `{"category":"structural","title":"A"}`), "admin")
	require.NoError(t, err)
	second, err := svc.Create(ctx, decodePolicy(t, `{"category":"structural","title":"B","status":"active"}`), "admin")
	require.NoError(t, err)
	_, err = svc.Create(ctx, decodePolicy(t, `{"category":"plumbing","title":"C"}`), "admin")
	require.NoError(t, err)

	all, err := svc.List(ctx, models.RoundFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "C", all[0].Title, "newest first")

	filtered, err := svc.List(ctx, models.RoundFilter{
		Category: strPtr("structural"),
		Status:   strPtr(models.RoundStatusActive),
		Active:   boolPtr(true),
	})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, second.ID, filtered[0].ID)
}

func TestRoundService_StorageFailureIsInternal(t *testing.T) {
	svc, store, _ := newTestRoundService()
	store.err = errors.New("connection reset")

	_, err := svc.Get(context.Background(), "r1")
	assertCode(t, err, KindInternal, CodeInternal)
	assert.ErrorContains(t, err, "connection reset")
}
