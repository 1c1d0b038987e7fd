package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyBuilderEntity(t *testing.T) {
	keys := newKeyBuilder(Metadata{Namespace: "questionnaire", Name: "questionnaire"})

	assert.Equal(t, "questionnaire.questionnaire.42", keys.Entity(42, ""))
	assert.Equal(t, "questionnaire.questionnaire.42.draft", keys.Entity(42, "draft"))
}

func TestKeyBuilderDefaultNamespace(t *testing.T) {
	keys := newKeyBuilder(Metadata{Name: "submission"})

	assert.Equal(t, "default.submission.1", keys.Entity(1, ""))
}

func TestKeyBuilderLowercases(t *testing.T) {
	keys := newKeyBuilder(Metadata{Namespace: "User", Name: "User"})

	assert.Equal(t, "user.user.9", keys.Entity(9, ""))
	assert.Equal(t, "user.user.all", keys.Collection(""))
}

func TestKeyBuilderCollection(t *testing.T) {
	keys := newKeyBuilder(Metadata{Namespace: "submission", Name: "submission"})

	assert.Equal(t, "submission.submission.all", keys.Collection(""))
	assert.Equal(t, "submission.submission.count_all", keys.Collection("count_all"))
}

func TestKeysAreDeterministic(t *testing.T) {
	a := newKeyBuilder(Metadata{Namespace: "questionnaire", Name: "question"})
	b := newKeyBuilder(Metadata{Namespace: "questionnaire", Name: "question"})

	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Entity(7, ""), b.Entity(7, ""))
		assert.Equal(t, a.Collection(rangeSuffix(10, 20)), b.Collection(rangeSuffix(10, 20)))
	}
}

func TestRangeSuffix(t *testing.T) {
	assert.Equal(t, "all", rangeSuffix(0, 0))
	assert.Equal(t, "all.limit_10.offset_0", rangeSuffix(10, 0))
	assert.Equal(t, "all.limit_10.offset_20", rangeSuffix(10, 20))
	assert.Equal(t, "all.limit_0.offset_5", rangeSuffix(0, 5))
}

func TestCountSuffix(t *testing.T) {
	assert.Equal(t, "count_all", countSuffix(nil))
	assert.Equal(t, "count_all", countSuffix(map[string]any{}))
	assert.Equal(t, "count_scope_public", countSuffix(map[string]any{"scope": "public"}))

	// Filter keys are sorted so equivalent maps share one key.
	got := countSuffix(map[string]any{"type": "regular", "scope": "public"})
	assert.Equal(t, "count_scope_public_type_regular", got)
	for i := 0; i < 10; i++ {
		assert.Equal(t, got, countSuffix(map[string]any{"scope": "public", "type": "regular"}))
	}
}
