package grading

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// course builds n modules with lessonsPer lessons each. Module IDs are
// 1..n and lesson IDs are moduleID*100 + position.
func course(n int, lessonsPer ...int) ([]Module, []Lesson) {
	var modules []Module
	var lessons []Lesson
	for i := 1; i <= n; i++ {
		modules = append(modules, Module{ID: uint(i), Position: i})
		count := 3
		if i-1 < len(lessonsPer) {
			count = lessonsPer[i-1]
		}
		for p := 1; p <= count; p++ {
			lessons = append(lessons, Lesson{ID: uint(i*100 + p), ModuleID: uint(i), Position: p})
		}
	}
	return modules, lessons
}

func stateOf(t *testing.T, states []ModuleState, moduleID uint) ModuleState {
	t.Helper()
	for _, s := range states {
		if s.ModuleID == moduleID {
			return s
		}
	}
	t.Fatalf("no state for module %d", moduleID)
	return ModuleState{}
}

func TestEvaluateModules_FreshLearner(t *testing.T) {
	modules, lessons := course(4)
	states := EvaluateModules(modules, lessons, nil, nil)

	require.Len(t, states, 4)
	assert.False(t, states[0].IsLocked)
	for _, s := range states[1:] {
		assert.True(t, s.IsLocked, "module %d", s.ModuleID)
		assert.Equal(t, 0.0, s.ProgressPercent)
	}
}

func TestEvaluateModules_WatermarkScenario(t *testing.T) {
	modules, lessons := course(4, 2, 2, 4, 3)
	completions := []LessonCompletion{
		{ModuleID: 1, LessonID: 102},
		{ModuleID: 2, LessonID: 202},
		{ModuleID: 3, LessonID: 302},
	}
	states := EvaluateModules(modules, lessons, WatermarksFrom(lessons, completions), nil)

	m3 := stateOf(t, states, 3)
	assert.Equal(t, 50.0, m3.ProgressPercent)
	assert.Equal(t, 2, m3.CompletedLessons)
	assert.False(t, m3.IsLocked)
	assert.True(t, stateOf(t, states, 4).IsLocked)
}

func TestWatermarksFrom_FurthestLessonWins(t *testing.T) {
	_, lessons := course(1, 5)
	completions := []LessonCompletion{
		{ModuleID: 1, LessonID: 104},
		{ModuleID: 1, LessonID: 102},
		{ModuleID: 2, LessonID: 101}, // wrong module
		{ModuleID: 1, LessonID: 999}, // unknown lesson
	}

	marks := WatermarksFrom(lessons, completions)
	assert.Equal(t, 4, marks[1].FurthestCompletedOrdinal)
	_, ok := marks[2]
	assert.False(t, ok)
}

func TestLessonOrdinals_UseRankNotRawPosition(t *testing.T) {
	lessons := []Lesson{
		{ID: 7, ModuleID: 1, Position: 30},
		{ID: 5, ModuleID: 1, Position: 10},
		{ID: 6, ModuleID: 1, Position: 20},
	}
	ord := LessonOrdinals(lessons)
	assert.Equal(t, map[uint]int{5: 1, 6: 2, 7: 3}, ord)
}

func TestEvaluateModules_MonotonicUnlock(t *testing.T) {
	modules, lessons := course(2, 3, 3)
	var completions []LessonCompletion

	for p := 1; p <= 3; p++ {
		completions = append(completions, LessonCompletion{ModuleID: 1, LessonID: uint(100 + p)})
		states := EvaluateModules(modules, lessons, WatermarksFrom(lessons, completions), nil)
		wantLocked := p < 3
		assert.Equal(t, wantLocked, states[1].IsLocked, "after lesson %d", p)
	}

	// revisiting an earlier lesson keeps the module unlocked
	completions = append(completions, LessonCompletion{ModuleID: 1, LessonID: 101})
	states := EvaluateModules(modules, lessons, WatermarksFrom(lessons, completions), nil)
	assert.False(t, states[1].IsLocked)
	assert.Equal(t, 100.0, states[0].ProgressPercent)
}

func TestEvaluateModules_ExemptionOverridesLock(t *testing.T) {
	modules, lessons := course(3)
	states := EvaluateModules(modules, lessons, nil, map[uint]bool{3: true})

	assert.True(t, stateOf(t, states, 2).IsLocked)
	m3 := stateOf(t, states, 3)
	assert.False(t, m3.IsLocked)
	assert.True(t, m3.Exempt)
}

func TestEvaluateModules_AssignmentOnlyModule(t *testing.T) {
	modules, lessons := course(4, 2, 0, 2, 2)

	states := EvaluateModules(modules, lessons, nil, nil)
	m2 := stateOf(t, states, 2)
	assert.Equal(t, ContentAssignment, m2.ContentType)
	assert.Equal(t, 0, m2.LessonCount)
	assert.True(t, m2.IsLocked)
	assert.True(t, stateOf(t, states, 3).IsLocked)

	completions := []LessonCompletion{{ModuleID: 1, LessonID: 102}}
	states = EvaluateModules(modules, lessons, WatermarksFrom(lessons, completions), nil)
	assert.False(t, stateOf(t, states, 2).IsLocked)
	assert.False(t, stateOf(t, states, 3).IsLocked)
	assert.True(t, stateOf(t, states, 4).IsLocked)
}

func TestEvaluateModules_OrdersByPosition(t *testing.T) {
	modules := []Module{{ID: 9, Position: 2}, {ID: 4, Position: 1}}
	lessons := []Lesson{{ID: 1, ModuleID: 4, Position: 1}, {ID: 2, ModuleID: 9, Position: 1}}

	states := EvaluateModules(modules, lessons, nil, nil)
	require.Len(t, states, 2)
	assert.Equal(t, uint(4), states[0].ModuleID)
	assert.False(t, states[0].IsLocked)
	assert.True(t, states[1].IsLocked)
}

func TestEvaluateModules_ClampsWatermark(t *testing.T) {
	modules, lessons := course(1, 2)
	marks := map[uint]Watermark{1: {ModuleID: 1, FurthestCompletedOrdinal: 5}}

	st := EvaluateModules(modules, lessons, marks, nil)[0]
	assert.Equal(t, 100.0, st.ProgressPercent)
	assert.Equal(t, 2, st.CompletedLessons)
}

func TestEvaluateModules_LessonAddedAfterCompletionKeepsUnlock(t *testing.T) {
	modules, lessons := course(2, 2, 2)
	done := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	completions := []LessonCompletion{{ModuleID: 1, LessonID: 102, CompletedAt: done}}

	lessons = append(lessons, Lesson{ID: 103, ModuleID: 1, Position: 3, CreatedAt: done.Add(time.Hour)})
	states := EvaluateModules(modules, lessons, WatermarksFrom(lessons, completions), nil)

	assert.Equal(t, 3, states[0].LessonCount)
	assert.Equal(t, 66.7, states[0].ProgressPercent)
	assert.False(t, states[1].IsLocked)

	// a lesson that already existed still counts
	lessons[len(lessons)-1].CreatedAt = done.Add(-time.Hour)
	states = EvaluateModules(modules, lessons, WatermarksFrom(lessons, completions), nil)
	assert.True(t, states[1].IsLocked)
}

func TestWatermarksFrom_ClearedByEarlierCompletion(t *testing.T) {
	_, lessons := course(1, 2)
	done := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	lessons = append(lessons, Lesson{ID: 100, ModuleID: 1, Position: 0, CreatedAt: done.Add(time.Minute)})

	marks := WatermarksFrom(lessons, []LessonCompletion{
		{ModuleID: 1, LessonID: 102, CompletedAt: done},
		{ModuleID: 1, LessonID: 101, CompletedAt: done.Add(time.Hour)},
	})
	assert.True(t, marks[1].Cleared)
	assert.Equal(t, 3, marks[1].FurthestCompletedOrdinal)
}
