package grading

import (
	"sort"
	"time"
)

// ContentType distinguishes lesson modules from modules that only carry an
// assignment.
type ContentType string

const (
	ContentLessons    ContentType = "lessons"
	ContentAssignment ContentType = "assignment"
)

type Module struct {
	ID       uint
	Position int
}

type Lesson struct {
	ID        uint
	ModuleID  uint
	Position  int
	CreatedAt time.Time
}

// LessonCompletion is a completed lesson-scoped progress row. CompletedAt
// is when the lesson was first completed.
type LessonCompletion struct {
	ModuleID    uint
	LessonID    uint
	CompletedAt time.Time
}

// Watermark is the furthest lesson ordinal reached in a module. Completing
// the lesson at ordinal K counts ordinals 1..K as done. Cleared is set once
// a completion reached the last lesson that existed at the time; lessons
// added later do not take it back.
type Watermark struct {
	ModuleID                 uint
	FurthestCompletedOrdinal int
	Cleared                  bool
}

type ModuleState struct {
	ModuleID         uint        `json:"moduleId"`
	ContentType      ContentType `json:"contentType"`
	LessonCount      int         `json:"lessonCount"`
	CompletedLessons int         `json:"completedLessons"`
	ProgressPercent  float64     `json:"progressPercent"`
	IsLocked         bool        `json:"isLocked"`
	Exempt           bool        `json:"exempt,omitempty"`
}

// LessonOrdinals maps every lesson ID to its 1-based rank inside its module,
// ordered by position and then ID.
func LessonOrdinals(lessons []Lesson) map[uint]int {
	byModule := groupLessons(lessons)
	ordinals := make(map[uint]int, len(lessons))
	for _, ls := range byModule {
		for i, l := range ls {
			ordinals[l.ID] = i + 1
		}
	}
	return ordinals
}

// WatermarksFrom folds completed lesson rows into one watermark per module.
// Rows that reference unknown lessons or a lesson of another module are ignored.
func WatermarksFrom(lessons []Lesson, completions []LessonCompletion) map[uint]Watermark {
	ordinals := LessonOrdinals(lessons)
	owner := make(map[uint]uint, len(lessons))
	for _, l := range lessons {
		owner[l.ID] = l.ModuleID
	}

	byModule := groupLessons(lessons)

	marks := make(map[uint]Watermark)
	for _, c := range completions {
		ord, ok := ordinals[c.LessonID]
		if !ok || owner[c.LessonID] != c.ModuleID {
			continue
		}
		w := marks[c.ModuleID]
		w.ModuleID = c.ModuleID
		if ord > w.FurthestCompletedOrdinal {
			w.FurthestCompletedOrdinal = ord
		}
		if !w.Cleared {
			w.Cleared = clearedAt(byModule[c.ModuleID], c)
		}
		marks[c.ModuleID] = w
	}
	return marks
}

// clearedAt reports whether c completed the last of the lessons (sorted)
// that existed when c was recorded.
func clearedAt(sorted []Lesson, c LessonCompletion) bool {
	last := uint(0)
	for _, l := range sorted {
		if l.ID == c.LessonID || !l.CreatedAt.After(c.CompletedAt) {
			last = l.ID
		}
	}
	return last == c.LessonID
}

// EvaluateModules returns the progress and lock state of every module in
// course order. A module is locked while the module before it is not fully
// complete and was never cleared, unless it is listed in exempt. Modules without lessons do not
// gate by themselves: the module after them sees the same gate they do.
func EvaluateModules(modules []Module, lessons []Lesson, marks map[uint]Watermark, exempt map[uint]bool) []ModuleState {
	ordered := make([]Module, len(modules))
	copy(ordered, modules)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Position != ordered[j].Position {
			return ordered[i].Position < ordered[j].Position
		}
		return ordered[i].ID < ordered[j].ID
	})

	byModule := groupLessons(lessons)
	states := make([]ModuleState, 0, len(ordered))

	// gateOpen reports whether the next module may be entered.
	gateOpen := true
	for i, m := range ordered {
		total := len(byModule[m.ID])
		st := ModuleState{
			ModuleID:    m.ID,
			ContentType: ContentLessons,
			LessonCount: total,
			Exempt:      exempt[m.ID],
		}
		st.IsLocked = i > 0 && !gateOpen && !st.Exempt

		if total == 0 {
			st.ContentType = ContentAssignment
			states = append(states, st)
			continue
		}

		done := marks[m.ID].FurthestCompletedOrdinal
		if done > total {
			done = total
		}
		st.CompletedLessons = done
		st.ProgressPercent = Round1(float64(100*done) / float64(total))
		states = append(states, st)

		gateOpen = done == total || marks[m.ID].Cleared
	}
	return states
}

func groupLessons(lessons []Lesson) map[uint][]Lesson {
	byModule := make(map[uint][]Lesson)
	for _, l := range lessons {
		byModule[l.ModuleID] = append(byModule[l.ModuleID], l)
	}
	for id := range byModule {
		ls := byModule[id]
		sort.SliceStable(ls, func(i, j int) bool {
			if ls[i].Position != ls[j].Position {
				return ls[i].Position < ls[j].Position
			}
			return ls[i].ID < ls[j].ID
		})
	}
	return byModule
}
