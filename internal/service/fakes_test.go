package service

import (
	"context"
	"course_backend/internal/config"
	"course_backend/internal/grading"
	"course_backend/internal/model"
	"course_backend/internal/session"
	"course_backend/pkg/payment"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"
)

// memStore implements every store interface in memory.
type memStore struct {
	mu     sync.Mutex
	nextID uint
	calls  int

	users       map[uint]*model.User
	modules     []model.Module
	lessons     []model.Lesson
	tests       map[uint]*model.Test
	assignments []model.Assignment
	attempts    []model.TestAttempt
	lessonRows  map[[2]uint]model.UserProgress
	scoreRows   map[[2]uint]model.UserProgress
	profiles    map[uint]*model.UserProfile
	access      map[string]model.CourseAccess
	exemptions  map[[2]uint]model.ModuleAccessExemption
	submissions []model.AssignmentSubmission
	projects    map[uint]*model.Project

	saveGradeErr error
	recordErr    error
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[uint]*model.User{},
		tests:      map[uint]*model.Test{},
		lessonRows: map[[2]uint]model.UserProgress{},
		scoreRows:  map[[2]uint]model.UserProgress{},
		profiles:   map[uint]*model.UserProfile{},
		access:     map[string]model.CourseAccess{},
		exemptions: map[[2]uint]model.ModuleAccessExemption{},
		projects:   map[uint]*model.Project{},
	}
}

func (m *memStore) id() uint {
	m.nextID++
	return m.nextID
}

func (m *memStore) enter() func() {
	m.mu.Lock()
	m.calls++
	return m.mu.Unlock
}

func (m *memStore) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// UserStore

func (m *memStore) Create(_ context.Context, u *model.User) error {
	defer m.enter()()
	u.ID = m.id()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memStore) FindByID(_ context.Context, id uint) (*model.User, error) {
	defer m.enter()()
	u, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	defer m.enter()()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memStore) UpdateLastLogin(_ context.Context, id uint, at time.Time) error {
	defer m.enter()()
	if u, ok := m.users[id]; ok {
		u.LastLogin = &at
	}
	return nil
}

func (m *memStore) ListIDs(context.Context) ([]uint, error) {
	defer m.enter()()
	var ids []uint
	for id := range m.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// CatalogStore

func (m *memStore) ListModules(context.Context) ([]model.Module, error) {
	defer m.enter()()
	out := make([]model.Module, len(m.modules))
	copy(out, m.modules)
	for i := range out {
		for _, t := range m.tests {
			if t.ModuleID == out[i].ID {
				cp := *t
				cp.Questions = nil
				out[i].Test = &cp
			}
		}
	}
	return out, nil
}

func (m *memStore) ListLessons(context.Context) ([]model.Lesson, error) {
	defer m.enter()()
	out := make([]model.Lesson, len(m.lessons))
	copy(out, m.lessons)
	return out, nil
}

func (m *memStore) FindModule(_ context.Context, id uint) (*model.Module, error) {
	defer m.enter()()
	for _, mod := range m.modules {
		if mod.ID == id {
			cp := mod
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memStore) FindLesson(_ context.Context, id uint) (*model.Lesson, error) {
	defer m.enter()()
	for _, l := range m.lessons {
		if l.ID == id {
			cp := l
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memStore) CreateModule(_ context.Context, mod *model.Module) error {
	defer m.enter()()
	mod.ID = m.id()
	m.modules = append(m.modules, *mod)
	return nil
}

func (m *memStore) CreateLesson(_ context.Context, l *model.Lesson) error {
	defer m.enter()()
	l.ID = m.id()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	m.lessons = append(m.lessons, *l)
	return nil
}

func (m *memStore) SaveTest(_ context.Context, t *model.Test) error {
	defer m.enter()()
	for id, existing := range m.tests {
		if existing.ModuleID == t.ModuleID {
			delete(m.tests, id)
			t.ID = id
		}
	}
	if t.ID == 0 {
		t.ID = m.id()
	}
	for i := range t.Questions {
		t.Questions[i].ID = m.id()
		t.Questions[i].TestID = t.ID
	}
	cp := *t
	m.tests[t.ID] = &cp
	return nil
}

func (m *memStore) CreateAssignment(_ context.Context, a *model.Assignment) error {
	defer m.enter()()
	a.ID = m.id()
	m.assignments = append(m.assignments, *a)
	return nil
}

func (m *memStore) FindAssignment(_ context.Context, id uint) (*model.Assignment, error) {
	defer m.enter()()
	for _, a := range m.assignments {
		if a.ID == id {
			cp := a
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memStore) ListAssignments(context.Context) ([]model.Assignment, error) {
	defer m.enter()()
	return append([]model.Assignment(nil), m.assignments...), nil
}

// AttemptStore

func (m *memStore) FindTest(_ context.Context, id uint) (*model.Test, error) {
	defer m.enter()()
	t, ok := m.tests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

// RecordSubmission writes both rows or neither.
func (m *memStore) RecordSubmission(_ context.Context, a *model.TestAttempt, moduleID uint, score float64) error {
	defer m.enter()()
	if m.recordErr != nil {
		return m.recordErr
	}
	a.ID = m.id()
	m.attempts = append(m.attempts, *a)
	m.upsertScore(a.UserID, moduleID, score, a.Passed, a.CompletedAt)
	return nil
}

func (m *memStore) ListAttemptsByUser(_ context.Context, userID uint) ([]model.TestAttempt, error) {
	defer m.enter()()
	var out []model.TestAttempt
	for _, a := range m.attempts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memStore) ListAttempts(_ context.Context, userID, testID uint) ([]model.TestAttempt, error) {
	defer m.enter()()
	var out []model.TestAttempt
	for i := len(m.attempts) - 1; i >= 0; i-- {
		a := m.attempts[i]
		if a.UserID == userID && a.TestID == testID {
			out = append(out, a)
		}
	}
	return out, nil
}

// ProgressStore

func (m *memStore) UpsertLessonCompletion(_ context.Context, userID, moduleID, lessonID uint, at time.Time) error {
	defer m.enter()()
	key := [2]uint{userID, lessonID}
	row, ok := m.lessonRows[key]
	if !ok {
		row = model.UserProgress{ID: m.id(), UserID: userID, LessonID: &lessonID}
		row.CreatedAt = at
	}
	row.ModuleID = moduleID
	row.Completed = true
	row.CompletedAt = &at
	m.lessonRows[key] = row
	return nil
}

func (m *memStore) upsertScore(userID, moduleID uint, score float64, passed bool, at time.Time) {
	key := [2]uint{userID, moduleID}
	row, ok := m.scoreRows[key]
	if !ok {
		row = model.UserProgress{ID: m.id(), UserID: userID, ModuleID: moduleID}
	}
	row.TestScore = &score
	row.Completed = passed
	row.CompletedAt = &at
	m.scoreRows[key] = row
}

func (m *memStore) ListLessonCompletions(_ context.Context, userID uint) ([]model.UserProgress, error) {
	defer m.enter()()
	var out []model.UserProgress
	for key, row := range m.lessonRows {
		if key[0] == userID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *memStore) ListTestScores(_ context.Context, userID uint) ([]model.UserProgress, error) {
	defer m.enter()()
	var out []model.UserProgress
	for key, row := range m.scoreRows {
		if key[0] == userID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *memStore) ResetLessonProgress(_ context.Context, userID uint) (int64, error) {
	defer m.enter()()
	var n int64
	for key := range m.lessonRows {
		if key[0] == userID {
			delete(m.lessonRows, key)
			n++
		}
	}
	return n, nil
}

// ProfileStore

func (m *memStore) Find(_ context.Context, userID uint) (*model.UserProfile, error) {
	defer m.enter()()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) SaveGrade(_ context.Context, userID uint, grade *float64, completed int, at time.Time) error {
	defer m.enter()()
	if m.saveGradeErr != nil {
		return m.saveGradeErr
	}
	p, ok := m.profiles[userID]
	if !ok {
		p = &model.UserProfile{UserID: userID}
		m.profiles[userID] = p
	}
	p.OverallGrade = grade
	p.CompletedModuleCount = completed
	p.GradeComputedAt = &at
	return nil
}

func (m *memStore) IssueCertificate(_ context.Context, userID uint, number string, at time.Time) (bool, error) {
	defer m.enter()()
	p, ok := m.profiles[userID]
	if !ok || p.CertificateEarned {
		return false, nil
	}
	p.CertificateEarned = true
	p.CertificateNumber = number
	p.CertificateIssuedAt = &at
	return true, nil
}

// AccessStore

func (m *memStore) Grant(_ context.Context, a *model.CourseAccess) (bool, error) {
	defer m.enter()()
	if _, ok := m.access[a.CheckoutSessionID]; ok {
		return false, nil
	}
	a.ID = m.id()
	m.access[a.CheckoutSessionID] = *a
	return true, nil
}

func (m *memStore) HasAccess(_ context.Context, userID uint, slug string) (bool, error) {
	defer m.enter()()
	for _, a := range m.access {
		if a.UserID == userID && a.CourseSlug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) AddExemption(_ context.Context, e *model.ModuleAccessExemption) error {
	defer m.enter()()
	m.exemptions[[2]uint{e.UserID, e.ModuleID}] = *e
	return nil
}

func (m *memStore) RemoveExemption(_ context.Context, userID, moduleID uint) (int64, error) {
	defer m.enter()()
	key := [2]uint{userID, moduleID}
	if _, ok := m.exemptions[key]; !ok {
		return 0, nil
	}
	delete(m.exemptions, key)
	return 1, nil
}

func (m *memStore) ListExemptModuleIDs(_ context.Context, userID uint) ([]uint, error) {
	defer m.enter()()
	var ids []uint
	for key := range m.exemptions {
		if key[0] == userID {
			ids = append(ids, key[1])
		}
	}
	return ids, nil
}

// SubmissionStore

func (m *memStore) CreateAssignmentSubmission(_ context.Context, s *model.AssignmentSubmission) error {
	defer m.enter()()
	s.ID = m.id()
	m.submissions = append(m.submissions, *s)
	return nil
}

func (m *memStore) ListAssignmentSubmissions(_ context.Context, assignmentID, userID uint) ([]model.AssignmentSubmission, error) {
	defer m.enter()()
	var out []model.AssignmentSubmission
	for _, s := range m.submissions {
		if s.AssignmentID == assignmentID && s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) SaveProject(_ context.Context, p *model.Project) error {
	defer m.enter()()
	if existing, ok := m.projects[p.UserID]; ok {
		p.ID = existing.ID
	} else {
		p.ID = m.id()
	}
	cp := *p
	m.projects[p.UserID] = &cp
	return nil
}

func (m *memStore) FindProject(_ context.Context, userID uint) (*model.Project, error) {
	defer m.enter()()
	p, ok := m.projects[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

type memUploader struct {
	keys []string
}

func (u *memUploader) Upload(_ context.Context, key string, _ io.Reader, _ int64, _ string) (string, error) {
	u.keys = append(u.keys, key)
	return "/uploads/" + key, nil
}

type fakeGateway struct {
	event    *payment.Event
	parseErr error
	requests []payment.CheckoutRequest
}

func (g *fakeGateway) CreateCheckout(_ context.Context, req payment.CheckoutRequest) (*payment.CheckoutSession, error) {
	g.requests = append(g.requests, req)
	return &payment.CheckoutSession{ID: "cs_test", URL: "https://checkout.example.com/cs_test"}, nil
}

func (g *fakeGateway) ParseWebhook([]byte, string) (*payment.Event, error) {
	if g.parseErr != nil {
		return nil, g.parseErr
	}
	return g.event, nil
}

var errBoom = errors.New("boom")

const (
	learnerID = 1
	adminID   = 99
)

func learnerCtx() context.Context {
	return session.NewContext(context.Background(), session.New(learnerID, "learner@example.com", model.Student))
}

func adminCtx() context.Context {
	return session.NewContext(context.Background(), session.New(adminID, "admin@example.com", model.Admin))
}

// fixture is a three-module course: every module has two lessons and a
// two-question test whose correct answers are "a". Only module 1 is free.
type fixture struct {
	store    *memStore
	modules  []model.Module
	lessons  map[uint][]model.Lesson
	tests    map[uint]*model.Test
	course   config.CourseConfig
	progress *ProgressService
	grades   *GradeService
	testSvc  *TestService
}

func newFixture(policy grading.Policy) *fixture {
	store := newMemStore()
	f := &fixture{
		store:   store,
		lessons: map[uint][]model.Lesson{},
		tests:   map[uint]*model.Test{},
		course:  config.CourseConfig{Slug: "main", FreeModules: 1},
	}
	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		m := &model.Module{Position: i, Title: "Module"}
		store.CreateModule(ctx, m)
		f.modules = append(f.modules, *m)
		for p := 1; p <= 2; p++ {
			l := &model.Lesson{ModuleID: m.ID, Position: p}
			store.CreateLesson(ctx, l)
			f.lessons[m.ID] = append(f.lessons[m.ID], *l)
		}
		t := &model.Test{ModuleID: m.ID, PassingScore: 80, Questions: []model.TestQuestion{
			{OrderNumber: 1, CorrectAnswer: "a"},
			{OrderNumber: 2, CorrectAnswer: "a"},
		}}
		store.SaveTest(ctx, t)
		f.tests[m.ID] = t
	}
	store.calls = 0

	f.progress = NewProgressService(store, store, store, f.course)
	f.grades = NewGradeService(store, store, store, policy)
	f.testSvc = NewTestService(store, f.progress, f.grades)
	return f
}

func (f *fixture) grantAccess() {
	f.store.Grant(context.Background(), &model.CourseAccess{UserID: learnerID, CourseSlug: f.course.Slug, CheckoutSessionID: "cs_seed"})
}

// answers returns a submission with the first correct answers right and
// the rest wrong.
func (f *fixture) answers(moduleID uint, correct int) SubmitTestRequest {
	var req SubmitTestRequest
	for i, q := range f.tests[moduleID].Questions {
		choice := "b"
		if i < correct {
			choice = "a"
		}
		req.Answers = append(req.Answers, AnswerInput{QuestionID: q.ID, Answer: choice})
	}
	return req
}

func (f *fixture) completeModule(t interface{ Helper() }, moduleID uint) error {
	t.Helper()
	for _, l := range f.lessons[moduleID] {
		if _, err := f.progress.CompleteLesson(learnerCtx(), l.ID); err != nil {
			return err
		}
	}
	return nil
}
