package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/peer-review-api/internal/models"
	appErrors "github.com/noah-isme/peer-review-api/pkg/errors"
)

type reviewKey struct {
	reviewer int64
	reviewed int64
	period   int64
}

// memoryStore backs every repository interface the services depend on.
type memoryStore struct {
	mu          sync.Mutex
	periods     map[int64]*models.ReviewPeriod
	students    map[int64]models.Student
	groups      map[int64]models.Group
	questions   []models.ReviewQuestion
	reviews     map[reviewKey]models.Review
	submissions map[[2]int64]time.Time
	admins      map[string]models.AdminUser
	nextID      int64

	failWith     error
	batchCalls   int
	createErr    error
	existsResult *bool

	// afterScoresRead runs once, after GroupScores has collected its rows and
	// before it returns them.
	afterScoresRead func()
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		periods:     map[int64]*models.ReviewPeriod{},
		students:    map[int64]models.Student{},
		groups:      map[int64]models.Group{},
		reviews:     map[reviewKey]models.Review{},
		submissions: map[[2]int64]time.Time{},
		admins:      map[string]models.AdminUser{},
		nextID:      100,
	}
}

func (m *memoryStore) addPeriod(id int64, month, year int, active bool) {
	m.periods[id] = &models.ReviewPeriod{ID: id, Month: month, Year: year, PeriodName: models.PeriodName(month, year), IsActive: active}
}

func (m *memoryStore) addStudent(id int64, name, matric string, group int64) {
	m.students[id] = models.Student{ID: id, Name: name, MatricNumber: matric, GroupID: group}
	if _, ok := m.groups[group]; !ok {
		m.groups[group] = models.Group{ID: group, Name: "Group " + string(rune('A'+group-1))}
	}
}

func (m *memoryStore) activeCount() int {
	count := 0
	for _, p := range m.periods {
		if p.IsActive {
			count++
		}
	}
	return count
}

// period repository

func (m *memoryStore) List(ctx context.Context) ([]models.ReviewPeriod, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := make([]models.ReviewPeriod, 0, len(m.periods))
	for _, p := range m.periods {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].Month > out[j].Month
	})
	return out, nil
}

func (m *memoryStore) FindByID(ctx context.Context, id int64) (*models.ReviewPeriod, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	p, ok := m.periods[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (m *memoryStore) FindActive(ctx context.Context) (*models.ReviewPeriod, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, p := range m.periods {
		if p.IsActive {
			cp := *p
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memoryStore) ExistsByMonthYear(ctx context.Context, month, year int) (bool, error) {
	if m.existsResult != nil {
		return *m.existsResult, nil
	}
	for _, p := range m.periods {
		if p.Month == month && p.Year == year {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryStore) Create(ctx context.Context, period *models.ReviewPeriod) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	period.ID = m.nextID
	period.CreatedAt = time.Now()
	cp := *period
	m.periods[period.ID] = &cp
	return nil
}

func (m *memoryStore) SetActive(ctx context.Context, id int64) (*models.ReviewPeriod, error) {
	target, ok := m.periods[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	for _, p := range m.periods {
		p.IsActive = false
	}
	target.IsActive = true
	cp := *target
	return &cp, nil
}

func (m *memoryStore) DeactivateAll(ctx context.Context) error {
	for _, p := range m.periods {
		p.IsActive = false
	}
	return nil
}

// directory repository

func (m *memoryStore) FindStudentByID(ctx context.Context, id int64) (*models.Student, error) {
	s, ok := m.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &s, nil
}

func (m *memoryStore) FindStudentByMatric(ctx context.Context, matric string) (*models.Student, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, s := range m.students {
		if s.MatricNumber == matric {
			cp := s
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memoryStore) ListStudentsByGroup(ctx context.Context, groupID int64) ([]models.Student, error) {
	out := []models.Student{}
	for _, s := range m.students {
		if s.GroupID == groupID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memoryStore) SearchStudents(ctx context.Context, term string, limit int) ([]models.Student, error) {
	out := []models.Student{}
	for _, s := range m.students {
		if strings.Contains(strings.ToLower(s.Name), strings.ToLower(term)) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryStore) ListGroups(ctx context.Context) ([]models.Group, error) {
	out := make([]models.Group, 0, len(m.groups))
	for _, g := range m.groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryStore) FindGroupByID(ctx context.Context, id int64) (*models.Group, error) {
	g, ok := m.groups[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &g, nil
}

func (m *memoryStore) ListQuestions(ctx context.Context) ([]models.ReviewQuestion, error) {
	return m.questions, nil
}

// review, ledger and score repositories

func (m *memoryStore) SubmitBatch(ctx context.Context, reviewerID, periodID int64, reviews []models.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchCalls++
	if m.failWith != nil {
		return m.failWith
	}
	for _, r := range reviews {
		r.ReviewerID = reviewerID
		r.ReviewPeriodID = periodID
		m.reviews[reviewKey{reviewerID, r.ReviewedID, periodID}] = r
	}
	m.submissions[[2]int64{reviewerID, periodID}] = time.Now()
	return nil
}

func (m *memoryStore) HasSubmitted(ctx context.Context, studentID, periodID int64) (bool, error) {
	_, ok := m.submissions[[2]int64{studentID, periodID}]
	return ok, nil
}

func (m *memoryStore) GroupScores(ctx context.Context, periodID, groupID int64) ([]models.ReviewScoreRow, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var rows []models.ReviewScoreRow
	for _, s := range m.students {
		if s.GroupID != groupID {
			continue
		}
		matched := false
		for k, r := range m.reviews {
			if k.reviewed != s.ID || k.period != periodID {
				continue
			}
			q1, q2 := r.Question1Score, r.Question2Score
			rows = append(rows, models.ReviewScoreRow{StudentID: s.ID, StudentName: s.Name, MatricNumber: s.MatricNumber, Question1Score: &q1, Question2Score: &q2})
			matched = true
		}
		if !matched {
			rows = append(rows, models.ReviewScoreRow{StudentID: s.ID, StudentName: s.Name, MatricNumber: s.MatricNumber})
		}
	}
	if hook := m.afterScoresRead; hook != nil {
		m.afterScoresRead = nil
		hook()
	}
	return rows, nil
}

// admin repository

func (m *memoryStore) FindByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	a, ok := m.admins[username]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &a, nil
}

// memoryCache mimics the redis-backed results cache with JSON round trips
// and per-period generations.
type memoryCache struct {
	entries       map[[2]int64][]byte
	generations   map[int64]int64
	getErr        error
	invalidateErr error
	invalidated   []int64
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[[2]int64][]byte{}, generations: map[int64]int64{}}
}

func (c *memoryCache) Generation(ctx context.Context, periodID int64) (int64, error) {
	if c.getErr != nil {
		return 0, c.getErr
	}
	return c.generations[periodID], nil
}

func (c *memoryCache) GroupResults(ctx context.Context, periodID, groupID int64) ([]models.StudentResult, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	raw, ok := c.entries[[2]int64{periodID, groupID}]
	if !ok {
		return nil, appErrors.ErrCacheMiss
	}
	var results []models.StudentResult
	err := json.Unmarshal(raw, &results)
	return results, err
}

func (c *memoryCache) PutGroupResults(ctx context.Context, periodID, groupID, gen int64, results []models.StudentResult, ttl time.Duration) (bool, error) {
	if c.generations[periodID] != gen {
		return false, nil
	}
	raw, err := json.Marshal(results)
	if err != nil {
		return false, err
	}
	c.entries[[2]int64{periodID, groupID}] = raw
	return true, nil
}

func (c *memoryCache) InvalidatePeriod(ctx context.Context, periodID int64) (int, error) {
	if c.invalidateErr != nil {
		return 0, c.invalidateErr
	}
	c.generations[periodID]++
	c.invalidated = append(c.invalidated, periodID)
	removed := 0
	for key := range c.entries {
		if key[0] == periodID {
			delete(c.entries, key)
			removed++
		}
	}
	return removed, nil
}

func intPtr(v int) *int { return &v }
