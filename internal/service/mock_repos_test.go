package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"marina-guard/backend/internal/model"
	"marina-guard/backend/internal/repository"
	pkgerrors "marina-guard/backend/pkg/errors"
	"marina-guard/backend/pkg/mq"
	"marina-guard/backend/pkg/redis"
)

// ── test aggregate ──

type testRepos struct {
	users       *mockUserRepo
	locations   *mockLocationRepo
	patterns    *mockPatternRepo
	shifts      *mockShiftRepo
	sessions    *mockDutySessionRepo
	checkIns    *mockCheckInRepo
	timesheets  *mockTimesheetRepo
	entries     *mockEntryRepo
	adjustments *mockAdjustmentRepo
	equipment   *mockEquipmentRepo
	checkouts   *mockCheckoutRepo
	incidents   *mockIncidentRepo
	repo        *repository.Repository
}

func newTestRepos() *testRepos {
	entries := newMockEntryRepo()
	adjustments := newMockAdjustmentRepo()
	users := newMockUserRepo()
	r := &testRepos{
		users:       users,
		locations:   newMockLocationRepo(),
		patterns:    newMockPatternRepo(),
		shifts:      newMockShiftRepo(),
		sessions:    newMockDutySessionRepo(),
		checkIns:    newMockCheckInRepo(),
		timesheets:  newMockTimesheetRepo(entries, adjustments, users),
		entries:     entries,
		adjustments: adjustments,
		equipment:   newMockEquipmentRepo(),
		checkouts:   newMockCheckoutRepo(),
		incidents:   newMockIncidentRepo(),
	}
	r.repo = &repository.Repository{
		User:                r.users,
		Location:            r.locations,
		Pattern:             r.patterns,
		Shift:               r.shifts,
		DutySession:         r.sessions,
		LocationCheckIn:     r.checkIns,
		Timesheet:           r.timesheets,
		TimesheetEntry:      r.entries,
		TimesheetAdjustment: r.adjustments,
		Equipment:           r.equipment,
		EquipmentCheckout:   r.checkouts,
		Incident:            r.incidents,
	}
	return r
}

func (r *testRepos) addUser(id string, role model.Role) *model.User {
	u := &model.User{
		UserID:   id,
		Name:     "User " + id,
		Email:    id + "@marina.test",
		Role:     role,
		IsActive: true,
	}
	u.Version = 1
	r.users.users[id] = u
	return u
}

func (r *testRepos) addLocation(id string) *model.Location {
	loc := &model.Location{
		LocationID:     id,
		Name:           "Dock " + id,
		CheckpointCode: strings.ToUpper("CP" + id),
		IsActive:       true,
	}
	r.locations.locations[id] = loc
	return loc
}

var mockSeq struct {
	sync.Mutex
	n int
}

func nextID(prefix string) string {
	mockSeq.Lock()
	defer mockSeq.Unlock()
	mockSeq.n++
	return fmt.Sprintf("%s-%d", prefix, mockSeq.n)
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.UserID == "" {
		user.UserID = nextID("user")
	}
	user.Version = 1
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.users[user.UserID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored != user && stored.Version != user.Version {
		return pkgerrors.ErrOptimisticLock
	}
	user.Version++
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) List(_ context.Context, filter repository.UserFilter, page repository.Page) ([]model.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []model.User
	for _, u := range m.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.ActiveOnly && !u.IsActive {
			continue
		}
		if filter.Keyword != "" && !strings.Contains(strings.ToLower(u.Name+u.Email), strings.ToLower(filter.Keyword)) {
			continue
		}
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return paginate(all, page), int64(len(all)), nil
}

func (m *mockUserRepo) ListActive(_ context.Context) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []model.User
	for _, u := range m.users {
		if u.IsActive {
			all = append(all, *u)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all, nil
}

func (m *mockUserRepo) LockByID(ctx context.Context, id string) (*model.User, error) {
	return m.GetByID(ctx, id)
}

func paginate[T any](all []T, page repository.Page) []T {
	start := page.Offset
	if start > len(all) {
		start = len(all)
	}
	end := len(all)
	if page.Limit > 0 && start+page.Limit < end {
		end = start + page.Limit
	}
	return all[start:end]
}

// ── Mock LocationRepository ──

type mockLocationRepo struct {
	locations map[string]*model.Location
}

func newMockLocationRepo() *mockLocationRepo {
	return &mockLocationRepo{locations: make(map[string]*model.Location)}
}

func (m *mockLocationRepo) Create(_ context.Context, loc *model.Location) error {
	for _, l := range m.locations {
		if l.CheckpointCode == loc.CheckpointCode {
			return gorm.ErrDuplicatedKey
		}
	}
	if loc.LocationID == "" {
		loc.LocationID = nextID("loc")
	}
	m.locations[loc.LocationID] = loc
	return nil
}

func (m *mockLocationRepo) GetByID(_ context.Context, id string) (*model.Location, error) {
	if l, ok := m.locations[id]; ok {
		return l, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLocationRepo) GetByCheckpointCode(_ context.Context, code string) (*model.Location, error) {
	for _, l := range m.locations {
		if strings.EqualFold(l.CheckpointCode, code) {
			return l, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLocationRepo) List(_ context.Context, includeInactive bool) ([]model.Location, error) {
	var result []model.Location
	for _, l := range m.locations {
		if includeInactive || l.IsActive {
			result = append(result, *l)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockLocationRepo) Update(_ context.Context, loc *model.Location) error {
	m.locations[loc.LocationID] = loc
	return nil
}

func (m *mockLocationRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.locations, id)
	return nil
}

// ── Mock PatternRepository ──

type mockPatternRepo struct {
	patterns map[string]*model.RecurringShiftPattern
	order    []string
}

func newMockPatternRepo() *mockPatternRepo {
	return &mockPatternRepo{patterns: make(map[string]*model.RecurringShiftPattern)}
}

func (m *mockPatternRepo) Create(_ context.Context, p *model.RecurringShiftPattern) error {
	if p.PatternID == "" {
		p.PatternID = nextID("pattern")
	}
	p.Version = 1
	for i := range p.Assignments {
		p.Assignments[i].PatternID = p.PatternID
	}
	m.patterns[p.PatternID] = p
	m.order = append(m.order, p.PatternID)
	return nil
}

func (m *mockPatternRepo) GetByID(_ context.Context, id string) (*model.RecurringShiftPattern, error) {
	if p, ok := m.patterns[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPatternRepo) List(_ context.Context, locationID string, activeOnly bool) ([]model.RecurringShiftPattern, error) {
	var result []model.RecurringShiftPattern
	for _, id := range m.order {
		p, ok := m.patterns[id]
		if !ok {
			continue
		}
		if locationID != "" && p.LocationID != locationID {
			continue
		}
		if activeOnly && !p.IsActive {
			continue
		}
		result = append(result, *p)
	}
	return result, nil
}

func (m *mockPatternRepo) ListActive(ctx context.Context) ([]model.RecurringShiftPattern, error) {
	return m.List(ctx, "", true)
}

func (m *mockPatternRepo) Update(_ context.Context, p *model.RecurringShiftPattern) error {
	if _, ok := m.patterns[p.PatternID]; !ok {
		return gorm.ErrRecordNotFound
	}
	p.Version++
	m.patterns[p.PatternID] = p
	return nil
}

func (m *mockPatternRepo) ReplaceAssignments(_ context.Context, patternID string, assignments []model.PatternAssignment) error {
	p, ok := m.patterns[patternID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range assignments {
		assignments[i].PatternID = patternID
	}
	p.Assignments = assignments
	return nil
}

func (m *mockPatternRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.patterns, id)
	return nil
}

// ── Mock ShiftRepository ──

type mockShiftRepo struct {
	shifts map[string]*model.Shift
}

func newMockShiftRepo() *mockShiftRepo {
	return &mockShiftRepo{shifts: make(map[string]*model.Shift)}
}

func (m *mockShiftRepo) Create(_ context.Context, shift *model.Shift) error {
	if shift.ShiftID == "" {
		shift.ShiftID = nextID("shift")
	}
	for i := range shift.Assignments {
		shift.Assignments[i].ShiftID = shift.ShiftID
	}
	m.shifts[shift.ShiftID] = shift
	return nil
}

func (m *mockShiftRepo) BatchCreate(ctx context.Context, shifts []model.Shift) error {
	for i := range shifts {
		sh := shifts[i]
		if err := m.Create(ctx, &sh); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockShiftRepo) GetByID(_ context.Context, id string) (*model.Shift, error) {
	if s, ok := m.shifts[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftRepo) List(_ context.Context, filter repository.ShiftFilter) ([]model.Shift, error) {
	var result []model.Shift
	for _, s := range m.shifts {
		if !filter.From.IsZero() && !s.EndTime.After(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !s.StartTime.Before(filter.To) {
			continue
		}
		if filter.LocationID != "" && s.LocationID != filter.LocationID {
			continue
		}
		if filter.PatternID != "" && (s.PatternID == nil || *s.PatternID != filter.PatternID) {
			continue
		}
		if filter.UserID != "" && !hasAssignee(s, filter.UserID) {
			continue
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.Before(result[j].StartTime) })
	return result, nil
}

func (m *mockShiftRepo) ExistingPatternStarts(_ context.Context, from, to time.Time) ([]model.Shift, error) {
	var result []model.Shift
	for _, s := range m.shifts {
		if s.PatternID == nil || s.StartTime.Before(from) || !s.StartTime.Before(to) {
			continue
		}
		result = append(result, *s)
	}
	return result, nil
}

func (m *mockShiftRepo) Delete(_ context.Context, id string) error {
	delete(m.shifts, id)
	return nil
}

func (m *mockShiftRepo) AddAssignment(_ context.Context, a *model.ShiftAssignment) error {
	s, ok := m.shifts[a.ShiftID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if hasAssignee(s, a.UserID) {
		return gorm.ErrDuplicatedKey
	}
	a.ShiftAssignmentID = nextID("sa")
	s.Assignments = append(s.Assignments, *a)
	return nil
}

func (m *mockShiftRepo) RemoveAssignment(_ context.Context, shiftID, userID string) (bool, error) {
	s, ok := m.shifts[shiftID]
	if !ok {
		return false, nil
	}
	for i, a := range s.Assignments {
		if a.UserID == userID {
			s.Assignments = append(s.Assignments[:i], s.Assignments[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// ── Mock DutySessionRepository ──

type mockDutySessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*model.DutySession
}

func newMockDutySessionRepo() *mockDutySessionRepo {
	return &mockDutySessionRepo{sessions: make(map[string]*model.DutySession)}
}

// Create mirrors the partial unique index on open sessions
func (m *mockDutySessionRepo) Create(_ context.Context, s *model.DutySession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ClockOutTime == nil {
		for _, existing := range m.sessions {
			if existing.UserID == s.UserID && existing.ClockOutTime == nil {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	if s.DutySessionID == "" {
		s.DutySessionID = nextID("session")
	}
	m.sessions[s.DutySessionID] = s
	return nil
}

func (m *mockDutySessionRepo) GetByID(_ context.Context, id string) (*model.DutySession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDutySessionRepo) GetOpenByUser(_ context.Context, userID string) (*model.DutySession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.UserID == userID && s.ClockOutTime == nil {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDutySessionRepo) Close(_ context.Context, id string, clockOut time.Time, notes string, _ string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.ClockOutTime != nil {
		return false, nil
	}
	s.ClockOutTime = &clockOut
	if notes != "" {
		s.Notes = notes
	}
	return true, nil
}

func (m *mockDutySessionRepo) List(_ context.Context, filter repository.DutySessionFilter, page repository.Page) ([]model.DutySession, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []model.DutySession
	for _, s := range m.sessions {
		if filter.UserID != "" && s.UserID != filter.UserID {
			continue
		}
		if filter.OpenOnly && s.ClockOutTime != nil {
			continue
		}
		if !filter.From.IsZero() && s.ClockInTime.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && s.ClockInTime.After(filter.To) {
			continue
		}
		all = append(all, *s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ClockInTime.After(all[j].ClockInTime) })
	return paginate(all, page), int64(len(all)), nil
}

func (m *mockDutySessionRepo) ListCompleted(_ context.Context, userID string, from, to time.Time) ([]model.DutySession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.DutySession
	for _, s := range m.sessions {
		if s.UserID != userID || s.ClockOutTime == nil {
			continue
		}
		if s.ClockInTime.Before(from) || s.ClockInTime.After(to) {
			continue
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ClockInTime.Before(result[j].ClockInTime) })
	return result, nil
}

// ── Mock LocationCheckInRepository ──

type mockCheckInRepo struct {
	checkIns []model.LocationCheckIn
}

func newMockCheckInRepo() *mockCheckInRepo { return &mockCheckInRepo{} }

func (m *mockCheckInRepo) Create(_ context.Context, c *model.LocationCheckIn) error {
	if c.CheckInID == "" {
		c.CheckInID = nextID("checkin")
	}
	m.checkIns = append(m.checkIns, *c)
	return nil
}

func (m *mockCheckInRepo) ListBySession(_ context.Context, sessionID string) ([]model.LocationCheckIn, error) {
	var result []model.LocationCheckIn
	for _, c := range m.checkIns {
		if c.DutySessionID == sessionID {
			result = append(result, c)
		}
	}
	return result, nil
}

// ── Mock TimesheetRepository ──

type mockTimesheetRepo struct {
	mu          sync.Mutex
	timesheets  map[string]*model.Timesheet
	entries     *mockEntryRepo
	adjustments *mockAdjustmentRepo
	users       *mockUserRepo
}

func newMockTimesheetRepo(entries *mockEntryRepo, adjustments *mockAdjustmentRepo, users *mockUserRepo) *mockTimesheetRepo {
	return &mockTimesheetRepo{
		timesheets:  make(map[string]*model.Timesheet),
		entries:     entries,
		adjustments: adjustments,
		users:       users,
	}
}

// Create mirrors ux_timesheets_user_week and gorm's association insert
func (m *mockTimesheetRepo) Create(ctx context.Context, ts *model.Timesheet) error {
	m.mu.Lock()
	for _, existing := range m.timesheets {
		if existing.UserID == ts.UserID && existing.WeekStart.Equal(ts.WeekStart) {
			m.mu.Unlock()
			return gorm.ErrDuplicatedKey
		}
	}
	if ts.TimesheetID == "" {
		ts.TimesheetID = nextID("ts")
	}
	ts.Version = 1
	m.timesheets[ts.TimesheetID] = ts
	m.mu.Unlock()

	for i := range ts.Entries {
		ts.Entries[i].TimesheetID = ts.TimesheetID
		if err := m.entries.Create(ctx, &ts.Entries[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockTimesheetRepo) get(id string) (*model.Timesheet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ts, ok := m.timesheets[id]; ok {
		return ts, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTimesheetRepo) GetByID(_ context.Context, id string) (*model.Timesheet, error) {
	return m.get(id)
}

func (m *mockTimesheetRepo) GetDetail(ctx context.Context, id string) (*model.Timesheet, error) {
	ts, err := m.get(id)
	if err != nil {
		return nil, err
	}
	detail := *ts
	if u, err := m.users.GetByID(ctx, ts.UserID); err == nil {
		detail.User = u
	}
	entries, _ := m.entries.ListByTimesheet(ctx, id)
	adjustments, _ := m.adjustments.ListByTimesheet(ctx, id)
	for i := range entries {
		for _, a := range adjustments {
			if a.TimesheetEntryID == entries[i].TimesheetEntryID {
				entries[i].Adjustments = append(entries[i].Adjustments, a)
			}
		}
	}
	detail.Entries = entries
	return &detail, nil
}

func (m *mockTimesheetRepo) LockByID(_ context.Context, id string) (*model.Timesheet, error) {
	return m.get(id)
}

func (m *mockTimesheetRepo) GetByUserWeek(_ context.Context, userID string, weekStart time.Time) (*model.Timesheet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ts := range m.timesheets {
		if ts.UserID == userID && ts.WeekStart.Equal(weekStart) {
			return ts, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTimesheetRepo) List(ctx context.Context, filter repository.TimesheetFilter, page repository.Page) ([]model.Timesheet, int64, error) {
	m.mu.Lock()
	var all []model.Timesheet
	for _, ts := range m.timesheets {
		if filter.UserID != "" && ts.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && ts.Status != filter.Status {
			continue
		}
		if !filter.WeekFrom.IsZero() && ts.WeekStart.Before(filter.WeekFrom) {
			continue
		}
		if !filter.WeekTo.IsZero() && ts.WeekStart.After(filter.WeekTo) {
			continue
		}
		all = append(all, *ts)
	}
	m.mu.Unlock()

	for i := range all {
		if u, err := m.users.GetByID(ctx, all[i].UserID); err == nil {
			all[i].User = u
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].WeekStart.After(all[j].WeekStart) })
	return paginate(all, page), int64(len(all)), nil
}

func (m *mockTimesheetRepo) Update(_ context.Context, ts *model.Timesheet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.timesheets[ts.TimesheetID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored != ts && stored.Version != ts.Version {
		return pkgerrors.ErrOptimisticLock
	}
	ts.Version++
	m.timesheets[ts.TimesheetID] = ts
	return nil
}

func (m *mockTimesheetRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.timesheets, id)
	m.entries.deleteByTimesheet(id)
	return nil
}

// ── Mock TimesheetEntryRepository ──

type mockEntryRepo struct {
	mu      sync.Mutex
	entries map[string]*model.TimesheetEntry
	// afterGet runs once GetByID has copied the entry out, standing in for
	// a writer that commits before the caller takes its locks
	afterGet func(stored *model.TimesheetEntry)
}

func newMockEntryRepo() *mockEntryRepo {
	return &mockEntryRepo{entries: make(map[string]*model.TimesheetEntry)}
}

func (m *mockEntryRepo) Create(_ context.Context, e *model.TimesheetEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.TimesheetEntryID == "" {
		e.TimesheetEntryID = nextID("entry")
	}
	stored := *e
	m.entries[e.TimesheetEntryID] = &stored
	return nil
}

func (m *mockEntryRepo) GetByID(_ context.Context, id string) (*model.TimesheetEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[id]; ok {
		c := *e
		if m.afterGet != nil {
			m.afterGet(e)
		}
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEntryRepo) LockByID(_ context.Context, id string) (*model.TimesheetEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[id]; ok {
		c := *e
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEntryRepo) ListByTimesheet(_ context.Context, timesheetID string) ([]model.TimesheetEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.TimesheetEntry
	for _, e := range m.entries {
		if e.TimesheetID == timesheetID {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ClockInTime.Before(result[j].ClockInTime) })
	return result, nil
}

func (m *mockEntryRepo) Update(_ context.Context, e *model.TimesheetEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.entries[e.TimesheetEntryID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.ClockInTime = e.ClockInTime
	stored.ClockOutTime = e.ClockOutTime
	stored.HoursWorked = e.HoursWorked
	stored.WasAdjusted = e.WasAdjusted
	return nil
}

func (m *mockEntryRepo) deleteByTimesheet(timesheetID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.entries {
		if e.TimesheetID == timesheetID {
			delete(m.entries, id)
		}
	}
}

// ── Mock TimesheetAdjustmentRepository ──

type mockAdjustmentRepo struct {
	mu          sync.Mutex
	adjustments []model.TimesheetAdjustment
}

func newMockAdjustmentRepo() *mockAdjustmentRepo { return &mockAdjustmentRepo{} }

func (m *mockAdjustmentRepo) Create(_ context.Context, a *model.TimesheetAdjustment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.AdjustmentID == "" {
		a.AdjustmentID = nextID("adj")
	}
	m.adjustments = append(m.adjustments, *a)
	return nil
}

func (m *mockAdjustmentRepo) ListByTimesheet(_ context.Context, timesheetID string) ([]model.TimesheetAdjustment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.TimesheetAdjustment
	for _, a := range m.adjustments {
		if a.TimesheetID == timesheetID {
			result = append(result, a)
		}
	}
	return result, nil
}

// ── Mock EquipmentRepository ──

type mockEquipmentRepo struct {
	items map[string]*model.Equipment
}

func newMockEquipmentRepo() *mockEquipmentRepo {
	return &mockEquipmentRepo{items: make(map[string]*model.Equipment)}
}

func (m *mockEquipmentRepo) Create(_ context.Context, e *model.Equipment) error {
	for _, existing := range m.items {
		if existing.Identifier == e.Identifier {
			return gorm.ErrDuplicatedKey
		}
	}
	if e.EquipmentID == "" {
		e.EquipmentID = nextID("equip")
	}
	m.items[e.EquipmentID] = e
	return nil
}

func (m *mockEquipmentRepo) GetByID(_ context.Context, id string) (*model.Equipment, error) {
	if e, ok := m.items[id]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEquipmentRepo) LockByID(ctx context.Context, id string) (*model.Equipment, error) {
	return m.GetByID(ctx, id)
}

func (m *mockEquipmentRepo) List(_ context.Context, kind model.EquipmentKind, availableOnly bool) ([]model.Equipment, error) {
	var result []model.Equipment
	for _, e := range m.items {
		if kind != "" && e.Kind != kind {
			continue
		}
		if availableOnly && !e.IsAvailable {
			continue
		}
		result = append(result, *e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Identifier < result[j].Identifier })
	return result, nil
}

func (m *mockEquipmentRepo) SetAvailable(_ context.Context, id string, available bool, _ string) error {
	e, ok := m.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	e.IsAvailable = available
	return nil
}

// ── Mock EquipmentCheckoutRepository ──

type mockCheckoutRepo struct {
	checkouts map[string]*model.EquipmentCheckout
}

func newMockCheckoutRepo() *mockCheckoutRepo {
	return &mockCheckoutRepo{checkouts: make(map[string]*model.EquipmentCheckout)}
}

func (m *mockCheckoutRepo) Create(_ context.Context, c *model.EquipmentCheckout) error {
	if c.CheckoutID == "" {
		c.CheckoutID = nextID("checkout")
	}
	stored := *c
	m.checkouts[c.CheckoutID] = &stored
	return nil
}

func (m *mockCheckoutRepo) GetOpenByEquipment(_ context.Context, equipmentID string) (*model.EquipmentCheckout, error) {
	for _, c := range m.checkouts {
		if c.EquipmentID == equipmentID && c.IsOpen() {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCheckoutRepo) ListOpenByUser(_ context.Context, userID string) ([]model.EquipmentCheckout, error) {
	var result []model.EquipmentCheckout
	for _, c := range m.checkouts {
		if c.UserID == userID && c.IsOpen() {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockCheckoutRepo) ListByEquipment(_ context.Context, equipmentID string, page repository.Page) ([]model.EquipmentCheckout, error) {
	var result []model.EquipmentCheckout
	for _, c := range m.checkouts {
		if c.EquipmentID == equipmentID {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CheckedOutAt.After(result[j].CheckedOutAt) })
	return paginate(result, page), nil
}

func (m *mockCheckoutRepo) Close(_ context.Context, c *model.EquipmentCheckout) error {
	stored, ok := m.checkouts[c.CheckoutID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.CheckedInAt = c.CheckedInAt
	stored.EndMileage = c.EndMileage
	stored.Notes = c.Notes
	return nil
}

// ── Mock IncidentRepository ──

type mockIncidentRepo struct {
	reports map[string]*model.IncidentReport
}

func newMockIncidentRepo() *mockIncidentRepo {
	return &mockIncidentRepo{reports: make(map[string]*model.IncidentReport)}
}

func (m *mockIncidentRepo) Create(_ context.Context, r *model.IncidentReport) error {
	if r.IncidentID == "" {
		r.IncidentID = nextID("incident")
	}
	stored := *r
	m.reports[r.IncidentID] = &stored
	return nil
}

func (m *mockIncidentRepo) GetByID(_ context.Context, id string) (*model.IncidentReport, error) {
	if r, ok := m.reports[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockIncidentRepo) List(_ context.Context, filter repository.IncidentFilter, page repository.Page) ([]model.IncidentReport, int64, error) {
	var all []model.IncidentReport
	for _, r := range m.reports {
		if filter.ReportedBy != "" && r.ReportedBy != filter.ReportedBy {
			continue
		}
		if filter.Severity != "" && r.Severity != filter.Severity {
			continue
		}
		if filter.Unsigned && r.IsSigned() {
			continue
		}
		all = append(all, *r)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].OccurredAt.After(all[j].OccurredAt) })
	return paginate(all, page), int64(len(all)), nil
}

func (m *mockIncidentRepo) Sign(_ context.Context, id, signerID, signatureName string, at time.Time) (bool, error) {
	r, ok := m.reports[id]
	if !ok || r.IsSigned() {
		return false, nil
	}
	r.SignedBy = &signerID
	r.SignatureName = signatureName
	r.SignedAt = &at
	return true, nil
}

// ── Mock cache and notifier ──

type mockCache struct {
	mu        sync.Mutex
	blacklist map[string]time.Duration
	lockErr   error
	locks     int
}

func newMockCache() *mockCache {
	return &mockCache{blacklist: make(map[string]time.Duration)}
}

func (m *mockCache) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blacklist[jti] = ttl
	return nil
}

func (m *mockCache) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.blacklist[jti]
	return ok, nil
}

// AcquireLock returns a nil lock; (*redis.Lock).Release is nil-safe
func (m *mockCache) AcquireLock(_ context.Context, _ string, _ time.Duration) (*redis.Lock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lockErr != nil {
		return nil, m.lockErr
	}
	m.locks++
	return nil, nil
}

type mockNotifier struct {
	mu     sync.Mutex
	events []mq.Event
}

func (m *mockNotifier) Publish(_ context.Context, e mq.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

func (m *mockNotifier) types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, e := range m.events {
		out = append(out, e.Type)
	}
	return out
}
