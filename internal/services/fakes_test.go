package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"gearguard/internal/entities"
	"gearguard/internal/events"
	"gearguard/internal/repositories"
	apperrors "gearguard/pkg/errors"
	"gearguard/pkg/eventbus"
	"gearguard/pkg/types"
	"gearguard/pkg/utils"
)

var testNow = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// fakeDB - общее in-memory хранилище для фейковых репозиториев.
type fakeDB struct {
	mu        sync.Mutex
	requests  map[string]entities.MaintenanceRequest
	equipment map[string]entities.Equipment
	teams     map[string]entities.MaintenanceTeam
	users     map[string]entities.User
	members   map[string][]entities.TeamMember
	seq       int
	order     map[string]int
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		requests:  map[string]entities.MaintenanceRequest{},
		equipment: map[string]entities.Equipment{},
		teams:     map[string]entities.MaintenanceTeam{},
		users:     map[string]entities.User{},
		members:   map[string][]entities.TeamMember{},
		order:     map[string]int{},
	}
}

func (db *fakeDB) nextSeq(id string) {
	db.seq++
	db.order[id] = db.seq
}

type fakeSnapshot struct {
	requests  map[string]entities.MaintenanceRequest
	equipment map[string]entities.Equipment
	teams     map[string]entities.MaintenanceTeam
	users     map[string]entities.User
	members   map[string][]entities.TeamMember
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (db *fakeDB) snapshot() fakeSnapshot {
	db.mu.Lock()
	defer db.mu.Unlock()
	return fakeSnapshot{
		requests:  cloneMap(db.requests),
		equipment: cloneMap(db.equipment),
		teams:     cloneMap(db.teams),
		users:     cloneMap(db.users),
		members:   cloneMap(db.members),
	}
}

func (db *fakeDB) restore(s fakeSnapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.requests, db.equipment, db.teams, db.users, db.members = s.requests, s.equipment, s.teams, s.users, s.members
}

// fakeTxManager откатывает все изменения fakeDB, если fn вернула ошибку.
type fakeTxManager struct {
	db *fakeDB
}

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	snap := m.db.snapshot()
	if err := fn(nil); err != nil {
		m.db.restore(snap)
		return err
	}
	return nil
}

// --- requests ---

type fakeRequestRepo struct {
	db             *fakeDB
	createErr      map[string]error // equipmentID -> ошибка Create
	updateStageErr error
}

func (r *fakeRequestRepo) sorted(keep func(*entities.MaintenanceRequest) bool) []entities.MaintenanceRequest {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []entities.MaintenanceRequest{}
	for _, req := range r.db.requests {
		req := req
		if keep == nil || keep(&req) {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return r.db.order[out[i].ID] < r.db.order[out[j].ID] })
	return out
}

func (r *fakeRequestRepo) List(ctx context.Context, opts repositories.RequestListOptions) ([]entities.MaintenanceRequest, uint64, error) {
	list := r.sorted(func(m *entities.MaintenanceRequest) bool {
		if opts.OverdueOnly && !m.IsOverdue(opts.Today) {
			return false
		}
		if stage, ok := opts.Filter.Filter["stage"].(string); ok && !strings.Contains(stage, string(m.Stage)) {
			return false
		}
		if opts.ScheduledFrom != nil && (m.ScheduledDate == nil || m.ScheduledDate.Before(*opts.ScheduledFrom)) {
			return false
		}
		if opts.ScheduledTo != nil && (m.ScheduledDate == nil || m.ScheduledDate.After(*opts.ScheduledTo)) {
			return false
		}
		return true
	})
	return list, uint64(len(list)), nil
}

func (r *fakeRequestRepo) ListAll(ctx context.Context) ([]entities.MaintenanceRequest, error) {
	return r.sorted(nil), nil
}

func (r *fakeRequestRepo) ListOverdue(ctx context.Context, today time.Time) ([]entities.MaintenanceRequest, error) {
	return r.sorted(func(m *entities.MaintenanceRequest) bool { return m.IsOverdue(today) }), nil
}

func (r *fakeRequestRepo) ListOpenByEquipment(ctx context.Context, equipmentID string) ([]entities.MaintenanceRequest, error) {
	return r.sorted(func(m *entities.MaintenanceRequest) bool {
		return m.EquipmentID == equipmentID && m.Stage.IsOpen()
	}), nil
}

func (r *fakeRequestRepo) ListOpenByTeam(ctx context.Context, teamID string) ([]entities.MaintenanceRequest, error) {
	return r.sorted(func(m *entities.MaintenanceRequest) bool {
		return m.MaintenanceTeamID != nil && *m.MaintenanceTeamID == teamID && m.Stage.IsOpen()
	}), nil
}

func (r *fakeRequestRepo) FindByID(ctx context.Context, id string) (*entities.MaintenanceRequest, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	req, ok := r.db.requests[id]
	if !ok {
		return nil, apperrors.ErrRequestNotFound
	}
	return &req, nil
}

func (r *fakeRequestRepo) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*entities.MaintenanceRequest, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeRequestRepo) Create(ctx context.Context, tx pgx.Tx, req *entities.MaintenanceRequest) error {
	if err := r.createErr[req.EquipmentID]; err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if req.Type == entities.RequestTypePreventive {
		for _, other := range r.db.requests {
			if other.Type == entities.RequestTypePreventive && other.EquipmentID == req.EquipmentID &&
				other.ScheduledDate != nil && req.ScheduledDate != nil && other.ScheduledDate.Equal(*req.ScheduledDate) {
				return apperrors.ErrDuplicatePreventive
			}
		}
	}
	req.Version = 1
	req.CreatedAt = testNow
	req.UpdatedAt = testNow
	r.db.requests[req.ID] = *req
	r.db.nextSeq(req.ID)
	return nil
}

func (r *fakeRequestRepo) UpdateDetails(ctx context.Context, tx pgx.Tx, req *entities.MaintenanceRequest) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.requests[req.ID]; !ok {
		return apperrors.ErrRequestNotFound
	}
	req.Version++
	r.db.requests[req.ID] = *req
	return nil
}

func (r *fakeRequestRepo) UpdateStage(ctx context.Context, tx pgx.Tx, req *entities.MaintenanceRequest, expected entities.Stage) error {
	if r.updateStageErr != nil {
		return r.updateStageErr
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stored, ok := r.db.requests[req.ID]
	if !ok || stored.Stage != expected {
		return apperrors.ErrStageConflict
	}
	req.Version++
	r.db.requests[req.ID] = *req
	return nil
}

func (r *fakeRequestRepo) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.requests[id]; !ok {
		return apperrors.ErrRequestNotFound
	}
	delete(r.db.requests, id)
	return nil
}

func (r *fakeRequestRepo) CountByEquipment(ctx context.Context, tx pgx.Tx, equipmentID string) (int, error) {
	return len(r.sorted(func(m *entities.MaintenanceRequest) bool { return m.EquipmentID == equipmentID })), nil
}

func (r *fakeRequestRepo) ExistsPreventiveInWindow(ctx context.Context, tx pgx.Tx, equipmentID string, from, to time.Time) (bool, error) {
	found := r.sorted(func(m *entities.MaintenanceRequest) bool {
		if m.Type != entities.RequestTypePreventive || m.EquipmentID != equipmentID || m.ScheduledDate == nil {
			return false
		}
		d := utils.DateOnly(*m.ScheduledDate)
		return !d.Before(from) && !d.After(to)
	})
	return len(found) > 0, nil
}

// --- equipment ---

type fakeEquipmentRepo struct {
	db              *fakeDB
	updateStatusErr error
}

func (r *fakeEquipmentRepo) withTeamName(e entities.Equipment) entities.Equipment {
	if e.MaintenanceTeamID != nil {
		if t, ok := r.db.teams[*e.MaintenanceTeamID]; ok {
			name := t.Name
			e.MaintenanceTeamName = &name
		}
	}
	return e
}

func (r *fakeEquipmentRepo) filtered(keep func(*entities.Equipment) bool) []entities.Equipment {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []entities.Equipment{}
	for _, e := range r.db.equipment {
		e := e
		if keep == nil || keep(&e) {
			out = append(out, r.withTeamName(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return r.db.order[out[i].ID] < r.db.order[out[j].ID] })
	return out
}

func (r *fakeEquipmentRepo) List(ctx context.Context, filter types.Filter) ([]entities.Equipment, uint64, error) {
	list := r.filtered(nil)
	return list, uint64(len(list)), nil
}

func (r *fakeEquipmentRepo) ListAll(ctx context.Context) ([]entities.Equipment, error) {
	return r.filtered(nil), nil
}

func (r *fakeEquipmentRepo) ListByStatus(ctx context.Context, status entities.EquipmentStatus) ([]entities.Equipment, error) {
	return r.filtered(func(e *entities.Equipment) bool { return e.Status == status }), nil
}

func (r *fakeEquipmentRepo) FindByID(ctx context.Context, id string) (*entities.Equipment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	e, ok := r.db.equipment[id]
	if !ok {
		return nil, apperrors.ErrEquipmentNotFound
	}
	e = r.withTeamName(e)
	return &e, nil
}

func (r *fakeEquipmentRepo) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*entities.Equipment, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeEquipmentRepo) FindBySerialNumber(ctx context.Context, serial string) (*entities.Equipment, error) {
	found := r.filtered(func(e *entities.Equipment) bool { return e.SerialNumber == serial })
	if len(found) == 0 {
		return nil, apperrors.ErrEquipmentNotFound
	}
	return &found[0], nil
}

func (r *fakeEquipmentRepo) Create(ctx context.Context, tx pgx.Tx, e *entities.Equipment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, other := range r.db.equipment {
		if other.SerialNumber == e.SerialNumber {
			return apperrors.ErrDuplicateSerialNumber
		}
	}
	if e.MaintenanceTeamID != nil {
		if _, ok := r.db.teams[*e.MaintenanceTeamID]; !ok {
			return apperrors.ErrTeamNotFound.WithStatus(400)
		}
	}
	e.CreatedAt, e.UpdatedAt = testNow, testNow
	r.db.equipment[e.ID] = *e
	r.db.nextSeq(e.ID)
	return nil
}

func (r *fakeEquipmentRepo) Update(ctx context.Context, tx pgx.Tx, e *entities.Equipment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.equipment[e.ID]; !ok {
		return apperrors.ErrEquipmentNotFound
	}
	r.db.equipment[e.ID] = *e
	return nil
}

func (r *fakeEquipmentRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id string, status entities.EquipmentStatus) error {
	if r.updateStatusErr != nil {
		return r.updateStatusErr
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	e, ok := r.db.equipment[id]
	if !ok {
		return apperrors.ErrEquipmentNotFound
	}
	e.Status = status
	r.db.equipment[id] = e
	return nil
}

func (r *fakeEquipmentRepo) Delete(ctx context.Context, tx pgx.Tx, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.equipment[id]; !ok {
		return apperrors.ErrEquipmentNotFound
	}
	delete(r.db.equipment, id)
	return nil
}

func (r *fakeEquipmentRepo) CountByTeam(ctx context.Context, tx pgx.Tx, teamID string) (int, error) {
	return len(r.filtered(func(e *entities.Equipment) bool {
		return e.MaintenanceTeamID != nil && *e.MaintenanceTeamID == teamID
	})), nil
}

// --- teams ---

type fakeTeamRepo struct {
	db *fakeDB
}

func (r *fakeTeamRepo) List(ctx context.Context, activeOnly bool) ([]entities.MaintenanceTeam, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []entities.MaintenanceTeam{}
	for _, t := range r.db.teams {
		if activeOnly && !t.IsActive {
			continue
		}
		t.Members = append([]entities.TeamMember{}, r.db.members[t.ID]...)
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeTeamRepo) FindByID(ctx context.Context, id string) (*entities.MaintenanceTeam, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.teams[id]
	if !ok {
		return nil, apperrors.ErrTeamNotFound
	}
	t.Members = append([]entities.TeamMember{}, r.db.members[id]...)
	return &t, nil
}

func (r *fakeTeamRepo) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*entities.MaintenanceTeam, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeTeamRepo) Create(ctx context.Context, team *entities.MaintenanceTeam) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, other := range r.db.teams {
		if other.Name == team.Name {
			return apperrors.ErrDuplicateTeamName
		}
	}
	team.CreatedAt, team.UpdatedAt = testNow, testNow
	r.db.teams[team.ID] = *team
	r.db.nextSeq(team.ID)
	return nil
}

func (r *fakeTeamRepo) Update(ctx context.Context, team *entities.MaintenanceTeam) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.teams[team.ID]; !ok {
		return apperrors.ErrTeamNotFound
	}
	r.db.teams[team.ID] = *team
	return nil
}

func (r *fakeTeamRepo) Delete(ctx context.Context, tx pgx.Tx, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.teams[id]; !ok {
		return apperrors.ErrTeamNotFound
	}
	delete(r.db.teams, id)
	delete(r.db.members, id)
	return nil
}

func (r *fakeTeamRepo) ListMembers(ctx context.Context, teamID string) ([]entities.TeamMember, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return append([]entities.TeamMember{}, r.db.members[teamID]...), nil
}

func (r *fakeTeamRepo) AddMember(ctx context.Context, teamID, userID string, role entities.MemberRole) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	user, ok := r.db.users[userID]
	if !ok {
		return apperrors.ErrUserNotFound.WithStatus(400)
	}
	for _, m := range r.db.members[teamID] {
		if m.UserID == userID {
			return apperrors.ErrAlreadyTeamMember
		}
	}
	r.db.members[teamID] = append(r.db.members[teamID], entities.TeamMember{
		TeamID: teamID, UserID: userID, FullName: user.FullName, Email: user.Email, Role: role, JoinedAt: testNow,
	})
	return nil
}

func (r *fakeTeamRepo) RemoveMember(ctx context.Context, teamID, userID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	members := r.db.members[teamID]
	for i, m := range members {
		if m.UserID == userID {
			r.db.members[teamID] = append(members[:i:i], members[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrTeamMemberNotFound
}

// --- users ---

type fakeUserRepo struct {
	db *fakeDB
}

func (r *fakeUserRepo) List(ctx context.Context, filter types.Filter) ([]entities.User, uint64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []entities.User{}
	for _, u := range r.db.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, uint64(len(out)), nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*entities.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entities.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.Email == user.Email {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	user.CreatedAt, user.UpdatedAt = testNow, testNow
	r.db.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entities.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.users[user.ID]; !ok {
		return apperrors.ErrUserNotFound
	}
	r.db.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.users[id]; !ok {
		return apperrors.ErrUserNotFound
	}
	delete(r.db.users, id)
	return nil
}

// --- cache ---

type fakeCache struct {
	mu     sync.Mutex
	values map[string]string
	gets   int
}

func newFakeCache() *fakeCache { return &fakeCache{values: map[string]string{}} }

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		c.values[key] = string(v)
	case string:
		c.values[key] = v
	}
	return nil
}

func (c *fakeCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	v, ok := c.values[key]
	if !ok {
		return "", repositories.ErrCacheMiss
	}
	return v, nil
}

func (c *fakeCache) Del(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.values, k)
	}
	return nil
}

func (c *fakeCache) DelByPrefix(ctx context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.values {
		if strings.HasPrefix(k, prefix) {
			delete(c.values, k)
		}
	}
	return nil
}

// --- events ---

type recordingPublisher struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event eventbus.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) requestEvents() []events.RequestEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.RequestEvent
	for _, e := range p.events {
		if re, ok := e.(events.RequestEvent); ok {
			out = append(out, re)
		}
	}
	return out
}

// testEnv собирает сервисы поверх одного fakeDB.
type testEnv struct {
	db         *fakeDB
	requests   *fakeRequestRepo
	equipment  *fakeEquipmentRepo
	teams      *fakeTeamRepo
	users      *fakeUserRepo
	tx         *fakeTxManager
	publisher  *recordingPublisher
	requestSvc *RequestService
}

func newTestEnv() *testEnv {
	db := newFakeDB()
	env := &testEnv{
		db:        db,
		requests:  &fakeRequestRepo{db: db, createErr: map[string]error{}},
		equipment: &fakeEquipmentRepo{db: db},
		teams:     &fakeTeamRepo{db: db},
		users:     &fakeUserRepo{db: db},
		tx:        &fakeTxManager{db: db},
		publisher: &recordingPublisher{},
	}
	env.requestSvc = NewRequestService(env.requests, env.equipment, env.users, env.tx, env.publisher, fixedClock, zap.NewNop())
	return env
}

func (env *testEnv) addTeam(id, name string) entities.MaintenanceTeam {
	t := entities.MaintenanceTeam{ID: id, Name: name, Color: defaultTeamColor, IsActive: true}
	env.db.teams[id] = t
	env.db.nextSeq(id)
	return t
}

func (env *testEnv) addUser(id, fullName string, role entities.UserRole) entities.User {
	u := entities.User{ID: id, Email: id + "@gearguard.local", FullName: fullName, Role: role, IsActive: true}
	env.db.users[id] = u
	return u
}

func (env *testEnv) addEquipment(id, name string, status entities.EquipmentStatus, teamID *string) entities.Equipment {
	e := entities.Equipment{
		ID: id, Name: name, SerialNumber: "SN-" + id, Category: "Machinery",
		Department: "Production", Location: "Цех 1", Status: status, MaintenanceTeamID: teamID,
	}
	env.db.equipment[id] = e
	env.db.nextSeq(id)
	return e
}

func (env *testEnv) addRequest(r entities.MaintenanceRequest) entities.MaintenanceRequest {
	if r.Priority == "" {
		r.Priority = entities.PriorityMedium
	}
	if r.Type == "" {
		r.Type = entities.RequestTypeCorrective
	}
	if r.Stage == "" {
		r.Stage = entities.StageNew
	}
	r.Version = 1
	env.db.requests[r.ID] = r
	env.db.nextSeq(r.ID)
	return r
}

func datePtr(s string) *time.Time {
	t, err := utils.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return &t
}
