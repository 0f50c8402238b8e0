// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"vitals/internal/domain"
)

// DB implements an in-memory database storage.
type DB struct {
	mu          sync.Mutex
	weights     map[int64][]domain.WeightEntry
	goals       map[int64]domain.Goal
	waterEvents []domain.WaterEvent
	users       []*domain.User
	sessions    map[string]domain.Session
	subscribers map[int64]map[*subscriber]struct{}

	weightIDCounter int64
	waterIDCounter  int64
	userIDCounter   int64

	now func() time.Time
}

type subscriber struct {
	ch chan []domain.WeightEntry
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		weights:     make(map[int64][]domain.WeightEntry),
		goals:       make(map[int64]domain.Goal),
		sessions:    make(map[string]domain.Session),
		subscribers: make(map[int64]map[*subscriber]struct{}),
		now:         time.Now,
	}
}

// Ensure interfaces are met.
var (
	_ domain.WeightRepository  = (*DB)(nil)
	_ domain.GoalRepository    = (*DB)(nil)
	_ domain.WaterRepository   = (*DB)(nil)
	_ domain.UserRepository    = (*DB)(nil)
	_ domain.SessionRepository = (*SessionRepo)(nil)
)

// --- WeightRepository ---

// UpsertWeight stores the weight for a day, replacing an existing entry.
func (db *DB) UpsertWeight(ctx context.Context, userID int64, day string, weightLb float64) (*domain.WeightEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	now := db.now().UTC()
	list := db.weights[userID]
	for i := range list {
		if list[i].Date == day {
			list[i].WeightLb = weightLb
			list[i].UpdatedAt = now
			e := list[i]
			db.notifyLocked(userID)
			return &e, nil
		}
	}

	db.weightIDCounter++
	e := domain.WeightEntry{
		ID:        db.weightIDCounter,
		UserID:    userID,
		Date:      day,
		WeightLb:  weightLb,
		CreatedAt: now,
		UpdatedAt: now,
	}
	db.weights[userID] = append(list, e)
	db.notifyLocked(userID)
	return &e, nil
}

// UpdateWeight edits an entry by id.
func (db *DB) UpdateWeight(ctx context.Context, userID, id int64, day string, weightLb float64) (*domain.WeightEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	list := db.weights[userID]
	idx := -1
	for i := range list {
		if list[i].ID == id {
			idx = i
		} else if list[i].Date == day {
			return nil, domain.ErrDuplicateDay
		}
	}
	if idx == -1 {
		return nil, domain.ErrNotFound
	}
	list[idx].Date = day
	list[idx].WeightLb = weightLb
	list[idx].UpdatedAt = db.now().UTC()
	e := list[idx]
	db.notifyLocked(userID)
	return &e, nil
}

// DeleteWeight removes an entry by id.
func (db *DB) DeleteWeight(ctx context.Context, userID, id int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	list := db.weights[userID]
	for i := range list {
		if list[i].ID == id {
			db.weights[userID] = append(list[:i], list[i+1:]...)
			db.notifyLocked(userID)
			return nil
		}
	}
	return domain.ErrNotFound
}

// ListWeights returns a copy of every entry of the user ordered by day.
func (db *DB) ListWeights(ctx context.Context, userID int64) ([]domain.WeightEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.snapshotLocked(userID), nil
}

// ImportLegacy loads a record stored the old way (value plus entry unit,
// loosely typed date) as a canonical entry.
func (db *DB) ImportLegacy(ctx context.Context, userID int64, date any, legacy domain.LegacyWeight) (*domain.WeightEntry, error) {
	day, err := domain.NormalizeDay(date, time.Local)
	if err != nil {
		return nil, err
	}
	lb, err := domain.NormalizeWeight(nil, &legacy)
	if err != nil {
		return nil, err
	}
	if err := domain.CheckWeight(lb, domain.UnitLb); err != nil {
		return nil, err
	}
	return db.UpsertWeight(ctx, userID, day, lb)
}

// SubscribeWeights sends the current snapshot and one after every change
// until ctx is done. A subscriber that is not keeping up only ever holds
// the newest snapshot.
func (db *DB) SubscribeWeights(ctx context.Context, userID int64) (<-chan []domain.WeightEntry, error) {
	sub := &subscriber{ch: make(chan []domain.WeightEntry, 1)}

	db.mu.Lock()
	if db.subscribers[userID] == nil {
		db.subscribers[userID] = make(map[*subscriber]struct{})
	}
	db.subscribers[userID][sub] = struct{}{}
	sub.ch <- db.snapshotLocked(userID)
	db.mu.Unlock()

	go func() {
		<-ctx.Done()
		db.mu.Lock()
		delete(db.subscribers[userID], sub)
		close(sub.ch)
		db.mu.Unlock()
	}()
	return sub.ch, nil
}

func (db *DB) snapshotLocked(userID int64) []domain.WeightEntry {
	out := make([]domain.WeightEntry, len(db.weights[userID]))
	copy(out, db.weights[userID])
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func (db *DB) notifyLocked(userID int64) {
	subs := db.subscribers[userID]
	if len(subs) == 0 {
		return
	}
	snap := db.snapshotLocked(userID)
	for sub := range subs {
		// Drop a stale undelivered snapshot so the send never blocks.
		select {
		case <-sub.ch:
		default:
		}
		sub.ch <- snap
	}
}

// --- GoalRepository ---

// GetGoal returns the user's goal or nil if none is set.
func (db *DB) GetGoal(ctx context.Context, userID int64) (*domain.Goal, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	g, ok := db.goals[userID]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

// SaveGoal replaces the user's goal.
func (db *DB) SaveGoal(ctx context.Context, g domain.Goal) (*domain.Goal, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	g.UpdatedAt = db.now().UTC()
	db.goals[g.UserID] = g
	// Goal changes alter the dashboard too.
	db.notifyLocked(g.UserID)
	return &g, nil
}

// --- WaterRepository ---

// AddWaterEvent adds a water event.
func (db *DB) AddWaterEvent(ctx context.Context, userID int64, deltaLiters float64, createdAt time.Time) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.waterIDCounter++
	db.waterEvents = append(db.waterEvents, domain.WaterEvent{
		ID:          db.waterIDCounter,
		UserID:      userID,
		DeltaLiters: deltaLiters,
		CreatedAt:   createdAt.UTC(),
	})
	return db.waterIDCounter, nil
}

// DeleteWaterEvent deletes a water event by ID.
func (db *DB) DeleteWaterEvent(ctx context.Context, userID, id int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i, w := range db.waterEvents {
		if w.ID == id && w.UserID == userID {
			db.waterEvents = append(db.waterEvents[:i], db.waterEvents[i+1:]...)
			return nil
		}
	}
	return nil
}

// ListRecentWaterEvents lists the most recent water events.
func (db *DB) ListRecentWaterEvents(ctx context.Context, userID int64, limit int) ([]domain.WaterEvent, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var result []domain.WaterEvent
	for _, w := range db.waterEvents {
		if w.UserID == userID {
			result = append(result, w)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// WaterTotalForLocalDay returns the total water intake for the given day.
func (db *DB) WaterTotalForLocalDay(ctx context.Context, userID int64, localDay string) (float64, error) {
	totals, err := db.WaterTotalsByLocalDay(ctx, userID, localDay, localDay)
	if err != nil {
		return 0, err
	}
	return totals[localDay], nil
}

// WaterTotalsByLocalDay sums water per local day between start and end.
func (db *DB) WaterTotalsByLocalDay(ctx context.Context, userID int64, start, end string) (map[string]float64, error) {
	if _, err := time.ParseInLocation(domain.DayLayout, start, time.Local); err != nil {
		return nil, err
	}
	if _, err := time.ParseInLocation(domain.DayLayout, end, time.Local); err != nil {
		return nil, err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	totals := make(map[string]float64)
	for _, w := range db.waterEvents {
		if w.UserID != userID {
			continue
		}
		day := w.CreatedAt.In(time.Local).Format(domain.DayLayout)
		if day >= start && day <= end {
			totals[day] += w.DeltaLiters
		}
	}
	return totals, nil
}

// --- UserRepository ---

// GetByUsername retrieves a user by username.
func (db *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

// GetByID retrieves a user by ID.
func (db *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Create creates a new user.
func (db *DB) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return nil, domain.ErrDuplicateUser
		}
	}

	db.userIDCounter++
	u := &domain.User{
		ID:           db.userIDCounter,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    db.now().UTC(),
	}
	db.users = append(db.users, u)
	return u, nil
}

// Count returns the total number of users.
func (db *DB) Count(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.users), nil
}

// --- SessionRepository ---

// SessionRepo implements session persistence.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new session repository.
func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

// Create stores a session.
func (r *SessionRepo) Create(ctx context.Context, s domain.Session) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.sessions[s.Token] = s
	return nil
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	s, ok := r.db.sessions[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

// Delete deletes a session.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, token)
	return nil
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := r.db.now()
	for k, v := range r.db.sessions {
		if now.After(v.ExpiresAt) {
			delete(r.db.sessions, k)
		}
	}
	return nil
}
