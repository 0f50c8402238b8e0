package app_test

import (
	"context"
	"time"

	"vitals/internal/domain"
)

type mockWeightRepo struct {
	upsertFn    func(ctx context.Context, userID int64, day string, lb float64) (*domain.WeightEntry, error)
	updateFn    func(ctx context.Context, userID, id int64, day string, lb float64) (*domain.WeightEntry, error)
	deleteFn    func(ctx context.Context, userID, id int64) error
	listFn      func(ctx context.Context, userID int64) ([]domain.WeightEntry, error)
	subscribeFn func(ctx context.Context, userID int64) (<-chan []domain.WeightEntry, error)
}

func (m *mockWeightRepo) UpsertWeight(ctx context.Context, userID int64, day string, lb float64) (*domain.WeightEntry, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, userID, day, lb)
	}
	return &domain.WeightEntry{ID: 1, UserID: userID, Date: day, WeightLb: lb}, nil
}

func (m *mockWeightRepo) UpdateWeight(ctx context.Context, userID, id int64, day string, lb float64) (*domain.WeightEntry, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, userID, id, day, lb)
	}
	return &domain.WeightEntry{ID: id, UserID: userID, Date: day, WeightLb: lb}, nil
}

func (m *mockWeightRepo) DeleteWeight(ctx context.Context, userID, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, id)
	}
	return nil
}

func (m *mockWeightRepo) ListWeights(ctx context.Context, userID int64) ([]domain.WeightEntry, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockWeightRepo) SubscribeWeights(ctx context.Context, userID int64) (<-chan []domain.WeightEntry, error) {
	if m.subscribeFn != nil {
		return m.subscribeFn(ctx, userID)
	}
	ch := make(chan []domain.WeightEntry)
	close(ch)
	return ch, nil
}

type mockGoalRepo struct {
	getFn  func(ctx context.Context, userID int64) (*domain.Goal, error)
	saveFn func(ctx context.Context, g domain.Goal) (*domain.Goal, error)
}

func (m *mockGoalRepo) GetGoal(ctx context.Context, userID int64) (*domain.Goal, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockGoalRepo) SaveGoal(ctx context.Context, g domain.Goal) (*domain.Goal, error) {
	if m.saveFn != nil {
		return m.saveFn(ctx, g)
	}
	return &g, nil
}

type mockWaterRepo struct {
	addFn    func(ctx context.Context, userID int64, d float64, t time.Time) (int64, error)
	delFn    func(ctx context.Context, userID, id int64) error
	listFn   func(ctx context.Context, userID int64, limit int) ([]domain.WaterEvent, error)
	totalFn  func(ctx context.Context, userID int64, day string) (float64, error)
	totalsFn func(ctx context.Context, userID int64, start, end string) (map[string]float64, error)
}

func (m *mockWaterRepo) AddWaterEvent(ctx context.Context, userID int64, d float64, t time.Time) (int64, error) {
	if m.addFn != nil {
		return m.addFn(ctx, userID, d, t)
	}
	return 0, nil
}

func (m *mockWaterRepo) DeleteWaterEvent(ctx context.Context, userID, id int64) error {
	if m.delFn != nil {
		return m.delFn(ctx, userID, id)
	}
	return nil
}

func (m *mockWaterRepo) ListRecentWaterEvents(ctx context.Context, userID int64, limit int) ([]domain.WaterEvent, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, limit)
	}
	return nil, nil
}

func (m *mockWaterRepo) WaterTotalForLocalDay(ctx context.Context, userID int64, day string) (float64, error) {
	if m.totalFn != nil {
		return m.totalFn(ctx, userID, day)
	}
	return 0, nil
}

func (m *mockWaterRepo) WaterTotalsByLocalDay(ctx context.Context, userID int64, start, end string) (map[string]float64, error) {
	if m.totalsFn != nil {
		return m.totalsFn(ctx, userID, start, end)
	}
	return map[string]float64{}, nil
}

type mockUserRepo struct {
	getByUsernameFn func(ctx context.Context, username string) (*domain.User, error)
	getByIDFn       func(ctx context.Context, id int64) (*domain.User, error)
	createFn        func(ctx context.Context, username, passwordHash string) (*domain.User, error)
	countFn         func(ctx context.Context) (int, error)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, domain.ErrNotFound
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockUserRepo) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, username, passwordHash)
	}
	return &domain.User{ID: 1, Username: username, PasswordHash: passwordHash}, nil
}

func (m *mockUserRepo) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

type mockSessionRepo struct {
	createFn        func(ctx context.Context, s domain.Session) error
	getByTokenFn    func(ctx context.Context, token string) (*domain.Session, error)
	deleteFn        func(ctx context.Context, token string) error
	deleteExpiredFn func(ctx context.Context) error
}

func (m *mockSessionRepo) Create(ctx context.Context, s domain.Session) error {
	if m.createFn != nil {
		return m.createFn(ctx, s)
	}
	return nil
}

func (m *mockSessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	if m.getByTokenFn != nil {
		return m.getByTokenFn(ctx, token)
	}
	return nil, domain.ErrNotFound
}

func (m *mockSessionRepo) Delete(ctx context.Context, token string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, token)
	}
	return nil
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context) error {
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx)
	}
	return nil
}
