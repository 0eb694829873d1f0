package tests

import (
	"context"
	"sync"
	"sync/atomic"

	"ridepool/internal/domain"
	"ridepool/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK RIDE REPOSITORY
// ──────────────────────────────────────────────

// MockRideRepository is an in-memory implementation of RideRepository that
// enforces the same version-check semantics as the real store: Save succeeds
// only when the caller's version matches the stored one, and advances the
// version on success.
type MockRideRepository struct {
	mu    sync.RWMutex
	rides map[string]*domain.Ride
	order []string // creation order, keeps FindPoolable stable

	// Optional link: when set, Create/Save keep passenger back-references
	// in sync the way the real store's membership rows do.
	Passengers *MockPassengerRepository

	// Counters for verification
	CreateCallCount int32
	SaveCallCount   int32

	// Error injection
	CreateError error
	SaveError   error

	// ConflictNextSaves forces the next N saves to fail with a version
	// conflict regardless of the actual version.
	ConflictNextSaves int32

	// OnFindPoolable is called after each pool read. Tests use it as a
	// barrier to line up racing bookings.
	OnFindPoolable func()
}

// NewMockRideRepository creates a new mock ride repository.
func NewMockRideRepository() *MockRideRepository {
	return &MockRideRepository{
		rides: make(map[string]*domain.Ride),
	}
}

// AddRide seeds a ride without going through Create.
func (m *MockRideRepository) AddRide(ride *domain.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = cloneRide(ride)
	m.order = append(m.order, ride.ID)
	m.syncMembersLocked(nil, ride)
}

func (m *MockRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = cloneRide(ride)
	m.order = append(m.order, ride.ID)
	m.syncMembersLocked(nil, ride)
	return nil
}

func (m *MockRideRepository) Save(ctx context.Context, ride *domain.Ride) error {
	atomic.AddInt32(&m.SaveCallCount, 1)
	if m.SaveError != nil {
		return m.SaveError
	}
	if atomic.AddInt32(&m.ConflictNextSaves, -1) >= 0 {
		return repository.ErrVersionConflict
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.rides[ride.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Version != ride.Version {
		return repository.ErrVersionConflict
	}

	updated := cloneRide(ride)
	updated.Version++
	m.rides[ride.ID] = updated
	m.syncMembersLocked(stored, ride)

	ride.Version = updated.Version
	return nil
}

func (m *MockRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneRide(ride), nil
}

func (m *MockRideRepository) FindPoolable(ctx context.Context, status domain.RideStatus) ([]*domain.Ride, error) {
	m.mu.RLock()
	var pool []*domain.Ride
	for _, id := range m.order {
		ride := m.rides[id]
		if ride.Status == status && ride.AvailableSeats > 0 {
			pool = append(pool, cloneRide(ride))
		}
	}
	m.mu.RUnlock()

	if m.OnFindPoolable != nil {
		m.OnFindPoolable()
	}
	return pool, nil
}

func (m *MockRideRepository) CountByStatus(ctx context.Context, status domain.RideStatus) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, ride := range m.rides {
		if ride.Status == status {
			count++
		}
	}
	return count, nil
}

func (m *MockRideRepository) FindRecent(ctx context.Context, status domain.RideStatus, limit int) ([]*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Ride
	for i := len(m.order) - 1; i >= 0 && len(result) < limit; i-- {
		ride := m.rides[m.order[i]]
		if ride.Status == status {
			result = append(result, cloneRide(ride))
		}
	}
	return result, nil
}

// GetRide returns the stored ride for test assertions.
func (m *MockRideRepository) GetRide(id string) *domain.Ride {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil
	}
	return cloneRide(ride)
}

// syncMembersLocked mirrors the real store's membership sync: passengers on
// the new member list are attached, passengers only on the old list are
// detached.
func (m *MockRideRepository) syncMembersLocked(old, updated *domain.Ride) {
	if m.Passengers == nil {
		return
	}

	current := make(map[string]bool, len(updated.Passengers))
	for _, p := range updated.Passengers {
		current[p.ID] = true
		member := p
		member.RideID = updated.ID
		m.Passengers.put(&member)
	}

	if old == nil {
		return
	}
	for _, p := range old.Passengers {
		if !current[p.ID] {
			m.Passengers.detach(p.ID)
		}
	}
}

func cloneRide(ride *domain.Ride) *domain.Ride {
	copied := *ride
	copied.Passengers = make([]domain.Passenger, len(ride.Passengers))
	copy(copied.Passengers, ride.Passengers)
	return &copied
}

// ──────────────────────────────────────────────
// MOCK PASSENGER REPOSITORY
// ──────────────────────────────────────────────

// MockPassengerRepository is an in-memory implementation of
// PassengerRepository.
type MockPassengerRepository struct {
	mu         sync.RWMutex
	passengers map[string]*domain.Passenger
}

// NewMockPassengerRepository creates a new mock passenger repository.
func NewMockPassengerRepository() *MockPassengerRepository {
	return &MockPassengerRepository{
		passengers: make(map[string]*domain.Passenger),
	}
}

// AddPassenger seeds a passenger.
func (m *MockPassengerRepository) AddPassenger(p *domain.Passenger) {
	m.put(p)
}

func (m *MockPassengerRepository) put(p *domain.Passenger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *p
	m.passengers[p.ID] = &copied
}

func (m *MockPassengerRepository) detach(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.passengers[id]; ok {
		p.RideID = ""
	}
}

func (m *MockPassengerRepository) GetByID(ctx context.Context, id string) (*domain.Passenger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.passengers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *MockPassengerRepository) FindByPhone(ctx context.Context, phone string) ([]*domain.Passenger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Passenger
	for _, p := range m.passengers {
		if p.Phone == phone {
			copied := *p
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *MockPassengerRepository) FindByRideID(ctx context.Context, rideID string) ([]*domain.Passenger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Passenger
	for _, p := range m.passengers {
		if p.RideID == rideID {
			copied := *p
			result = append(result, &copied)
		}
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK DEMAND STORE
// ──────────────────────────────────────────────

// MockDemandStore is an in-memory demand snapshot cache.
type MockDemandStore struct {
	mu     sync.Mutex
	count  int
	cached bool

	GetError error
	SetError error
}

// NewMockDemandStore creates a new mock demand store.
func NewMockDemandStore() *MockDemandStore {
	return &MockDemandStore{}
}

// Prime seeds the cached count.
func (m *MockDemandStore) Prime(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count = count
	m.cached = true
}

func (m *MockDemandStore) GetPendingCount(ctx context.Context) (int, bool, error) {
	if m.GetError != nil {
		return 0, false, m.GetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count, m.cached, nil
}

func (m *MockDemandStore) SetPendingCount(ctx context.Context, count int) error {
	if m.SetError != nil {
		return m.SetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count = count
	m.cached = true
	return nil
}

// ──────────────────────────────────────────────
// MOCK PICKUP INDEX
// ──────────────────────────────────────────────

// MockPickupIndex is an in-memory pickup geo index using haversine distance.
type MockPickupIndex struct {
	mu      sync.RWMutex
	pickups map[string]domain.Location
}

// NewMockPickupIndex creates a new mock pickup index.
func NewMockPickupIndex() *MockPickupIndex {
	return &MockPickupIndex{
		pickups: make(map[string]domain.Location),
	}
}

func (m *MockPickupIndex) Add(ctx context.Context, rideID string, lat, lng float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pickups[rideID] = domain.Location{Latitude: lat, Longitude: lng}
	return nil
}

func (m *MockPickupIndex) FindNearby(ctx context.Context, lat, lng, radiusKm float64) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	origin := domain.Location{Latitude: lat, Longitude: lng}
	var ids []string
	for id, pickup := range m.pickups {
		if origin.DistanceTo(pickup) <= radiusKm {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *MockPickupIndex) Remove(ctx context.Context, rideID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pickups, rideID)
	return nil
}

// Contains reports whether a ride is indexed, for test assertions.
func (m *MockPickupIndex) Contains(rideID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.pickups[rideID]
	return ok
}
