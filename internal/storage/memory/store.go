// Package memory provides an in-process Store for local development and
// tests. All records are held in maps behind a single RWMutex; Atomic
// serializes register/unregister work per event with a lock table.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/guestlist/server/internal/domain/registration"
)

type pairKey struct {
	userID  string
	eventID string
}

// Store implements registration.Store entirely in memory. Safe for
// concurrent use. Records are stored and returned by value, so callers
// never share memory with the store.
type Store struct {
	mu            sync.RWMutex
	users         map[string]registration.User
	events        map[string]registration.Event
	registrations map[pairKey]registration.Registration
	waitlist      map[pairKey]registration.WaitlistEntry

	lockMu     sync.Mutex
	eventLocks map[string]*sync.Mutex
}

var _ registration.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		users:         make(map[string]registration.User),
		events:        make(map[string]registration.Event),
		registrations: make(map[pairKey]registration.Registration),
		waitlist:      make(map[pairKey]registration.WaitlistEntry),
		eventLocks:    make(map[string]*sync.Mutex),
	}
}

func (s *Store) Users() registration.UserRepository                 { return userStore{s} }
func (s *Store) Events() registration.EventRepository               { return eventStore{s} }
func (s *Store) Registrations() registration.RegistrationRepository { return registrationStore{s} }
func (s *Store) Waitlist() registration.WaitlistRepository          { return waitlistStore{s} }

// Atomic holds the event's lock for the duration of fn. In-memory
// writes are applied immediately and individually cannot fail after
// their checks pass, so there is nothing to roll back; serialization
// alone closes the last-slot race.
func (s *Store) Atomic(ctx context.Context, eventID string, fn func(context.Context, registration.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	lock := s.eventLock(eventID)
	lock.Lock()
	defer lock.Unlock()
	return fn(ctx, s)
}

func (s *Store) eventLock(eventID string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	lock, ok := s.eventLocks[eventID]
	if !ok {
		lock = &sync.Mutex{}
		s.eventLocks[eventID] = lock
	}
	return lock
}

// Ping reports whether the store is usable. An in-memory store always
// is, so only context cancellation can fail it.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

type userStore struct{ s *Store }

var _ registration.UserRepository = userStore{}

func (r userStore) Save(ctx context.Context, user *registration.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; ok {
		return registration.ErrDuplicate
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r userStore) FindByID(ctx context.Context, id string) (*registration.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (r userStore) Exists(ctx context.Context, id string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.users[id]
	return ok, nil
}

type eventStore struct{ s *Store }

var _ registration.EventRepository = eventStore{}

func (r eventStore) Save(ctx context.Context, event *registration.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[event.ID]; ok {
		return registration.ErrDuplicate
	}
	r.s.events[event.ID] = *event
	return nil
}

func (r eventStore) FindByID(ctx context.Context, id string) (*registration.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	event, ok := r.s.events[id]
	if !ok {
		return nil, nil
	}
	return &event, nil
}

func (r eventStore) Exists(ctx context.Context, id string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.events[id]
	return ok, nil
}

type registrationStore struct{ s *Store }

var _ registration.RegistrationRepository = registrationStore{}

func (r registrationStore) Save(ctx context.Context, reg *registration.Registration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := pairKey{reg.UserID, reg.EventID}
	if _, ok := r.s.registrations[key]; ok {
		return registration.ErrDuplicate
	}
	r.s.registrations[key] = *reg
	return nil
}

func (r registrationStore) Delete(ctx context.Context, userID, eventID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.registrations, pairKey{userID, eventID})
	return nil
}

func (r registrationStore) FindByUserAndEvent(ctx context.Context, userID, eventID string) (*registration.Registration, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	reg, ok := r.s.registrations[pairKey{userID, eventID}]
	if !ok {
		return nil, nil
	}
	return &reg, nil
}

func (r registrationStore) FindActiveByUser(ctx context.Context, userID string) ([]*registration.Registration, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var regs []*registration.Registration
	for _, reg := range r.s.registrations {
		if reg.UserID == userID && reg.Status == registration.StatusActive {
			reg := reg
			regs = append(regs, &reg)
		}
	}
	sortRegistrations(regs)
	return regs, nil
}

func (r registrationStore) CountActiveByEvent(ctx context.Context, eventID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	count := 0
	for _, reg := range r.s.registrations {
		if reg.EventID == eventID && reg.Status == registration.StatusActive {
			count++
		}
	}
	return count, nil
}

func (r registrationStore) FindByEvent(ctx context.Context, eventID string) ([]*registration.Registration, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var regs []*registration.Registration
	for _, reg := range r.s.registrations {
		if reg.EventID == eventID {
			reg := reg
			regs = append(regs, &reg)
		}
	}
	sortRegistrations(regs)
	return regs, nil
}

type waitlistStore struct{ s *Store }

var _ registration.WaitlistRepository = waitlistStore{}

func (r waitlistStore) Add(ctx context.Context, entry *registration.WaitlistEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := pairKey{entry.UserID, entry.EventID}
	if _, ok := r.s.waitlist[key]; ok {
		return registration.ErrDuplicate
	}
	for _, existing := range r.s.waitlist {
		if existing.EventID == entry.EventID && existing.Position == entry.Position {
			return registration.ErrDuplicate
		}
	}
	r.s.waitlist[key] = *entry
	return nil
}

func (r waitlistStore) Remove(ctx context.Context, userID, eventID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.waitlist, pairKey{userID, eventID})
	return nil
}

func (r waitlistStore) FindByUserAndEvent(ctx context.Context, userID, eventID string) (*registration.WaitlistEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	entry, ok := r.s.waitlist[pairKey{userID, eventID}]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

func (r waitlistStore) FindFirstByEvent(ctx context.Context, eventID string) (*registration.WaitlistEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var first *registration.WaitlistEntry
	for _, entry := range r.s.waitlist {
		if entry.EventID != eventID {
			continue
		}
		if first == nil || entry.Position < first.Position {
			entry := entry
			first = &entry
		}
	}
	return first, nil
}

func (r waitlistStore) NextPosition(ctx context.Context, eventID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	max := 0
	for _, entry := range r.s.waitlist {
		if entry.EventID == eventID && entry.Position > max {
			max = entry.Position
		}
	}
	return max + 1, nil
}

func (r waitlistStore) FindByEvent(ctx context.Context, eventID string) ([]*registration.WaitlistEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var entries []*registration.WaitlistEntry
	for _, entry := range r.s.waitlist {
		if entry.EventID == eventID {
			entry := entry
			entries = append(entries, &entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Position < entries[j].Position })
	return entries, nil
}

func sortRegistrations(regs []*registration.Registration) {
	sort.Slice(regs, func(i, j int) bool {
		if !regs[i].CreatedAt.Equal(regs[j].CreatedAt) {
			return regs[i].CreatedAt.Before(regs[j].CreatedAt)
		}
		return regs[i].ID < regs[j].ID
	})
}
