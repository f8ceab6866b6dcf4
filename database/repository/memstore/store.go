// Package memstore keeps every repository in process memory for service and handler tests.
// A failed transaction restores a snapshot of the whole store, which would also discard
// concurrent writes made outside it, so it is not a runtime store.
package memstore

import (
	"context"
	"strings"
	"sync"

	"cropconnect/models"
)

// Store holds all collections. Records are kept in insertion order; listings return newest first.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex

	users         []models.User
	requirements  []models.Requirement
	bids          []models.Bid
	bookings      []models.Booking
	transactions  []models.Transaction
	notifications []models.Notification
	tractors      []models.TractorService
	workers       []models.WorkerService
	reviews       []models.Review
}

func New() *Store {
	return &Store{}
}

type snapshot struct {
	users         []models.User
	requirements  []models.Requirement
	bids          []models.Bid
	bookings      []models.Booking
	transactions  []models.Transaction
	notifications []models.Notification
	tractors      []models.TractorService
	workers       []models.WorkerService
	reviews       []models.Review
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	reqs := make([]models.Requirement, len(s.requirements))
	for i, r := range s.requirements {
		reqs[i] = copyRequirement(r)
	}
	return snapshot{
		users:         append([]models.User(nil), s.users...),
		requirements:  reqs,
		bids:          append([]models.Bid(nil), s.bids...),
		bookings:      append([]models.Booking(nil), s.bookings...),
		transactions:  append([]models.Transaction(nil), s.transactions...),
		notifications: append([]models.Notification(nil), s.notifications...),
		tractors:      append([]models.TractorService(nil), s.tractors...),
		workers:       append([]models.WorkerService(nil), s.workers...),
		reviews:       append([]models.Review(nil), s.reviews...),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = snap.users
	s.requirements = snap.requirements
	s.bids = snap.bids
	s.bookings = snap.bookings
	s.transactions = snap.transactions
	s.notifications = snap.notifications
	s.tractors = snap.tractors
	s.workers = snap.workers
	s.reviews = snap.reviews
}

// WithTransaction runs fn with every other transaction excluded and rolls the whole store back
// when fn fails.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(ctx); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func containsFold(value, sub string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(sub))
}

func anyContainsFold(values []string, sub string) bool {
	for _, v := range values {
		if containsFold(v, sub) {
			return true
		}
	}
	return false
}

func copyRequirement(r models.Requirement) models.Requirement {
	r.Applicants = append([]models.Applicant(nil), r.Applicants...)
	return r
}
