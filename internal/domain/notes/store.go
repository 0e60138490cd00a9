package notes

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"aquadash/internal/kv"
)

type Options struct {
	KV    kv.Store
	Clock func() time.Time
	// Seed drives the demo corpus written when nothing is persisted yet.
	Seed uint64
	// NoSeed starts with an empty list instead of the demo corpus.
	NoSeed bool
	IDSalt string
}

// Store owns the service notes (newest first) and the current view selection.
// Every mutation writes the slice to kv.KeyNotes once and takes effect only after the write.
type Store struct {
	mu    sync.RWMutex
	notes []Note
	view  View
	kv    kv.Store
	clock func() time.Time
	ids   *idGenerator
}

func NewStore(ctx context.Context, opts Options) (*Store, error) {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	ids, err := newIDGenerator(opts.IDSalt)
	if err != nil {
		return nil, err
	}
	s := &Store{
		kv:    opts.KV,
		clock: clock,
		ids:   ids,
		view:  View{Period: PeriodDay, FilterStatus: FilterAll},
	}

	var p persisted
	err = kv.GetJSON(ctx, s.kv, kv.KeyNotes, &p)
	switch {
	case err == nil:
		s.notes = p.State.Notes
		if p.State.SelectedPeriod != "" {
			s.view.Period = p.State.SelectedPeriod
		}
		if p.State.FilterStatus != "" {
			s.view.FilterStatus = p.State.FilterStatus
		}
		return s, nil
	case errors.Is(err, kv.ErrNotFound):
	default:
		return nil, fmt.Errorf("load notes state: %w", err)
	}

	if !opts.NoSeed {
		s.notes = seedNotes(clock(), opts.Seed)
		for i := len(s.notes) - 1; i >= 0; i-- {
			id, err := s.ids.next(s.notes[i].Timestamp)
			if err != nil {
				return nil, err
			}
			s.notes[i].ID = id
		}
	}
	if err := s.persist(ctx, s.notes, s.view); err != nil {
		return nil, err
	}
	return s, nil
}

// AddNote stamps a fresh id and the current time and prepends the note.
func (s *Store) AddNote(ctx context.Context, in NewNote) (Note, error) {
	if err := validate(in); err != nil {
		return Note{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	id, err := s.nextID(now)
	if err != nil {
		return Note{}, err
	}
	n := Note{
		ID:            id,
		Content:       strings.TrimSpace(in.Content),
		Timestamp:     now,
		TableNumber:   in.TableNumber,
		CustomerCount: in.CustomerCount,
		Status:        in.Status,
		Priority:      in.Priority,
		AssignedTo:    cloneString(in.AssignedTo),
	}
	if n.Status == "" {
		n.Status = StatusPending
	}
	if n.Priority == "" {
		n.Priority = PriorityMedium
	}

	next := append([]Note{n}, s.notes...)
	if err := s.persist(ctx, next, s.view); err != nil {
		return Note{}, err
	}
	s.notes = next
	return cloneNote(n), nil
}

// UpdateNote merges patch into the note with id. It reports false, and writes nothing,
// when no such note exists.
func (s *Store) UpdateNote(ctx context.Context, id string, patch Patch) (Note, bool, error) {
	if err := validatePatch(patch); err != nil {
		return Note{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Note{}, false, nil
	}

	n := s.notes[i]
	if patch.Content != nil {
		n.Content = strings.TrimSpace(*patch.Content)
	}
	if patch.TableNumber != nil {
		n.TableNumber = *patch.TableNumber
	}
	if patch.CustomerCount != nil {
		n.CustomerCount = *patch.CustomerCount
	}
	if patch.Status != nil {
		n.Status = *patch.Status
	}
	if patch.Priority != nil {
		n.Priority = *patch.Priority
	}
	if patch.AssignedTo != nil {
		if *patch.AssignedTo == "" {
			n.AssignedTo = nil
		} else {
			n.AssignedTo = cloneString(patch.AssignedTo)
		}
	}
	next := slices.Clone(s.notes)
	next[i] = n
	if err := s.persist(ctx, next, s.view); err != nil {
		return Note{}, false, err
	}
	s.notes = next
	return cloneNote(n), true, nil
}

// DeleteNote removes the note with id, reporting whether it existed.
func (s *Store) DeleteNote(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}
	next := slices.Delete(slices.Clone(s.notes), i, i+1)
	if err := s.persist(ctx, next, s.view); err != nil {
		return false, err
	}
	s.notes = next
	return true, nil
}

func (s *Store) SetPeriod(ctx context.Context, p Period) error {
	if p != PeriodDay && p != PeriodWeek {
		return fmt.Errorf("%w: %q", ErrInvalidPeriod, p)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.view
	v.Period = p
	if err := s.persist(ctx, s.notes, v); err != nil {
		return err
	}
	s.view = v
	return nil
}

// SetFilterStatus accepts a note status or FilterAll.
func (s *Store) SetFilterStatus(ctx context.Context, status string) error {
	if status != FilterAll && !Status(status).Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidFilter, status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.view
	v.FilterStatus = status
	if err := s.persist(ctx, s.notes, v); err != nil {
		return err
	}
	s.view = v
	return nil
}

func (s *Store) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// Notes returns every note, newest first.
func (s *Store) Notes() []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Note, len(s.notes))
	for i, n := range s.notes {
		out[i] = cloneNote(n)
	}
	return out
}

// Note returns the note with id.
func (s *Store) Note(id string) (Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return Note{}, false
	}
	return cloneNote(s.notes[i]), true
}

// FilteredNotes applies the selected period and status filter, keeping list order.
func (s *Store) FilteredNotes() []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w := newWindow(s.clock())
	out := make([]Note, 0, len(s.notes))
	for _, n := range s.notes {
		if !w.inPeriod(s.view.Period, n.Timestamp) {
			continue
		}
		if s.view.FilterStatus != FilterAll && string(n.Status) != s.view.FilterStatus {
			continue
		}
		out = append(out, cloneNote(n))
	}
	return out
}

// Stats recomputes the counters from the note list. Status and served counts cover the
// selected period.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w := newWindow(s.clock())
	var st Stats
	tables := make(map[int]struct{})
	for _, n := range s.notes {
		if w.today(n.Timestamp) {
			st.DailyNotes++
		}
		if w.week(n.Timestamp) {
			st.WeeklyNotes++
		}
		if !w.inPeriod(s.view.Period, n.Timestamp) {
			continue
		}
		switch n.Status {
		case StatusCompleted:
			st.CompletedNotes++
			st.PeopleServed += n.CustomerCount
			tables[n.TableNumber] = struct{}{}
		case StatusPending:
			st.PendingNotes++
		case StatusCancelled:
			st.CancelledNotes++
		}
	}
	st.TablesServed = len(tables)
	return st
}

// WeeklyRollup returns one entry per day of the trailing week, oldest first.
func (s *Store) WeeklyRollup() []DayRollup {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w := newWindow(s.clock())
	out := make([]DayRollup, 7)
	for i := range out {
		out[i].Date = w.weekStart.AddDate(0, 0, i).Format(time.DateOnly)
	}
	for _, n := range s.notes {
		if !w.week(n.Timestamp) {
			continue
		}
		idx := w.dayIndex(n.Timestamp)
		d := &out[idx]
		d.Total++
		switch n.Status {
		case StatusCompleted:
			d.Completed++
			d.People += n.CustomerCount
		case StatusPending:
			d.Pending++
		case StatusCancelled:
			d.Cancelled++
		}
	}
	return out
}

// nextID skips ids already present, which can happen after a reload under a frozen clock.
func (s *Store) nextID(t time.Time) (string, error) {
	for {
		id, err := s.ids.next(t)
		if err != nil || s.indexOf(id) < 0 {
			return id, err
		}
	}
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.notes, func(n Note) bool { return n.ID == id })
}

func (s *Store) persist(ctx context.Context, notes []Note, view View) error {
	p := persisted{State: persistedState{
		Notes:          notes,
		SelectedPeriod: view.Period,
		FilterStatus:   view.FilterStatus,
	}}
	if err := kv.SetJSON(ctx, s.kv, kv.KeyNotes, p); err != nil {
		return fmt.Errorf("persist notes state: %w", err)
	}
	return nil
}

func validate(in NewNote) error {
	if strings.TrimSpace(in.Content) == "" {
		return fmt.Errorf("%w: content is required", ErrInvalidNote)
	}
	if in.TableNumber < 1 {
		return fmt.Errorf("%w: table number must be positive", ErrInvalidNote)
	}
	if in.CustomerCount < 0 {
		return fmt.Errorf("%w: customer count must not be negative", ErrInvalidNote)
	}
	if in.Status != "" && !in.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidNote, in.Status)
	}
	if in.Priority != "" && !in.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidNote, in.Priority)
	}
	return nil
}

func validatePatch(p Patch) error {
	switch {
	case p.Content != nil && strings.TrimSpace(*p.Content) == "":
		return fmt.Errorf("%w: content is required", ErrInvalidNote)
	case p.TableNumber != nil && *p.TableNumber < 1:
		return fmt.Errorf("%w: table number must be positive", ErrInvalidNote)
	case p.CustomerCount != nil && *p.CustomerCount < 0:
		return fmt.Errorf("%w: customer count must not be negative", ErrInvalidNote)
	case p.Status != nil && !p.Status.Valid():
		return fmt.Errorf("%w: unknown status %q", ErrInvalidNote, *p.Status)
	case p.Priority != nil && !p.Priority.Valid():
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidNote, *p.Priority)
	}
	return nil
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneNote(n Note) Note {
	n.AssignedTo = cloneString(n.AssignedTo)
	return n
}
