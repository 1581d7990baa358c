// Package ledger computes worked hours and ISO-week views over one user's
// time log entries, and applies edits and deletes through a Store.
package ledger

import (
	"context"
	"strings"
	"sync"
	"time"

	"timesheet/backend/internal/model"
)

// Store persists log entries. List order is not significant.
type Store interface {
	List(ctx context.Context, ownerID string) ([]model.LogEntry, error)
	GetByID(ctx context.Context, entryID string) (*model.LogEntry, error)
	Create(ctx context.Context, entry model.NewLogEntry) (*model.LogEntry, error)
	Update(ctx context.Context, entryID string, patch model.LogPatch) (*model.LogEntry, error)
	Delete(ctx context.Context, entryID string) error
}

// Owner is the identity whose entries a Ledger holds.
type Owner struct {
	ID   string
	Name string
}

// Guard tracks entries with a mutation in flight. One Guard may be shared
// by many ledgers so that concurrent requests on one entry cannot overlap.
type Guard struct {
	mu   sync.Mutex
	busy map[string]struct{}
}

// NewGuard returns an empty Guard.
func NewGuard() *Guard {
	return &Guard{busy: make(map[string]struct{})}
}

// Acquire marks entryID busy. It fails fast with ErrEntryBusy rather than
// waiting.
func (g *Guard) Acquire(entryID string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.busy[entryID]; ok {
		return nil, ErrEntryBusy
	}
	g.busy[entryID] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.busy, entryID)
			g.mu.Unlock()
		})
	}, nil
}

// Busy reports whether entryID has a mutation in flight.
func (g *Guard) Busy(entryID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.busy[entryID]
	return ok
}

// Option configures a Ledger.
type Option func(*Ledger)

func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

func WithGuard(guard *Guard) Option {
	return func(l *Ledger) {
		l.guard = guard
	}
}

// Ledger is the working set of one owner's entries.
type Ledger struct {
	store Store
	owner Owner
	now   func() time.Time
	guard *Guard

	mu      sync.RWMutex
	entries []model.LogEntry
}

// New returns an empty Ledger for owner. Call Load to fill it.
func New(store Store, owner Owner, opts ...Option) *Ledger {
	l := &Ledger{
		store: store,
		owner: owner,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.guard == nil {
		l.guard = NewGuard()
	}
	return l
}

// Load replaces the working set with the owner's entries from the store.
func (l *Ledger) Load(ctx context.Context) error {
	entries, err := l.store.List(ctx, l.owner.ID)
	if err != nil {
		return &RemoteError{Op: "list", Err: err}
	}

	owned := make([]model.LogEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.UserID != l.owner.ID {
			continue
		}
		entry.Date = NormalizeDate(entry.Date)
		owned = append(owned, entry)
	}

	l.mu.Lock()
	l.entries = owned
	l.mu.Unlock()
	return nil
}

// Entries returns a copy of the working set.
func (l *Ledger) Entries() []model.LogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]model.LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Ledger) Entry(entryID string) (model.LogEntry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, entry := range l.entries {
		if entry.ID == entryID {
			return entry, true
		}
	}
	return model.LogEntry{}, false
}

// Week returns the view of the week weekOffset weeks from the current one.
func (l *Ledger) Week(weekOffset int) WeekView {
	return SelectWeek(l.Entries(), weekOffset, l.now())
}

// Draft is a workday about to be submitted.
type Draft struct {
	ProjectID    string
	Date         time.Time
	StartTime    string
	EndTime      string
	BreakMinutes int
	Note         string
}

func (d Draft) session() Session {
	return Session{
		Date:         d.Date,
		StartTime:    d.StartTime,
		EndTime:      d.EndTime,
		BreakMinutes: d.BreakMinutes,
	}
}

// Validate checks required fields and the duration. It makes no store call.
func (d Draft) Validate() (float64, error) {
	switch {
	case strings.TrimSpace(d.ProjectID) == "":
		return 0, newValidationError("projectId", "is required")
	case d.Date.IsZero():
		return 0, newValidationError("date", "is required")
	case strings.TrimSpace(d.StartTime) == "":
		return 0, newValidationError("startTime", "is required")
	case strings.TrimSpace(d.EndTime) == "":
		return 0, newValidationError("endTime", "is required")
	}
	return d.session().WorkedHours()
}

// Submit validates the draft and creates the entry in the store.
func (l *Ledger) Submit(ctx context.Context, draft Draft) (*model.LogEntry, error) {
	hours, err := draft.Validate()
	if err != nil {
		return nil, err
	}

	created, err := l.store.Create(ctx, model.NewLogEntry{
		UserID:       l.owner.ID,
		UserName:     l.owner.Name,
		ProjectID:    strings.TrimSpace(draft.ProjectID),
		Date:         NormalizeDate(draft.Date),
		StartTime:    strings.TrimSpace(draft.StartTime),
		EndTime:      strings.TrimSpace(draft.EndTime),
		BreakMinutes: draft.BreakMinutes,
		HoursAdded:   hours,
		Note:         strings.TrimSpace(draft.Note),
	})
	if err != nil {
		return nil, &RemoteError{Op: "create", Err: err}
	}

	created.Date = NormalizeDate(created.Date)
	l.mu.Lock()
	l.entries = append(l.entries, *created)
	l.mu.Unlock()
	return created, nil
}

// Patch is a user edit of an entry. Nil fields are not edited.
type Patch struct {
	StartTime    *string
	EndTime      *string
	BreakMinutes *int
	Note         *string
}

// ApplyPatch merges patch into entry. It returns the merged entry and the
// store patch holding only fields whose value actually changed. Hours are
// recomputed whenever start, end or break changed.
func ApplyPatch(entry model.LogEntry, patch Patch) (model.LogEntry, model.LogPatch, error) {
	updated := entry
	var changes model.LogPatch

	if patch.StartTime != nil {
		if value := strings.TrimSpace(*patch.StartTime); value != entry.StartTime {
			updated.StartTime = value
			changes.StartTime = &value
		}
	}
	if patch.EndTime != nil {
		if value := strings.TrimSpace(*patch.EndTime); value != entry.EndTime {
			updated.EndTime = value
			changes.EndTime = &value
		}
	}
	if patch.BreakMinutes != nil && *patch.BreakMinutes != entry.BreakMinutes {
		value := *patch.BreakMinutes
		updated.BreakMinutes = value
		changes.BreakMinutes = &value
	}
	if patch.Note != nil {
		if value := strings.TrimSpace(*patch.Note); value != entry.Note {
			updated.Note = value
			changes.Note = &value
		}
	}

	if changes.StartTime != nil || changes.EndTime != nil || changes.BreakMinutes != nil {
		hours, err := Session{
			Date:         entry.Date,
			StartTime:    updated.StartTime,
			EndTime:      updated.EndTime,
			BreakMinutes: updated.BreakMinutes,
		}.WorkedHours()
		if err != nil {
			return entry, model.LogPatch{}, err
		}
		updated.HoursAdded = hours
		if hours != entry.HoursAdded {
			changes.HoursAdded = &hours
		}
	}

	return updated, changes, nil
}

// Edit applies patch to the entry and sends the changed fields to the
// store. If the store call fails the working set is not touched.
func (l *Ledger) Edit(ctx context.Context, entryID string, patch Patch) (*model.LogEntry, error) {
	release, err := l.guard.Acquire(entryID)
	if err != nil {
		return nil, err
	}
	defer release()

	if _, ok := l.Entry(entryID); !ok {
		return nil, ErrEntryNotFound
	}

	// The working set may predate an edit that finished while this one
	// waited for the guard. Hours are recomputed from the stored row.
	current, err := l.refresh(ctx, entryID)
	if err != nil {
		return nil, err
	}

	updated, changes, err := ApplyPatch(current, patch)
	if err != nil {
		return nil, err
	}
	if changes.IsEmpty() {
		return &updated, nil
	}

	stored, err := l.store.Update(ctx, entryID, changes)
	if err != nil {
		return nil, &RemoteError{Op: "update", EntryID: entryID, Err: err}
	}

	stored.Date = NormalizeDate(stored.Date)
	l.replace(*stored)
	return stored, nil
}

// Delete removes the entry from the store and then from the working set.
func (l *Ledger) Delete(ctx context.Context, entryID string) error {
	release, err := l.guard.Acquire(entryID)
	if err != nil {
		return err
	}
	defer release()

	if _, ok := l.Entry(entryID); !ok {
		return ErrEntryNotFound
	}

	if err := l.store.Delete(ctx, entryID); err != nil {
		return &RemoteError{Op: "delete", EntryID: entryID, Err: err}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for i, entry := range l.entries {
		if entry.ID == entryID {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			break
		}
	}
	return nil
}

// refresh reloads one entry from the store into the working set.
func (l *Ledger) refresh(ctx context.Context, entryID string) (model.LogEntry, error) {
	stored, err := l.store.GetByID(ctx, entryID)
	if err != nil {
		return model.LogEntry{}, &RemoteError{Op: "get", EntryID: entryID, Err: err}
	}
	if stored.UserID != l.owner.ID {
		return model.LogEntry{}, ErrEntryNotFound
	}
	stored.Date = NormalizeDate(stored.Date)
	l.replace(*stored)
	return *stored, nil
}

func (l *Ledger) replace(entry model.LogEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.entries {
		if l.entries[i].ID == entry.ID {
			l.entries[i] = entry
			return
		}
	}
}
