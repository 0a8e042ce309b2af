package todo

import (
	"slices"
	"sync"
)

// InitialVisibleLimit caps how many records are shown right after a load.
const InitialVisibleLimit = 20

// Store holds the authoritative task list and the visible list derived from
// it by the active filter and search query.
//
// The visible list is recomputed after every Add, Update, filter change and
// search change. Load shows a capped slice of the recomputed view, and Remove
// drops the task from the current visible list in place, so the cap survives
// deletions until the next recompute.
type Store struct {
	mu      sync.RWMutex
	tasks   []Task
	visible []Task
	filter  Filter
	query   string
	nextID  int
}

// NewStore returns an empty store showing all tasks.
func NewStore() *Store {
	return &Store{
		tasks:   []Task{},
		visible: []Task{},
		nextID:  1,
	}
}

// Load replaces the authoritative list and shows the first InitialVisibleLimit records.
func (s *Store) Load(tasks []Task) {
	s.LoadLimit(tasks, InitialVisibleLimit)
}

// LoadLimit replaces the authoritative list and shows at most limit records
// of the derived view. A limit of zero or less disables the cap.
func (s *Store) LoadLimit(tasks []Task, limit int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = slices.Clone(tasks)
	if s.tasks == nil {
		s.tasks = []Task{}
	}

	s.nextID = 1
	for _, t := range s.tasks {
		if t.ID >= s.nextID {
			s.nextID = t.ID + 1
		}
	}

	s.recompute()
	if limit > 0 && len(s.visible) > limit {
		s.visible = s.visible[:limit:limit]
	}
}

// Add appends task. The caller supplies the id; Add does not check it for
// uniqueness but moves the allocator past it.
func (s *Store) Add(task Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = append(s.tasks, task)
	if task.ID >= s.nextID {
		s.nextID = task.ID + 1
	}
	s.recompute()
}

// Update applies patch to the task with the given id. It reports whether a
// task matched; an unknown id leaves the store unchanged.
func (s *Store) Update(id int, patch Patch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.tasks[i] = patch.apply(s.tasks[i])
	s.recompute()
	return true
}

// Remove deletes the first task with the given id from both lists. Removing
// an absent id is a no-op, so repeated calls are idempotent.
func (s *Store) Remove(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.tasks = slices.Delete(s.tasks, i, i+1)

	if j := slices.IndexFunc(s.visible, func(t Task) bool { return t.ID == id }); j >= 0 {
		s.visible = slices.Delete(slices.Clone(s.visible), j, j+1)
	}
	return true
}

// SetFilter changes the status selection and recomputes the visible list.
func (s *Store) SetFilter(f Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f
	s.recompute()
}

// Filter returns the active status selection.
func (s *Store) Filter() Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// SetQuery changes the search query and recomputes the visible list.
func (s *Store) SetQuery(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = q
	s.recompute()
}

// Query returns the active search query.
func (s *Store) Query() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

// All returns a copy of the authoritative list.
func (s *Store) All() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tasks)
}

// Visible returns a copy of the visible list.
func (s *Store) Visible() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.visible)
}

// Get looks a task up by id.
func (s *Store) Get(id int) (Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.tasks[i], true
	}
	return Task{}, false
}

// Has reports whether a task with the given id exists.
func (s *Store) Has(id int) bool {
	_, ok := s.Get(id)
	return ok
}

// Len returns the size of the authoritative list.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// Counts tallies the authoritative list by status.
func (s *Store) Counts() Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Count(s.tasks)
}

// NextID allocates an id. Allocation is monotonic: ids are never reused within
// a session, even after the task holding them is removed.
func (s *Store) NextID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	return id
}

// PeekID returns the id NextID would allocate, without consuming it.
func (s *Store) PeekID() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextID
}

// indexOf must be called with the lock held.
func (s *Store) indexOf(id int) int {
	return slices.IndexFunc(s.tasks, func(t Task) bool { return t.ID == id })
}

// recompute must be called with the write lock held.
func (s *Store) recompute() {
	s.visible = Search(Apply(s.tasks, s.filter), s.query)
}
