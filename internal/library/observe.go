package library

// ChangeKind classifies an index change.
type ChangeKind int

const (
	// ChangeRebuilt means membership or names changed during a rebuild.
	ChangeRebuilt ChangeKind = iota
	// ChangeName means a single entry received a new display name.
	ChangeName
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeRebuilt:
		return "rebuilt"
	case ChangeName:
		return "name"
	default:
		return "unknown"
	}
}

// Change describes one notification. ID and Name are set for ChangeName.
type Change struct {
	Kind ChangeKind
	ID   string
	Name string
}

// Subscribe registers fn for change notifications and returns a function
// that removes it. fn runs synchronously on the goroutine that made the
// change and must not block.
func (idx *Index) Subscribe(fn func(Change)) (cancel func()) {
	if fn == nil {
		return func() {}
	}
	idx.obsMu.Lock()
	id := idx.nextObs
	idx.nextObs++
	idx.observers[id] = fn
	idx.obsMu.Unlock()

	return func() {
		idx.obsMu.Lock()
		delete(idx.observers, id)
		idx.obsMu.Unlock()
	}
}

func (idx *Index) notify(change Change) {
	idx.obsMu.Lock()
	fns := make([]func(Change), 0, len(idx.observers))
	for _, fn := range idx.observers {
		fns = append(fns, fn)
	}
	idx.obsMu.Unlock()

	for _, fn := range fns {
		fn(change)
	}
}
