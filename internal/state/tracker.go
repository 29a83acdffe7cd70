package state

// BoolTracker is a named boolean backed by a Store, with callbacks run when
// the value changes.
type BoolTracker struct {
	key       string
	store     Store
	def       bool
	onEnable  func()
	onDisable func()
}

// NewBoolTracker creates a tracker for key. def is used when the store has
// no value. Either callback may be nil.
func NewBoolTracker(store Store, key string, def bool, onEnable, onDisable func()) *BoolTracker {
	if store == nil {
		store = NewMemoryStore()
	}
	return &BoolTracker{key: key, store: store, def: def, onEnable: onEnable, onDisable: onDisable}
}

// Key returns the tracked key.
func (b *BoolTracker) Key() string {
	return b.key
}

// Get returns the current value.
func (b *BoolTracker) Get() bool {
	if v, ok := b.store.GetBool(b.key); ok {
		return v
	}
	return b.def
}

// Set stores value and runs the matching callback if it changed.
func (b *BoolTracker) Set(value bool) error {
	if b.Get() == value {
		return nil
	}
	if err := b.store.SetBool(b.key, value); err != nil {
		return err
	}
	if value && b.onEnable != nil {
		b.onEnable()
	}
	if !value && b.onDisable != nil {
		b.onDisable()
	}
	return nil
}

// Toggle flips the value and returns the new one.
func (b *BoolTracker) Toggle() (bool, error) {
	v := !b.Get()
	if err := b.Set(v); err != nil {
		return !v, err
	}
	return v, nil
}
