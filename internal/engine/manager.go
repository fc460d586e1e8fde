package engine

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"go.uber.org/zap"

	"pin-mapper/internal/diagnostic"
	"pin-mapper/internal/pin"
)

var (
	ErrCompositeNotFound = errors.New("composite not open")
	ErrCompositeExists   = errors.New("composite already open")
	ErrInvalidDefinition = errors.New("invalid composite definition")
	ErrPersist           = errors.New("persisting composite failed")
)

// Persister receives the definition of a composite after each successful
// mutation.
type Persister interface {
	Save(def pin.CompositeDefinition) error
}

// Options configures a Manager.
type Options struct {
	// StrictTypes rejects mappings whose port type differs from the pin type.
	StrictTypes bool
	// Numbering selects how PinDisplayNumber numbers pins.
	Numbering NumberingScheme
	// Persister is optional.
	Persister Persister
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

// Manager owns the open composites.
type Manager struct {
	composites map[string]*pin.Composite
	opts       Options
	logger     *zap.Logger

	observers      []observer
	lastObserverID int
	persistErr     error
}

// NewManager returns a manager without open composites.
func NewManager(opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	if opts.Numbering == "" {
		opts.Numbering = NumberByIndex
	}

	return &Manager{
		composites: make(map[string]*pin.Composite),
		opts:       opts,
		logger:     opts.Logger.Named("engine"),
	}
}

// Open registers a composite from its persisted definition. The definition
// is validated; warnings are returned alongside a nil error.
func (m *Manager) Open(def pin.CompositeDefinition) (*diagnostic.Diagnostics, error) {
	if _, ok := m.composites[def.CompositeID]; ok {
		return nil, fmt.Errorf("%w: %s", ErrCompositeExists, def.CompositeID)
	}

	c, diags := pin.NewComposite(def)
	if c == nil {
		return diags, fmt.Errorf("%w: %w", ErrInvalidDefinition, diags.Error())
	}

	m.register(c)

	m.logger.Debug("composite opened",
		zap.String("composite", c.ID()),
		zap.Int("pins", c.Len()),
		zap.Int("warnings", len(diags.Warnings)))

	m.publish(Change{Kind: ChangeCompositeOpened, CompositeID: c.ID()})

	return diags, nil
}

// Create registers a new composite without virtual pins.
func (m *Manager) Create(compositeID string) error {
	if compositeID == "" {
		return fmt.Errorf("%w: empty composite id", ErrInvalidDefinition)
	}

	if _, ok := m.composites[compositeID]; ok {
		return fmt.Errorf("%w: %s", ErrCompositeExists, compositeID)
	}

	c := pin.NewEmptyComposite(compositeID)
	m.register(c)
	m.publish(Change{Kind: ChangeCompositeOpened, CompositeID: compositeID})

	return m.persist(c)
}

// Close forgets a composite. Its pins are destroyed with it.
func (m *Manager) Close(compositeID string) error {
	if _, err := m.composite(compositeID); err != nil {
		return err
	}

	delete(m.composites, compositeID)
	m.publish(Change{Kind: ChangeCompositeClosed, CompositeID: compositeID})

	return nil
}

// CompositeIDs returns the ids of all open composites, sorted.
func (m *Manager) CompositeIDs() []string {
	return slices.Sorted(maps.Keys(m.composites))
}

// Definition returns the persisted form of an open composite.
func (m *Manager) Definition(compositeID string) (pin.CompositeDefinition, error) {
	c, err := m.composite(compositeID)
	if err != nil {
		return pin.CompositeDefinition{}, err
	}

	return c.Definition(), nil
}

// PersistErr returns the error of the most recent save, or nil if it succeeded.
func (m *Manager) PersistErr() error {
	return m.persistErr
}

func (m *Manager) register(c *pin.Composite) {
	c.SetStrictTypes(m.opts.StrictTypes)
	m.composites[c.ID()] = c
}

func (m *Manager) composite(id string) (*pin.Composite, error) {
	c, ok := m.composites[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCompositeNotFound, id)
	}

	return c, nil
}

// commit notifies subscribers and persists after a successful mutation.
func (m *Manager) commit(c *pin.Composite, ch Change) {
	ch.CompositeID = c.ID()

	m.logger.Debug("virtual pins changed",
		zap.String("composite", ch.CompositeID),
		zap.Stringer("kind", ch.Kind),
		zap.Int("pin", ch.PinIndex),
		zap.Stringer("port", ch.Port))

	m.publish(ch)

	if err := m.persist(c); err != nil {
		m.publish(Change{Kind: ChangePersistFailed, CompositeID: ch.CompositeID, PinIndex: ch.PinIndex, Err: err})
	}
}

func (m *Manager) persist(c *pin.Composite) error {
	if m.opts.Persister == nil {
		return nil
	}

	if err := m.opts.Persister.Save(c.Definition()); err != nil {
		m.persistErr = fmt.Errorf("%w: %s: %w", ErrPersist, c.ID(), err)
		m.logger.Error("persist composite", zap.String("composite", c.ID()), zap.Error(err))

		return m.persistErr
	}

	m.persistErr = nil

	return nil
}

// reject logs a refused mutation. Sync invariant violations are programmer
// errors and go through DPanic.
func (m *Manager) reject(op, compositeID string, err error) error {
	if errors.Is(err, pin.ErrSyncInvariant) {
		m.logger.DPanic("mapping synchronization failed",
			zap.String("op", op),
			zap.String("composite", compositeID),
			zap.Error(err))

		return err
	}

	m.logger.Debug("mutation rejected",
		zap.String("op", op),
		zap.String("composite", compositeID),
		zap.Error(err))

	return err
}
