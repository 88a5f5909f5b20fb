package location

import (
	"encoding/json"
	"sync"
	"time"

	"location-service/internal/family"
	"location-service/internal/store"

	"go.uber.org/zap"
)

// MemberLocation is one row of the joined live view: a roster entry plus its
// latest fix, keyed by mobile number.
type MemberLocation struct {
	Member   *family.Member   `json:"member"`
	Location *CurrentLocation `json:"location"`
	Online   bool             `json:"online"`
	Address  string           `json:"address,omitempty"`
	MapLink  string           `json:"map_link"`
}

// Aggregator merges the current-location, member-roster and family-roster
// feeds into a joined view. There is no readiness barrier: feeds that have
// not delivered yet count as empty, and the view re-derives on every
// snapshot from any feed.
type Aggregator struct {
	store  *store.Client
	logger *zap.SugaredLogger
	now    func() time.Time

	mu        sync.RWMutex
	locations map[string]*CurrentLocation
	members   map[string]*family.Member
	families  map[string]string

	listenerMu sync.Mutex
	listeners  map[int]func()
	nextID     int

	cancels []func()
}

func NewAggregator(storeClient *store.Client, logger *zap.SugaredLogger) *Aggregator {
	return &Aggregator{
		store:     storeClient,
		logger:    logger,
		now:       time.Now,
		locations: make(map[string]*CurrentLocation),
		members:   make(map[string]*family.Member),
		families:  make(map[string]string),
		listeners: make(map[int]func()),
	}
}

func (a *Aggregator) Start() {
	a.cancels = append(a.cancels,
		a.store.Subscribe(store.PathLocations, func(raw json.RawMessage) {
			locations := make(map[string]*CurrentLocation)
			if raw != nil {
				if err := json.Unmarshal(raw, &locations); err != nil {
					a.logger.Errorf("aggregator: bad locations snapshot: %v", err)
					return
				}
			}
			a.mu.Lock()
			a.locations = locations
			a.mu.Unlock()
			a.notify()
		}),
		a.store.Subscribe(store.PathFamilyMembers, func(raw json.RawMessage) {
			members := make(map[string]*family.Member)
			if raw != nil {
				if err := json.Unmarshal(raw, &members); err != nil {
					a.logger.Errorf("aggregator: bad members snapshot: %v", err)
					return
				}
			}
			a.mu.Lock()
			a.members = members
			a.mu.Unlock()
			a.notify()
		}),
		a.store.Subscribe(store.PathFamilies, func(raw json.RawMessage) {
			families := make(map[string]string)
			if raw != nil {
				if err := json.Unmarshal(raw, &families); err != nil {
					a.logger.Errorf("aggregator: bad families snapshot: %v", err)
					return
				}
			}
			a.mu.Lock()
			a.families = families
			a.mu.Unlock()
			a.notify()
		}),
	)
}

func (a *Aggregator) Stop() {
	for _, cancel := range a.cancels {
		cancel()
	}
	a.cancels = nil
}

// View joins locations to members on the mobile number. With a family
// filter only that family's members are included; members without a fix are
// excluded (they remain visible through the roster, not the map).
func (a *Aggregator) View(familyName string) map[string]*MemberLocation {
	a.mu.RLock()
	defer a.mu.RUnlock()

	now := a.now()
	view := make(map[string]*MemberLocation)

	for _, m := range a.members {
		if m == nil {
			continue
		}
		if familyName != "" && m.FamilyName != familyName {
			continue
		}
		loc, ok := a.locations[m.Mobile]
		if !ok || loc == nil {
			continue
		}
		member := *m
		fix := *loc
		view[m.Mobile] = &MemberLocation{
			Member:   &member,
			Location: &fix,
			Online:   IsOnline(loc, now),
			MapLink:  fix.MapLink(),
		}
	}
	return view
}

// Families lists the known families from the live feed as id → display
// name, for the dashboard's family picker.
func (a *Aggregator) Families() map[string]string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	families := make(map[string]string, len(a.families))
	for id := range a.families {
		families[id] = family.DisplayName(id)
	}
	return families
}

// Location returns the latest fix for one mobile from the live feed.
func (a *Aggregator) Location(mobile string) (*CurrentLocation, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	loc, ok := a.locations[mobile]
	if !ok || loc == nil {
		return nil, false
	}
	fix := *loc
	return &fix, true
}

// OnChange registers a listener invoked after every applied snapshot. The
// returned function removes it.
func (a *Aggregator) OnChange(fn func()) (remove func()) {
	a.listenerMu.Lock()
	id := a.nextID
	a.nextID++
	a.listeners[id] = fn
	a.listenerMu.Unlock()

	return func() {
		a.listenerMu.Lock()
		delete(a.listeners, id)
		a.listenerMu.Unlock()
	}
}

func (a *Aggregator) notify() {
	a.listenerMu.Lock()
	listeners := make([]func(), 0, len(a.listeners))
	for _, fn := range a.listeners {
		listeners = append(listeners, fn)
	}
	a.listenerMu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}
