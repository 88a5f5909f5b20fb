package family

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"location-service/internal/store"

	"go.uber.org/zap"
)

var (
	ErrMemberExists   = errors.New("member already exists in this family")
	ErrMemberNotFound = errors.New("member not found")
	ErrFamilyNotFound = errors.New("family not found")
)

var mobilePattern = regexp.MustCompile(`^\+\d{10,15}$`)

type FamilyService interface {
	Start()
	Stop()

	// Live roster views, fed by the store subscriptions. Empty until the
	// first snapshot arrives.
	Families() map[string]string
	Members(familyName string) []*Member
	MemberByID(memberID string) (*Member, bool)
	MemberByMobile(mobile string) (*Member, bool)

	// Admin operations. These validate against the store itself, not the
	// live view, so a slow snapshot cannot let a duplicate through.
	CreateFamily(ctx context.Context, name string) (string, error)
	CreateMember(ctx context.Context, req *CreateMemberRequest) (*Member, error)
	UpdateMember(ctx context.Context, memberID string, req *UpdateMemberRequest) error
	DeleteMember(ctx context.Context, memberID string) error
	DeleteFamily(ctx context.Context, familyID string) error
}

type familyService struct {
	store  *store.Client
	logger *zap.SugaredLogger

	mu       sync.RWMutex
	members  map[string]*Member
	families map[string]string

	cancels []func()
}

func NewFamilyService(storeClient *store.Client, logger *zap.SugaredLogger) FamilyService {
	return &familyService{
		store:    storeClient,
		logger:   logger,
		members:  make(map[string]*Member),
		families: make(map[string]string),
	}
}

// Start attaches the live roster subscriptions. Each snapshot replaces the
// cached collection for its path wholesale.
func (s *familyService) Start() {
	s.cancels = append(s.cancels,
		s.store.Subscribe(store.PathFamilyMembers, func(raw json.RawMessage) {
			members := make(map[string]*Member)
			if raw != nil {
				if err := json.Unmarshal(raw, &members); err != nil {
					s.logger.Errorf("family: bad members snapshot: %v", err)
					return
				}
			}
			s.mu.Lock()
			s.members = members
			s.mu.Unlock()
		}),
		s.store.Subscribe(store.PathFamilies, func(raw json.RawMessage) {
			families := make(map[string]string)
			if raw != nil {
				if err := json.Unmarshal(raw, &families); err != nil {
					s.logger.Errorf("family: bad families snapshot: %v", err)
					return
				}
			}
			s.mu.Lock()
			s.families = families
			s.mu.Unlock()
		}),
	)
}

func (s *familyService) Stop() {
	for _, cancel := range s.cancels {
		cancel()
	}
	s.cancels = nil
}

func (s *familyService) Families() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	families := make(map[string]string, len(s.families))
	for id := range s.families {
		families[id] = DisplayName(id)
	}
	return families
}

// Members lists roster entries, restricted to one family when familyName is
// non-empty. Order follows the storage key order (sorted member ids), which
// also defines the first-member-is-admin tiebreak.
func (s *familyService) Members(familyName string) []*Member {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.members))
	for id, m := range s.members {
		// A deleted record can surface as an explicit null child.
		if m == nil {
			continue
		}
		if familyName != "" && m.FamilyName != familyName {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	members := make([]*Member, 0, len(ids))
	for _, id := range ids {
		m := *s.members[id]
		members = append(members, &m)
	}
	return members
}

func (s *familyService) MemberByID(memberID string) (*Member, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.members[memberID]
	if !ok || m == nil {
		return nil, false
	}
	member := *m
	return &member, true
}

func (s *familyService) MemberByMobile(mobile string) (*Member, bool) {
	for _, m := range s.Members("") {
		if m.Mobile == mobile {
			return m, true
		}
	}
	return nil, false
}

func (s *familyService) CreateFamily(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("family name is required")
	}

	familyID := NewFamilyID(name, time.Now())
	if err := s.store.Set(ctx, store.PathFamilies+"/"+familyID, familyID); err != nil {
		return "", fmt.Errorf("failed to create family: %w", err)
	}
	return familyID, nil
}

func (s *familyService) CreateMember(ctx context.Context, req *CreateMemberRequest) (*Member, error) {

	name := strings.TrimSpace(req.Name)
	mobile := strings.TrimSpace(req.Mobile)

	if name == "" || mobile == "" || req.FamilyName == "" {
		return nil, errors.New("name, mobile number, and family are required")
	}

	if !mobilePattern.MatchString(mobile) {
		return nil, errors.New("mobile number must start with + and contain 10-15 digits")
	}

	var familyRecord string
	if err := s.store.Get(ctx, store.PathFamilies+"/"+req.FamilyName, &familyRecord); err != nil {
		return nil, fmt.Errorf("failed to check family: %w", err)
	}
	if familyRecord == "" {
		return nil, ErrFamilyNotFound
	}

	memberID := MemberID(mobile, req.FamilyName)

	var existing *Member
	if err := s.store.Get(ctx, store.PathFamilyMembers+"/"+memberID, &existing); err != nil {
		return nil, fmt.Errorf("failed to check member: %w", err)
	}
	if existing != nil {
		return nil, ErrMemberExists
	}

	var registration *Registration
	if err := s.store.Get(ctx, store.PathRegistrations+"/"+mobile, &registration); err != nil {
		return nil, fmt.Errorf("failed to check registration: %w", err)
	}

	member := &Member{
		MemberID:     memberID,
		Name:         name,
		Mobile:       mobile,
		FamilyName:   req.FamilyName,
		Relationship: req.Relationship,
		Registered:   registration != nil,
		GpsInfo:      "GPS status unknown",
	}
	if registration != nil {
		member.UID = registration.UID
	}

	if err := s.store.Set(ctx, store.PathFamilyMembers+"/"+memberID, member); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}
	return member, nil
}

func (s *familyService) UpdateMember(ctx context.Context, memberID string, req *UpdateMemberRequest) error {

	var current *Member
	if err := s.store.Get(ctx, store.PathFamilyMembers+"/"+memberID, &current); err != nil {
		return fmt.Errorf("failed to load member: %w", err)
	}
	if current == nil {
		return ErrMemberNotFound
	}

	updated := *current
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return errors.New("name cannot be empty")
		}
		updated.Name = strings.TrimSpace(*req.Name)
	}
	if req.Relationship != nil {
		updated.Relationship = *req.Relationship
	}

	if err := s.store.Set(ctx, store.PathFamilyMembers+"/"+memberID, &updated); err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}
	return nil
}

func (s *familyService) DeleteMember(ctx context.Context, memberID string) error {

	var current *Member
	if err := s.store.Get(ctx, store.PathFamilyMembers+"/"+memberID, &current); err != nil {
		return fmt.Errorf("failed to load member: %w", err)
	}
	if current == nil {
		return ErrMemberNotFound
	}

	if err := s.store.Delete(ctx, store.PathFamilyMembers+"/"+memberID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return nil
}

// DeleteFamily removes every member of the family, then the family record.
// Deletes run sequentially without rollback: a mid-way failure leaves the
// earlier members gone and surfaces the first error.
func (s *familyService) DeleteFamily(ctx context.Context, familyID string) error {

	var familyRecord string
	if err := s.store.Get(ctx, store.PathFamilies+"/"+familyID, &familyRecord); err != nil {
		return fmt.Errorf("failed to load family: %w", err)
	}
	if familyRecord == "" {
		return ErrFamilyNotFound
	}

	roster := make(map[string]*Member)
	if err := s.store.Get(ctx, store.PathFamilyMembers, &roster); err != nil {
		return fmt.Errorf("failed to load roster: %w", err)
	}

	ids := make([]string, 0, len(roster))
	for id, m := range roster {
		if m != nil && m.FamilyName == familyID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	for _, id := range ids {
		if err := s.store.Delete(ctx, store.PathFamilyMembers+"/"+id); err != nil {
			return fmt.Errorf("failed to delete family: %w", err)
		}
	}

	if err := s.store.Delete(ctx, store.PathFamilies+"/"+familyID); err != nil {
		return fmt.Errorf("failed to delete family: %w", err)
	}
	return nil
}
