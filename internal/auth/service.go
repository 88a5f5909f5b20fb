package auth

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"location-service/internal/family"
	"location-service/internal/middleware"
	"location-service/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var (
	ErrMemberNotFound   = errors.New("no account found for this number, please contact your family administrator")
	ErrPasswordNotSet   = errors.New("password not set, create one to continue")
	ErrWrongPassword    = errors.New("incorrect password")
	ErrPasswordTooShort = errors.New("password must be at least 4 characters")
	ErrPasswordExists   = errors.New("password already set for this account")
	ErrSessionNotFound  = errors.New("session not found or expired")
)

// LoginResult carries everything the client needs after authentication.
type LoginResult struct {
	Token   string         `json:"token"`
	Role    string         `json:"role"`
	Member  *family.Member `json:"member"`
	Expires time.Time      `json:"expires"`
}

type AuthService interface {
	Login(ctx context.Context, phoneNumber, password string) (*LoginResult, error)
	SetPassword(ctx context.Context, phoneNumber, password string) (*LoginResult, error)
	Restore(ctx context.Context, phoneNumber string) (*Session, error)
	Logout(ctx context.Context, phoneNumber string) error
	SweepExpired(ctx context.Context) error
}

type authService struct {
	store    *store.Client
	sessions SessionRepository
	logger   *zap.SugaredLogger
	secret   string
	ttl      time.Duration
	now      func() time.Time
}

func NewAuthService(storeClient *store.Client, sessions SessionRepository, secret string, ttl time.Duration, logger *zap.SugaredLogger) AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &authService{
		store:    storeClient,
		sessions: sessions,
		logger:   logger,
		secret:   secret,
		ttl:      ttl,
		now:      time.Now,
	}
}

// NormalizePhone folds the number formats members actually type into the
// stored +-prefixed form: a kept "+", a bare country code, a bare 10-digit
// local number, or anything else which just gets the plus.
func NormalizePhone(raw string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')':
			return -1
		}
		return r
	}, raw)

	switch {
	case cleaned == "":
		return cleaned
	case strings.HasPrefix(cleaned, "+"):
		return cleaned
	case strings.HasPrefix(cleaned, "91"):
		return "+" + cleaned
	case len(cleaned) == 10:
		return "+91" + cleaned
	default:
		return "+" + cleaned
	}
}

func (s *authService) Login(ctx context.Context, phoneNumber, password string) (*LoginResult, error) {

	member, roster, err := s.findMember(ctx, phoneNumber)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}

	if member.Password == "" {
		return nil, ErrPasswordNotSet
	}
	if member.Password != password {
		return nil, ErrWrongPassword
	}

	return s.grantSession(ctx, member, roster)
}

// SetPassword is the first-login flow: store the new password on the member
// record, then grant a session in the same call.
func (s *authService) SetPassword(ctx context.Context, phoneNumber, password string) (*LoginResult, error) {

	if len(password) < 4 {
		return nil, ErrPasswordTooShort
	}

	member, roster, err := s.findMember(ctx, phoneNumber)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}
	if member.Password != "" {
		return nil, ErrPasswordExists
	}

	member.Password = password
	if err := s.store.Set(ctx, store.PathFamilyMembers+"/"+member.MemberID, member); err != nil {
		return nil, err
	}

	return s.grantSession(ctx, member, roster)
}

func (s *authService) Restore(ctx context.Context, phoneNumber string) (*Session, error) {

	session, err := s.sessions.FindByPhone(ctx, phoneNumber)
	if err != nil {
		return nil, err
	}
	if session == nil || !session.ExpiresAt.After(s.now()) {
		return nil, ErrSessionNotFound
	}

	return session, nil
}

func (s *authService) Logout(ctx context.Context, phoneNumber string) error {
	return s.sessions.DeleteByPhone(ctx, phoneNumber)
}

func (s *authService) SweepExpired(ctx context.Context) error {
	deleted, err := s.sessions.DeleteExpired(ctx, s.now())
	if err != nil {
		return err
	}
	if deleted > 0 {
		s.logger.Infof("Removed %d expired sessions", deleted)
	}
	return nil
}

// findMember scans the roster for the normalized number, falling back to the
// raw input for records stored before normalization existed. The whole roster
// comes back too so the caller can derive the member's role.
func (s *authService) findMember(ctx context.Context, phoneNumber string) (*family.Member, map[string]*family.Member, error) {

	var raw json.RawMessage
	if err := s.store.Get(ctx, store.PathFamilyMembers, &raw); err != nil {
		return nil, nil, err
	}

	roster := make(map[string]*family.Member)
	if raw != nil {
		if err := json.Unmarshal(raw, &roster); err != nil {
			return nil, nil, err
		}
	}

	normalized := NormalizePhone(phoneNumber)
	for _, m := range roster {
		if m == nil {
			continue
		}
		if m.Mobile == normalized || m.Mobile == phoneNumber {
			return m, roster, nil
		}
	}

	return nil, roster, nil
}

// DeriveRole resolves a member's role. Precedence: an "admin" relationship,
// the explicit admin flag, an "admin" name, then the family's first member in
// sorted member-id order. Everyone else is a plain member.
func DeriveRole(member *family.Member, roster map[string]*family.Member) string {
	if member == nil {
		return RoleMember
	}
	if strings.Contains(strings.ToLower(member.Relationship), RoleAdmin) {
		return RoleAdmin
	}
	if member.IsAdmin {
		return RoleAdmin
	}
	if strings.Contains(strings.ToLower(member.Name), RoleAdmin) {
		return RoleAdmin
	}

	var ids []string
	for id, m := range roster {
		if m != nil && m.FamilyName == member.FamilyName {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if len(ids) > 0 && ids[0] == member.MemberID {
		return RoleAdmin
	}

	return RoleMember
}

func (s *authService) grantSession(ctx context.Context, member *family.Member, roster map[string]*family.Member) (*LoginResult, error) {

	now := s.now()
	expires := now.Add(s.ttl)
	role := DeriveRole(member, roster)

	session := &Session{
		PhoneNumber: member.Mobile,
		Role:        role,
		FamilyName:  member.FamilyName,
		HasPassword: member.Password != "",
		CreatedAt:   now,
		ExpiresAt:   expires,
	}
	if err := s.sessions.Upsert(ctx, session); err != nil {
		return nil, err
	}

	claims := &middleware.SessionClaims{
		PhoneNumber: member.Mobile,
		Role:        role,
		FamilyName:  member.FamilyName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   member.Mobile,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secret))
	if err != nil {
		return nil, err
	}

	member.Password = ""
	s.logger.Infof("Session granted to %s as %s", member.Mobile, role)

	return &LoginResult{
		Token:   token,
		Role:    role,
		Member:  member,
		Expires: expires,
	}, nil
}
