package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"location-service/internal/family"
	"location-service/internal/middleware"
	"location-service/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type fakeSessionRepository struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func newFakeSessionRepository() *fakeSessionRepository {
	return &fakeSessionRepository{sessions: make(map[string]*Session)}
}

func (f *fakeSessionRepository) Upsert(ctx context.Context, session *Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *session
	f.sessions[session.PhoneNumber] = &copied
	return nil
}

func (f *fakeSessionRepository) FindByPhone(ctx context.Context, phoneNumber string) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[phoneNumber]
	if !ok {
		return nil, nil
	}
	copied := *session
	return &copied, nil
}

func (f *fakeSessionRepository) DeleteByPhone(ctx context.Context, phoneNumber string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, phoneNumber)
	return nil
}

func (f *fakeSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var deleted int64
	for phone, session := range f.sessions {
		if session.ExpiresAt.Before(now) {
			delete(f.sessions, phone)
			deleted++
		}
	}
	return deleted, nil
}

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

const testSecret = "test-secret"

func newTestAuth(t *testing.T) (AuthService, *store.MemoryBackend, *fakeSessionRepository) {
	t.Helper()
	backend := store.NewMemoryBackend()
	client := store.NewClient(backend, 10*time.Millisecond, testLogger())
	sessions := newFakeSessionRepository()
	svc := NewAuthService(client, sessions, testSecret, time.Hour, testLogger())
	return svc, backend, sessions
}

func seedMember(t *testing.T, backend *store.MemoryBackend, m *family.Member) {
	t.Helper()
	path := store.PathFamilyMembers + "/" + m.MemberID
	if err := backend.Set(context.Background(), path, m); err != nil {
		t.Fatalf("seed member %s: %v", m.MemberID, err)
	}
}

func TestNormalizePhone(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"9876543210", "+919876543210"},
		{"+19876543210", "+19876543210"},
		{"919876543210", "+919876543210"},
		{"+919876543210", "+919876543210"},
		{"98765 43210", "+919876543210"},
		{"98765-43210", "+919876543210"},
		{"(987) 654-3210", "+919876543210"},
		{"447911123456", "+447911123456"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizePhone(tt.in); got != tt.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDeriveRolePrecedence(t *testing.T) {
	t.Parallel()

	roster := map[string]*family.Member{
		"+911_Smith": {MemberID: "+911_Smith", Mobile: "+911", FamilyName: "Smith", Name: "Alice"},
		"+912_Smith": {MemberID: "+912_Smith", Mobile: "+912", FamilyName: "Smith", Name: "Bob"},
		"+913_Jones": {MemberID: "+913_Jones", Mobile: "+913", FamilyName: "Jones", Name: "Carol"},
	}

	tests := []struct {
		name   string
		member *family.Member
		want   string
	}{
		{
			"relationship admin wins regardless of case",
			&family.Member{MemberID: "+912_Smith", FamilyName: "Smith", Relationship: "Family Admin"},
			RoleAdmin,
		},
		{
			"explicit admin flag",
			&family.Member{MemberID: "+912_Smith", FamilyName: "Smith", IsAdmin: true},
			RoleAdmin,
		},
		{
			"admin in name",
			&family.Member{MemberID: "+912_Smith", FamilyName: "Smith", Name: "adminBob"},
			RoleAdmin,
		},
		{
			"first member of family by sorted id",
			roster["+911_Smith"],
			RoleAdmin,
		},
		{
			"second member is plain member",
			roster["+912_Smith"],
			RoleMember,
		},
		{
			"only member of its family is admin",
			roster["+913_Jones"],
			RoleAdmin,
		},
		{
			"nil member",
			nil,
			RoleMember,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := DeriveRole(tt.member, roster); got != tt.want {
				t.Fatalf("DeriveRole = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestLoginUnknownNumber(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestAuth(t)

	_, err := svc.Login(context.Background(), "9876543210", "secret")
	if !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("err = %v, want ErrMemberNotFound", err)
	}
}

func TestLoginWithoutStoredPassword(t *testing.T) {
	t.Parallel()

	svc, backend, _ := newTestAuth(t)
	seedMember(t, backend, &family.Member{
		MemberID:   "+919876543210_Smith_family",
		Mobile:     "+919876543210",
		FamilyName: "Smith_family",
		Name:       "Alice",
	})

	_, err := svc.Login(context.Background(), "9876543210", "anything")
	if !errors.Is(err, ErrPasswordNotSet) {
		t.Fatalf("err = %v, want ErrPasswordNotSet", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	t.Parallel()

	svc, backend, sessions := newTestAuth(t)
	seedMember(t, backend, &family.Member{
		MemberID:   "+919876543210_Smith_family",
		Mobile:     "+919876543210",
		FamilyName: "Smith_family",
		Password:   "letmein",
	})

	_, err := svc.Login(context.Background(), "+919876543210", "wrong")
	if !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("err = %v, want ErrWrongPassword", err)
	}
	if session, _ := sessions.FindByPhone(context.Background(), "+919876543210"); session != nil {
		t.Fatal("failed login must not create a session")
	}
}

func TestLoginSuccessIssuesToken(t *testing.T) {
	t.Parallel()

	svc, backend, sessions := newTestAuth(t)
	seedMember(t, backend, &family.Member{
		MemberID:     "+919876543210_Smith_family",
		Mobile:       "+919876543210",
		FamilyName:   "Smith_family",
		Relationship: "Admin",
		Password:     "letmein",
	})

	result, err := svc.Login(context.Background(), "9876543210", "letmein")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.Role != RoleAdmin {
		t.Fatalf("role = %s, want admin", result.Role)
	}
	if result.Member.Password != "" {
		t.Fatal("password leaked into login result")
	}

	claims := &middleware.SessionClaims{}
	token, err := jwt.ParseWithClaims(result.Token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("token does not verify: %v", err)
	}
	if claims.PhoneNumber != "+919876543210" || claims.Role != RoleAdmin {
		t.Fatalf("claims = %+v", claims)
	}

	session, err := sessions.FindByPhone(context.Background(), "+919876543210")
	if err != nil || session == nil {
		t.Fatalf("session not persisted: %v", err)
	}
	if session.FamilyName != "Smith_family" || !session.HasPassword {
		t.Fatalf("session = %+v", session)
	}
}

func TestSetPasswordFirstLogin(t *testing.T) {
	t.Parallel()

	svc, backend, _ := newTestAuth(t)
	seedMember(t, backend, &family.Member{
		MemberID:   "+917000000000_Lee_family",
		Mobile:     "+917000000000",
		FamilyName: "Lee_family",
	})

	if _, err := svc.SetPassword(context.Background(), "+917000000000", "abc"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("err = %v, want ErrPasswordTooShort", err)
	}

	result, err := svc.SetPassword(context.Background(), "+917000000000", "abcd")
	if err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if result.Token == "" {
		t.Fatal("first-login flow must grant a session")
	}

	// The stored record now carries the password, so a plain login works.
	if _, err := svc.Login(context.Background(), "+917000000000", "abcd"); err != nil {
		t.Fatalf("login after SetPassword: %v", err)
	}

	// And a second SetPassword is refused.
	if _, err := svc.SetPassword(context.Background(), "+917000000000", "other"); !errors.Is(err, ErrPasswordExists) {
		t.Fatalf("err = %v, want ErrPasswordExists", err)
	}
}

func TestRestoreAndLogout(t *testing.T) {
	t.Parallel()

	svc, backend, _ := newTestAuth(t)
	seedMember(t, backend, &family.Member{
		MemberID:   "+918000000000_Ray_family",
		Mobile:     "+918000000000",
		FamilyName: "Ray_family",
		Password:   "open",
	})

	if _, err := svc.Login(context.Background(), "+918000000000", "open"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	session, err := svc.Restore(context.Background(), "+918000000000")
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if session.PhoneNumber != "+918000000000" {
		t.Fatalf("restored session = %+v", session)
	}

	if err := svc.Logout(context.Background(), "+918000000000"); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := svc.Restore(context.Background(), "+918000000000"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound after logout", err)
	}
}

func TestSweepExpired(t *testing.T) {
	t.Parallel()

	backend := store.NewMemoryBackend()
	client := store.NewClient(backend, 10*time.Millisecond, testLogger())
	sessions := newFakeSessionRepository()
	svc := NewAuthService(client, sessions, testSecret, time.Hour, testLogger())

	now := time.Now()
	sessions.Upsert(context.Background(), &Session{PhoneNumber: "+911", ExpiresAt: now.Add(-time.Minute)})
	sessions.Upsert(context.Background(), &Session{PhoneNumber: "+912", ExpiresAt: now.Add(time.Hour)})

	if err := svc.SweepExpired(context.Background()); err != nil {
		t.Fatalf("SweepExpired: %v", err)
	}

	if session, _ := sessions.FindByPhone(context.Background(), "+911"); session != nil {
		t.Fatal("expired session survived the sweep")
	}
	if session, _ := sessions.FindByPhone(context.Background(), "+912"); session == nil {
		t.Fatal("live session was swept")
	}
}
