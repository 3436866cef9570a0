package auth_test

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/booklyhq/bookly/auth"
)

// notFoundErr mimics what the repository layer returns for missing records.
func notFoundErr() error {
	return errors.New("record not found", errors.CategoryNotFound).
		WithCode(errors.CodeNotFound)
}

// MockUserStore implements auth.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) GetByUUID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

// Register echoes the stored user back when the expectation returns nil for
// the record, mirroring how the repository returns the inserted row.
func (m *MockUserStore) Register(ctx context.Context, user *auth.User) (*auth.User, error) {
	args := m.Called(ctx, user)
	if u := args.Get(0); u != nil {
		return u.(*auth.User), args.Error(1)
	}
	if args.Error(1) == nil {
		if user.ID == uuid.Nil {
			user.ID = uuid.New()
		}
		return user, nil
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) MarkVerified(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserStore) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

// MockMailSender implements auth.MailSender
type MockMailSender struct {
	mock.Mock
}

func (m *MockMailSender) SendAccountVerification(ctx context.Context, email, link string) error {
	args := m.Called(ctx, email, link)
	return args.Error(0)
}

func (m *MockMailSender) SendPasswordReset(ctx context.Context, email, link string) error {
	args := m.Called(ctx, email, link)
	return args.Error(0)
}

// MockLogger implements auth.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

// MockIdentity implements auth.Identity
type MockIdentity struct {
	IDValue       string
	UsernameValue string
	EmailValue    string
	RoleValue     string
}

func (m MockIdentity) ID() string       { return m.IDValue }
func (m MockIdentity) Username() string { return m.UsernameValue }
func (m MockIdentity) Email() string    { return m.EmailValue }
func (m MockIdentity) Role() string     { return m.RoleValue }

// testConfig implements auth.Config with test-friendly TTLs.
type testConfig struct{}

func (testConfig) GetSigningKey() string { return "test-signing-key" }
func (testConfig) GetIssuer() string     { return "bookly-test" }
func (testConfig) GetAudience() []string { return []string{"bookly-test"} }
func (testConfig) GetDomain() string     { return "bookly.test" }

func (testConfig) GetAccessTokenTTL() time.Duration        { return 15 * time.Minute }
func (testConfig) GetRefreshTokenTTL() time.Duration       { return 48 * time.Hour }
func (testConfig) GetVerificationTokenTTL() time.Duration  { return 24 * time.Hour }
func (testConfig) GetPasswordResetTokenTTL() time.Duration { return 30 * time.Minute }
func (testConfig) GetMailTimeout() time.Duration           { return time.Minute }
