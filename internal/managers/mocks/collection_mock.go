package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"tamuroo-server/internal/store"
)

type MockUserCollection struct {
	mock.Mock
}

func (m *MockUserCollection) FindOne(ctx context.Context, filter store.UserFilter) (*store.User, error) {
	args := m.Called(ctx, filter)
	user, _ := args.Get(0).(*store.User)
	return user, args.Error(1)
}

func (m *MockUserCollection) Exists(ctx context.Context, field store.UserField, value string) (bool, error) {
	args := m.Called(ctx, field, value)
	return args.Bool(0), args.Error(1)
}

// Create echoes the given user back unless the expectation returns one.
func (m *MockUserCollection) Create(ctx context.Context, user *store.User) (*store.User, error) {
	args := m.Called(ctx, user)
	if created, ok := args.Get(0).(*store.User); ok {
		return created, args.Error(1)
	}
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	return user, nil
}

func (m *MockUserCollection) Save(ctx context.Context, user *store.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserCollection) DeleteMany(ctx context.Context, filter store.UserFilter) error {
	args := m.Called(ctx, filter)
	return args.Error(0)
}

func (m *MockUserCollection) CountDocuments(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockRoleCollection struct {
	mock.Mock
}

func (m *MockRoleCollection) FindOne(ctx context.Context, name string) (*store.Role, error) {
	args := m.Called(ctx, name)
	role, _ := args.Get(0).(*store.Role)
	return role, args.Error(1)
}

func (m *MockRoleCollection) Create(ctx context.Context, role *store.Role) (*store.Role, error) {
	args := m.Called(ctx, role)
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	return role, nil
}

func (m *MockRoleCollection) DeleteMany(ctx context.Context, names []string) error {
	args := m.Called(ctx, names)
	return args.Error(0)
}

func (m *MockRoleCollection) CountDocuments(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockUserRoleCollection struct {
	mock.Mock
}

func (m *MockUserRoleCollection) Create(ctx context.Context, userRole *store.UserRole) (*store.UserRole, error) {
	args := m.Called(ctx, userRole)
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	return userRole, nil
}

func (m *MockUserRoleCollection) DeleteMany(ctx context.Context, roleIDs []string) error {
	args := m.Called(ctx, roleIDs)
	return args.Error(0)
}

func (m *MockUserRoleCollection) CountDocuments(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
