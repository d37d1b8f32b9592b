// Package mocks provides testify mocks for the ports interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen/address-book/internal/domain"
	"github.com/jsamuelsen/address-book/internal/ports"
)

// MockContactArchive is a mock ports.ContactArchive.
type MockContactArchive struct {
	mock.Mock
}

var _ ports.ContactArchive = (*MockContactArchive)(nil)

// NewMockContactArchive creates a mock whose expectations are asserted on test cleanup.
func NewMockContactArchive(t interface {
	mock.TestingT
	Cleanup(func())
},
) *MockContactArchive {
	m := &MockContactArchive{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// Load implements ports.ContactArchive.
func (m *MockContactArchive) Load(ctx context.Context) ([]*domain.Record, error) {
	args := m.Called(ctx)

	records, _ := args.Get(0).([]*domain.Record)

	return records, args.Error(1)
}

// Store implements ports.ContactArchive.
func (m *MockContactArchive) Store(ctx context.Context, records []*domain.Record) error {
	return m.Called(ctx, records).Error(0)
}

// EXPECT returns a typed helper for setting expectations.
func (m *MockContactArchive) EXPECT() *MockContactArchiveExpecter {
	return &MockContactArchiveExpecter{mock: &m.Mock}
}

// MockContactArchiveExpecter sets typed expectations on MockContactArchive.
type MockContactArchiveExpecter struct {
	mock *mock.Mock
}

// Load expects a Load call.
func (e *MockContactArchiveExpecter) Load(ctx any) *MockContactArchiveLoadCall {
	return &MockContactArchiveLoadCall{Call: e.mock.On("Load", ctx)}
}

// Store expects a Store call.
func (e *MockContactArchiveExpecter) Store(ctx, records any) *MockContactArchiveStoreCall {
	return &MockContactArchiveStoreCall{Call: e.mock.On("Store", ctx, records)}
}

// MockContactArchiveLoadCall is an expected Load call.
type MockContactArchiveLoadCall struct {
	*mock.Call
}

// Return sets the Load results.
func (c *MockContactArchiveLoadCall) Return(records []*domain.Record, err error) *MockContactArchiveLoadCall {
	c.Call.Return(records, err)
	return c
}

// MockContactArchiveStoreCall is an expected Store call.
type MockContactArchiveStoreCall struct {
	*mock.Call
}

// Return sets the Store result.
func (c *MockContactArchiveStoreCall) Return(err error) *MockContactArchiveStoreCall {
	c.Call.Return(err)
	return c
}
