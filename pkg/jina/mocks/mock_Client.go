// Package mocks provides test doubles for the jina client.
package mocks

import (
	"context"

	jina "github.com/sells-group/scrape-playground/pkg/jina"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// Read provides a mock function with given fields: ctx, targetURL, opts
func (_m *MockClient) Read(ctx context.Context, targetURL string, opts jina.ReadOptions) (*jina.ReadResponse, error) {
	ret := _m.Called(ctx, targetURL, opts)

	if len(ret) == 0 {
		panic("no return value specified for Read")
	}

	var r0 *jina.ReadResponse
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string, jina.ReadOptions) (*jina.ReadResponse, error)); ok {
		return rf(ctx, targetURL, opts)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string, jina.ReadOptions) *jina.ReadResponse); ok {
		r0 = rf(ctx, targetURL, opts)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*jina.ReadResponse)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string, jina.ReadOptions) error); ok {
		r1 = rf(ctx, targetURL, opts)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockClient creates a new instance of MockClient.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	mock := &MockClient{}
	mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
