// Package mocks provides test doubles for the scrapfly client.
package mocks

import (
	"context"

	scrapfly "github.com/sells-group/scrape-playground/pkg/scrapfly"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// Scrape provides a mock function with given fields: ctx, req
func (_m *MockClient) Scrape(ctx context.Context, req scrapfly.ScrapeRequest) (*scrapfly.ScrapeResponse, error) {
	ret := _m.Called(ctx, req)

	if len(ret) == 0 {
		panic("no return value specified for Scrape")
	}

	var r0 *scrapfly.ScrapeResponse
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, scrapfly.ScrapeRequest) (*scrapfly.ScrapeResponse, error)); ok {
		return rf(ctx, req)
	}
	if rf, ok := ret.Get(0).(func(context.Context, scrapfly.ScrapeRequest) *scrapfly.ScrapeResponse); ok {
		r0 = rf(ctx, req)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*scrapfly.ScrapeResponse)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, scrapfly.ScrapeRequest) error); ok {
		r1 = rf(ctx, req)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ScreenshotURL provides a mock function with given fields: raw
func (_m *MockClient) ScreenshotURL(raw string) string {
	ret := _m.Called(raw)

	if len(ret) == 0 {
		panic("no return value specified for ScreenshotURL")
	}

	if rf, ok := ret.Get(0).(func(string) string); ok {
		return rf(raw)
	}
	return ret.String(0)
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
