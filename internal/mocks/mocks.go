// File: internal/mocks/mocks.go
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/trackrunner/api/schemas"
)

// -- Page Mock --

// MockPage mocks schemas.Page. Every method records its call; selectors are
// passed through so tests can set expectations per locator.
type MockPage struct {
	mock.Mock
}

var _ schemas.Page = (*MockPage)(nil)

func (m *MockPage) Navigate(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

func (m *MockPage) WaitPresent(ctx context.Context, selector string) error {
	args := m.Called(ctx, selector)
	return args.Error(0)
}

func (m *MockPage) Click(ctx context.Context, selector string) error {
	args := m.Called(ctx, selector)
	return args.Error(0)
}

func (m *MockPage) SyntheticClick(ctx context.Context, selector string) error {
	args := m.Called(ctx, selector)
	return args.Error(0)
}

func (m *MockPage) Fill(ctx context.Context, selector, text string) error {
	args := m.Called(ctx, selector, text)
	return args.Error(0)
}

func (m *MockPage) EnterFrame(ctx context.Context, selector string) error {
	args := m.Called(ctx, selector)
	return args.Error(0)
}

func (m *MockPage) ExitFrame(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockPage) Labels(ctx context.Context, selector string) ([]string, error) {
	args := m.Called(ctx, selector)
	var labels []string
	if v := args.Get(0); v != nil {
		labels = v.([]string)
	}
	return labels, args.Error(1)
}

func (m *MockPage) ClickNth(ctx context.Context, selector string, n int) error {
	args := m.Called(ctx, selector, n)
	return args.Error(0)
}

func (m *MockPage) ReadyState(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockPage) PrintPDF(ctx context.Context, opts schemas.PrintOptions) ([]byte, error) {
	args := m.Called(ctx, opts)
	var data []byte
	if v := args.Get(0); v != nil {
		data = v.([]byte)
	}
	return data, args.Error(1)
}

// -- Engine Mock --

// MockEngine mocks schemas.Engine.
type MockEngine struct {
	mock.Mock
}

var _ schemas.Engine = (*MockEngine)(nil)

func (m *MockEngine) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockEngine) Run(ctx context.Context, inputFile string) (*schemas.Outcome, error) {
	args := m.Called(ctx, inputFile)
	var out *schemas.Outcome
	if v := args.Get(0); v != nil {
		out = v.(*schemas.Outcome)
	}
	return out, args.Error(1)
}
