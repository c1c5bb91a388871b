package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockConverter struct {
	mock.Mock
}

func (m *MockConverter) Convert(ctx context.Context, format string, input []byte, targetExt string) ([]byte, string, error) {
	args := m.Called(ctx, format, input, targetExt)
	var out []byte
	if v := args.Get(0); v != nil {
		out = v.([]byte)
	}
	return out, args.String(1), args.Error(2)
}

type MockInspector struct {
	mock.Mock
}

func (m *MockInspector) Inspect(pdf []byte) (int, error) {
	args := m.Called(pdf)
	return args.Int(0), args.Error(1)
}
