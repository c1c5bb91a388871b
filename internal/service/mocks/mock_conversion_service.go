package mocks

import (
	"context"

	"docconvert/internal/model"
	"docconvert/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockConversionService struct {
	mock.Mock
}

func (m *MockConversionService) Receive(ctx context.Context, up service.Upload) (*model.StoredDocument, error) {
	args := m.Called(ctx, up)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StoredDocument), args.Error(1)
}

func (m *MockConversionService) Convert(ctx context.Context, in *model.StoredDocument) (*model.StoredDocument, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StoredDocument), args.Error(1)
}

func (m *MockConversionService) Process(ctx context.Context, up service.Upload) service.Result {
	args := m.Called(ctx, up)
	return args.Get(0).(service.Result)
}

func (m *MockConversionService) List(ctx context.Context, limit, offset int) (*service.ConversionListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ConversionListResult), args.Error(1)
}

func (m *MockConversionService) Get(ctx context.Context, id string) (*model.Conversion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Conversion), args.Error(1)
}

func (m *MockConversionService) Health(ctx context.Context) map[string]error {
	args := m.Called(ctx)
	return args.Get(0).(map[string]error)
}
