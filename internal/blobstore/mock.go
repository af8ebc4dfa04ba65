package blobstore

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Save(ctx context.Context, content io.Reader, ext string) (string, error) {
	args := m.Called(ctx, content, ext)
	return args.String(0), args.Error(1)
}

func (m *MockStore) Delete(ctx context.Context, ref string) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}
