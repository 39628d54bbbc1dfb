package mocks

import (
	"context"

	"meetapi/internal/export"

	"github.com/stretchr/testify/mock"
)

type MockDocumentExporter struct {
	mock.Mock
}

func (m *MockDocumentExporter) Render(ctx context.Context, title, text string, format export.Format) (*export.Document, error) {
	args := m.Called(ctx, title, text, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*export.Document), args.Error(1)
}
