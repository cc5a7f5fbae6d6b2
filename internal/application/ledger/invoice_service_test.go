package ledger

import (
	"context"
	"strings"
	"testing"

	"github.com/backoffice/backend/internal/domain/shared"
	infra "github.com/backoffice/backend/internal/infrastructure/printing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPDFRenderer is a mock implementation of printing.PDFRenderer
type MockPDFRenderer struct {
	mock.Mock
}

func (m *MockPDFRenderer) Render(ctx context.Context, req *infra.RenderRequest) (*infra.RenderResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*infra.RenderResult), args.Error(1)
}

func (m *MockPDFRenderer) Close() error {
	args := m.Called()
	return args.Error(0)
}

var _ infra.PDFRenderer = (*MockPDFRenderer)(nil)

func TestInvoiceService_RenderByRef_Success(t *testing.T) {
	mockOrderRepo := new(MockOrderRepository)
	mockRenderer := new(MockPDFRenderer)
	service := NewInvoiceService(mockOrderRepo, mockRenderer, nil)

	ctx := context.Background()
	order := testOrder(t)

	mockOrderRepo.On("FindByRef", ctx, order.Ref).Return(order, nil)
	mockRenderer.On("Render", ctx, mock.MatchedBy(func(req *infra.RenderRequest) bool {
		return strings.Contains(req.HTML, order.Ref) &&
			strings.Contains(req.HTML, "Neem Oil") &&
			req.Title == "Invoice "+order.Ref
	})).Return(&infra.RenderResult{PDFData: []byte("%PDF-1.4")}, nil)

	result, err := service.RenderByRef(ctx, order.Ref)

	require.NoError(t, err)
	assert.Equal(t, order.Ref, result.OrderRef)
	assert.Equal(t, "invoice-"+order.Ref+".pdf", result.FileName)
	assert.NotEmpty(t, result.PDFData)
	mockOrderRepo.AssertExpectations(t)
	mockRenderer.AssertExpectations(t)
}

func TestInvoiceService_Render_OrderNotFound(t *testing.T) {
	mockOrderRepo := new(MockOrderRepository)
	mockRenderer := new(MockPDFRenderer)
	service := NewInvoiceService(mockOrderRepo, mockRenderer, nil)

	ctx := context.Background()

	mockOrderRepo.On("FindByRef", ctx, "01012024OR404").Return(nil, shared.ErrNotFound)

	result, err := service.RenderByRef(ctx, "01012024OR404")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	mockRenderer.AssertNotCalled(t, "Render", mock.Anything, mock.Anything)
}

func TestInvoiceService_Render_RendererFailure(t *testing.T) {
	mockOrderRepo := new(MockOrderRepository)
	mockRenderer := new(MockPDFRenderer)
	service := NewInvoiceService(mockOrderRepo, mockRenderer, nil)

	ctx := context.Background()
	order := testOrder(t)

	mockOrderRepo.On("FindByRef", ctx, order.Ref).Return(order, nil)
	mockRenderer.On("Render", ctx, mock.Anything).
		Return(nil, infra.NewRenderError(infra.ErrCodeRenderFailed, "chromedp execution failed", nil))

	result, err := service.RenderByRef(ctx, order.Ref)

	assert.Nil(t, result)
	var renderErr *infra.RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, infra.ErrCodeRenderFailed, renderErr.Code)
	mockOrderRepo.AssertExpectations(t)
}
