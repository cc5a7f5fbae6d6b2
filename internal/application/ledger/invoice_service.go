package ledger

import (
	"context"

	"github.com/backoffice/backend/internal/domain/ledger"
	infra "github.com/backoffice/backend/internal/infrastructure/printing"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InvoiceService renders order invoices to PDF
type InvoiceService struct {
	orderRepo ledger.OrderRepository
	renderer  infra.PDFRenderer
	logger    *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(orderRepo ledger.OrderRepository, renderer infra.PDFRenderer, logger *zap.Logger) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{
		orderRepo: orderRepo,
		renderer:  renderer,
		logger:    logger,
	}
}

// Render renders the invoice for an order looked up by internal ID
func (s *InvoiceService) Render(ctx context.Context, orderID uuid.UUID) (*InvoiceResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, order)
}

// RenderByRef renders the invoice for an order looked up by reference
func (s *InvoiceService) RenderByRef(ctx context.Context, ref string) (*InvoiceResponse, error) {
	order, err := s.orderRepo.FindByRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, order)
}

func (s *InvoiceService) render(ctx context.Context, order *ledger.Order) (*InvoiceResponse, error) {
	html, err := infra.InvoiceHTML(order)
	if err != nil {
		return nil, err
	}

	result, err := s.renderer.Render(ctx, &infra.RenderRequest{
		HTML:    html,
		Title:   "Invoice " + order.Ref,
		Margins: infra.DefaultMargins(),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("invoice rendered",
		zap.String("ref", order.Ref),
		zap.Int("bytes", len(result.PDFData)))

	return &InvoiceResponse{
		OrderRef: order.Ref,
		FileName: "invoice-" + order.Ref + ".pdf",
		PDFData:  result.PDFData,
	}, nil
}
