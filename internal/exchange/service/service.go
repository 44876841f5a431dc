package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"landregistry/internal/exchange/models"
	"landregistry/internal/platform/metrics"
	propmodels "landregistry/internal/property/models"
	"landregistry/pkg/domain"
	dErrors "landregistry/pkg/domain-errors"
	audit "landregistry/pkg/platform/audit"
	"landregistry/pkg/platform/sentinel"
	"landregistry/pkg/platform/tx"
	"landregistry/pkg/requestcontext"
)

type Store interface {
	CreateSale(ctx context.Context, sale *models.Sale) error
	FindSale(ctx context.Context, id domain.SaleID) (*models.Sale, error)
	FindSaleForUpdate(ctx context.Context, id domain.SaleID) (*models.Sale, error)
	ExecuteSale(ctx context.Context, id domain.SaleID, validate func(*models.Sale) error, mutate func(*models.Sale)) (*models.Sale, error)
	ListSales(ctx context.Context, filter models.SaleFilter) ([]*models.Sale, error)
	ListOverdue(ctx context.Context, now time.Time) ([]*models.Sale, error)
	CreateRequest(ctx context.Context, req *models.PurchaseRequest) error
	FindRequest(ctx context.Context, id domain.RequestID) (*models.PurchaseRequest, error)
	ExecuteRequest(ctx context.Context, id domain.RequestID, validate func(*models.PurchaseRequest) error, mutate func(*models.PurchaseRequest)) (*models.PurchaseRequest, error)
	ListRequests(ctx context.Context, filter models.RequestFilter) ([]*models.PurchaseRequest, error)
	SetRequestStates(ctx context.Context, sale domain.SaleID, from []models.RequestState, next models.RequestState, now time.Time) (int, error)
}

// Properties is the slice of the property registry the exchange drives.
type Properties interface {
	GetProperty(ctx context.Context, id domain.PropertyID) (*propmodels.Property, error)
	Transition(ctx context.Context, id domain.PropertyID, check func(*propmodels.Property) error, next propmodels.State) (*propmodels.Property, error)
	SetState(ctx context.Context, id domain.PropertyID, next propmodels.State) (*propmodels.Property, error)
	TransferOwner(ctx context.Context, id domain.PropertyID, to domain.Address) (*propmodels.Property, error)
}

type Registry interface {
	RequireVerifiedUser(ctx context.Context, addr domain.Address) error
	RequireRegionalAdmin(ctx context.Context, addr domain.Address, dept domain.DepartmentID) error
}

// Ledger moves funds between wallet accounts.
type Ledger interface {
	Transfer(ctx context.Context, from, to domain.Address, amount int64, memo string) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

const defaultPaymentWindow = 72 * time.Hour

type Service struct {
	store      Store
	properties Properties
	registry   Registry
	ledger     Ledger
	tx         tx.Runner
	window     time.Duration
	logger     *slog.Logger
	audit      AuditPublisher
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) { s.audit = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithPaymentWindow sets how long a buyer has to pay once accepted.
func WithPaymentWindow(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.window = d
		}
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

func New(store Store, properties Properties, registry Registry, ledger Ledger, runner tx.Runner, opts ...Option) *Service {
	s := &Service{
		store:      store,
		properties: properties,
		registry:   registry,
		ledger:     ledger,
		tx:         runner,
		window:     defaultPaymentWindow,
		logger:     slog.Default(),
		tracer:     otel.Tracer("landregistry/exchange"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) PaymentWindow() time.Duration { return s.window }

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "exchange."+name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	}
	span.End()
}

// PutOnSale lists a verified property owned by seller.
func (s *Service) PutOnSale(ctx context.Context, seller domain.Address, propertyID domain.PropertyID, price int64) (sale *models.Sale, err error) {
	ctx, span := s.startSpan(ctx, "PutOnSale", attribute.Int64("property.id", int64(propertyID)))
	defer func() { endSpan(span, err) }()

	if price <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "price must be positive")
	}
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		now := requestcontext.Now(ctx)
		var err error
		sale, err = models.NewSale(propertyID, seller, price, now)
		if err != nil {
			return asValidation(err)
		}
		_, err = s.properties.Transition(ctx, propertyID, func(p *propmodels.Property) error {
			if !p.IsOwnedBy(seller) {
				return dErrors.New(dErrors.CodeForbidden, "only the owner may sell the property")
			}
			if p.State != propmodels.StateVerified {
				return dErrors.Newf(dErrors.CodeInvariantViolation, "property is %s, not verified", p.State.Label())
			}
			return nil
		}, propmodels.StateOnSale)
		if err != nil {
			return err
		}
		if err := s.store.CreateSale(ctx, sale); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.New(dErrors.CodeConflict, "property already has an open sale")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create sale")
		}
		return s.emit(ctx, audit.Event{
			Actor:   seller,
			Subject: saleSubject(sale.ID),
			Action:  string(audit.EventSaleCreated),
			Amount:  price,
		})
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.SalesCreated.Inc()
	}
	return sale, nil
}

// CancelSale withdraws an unpaid sale. Open requests are rejected and the
// property returns to verified.
func (s *Service) CancelSale(ctx context.Context, seller domain.Address, saleID domain.SaleID) (sale *models.Sale, err error) {
	ctx, span := s.startSpan(ctx, "CancelSale", attribute.Int64("sale.id", int64(saleID)))
	defer func() { endSpan(span, err) }()

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		now := requestcontext.Now(ctx)
		var err error
		sale, err = s.store.ExecuteSale(ctx, saleID,
			func(sl *models.Sale) error { return sl.CanCancel(seller) },
			func(sl *models.Sale) { sl.ApplyCancel(now) },
		)
		if err != nil {
			return wrapErr(err, "sale")
		}
		if _, err := s.store.SetRequestStates(ctx, saleID, openRequestStates, models.RequestRejected, now); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to reject purchase requests")
		}
		if _, err := s.properties.SetState(ctx, sale.PropertyID, propmodels.StateVerified); err != nil {
			return err
		}
		return s.emit(ctx, audit.Event{
			Actor:   seller,
			Subject: saleSubject(saleID),
			Action:  string(audit.EventSaleCancelled),
		})
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

var openRequestStates = []models.RequestState{models.RequestPending, models.RequestAccepted}

// SendPurchaseRequest records a verified buyer's offer on an active sale.
func (s *Service) SendPurchaseRequest(ctx context.Context, buyer domain.Address, saleID domain.SaleID, offer int64) (req *models.PurchaseRequest, err error) {
	ctx, span := s.startSpan(ctx, "SendPurchaseRequest", attribute.Int64("sale.id", int64(saleID)))
	defer func() { endSpan(span, err) }()

	if offer <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "offered price must be positive")
	}
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.registry.RequireVerifiedUser(ctx, buyer); err != nil {
			return err
		}
		sale, err := s.store.FindSaleForUpdate(ctx, saleID)
		if err != nil {
			return wrapErr(err, "sale")
		}
		if sale.Seller == buyer {
			return dErrors.New(dErrors.CodeForbidden, "the seller cannot buy their own property")
		}
		if sale.State != models.SaleActive {
			return dErrors.Newf(dErrors.CodeInvariantViolation, "sale is %s, not active", sale.State)
		}
		open, err := s.store.ListRequests(ctx, models.RequestFilter{SaleID: saleID, Buyer: buyer, States: openRequestStates})
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load purchase requests")
		}
		if len(open) > 0 {
			return dErrors.New(dErrors.CodeConflict, "buyer already has an open request on this sale")
		}
		req, err = models.NewPurchaseRequest(saleID, buyer, offer, requestcontext.Now(ctx))
		if err != nil {
			return asValidation(err)
		}
		if err := s.store.CreateRequest(ctx, req); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.New(dErrors.CodeConflict, "buyer already has an open request on this sale")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create purchase request")
		}
		if err := s.syncPropertyState(ctx, sale); err != nil {
			return err
		}
		return s.emit(ctx, audit.Event{
			Actor:   buyer,
			Subject: requestSubject(req.ID),
			Action:  string(audit.EventPurchaseRequested),
			Amount:  offer,
		})
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// CancelPurchaseRequest withdraws a buyer's pending or accepted, unpaid
// request. Cancelling the accepted request reopens the sale.
func (s *Service) CancelPurchaseRequest(ctx context.Context, buyer domain.Address, requestID domain.RequestID) (req *models.PurchaseRequest, err error) {
	ctx, span := s.startSpan(ctx, "CancelPurchaseRequest", attribute.Int64("request.id", int64(requestID)))
	defer func() { endSpan(span, err) }()

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		now := requestcontext.Now(ctx)
		current, err := s.store.FindRequest(ctx, requestID)
		if err != nil {
			return wrapErr(err, "purchase request")
		}
		if current.Buyer != buyer {
			return dErrors.New(dErrors.CodeForbidden, "only the buyer may cancel the request")
		}
		// The sale lock comes before the request lock, as in accept and reject.
		sale, err := s.store.FindSaleForUpdate(ctx, current.SaleID)
		if err != nil {
			return wrapErr(err, "sale")
		}
		acceptedHere := func(sl *models.Sale) error {
			if sl.State != models.SaleAccepted || sl.AcceptedRequestID != requestID {
				return dErrors.Newf(dErrors.CodeInvariantViolation, "sale is %s, the request can no longer be cancelled", sl.State)
			}
			return nil
		}

		var wasAccepted bool
		req, err = s.store.ExecuteRequest(ctx, requestID,
			func(r *models.PurchaseRequest) error {
				if err := r.RequireState(openRequestStates...); err != nil {
					return err
				}
				wasAccepted = r.State == models.RequestAccepted
				if wasAccepted {
					return acceptedHere(sale)
				}
				return nil
			},
			func(r *models.PurchaseRequest) { r.Apply(models.RequestCancelled, now) },
		)
		if err != nil {
			return wrapErr(err, "purchase request")
		}
		if wasAccepted {
			sale, err = s.store.ExecuteSale(ctx, sale.ID, acceptedHere,
				func(sl *models.Sale) { sl.ClearAcceptance(now) },
			)
			if err != nil {
				return wrapErr(err, "sale")
			}
		}
		if err := s.syncPropertyState(ctx, sale); err != nil {
			return err
		}
		return s.emit(ctx, audit.Event{
			Actor:   buyer,
			Subject: requestSubject(requestID),
			Action:  string(audit.EventPurchaseCancelled),
		})
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// AcceptPurchaseRequest picks a buyer. The buyer then has the payment window
// to pay the offered price.
func (s *Service) AcceptPurchaseRequest(ctx context.Context, seller domain.Address, requestID domain.RequestID) (sale *models.Sale, err error) {
	ctx, span := s.startSpan(ctx, "AcceptPurchaseRequest", attribute.Int64("request.id", int64(requestID)))
	defer func() { endSpan(span, err) }()

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		now := requestcontext.Now(ctx)
		current, sl, err := s.requestForSeller(ctx, seller, requestID)
		if err != nil {
			return err
		}
		if err := sl.CanAccept(); err != nil {
			return err
		}
		req, err := s.store.ExecuteRequest(ctx, current.ID,
			func(r *models.PurchaseRequest) error { return r.RequireState(models.RequestPending) },
			func(r *models.PurchaseRequest) { r.Apply(models.RequestAccepted, now) },
		)
		if err != nil {
			return wrapErr(err, "purchase request")
		}
		deadline := now.Add(s.window)
		sale, err = s.store.ExecuteSale(ctx, sl.ID,
			func(sl *models.Sale) error { return sl.CanAccept() },
			func(sl *models.Sale) { sl.ApplyAccept(req, deadline, now) },
		)
		if err != nil {
			return wrapErr(err, "sale")
		}
		if _, err := s.properties.SetState(ctx, sale.PropertyID, propmodels.StateSaleApproved); err != nil {
			return err
		}
		return s.emit(ctx, audit.Event{
			Actor:    seller,
			Subject:  requestSubject(requestID),
			Action:   string(audit.EventPurchaseAccepted),
			Decision: string(models.RequestAccepted),
			Amount:   req.OfferedPrice,
		})
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

func (s *Service) RejectPurchaseRequest(ctx context.Context, seller domain.Address, requestID domain.RequestID) (req *models.PurchaseRequest, err error) {
	ctx, span := s.startSpan(ctx, "RejectPurchaseRequest", attribute.Int64("request.id", int64(requestID)))
	defer func() { endSpan(span, err) }()

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		now := requestcontext.Now(ctx)
		current, sale, err := s.requestForSeller(ctx, seller, requestID)
		if err != nil {
			return err
		}
		req, err = s.store.ExecuteRequest(ctx, current.ID,
			func(r *models.PurchaseRequest) error { return r.RequireState(models.RequestPending) },
			func(r *models.PurchaseRequest) { r.Apply(models.RequestRejected, now) },
		)
		if err != nil {
			return wrapErr(err, "purchase request")
		}
		if err := s.syncPropertyState(ctx, sale); err != nil {
			return err
		}
		return s.emit(ctx, audit.Event{
			Actor:    seller,
			Subject:  requestSubject(requestID),
			Action:   string(audit.EventPurchaseRejected),
			Decision: string(models.RequestRejected),
		})
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// MakePayment moves the accepted price from the buyer into escrow.
func (s *Service) MakePayment(ctx context.Context, buyer domain.Address, requestID domain.RequestID, amount int64) (sale *models.Sale, err error) {
	ctx, span := s.startSpan(ctx, "MakePayment",
		attribute.Int64("request.id", int64(requestID)),
		attribute.Int64("payment.amount", amount),
	)
	defer func() { endSpan(span, err) }()

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		now := requestcontext.Now(ctx)
		req, err := s.store.FindRequest(ctx, requestID)
		if err != nil {
			return wrapErr(err, "purchase request")
		}
		if req.Buyer != buyer {
			return dErrors.New(dErrors.CodeForbidden, "only the accepted buyer may pay")
		}
		if err := req.RequireState(models.RequestAccepted); err != nil {
			return err
		}
		current, err := s.store.FindSaleForUpdate(ctx, req.SaleID)
		if err != nil {
			return wrapErr(err, "sale")
		}
		if err := current.CanPay(requestID, amount, now); err != nil {
			return err
		}

		if err := s.ledger.Transfer(ctx, buyer, domain.EscrowAddress, amount, "payment for "+saleSubject(current.ID)); err != nil {
			return err
		}
		sale, err = s.store.ExecuteSale(ctx, current.ID,
			func(sl *models.Sale) error { return sl.CanPay(requestID, amount, now) },
			func(sl *models.Sale) { sl.ApplyPayment(now) },
		)
		if err != nil {
			return wrapErr(err, "sale")
		}
		if _, err := s.properties.SetState(ctx, sale.PropertyID, propmodels.StatePendingTransfer); err != nil {
			return err
		}
		return s.emit(ctx, audit.Event{
			Actor:   buyer,
			Subject: saleSubject(sale.ID),
			Action:  string(audit.EventPaymentMade),
			Amount:  amount,
		})
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordPayment(amount)
	}
	s.logger.InfoContext(ctx, "payment held in escrow",
		"sale_id", sale.ID,
		"buyer", buyer.Short(),
		"amount", amount,
		"request_id", requestcontext.RequestID(ctx),
	)
	return sale, nil
}

// TransferOwnership completes a paid sale: escrow pays the seller and the
// buyer becomes the owner.
func (s *Service) TransferOwnership(ctx context.Context, admin domain.Address, saleID domain.SaleID) (sale *models.Sale, err error) {
	ctx, span := s.startSpan(ctx, "TransferOwnership", attribute.Int64("sale.id", int64(saleID)))
	defer func() { endSpan(span, err) }()

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		now := requestcontext.Now(ctx)
		current, err := s.store.FindSale(ctx, saleID)
		if err != nil {
			return wrapErr(err, "sale")
		}
		prop, err := s.properties.GetProperty(ctx, current.PropertyID)
		if err != nil {
			return err
		}
		if err := s.registry.RequireRegionalAdmin(ctx, admin, prop.DepartmentID); err != nil {
			return err
		}
		if err := current.CanComplete(); err != nil {
			return err
		}
		if err := prop.CanTransferOwner(current.AcceptedFor); err != nil {
			return err
		}

		if err := s.ledger.Transfer(ctx, domain.EscrowAddress, current.Seller, current.AcceptedPrice, "settlement for "+saleSubject(saleID)); err != nil {
			return err
		}
		if _, err := s.properties.TransferOwner(ctx, prop.ID, current.AcceptedFor); err != nil {
			return err
		}
		sale, err = s.store.ExecuteSale(ctx, saleID,
			func(sl *models.Sale) error { return sl.CanComplete() },
			func(sl *models.Sale) { sl.ApplyComplete(now) },
		)
		if err != nil {
			return wrapErr(err, "sale")
		}
		if _, err := s.store.ExecuteRequest(ctx, sale.AcceptedRequestID,
			func(r *models.PurchaseRequest) error { return r.RequireState(models.RequestAccepted) },
			func(r *models.PurchaseRequest) { r.Apply(models.RequestCompleted, now) },
		); err != nil {
			return wrapErr(err, "purchase request")
		}
		if _, err := s.store.SetRequestStates(ctx, saleID, []models.RequestState{models.RequestPending}, models.RequestRejected, now); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to reject purchase requests")
		}
		return s.emit(ctx, audit.Event{
			Actor:    admin,
			Subject:  propertySubject(prop.ID),
			Action:   string(audit.EventOwnershipTransferred),
			Decision: sale.AcceptedFor.String(),
			Amount:   sale.AcceptedPrice,
		})
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.SalesCompleted.Inc()
	}
	s.logger.InfoContext(ctx, "ownership transferred",
		"sale_id", saleID,
		"property_id", sale.PropertyID,
		"from", sale.Seller.Short(),
		"to", sale.AcceptedFor.Short(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return sale, nil
}

// ExpireOverdue reopens accepted sales whose buyer missed the payment
// deadline. Each sale is expired in its own transaction; failures are
// collected and the sweep continues.
func (s *Service) ExpireOverdue(ctx context.Context) (expired int, err error) {
	ctx, span := s.startSpan(ctx, "ExpireOverdue")
	defer func() {
		span.SetAttributes(attribute.Int("sales.expired", expired))
		endSpan(span, err)
	}()

	now := requestcontext.Now(ctx)
	overdue, err := s.store.ListOverdue(ctx, now)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list overdue sales")
	}
	var errs []error
	for _, candidate := range overdue {
		if err := s.expire(ctx, candidate.ID, now); err != nil {
			s.logger.WarnContext(ctx, "failed to expire sale", "sale_id", candidate.ID, "error", err)
			errs = append(errs, err)
			continue
		}
		expired++
	}
	return expired, errors.Join(errs...)
}

func (s *Service) expire(ctx context.Context, saleID domain.SaleID, now time.Time) error {
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var requestID domain.RequestID
		sale, err := s.store.ExecuteSale(ctx, saleID,
			func(sl *models.Sale) error {
				if !sl.IsOverdue(now) {
					return dErrors.New(dErrors.CodeConflict, "sale is no longer overdue")
				}
				requestID = sl.AcceptedRequestID
				return nil
			},
			func(sl *models.Sale) { sl.ClearAcceptance(now) },
		)
		if err != nil {
			return wrapErr(err, "sale")
		}
		if _, err := s.store.ExecuteRequest(ctx, requestID,
			func(r *models.PurchaseRequest) error { return r.RequireState(models.RequestAccepted) },
			func(r *models.PurchaseRequest) { r.Apply(models.RequestCancelled, now) },
		); err != nil {
			return wrapErr(err, "purchase request")
		}
		if err := s.syncPropertyState(ctx, sale); err != nil {
			return err
		}
		return s.emit(ctx, audit.Event{
			Actor:   sale.Seller,
			Subject: saleSubject(saleID),
			Action:  string(audit.EventSaleExpired),
			Reason:  "payment deadline passed",
		})
	})
	if err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.SalesExpired.Inc()
	}
	return nil
}

// syncPropertyState derives the property's state from the sale and its
// requests.
func (s *Service) syncPropertyState(ctx context.Context, sale *models.Sale) error {
	next := propmodels.StateOnSale
	switch {
	case sale.State == models.SaleAccepted:
		next = propmodels.StateSaleApproved
	default:
		pending, err := s.store.ListRequests(ctx, models.RequestFilter{
			SaleID: sale.ID,
			States: []models.RequestState{models.RequestPending},
		})
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load purchase requests")
		}
		if len(pending) > 0 {
			next = propmodels.StateSaleRequested
		}
	}
	_, err := s.properties.SetState(ctx, sale.PropertyID, next)
	return err
}

// requestForSeller loads a request and its sale and checks that caller sells it.
func (s *Service) requestForSeller(ctx context.Context, seller domain.Address, requestID domain.RequestID) (*models.PurchaseRequest, *models.Sale, error) {
	req, err := s.store.FindRequest(ctx, requestID)
	if err != nil {
		return nil, nil, wrapErr(err, "purchase request")
	}
	sale, err := s.store.FindSaleForUpdate(ctx, req.SaleID)
	if err != nil {
		return nil, nil, wrapErr(err, "sale")
	}
	if sale.Seller != seller {
		return nil, nil, dErrors.New(dErrors.CodeForbidden, "only the seller may answer purchase requests")
	}
	return req, sale, nil
}

func (s *Service) GetSale(ctx context.Context, id domain.SaleID) (*models.Sale, error) {
	sale, err := s.store.FindSale(ctx, id)
	if err != nil {
		return nil, wrapErr(err, "sale")
	}
	return sale, nil
}

func (s *Service) GetRequest(ctx context.Context, id domain.RequestID) (*models.PurchaseRequest, error) {
	req, err := s.store.FindRequest(ctx, id)
	if err != nil {
		return nil, wrapErr(err, "purchase request")
	}
	return req, nil
}

func (s *Service) ListActiveSales(ctx context.Context) ([]*models.Sale, error) {
	return s.listSales(ctx, models.SaleFilter{State: models.SaleActive})
}

func (s *Service) ListSalesBySeller(ctx context.Context, seller domain.Address) ([]*models.Sale, error) {
	return s.listSales(ctx, models.SaleFilter{Seller: seller})
}

func (s *Service) listSales(ctx context.Context, f models.SaleFilter) ([]*models.Sale, error) {
	sales, err := s.store.ListSales(ctx, f)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list sales")
	}
	return sales, nil
}

// ListRequestsBySale is visible to the seller only.
func (s *Service) ListRequestsBySale(ctx context.Context, caller domain.Address, saleID domain.SaleID) ([]*models.PurchaseRequest, error) {
	sale, err := s.store.FindSale(ctx, saleID)
	if err != nil {
		return nil, wrapErr(err, "sale")
	}
	if sale.Seller != caller {
		return nil, dErrors.New(dErrors.CodeForbidden, "only the seller may list requests for this sale")
	}
	reqs, err := s.store.ListRequests(ctx, models.RequestFilter{SaleID: saleID})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list purchase requests")
	}
	return reqs, nil
}

func (s *Service) ListRequestsByBuyer(ctx context.Context, buyer domain.Address) ([]*models.PurchaseRequest, error) {
	reqs, err := s.store.ListRequests(ctx, models.RequestFilter{Buyer: buyer})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list purchase requests")
	}
	return reqs, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) error {
	if s.audit == nil {
		return nil
	}
	return s.audit.Emit(ctx, event)
}

func saleSubject(id domain.SaleID) string         { return "sale:" + id.String() }
func requestSubject(id domain.RequestID) string   { return "request:" + id.String() }
func propertySubject(id domain.PropertyID) string { return "property:" + id.String() }

func wrapErr(err error, what string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, what+" not found")
	}
	if _, ok := dErrors.As(err); ok {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, what+" store failure")
}

func asValidation(err error) error {
	if de, ok := dErrors.As(err); ok && de.Code == dErrors.CodeInvariantViolation {
		return dErrors.New(dErrors.CodeValidation, de.Message)
	}
	return err
}
