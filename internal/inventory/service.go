package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockroomhq/warehouse-backend/pkg/db/models"
	"github.com/stockroomhq/warehouse-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/warehouse-backend/pkg/errors"
	"github.com/stockroomhq/warehouse-backend/pkg/metrics"
	"gorm.io/gorm"
)

// Service is the inventory ledger. Every mutation runs in a single
// transaction and either fully commits or leaves no trace.
type Service interface {
	CreateReceipt(ctx context.Context, input DocumentInput) (uuid.UUID, error)
	EditReceipt(ctx context.Context, id uuid.UUID, input DocumentInput) error
	CreateShipment(ctx context.Context, input DocumentInput) (uuid.UUID, error)
	SignShipment(ctx context.Context, id uuid.UUID) error
	UnsignShipment(ctx context.Context, id uuid.UUID) error
	GetDocument(ctx context.Context, id uuid.UUID, kind enums.DocumentKind) (*DocumentView, error)
	ListDocuments(ctx context.Context, kind enums.DocumentKind, state *enums.DocumentState) ([]DocumentView, error)
	ListBalances(ctx context.Context) ([]BalanceView, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// catalogReader is the slice of the catalog surface the ledger needs for
// validating receipt lines and naming resources in error messages.
type catalogReader interface {
	FindResource(ctx context.Context, id uuid.UUID) (*models.Resource, error)
	FindUnit(ctx context.Context, id uuid.UUID) (*models.Unit, error)
}

type service struct {
	tx        txRunner
	balances  BalanceRepository
	documents DocumentRepository
	catalog   catalogReader
	metrics   *metrics.LedgerMetrics
}

// NewService wires the ledger service. metrics may be nil.
func NewService(tx txRunner, balances BalanceRepository, documents DocumentRepository, catalog catalogReader, m *metrics.LedgerMetrics) Service {
	return &service{
		tx:        tx,
		balances:  balances,
		documents: documents,
		catalog:   catalog,
		metrics:   m,
	}
}

func (s *service) observe(op string, start time.Time, err error) {
	s.metrics.ObserveDuration(op, time.Since(start))
	if err != nil {
		s.metrics.IncFailure(op)
		return
	}
	s.metrics.IncSuccess(op)
}

// CreateReceipt records an incoming delivery: the document is stored as a
// draft and every line is credited to its balance immediately.
func (s *service) CreateReceipt(ctx context.Context, input DocumentInput) (id uuid.UUID, err error) {
	start := time.Now()
	defer func() { s.observe("create_receipt", start, err) }()

	if err = validateQuantities(input.Items); err != nil {
		return uuid.Nil, err
	}

	docID := uuid.New()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		balances := s.balances.WithTx(tx)
		documents := s.documents.WithTx(tx)

		for _, item := range sortedInputs(input.Items) {
			if err := s.checkReceiptLine(ctx, item); err != nil {
				return err
			}
			if err := balances.ApplyDelta(ctx, item.ResourceID, item.UnitID, item.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "applying receipt balance")
			}
		}

		doc := &models.Document{
			ID:     docID,
			Kind:   enums.DocumentKindReceipt,
			Number: input.Number,
			Date:   input.Date,
			State:  enums.DocumentStateDraft,
			Items:  buildItems(docID, input.Items),
		}
		if err := documents.Create(ctx, doc); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating receipt document")
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return docID, nil
}

// EditReceipt replaces a draft receipt's header and lines. The old lines are
// reversed out of the balances and the new lines applied, all in one
// transaction, so concurrent readers only ever see the net difference.
// New lines are not checked against the catalog; only the document state and
// positive quantities gate an edit.
func (s *service) EditReceipt(ctx context.Context, id uuid.UUID, input DocumentInput) (err error) {
	start := time.Now()
	defer func() { s.observe("edit_receipt", start, err) }()

	if err = validateQuantities(input.Items); err != nil {
		return err
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		balances := s.balances.WithTx(tx)
		documents := s.documents.WithTx(tx)

		doc, err := s.loadDocument(ctx, documents, id, enums.DocumentKindReceipt)
		if err != nil {
			return err
		}
		if doc.State == enums.DocumentStateSigned {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "signed documents cannot be edited")
		}

		// Take every balance lock up front in a stable order so concurrent
		// edits touching overlapping pairs cannot deadlock.
		if err := lockPairs(ctx, balances, unionPairs(doc.Items, input.Items)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "locking balances")
		}

		for _, old := range doc.Items {
			balance, err := balances.GetForUpdate(ctx, old.ResourceID, old.UnitID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reversing receipt balance")
			}
			if balance == nil {
				continue
			}
			balance.Quantity = balance.Quantity.Sub(old.Quantity)
			if err := balances.Save(ctx, balance); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reversing receipt balance")
			}
		}

		for _, item := range sortedInputs(input.Items) {
			if err := balances.ApplyDelta(ctx, item.ResourceID, item.UnitID, item.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "applying receipt balance")
			}
		}

		if err := documents.ReplaceItems(ctx, doc.ID, buildItems(doc.ID, input.Items)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replacing receipt items")
		}
		if err := documents.UpdateHeader(ctx, doc.ID, input.Number, input.Date); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating receipt header")
		}
		return nil
	})
}

// CreateShipment records an outgoing order as a draft. Balances are not
// touched and lines are not checked against the catalog: stock only moves,
// and references only matter, when the shipment is signed.
func (s *service) CreateShipment(ctx context.Context, input DocumentInput) (id uuid.UUID, err error) {
	start := time.Now()
	defer func() { s.observe("create_shipment", start, err) }()

	if err = validateQuantities(input.Items); err != nil {
		return uuid.Nil, err
	}

	docID := uuid.New()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		doc := &models.Document{
			ID:     docID,
			Kind:   enums.DocumentKindShipment,
			Number: input.Number,
			Date:   input.Date,
			State:  enums.DocumentStateDraft,
			Items:  buildItems(docID, input.Items),
		}
		if err := s.documents.WithTx(tx).Create(ctx, doc); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating shipment document")
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return docID, nil
}

// SignShipment debits stock for a draft shipment in two phases: first every
// affected balance is locked and checked for sufficiency, then and only then
// the quantities are subtracted and the document marked signed. Any shortfall
// fails the whole operation before a single balance changes.
func (s *service) SignShipment(ctx context.Context, id uuid.UUID) (err error) {
	start := time.Now()
	defer func() { s.observe("sign_shipment", start, err) }()

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		balances := s.balances.WithTx(tx)
		documents := s.documents.WithTx(tx)

		doc, err := s.loadDocument(ctx, documents, id, enums.DocumentKindShipment)
		if err != nil {
			return err
		}
		if doc.State == enums.DocumentStateSigned {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "document is already signed")
		}
		if len(doc.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "an empty document cannot be signed")
		}

		required := aggregateByPair(doc.Items)

		locked := make(map[balancePair]*models.Balance, len(required))
		for _, pair := range sortedPairs(required) {
			balance, err := balances.GetForUpdate(ctx, pair.ResourceID, pair.UnitID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "locking balance")
			}

			available := decimal.Zero
			if balance != nil {
				available = balance.Quantity
			}
			if available.LessThan(required[pair]) {
				return pkgerrors.New(
					pkgerrors.CodeInsufficientStock,
					fmt.Sprintf("insufficient stock of resource %s: available %s, required %s",
						s.resourceLabel(ctx, pair.ResourceID), available.String(), required[pair].String()),
				)
			}
			locked[pair] = balance
		}

		for _, pair := range sortedPairs(required) {
			balance := locked[pair]
			balance.Quantity = balance.Quantity.Sub(required[pair])
			if err := balances.Save(ctx, balance); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "debiting balance")
			}
		}

		if err := documents.UpdateState(ctx, doc.ID, enums.DocumentStateSigned); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marking shipment signed")
		}
		return nil
	})
}

// UnsignShipment reverts a signed shipment: every debited quantity is
// credited back unconditionally and the document returns to draft.
func (s *service) UnsignShipment(ctx context.Context, id uuid.UUID) (err error) {
	start := time.Now()
	defer func() { s.observe("unsign_shipment", start, err) }()

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		balances := s.balances.WithTx(tx)
		documents := s.documents.WithTx(tx)

		doc, err := s.loadDocument(ctx, documents, id, enums.DocumentKindShipment)
		if err != nil {
			return err
		}
		if doc.State != enums.DocumentStateSigned {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "document is not signed")
		}

		required := aggregateByPair(doc.Items)
		for _, pair := range sortedPairs(required) {
			if err := balances.ApplyDelta(ctx, pair.ResourceID, pair.UnitID, required[pair]); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "crediting balance")
			}
		}

		if err := documents.UpdateState(ctx, doc.ID, enums.DocumentStateDraft); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marking shipment draft")
		}
		return nil
	})
}

func (s *service) GetDocument(ctx context.Context, id uuid.UUID, kind enums.DocumentKind) (*DocumentView, error) {
	doc, err := s.loadDocument(ctx, s.documents, id, kind)
	if err != nil {
		return nil, err
	}
	items, err := s.documents.ItemViews(ctx, doc.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading document items")
	}
	view := toDocumentView(doc)
	view.Items = items
	return &view, nil
}

func (s *service) ListDocuments(ctx context.Context, kind enums.DocumentKind, state *enums.DocumentState) ([]DocumentView, error) {
	docs, err := s.documents.List(ctx, kind, state)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing documents")
	}
	views := make([]DocumentView, 0, len(docs))
	for i := range docs {
		views = append(views, toDocumentView(&docs[i]))
	}
	return views, nil
}

func (s *service) ListBalances(ctx context.Context) ([]BalanceView, error) {
	views, err := s.balances.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing balances")
	}
	return views, nil
}

func (s *service) loadDocument(ctx context.Context, documents DocumentRepository, id uuid.UUID, kind enums.DocumentKind) (*models.Document, error) {
	doc, err := documents.FindByID(ctx, id, kind)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s %s not found", kind, id))
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading document")
	}
	return doc, nil
}

// checkReceiptLine verifies the line references a live resource and an
// existing unit. Only receipt creation validates references; edits and
// shipments persist their lines as given.
func (s *service) checkReceiptLine(ctx context.Context, item DocumentItemInput) error {
	resource, err := s.catalog.FindResource(ctx, item.ResourceID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("resource %s not found", item.ResourceID))
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading resource")
	}
	if resource.IsArchived {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("resource %q is archived", resource.Name))
	}

	if _, err := s.catalog.FindUnit(ctx, item.UnitID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unit %s not found", item.UnitID))
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading unit")
	}
	return nil
}

func (s *service) resourceLabel(ctx context.Context, resourceID uuid.UUID) string {
	resource, err := s.catalog.FindResource(ctx, resourceID)
	if err != nil || resource == nil {
		return resourceID.String()
	}
	return resource.Name
}

func validateQuantities(items []DocumentItemInput) error {
	for _, item := range items {
		if item.Quantity.Sign() <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be greater than zero")
		}
	}
	return nil
}

func buildItems(documentID uuid.UUID, items []DocumentItemInput) []models.DocumentItem {
	out := make([]models.DocumentItem, 0, len(items))
	for _, item := range items {
		out = append(out, models.DocumentItem{
			ID:         uuid.New(),
			DocumentID: documentID,
			ResourceID: item.ResourceID,
			UnitID:     item.UnitID,
			Quantity:   item.Quantity,
		})
	}
	return out
}

func toDocumentView(doc *models.Document) DocumentView {
	items := make([]DocumentItemView, 0, len(doc.Items))
	for _, item := range doc.Items {
		items = append(items, DocumentItemView{
			ResourceID: item.ResourceID,
			UnitID:     item.UnitID,
			Quantity:   item.Quantity,
		})
	}
	return DocumentView{
		ID:     doc.ID,
		Kind:   doc.Kind,
		Number: doc.Number,
		Date:   doc.Date,
		State:  doc.State,
		Items:  items,
	}
}

// balancePair identifies one balance row.
type balancePair struct {
	ResourceID uuid.UUID
	UnitID     uuid.UUID
}

func (p balancePair) less(other balancePair) bool {
	if p.ResourceID.String() != other.ResourceID.String() {
		return p.ResourceID.String() < other.ResourceID.String()
	}
	return p.UnitID.String() < other.UnitID.String()
}

// aggregateByPair sums quantities of lines sharing a (resource, unit) pair
// so sufficiency is checked against the document's total demand, not each
// line in isolation.
func aggregateByPair(items []models.DocumentItem) map[balancePair]decimal.Decimal {
	totals := make(map[balancePair]decimal.Decimal, len(items))
	for _, item := range items {
		pair := balancePair{ResourceID: item.ResourceID, UnitID: item.UnitID}
		totals[pair] = totals[pair].Add(item.Quantity)
	}
	return totals
}

func sortedPairs(totals map[balancePair]decimal.Decimal) []balancePair {
	pairs := make([]balancePair, 0, len(totals))
	for pair := range totals {
		pairs = append(pairs, pair)
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].less(pairs[j]) })
	return pairs
}

// sortedInputs returns the lines ordered by (resource, unit) so every
// transaction acquires balance locks in the same order.
func sortedInputs(items []DocumentItemInput) []DocumentItemInput {
	out := make([]DocumentItemInput, len(items))
	copy(out, items)
	sort.Slice(out, func(i, j int) bool {
		a := balancePair{ResourceID: out[i].ResourceID, UnitID: out[i].UnitID}
		b := balancePair{ResourceID: out[j].ResourceID, UnitID: out[j].UnitID}
		return a.less(b)
	})
	return out
}

func unionPairs(old []models.DocumentItem, next []DocumentItemInput) []balancePair {
	seen := make(map[balancePair]struct{}, len(old)+len(next))
	for _, item := range old {
		seen[balancePair{ResourceID: item.ResourceID, UnitID: item.UnitID}] = struct{}{}
	}
	for _, item := range next {
		seen[balancePair{ResourceID: item.ResourceID, UnitID: item.UnitID}] = struct{}{}
	}
	pairs := make([]balancePair, 0, len(seen))
	for pair := range seen {
		pairs = append(pairs, pair)
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].less(pairs[j]) })
	return pairs
}

func lockPairs(ctx context.Context, balances BalanceRepository, pairs []balancePair) error {
	for _, pair := range pairs {
		if _, err := balances.GetForUpdate(ctx, pair.ResourceID, pair.UnitID); err != nil {
			return err
		}
	}
	return nil
}
