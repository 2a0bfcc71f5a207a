package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ellsondrew-png/inventory-system-tml/internal/db"
	"github.com/ellsondrew-png/inventory-system-tml/internal/models"
	"github.com/ellsondrew-png/inventory-system-tml/internal/money"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Document is implemented by the four sales document models.
type Document interface {
	Header() *models.DocumentHeader
	Kind() models.DocumentKind
	Lines() []models.LineItem
	Fields() []models.Field
}

// Item is implemented by the four document item models.
type Item interface {
	Line() *models.LineItem
	SetDocumentID(id uint)
}

// DocPtr constrains PD to *D implementing Document.
type DocPtr[D any] interface {
	*D
	Document
}

// ItemPtr constrains PI to *I implementing Item.
type ItemPtr[I any] interface {
	*I
	Item
}

// invoiceLinked documents copy the order number of the invoice they reference.
type invoiceLinked interface {
	LinkedInvoice() *uint
	SetOrderNumber(string)
}

// Book runs the ledger operations for one document kind. D is the document
// model and I its item model; PD and PI are inferred.
type Book[D any, I any, PD DocPtr[D], PI ItemPtr[I]] struct {
	db   *gorm.DB
	seq  *Sequencer
	spec models.KindSpec
	now  func() time.Time
}

func NewBook[D any, I any, PD DocPtr[D], PI ItemPtr[I]](conn *gorm.DB, seq *Sequencer) *Book[D, I, PD, PI] {
	spec, ok := PD(new(D)).Kind().Spec()
	if !ok {
		panic(fmt.Sprintf("ledger: no kind spec for %T", new(D)))
	}
	return &Book[D, I, PD, PI]{db: conn, seq: seq, spec: spec, now: time.Now}
}

// Spec describes the kind this book manages.
func (b *Book[D, I, PD, PI]) Spec() models.KindSpec { return b.spec }

// CreateDocument returns an unnumbered, unsaved document with zero totals.
func (b *Book[D, I, PD, PI]) CreateDocument(clientID uint, preparedBy string) PD {
	doc := PD(new(D))
	h := doc.Header()
	h.ClientID = clientID
	h.PreparedBy = preparedBy
	h.Date = b.now()
	h.SetTotals(money.Recompute())
	return doc
}

// Persist allocates the number on first save, recomputes totals from the
// stored items and writes the header.
func (b *Book[D, I, PD, PI]) Persist(ctx context.Context, doc PD) error {
	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return b.persist(tx, doc)
	})
}

// ReplaceItems deletes every item of doc, stores the valid inputs numbered
// from 1 and recomputes totals. It returns how many inputs were skipped.
func (b *Book[D, I, PD, PI]) ReplaceItems(ctx context.Context, doc PD, inputs []ItemInput) (int, error) {
	var skipped int
	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		skipped, err = b.replaceItems(tx, doc, inputs)
		return err
	})
	return skipped, err
}

// Save creates or edits doc together with its full item set in one
// transaction.
func (b *Book[D, I, PD, PI]) Save(ctx context.Context, doc PD, inputs []ItemInput) (int, error) {
	var skipped int
	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := b.persist(tx, doc); err != nil {
			return err
		}
		var err error
		skipped, err = b.replaceItems(tx, doc, inputs)
		return err
	})
	return skipped, err
}

// AddItem appends one line after the current highest item number.
func (b *Book[D, I, PD, PI]) AddItem(ctx context.Context, doc PD, in ItemInput) (PI, error) {
	accepted, _ := ValidateItems([]ItemInput{in})
	if len(accepted) == 0 {
		return nil, ErrInvalidItem
	}
	item := PI(new(I))
	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		h := doc.Header()
		if !h.Persisted() {
			if err := b.persist(tx, doc); err != nil {
				return err
			}
		}
		n, err := NextItemNumber(tx, b.spec, h.ID)
		if err != nil {
			return err
		}
		item.SetDocumentID(h.ID)
		*item.Line() = accepted[0].line(n)
		if err := tx.Create(item).Error; err != nil {
			return fmt.Errorf("add %s item: %w", b.spec.Kind, err)
		}
		return b.persist(tx, doc)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem removes one item and recomputes totals. Other items keep
// their numbers.
func (b *Book[D, I, PD, PI]) DeleteItem(ctx context.Context, doc PD, itemID uint) error {
	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		h := doc.Header()
		if !h.Persisted() {
			return ErrNotPersisted
		}
		res := tx.Where("id = ? AND "+b.spec.ParentColumn+" = ?", itemID, h.ID).Delete(PI(new(I)))
		if res.Error != nil {
			return fmt.Errorf("delete %s item: %w", b.spec.Kind, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrItemNotFound
		}
		return b.persist(tx, doc)
	})
}

// DeleteDocument removes doc and its items.
func (b *Book[D, I, PD, PI]) DeleteDocument(ctx context.Context, doc PD) error {
	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		h := doc.Header()
		if !h.Persisted() {
			return ErrNotPersisted
		}
		if err := tx.Where(b.spec.ParentColumn+" = ?", h.ID).Delete(PI(new(I))).Error; err != nil {
			return fmt.Errorf("delete %s items: %w", b.spec.Kind, err)
		}
		res := tx.Omit(clause.Associations).Delete(doc)
		if res.Error != nil {
			return fmt.Errorf("delete %s: %w", b.spec.Kind, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrDocumentNotFound
		}
		return nil
	})
}

// Get loads a document with its client and items ordered by item number.
func (b *Book[D, I, PD, PI]) Get(ctx context.Context, id uint) (PD, error) {
	doc := PD(new(D))
	err := b.db.WithContext(ctx).
		Preload("Client").
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("item_number") }).
		First(doc, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load %s %d: %w", b.spec.Kind, id, err)
	}
	return doc, nil
}

// ListQuery pages and filters List.
type ListQuery struct {
	Limit    int
	Page     int
	Search   string // substring of the document number
	ClientID uint
}

func (q ListQuery) normalized() ListQuery {
	if q.Limit <= 0 || q.Limit > 200 {
		q.Limit = 50
	}
	if q.Page < 1 {
		q.Page = 1
	}
	return q
}

// Offset is the row offset of the page.
func (q ListQuery) Offset() int { return (q.Page - 1) * q.Limit }

// List returns one page of documents, newest first, and the total count.
func (b *Book[D, I, PD, PI]) List(ctx context.Context, q ListQuery) ([]D, int64, ListQuery, error) {
	q = q.normalized()
	base := b.db.WithContext(ctx).Model(PD(new(D)))
	if s := strings.TrimSpace(q.Search); s != "" {
		base = base.Where("LOWER(number) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if q.ClientID != 0 {
		base = base.Where("client_id = ?", q.ClientID)
	}
	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, q, fmt.Errorf("count %s: %w", b.spec.Kind, err)
	}
	var docs []D
	err := base.Session(&gorm.Session{}).
		Preload("Client").
		Order("created_at DESC, id DESC").
		Limit(q.Limit).Offset(q.Offset()).
		Find(&docs).Error
	if err != nil {
		return nil, 0, q, fmt.Errorf("list %s: %w", b.spec.Kind, err)
	}
	return docs, total, q, nil
}

func (b *Book[D, I, PD, PI]) persist(tx *gorm.DB, doc PD) error {
	h := doc.Header()
	if err := b.checkClient(tx, h.ClientID); err != nil {
		return err
	}
	if err := b.linkInvoice(tx, doc); err != nil {
		return err
	}
	if h.Date.IsZero() {
		h.Date = b.now()
	}

	if !h.Persisted() {
		if h.Number == "" {
			number, err := b.seq.Allocate(tx, b.spec.Kind)
			if err != nil {
				return err
			}
			h.Number = number
		}
		h.SetTotals(money.Recompute())
		if err := tx.Omit(clause.Associations).Create(doc).Error; err != nil {
			if db.IsUniqueViolation(err) {
				return fmt.Errorf("%w: %s", ErrDuplicateNumber, h.Number)
			}
			return fmt.Errorf("create %s: %w", b.spec.Kind, err)
		}
		return nil
	}

	var stored struct{ Number string }
	err := tx.Model(PD(new(D))).Select("number").Where("id = ?", h.ID).Take(&stored).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrDocumentNotFound
	}
	if err != nil {
		return fmt.Errorf("load %s %d: %w", b.spec.Kind, h.ID, err)
	}
	// Numbers are immutable once issued.
	h.Number = stored.Number

	totals, err := b.recompute(tx, h.ID)
	if err != nil {
		return err
	}
	h.SetTotals(totals)
	err = tx.Model(doc).
		Select("*").
		Omit("id", "created_at", clause.Associations).
		Updates(doc).Error
	if err != nil {
		return fmt.Errorf("update %s %s: %w", b.spec.Kind, h.Number, err)
	}
	return nil
}

// recompute derives totals from the items currently stored for the document.
func (b *Book[D, I, PD, PI]) recompute(tx *gorm.DB, documentID uint) (money.Totals, error) {
	var items []I
	if err := tx.Where(b.spec.ParentColumn+" = ?", documentID).Find(&items).Error; err != nil {
		return money.Totals{}, fmt.Errorf("load %s items: %w", b.spec.Kind, err)
	}
	amounts := make([]decimal.Decimal, len(items))
	for i := range items {
		amounts[i] = PI(&items[i]).Line().Amount
	}
	return money.Recompute(amounts...), nil
}

func (b *Book[D, I, PD, PI]) replaceItems(tx *gorm.DB, doc PD, inputs []ItemInput) (int, error) {
	h := doc.Header()
	if !h.Persisted() {
		return 0, ErrNotPersisted
	}
	accepted, skipped := ValidateItems(inputs)
	if err := tx.Where(b.spec.ParentColumn+" = ?", h.ID).Delete(PI(new(I))).Error; err != nil {
		return 0, fmt.Errorf("clear %s items: %w", b.spec.Kind, err)
	}
	if len(accepted) > 0 {
		first, err := NextItemNumber(tx, b.spec, h.ID)
		if err != nil {
			return 0, err
		}
		items := make([]I, len(accepted))
		for i, in := range accepted {
			it := PI(&items[i])
			*it.Line() = in.line(first + i)
			it.SetDocumentID(h.ID)
		}
		if err := tx.Create(&items).Error; err != nil {
			return 0, fmt.Errorf("insert %s items: %w", b.spec.Kind, err)
		}
	}
	return skipped, b.persist(tx, doc)
}

func (b *Book[D, I, PD, PI]) checkClient(tx *gorm.DB, clientID uint) error {
	if clientID == 0 {
		return ErrClientNotFound
	}
	var n int64
	if err := tx.Model(&models.Client{}).Where("id = ?", clientID).Count(&n).Error; err != nil {
		return fmt.Errorf("check client: %w", err)
	}
	if n == 0 {
		return ErrClientNotFound
	}
	return nil
}

func (b *Book[D, I, PD, PI]) linkInvoice(tx *gorm.DB, doc PD) error {
	linked, ok := any(doc).(invoiceLinked)
	if !ok || linked.LinkedInvoice() == nil {
		return nil
	}
	var inv models.Invoice
	err := tx.Select("id", "order_number").Take(&inv, *linked.LinkedInvoice()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInvoiceNotFound
	}
	if err != nil {
		return fmt.Errorf("load invoice: %w", err)
	}
	linked.SetOrderNumber(inv.OrderNumber)
	return nil
}
