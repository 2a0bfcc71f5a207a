package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/ellsondrew-png/inventory-system-tml/internal/db"
	"github.com/ellsondrew-png/inventory-system-tml/internal/models"
	"github.com/ellsondrew-png/inventory-system-tml/internal/money"
	"github.com/ellsondrew-png/inventory-system-tml/internal/storage"
	"gorm.io/gorm"
)

// InventoryService manages categories, products and stock movements.
type InventoryService struct {
	db     *gorm.DB
	images storage.ImageStore
}

// NewInventoryService returns a service; images may be nil when product
// images are disabled.
func NewInventoryService(db *gorm.DB, images storage.ImageStore) *InventoryService {
	return &InventoryService{db: db, images: images}
}

// --- categories ---

func (s *InventoryService) Categories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	err := s.db.WithContext(ctx).Order("name").Find(&cats).Error
	return cats, err
}

func (s *InventoryService) Category(ctx context.Context, id uint) (*models.Category, error) {
	var c models.Category
	err := s.db.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *InventoryService) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	c := models.Category{Name: strings.TrimSpace(name)}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrDuplicateCategory
		}
		return nil, err
	}
	return &c, nil
}

func (s *InventoryService) RenameCategory(ctx context.Context, id uint, name string) (*models.Category, error) {
	c, err := s.Category(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name = strings.TrimSpace(name)
	if err := s.db.WithContext(ctx).Model(c).Update("name", c.Name).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrDuplicateCategory
		}
		return nil, err
	}
	return c, nil
}

// DeleteCategory removes the category and its products.
func (s *InventoryService) DeleteCategory(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var productIDs []uint
		if err := tx.Model(&models.Product{}).Where("category_id = ?", id).Pluck("id", &productIDs).Error; err != nil {
			return err
		}
		if len(productIDs) > 0 {
			if err := tx.Where("product_id IN ?", productIDs).Delete(&models.StockMovement{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", productIDs).Delete(&models.Product{}).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&models.Category{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrCategoryNotFound
		}
		return nil
	})
}

// --- products ---

// ProductFilter narrows Products.
type ProductFilter struct {
	Search     string
	CategoryID uint
	LowStock   bool
	Page       Page
}

func (s *InventoryService) Products(ctx context.Context, f ProductFilter) ([]models.Product, int64, error) {
	page := f.Page.normalized()
	q := s.db.WithContext(ctx).Model(&models.Product{})
	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(brand) LIKE ? OR barcode LIKE ?", like, like, like)
	}
	if f.CategoryID != 0 {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.LowStock {
		q = q.Where("quantity < ?", models.LowStockThreshold)
	}
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var products []models.Product
	err := q.Session(&gorm.Session{}).Preload("Category").
		Order("name").Limit(page.Limit).Offset(page.offset()).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	for i := range products {
		s.decorate(&products[i])
	}
	return products, total, nil
}

func (s *InventoryService) Product(ctx context.Context, id uint) (*models.Product, error) {
	return s.findProduct(s.db.WithContext(ctx).Where("id = ?", id))
}

// LookupBarcode finds the product carrying barcode.
func (s *InventoryService) LookupBarcode(ctx context.Context, barcode string) (*models.Product, error) {
	return s.findProduct(s.db.WithContext(ctx).Where("barcode = ?", strings.TrimSpace(barcode)))
}

func (s *InventoryService) findProduct(q *gorm.DB) (*models.Product, error) {
	var p models.Product
	err := q.Preload("Category").First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	s.decorate(&p)
	return &p, nil
}

func (s *InventoryService) CreateProduct(ctx context.Context, p *models.Product) error {
	p.ID = 0
	p.Price = money.Round(p.Price)
	if p.Quantity < 0 {
		return ErrInvalidQuantity
	}
	if err := s.checkCategory(ctx, p.CategoryID); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Omit("Category").Create(p).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return ErrDuplicateBarcode
		}
		return err
	}
	return nil
}

// UpdateProduct overwrites the descriptive fields of product id. Quantity
// only changes through stock movements.
func (s *InventoryService) UpdateProduct(ctx context.Context, id uint, p *models.Product) error {
	if err := s.checkCategory(ctx, p.CategoryID); err != nil {
		return err
	}
	p.Price = money.Round(p.Price)
	res := s.db.WithContext(ctx).Model(&models.Product{ID: id}).
		Select("name", "designation", "brand", "barcode", "category_id", "price").
		Updates(p)
	if res.Error != nil {
		if db.IsUniqueViolation(res.Error) {
			return ErrDuplicateBarcode
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	p.ID = id
	return nil
}

func (s *InventoryService) DeleteProduct(ctx context.Context, id uint) error {
	var key string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := tx.Select("id", "image_key").First(&p, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}
		key = p.ImageKey
		if err := tx.Where("product_id = ?", id).Delete(&models.StockMovement{}).Error; err != nil {
			return err
		}
		return tx.Delete(&p).Error
	})
	if err != nil {
		return err
	}
	s.dropImage(ctx, key)
	return nil
}

// SetImage stores a new product image and replaces the previous one.
func (s *InventoryService) SetImage(ctx context.Context, id uint, filename, contentType string, r io.Reader) (*models.Product, error) {
	if s.images == nil {
		return nil, storage.ErrNotConfigured
	}
	p, err := s.Product(ctx, id)
	if err != nil {
		return nil, err
	}
	key, err := s.images.Put(ctx, filename, contentType, r)
	if err != nil {
		return nil, err
	}
	old := p.ImageKey
	if err := s.db.WithContext(ctx).Model(p).Update("image_key", key).Error; err != nil {
		s.dropImage(ctx, key)
		return nil, err
	}
	s.dropImage(ctx, old)
	p.ImageKey = key
	s.decorate(p)
	return p, nil
}

func (s *InventoryService) dropImage(ctx context.Context, key string) {
	if key == "" || s.images == nil {
		return
	}
	if err := s.images.Delete(ctx, key); err != nil {
		log.Printf("[inventory] WARN delete image %s: %v", key, err)
	}
}

func (s *InventoryService) decorate(p *models.Product) {
	if p.ImageKey != "" && s.images != nil {
		p.ImageURL = s.images.URL(p.ImageKey)
	}
}

func (s *InventoryService) checkCategory(ctx context.Context, id uint) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// --- stock ---

// StockIn adds qty units to the product and records the movement.
func (s *InventoryService) StockIn(ctx context.Context, productID uint, qty int, userID uint) (*models.StockMovement, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	return s.move(ctx, productID, models.MovementIn, qty, "", userID)
}

// StockOut removes qty units for one of the accepted reasons.
func (s *InventoryService) StockOut(ctx context.Context, productID uint, qty int, reason string, userID uint) (*models.StockMovement, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	if !validReason(reason) {
		return nil, ErrReasonRequired
	}
	return s.move(ctx, productID, models.MovementOut, qty, reason, userID)
}

func validReason(reason string) bool {
	for _, r := range models.StockOutReasons() {
		if r == reason {
			return true
		}
	}
	return false
}

func (s *InventoryService) move(ctx context.Context, productID uint, kind models.MovementType, qty int, reason string, userID uint) (*models.StockMovement, error) {
	var mv models.StockMovement
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		delta := gorm.Expr("quantity + ?", qty)
		q := tx.Model(&models.Product{}).Where("id = ?", productID)
		if kind == models.MovementOut {
			delta = gorm.Expr("quantity - ?", qty)
			q = q.Where("quantity >= ?", qty)
		}
		res := q.UpdateColumn("quantity", delta)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var n int64
			if err := tx.Model(&models.Product{}).Where("id = ?", productID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return ErrProductNotFound
			}
			return ErrInsufficientStock
		}

		var after int
		if err := tx.Model(&models.Product{}).Where("id = ?", productID).Select("quantity").Scan(&after).Error; err != nil {
			return err
		}
		before := after - qty
		if kind == models.MovementOut {
			before = after + qty
		}
		mv = models.StockMovement{
			ProductID:      productID,
			MovementType:   kind,
			Quantity:       qty,
			Reason:         reason,
			QuantityBefore: before,
			QuantityAfter:  after,
		}
		if userID != 0 {
			mv.PerformedByID = &userID
		}
		if err := tx.Create(&mv).Error; err != nil {
			return fmt.Errorf("record movement: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[inventory] %s %d x product %d (%d -> %d)", kind, qty, productID, mv.QuantityBefore, mv.QuantityAfter)
	return &mv, nil
}

// MovementFilter narrows Movements. Zero fields match everything.
type MovementFilter struct {
	ProductID uint
	Type      models.MovementType
	Page      Page
}

// Movements lists stock movements, newest first.
func (s *InventoryService) Movements(ctx context.Context, f MovementFilter) ([]models.StockMovement, int64, error) {
	page := f.Page.normalized()
	q := s.db.WithContext(ctx).Model(&models.StockMovement{})
	if f.ProductID != 0 {
		q = q.Where("product_id = ?", f.ProductID)
	}
	if f.Type != "" {
		q = q.Where("movement_type = ?", f.Type)
	}
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var mvs []models.StockMovement
	err := q.Session(&gorm.Session{}).
		Preload("Product").Preload("PerformedBy").
		Order("created_at DESC, id DESC").
		Limit(page.Limit).Offset(page.offset()).
		Find(&mvs).Error
	return mvs, total, err
}
