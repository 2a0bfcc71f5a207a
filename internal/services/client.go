package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ellsondrew-png/inventory-system-tml/internal/models"
	"gorm.io/gorm"
)

type ClientService struct {
	db *gorm.DB
}

func NewClientService(db *gorm.DB) *ClientService {
	return &ClientService{db: db}
}

// List returns clients ordered by name, optionally filtered by a
// case-insensitive substring of name or email.
func (s *ClientService) List(ctx context.Context, search string, page Page) ([]models.Client, int64, error) {
	page = page.normalized()
	q := s.db.WithContext(ctx).Model(&models.Client{})
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var clients []models.Client
	err := q.Session(&gorm.Session{}).Order("name").Limit(page.Limit).Offset(page.offset()).Find(&clients).Error
	return clients, total, err
}

func (s *ClientService) Get(ctx context.Context, id uint) (*models.Client, error) {
	var c models.Client
	err := s.db.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ClientService) Create(ctx context.Context, c *models.Client) error {
	c.ID = 0
	return s.db.WithContext(ctx).Create(c).Error
}

// Update overwrites the editable fields of client id with c.
func (s *ClientService) Update(ctx context.Context, id uint, c *models.Client) error {
	res := s.db.WithContext(ctx).Model(&models.Client{ID: id}).
		Select("name", "po_box", "location", "telephone", "email", "pin").
		Updates(c)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrClientNotFound
	}
	c.ID = id
	return nil
}

// Delete removes the client together with every document addressed to it
// and their items.
func (s *ClientService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, k := range models.Kinds() {
			spec, _ := k.Spec()
			var ids []uint
			if err := tx.Table(spec.Table).Where("client_id = ?", id).Pluck("id", &ids).Error; err != nil {
				return fmt.Errorf("load %s: %w", k, err)
			}
			if len(ids) == 0 {
				continue
			}
			if err := tx.Exec("DELETE FROM "+spec.ItemTable+" WHERE "+spec.ParentColumn+" IN ?", ids).Error; err != nil {
				return fmt.Errorf("delete %s items: %w", k, err)
			}
			if k == models.KindInvoice {
				for _, linked := range []string{"delivery_notes", "credit_notes"} {
					err := tx.Exec("UPDATE "+linked+" SET invoice_id = NULL WHERE invoice_id IN ?", ids).Error
					if err != nil {
						return fmt.Errorf("detach %s: %w", linked, err)
					}
				}
			}
			if err := tx.Exec("DELETE FROM "+spec.Table+" WHERE id IN ?", ids).Error; err != nil {
				return fmt.Errorf("delete %s: %w", k, err)
			}
		}
		res := tx.Delete(&models.Client{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrClientNotFound
		}
		return nil
	})
}
