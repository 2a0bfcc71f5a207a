package services

import (
	"context"
	"time"

	"github.com/ellsondrew-png/inventory-system-tml/internal/models"
	"github.com/ellsondrew-png/inventory-system-tml/internal/money"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Dashboard is the summary shown on the back-office home page.
type Dashboard struct {
	Counts          map[string]int64       `json:"counts"`
	StockIn         int64                  `json:"stock_in"`
	StockOut        int64                  `json:"stock_out"`
	RecentMovements []models.StockMovement `json:"recent_movements"`
	LowStock        []models.Product       `json:"low_stock"`
	// MonthlyEarnings[0] is January of Year.
	MonthlyEarnings [12]decimal.Decimal `json:"monthly_earnings"`
	Year            int                 `json:"year"`
}

type DashboardService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db, now: time.Now}
}

func (s *DashboardService) Build(ctx context.Context) (*Dashboard, error) {
	conn := s.db.WithContext(ctx)
	d := &Dashboard{Counts: map[string]int64{}, Year: s.now().Year()}

	counted := map[string]any{
		"products":   &models.Product{},
		"categories": &models.Category{},
		"clients":    &models.Client{},
	}
	for name, m := range counted {
		var n int64
		if err := conn.Model(m).Count(&n).Error; err != nil {
			return nil, err
		}
		d.Counts[name] = n
	}
	for _, k := range models.Kinds() {
		spec, _ := k.Spec()
		var n int64
		if err := conn.Table(spec.Table).Count(&n).Error; err != nil {
			return nil, err
		}
		d.Counts[spec.Table] = n
	}

	var err error
	if d.StockIn, err = s.movedUnits(conn, models.MovementIn); err != nil {
		return nil, err
	}
	if d.StockOut, err = s.movedUnits(conn, models.MovementOut); err != nil {
		return nil, err
	}

	err = conn.Preload("Product").Order("created_at DESC, id DESC").Limit(5).Find(&d.RecentMovements).Error
	if err != nil {
		return nil, err
	}
	err = conn.Where("quantity < ?", models.LowStockThreshold).Order("quantity, name").Find(&d.LowStock).Error
	if err != nil {
		return nil, err
	}
	if err := s.earnings(conn, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DashboardService) movedUnits(conn *gorm.DB, kind models.MovementType) (int64, error) {
	var total int64
	err := conn.Model(&models.StockMovement{}).
		Where("movement_type = ?", kind).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	return total, err
}

// earnings sums stock-out quantity times current product price per month.
// Months are bucketed in Go so the query stays portable across drivers.
func (s *DashboardService) earnings(conn *gorm.DB, d *Dashboard) error {
	start := time.Date(d.Year, time.January, 1, 0, 0, 0, 0, time.Local)
	var rows []struct {
		CreatedAt time.Time
		Quantity  int
		Price     decimal.Decimal
	}
	err := conn.Table("stock_movements").
		Select("stock_movements.created_at, stock_movements.quantity, products.price").
		Joins("JOIN products ON products.id = stock_movements.product_id").
		Where("stock_movements.movement_type = ? AND stock_movements.created_at >= ? AND stock_movements.created_at < ?",
			models.MovementOut, start, start.AddDate(1, 0, 0)).
		Scan(&rows).Error
	if err != nil {
		return err
	}
	for i := range d.MonthlyEarnings {
		d.MonthlyEarnings[i] = decimal.Zero
	}
	for _, r := range rows {
		m := r.CreatedAt.In(start.Location()).Month() - 1
		d.MonthlyEarnings[m] = d.MonthlyEarnings[m].Add(money.LineAmount(r.Quantity, r.Price))
	}
	return nil
}
