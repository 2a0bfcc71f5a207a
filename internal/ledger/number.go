package ledger

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/ellsondrew-png/inventory-system-tml/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FormatNumber renders a sequence value as the human number, e.g. INV-4395.
func FormatNumber(spec models.KindSpec, n int) string {
	return fmt.Sprintf("%s%04d", spec.Prefix, n)
}

// ParseNumber returns the numeric suffix after the last '-'. ok is false
// for an empty or non-numeric suffix.
func ParseNumber(number string) (n int, ok bool) {
	i := strings.LastIndexByte(number, '-')
	suffix := number[i+1:]
	if suffix == "" {
		return 0, false
	}
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Sequencer hands out document numbers from the document_sequences table.
// Allocate must run inside the transaction that inserts the document so a
// rolled back document also rolls back its number.
type Sequencer struct {
	Logf func(format string, args ...any)
}

func NewSequencer() *Sequencer {
	return &Sequencer{Logf: log.Printf}
}

// Allocate returns the next unused number for kind.
func (s *Sequencer) Allocate(tx *gorm.DB, kind models.DocumentKind) (string, error) {
	spec, ok := kind.Spec()
	if !ok {
		return "", ErrUnknownKind
	}
	if err := s.ensure(tx, spec); err != nil {
		return "", err
	}
	for {
		n, err := s.next(tx, spec.Kind)
		if err != nil {
			return "", err
		}
		number := FormatNumber(spec, n)
		var taken int64
		if err := tx.Table(spec.Table).Where("number = ?", number).Count(&taken).Error; err != nil {
			return "", fmt.Errorf("check %s: %w", number, err)
		}
		if taken == 0 {
			return number, nil
		}
		s.Logf("[ledger] WARN %s already issued outside the sequence, skipping", number)
	}
}

// next increments the counter row. On Postgres the UPDATE holds the row
// lock until commit, serializing concurrent allocations for one kind.
func (s *Sequencer) next(tx *gorm.DB, kind models.DocumentKind) (int, error) {
	res := tx.Model(&models.DocumentSequence{}).
		Where("kind = ?", kind).
		UpdateColumn("last_value", gorm.Expr("last_value + 1"))
	if res.Error != nil {
		return 0, fmt.Errorf("advance %s sequence: %w", kind, res.Error)
	}
	if res.RowsAffected != 1 {
		return 0, fmt.Errorf("advance %s sequence: no counter row", kind)
	}
	var seq models.DocumentSequence
	if err := tx.Where("kind = ?", kind).Take(&seq).Error; err != nil {
		return 0, fmt.Errorf("read %s sequence: %w", kind, err)
	}
	return seq.LastValue, nil
}

// ensure creates the counter row on first use, starting from the most
// recently created stored number so existing data keeps its sequence.
func (s *Sequencer) ensure(tx *gorm.DB, spec models.KindSpec) error {
	var count int64
	if err := tx.Model(&models.DocumentSequence{}).Where("kind = ?", spec.Kind).Count(&count).Error; err != nil {
		return fmt.Errorf("load %s sequence: %w", spec.Kind, err)
	}
	if count > 0 {
		return nil
	}
	start, err := s.lastIssued(tx, spec)
	if err != nil {
		return err
	}
	row := models.DocumentSequence{Kind: spec.Kind, LastValue: start}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return fmt.Errorf("create %s sequence: %w", spec.Kind, err)
	}
	return nil
}

// lastIssued parses the newest stored number. A missing or malformed
// number yields the kind's seed.
func (s *Sequencer) lastIssued(tx *gorm.DB, spec models.KindSpec) (int, error) {
	var numbers []string
	err := tx.Table(spec.Table).
		Where("number <> ''").
		Order("created_at DESC, id DESC").
		Limit(1).
		Pluck("number", &numbers).Error
	if err != nil {
		return 0, fmt.Errorf("load last %s number: %w", spec.Kind, err)
	}
	if len(numbers) == 0 {
		return spec.Seed, nil
	}
	n, ok := ParseNumber(numbers[0])
	if !ok {
		s.Logf("[ledger] WARN malformed %s number %q, falling back to seed %d", spec.Kind, numbers[0], spec.Seed)
		return spec.Seed, nil
	}
	return n, nil
}
