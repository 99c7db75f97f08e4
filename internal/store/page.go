package store

import (
	"gorm.io/gorm"

	"github.com/imrishuroy/easyorder/internal/apperr"
	"github.com/imrishuroy/easyorder/internal/config"
)

// Page is a normalised offset/limit window.
type Page struct {
	Offset int
	Limit  int
}

// Paging holds the limits from configuration.
type Paging struct {
	DefaultLimit int
	MaxLimit     int
}

func NewPaging(cfg config.PaginationConfig) Paging {
	return Paging{DefaultLimit: cfg.DefaultLimit, MaxLimit: cfg.MaxLimit}
}

// Page validates and normalises a requested window: a zero limit takes the
// default and limits above the maximum are clamped.
func (p Paging) Page(offset, limit int) (Page, error) {
	if offset < 0 {
		return Page{}, apperr.Validation("offset must be >= 0, got %d", offset)
	}
	if limit < 0 {
		return Page{}, apperr.Validation("limit must be >= 0, got %d", limit)
	}
	if limit == 0 {
		limit = p.DefaultLimit
	}
	if p.MaxLimit > 0 && limit > p.MaxLimit {
		limit = p.MaxLimit
	}
	return Page{Offset: offset, Limit: limit}, nil
}

// Scope applies the window to a query ordered by primary key.
func (p Page) Scope(tx *gorm.DB) *gorm.DB {
	return tx.Order("id").Offset(p.Offset).Limit(p.Limit)
}
