package vehicle

import (
	"context"
	"fmt"
	"strings"

	"github.com/SwiftSoko/SwiftSoko/internal/common/apperr"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) withCtx(ctx context.Context) *gorm.DB {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.WithContext(ctx)
}

// Entry 字典条目的统一视图。
type Entry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Add 新增一个字典条目。
func (r *Repo) Add(ctx context.Context, kind Kind, name, makeName string) (*Entry, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("name required")
	}

	id := uuid.NewString()
	var err error
	switch kind {
	case KindColor:
		err = db.Create(&Color{ID: id, Name: name}).Error
	case KindMake:
		err = db.Create(&Make{ID: id, Name: name}).Error
	case KindType:
		err = db.Create(&Type{ID: id, Name: name}).Error
	case KindModel:
		err = db.Create(&Model{ID: id, Name: name, MakeName: strings.TrimSpace(makeName)}).Error
	default:
		return nil, apperr.Newf(apperr.KindValidation, "unknown catalog kind %q", kind)
	}
	if err != nil {
		return nil, err
	}
	return &Entry{ID: id, Name: name}, nil
}

// List 列出某类别的全部条目。
func (r *Repo) List(ctx context.Context, kind Kind) ([]Entry, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}

	var out []Entry
	var err error
	switch kind {
	case KindColor:
		err = db.Model(&Color{}).Order("name ASC").Find(&out).Error
	case KindMake:
		err = db.Model(&Make{}).Order("name ASC").Find(&out).Error
	case KindType:
		err = db.Model(&Type{}).Order("name ASC").Find(&out).Error
	case KindModel:
		err = db.Model(&Model{}).Order("name ASC").Find(&out).Error
	default:
		return nil, apperr.Newf(apperr.KindValidation, "unknown catalog kind %q", kind)
	}
	return out, err
}
