package repo

import (
	"context"
	"errors"
	"sort"
	"strconv"

	"gorm.io/gorm"

	"github.com/webservicios/backoffice/internal/models"
)

// The asset and service collections are deliberately near-identical tables;
// the query sets below mirror each other field for field.

func (r *GormRepo) GetAsset(ctx context.Context, id uint) (*models.Asset, error) {
	var asset models.Asset
	if err := r.DB.WithContext(ctx).First(&asset, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &asset, nil
}

func (r *GormRepo) ListAssets(ctx context.Context, offset, limit int) (int64, []models.Asset, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Asset{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}
	var items []models.Asset
	err := r.DB.WithContext(ctx).Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error
	if err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) AssetYears(ctx context.Context) ([]string, error) {
	var years []string
	err := r.DB.WithContext(ctx).Model(&models.Asset{}).Distinct("year").Pluck("year", &years).Error
	if err != nil {
		return nil, err
	}
	return sortYearsDesc(years), nil
}

func (r *GormRepo) AssetsByYear(ctx context.Context, year string) ([]models.Asset, error) {
	var items []models.Asset
	err := r.DB.WithContext(ctx).Where("year = ?", year).Order("published_at DESC").Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) AssetsByPublisher(ctx context.Context, publisher string) ([]models.Asset, error) {
	var items []models.Asset
	err := r.DB.WithContext(ctx).Where("publisher = ?", publisher).Order("published_at DESC").Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) CreateAsset(ctx context.Context, asset *models.Asset) error {
	return r.DB.WithContext(ctx).Create(asset).Error
}

func (r *GormRepo) UpdateAsset(ctx context.Context, asset *models.Asset) error {
	return r.DB.WithContext(ctx).Save(asset).Error
}

func (r *GormRepo) DeleteAsset(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Asset{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) GetServiceEntry(ctx context.Context, id uint) (*models.ServiceEntry, error) {
	var entry models.ServiceEntry
	if err := r.DB.WithContext(ctx).First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (r *GormRepo) ListServiceEntries(ctx context.Context, offset, limit int) (int64, []models.ServiceEntry, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.ServiceEntry{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}
	var items []models.ServiceEntry
	err := r.DB.WithContext(ctx).Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error
	if err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) ServiceYears(ctx context.Context) ([]string, error) {
	var years []string
	err := r.DB.WithContext(ctx).Model(&models.ServiceEntry{}).Distinct("year").Pluck("year", &years).Error
	if err != nil {
		return nil, err
	}
	return sortYearsDesc(years), nil
}

func (r *GormRepo) ServiceEntriesByYear(ctx context.Context, year string) ([]models.ServiceEntry, error) {
	var items []models.ServiceEntry
	err := r.DB.WithContext(ctx).Where("year = ?", year).Order("published_at DESC").Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) ServiceEntriesByPublisher(ctx context.Context, publisher string) ([]models.ServiceEntry, error) {
	var items []models.ServiceEntry
	err := r.DB.WithContext(ctx).Where("publisher = ?", publisher).Order("published_at DESC").Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) CreateServiceEntry(ctx context.Context, entry *models.ServiceEntry) error {
	return r.DB.WithContext(ctx).Create(entry).Error
}

func (r *GormRepo) UpdateServiceEntry(ctx context.Context, entry *models.ServiceEntry) error {
	return r.DB.WithContext(ctx).Save(entry).Error
}

func (r *GormRepo) DeleteServiceEntry(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.ServiceEntry{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// sortYearsDesc orders the year strings newest first, numerically where
// possible.
func sortYearsDesc(years []string) []string {
	sort.Slice(years, func(i, j int) bool {
		a, errA := strconv.Atoi(years[i])
		b, errB := strconv.Atoi(years[j])
		if errA == nil && errB == nil {
			return a > b
		}
		return years[i] > years[j]
	})
	return years
}
