package services

import (
	"errors"
	"strconv"

	"github.com/Cholifbima/Pemweb-Project-Besar-sub001/models"

	"gorm.io/gorm"
)

var ErrGameNotFound = errors.New("game not found")

// CatalogService 管理游戏目录和充值面额。
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

func (s *CatalogService) ListGames() ([]models.Game, error) {
	var games []models.Game
	err := s.db.Where("is_active = ?", true).
		Order("name ASC").
		Find(&games).Error
	return games, err
}

// GetGame 按 id 或 slug 查询, 带可购买的面额。
func (s *CatalogService) GetGame(idOrSlug string) (*models.Game, error) {
	var game models.Game
	query := s.db.Preload("TopupItems", "is_active = ?", true)
	if id, convErr := strconv.ParseUint(idOrSlug, 10, 64); convErr == nil {
		query = query.Where("id = ?", uint(id))
	} else {
		query = query.Where("slug = ?", idOrSlug)
	}
	err := query.First(&game).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrGameNotFound
	} else if err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *CatalogService) CreateGame(game *models.Game) error {
	return s.db.Create(game).Error
}

func (s *CatalogService) UpdateGame(id uint, updates map[string]interface{}) (*models.Game, error) {
	var game models.Game
	if err := s.db.First(&game, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	if err := s.db.Model(&game).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *CatalogService) DeleteGame(id uint) error {
	result := s.db.Delete(&models.Game{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrGameNotFound
	}
	return nil
}

func (s *CatalogService) CreateTopupItem(item *models.TopupItem) error {
	var count int64
	if err := s.db.Model(&models.Game{}).Where("id = ?", item.GameID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrGameNotFound
	}
	return s.db.Create(item).Error
}
