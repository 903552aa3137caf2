package dao

import (
	"context"

	"starlit/starlit/sources/psql/models"

	"gorm.io/gorm"
)

type ExchangeDAO struct {
	DB *gorm.DB
}

func NewExchangeDAO(db *gorm.DB) *ExchangeDAO {
	return &ExchangeDAO{DB: db}
}

// Append writes one immutable exchange. The answer goes in atomically with
// the query; a half-completed exchange is never persisted.
func (dao *ExchangeDAO) Append(ctx context.Context, userID int, query, answer string) (*models.Exchange, error) {
	exchange := models.Exchange{
		UserID:      userID,
		UserMessage: query,
		AIMessage:   answer,
	}
	err := dao.DB.WithContext(ctx).Create(&exchange).Error
	if err != nil {
		return nil, err
	}
	return &exchange, nil
}

// ListByUser returns the user's exchanges ascending by creation time.
// No history is an empty slice, not an error.
func (dao *ExchangeDAO) ListByUser(ctx context.Context, userID int) ([]models.Exchange, error) {
	exchanges := []models.Exchange{}
	err := dao.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&exchanges).Error
	if err != nil {
		return nil, err
	}
	return exchanges, nil
}
