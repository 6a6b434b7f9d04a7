package menu

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

var ErrItemUnavailable = errors.New("item unavailable")

type Repository interface {
	// MenuFor loads the restaurant's current menu.
	MenuFor(ctx context.Context, restaurantID string) (*Menu, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) MenuFor(ctx context.Context, restaurantID string) (*Menu, error) {
	const q = `
		SELECT id, restaurant_id, name, price, sizes, addons, is_available
		FROM menu_items
		WHERE restaurant_id = $1
	`

	rows, err := r.db.QueryContext(ctx, q, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var (
			it            Item
			sizes, addons []byte
		)
		if err := rows.Scan(&it.ID, &it.RestaurantID, &it.Name, &it.Price, &sizes, &addons, &it.Available); err != nil {
			return nil, err
		}
		if len(sizes) > 0 {
			if err := json.Unmarshal(sizes, &it.Sizes); err != nil {
				return nil, err
			}
		}
		if len(addons) > 0 {
			if err := json.Unmarshal(addons, &it.Addons); err != nil {
				return nil, err
			}
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return New(items), nil
}
