package menu

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMenu() *Menu {
	return New([]Item{
		{
			ID:    "item-1",
			Name:  "Paneer Tikka Pizza",
			Price: 250,
			Sizes: []Size{
				{Name: "regular", Price: 250},
				{Name: "large", Price: 400},
			},
			Addons: []Addon{
				{Name: "extra cheese", Price: 50},
				{Name: "olives", Price: 30},
			},
			Available: true,
		},
		{ID: "item-2", Name: "Masala Chai", Price: 40, Available: true},
		{ID: "item-3", Name: "Seasonal Special", Price: 180, Available: false},
	})
}

func TestUnitPrice(t *testing.T) {
	m := sampleMenu()

	t.Run("base price", func(t *testing.T) {
		price, name, err := m.UnitPrice("item-2", "", nil)
		require.NoError(t, err)
		assert.Equal(t, 40, price)
		assert.Equal(t, "Masala Chai", name)
	})

	t.Run("size replaces base price", func(t *testing.T) {
		price, _, err := m.UnitPrice("item-1", "large", nil)
		require.NoError(t, err)
		assert.Equal(t, 400, price)
	})

	t.Run("addons stack on size price", func(t *testing.T) {
		price, _, err := m.UnitPrice("item-1", "large", []string{"extra cheese", "olives"})
		require.NoError(t, err)
		assert.Equal(t, 480, price)
	})

	t.Run("unknown item", func(t *testing.T) {
		_, _, err := m.UnitPrice("no-such-item", "", nil)
		assert.ErrorIs(t, err, ErrItemUnavailable)
	})

	t.Run("unavailable item", func(t *testing.T) {
		_, _, err := m.UnitPrice("item-3", "", nil)
		assert.ErrorIs(t, err, ErrItemUnavailable)
	})

	t.Run("unknown size", func(t *testing.T) {
		_, _, err := m.UnitPrice("item-1", "family", nil)
		assert.ErrorIs(t, err, ErrItemUnavailable)
	})

	t.Run("unknown addon", func(t *testing.T) {
		_, _, err := m.UnitPrice("item-1", "regular", []string{"truffle"})
		assert.ErrorIs(t, err, ErrItemUnavailable)
	})
}

func TestRepository_MenuFor(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	rows := sqlmock.NewRows([]string{"id", "restaurant_id", "name", "price", "sizes", "addons", "is_available"}).
		AddRow("item-1", "rest-1", "Paneer Tikka Pizza", 250,
			[]byte(`[{"name":"regular","price":250},{"name":"large","price":400}]`),
			[]byte(`[{"name":"extra cheese","price":50}]`), true).
		AddRow("item-2", "rest-1", "Masala Chai", 40, nil, nil, true)

	mock.ExpectQuery(`SELECT id, restaurant_id, name, price, sizes, addons, is_available FROM menu_items WHERE restaurant_id = \$1`).
		WithArgs("rest-1").
		WillReturnRows(rows)

	m, err := repo.MenuFor(context.Background(), "rest-1")
	require.NoError(t, err)

	price, _, err := m.UnitPrice("item-1", "large", []string{"extra cheese"})
	require.NoError(t, err)
	assert.Equal(t, 450, price)

	require.NoError(t, mock.ExpectationsWereMet())
}
