package product

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var variantColumns = []string{"id", "product_id", "size", "color", "stock"}

func TestRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, name, price, image_url\s+FROM products`).
			WithArgs(int64(10)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "image_url"}).
				AddRow(10, "Shirt", "100000.00", "shirt.jpg"))
		mock.ExpectQuery(`SELECT id, product_id, size, color, stock\s+FROM product_variants`).
			WithArgs(pq.Array([]int64{10})).
			WillReturnRows(sqlmock.NewRows(variantColumns).
				AddRow(1, 10, "S", nil, 4).
				AddRow(2, 10, "M", "Red", 6))

		p, err := repo.GetByID(ctx, db, 10)
		require.NoError(t, err)
		assert.Equal(t, "Shirt", p.Name)
		assert.Equal(t, "100000", p.Price.String())
		require.NotNil(t, p.ImageURL)
		assert.Equal(t, "shirt.jpg", *p.ImageURL)
		require.Len(t, p.Variants, 2)
		assert.Nil(t, p.Variants[0].Color)
		assert.Equal(t, "Red", *p.Variants[1].Color)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, name, price, image_url`).
			WithArgs(int64(99)).
			WillReturnError(sql.ErrNoRows)

		_, err = repo.GetByID(ctx, db, 99)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("VariantQueryError", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, name, price, image_url`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "image_url"}).
				AddRow(10, "Shirt", "1.00", nil))
		mock.ExpectQuery(`FROM product_variants`).WillReturnError(errors.New("db down"))

		_, err = repo.GetByID(ctx, db, 10)
		assert.Error(t, err)
	})
}

func TestRepository_GetByIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	t.Run("Empty", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		out, err := repo.GetByIDs(ctx, db, nil)
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("SkipsMissing", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`WHERE id = ANY\(\$1\) AND deleted_at IS NULL`).
			WithArgs(pq.Array([]int64{1, 2})).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "image_url"}).
				AddRow(1, "Cap", "50000.00", nil))
		mock.ExpectQuery(`FROM product_variants`).
			WillReturnRows(sqlmock.NewRows(variantColumns).
				AddRow(5, 1, FreeSize, nil, 9))

		out, err := repo.GetByIDs(ctx, db, []int64{1, 2})
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, 9, out[1].TotalStock())
		_, ok := out[2]
		assert.False(t, ok)
	})

	t.Run("QueryError", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM products`).WillReturnError(errors.New("boom"))

		_, err = repo.GetByIDs(ctx, db, []int64{1})
		assert.Error(t, err)
	})
}
