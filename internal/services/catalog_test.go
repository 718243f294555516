package services

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KmSasikumar/EcommProductRecommender2/pkg/models"
)

func productColumns() []string {
	return []string{"id", "name", "price", "category", "image_urls", "tags"}
}

func TestCatalogService_FindByQuery(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows(productColumns()).
		AddRow("p1", "Blue Shirt", 19.99, "apparel", []byte(`["http://img/p1.jpg"]`), []byte(`["blue","shirt"]`)).
		AddRow("p2", "Blue Mug", 7.50, "kitchen", []byte(`[]`), []byte(`["blue"]`))

	mock.ExpectQuery("FROM products").
		WithArgs("%blue%").
		WillReturnRows(rows)

	catalog := NewCatalogService(mock, testLogger())
	products, err := catalog.Find(context.Background(), "Blue")
	require.NoError(t, err)

	require.Len(t, products, 2)
	assert.Equal(t, "p1", products[0].ID)
	assert.Equal(t, []string{"http://img/p1.jpg"}, products[0].ImageURLs)
	assert.Equal(t, []string{"blue", "shirt"}, products[0].Tags)
	assert.Equal(t, "p2", products[1].ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogService_FindEmptyQueryReturnsAll(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows(productColumns()).
		AddRow("p1", "Shirt", 19.99, "apparel", []byte(`[]`), []byte(`[]`))

	mock.ExpectQuery("FROM products").WillReturnRows(rows)

	catalog := NewCatalogService(mock, testLogger())
	products, err := catalog.Find(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, products, 1)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogService_FindMalformedJSONFieldsAreSkipped(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows(productColumns()).
		AddRow("p1", "Shirt", 19.99, "apparel", []byte(`not-json`), []byte(`["ok"]`))

	mock.ExpectQuery("FROM products").WillReturnRows(rows)

	catalog := NewCatalogService(mock, testLogger())
	products, err := catalog.Find(context.Background(), "")
	require.NoError(t, err)

	require.Len(t, products, 1)
	assert.Nil(t, products[0].ImageURLs)
	assert.Equal(t, []string{"ok"}, products[0].Tags)
}

func TestCatalogService_Upsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO products").
		WithArgs("p1", "Shirt", 19.99, "apparel", []byte(`["http://img/p1.jpg"]`), []byte(`["blue"]`)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	catalog := NewCatalogService(mock, testLogger())
	err = catalog.Upsert(context.Background(), models.Product{
		ID:        "p1",
		Name:      "Shirt",
		Price:     19.99,
		Category:  "apparel",
		ImageURLs: []string{"http://img/p1.jpg"},
		Tags:      []string{"blue"},
	})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
