package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"storefront/catalog-service/internal/app/catalog/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type ProductRepositoryTestSuite struct {
	suite.Suite
	mock  sqlmock.Sqlmock
	sqlDB *sql.DB
	db    *gorm.DB
	repo  ProductRepository
}

func TestProductRepositorySuite(t *testing.T) {
	suite.Run(t, new(ProductRepositoryTestSuite))
}

func (s *ProductRepositoryTestSuite) SetupTest() {
	s.db, s.mock, s.sqlDB = newMockDB(s.T())
	s.repo = NewProductRepository(s.db)
}

func (s *ProductRepositoryTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
	s.sqlDB.Close()
}

func productColumns() []string {
	return []string{"id", "name", "description", "price", "image_url", "stock", "category_id", "is_featured", "is_on_sale", "created_at", "updated_at"}
}

// ===================== List =====================

func (s *ProductRepositoryTestSuite) TestList_EmptyResultSkipsRowQuery() {
	filter := entity.ProductFilter{Search: "50%", Page: 1, Limit: 10}

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "products" WHERE name ILIKE $1`)).
		WithArgs(`%50\%%`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	products, total, err := s.repo.List(context.Background(), filter)

	s.NoError(err)
	s.Equal(int64(0), total)
	s.NotNil(products)
	s.Empty(products)
}

func (s *ProductRepositoryTestSuite) TestList_WithCategoryPreload() {
	productID := uuid.New()
	categoryID := uint(2)
	now := time.Now()
	filter := entity.ProductFilter{
		CategoryID: &categoryID,
		SortBy:     "price",
		Order:      "ASC",
		Page:       1,
		Limit:      2,
	}

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "products" WHERE category_id = $1`)).
		WithArgs(categoryID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products" WHERE category_id = $1 ORDER BY "price"`)).
		WillReturnRows(sqlmock.NewRows(productColumns()).
			AddRow(productID.String(), "Pixel", "", "120.00", "", 5, categoryID, false, false, now, now))

	s.mock.ExpectQuery(regexp.QuoteMeta(`FROM "categories" WHERE "categories"."id" = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(categoryID, "Phones"))

	products, total, err := s.repo.List(context.Background(), filter)

	s.NoError(err)
	s.Equal(int64(1), total)
	s.Require().Len(products, 1)
	s.True(decimal.NewFromInt(120).Equal(products[0].Price))
	s.Require().NotNil(products[0].Category)
	s.Equal("Phones", products[0].Category.Name)
}

func (s *ProductRepositoryTestSuite) TestFilterProducts_BuildsOnlyGivenPredicates() {
	minPrice := decimal.NewFromInt(100)
	maxStock := 10
	filter := entity.ProductFilter{MinPrice: &minPrice, MaxStock: &maxStock, SortBy: "name", Order: "DESC", Page: 2, Limit: 5}

	stmt := s.db.Session(&gorm.Session{DryRun: true}).
		Scopes(filterProducts(filter), sortProducts(filter)).
		Offset(5).Limit(5).
		Find(&[]entity.Product{}).Statement

	sql := stmt.SQL.String()
	s.Contains(sql, "price >= $1")
	s.Contains(sql, "stock <= $2")
	s.Contains(sql, `ORDER BY "name" DESC`)
	s.NotContains(sql, "ILIKE")
	s.NotContains(sql, "category_id")
}

func (s *ProductRepositoryTestSuite) TestSortProducts_UnknownFieldFallsBackToCreatedAt() {
	filter := entity.ProductFilter{SortBy: "stock; DROP TABLE products", Order: "ASC"}

	stmt := s.db.Session(&gorm.Session{DryRun: true}).
		Scopes(sortProducts(filter)).
		Find(&[]entity.Product{}).Statement

	s.Contains(stmt.SQL.String(), `ORDER BY "created_at"`)
	s.NotContains(stmt.SQL.String(), "DROP")
}

// ===================== Get / Update / Delete =====================

func (s *ProductRepositoryTestSuite) TestGetByID_NotFound() {
	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows(productColumns()))

	product, err := s.repo.GetByID(context.Background(), uuid.New())

	s.Nil(product)
	s.ErrorIs(err, ErrProductNotFound)
}

func (s *ProductRepositoryTestSuite) TestUpdate_DuplicateName() {
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "products" SET`)).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := s.repo.Update(context.Background(), uuid.New(), map[string]interface{}{"name": "Pixel"})

	s.ErrorIs(err, ErrProductAlreadyExists)
}

func (s *ProductRepositoryTestSuite) TestUpdate_UnknownCategory() {
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "products" SET`)).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	err := s.repo.Update(context.Background(), uuid.New(), map[string]interface{}{"category_id": uint(9)})

	s.ErrorIs(err, ErrCategoryNotFound)
}

func (s *ProductRepositoryTestSuite) TestDelete_NotFound() {
	id := uuid.New()
	s.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "products" WHERE id = $1`)).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.repo.Delete(context.Background(), id)

	s.ErrorIs(err, ErrProductNotFound)
}

func (s *ProductRepositoryTestSuite) TestDelete_Success() {
	s.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "products" WHERE id = $1`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s.NoError(s.repo.Delete(context.Background(), uuid.New()))
}
