package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// Цены в JSON отдаем числом, а не строкой
	decimal.MarshalJSONWithoutQuotes = true
}

// HomepageCategoryLimit - сколько категорий одновременно может быть на главной
const HomepageCategoryLimit = 4

// Category представляет категорию товаров
type Category struct {
	ID                 uint      `json:"categoryId" gorm:"primaryKey"`
	Name               string    `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
	Description        string    `json:"description" gorm:"type:text;not null;default:''"`
	IsActiveOnHomepage bool      `json:"isActiveOnHomepage" gorm:"not null;default:false"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func (Category) TableName() string {
	return "categories"
}

// CategoryRef - краткое представление категории внутри товара (id + name)
type CategoryRef struct {
	ID   uint   `json:"categoryId" gorm:"primaryKey"`
	Name string `json:"name"`
}

func (CategoryRef) TableName() string {
	return "categories"
}

// Product представляет товар в каталоге
type Product struct {
	ID          uuid.UUID       `json:"productId" gorm:"type:uuid;primaryKey"`
	Name        string          `json:"name" gorm:"type:varchar(200);uniqueIndex;not null"`
	Description string          `json:"description" gorm:"type:text;not null;default:''"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	ImageURL    string          `json:"imageUrl" gorm:"type:text;not null;default:''"`
	Stock       int             `json:"stock" gorm:"not null;default:0"`
	CategoryID  uint            `json:"categoryId" gorm:"not null;index"`
	IsFeatured  bool            `json:"isFeatured" gorm:"not null;default:false"`
	IsOnSale    bool            `json:"isOnSale" gorm:"not null;default:false"`
	Category    *CategoryRef    `json:"category,omitempty" gorm:"foreignKey:CategoryID;references:ID"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (Product) TableName() string {
	return "products"
}

// Role роль пользователя в магазине
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User - пользователь, созданный по событию от identity provider
// ID совпадает с subject id провайдера
type User struct {
	ID        string    `json:"id" gorm:"type:varchar(255);primaryKey"`
	Username  string    `json:"username" gorm:"type:varchar(255);not null;default:''"`
	Email     string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Phone     string    `json:"phone" gorm:"type:varchar(50);not null;default:''"`
	Role      Role      `json:"role" gorm:"type:varchar(20);not null;default:'user'"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ReviewAuthor - автор отзыва для отображения рядом с текстом
type ReviewAuthor struct {
	ID       string `json:"id" gorm:"primaryKey"`
	Username string `json:"username"`
}

func (ReviewAuthor) TableName() string {
	return "users"
}

// Review - отзыв пользователя о товаре
type Review struct {
	ID        uint          `json:"reviewId" gorm:"primaryKey"`
	UserID    string        `json:"userId" gorm:"type:varchar(255);not null;index"`
	ProductID uuid.UUID     `json:"productId" gorm:"type:uuid;not null;index"`
	Rating    int           `json:"rating" gorm:"not null;default:3"`
	Comment   string        `json:"comment" gorm:"type:text;not null;default:''"`
	User      *ReviewAuthor `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

func (Review) TableName() string {
	return "reviews"
}
