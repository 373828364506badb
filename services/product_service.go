package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"supernova/models"
	"supernova/repository"
)

const MaxProductPageSize = 20

type ProductService struct {
	products repository.ProductRepository
	now      func() time.Time
}

func NewProductService(products repository.ProductRepository) *ProductService {
	return &ProductService{products: products, now: time.Now}
}

type ProductQuery struct {
	Query    string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Skip     int64
	Limit    int64
}

type CreateProductInput struct {
	Title         string
	Description   string
	PriceAmount   decimal.Decimal
	PriceCurrency string
	Stock         int
	Images        []models.Image
}

// ProductUpdate lists the mutable fields; nil means unchanged.
type ProductUpdate struct {
	Title         *string
	Description   *string
	PriceAmount   *decimal.Decimal
	PriceCurrency *string
	Stock         *int
}

func (s *ProductService) List(ctx context.Context, q ProductQuery) ([]models.Product, error) {
	return s.list(ctx, q, nil)
}

func (s *ProductService) ListBySeller(ctx context.Context, session *models.Session, q ProductQuery) ([]models.Product, error) {
	return s.list(ctx, q, &session.UserID)
}

func (s *ProductService) list(ctx context.Context, q ProductQuery, seller *primitive.ObjectID) ([]models.Product, error) {
	limit := q.Limit
	if limit <= 0 || limit > MaxProductPageSize {
		limit = MaxProductPageSize
	}
	skip := max(q.Skip, 0)

	products, err := s.products.List(ctx, repository.ProductFilter{
		Query:    q.Query,
		MinPrice: q.MinPrice,
		MaxPrice: q.MaxPrice,
		Seller:   seller,
		Skip:     skip,
		Limit:    limit,
	})
	if err != nil {
		return nil, fmt.Errorf("products.List: %w", err)
	}
	return products, nil
}

func (s *ProductService) Get(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: product not found", ErrNotFound)
		}
		return nil, fmt.Errorf("products.Get: %w", err)
	}
	return p, nil
}

func (s *ProductService) Create(ctx context.Context, session *models.Session, in CreateProductInput) (*models.Product, error) {
	if !in.PriceAmount.IsPositive() {
		return nil, fmt.Errorf("%w: price must be greater than zero", ErrInvalidInput)
	}
	if in.Stock < 0 {
		return nil, fmt.Errorf("%w: stock cannot be negative", ErrInvalidInput)
	}
	price, err := models.NewMoney(in.PriceAmount, in.PriceCurrency)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	images := in.Images
	if images == nil {
		images = []models.Image{}
	}
	now := s.now()
	p := &models.Product{
		Title:       in.Title,
		Description: in.Description,
		Price:       price,
		Seller:      session.UserID,
		Stock:       in.Stock,
		Images:      images,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("products.Create: %w", err)
	}
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, session *models.Session, id primitive.ObjectID, u ProductUpdate) (*models.Product, error) {
	p, err := s.owned(ctx, session, id)
	if err != nil {
		return nil, err
	}

	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.PriceAmount != nil {
		if !u.PriceAmount.IsPositive() {
			return nil, fmt.Errorf("%w: price must be greater than zero", ErrInvalidInput)
		}
		p.Price.Amount = *u.PriceAmount
	}
	if u.PriceCurrency != nil {
		cur, err := models.ParseCurrency(*u.PriceCurrency)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		p.Price.Currency = cur
	}
	if u.Stock != nil {
		if *u.Stock < 0 {
			return nil, fmt.Errorf("%w: stock cannot be negative", ErrInvalidInput)
		}
		p.Stock = *u.Stock
	}
	p.UpdatedAt = s.now()

	if err := s.products.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("products.Update: %w", err)
	}
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, session *models.Session, id primitive.ObjectID) error {
	if _, err := s.owned(ctx, session, id); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: product not found", ErrNotFound)
		}
		return fmt.Errorf("products.Delete: %w", err)
	}
	return nil
}

// owned loads a product and checks the caller is its seller.
func (s *ProductService) owned(ctx context.Context, session *models.Session, id primitive.ObjectID) (*models.Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Seller != session.UserID {
		return nil, fmt.Errorf("%w: you can only modify your own products", ErrForbidden)
	}
	return p, nil
}
