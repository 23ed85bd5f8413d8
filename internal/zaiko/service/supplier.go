package service

import (
	"context"
	"errors"
	"time"

	"github.com/datasektionen/zaiko/internal/zaiko/domain"
	"github.com/datasektionen/zaiko/internal/zaiko/store"
)

// ErrInvalidSupplier reports a supplier payload without a name.
var ErrInvalidSupplier = errors.New("service: supplier needs a name")

// SupplierService implements supplier CRUD for a club.
type SupplierService struct {
	Store store.Store
}

func (s *SupplierService) List(ctx context.Context, club string) ([]domain.Supplier, error) {
	return s.Store.Suppliers().ListByClub(ctx, club)
}

func (s *SupplierService) ListRefs(ctx context.Context, club string) ([]domain.SupplierRef, error) {
	return s.Store.Suppliers().ListRefs(ctx, club)
}

func (s *SupplierService) Name(ctx context.Context, club string, id int64) (string, error) {
	return s.Store.Suppliers().GetName(ctx, club, id)
}

func (s *SupplierService) Add(ctx context.Context, club string, supplier domain.Supplier) error {
	if supplier.Name == "" {
		return ErrInvalidSupplier
	}
	_, err := s.Store.Suppliers().Create(ctx, club, supplier, time.Now().Unix())
	return err
}

func (s *SupplierService) Update(ctx context.Context, club string, supplier domain.Supplier) error {
	if supplier.Name == "" {
		return ErrInvalidSupplier
	}
	return s.Store.Suppliers().Update(ctx, club, supplier, time.Now().Unix())
}

func (s *SupplierService) Delete(ctx context.Context, club string, id int64) error {
	return s.Store.Suppliers().Delete(ctx, club, id)
}
