// Package stock is the stock ledger: it adds and removes a product's
// on-hand quantity, counted in atomic pills, without ever going negative.
package stock

import (
	"context"
	"fmt"

	"pharmaledger/internal/core/apperror"
	"pharmaledger/internal/core/id"
	"pharmaledger/internal/core/tx"
	"pharmaledger/internal/domain"
	"pharmaledger/internal/domain/catalogs/product"
	"pharmaledger/internal/domain/units"
	"pharmaledger/pkg/logger"
)

// Direction of a stock movement.
type Direction string

const (
	DirectionAdd    Direction = "add"
	DirectionRemove Direction = "remove"
)

// Movement is the result of a stock operation.
type Movement struct {
	ProductID id.ID     `json:"productId"`
	Direction Direction `json:"direction"`
	Count     int64     `json:"count"`
	// CountSplit is Count expressed as packages plus remainder (package products only).
	CountSplit *units.Breakdown `json:"countSplit,omitempty"`

	StockQuantity int64 `json:"stockQuantity"`
	LoosePills    int64 `json:"loosePills"`
	TotalStock    int64 `json:"totalStock"`
}

// Service applies stock movements.
type Service struct {
	repo      Repository
	txManager tx.Manager
	recorder  domain.OperationRecorder
}

// NewService creates a new stock ledger service.
func NewService(repo Repository, txManager tx.Manager, recorder domain.OperationRecorder) *Service {
	if recorder == nil {
		recorder = domain.NopRecorder{}
	}
	return &Service{
		repo:      repo,
		txManager: txManager,
		recorder:  recorder,
	}
}

// AddStock adds count pills to the product.
func (s *Service) AddStock(ctx context.Context, owner, productID id.ID, count int64) (Movement, error) {
	m, err := s.move(ctx, owner, productID, count, DirectionAdd)
	s.recorder.Observe("stock.add", err)
	return m, err
}

// RemoveStock removes count pills from the product. It fails with
// INSUFFICIENT_STOCK, leaving the product untouched, when fewer are on hand.
func (s *Service) RemoveStock(ctx context.Context, owner, productID id.ID, count int64) (Movement, error) {
	m, err := s.move(ctx, owner, productID, count, DirectionRemove)
	s.recorder.Observe("stock.remove", err)
	return m, err
}

func (s *Service) move(ctx context.Context, owner, productID id.ID, count int64, dir Direction) (Movement, error) {
	if count <= 0 {
		return Movement{}, apperror.NewValidation("count must be positive").
			WithDetail("field", "count").
			WithDetail("value", count)
	}

	var result Movement
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if !p.BelongsTo(owner) || p.Archived {
			return apperror.NewNotFound("product", productID.String())
		}

		if err := Apply(p, count, dir); err != nil {
			return err
		}

		if err := s.repo.SaveStock(ctx, p); err != nil {
			return fmt.Errorf("save stock: %w", err)
		}

		result = Movement{
			ProductID:     p.ID,
			Direction:     dir,
			Count:         count,
			StockQuantity: p.StockQuantity,
			LoosePills:    p.LoosePills,
			TotalStock:    p.TotalStock,
		}
		if p.Type == units.TypePackage {
			split, err := units.Split(count, p.PillsPerPackage)
			if err != nil {
				return err
			}
			result.CountSplit = &split
		}
		return nil
	})
	if err != nil {
		return Movement{}, err
	}

	logger.Info(ctx, "stock moved",
		"product_id", productID,
		"direction", dir,
		"count", count,
		"total_stock", result.TotalStock,
	)
	return result, nil
}

// Apply mutates p in memory, refreshing the stock totals and the purchase
// and selling amounts. On error p is unchanged.
func Apply(p *product.Product, count int64, dir Direction) error {
	total, err := units.TotalStock(p.Stock())
	if err != nil {
		return err
	}

	switch p.Type {
	case units.TypeUnit:
		if dir == DirectionRemove && count > p.StockQuantity {
			return apperror.NewInsufficientStock(p.ID.String(), count, p.StockQuantity)
		}
		if dir == DirectionRemove {
			p.StockQuantity -= count
		} else {
			p.StockQuantity += count
		}

	case units.TypePackage:
		if dir == DirectionRemove && count > total {
			return apperror.NewInsufficientStock(p.ID.String(), count, total)
		}
		newTotal := total + count
		if dir == DirectionRemove {
			newTotal = total - count
		}
		b, err := units.Split(newTotal, p.PillsPerPackage)
		if err != nil {
			return err
		}
		p.StockQuantity = b.Packages
		p.LoosePills = b.LoosePills
	}

	if err := p.RecalculateStock(); err != nil {
		return err
	}
	p.RecalculateAmounts()
	p.Touch()
	return nil
}
