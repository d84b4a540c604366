package postgres

import (
	"context"
	"fmt"

	"github.com/dfcarvalho/smmpanel/internal/repository"
)

type Storage struct {
	db DBTX
}

func NewStorage(db DBTX) repository.Storage {
	return &Storage{db: db}
}

func (s *Storage) User() repository.UserRepo {
	return &UserRepo{db: s.db}
}

func (s *Storage) Refresh() repository.RefreshTokenRepo {
	return &RefreshTokenRepo{db: s.db}
}

func (s *Storage) Balance() repository.BalanceRepo {
	return &BalanceRepo{db: s.db}
}

func (s *Storage) Payment() repository.PaymentRepo {
	return &PaymentRepo{db: s.db}
}

func (s *Storage) Service() repository.ServiceRepo {
	return &ServiceRepo{db: s.db}
}

func (s *Storage) Order() repository.OrderRepo {
	return &OrderRepo{db: s.db}
}

func (s *Storage) Setting() repository.SettingRepo {
	return &SettingRepo{db: s.db}
}

func (s *Storage) InTx(ctx context.Context, fn func(repository.Storage) error) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("db tx error: %w", err)
	}

	defer func() {
		switch err {
		case nil:
			err = tx.Commit(ctx)
		default:
			_ = tx.Rollback(ctx)
		}
	}()

	err = fn(NewStorage(tx))

	return err
}
