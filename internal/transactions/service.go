package transactions

import (
	"context"
	"errors"
	"fmt"

	"github.com/lokapasar/backend/internal/users"
	"github.com/lokapasar/backend/pkg/db/models"
	"github.com/lokapasar/backend/pkg/enums"
	apperrors "github.com/lokapasar/backend/pkg/errors"
	"github.com/lokapasar/backend/pkg/logger"
	"github.com/lokapasar/backend/pkg/metrics"
	"github.com/lokapasar/backend/pkg/pagination"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Actor identifies the authenticated caller of a lifecycle operation.
type Actor struct {
	ID   int64
	Role enums.ActorRole
}

// Service drives the transaction lifecycle. Every transition re-reads the
// row, evaluates the transition table, and writes inside one unit of work.
type Service interface {
	ConfirmPayment(ctx context.Context, parentID string) (int, error)
	Prepare(ctx context.Context, id string, actor Actor) (*models.Transaction, error)
	Ship(ctx context.Context, id string, actor Actor, trackingNumber string) (*models.Transaction, error)
	Deliver(ctx context.Context, id string, actor Actor) (*models.Transaction, error)
	Cancel(ctx context.Context, id string, actor Actor) (*models.Transaction, error)
	List(ctx context.Context, actor Actor, page pagination.Page) ([]models.Transaction, *pagination.Cursor, error)
	Detail(ctx context.Context, id string, actor Actor) (*models.Transaction, error)
}

type service struct {
	repo  Repository
	users users.Repository
	tx    txRunner
	logg  *logger.Logger
}

// NewService builds the transaction lifecycle service.
func NewService(repo Repository, userRepo users.Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("transactions repository required")
	}
	if userRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, users: userRepo, tx: tx, logg: logg}, nil
}

// ConfirmPayment moves every sibling of a checkout to PAYMENT_SUCCESS.
// Siblings already past WAITING_FOR_PAYMENT are skipped, which makes webhook
// replays harmless. Returns how many rows were transitioned.
func (s *service) ConfirmPayment(ctx context.Context, parentID string) (int, error) {
	confirmed := 0
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		siblings, err := repo.FindByParentID(ctx, parentID)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, err, "loading checkout siblings")
		}
		if len(siblings) == 0 {
			return apperrors.New(apperrors.CodeNotFound,
				fmt.Sprintf("no transactions found for order %s", parentID))
		}
		for _, sibling := range siblings {
			if sibling.Status != enums.TransactionStatusWaitingForPayment {
				lctx := s.logg.WithTransactionID(ctx, sibling.ID)
				s.logg.Info(lctx, fmt.Sprintf("skipping payment confirmation, status is %s", sibling.Status))
				continue
			}
			outcome, err := Decide(sibling.Status, RoleGateway, ActionConfirmPayment)
			if err != nil {
				return err
			}
			if err := repo.UpdateStatus(ctx, sibling.ID, sibling.Status, outcome.Next); err != nil {
				return err
			}
			confirmed++
		}
		return nil
	})
	if err != nil {
		metrics.ObserveTransition(string(ActionConfirmPayment), metrics.OutcomeError)
		return 0, err
	}
	metrics.ObserveTransition(string(ActionConfirmPayment), metrics.OutcomeOK)
	return confirmed, nil
}

func (s *service) Prepare(ctx context.Context, id string, actor Actor) (*models.Transaction, error) {
	return s.transition(ctx, id, actor, ActionPrepare, nil)
}

func (s *service) Ship(ctx context.Context, id string, actor Actor, trackingNumber string) (*models.Transaction, error) {
	if trackingNumber == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "tracking number is required")
	}
	return s.transition(ctx, id, actor, ActionShip, func(ctx context.Context, repo Repository, transaction *models.Transaction) error {
		return repo.SetShipmentTracking(ctx, transaction.ID, trackingNumber)
	})
}

func (s *service) Deliver(ctx context.Context, id string, actor Actor) (*models.Transaction, error) {
	return s.transition(ctx, id, actor, ActionDeliver, func(ctx context.Context, repo Repository, transaction *models.Transaction) error {
		return repo.UpdateShipmentStatus(ctx, transaction.ID, enums.ShipmentStatusDelivered)
	})
}

func (s *service) Cancel(ctx context.Context, id string, actor Actor) (*models.Transaction, error) {
	return s.transition(ctx, id, actor, ActionCancel, func(ctx context.Context, repo Repository, transaction *models.Transaction) error {
		return repo.UpdateShipmentStatus(ctx, transaction.ID, enums.ShipmentStatusCanceled)
	})
}

type sideEffect func(ctx context.Context, repo Repository, transaction *models.Transaction) error

func (s *service) transition(ctx context.Context, id string, actor Actor, action Action, effect sideEffect) (*models.Transaction, error) {
	var updated *models.Transaction
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		transaction, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.CodeNotFound,
					fmt.Sprintf("transaction %s not found", id))
			}
			return apperrors.Wrap(apperrors.CodeInternal, err, "loading transaction")
		}
		if err := checkOwnership(transaction, actor); err != nil {
			return err
		}

		outcome, err := Decide(transaction.Status, actor.Role, action)
		if err != nil {
			return err
		}

		// Refund first so a failing refund aborts before the status flips.
		if outcome.Refund {
			if err := s.users.WithTx(tx).Refund(ctx, transaction.UserID, transaction.GrossAmount); err != nil {
				metrics.ObserveRefund(metrics.OutcomeError)
				return apperrors.Wrap(apperrors.CodeValidation, err, "refund failed, cancellation aborted")
			}
			metrics.ObserveRefund(metrics.OutcomeOK)
		}

		if err := repo.UpdateStatus(ctx, transaction.ID, transaction.Status, outcome.Next); err != nil {
			return err
		}
		if effect != nil {
			if err := effect(ctx, repo, transaction); err != nil {
				return err
			}
		}

		transaction.Status = outcome.Next
		updated = transaction

		lctx := s.logg.WithTransactionID(ctx, transaction.ID)
		lctx = s.logg.WithActor(lctx, string(actor.Role), actor.ID)
		s.logg.Info(lctx, fmt.Sprintf("transaction moved to %s", outcome.Next))
		return nil
	})
	if err != nil {
		outcome := metrics.OutcomeError
		if apperrors.IsCode(err, apperrors.CodeStateConflict) {
			outcome = metrics.OutcomeRejected
		}
		metrics.ObserveTransition(string(action), outcome)
		return nil, err
	}
	metrics.ObserveTransition(string(action), metrics.OutcomeOK)
	return updated, nil
}

func checkOwnership(transaction *models.Transaction, actor Actor) error {
	switch actor.Role {
	case enums.ActorRoleUser:
		if transaction.UserID != actor.ID {
			return apperrors.New(apperrors.CodeForbidden, "transaction belongs to another buyer")
		}
	case enums.ActorRoleSeller:
		if transaction.SellerID != actor.ID {
			return apperrors.New(apperrors.CodeForbidden, "transaction belongs to another seller")
		}
	default:
		return apperrors.New(apperrors.CodeForbidden, "unknown actor role")
	}
	return nil
}

// List returns the actor's transactions newest first with a keyset cursor.
func (s *service) List(ctx context.Context, actor Actor, page pagination.Page) ([]models.Transaction, *pagination.Cursor, error) {
	rows, err := s.repo.List(ctx, actor.Role, actor.ID, page)
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.CodeInternal, err, "listing transactions")
	}
	var next *pagination.Cursor
	if len(rows) == page.Limit && page.Limit > 0 {
		last := rows[len(rows)-1]
		next = &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return rows, next, nil
}

func (s *service) Detail(ctx context.Context, id string, actor Actor) (*models.Transaction, error) {
	transaction, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound,
				fmt.Sprintf("transaction %s not found", id))
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading transaction")
	}
	if err := checkOwnership(transaction, actor); err != nil {
		return nil, err
	}
	return transaction, nil
}
