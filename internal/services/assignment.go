package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"landscape_dispatch/internal/apperr"
	"landscape_dispatch/internal/models"
)

// OrderSource is the read-only view of the order/payment service the
// engine needs.
type OrderSource interface {
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	ListPaidUnassigned(ctx context.Context) ([]models.Order, error)
	ListUnpaid(ctx context.Context) ([]models.Order, error)
}

var terminalStatuses = []models.AssignmentStatus{
	models.StatusDelivered, models.StatusCancelled, models.StatusFailed,
}

// AssignmentEngine owns every assignment mutation. All status changes and
// the coupled driver/vehicle availability flips funnel through here inside
// a single transaction, so the availability flags never drift from the
// assignment statuses.
type AssignmentEngine struct {
	db     *gorm.DB
	orders OrderSource
}

func NewAssignmentEngine(db *gorm.DB, orders OrderSource) *AssignmentEngine {
	return &AssignmentEngine{db: db, orders: orders}
}

// AssignableOrders returns paid orders with no active local assignment.
func (e *AssignmentEngine) AssignableOrders(ctx context.Context) ([]models.Order, error) {
	paid, err := e.orders.ListPaidUnassigned(ctx)
	if err != nil {
		return nil, err
	}

	var activeOrderIDs []string
	if err := e.db.WithContext(ctx).Model(&models.Assignment{}).
		Where("status NOT IN ?", terminalStatuses).
		Pluck("order_id", &activeOrderIDs).Error; err != nil {
		return nil, err
	}

	active := make(map[string]struct{}, len(activeOrderIDs))
	for _, id := range activeOrderIDs {
		active[id] = struct{}{}
	}

	assignable := make([]models.Order, 0, len(paid))
	for _, o := range paid {
		if _, taken := active[o.ID]; !taken {
			assignable = append(assignable, o)
		}
	}
	return assignable, nil
}

// PendingOrders returns orders still awaiting payment. Display only.
func (e *AssignmentEngine) PendingOrders(ctx context.Context) ([]models.Order, error) {
	return e.orders.ListUnpaid(ctx)
}

// Create binds a paid order to an available driver and vehicle. The
// availability claims are conditional updates checked via RowsAffected, so
// two concurrent creates for the same driver or vehicle cannot both
// succeed: the loser rolls back with apperr.Conflict and nothing is
// half-written.
func (e *AssignmentEngine) Create(ctx context.Context, orderID string, driverID, vehicleID uint) (*models.Assignment, error) {
	order, err := e.orders.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, apperr.NotFound) {
			return nil, fmt.Errorf("order %s: %w", orderID, apperr.NotFound)
		}
		return nil, err
	}
	if order.PaymentStatus != models.PaymentPaid {
		return nil, fmt.Errorf("order %s is not paid: %w", orderID, apperr.Conflict)
	}

	var created models.Assignment
	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var activeCount int64
		if err := tx.Model(&models.Assignment{}).
			Where("order_id = ? AND status NOT IN ?", orderID, terminalStatuses).
			Count(&activeCount).Error; err != nil {
			return err
		}
		if activeCount > 0 {
			return fmt.Errorf("order %s already has an active assignment: %w", orderID, apperr.Conflict)
		}

		var driver models.Driver
		if err := tx.First(&driver, driverID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("driver %d: %w", driverID, apperr.NotFound)
			}
			return err
		}
		var vehicle models.Vehicle
		if err := tx.First(&vehicle, vehicleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("vehicle %d: %w", vehicleID, apperr.NotFound)
			}
			return err
		}

		// Claim the driver: only flips if still Available.
		claim := tx.Model(&models.Driver{}).
			Where("id = ? AND availability = ?", driverID, models.DriverAvailable).
			Update("availability", models.DriverAssigned)
		if claim.Error != nil {
			return claim.Error
		}
		if claim.RowsAffected == 0 {
			return fmt.Errorf("driver %d is not available: %w", driverID, apperr.Conflict)
		}

		claim = tx.Model(&models.Vehicle{}).
			Where("id = ? AND status = ?", vehicleID, models.VehicleAvailable).
			Update("status", models.VehicleAssigned)
		if claim.Error != nil {
			return claim.Error
		}
		if claim.RowsAffected == 0 {
			return fmt.Errorf("vehicle %d is not available: %w", vehicleID, apperr.Conflict)
		}

		created = models.Assignment{
			Reference:  newReference(),
			OrderID:    order.ID,
			DriverID:   driverID,
			VehicleID:  vehicleID,
			DriverName: driver.Name,
			Amount:     order.TotalAmount,
			Address:    order.DeliveryAddress,
			Status:     models.StatusAssigned,
		}
		return tx.Create(&created).Error
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateStatus applies one legal state-machine transition. Terminal
// transitions release the driver and vehicle in the same transaction.
// A repeat request after a terminal transition fails with
// apperr.InvalidTransition and releases nothing twice.
func (e *AssignmentEngine) UpdateStatus(ctx context.Context, id uint, next models.AssignmentStatus) (*models.Assignment, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", next, apperr.Validation)
	}

	var updated models.Assignment
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var assignment models.Assignment
		if err := tx.First(&assignment, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("assignment %d: %w", id, apperr.NotFound)
			}
			return err
		}

		if !assignment.Status.CanTransitionTo(next) {
			return fmt.Errorf("cannot move assignment %d from %s to %s: %w",
				id, assignment.Status, next, apperr.InvalidTransition)
		}

		// Compare-and-set against the status we just validated; a
		// concurrent transition between the read and this write makes
		// RowsAffected 0.
		res := tx.Model(&models.Assignment{}).
			Where("id = ? AND status = ?", id, assignment.Status).
			Update("status", next)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("assignment %d changed concurrently: %w", id, apperr.Conflict)
		}

		if next.Terminal() {
			if err := releaseResources(tx, assignment.DriverID, assignment.VehicleID); err != nil {
				return err
			}
		}

		assignment.Status = next
		updated = assignment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// releaseResources puts the driver and vehicle back in the pool.
// Conditional on the currently-Assigned state so an On Leave driver
// stays On Leave.
func releaseResources(tx *gorm.DB, driverID, vehicleID uint) error {
	if err := tx.Model(&models.Driver{}).
		Where("id = ? AND availability = ?", driverID, models.DriverAssigned).
		Update("availability", models.DriverAvailable).Error; err != nil {
		return err
	}
	return tx.Model(&models.Vehicle{}).
		Where("id = ? AND status = ?", vehicleID, models.VehicleAssigned).
		Update("status", models.VehicleAvailable).Error
}

// AssignmentFilter narrows List and report queries.
type AssignmentFilter struct {
	DriverID  *uint
	VehicleID *uint
	Status    *models.AssignmentStatus
	From      *time.Time
	To        *time.Time
}

// List returns assignments matching the filter, newest first, with the
// driver and vehicle associations preloaded.
func (e *AssignmentEngine) List(ctx context.Context, f AssignmentFilter) ([]models.Assignment, error) {
	query := e.db.WithContext(ctx).Model(&models.Assignment{}).
		Preload("Driver").Preload("Vehicle")
	if f.DriverID != nil {
		query = query.Where("driver_id = ?", *f.DriverID)
	}
	if f.VehicleID != nil {
		query = query.Where("vehicle_id = ?", *f.VehicleID)
	}
	if f.Status != nil {
		query = query.Where("status = ?", *f.Status)
	}
	if f.From != nil {
		query = query.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		query = query.Where("created_at <= ?", *f.To)
	}

	var assignments []models.Assignment
	if err := query.Order("created_at DESC").Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

// Get fetches one assignment by id.
func (e *AssignmentEngine) Get(ctx context.Context, id uint) (*models.Assignment, error) {
	var assignment models.Assignment
	if err := e.db.WithContext(ctx).Preload("Driver").Preload("Vehicle").
		First(&assignment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("assignment %d: %w", id, apperr.NotFound)
		}
		return nil, err
	}
	return &assignment, nil
}

func newReference() string {
	return fmt.Sprintf("ASG-%s", strings.ToUpper(uuid.New().String()[:8]))
}
