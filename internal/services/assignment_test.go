package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"landscape_dispatch/internal/apperr"
	"landscape_dispatch/internal/models"
)

type stubOrders struct {
	orders map[string]models.Order
	err    error
}

func (s *stubOrders) GetOrder(_ context.Context, id string) (*models.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	o, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, apperr.NotFound)
	}
	return &o, nil
}

func (s *stubOrders) ListPaidUnassigned(_ context.Context) ([]models.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []models.Order
	for _, o := range s.orders {
		if o.PaymentStatus == models.PaymentPaid {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *stubOrders) ListUnpaid(_ context.Context) ([]models.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []models.Order
	for _, o := range s.orders {
		if o.PaymentStatus == models.PaymentUnpaid {
			out = append(out, o)
		}
	}
	return out, nil
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// A :memory: database exists per connection; one connection keeps
	// every goroutine on the same database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("raw db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.Driver{}, &models.Vehicle{}, &models.Assignment{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedFleet(t *testing.T, db *gorm.DB) (models.Driver, models.Vehicle) {
	t.Helper()
	driver := models.Driver{Name: "Dan Otieno", Phone: "0712345678", LicenseNumber: "DL-100", Availability: models.DriverAvailable}
	if err := db.Create(&driver).Error; err != nil {
		t.Fatalf("seed driver: %v", err)
	}
	vehicle := models.Vehicle{Registration: "KDA 123A", Status: models.VehicleAvailable}
	if err := db.Create(&vehicle).Error; err != nil {
		t.Fatalf("seed vehicle: %v", err)
	}
	return driver, vehicle
}

func paidOrder(id string) models.Order {
	return models.Order{
		ID:              id,
		CustomerRef:     "CUST-9",
		TotalAmount:     150.00,
		PaymentStatus:   models.PaymentPaid,
		DeliveryAddress: "12 Garden Lane",
	}
}

func reloadDriver(t *testing.T, db *gorm.DB, id uint) models.Driver {
	t.Helper()
	var d models.Driver
	if err := db.First(&d, id).Error; err != nil {
		t.Fatalf("reload driver: %v", err)
	}
	return d
}

func reloadVehicle(t *testing.T, db *gorm.DB, id uint) models.Vehicle {
	t.Helper()
	var v models.Vehicle
	if err := db.First(&v, id).Error; err != nil {
		t.Fatalf("reload vehicle: %v", err)
	}
	return v
}

func TestCreateAssignmentClaimsResources(t *testing.T) {
	db := testDB(t)
	driver, vehicle := seedFleet(t, db)
	engine := NewAssignmentEngine(db, &stubOrders{orders: map[string]models.Order{"O1": paidOrder("O1")}})

	a, err := engine.Create(context.Background(), "O1", driver.ID, vehicle.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if a.Status != models.StatusAssigned {
		t.Errorf("status = %s, want Assigned", a.Status)
	}
	if !strings.HasPrefix(a.Reference, "ASG-") {
		t.Errorf("reference %q missing ASG- prefix", a.Reference)
	}
	if a.Amount != 150.00 || a.Address != "12 Garden Lane" {
		t.Errorf("order snapshot not recorded: %+v", a)
	}
	if got := reloadDriver(t, db, driver.ID).Availability; got != models.DriverAssigned {
		t.Errorf("driver availability = %s, want Assigned", got)
	}
	if got := reloadVehicle(t, db, vehicle.ID).Status; got != models.VehicleAssigned {
		t.Errorf("vehicle status = %s, want Assigned", got)
	}
}

func TestCreateAssignmentBusyDriverConflicts(t *testing.T) {
	db := testDB(t)
	driver, vehicle := seedFleet(t, db)
	vehicle2 := models.Vehicle{Registration: "KDB 456B", Status: models.VehicleAvailable}
	if err := db.Create(&vehicle2).Error; err != nil {
		t.Fatalf("seed vehicle2: %v", err)
	}
	engine := NewAssignmentEngine(db, &stubOrders{orders: map[string]models.Order{
		"O1": paidOrder("O1"),
		"O2": paidOrder("O2"),
	}})

	if _, err := engine.Create(context.Background(), "O1", driver.ID, vehicle.ID); err != nil {
		t.Fatalf("first create: %v", err)
	}

	// Same driver, different order: exactly one of the two claims wins.
	_, err := engine.Create(context.Background(), "O2", driver.ID, vehicle2.ID)
	if !errors.Is(err, apperr.Conflict) {
		t.Fatalf("second create: got %v, want Conflict", err)
	}
	// The losing create must leave no partial writes behind.
	if got := reloadVehicle(t, db, vehicle2.ID).Status; got != models.VehicleAvailable {
		t.Errorf("vehicle2 status = %s after failed create, want Available", got)
	}
}

func TestCreateAssignmentConcurrentSameDriver(t *testing.T) {
	db := testDB(t)
	driver, vehicle := seedFleet(t, db)
	vehicle2 := models.Vehicle{Registration: "KDB 456B", Status: models.VehicleAvailable}
	if err := db.Create(&vehicle2).Error; err != nil {
		t.Fatalf("seed vehicle2: %v", err)
	}
	engine := NewAssignmentEngine(db, &stubOrders{orders: map[string]models.Order{
		"O1": paidOrder("O1"),
		"O2": paidOrder("O2"),
	}})

	// Two admins click "assign" for the same driver at the same moment.
	start := make(chan struct{})
	results := make(chan error, 2)
	claim := func(orderID string, vehicleID uint) {
		<-start
		_, err := engine.Create(context.Background(), orderID, driver.ID, vehicleID)
		results <- err
	}
	go claim("O1", vehicle.ID)
	go claim("O2", vehicle2.ID)
	close(start)

	var wins, conflicts int
	for i := 0; i < 2; i++ {
		switch err := <-results; {
		case err == nil:
			wins++
		case errors.Is(err, apperr.Conflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || conflicts != 1 {
		t.Fatalf("wins = %d, conflicts = %d; want exactly one of each", wins, conflicts)
	}

	var count int64
	if err := db.Model(&models.Assignment{}).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("assignment rows = %d, want 1", count)
	}
	if got := reloadDriver(t, db, driver.ID).Availability; got != models.DriverAssigned {
		t.Errorf("driver availability = %s, want Assigned held by the winner", got)
	}
	// Exactly one vehicle is claimed; the loser's rolled back.
	var claimed int64
	if err := db.Model(&models.Vehicle{}).Where("status = ?", models.VehicleAssigned).Count(&claimed).Error; err != nil {
		t.Fatal(err)
	}
	if claimed != 1 {
		t.Errorf("claimed vehicles = %d, want 1", claimed)
	}
}

func TestCreateAssignmentRollsBackDriverOnBusyVehicle(t *testing.T) {
	db := testDB(t)
	driver, vehicle := seedFleet(t, db)
	if err := db.Model(&vehicle).Update("status", models.VehicleAssigned).Error; err != nil {
		t.Fatalf("mark vehicle busy: %v", err)
	}
	engine := NewAssignmentEngine(db, &stubOrders{orders: map[string]models.Order{"O1": paidOrder("O1")}})

	_, err := engine.Create(context.Background(), "O1", driver.ID, vehicle.ID)
	if !errors.Is(err, apperr.Conflict) {
		t.Fatalf("got %v, want Conflict", err)
	}
	// The driver claim inside the failed transaction must be undone.
	if got := reloadDriver(t, db, driver.ID).Availability; got != models.DriverAvailable {
		t.Errorf("driver availability = %s after rollback, want Available", got)
	}
}

func TestCreateAssignmentOrderChecks(t *testing.T) {
	db := testDB(t)
	driver, vehicle := seedFleet(t, db)
	unpaid := paidOrder("O-unpaid")
	unpaid.PaymentStatus = models.PaymentUnpaid
	engine := NewAssignmentEngine(db, &stubOrders{orders: map[string]models.Order{
		"O1":       paidOrder("O1"),
		"O-unpaid": unpaid,
	}})

	if _, err := engine.Create(context.Background(), "O-unpaid", driver.ID, vehicle.ID); !errors.Is(err, apperr.Conflict) {
		t.Errorf("unpaid order: got %v, want Conflict", err)
	}
	if _, err := engine.Create(context.Background(), "O-missing", driver.ID, vehicle.ID); !errors.Is(err, apperr.NotFound) {
		t.Errorf("unknown order: got %v, want NotFound", err)
	}

	if _, err := engine.Create(context.Background(), "O1", driver.ID, vehicle.ID); err != nil {
		t.Fatalf("create: %v", err)
	}
	// Re-assigning an order with an active assignment is a conflict even
	// with a fresh driver and vehicle.
	driver2 := models.Driver{Name: "Mary W", Phone: "0798765432", LicenseNumber: "DL-200", Availability: models.DriverAvailable}
	vehicle2 := models.Vehicle{Registration: "KDC 789C", Status: models.VehicleAvailable}
	if err := db.Create(&driver2).Error; err != nil {
		t.Fatal(err)
	}
	if err := db.Create(&vehicle2).Error; err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Create(context.Background(), "O1", driver2.ID, vehicle2.ID); !errors.Is(err, apperr.Conflict) {
		t.Errorf("already-assigned order: got %v, want Conflict", err)
	}
}

func TestUpdateStatusLifecycleReleasesResources(t *testing.T) {
	db := testDB(t)
	driver, vehicle := seedFleet(t, db)
	engine := NewAssignmentEngine(db, &stubOrders{orders: map[string]models.Order{"O1": paidOrder("O1")}})

	a, err := engine.Create(context.Background(), "O1", driver.ID, vehicle.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	a, err = engine.UpdateStatus(context.Background(), a.ID, models.StatusInTransit)
	if err != nil {
		t.Fatalf("to In Transit: %v", err)
	}
	if a.Status != models.StatusInTransit {
		t.Errorf("status = %s, want In Transit", a.Status)
	}
	// In Transit keeps the resources held.
	if got := reloadDriver(t, db, driver.ID).Availability; got != models.DriverAssigned {
		t.Errorf("driver released early: %s", got)
	}

	a, err = engine.UpdateStatus(context.Background(), a.ID, models.StatusDelivered)
	if err != nil {
		t.Fatalf("to Delivered: %v", err)
	}
	if got := reloadDriver(t, db, driver.ID).Availability; got != models.DriverAvailable {
		t.Errorf("driver availability = %s after delivery, want Available", got)
	}
	if got := reloadVehicle(t, db, vehicle.ID).Status; got != models.VehicleAvailable {
		t.Errorf("vehicle status = %s after delivery, want Available", got)
	}
}

func TestUpdateStatusRejectsAfterTerminal(t *testing.T) {
	db := testDB(t)
	driver, vehicle := seedFleet(t, db)
	engine := NewAssignmentEngine(db, &stubOrders{orders: map[string]models.Order{"O1": paidOrder("O1")}})

	a, err := engine.Create(context.Background(), "O1", driver.ID, vehicle.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := engine.UpdateStatus(context.Background(), a.ID, models.StatusInTransit); err != nil {
		t.Fatalf("to In Transit: %v", err)
	}
	if _, err := engine.UpdateStatus(context.Background(), a.ID, models.StatusDelivered); err != nil {
		t.Fatalf("to Delivered: %v", err)
	}

	// Second "Mark Delivered" click lands after the terminal transition.
	if _, err := engine.UpdateStatus(context.Background(), a.ID, models.StatusDelivered); !errors.Is(err, apperr.InvalidTransition) {
		t.Errorf("repeat Delivered: got %v, want InvalidTransition", err)
	}
	if _, err := engine.UpdateStatus(context.Background(), a.ID, models.StatusInTransit); !errors.Is(err, apperr.InvalidTransition) {
		t.Errorf("Delivered -> In Transit: got %v, want InvalidTransition", err)
	}
}

func TestUpdateStatusCancelFromAssigned(t *testing.T) {
	db := testDB(t)
	driver, vehicle := seedFleet(t, db)
	engine := NewAssignmentEngine(db, &stubOrders{orders: map[string]models.Order{"O1": paidOrder("O1")}})

	a, err := engine.Create(context.Background(), "O1", driver.ID, vehicle.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := engine.UpdateStatus(context.Background(), a.ID, models.StatusCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got := reloadDriver(t, db, driver.ID).Availability; got != models.DriverAvailable {
		t.Errorf("driver availability = %s after cancel, want Available", got)
	}
	if got := reloadVehicle(t, db, vehicle.ID).Status; got != models.VehicleAvailable {
		t.Errorf("vehicle status = %s after cancel, want Available", got)
	}
}

func TestUpdateStatusKeepsOnLeaveDriver(t *testing.T) {
	db := testDB(t)
	driver, vehicle := seedFleet(t, db)
	engine := NewAssignmentEngine(db, &stubOrders{orders: map[string]models.Order{"O1": paidOrder("O1")}})

	a, err := engine.Create(context.Background(), "O1", driver.ID, vehicle.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// Registry marks the driver On Leave mid-assignment; the terminal
	// release must not overwrite that.
	if err := db.Model(&models.Driver{}).Where("id = ?", driver.ID).
		Update("availability", models.DriverOnLeave).Error; err != nil {
		t.Fatal(err)
	}
	if _, err := engine.UpdateStatus(context.Background(), a.ID, models.StatusCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got := reloadDriver(t, db, driver.ID).Availability; got != models.DriverOnLeave {
		t.Errorf("driver availability = %s, want On Leave preserved", got)
	}
	if got := reloadVehicle(t, db, vehicle.ID).Status; got != models.VehicleAvailable {
		t.Errorf("vehicle status = %s, want Available", got)
	}
}

func TestAssignableOrdersFiltersActiveAssignments(t *testing.T) {
	db := testDB(t)
	driver, vehicle := seedFleet(t, db)
	engine := NewAssignmentEngine(db, &stubOrders{orders: map[string]models.Order{
		"O1": paidOrder("O1"),
		"O2": paidOrder("O2"),
	}})

	a, err := engine.Create(context.Background(), "O1", driver.ID, vehicle.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	orders, err := engine.AssignableOrders(context.Background())
	if err != nil {
		t.Fatalf("assignable: %v", err)
	}
	if len(orders) != 1 || orders[0].ID != "O2" {
		t.Errorf("assignable = %+v, want only O2", orders)
	}

	// Once O1's assignment is terminal the order reappears.
	if _, err := engine.UpdateStatus(context.Background(), a.ID, models.StatusCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	orders, err = engine.AssignableOrders(context.Background())
	if err != nil {
		t.Fatalf("assignable: %v", err)
	}
	if len(orders) != 2 {
		t.Errorf("assignable after cancel = %+v, want both", orders)
	}
}

func TestEngineSurfacesUpstreamFailure(t *testing.T) {
	db := testDB(t)
	driver, vehicle := seedFleet(t, db)
	engine := NewAssignmentEngine(db, &stubOrders{err: fmt.Errorf("gateway: %w", apperr.UpstreamUnavailable)})

	if _, err := engine.AssignableOrders(context.Background()); !errors.Is(err, apperr.UpstreamUnavailable) {
		t.Errorf("assignable: got %v, want UpstreamUnavailable", err)
	}
	if _, err := engine.Create(context.Background(), "O1", driver.ID, vehicle.ID); !errors.Is(err, apperr.UpstreamUnavailable) {
		t.Errorf("create: got %v, want UpstreamUnavailable", err)
	}
	// Nothing was claimed before the upstream check failed.
	if got := reloadDriver(t, db, driver.ID).Availability; got != models.DriverAvailable {
		t.Errorf("driver availability = %s, want Available", got)
	}
}
