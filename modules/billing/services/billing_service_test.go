package services_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atriumhq/atriumpm/modules/billing/domain"
	billingpersistence "github.com/atriumhq/atriumpm/modules/billing/persistence"
	"github.com/atriumhq/atriumpm/modules/billing/services"
	coredomain "github.com/atriumhq/atriumpm/modules/core/domain"
	corepersistence "github.com/atriumhq/atriumpm/modules/core/persistence"
	leasingdomain "github.com/atriumhq/atriumpm/modules/leasing/domain"
	leasingpersistence "github.com/atriumhq/atriumpm/modules/leasing/persistence"
	propertydomain "github.com/atriumhq/atriumpm/modules/property/domain"
	propertypersistence "github.com/atriumhq/atriumpm/modules/property/persistence"
	"github.com/atriumhq/atriumpm/pkg/configuration"
	"github.com/atriumhq/atriumpm/pkg/itf"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "atriumpm-test")
	if err != nil {
		panic(err)
	}
	_ = os.Setenv("LOG_PATH", filepath.Join(dir, "app.log"))
	// Explicit predicates are under test here, not the RLS backstop.
	_ = os.Setenv("RLS_ENFORCE", "disabled")
	code := m.Run()
	configuration.Use().Unload()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func newBillingService(env *itf.Env) *services.BillingService {
	return services.NewBillingService(
		billingpersistence.NewInvoiceRepository(),
		billingpersistence.NewPaymentRepository(),
		billingpersistence.NewLateFeeRepository(),
		env.Pool,
		logrus.New(),
	)
}

// seedLease builds the building/unit/resident/lease chain an invoice hangs
// off.
func seedLease(t *testing.T, env *itf.Env) *leasingdomain.Lease {
	t.Helper()

	buildings := propertypersistence.NewBuildingRepository()
	units := propertypersistence.NewUnitRepository()
	users := corepersistence.NewUserRepository()
	leases := leasingpersistence.NewLeaseRepository()

	b := &propertydomain.Building{Name: "Birch Tower", Address: "4 Birch Ln"}
	require.NoError(t, buildings.Create(env.Ctx, b))

	u := &propertydomain.Unit{BuildingID: b.ID, UnitNumber: "5A", MonthlyRent: 150000}
	require.NoError(t, units.Create(env.Ctx, u))

	resident := &coredomain.User{
		ID:           uuid.New(),
		Email:        uuid.NewString()[:8] + "@example.com",
		PasswordHash: "x",
		Role:         coredomain.RoleResident,
		IsActive:     true,
	}
	require.NoError(t, users.Create(env.Ctx, resident))

	start := time.Now().UTC()
	l := &leasingdomain.Lease{
		UnitID:         u.ID,
		ResidentUserID: resident.ID,
		StartDate:      start,
		EndDate:        start.AddDate(1, 0, 0),
		MonthlyRent:    150000,
		DepositAmount:  150000,
		Status:         leasingdomain.LeaseStatusActive,
	}
	require.NoError(t, leases.Create(env.Ctx, l))
	return l
}

func TestBillingService_RecordPaymentSettlesInvoice(t *testing.T) {
	env := itf.Setup(t)
	svc := newBillingService(env)
	lease := seedLease(t, env)

	invoice, err := svc.CreateInvoice(env.Ctx, services.CreateInvoiceInput{
		LeaseID:     lease.ID,
		Description: "October rent",
		Amount:      150000,
		DueDate:     time.Now().UTC().AddDate(0, 0, 14),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPending, invoice.Status)

	_, err = svc.RecordPayment(env.Ctx, services.RecordPaymentInput{
		InvoiceID: invoice.ID,
		Amount:    50000,
		Method:    domain.PaymentMethodACH,
	})
	require.NoError(t, err)

	got, err := svc.GetInvoice(env.Ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPending, got.Status)
	assert.Equal(t, int64(100000), got.Balance())

	// Paying past the balance is rejected.
	_, err = svc.RecordPayment(env.Ctx, services.RecordPaymentInput{
		InvoiceID: invoice.ID,
		Amount:    100001,
		Method:    domain.PaymentMethodCard,
	})
	assert.True(t, errors.Is(err, domain.ErrOverpayment))

	_, err = svc.RecordPayment(env.Ctx, services.RecordPaymentInput{
		InvoiceID: invoice.ID,
		Amount:    100000,
		Method:    domain.PaymentMethodCard,
	})
	require.NoError(t, err)

	got, err = svc.GetInvoice(env.Ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPaid, got.Status)
	require.NotNil(t, got.PaidAt)

	// Settled invoices stop accepting payments.
	_, err = svc.RecordPayment(env.Ctx, services.RecordPaymentInput{
		InvoiceID: invoice.ID,
		Amount:    1,
		Method:    domain.PaymentMethodCash,
	})
	assert.True(t, errors.Is(err, domain.ErrInvoiceNotOpen))
}

func TestBillingService_AssessLateFeesOncePerInvoice(t *testing.T) {
	env := itf.Setup(t)
	svc := newBillingService(env)
	lease := seedLease(t, env)

	invoice, err := svc.CreateInvoice(env.Ctx, services.CreateInvoiceInput{
		LeaseID:     lease.ID,
		Description: "September rent",
		Amount:      100000,
		DueDate:     time.Now().UTC().AddDate(0, 0, -10),
	})
	require.NoError(t, err)

	assessed, err := svc.AssessLateFees(env.Ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, assessed)

	got, err := svc.GetInvoice(env.Ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusOverdue, got.Status)

	// A second pass never double-charges.
	assessed, err = svc.AssessLateFees(env.Ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, assessed)
}
