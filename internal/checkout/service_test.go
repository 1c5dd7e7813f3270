package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/lokapasar/backend/internal/catalog"
	"github.com/lokapasar/backend/internal/payment"
	"github.com/lokapasar/backend/internal/pricing"
	"github.com/lokapasar/backend/internal/sellers"
	"github.com/lokapasar/backend/internal/shipping"
	"github.com/lokapasar/backend/internal/transactions"
	"github.com/lokapasar/backend/internal/users"
	"github.com/lokapasar/backend/internal/vouchers"
	"github.com/lokapasar/backend/pkg/db/models"
	"github.com/lokapasar/backend/pkg/enums"
	apperrors "github.com/lokapasar/backend/pkg/errors"
	"github.com/lokapasar/backend/pkg/logger"
	"github.com/lokapasar/backend/pkg/pagination"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// --- collaborator stubs ---

type stubCatalog struct {
	products map[int64]models.Product
}

func (s *stubCatalog) WithTx(tx *gorm.DB) catalog.Repository { return s }

func (s *stubCatalog) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	if p, ok := s.products[id]; ok {
		return &p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCatalog) FindByIDs(ctx context.Context, ids []int64) (map[int64]models.Product, error) {
	found := make(map[int64]models.Product)
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			found[id] = p
		}
	}
	return found, nil
}

type stubVoucherRepo struct {
	vouchers map[int64]models.UserSellerVoucher
	used     map[int64]bool
	usedErr  error
}

func (s *stubVoucherRepo) WithTx(tx *gorm.DB) vouchers.Repository { return s }

func (s *stubVoucherRepo) FindByIDs(ctx context.Context, ids []int64) ([]models.UserSellerVoucher, error) {
	var found []models.UserSellerVoucher
	for _, id := range ids {
		if v, ok := s.vouchers[id]; ok {
			found = append(found, v)
		}
	}
	return found, nil
}

func (s *stubVoucherRepo) MarkUsed(ctx context.Context, id int64, now time.Time) error {
	if s.usedErr != nil {
		return s.usedErr
	}
	if s.used == nil {
		s.used = map[int64]bool{}
	}
	if s.used[id] {
		return apperrors.New(apperrors.CodeConflict, "voucher already used")
	}
	s.used[id] = true
	return nil
}

type stubShipping struct {
	quotes map[int64]shipping.Quote
	err    error
}

func (s *stubShipping) Resolve(ctx context.Context, userAddressID int64, selections []shipping.CourierSelection, groups map[int64]*pricing.SellerGroup) (map[int64]shipping.Quote, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make(map[int64]shipping.Quote)
	for sellerID, group := range groups {
		quote, ok := s.quotes[sellerID]
		if !ok {
			return nil, apperrors.New(apperrors.CodeValidation, "no courier selected for seller")
		}
		quote.SellerID = sellerID
		quote.TotalWeightGram = group.TotalWeightGram()
		quote.UserAddressID = userAddressID
		out[sellerID] = quote
	}
	return out, nil
}

type stubGateway struct {
	calls int
	err   error
}

func (s *stubGateway) CreateIntent(ctx context.Context, grossAmount int64, parentID string) (*payment.Intent, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &payment.Intent{PaymentLink: "https://pay.example/" + parentID, GatewayRef: parentID}, nil
}

type stubSellers struct {
	known map[int64]bool
}

func (s *stubSellers) WithTx(tx *gorm.DB) sellers.Repository { return s }

func (s *stubSellers) FindByID(ctx context.Context, id int64) (*models.Seller, error) {
	if s.known[id] {
		return &models.Seller{ID: id}, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubSellers) Exists(ctx context.Context, id int64) (bool, error) {
	return s.known[id], nil
}

type stubUsers struct {
	known map[int64]bool
}

func (s *stubUsers) WithTx(tx *gorm.DB) users.Repository { return s }

func (s *stubUsers) FindByID(ctx context.Context, id int64) (*models.User, error) {
	if s.known[id] {
		return &models.User{ID: id}, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUsers) Exists(ctx context.Context, id int64) (bool, error) { return s.known[id], nil }

func (s *stubUsers) Refund(ctx context.Context, userID, amount int64) error { return nil }

// stagingRepo emulates the unit of work: writes are staged and only survive
// when the enclosing runner commits.
type stagingRepo struct {
	staged    []*models.Transaction
	committed []*models.Transaction
	failAfter int // fail the Nth create (1-based); 0 disables
}

func (r *stagingRepo) WithTx(tx *gorm.DB) transactions.Repository { return r }

func (r *stagingRepo) Create(ctx context.Context, transaction *models.Transaction) error {
	if r.failAfter > 0 && len(r.staged)+1 >= r.failAfter {
		return apperrors.New(apperrors.CodeInternal, "persistence failure")
	}
	r.staged = append(r.staged, transaction)
	return nil
}

func (r *stagingRepo) FindByID(ctx context.Context, id string) (*models.Transaction, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *stagingRepo) FindByParentID(ctx context.Context, parentID string) ([]models.Transaction, error) {
	return nil, nil
}

func (r *stagingRepo) List(ctx context.Context, role enums.ActorRole, actorID int64, page pagination.Page) ([]models.Transaction, error) {
	return nil, nil
}

func (r *stagingRepo) UpdateStatus(ctx context.Context, id string, from, to enums.TransactionStatus) error {
	return nil
}

func (r *stagingRepo) SetShipmentTracking(ctx context.Context, transactionID, trackingNumber string) error {
	return nil
}

func (r *stagingRepo) UpdateShipmentStatus(ctx context.Context, transactionID string, status enums.ShipmentStatus) error {
	return nil
}

type stagingRunner struct {
	repo *stagingRepo
}

func (s *stagingRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if err := fn(nil); err != nil {
		s.repo.staged = nil
		return err
	}
	s.repo.committed = append(s.repo.committed, s.repo.staged...)
	s.repo.staged = nil
	return nil
}

// --- fixture ---

type fixture struct {
	svc         Service
	gateway     *stubGateway
	repo        *stagingRepo
	voucherRepo *stubVoucherRepo
	shipping    *stubShipping
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cat := &stubCatalog{products: map[int64]models.Product{
		1: {ID: 1, SellerID: 9, Price: 100, WeightGram: 50, Volume: 1},
		3: {ID: 3, SellerID: 12, Price: 500, WeightGram: 900, Volume: 1},
	}}
	engine, err := pricing.NewEngine(cat)
	require.NoError(t, err)

	voucherRepo := &stubVoucherRepo{vouchers: map[int64]models.UserSellerVoucher{
		1: {
			ID: 1, UserID: 7, SellerID: 9,
			Kind: enums.VoucherKindFlat, Amount: 50,
			ExpiresAt: time.Now().Add(24 * time.Hour),
		},
	}}
	resolver, err := vouchers.NewResolver(voucherRepo)
	require.NoError(t, err)

	ship := &stubShipping{quotes: map[int64]shipping.Quote{
		9:  {Courier: "jne", Service: "REG", Cost: 20, SellerAddressID: 200},
		12: {Courier: "pos", Service: "EXPRESS", Cost: 60, SellerAddressID: 300},
	}}

	gateway := &stubGateway{}
	repo := &stagingRepo{}
	runner := &stagingRunner{repo: repo}
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled})

	svc, err := NewService(
		engine,
		resolver,
		voucherRepo,
		ship,
		gateway,
		repo,
		&stubSellers{known: map[int64]bool{9: true, 12: true}},
		&stubUsers{known: map[int64]bool{7: true}},
		runner,
		logg,
	)
	require.NoError(t, err)

	return &fixture{svc: svc, gateway: gateway, repo: repo, voucherRepo: voucherRepo, shipping: ship}
}

func buyer() Actor { return Actor{ID: 7, Role: enums.ActorRoleUser} }

func singleSellerInput() CreateInput {
	return CreateInput{
		Carts:              []pricing.CartLineItem{{ProductID: 1, Quantity: 2}},
		SelectedVoucherIDs: []int64{1},
		UserAddressID:      100,
		CourierSelections:  []shipping.CourierSelection{{SellerID: 9, Courier: "jne", Service: "REG"}},
	}
}

// --- tests ---

func TestCreateEndToEnd(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	result, err := f.svc.Create(context.Background(), singleSellerInput(), buyer())
	require.NoError(t, err)

	// 2x100 subtotal + 20 shipment - 50 voucher
	require.Len(t, result.Transactions, 1)
	summary := result.Transactions[0]
	assert.Equal(t, int64(170), summary.GrossAmount)
	assert.Equal(t, int64(50), summary.TotalDiscount)
	assert.Equal(t, int64(20), summary.ShipmentCost)
	assert.Equal(t, "WAITING_FOR_PAYMENT", summary.Status)
	assert.NotEmpty(t, result.PaymentLink)

	require.Len(t, f.repo.committed, 1)
	persisted := f.repo.committed[0]
	assert.Equal(t, int64(170), persisted.GrossAmount)
	assert.Equal(t, result.ParentID, persisted.ParentID)
	assert.Equal(t, result.PaymentLink, persisted.PaymentLink)
	require.NotNil(t, persisted.UserSellerVoucherID)
	assert.Equal(t, int64(1), *persisted.UserSellerVoucherID)
	require.NotNil(t, persisted.ShipmentDetail)
	assert.Equal(t, int64(20), persisted.ShipmentDetail.ShipmentCost)
	assert.Equal(t, 100, persisted.ShipmentDetail.TotalWeightGram)
	require.Len(t, persisted.Products, 1)
	assert.Equal(t, int64(100), persisted.Products[0].UnitPrice)

	assert.True(t, f.voucherRepo.used[1], "voucher must be consumed")
	assert.Equal(t, 1, f.gateway.calls)
}

func TestCreateIDFormats(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	result, err := f.svc.Create(context.Background(), singleSellerInput(), buyer())
	require.NoError(t, err)

	assert.Regexp(t, `^PRT\d{8}[0-9A-F]{8}$`, result.ParentID)
	assert.Regexp(t, `^TRX\d{8}[0-9A-F]{8}$`, result.Transactions[0].TransactionID)
}

func TestCreateMultiSellerSharesParentAndLink(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	input := CreateInput{
		Carts:         []pricing.CartLineItem{{ProductID: 1, Quantity: 2}, {ProductID: 3, Quantity: 1}},
		UserAddressID: 100,
		CourierSelections: []shipping.CourierSelection{
			{SellerID: 9, Courier: "jne", Service: "REG"},
			{SellerID: 12, Courier: "pos", Service: "EXPRESS"},
		},
	}
	result, err := f.svc.Create(context.Background(), input, buyer())
	require.NoError(t, err)
	require.Len(t, result.Transactions, 2)
	require.Len(t, f.repo.committed, 2)
	assert.Equal(t, f.repo.committed[0].ParentID, f.repo.committed[1].ParentID)
	assert.Equal(t, f.repo.committed[0].PaymentLink, f.repo.committed[1].PaymentLink)
	assert.NotEqual(t, f.repo.committed[0].ID, f.repo.committed[1].ID)

	// 220 for seller 9, 560 for seller 12
	assert.Equal(t, int64(220), f.repo.committed[0].GrossAmount)
	assert.Equal(t, int64(560), f.repo.committed[1].GrossAmount)
}

func TestCreatePersistenceFailureRollsBackAllSiblings(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.repo.failAfter = 2

	input := CreateInput{
		Carts:         []pricing.CartLineItem{{ProductID: 1, Quantity: 2}, {ProductID: 3, Quantity: 1}},
		UserAddressID: 100,
		CourierSelections: []shipping.CourierSelection{
			{SellerID: 9, Courier: "jne", Service: "REG"},
			{SellerID: 12, Courier: "pos", Service: "EXPRESS"},
		},
	}
	_, err := f.svc.Create(context.Background(), input, buyer())
	require.Error(t, err)
	assert.Empty(t, f.repo.committed, "no sibling may survive a partial failure")
	assert.Equal(t, 1, f.gateway.calls, "payment intent was already created before the rollback")
}

func TestCreateShipmentQuoteFailureAbortsBeforeGateway(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.shipping.err = apperrors.New(apperrors.CodeDependency, "rate service unreachable")

	_, err := f.svc.Create(context.Background(), singleSellerInput(), buyer())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeDependency))
	assert.Empty(t, f.repo.committed)
	assert.Zero(t, f.gateway.calls)
}

func TestCreateGatewayFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.gateway.err = apperrors.New(apperrors.CodeDependency, "gateway down")

	_, err := f.svc.Create(context.Background(), singleSellerInput(), buyer())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeDependency))
	assert.Empty(t, f.repo.committed)
}

func TestCreatePreconditions(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input CreateInput
		actor Actor
	}{
		{"seller role", singleSellerInput(), Actor{ID: 9, Role: enums.ActorRoleSeller}},
		{"unknown buyer", singleSellerInput(), Actor{ID: 404, Role: enums.ActorRoleUser}},
		{"empty cart", CreateInput{UserAddressID: 100, CourierSelections: singleSellerInput().CourierSelections}, buyer()},
		{"missing address", CreateInput{Carts: singleSellerInput().Carts, CourierSelections: singleSellerInput().CourierSelections}, buyer()},
		{"missing couriers", CreateInput{Carts: singleSellerInput().Carts, UserAddressID: 100}, buyer()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, tc.input, tc.actor)
			require.Error(t, err)
			assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
		})
	}
	assert.Zero(t, f.gateway.calls)
}

func TestCreateSellerVanishedRollsBack(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	cat := &stubCatalog{products: map[int64]models.Product{
		1: {ID: 1, SellerID: 66, Price: 100, WeightGram: 50, Volume: 1},
	}}
	engine, err := pricing.NewEngine(cat)
	require.NoError(t, err)

	resolver, err := vouchers.NewResolver(f.voucherRepo)
	require.NoError(t, err)

	ship := &stubShipping{quotes: map[int64]shipping.Quote{66: {Courier: "jne", Service: "REG", Cost: 20}}}
	runner := &stagingRunner{repo: f.repo}
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled})

	svc, err := NewService(engine, resolver, f.voucherRepo, ship, f.gateway, f.repo,
		&stubSellers{known: map[int64]bool{}}, &stubUsers{known: map[int64]bool{7: true}}, runner, logg)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateInput{
		Carts:             []pricing.CartLineItem{{ProductID: 1, Quantity: 1}},
		UserAddressID:     100,
		CourierSelections: []shipping.CourierSelection{{SellerID: 66, Courier: "jne", Service: "REG"}},
	}, buyer())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
	assert.Empty(t, f.repo.committed)
}

func TestCreateVoucherRaceRollsBack(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.voucherRepo.usedErr = apperrors.New(apperrors.CodeConflict, "voucher already used")

	_, err := f.svc.Create(context.Background(), singleSellerInput(), buyer())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))
	assert.Empty(t, f.repo.committed)
}

func TestQuoteWithoutSelectionsHasNoFinalPrice(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	result, err := f.svc.Quote(context.Background(), QuoteInput{
		Carts: []pricing.CartLineItem{{ProductID: 1, Quantity: 2}},
	}, buyer())
	require.NoError(t, err)
	require.Len(t, result.Groups, 1)
	assert.Nil(t, result.Groups[0].FinalPrice)
	assert.Nil(t, result.Groups[0].TotalDiscount)
	assert.Nil(t, result.Groups[0].ShipmentFee)
	assert.Nil(t, result.GrandTotal)
	assert.Equal(t, int64(200), result.Groups[0].Subtotal)
}

func TestQuoteFullSelectionComputesFinalPrice(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	result, err := f.svc.Quote(context.Background(), QuoteInput{
		Carts:              []pricing.CartLineItem{{ProductID: 1, Quantity: 2}},
		SelectedVoucherIDs: []int64{1},
		UserAddressID:      100,
		CourierSelections:  []shipping.CourierSelection{{SellerID: 9, Courier: "jne", Service: "REG"}},
	}, buyer())
	require.NoError(t, err)
	require.Len(t, result.Groups, 1)
	require.NotNil(t, result.Groups[0].FinalPrice)
	assert.Equal(t, int64(170), *result.Groups[0].FinalPrice)
	require.NotNil(t, result.GrandTotal)
	assert.Equal(t, int64(170), *result.GrandTotal)

	// A quote never persists or consumes anything.
	assert.Empty(t, f.repo.committed)
	assert.False(t, f.voucherRepo.used[1])
	assert.Zero(t, f.gateway.calls)
}

func TestQuoteCourierOnlyHasFeeButNoFinalPrice(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	result, err := f.svc.Quote(context.Background(), QuoteInput{
		Carts:             []pricing.CartLineItem{{ProductID: 1, Quantity: 2}},
		UserAddressID:     100,
		CourierSelections: []shipping.CourierSelection{{SellerID: 9, Courier: "jne", Service: "REG"}},
	}, buyer())
	require.NoError(t, err)
	require.Len(t, result.Groups, 1)
	require.NotNil(t, result.Groups[0].ShipmentFee)
	assert.Equal(t, int64(20), *result.Groups[0].ShipmentFee)
	assert.Nil(t, result.Groups[0].FinalPrice)
	assert.Nil(t, result.GrandTotal)
}
