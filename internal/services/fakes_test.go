package services

import (
	"database/sql"
	"strings"
	"sync"
	"time"

	"coldchain/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// fakeTx runs the callback without a real database. The repositories
// below ignore their tx argument, so passing nil through is safe.
type fakeTx struct{}

func (fakeTx) Transaction(fn func(tx *gorm.DB) error, opts ...*sql.TxOptions) error {
	return fn(nil)
}

// snapshotTx emulates rollback over the in-memory fakes: the snapshot
// closure captures repo state before the callback runs and returns a
// restore that is applied when the callback fails.
type snapshotTx struct {
	snapshot func() func()
}

func (t snapshotTx) Transaction(fn func(tx *gorm.DB) error, opts ...*sql.TxOptions) error {
	restore := t.snapshot()
	if err := fn(nil); err != nil {
		restore()
		return err
	}
	return nil
}

type auditEntry struct {
	ActorID    uint
	Action     string
	EntityType string
	EntityID   uint
	Details    string
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (f *fakeAudit) Record(actorID uint, action, entityType string, entityID uint, details string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, auditEntry{actorID, action, entityType, entityID, details})
}

func (f *fakeAudit) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.Action)
	}
	return out
}

type fakeSiteRepo struct {
	mu    sync.Mutex
	sites map[uint]*models.Site
}

func newFakeSiteRepo(sites ...*models.Site) *fakeSiteRepo {
	f := &fakeSiteRepo{sites: make(map[uint]*models.Site)}
	for _, s := range sites {
		f.sites[s.ID] = s
	}
	return f
}

func (f *fakeSiteRepo) Create(site *models.Site) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if site.ID == 0 {
		site.ID = uint(len(f.sites) + 1)
	}
	f.sites[site.ID] = site
	return nil
}

func (f *fakeSiteRepo) GetByID(id uint) (*models.Site, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	site, ok := f.sites[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return site, nil
}

func (f *fakeSiteRepo) GetByIDForUpdate(tx *gorm.DB, id uint) (*models.Site, error) {
	return f.GetByID(id)
}

func (f *fakeSiteRepo) GetAll() ([]models.Site, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Site, 0, len(f.sites))
	for _, s := range f.sites {
		out = append(out, *s)
	}
	return out, nil
}

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[uint]*models.Product
}

func newFakeProductRepo(products ...*models.Product) *fakeProductRepo {
	f := &fakeProductRepo{products: make(map[uint]*models.Product)}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeProductRepo) Create(product *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if product.ID == 0 {
		product.ID = uint(len(f.products) + 1)
	}
	f.products[product.ID] = product
	return nil
}

func (f *fakeProductRepo) GetByID(siteID, id uint) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok || p.SiteID != siteID {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (f *fakeProductRepo) GetByIDs(siteID uint, ids []uint) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := f.products[id]; ok && p.SiteID == siteID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProductRepo) GetBySite(siteID uint) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Product
	for _, p := range f.products {
		if p.SiteID == siteID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProductRepo) GetByIDForUpdate(tx *gorm.DB, id uint) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *p
	return &copied, nil
}

func (f *fakeProductRepo) Save(tx *gorm.DB, product *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *product
	f.products[product.ID] = &copied
	return nil
}

func (f *fakeProductRepo) Delete(siteID, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.products, id)
	return nil
}

func (f *fakeProductRepo) snapshot() func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	saved := make(map[uint]*models.Product, len(f.products))
	for id, p := range f.products {
		copied := *p
		saved[id] = &copied
	}
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.products = saved
	}
}

type fakeColdRoomRepo struct {
	mu    sync.Mutex
	rooms map[uint]*models.ColdRoom
}

func newFakeColdRoomRepo(rooms ...*models.ColdRoom) *fakeColdRoomRepo {
	f := &fakeColdRoomRepo{rooms: make(map[uint]*models.ColdRoom)}
	for _, r := range rooms {
		f.rooms[r.ID] = r
	}
	return f
}

func (f *fakeColdRoomRepo) Create(room *models.ColdRoom) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if room.ID == 0 {
		room.ID = uint(len(f.rooms) + 1)
	}
	f.rooms[room.ID] = room
	return nil
}

func (f *fakeColdRoomRepo) GetByID(siteID, id uint) (*models.ColdRoom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rooms[id]
	if !ok || r.SiteID != siteID {
		return nil, gorm.ErrRecordNotFound
	}
	return r, nil
}

func (f *fakeColdRoomRepo) GetByIDForUpdate(tx *gorm.DB, id uint) (*models.ColdRoom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rooms[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *r
	return &copied, nil
}

func (f *fakeColdRoomRepo) GetBySite(siteID uint) ([]models.ColdRoom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ColdRoom
	for _, r := range f.rooms {
		if r.SiteID == siteID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeColdRoomRepo) Save(tx *gorm.DB, room *models.ColdRoom) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *room
	f.rooms[room.ID] = &copied
	return nil
}

func (f *fakeColdRoomRepo) snapshot() func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	saved := make(map[uint]*models.ColdRoom, len(f.rooms))
	for id, r := range f.rooms {
		copied := *r
		saved[id] = &copied
	}
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.rooms = saved
	}
}

type fakeMovementRepo struct {
	mu        sync.Mutex
	movements []models.StockMovement
}

func (f *fakeMovementRepo) Create(tx *gorm.DB, movement *models.StockMovement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	movement.ID = uint(len(f.movements) + 1)
	movement.CreatedAt = time.Now()
	f.movements = append(f.movements, *movement)
	return nil
}

func (f *fakeMovementRepo) GetByID(id uint) (*models.StockMovement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.movements {
		if f.movements[i].ID == id {
			copied := f.movements[i]
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeMovementRepo) GetByProduct(productID uint) ([]models.StockMovement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.StockMovement
	for _, m := range f.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMovementRepo) snapshot() func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	saved := make([]models.StockMovement, len(f.movements))
	copy(saved, f.movements)
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.movements = saved
	}
}

func (f *fakeMovementRepo) SumSigned(productID uint) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sum := decimal.Zero
	for i := range f.movements {
		if f.movements[i].ProductID == productID {
			sum = sum.Add(f.movements[i].SignedQuantity())
		}
	}
	return sum, nil
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[uint]*models.Order
}

func newFakeOrderRepo(orders ...*models.Order) *fakeOrderRepo {
	f := &fakeOrderRepo{orders: make(map[uint]*models.Order)}
	for _, o := range orders {
		f.orders[o.ID] = o
	}
	return f
}

func (f *fakeOrderRepo) Create(order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if order.ID == 0 {
		order.ID = uint(len(f.orders) + 1)
	}
	f.orders[order.ID] = order
	return nil
}

func (f *fakeOrderRepo) GetByID(siteID, id uint) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok || o.SiteID != siteID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *o
	return &copied, nil
}

func (f *fakeOrderRepo) GetByIDForUpdate(tx *gorm.DB, siteID, id uint) (*models.Order, error) {
	return f.GetByID(siteID, id)
}

func (f *fakeOrderRepo) GetByIDAnySite(tx *gorm.DB, id uint) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *o
	return &copied, nil
}

func (f *fakeOrderRepo) GetBySite(siteID uint) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, o := range f.orders {
		if o.SiteID == siteID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) GetByClient(clientID uint) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, o := range f.orders {
		if o.ClientID == clientID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) Save(tx *gorm.DB, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *order
	f.orders[order.ID] = &copied
	return nil
}

func (f *fakeOrderRepo) Delete(siteID, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.orders, id)
	return nil
}

func (f *fakeOrderRepo) snapshot() func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	saved := make(map[uint]*models.Order, len(f.orders))
	for id, o := range f.orders {
		copied := *o
		saved[id] = &copied
	}
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.orders = saved
	}
}

type fakeRentalRepo struct {
	mu      sync.Mutex
	rentals map[uint]*models.Rental
}

func newFakeRentalRepo(rentals ...*models.Rental) *fakeRentalRepo {
	f := &fakeRentalRepo{rentals: make(map[uint]*models.Rental)}
	for _, r := range rentals {
		f.rentals[r.ID] = r
	}
	return f
}

func (f *fakeRentalRepo) Create(rental *models.Rental) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rental.ID == 0 {
		rental.ID = uint(len(f.rentals) + 1)
	}
	f.rentals[rental.ID] = rental
	return nil
}

func (f *fakeRentalRepo) GetByID(siteID, id uint) (*models.Rental, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rentals[id]
	if !ok || r.SiteID != siteID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *r
	return &copied, nil
}

func (f *fakeRentalRepo) GetByIDTx(tx *gorm.DB, siteID, id uint) (*models.Rental, error) {
	return f.GetByID(siteID, id)
}

func (f *fakeRentalRepo) GetByIDAnySite(tx *gorm.DB, id uint) (*models.Rental, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rentals[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *r
	return &copied, nil
}

func (f *fakeRentalRepo) GetBySite(siteID uint) ([]models.Rental, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Rental
	for _, r := range f.rentals {
		if r.SiteID == siteID {
			out = append(out, *r)
		}
	}
	return out, nil
}

// UpdateStatusIf mirrors the conditional UPDATE: the status only changes
// when the row is still in the expected state, and the returned count
// tells the caller whether it won.
func (f *fakeRentalRepo) UpdateStatusIf(tx *gorm.DB, id uint, from, to models.RentalStatus, updates map[string]interface{}) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rentals[id]
	if !ok || r.Status != from {
		return 0, nil
	}
	r.Status = to
	return 1, nil
}

type fakeInvoiceRepo struct {
	mu       sync.Mutex
	invoices map[uint]*models.Invoice
	nextID   uint
}

func newFakeInvoiceRepo(invoices ...*models.Invoice) *fakeInvoiceRepo {
	f := &fakeInvoiceRepo{invoices: make(map[uint]*models.Invoice)}
	for _, inv := range invoices {
		f.invoices[inv.ID] = inv
		if inv.ID > f.nextID {
			f.nextID = inv.ID
		}
	}
	return f
}

func (f *fakeInvoiceRepo) Create(tx *gorm.DB, invoice *models.Invoice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	invoice.ID = f.nextID
	copied := *invoice
	f.invoices[invoice.ID] = &copied
	return nil
}

func (f *fakeInvoiceRepo) GetByID(id uint) (*models.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invoices[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *inv
	return &copied, nil
}

func (f *fakeInvoiceRepo) GetByIDForUpdate(tx *gorm.DB, id uint) (*models.Invoice, error) {
	return f.GetByID(id)
}

func (f *fakeInvoiceRepo) GetByOrderID(tx *gorm.DB, orderID uint) (*models.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inv := range f.invoices {
		if inv.OrderID != nil && *inv.OrderID == orderID {
			copied := *inv
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeInvoiceRepo) GetByRentalID(tx *gorm.DB, rentalID uint) (*models.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inv := range f.invoices {
		if inv.RentalID != nil && *inv.RentalID == rentalID {
			copied := *inv
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeInvoiceRepo) GetBySite(siteID uint) ([]models.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Invoice
	for _, inv := range f.invoices {
		if inv.SiteID == siteID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (f *fakeInvoiceRepo) Save(tx *gorm.DB, invoice *models.Invoice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *invoice
	f.invoices[invoice.ID] = &copied
	return nil
}

func (f *fakeInvoiceRepo) snapshot() func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	saved := make(map[uint]*models.Invoice, len(f.invoices))
	for id, inv := range f.invoices {
		copied := *inv
		saved[id] = &copied
	}
	savedNextID := f.nextID
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.invoices = saved
		f.nextID = savedNextID
	}
}

func (f *fakeInvoiceRepo) MaxNumberWithPrefix(tx *gorm.DB, prefix string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	max := ""
	for _, inv := range f.invoices {
		if strings.HasPrefix(inv.InvoiceNumber, prefix) && inv.InvoiceNumber > max {
			max = inv.InvoiceNumber
		}
	}
	return max, nil
}

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments map[uint]*models.Payment
}

func newFakePaymentRepo(payments ...*models.Payment) *fakePaymentRepo {
	f := &fakePaymentRepo{payments: make(map[uint]*models.Payment)}
	for _, p := range payments {
		f.payments[p.ID] = p
	}
	return f
}

func (f *fakePaymentRepo) Create(payment *models.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if payment.ID == 0 {
		payment.ID = uint(len(f.payments) + 1)
	}
	copied := *payment
	f.payments[payment.ID] = &copied
	return nil
}

func (f *fakePaymentRepo) GetByID(id uint) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *p
	return &copied, nil
}

func (f *fakePaymentRepo) GetByIDForUpdate(tx *gorm.DB, id uint) (*models.Payment, error) {
	return f.GetByID(id)
}

func (f *fakePaymentRepo) GetByTransactionRef(ref string) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.payments {
		if p.GatewayTransactionRef == ref {
			copied := *p
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePaymentRepo) GetByInvoice(invoiceID uint) ([]models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Payment
	for _, p := range f.payments {
		if p.InvoiceID == invoiceID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePaymentRepo) Save(tx *gorm.DB, payment *models.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *payment
	f.payments[payment.ID] = &copied
	return nil
}

type assetKey struct {
	assetType models.AssetType
	id        uint
}

type fakeAssetRepo struct {
	mu     sync.Mutex
	assets map[assetKey]models.RentableAsset
}

func newFakeAssetRepo(assets ...models.RentableAsset) *fakeAssetRepo {
	f := &fakeAssetRepo{assets: make(map[assetKey]models.RentableAsset)}
	for _, a := range assets {
		f.assets[assetKey{typeOf(a), a.GetID()}] = a
	}
	return f
}

func typeOf(a models.RentableAsset) models.AssetType {
	switch a.(type) {
	case *models.ColdBox:
		return models.AssetColdBox
	case *models.ColdPlate:
		return models.AssetColdPlate
	case *models.Tricycle:
		return models.AssetTricycle
	case *models.ColdRoom:
		return models.AssetColdRoom
	}
	return ""
}

func (f *fakeAssetRepo) Create(asset models.RentableAsset) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assets[assetKey{typeOf(asset), asset.GetID()}] = asset
	return nil
}

func (f *fakeAssetRepo) Get(tx *gorm.DB, assetType models.AssetType, id uint) (models.RentableAsset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.assets[assetKey{assetType, id}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (f *fakeAssetRepo) GetForUpdate(tx *gorm.DB, assetType models.AssetType, id uint) (models.RentableAsset, error) {
	return f.Get(tx, assetType, id)
}

func (f *fakeAssetRepo) UpdateStatus(tx *gorm.DB, assetType models.AssetType, id uint, status models.AssetStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.assets[assetKey{assetType, id}]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	switch asset := a.(type) {
	case *models.ColdBox:
		asset.Status = status
	case *models.ColdPlate:
		asset.Status = status
	case *models.Tricycle:
		asset.Status = status
	case *models.ColdRoom:
		asset.Status = status
	}
	return nil
}

type fakeGateway struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeGateway) RequestToPay(amount decimal.Decimal, phoneNumber, externalRef, message string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return externalRef, nil
}

type fakeDedupeCache struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newFakeDedupeCache() *fakeDedupeCache {
	return &fakeDedupeCache{seen: make(map[string]bool)}
}

func (f *fakeDedupeCache) WasWebhookProcessed(transactionRef string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen[transactionRef], nil
}

func (f *fakeDedupeCache) MarkWebhookProcessed(transactionRef string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen[transactionRef] = true
	return nil
}
