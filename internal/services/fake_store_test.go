package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"conreach/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memStore is an in-memory store enforcing the same unique constraints as the
// Postgres schema. Each repository interface gets its own view type.
type memStore struct {
	mu  sync.Mutex
	seq int

	events       map[string]*domain.Event
	vendorNames  map[string]string
	vendorEvents map[string]*domain.VendorEvent
	optIns       map[string]*domain.OptIn
	links        map[string]*domain.VendorOptIn
	broadcasts   map[string]*domain.Broadcast
	receipts     map[string]*domain.BroadcastReceipt
	usersByPhone map[string]string
	usersByEmail map[string]string
	// userIDs holds accounts known only by ID.
	userIDs map[string]bool

	// beforeOptInCreate runs inside Create before constraints are checked.
	beforeOptInCreate func(o *domain.OptIn) error
	createOptInCalls  int
	createErr         error
	listPendingErr    error
}

func newMemStore() *memStore {
	return &memStore{
		events:       make(map[string]*domain.Event),
		vendorNames:  make(map[string]string),
		vendorEvents: make(map[string]*domain.VendorEvent),
		optIns:       make(map[string]*domain.OptIn),
		links:        make(map[string]*domain.VendorOptIn),
		broadcasts:   make(map[string]*domain.Broadcast),
		receipts:     make(map[string]*domain.BroadcastReceipt),
		usersByPhone: make(map[string]string),
		usersByEmail: make(map[string]string),
		userIDs:      make(map[string]bool),
	}
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *memStore) addEvent(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[id] = &domain.Event{ID: id, Name: "Con " + id}
}

func (s *memStore) addVendorEvent(id, vendorID, vendorName, eventID, token string, active bool) *domain.VendorEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vendorNames[vendorID] = vendorName
	ve := &domain.VendorEvent{
		ID: id, VendorID: vendorID, EventID: eventID, VendorName: vendorName,
		QRToken: token, Active: active,
	}
	s.vendorEvents[id] = ve
	cp := *ve
	return &cp
}

func (s *memStore) optInCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.optIns)
}

func (s *memStore) linksFor(optInID string) []*domain.VendorOptIn {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.VendorOptIn
	for _, l := range s.links {
		if l.OptInID == optInID {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out
}

func (s *memStore) receiptsFor(broadcastID string) []*domain.BroadcastReceipt {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.BroadcastReceipt
	for _, r := range s.receipts {
		if r.BroadcastID == broadcastID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memStore) insertOptIn(o domain.OptIn) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	o.ID = s.nextID("oi")
	s.optIns[o.ID] = &o
	return o.ID
}

// --- events ---

type memEventRepo struct{ *memStore }

func (r memEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

// --- vendor events ---

type memVendorEventRepo struct{ *memStore }

func (r memVendorEventRepo) Create(ctx context.Context, ve *domain.VendorEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.vendorEvents {
		if existing.QRToken == ve.QRToken {
			return domain.ErrTokenTaken
		}
		if existing.VendorID == ve.VendorID && existing.EventID == ve.EventID {
			return domain.ErrAlreadyExists
		}
	}
	ve.ID = r.nextID("ve")
	cp := *ve
	cp.VendorName = r.vendorNames[ve.VendorID]
	r.vendorEvents[ve.ID] = &cp
	return nil
}

func (r memVendorEventRepo) GetByID(ctx context.Context, id string) (*domain.VendorEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ve, ok := r.vendorEvents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *ve
	return &cp, nil
}

func (r memVendorEventRepo) GetByVendorAndEvent(ctx context.Context, vendorID, eventID string) (*domain.VendorEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ve := range r.vendorEvents {
		if ve.VendorID == vendorID && ve.EventID == eventID {
			cp := *ve
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memVendorEventRepo) GetByQRToken(ctx context.Context, token string) (*domain.VendorEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ve := range r.vendorEvents {
		if ve.QRToken == token {
			cp := *ve
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memVendorEventRepo) Deactivate(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ve, ok := r.vendorEvents[id]
	if !ok {
		return domain.ErrNotFound
	}
	ve.Active = false
	ve.UpdatedAt = at
	return nil
}

// --- opt-ins ---

type memOptInRepo struct{ *memStore }

func (r memOptInRepo) Create(ctx context.Context, o *domain.OptIn) error {
	r.mu.Lock()
	r.createOptInCalls++
	hook := r.beforeOptInCreate
	r.mu.Unlock()
	if hook != nil {
		if err := hook(o); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.optIns {
		if existing.CheckInToken == o.CheckInToken {
			return domain.ErrTokenTaken
		}
		if existing.EventID != o.EventID {
			continue
		}
		if o.Phone != "" && existing.Phone == o.Phone {
			return domain.ErrAlreadyExists
		}
		if o.Email != "" && existing.Email == o.Email {
			return domain.ErrAlreadyExists
		}
	}
	o.ID = r.nextID("oi")
	cp := *o
	r.optIns[o.ID] = &cp
	return nil
}

func (r memOptInRepo) find(match func(*domain.OptIn) bool) (*domain.OptIn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.optIns {
		if match(o) {
			cp := *o
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memOptInRepo) GetByEventAndPhone(ctx context.Context, eventID, phone string) (*domain.OptIn, error) {
	return r.find(func(o *domain.OptIn) bool { return o.EventID == eventID && o.Phone == phone })
}

func (r memOptInRepo) GetByEventAndEmail(ctx context.Context, eventID, email string) (*domain.OptIn, error) {
	return r.find(func(o *domain.OptIn) bool { return o.EventID == eventID && o.Email == email })
}

func (r memOptInRepo) GetByCheckInToken(ctx context.Context, token string) (*domain.OptIn, error) {
	return r.find(func(o *domain.OptIn) bool { return o.CheckInToken == token })
}

func (r memOptInRepo) AttachUser(ctx context.Context, optInID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.optIns[optInID]
	if !ok || o.UserID != nil {
		return false, nil
	}
	o.UserID = &userID
	return true, nil
}

func (r memOptInRepo) MarkCheckedIn(ctx context.Context, optInID string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.optIns[optInID]
	if !ok || o.CheckedInAt != nil {
		return false, nil
	}
	o.CheckedInAt = &at
	return true, nil
}

func (r memOptInRepo) ListIDsByEvent(ctx context.Context, eventID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0)
	for id, o := range r.optIns {
		if o.EventID == eventID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r memOptInRepo) ListIDsByVendorEvent(ctx context.Context, vendorEventID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0)
	for _, l := range r.links {
		if l.VendorEventID == vendorEventID {
			ids = append(ids, l.OptInID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// --- vendor opt-ins ---

type memVendorOptInRepo struct{ *memStore }

func (r memVendorOptInRepo) FindOrCreate(ctx context.Context, vendorEventID, optInID string, scannedAt time.Time) (*domain.VendorOptIn, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := vendorEventID + "|" + optInID
	if l, ok := r.links[key]; ok {
		cp := *l
		return &cp, false, nil
	}
	l := &domain.VendorOptIn{ID: r.nextID("vo"), VendorEventID: vendorEventID, OptInID: optInID, ScannedAt: scannedAt}
	r.links[key] = l
	cp := *l
	return &cp, true, nil
}

// --- broadcasts ---

type memBroadcastRepo struct{ *memStore }

func (r memBroadcastRepo) CreateWithReceipts(ctx context.Context, b *domain.Broadcast, optInIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b.RecipientCount != len(optInIDs) {
		return fmt.Errorf("recipient count mismatch")
	}
	b.ID = r.nextID("b")
	cp := *b
	r.broadcasts[b.ID] = &cp
	for _, id := range optInIDs {
		rid := r.nextID("r")
		r.receipts[rid] = &domain.BroadcastReceipt{
			ID: rid, BroadcastID: b.ID, OptInID: id, Status: domain.ReceiptPending, CreatedAt: b.CreatedAt,
		}
	}
	return nil
}

func (r memBroadcastRepo) GetByID(ctx context.Context, id string) (*domain.Broadcast, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.broadcasts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r memBroadcastRepo) ListPendingDeliveries(ctx context.Context, broadcastID string) ([]*domain.PendingDelivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listPendingErr != nil {
		return nil, r.listPendingErr
	}
	out := make([]*domain.PendingDelivery, 0)
	for _, rc := range r.receipts {
		if rc.BroadcastID != broadcastID || rc.Status != domain.ReceiptPending {
			continue
		}
		o := r.optIns[rc.OptInID]
		p := &domain.PendingDelivery{ReceiptID: rc.ID, OptInID: rc.OptInID}
		if o != nil {
			p.Name, p.Phone, p.Email = o.Name, o.Phone, o.Email
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReceiptID < out[j].ReceiptID })
	return out, nil
}

func (r memBroadcastRepo) settle(receiptID string, apply func(*domain.BroadcastReceipt)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	rc, ok := r.receipts[receiptID]
	if !ok || rc.Status != domain.ReceiptPending {
		return false
	}
	apply(rc)
	return true
}

func (r memBroadcastRepo) MarkDelivered(ctx context.Context, receiptID, providerMessageID string, at time.Time) (bool, error) {
	return r.settle(receiptID, func(rc *domain.BroadcastReceipt) {
		rc.Status = domain.ReceiptDelivered
		rc.DeliveredAt = &at
		rc.ProviderMessageID = providerMessageID
	}), nil
}

func (r memBroadcastRepo) MarkFailed(ctx context.Context, receiptID, reason string) (bool, error) {
	return r.settle(receiptID, func(rc *domain.BroadcastReceipt) {
		rc.Status = domain.ReceiptFailed
		rc.FailureReason = reason
	}), nil
}

func (r memBroadcastRepo) CountReceipts(ctx context.Context, broadcastID string) (domain.ReceiptCounts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var c domain.ReceiptCounts
	for _, rc := range r.receipts {
		if rc.BroadcastID != broadcastID {
			continue
		}
		switch rc.Status {
		case domain.ReceiptPending:
			c.Pending++
		case domain.ReceiptDelivered:
			c.Delivered++
		case domain.ReceiptFailed:
			c.Failed++
		}
	}
	return c, nil
}

func (r memBroadcastRepo) ListReceipts(ctx context.Context, broadcastID string, params domain.PaginationParams) ([]*domain.BroadcastReceipt, int, error) {
	all := r.receiptsFor(broadcastID)
	start := params.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + params.PageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], len(all), nil
}

func (r memBroadcastRepo) SetDeliveryExhausted(ctx context.Context, broadcastID string, at *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.broadcasts[broadcastID]
	if !ok {
		return domain.ErrNotFound
	}
	b.DeliveryExhaustedAt = at
	return nil
}

func (r memBroadcastRepo) ListStalled(ctx context.Context, pendingBefore time.Time, params domain.PaginationParams) ([]*domain.BroadcastWithCounts, int, error) {
	r.mu.Lock()
	var ids []string
	for id, b := range r.broadcasts {
		if b.DeliveryExhaustedAt != nil {
			ids = append(ids, id)
			continue
		}
		if b.SentAt == nil || !b.SentAt.Before(pendingBefore) {
			continue
		}
		for _, rc := range r.receipts {
			if rc.BroadcastID == id && rc.Status == domain.ReceiptPending {
				ids = append(ids, id)
				break
			}
		}
	}
	r.mu.Unlock()
	sort.Strings(ids)
	items := make([]*domain.BroadcastWithCounts, 0, len(ids))
	for _, id := range ids {
		b, _ := r.GetByID(ctx, id)
		c, _ := r.CountReceipts(ctx, id)
		items = append(items, &domain.BroadcastWithCounts{Broadcast: b, Receipts: c})
	}
	return items, len(items), nil
}

func (r memBroadcastRepo) ListFeed(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.FeedItem, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]*domain.FeedItem, 0)
	for _, b := range r.broadcasts {
		if b.EventID != eventID || b.SentAt == nil {
			continue
		}
		ve := r.vendorEvents[b.VendorEventID]
		display := ""
		if ve != nil {
			display = ve.Display()
		}
		items = append(items, &domain.FeedItem{
			BroadcastID: b.ID, VendorEventID: b.VendorEventID, VendorEventDisplay: display,
			Message: b.Message, Channel: b.Channel, SentAt: *b.SentAt,
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].SentAt.After(items[j].SentAt) })
	return items, len(items), nil
}

// --- users and tokens ---

type memUserRepo struct {
	*memStore
	phoneCalls int
	emailCalls int
	err        error
}

func (r *memUserRepo) FindIDByPhone(ctx context.Context, phone string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phoneCalls++
	if r.err != nil {
		return "", r.err
	}
	if id, ok := r.usersByPhone[phone]; ok {
		return id, nil
	}
	return "", domain.ErrNotFound
}

func (r *memUserRepo) FindIDByEmail(ctx context.Context, email string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emailCalls++
	if r.err != nil {
		return "", r.err
	}
	if id, ok := r.usersByEmail[email]; ok {
		return id, nil
	}
	return "", domain.ErrNotFound
}

func (r *memUserRepo) Exists(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	if r.userIDs[id] {
		return true, nil
	}
	for _, known := range r.usersByPhone {
		if known == id {
			return true, nil
		}
	}
	for _, known := range r.usersByEmail {
		if known == id {
			return true, nil
		}
	}
	return false, nil
}

// seqTokens issues deterministic unique tokens.
type seqTokens struct {
	mu sync.Mutex
	n  int
}

func (t *seqTokens) Issue(ctx context.Context, kind domain.TokenKind) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.n++
	return fmt.Sprintf("%s-tok-%d", kind, t.n), nil
}

type recordingQueue struct {
	mu       sync.Mutex
	enqueued []string
	err      error
}

func (q *recordingQueue) EnqueueDelivery(ctx context.Context, broadcastID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.enqueued = append(q.enqueued, broadcastID)
	return nil
}
