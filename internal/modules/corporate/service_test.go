package corporate

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/nexatech/crm-backend/internal/apperror"
	"github.com/nexatech/crm-backend/internal/modules/identity"
	"github.com/shopspring/decimal"
)

// fakeRepo is an in-memory Repository with the same write semantics as the
// postgres implementation.
type fakeRepo struct {
	nextLeadID     int64
	nextItemID     int64
	nextQuoteID    int64
	nextReminderID int64
	nextDocID      int64

	leads     map[int64]*Lead
	items     map[int64]*Item
	quotes    map[int64][]*Quote
	history   map[int64][]*HistoryEntry
	reminders map[int64]*Reminder
	docs      map[int64][]*Document

	lastFilter ListFilter
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		nextLeadID:     1,
		nextItemID:     1,
		nextQuoteID:    1,
		nextReminderID: 1,
		nextDocID:      1,
		leads:          map[int64]*Lead{},
		items:          map[int64]*Item{},
		quotes:         map[int64][]*Quote{},
		history:        map[int64][]*HistoryEntry{},
		reminders:      map[int64]*Reminder{},
		docs:           map[int64][]*Document{},
	}
}

func (f *fakeRepo) CreateLead(ctx context.Context, lead *Lead) error {
	lead.CorporateLeadID = f.nextLeadID
	f.nextLeadID++
	lead.Status = StatusNew
	if lead.EnquiryDate.IsZero() {
		lead.EnquiryDate = time.Now()
	}
	f.leads[lead.CorporateLeadID] = lead
	f.appendHistory(lead.CorporateLeadID, StatusNew, strptr("Lead created"), lead.ManagerID)
	f.addReminder(lead.CorporateLeadID, time.Now().Add(72*time.Hour), ReminderLeadCheckin, "Check in on new lead")
	return nil
}

func (f *fakeRepo) GetLead(ctx context.Context, managerID, leadID int64) (*Lead, error) {
	lead, ok := f.leads[leadID]
	if !ok || lead.ManagerID != managerID {
		return nil, sql.ErrNoRows
	}
	copy := *lead
	copy.Items = nil
	return &copy, nil
}

func (f *fakeRepo) List(ctx context.Context, managerID int64, filter ListFilter) ([]*Lead, int, error) {
	f.lastFilter = filter
	var out []*Lead
	for _, lead := range f.leads {
		if lead.ManagerID != managerID {
			continue
		}
		if filter.Status != nil && lead.Status != *filter.Status {
			continue
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(lead.Name), strings.ToLower(filter.Query)) {
			continue
		}
		out = append(out, lead)
	}
	return out, len(out), nil
}

func (f *fakeRepo) ListItems(ctx context.Context, leadID int64) ([]*Item, error) {
	var out []*Item
	for _, it := range f.items {
		if it.CorporateLeadID == leadID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateLead(ctx context.Context, managerID, leadID int64, patch LeadPatch, notes *string, actor int64) (*Lead, error) {
	lead, ok := f.leads[leadID]
	if !ok || lead.ManagerID != managerID {
		return nil, sql.ErrNoRows
	}
	if patch.Name != nil {
		lead.Name = *patch.Name
	}
	if patch.ContactNumber != nil {
		lead.ContactNumber = *patch.ContactNumber
	}
	if patch.Email != nil {
		lead.Email = patch.Email
	}
	if patch.Status != nil {
		lead.Status = *patch.Status
		f.appendHistory(leadID, *patch.Status, notes, actor)
	}
	copy := *lead
	return &copy, nil
}

func (f *fakeRepo) AddItem(ctx context.Context, item *Item) error {
	item.ItemID = f.nextItemID
	f.nextItemID++
	item.LastUpdated = time.Now()
	f.items[item.ItemID] = item
	return nil
}

func (f *fakeRepo) UpdateItem(ctx context.Context, managerID, itemID int64, patch ItemPatch) (*Item, error) {
	item, ok := f.items[itemID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	lead := f.leads[item.CorporateLeadID]
	if lead == nil || lead.ManagerID != managerID {
		return nil, sql.ErrNoRows
	}
	if patch.BillOfMaterial != nil {
		item.BillOfMaterial = *patch.BillOfMaterial
	}
	if patch.Quantity != nil {
		item.Quantity = *patch.Quantity
	}
	if patch.Requirements != nil {
		item.Requirements = patch.Requirements
	}
	item.LastUpdated = time.Now()
	copy := *item
	return &copy, nil
}

func (f *fakeRepo) CloseLead(ctx context.Context, managerID, leadID int64, status Status, note *string, actor int64) error {
	lead, ok := f.leads[leadID]
	if !ok || lead.ManagerID != managerID {
		return sql.ErrNoRows
	}
	lead.Status = status
	now := time.Now()
	lead.ClosedDate = &now
	f.appendHistory(leadID, status, note, actor)
	f.addReminder(leadID, now.Add(7*24*time.Hour), ReminderFollowUp, "Auto scheduled 1-week follow-up")
	return nil
}

func (f *fakeRepo) AddQuote(ctx context.Context, quote *Quote) error {
	quote.QuoteID = f.nextQuoteID
	f.nextQuoteID++
	quote.CreatedAt = time.Now()
	f.quotes[quote.CorporateLeadID] = append(f.quotes[quote.CorporateLeadID], quote)

	lead := f.leads[quote.CorporateLeadID]
	amount := quote.Amount
	lead.LastQuotedValue = &amount
	at := quote.CreatedAt
	lead.LastQuotedAt = &at
	return nil
}

func (f *fakeRepo) ListQuotes(ctx context.Context, leadID int64) ([]*Quote, error) {
	quotes := f.quotes[leadID]
	out := make([]*Quote, len(quotes))
	for i := range quotes {
		out[i] = quotes[len(quotes)-1-i]
	}
	return out, nil
}

func (f *fakeRepo) ListHistory(ctx context.Context, managerID, leadID int64) ([]*HistoryEntry, error) {
	lead := f.leads[leadID]
	if lead == nil || lead.ManagerID != managerID {
		return nil, nil
	}
	entries := f.history[leadID]
	out := make([]*HistoryEntry, len(entries))
	for i := range entries {
		out[i] = entries[len(entries)-1-i]
	}
	return out, nil
}

func (f *fakeRepo) ListReminders(ctx context.Context, managerID int64, window time.Duration, dueOnly bool) ([]*Reminder, error) {
	horizon := time.Now().Add(window)
	var out []*Reminder
	for _, rem := range f.reminders {
		lead := f.leads[rem.CorporateLeadID]
		if lead == nil || lead.ManagerID != managerID || rem.Done {
			continue
		}
		if rem.RemindAt.After(horizon) {
			continue
		}
		if dueOnly && rem.RemindAt.After(time.Now()) {
			continue
		}
		copy := *rem
		copy.LeadName = lead.Name
		copy.LeadStatus = lead.Status
		out = append(out, &copy)
	}
	return out, nil
}

func (f *fakeRepo) AckReminder(ctx context.Context, managerID, reminderID int64) (AckOutcome, error) {
	var outcome AckOutcome
	rem, ok := f.reminders[reminderID]
	if !ok {
		return outcome, sql.ErrNoRows
	}
	lead := f.leads[rem.CorporateLeadID]
	if lead == nil || lead.ManagerID != managerID {
		return outcome, sql.ErrNoRows
	}
	if rem.Done {
		outcome.AlreadyDone = true
		return outcome, nil
	}
	rem.Done = true
	if rem.ReminderType == ReminderLeadCheckin && !lead.Status.IsClosing() {
		f.addReminder(rem.CorporateLeadID, time.Now().Add(72*time.Hour), ReminderLeadCheckin, "Recurring 3-day check-in")
		outcome.Respawned = true
	}
	return outcome, nil
}

func (f *fakeRepo) InsertDocument(ctx context.Context, doc *Document) error {
	doc.DocID = f.nextDocID
	f.nextDocID++
	doc.DocType = "proposal"
	doc.UploadedAt = time.Now()
	f.docs[doc.CorporateLeadID] = append(f.docs[doc.CorporateLeadID], doc)
	return nil
}

func (f *fakeRepo) ListDocuments(ctx context.Context, managerID, leadID int64) ([]*Document, error) {
	lead := f.leads[leadID]
	if lead == nil || lead.ManagerID != managerID {
		return nil, nil
	}
	return f.docs[leadID], nil
}

func (f *fakeRepo) appendHistory(leadID int64, status Status, notes *string, actor int64) {
	f.history[leadID] = append(f.history[leadID], &HistoryEntry{
		StatusID:        int64(len(f.history[leadID]) + 1),
		CorporateLeadID: leadID,
		Status:          status,
		Notes:           notes,
		UpdatedBy:       actor,
		UpdateTimestamp: time.Now(),
	})
}

func (f *fakeRepo) addReminder(leadID int64, at time.Time, typ ReminderType, note string) {
	f.reminders[f.nextReminderID] = &Reminder{
		ReminderID:      f.nextReminderID,
		CorporateLeadID: leadID,
		RemindAt:        at,
		ReminderType:    typ,
		Notes:           &note,
	}
	f.nextReminderID++
}

// fakeBlobs records uploads in memory.
type fakeBlobs struct {
	keys []string
}

func (b *fakeBlobs) Put(ctx context.Context, key string, r io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	b.keys = append(b.keys, key)
	return key + ".pdf", nil
}

func (b *fakeBlobs) URL(storedPath string) string { return "/uploads/" + storedPath }

// ── fixtures ─────────────────────────────────────────────────────────────────

var (
	managerPriya = identity.Principal{EmployeeID: 21, Role: identity.RoleCorporateManager}
	managerRahul = identity.Principal{EmployeeID: 22, Role: identity.RoleCorporateManager}
)

func strptr(s string) *string { return &s }

func decptr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func newTestService() (Service, *fakeRepo, *fakeBlobs) {
	repo := newFakeRepo()
	blobs := &fakeBlobs{}
	return NewService(repo, blobs), repo, blobs
}

func mustCreate(t *testing.T, s Service, p identity.Principal, name string) *Lead {
	t.Helper()
	lead, err := s.Create(context.Background(), p, CreateLeadRequest{
		Name:          name,
		ContactNumber: "9876500000",
	})
	if err != nil {
		t.Fatalf("create lead: %v", err)
	}
	return lead
}

// ── tests ────────────────────────────────────────────────────────────────────

func TestCreateLeadSchedulesCheckin(t *testing.T) {
	s, repo, _ := newTestService()
	lead := mustCreate(t, s, managerPriya, "Acme Corp")

	if lead.Status != StatusNew {
		t.Errorf("expected status New, got %s", lead.Status)
	}
	reminders, _ := repo.ListReminders(context.Background(), managerPriya.EmployeeID, 14*24*time.Hour, false)
	if len(reminders) != 1 {
		t.Fatalf("expected one reminder, got %d", len(reminders))
	}
	if reminders[0].ReminderType != ReminderLeadCheckin {
		t.Errorf("expected lead_checkin, got %s", reminders[0].ReminderType)
	}
	until := time.Until(reminders[0].RemindAt)
	if until < 71*time.Hour || until > 73*time.Hour {
		t.Errorf("expected check-in about three days out, got %v", until)
	}
}

func TestCreateLeadValidation(t *testing.T) {
	s, _, _ := newTestService()
	ctx := context.Background()

	cases := []struct {
		name string
		req  CreateLeadRequest
	}{
		{"missing name", CreateLeadRequest{ContactNumber: "123456"}},
		{"missing contact", CreateLeadRequest{Name: "Acme"}},
		{"bad enquiry date", CreateLeadRequest{Name: "Acme", ContactNumber: "123456", EnquiryDate: strptr("31-01-2026")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.Create(ctx, managerPriya, tc.req); !apperror.IsKind(err, apperror.KindValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestOwnershipIsolation(t *testing.T) {
	s, _, _ := newTestService()
	ctx := context.Background()
	lead := mustCreate(t, s, managerPriya, "Acme Corp")

	if _, err := s.GetOne(ctx, managerRahul, lead.CorporateLeadID); !apperror.IsKind(err, apperror.KindNotFound) {
		t.Errorf("expected not found for other manager, got %v", err)
	}

	page, err := s.List(ctx, managerRahul, ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 0 {
		t.Errorf("expected other manager to see no leads, got %d", page.Total)
	}

	err = s.Close(ctx, managerRahul, CloseRequest{CorporateLeadID: lead.CorporateLeadID, Status: "Closed Won"})
	if !apperror.IsKind(err, apperror.KindNotFound) {
		t.Errorf("expected not found on cross-manager close, got %v", err)
	}
}

func TestUpdateStatusAppendsHistory(t *testing.T) {
	s, _, _ := newTestService()
	ctx := context.Background()
	lead := mustCreate(t, s, managerPriya, "Acme Corp")

	updated, err := s.Update(ctx, managerPriya, UpdateLeadRequest{
		CorporateLeadID: lead.CorporateLeadID,
		Status:          strptr("Discovery"),
		Notes:           strptr("First call done"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != StatusDiscovery {
		t.Errorf("expected Discovery, got %s", updated.Status)
	}

	history, err := s.ListHistory(ctx, managerPriya, lead.CorporateLeadID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected two history entries, got %d", len(history))
	}
	if history[0].Status != StatusDiscovery || *history[0].Notes != "First call done" {
		t.Errorf("unexpected newest entry: %+v", history[0])
	}
}

func TestUpdateWithoutStatusLeavesHistoryAlone(t *testing.T) {
	s, _, _ := newTestService()
	ctx := context.Background()
	lead := mustCreate(t, s, managerPriya, "Acme Corp")

	if _, err := s.Update(ctx, managerPriya, UpdateLeadRequest{
		CorporateLeadID: lead.CorporateLeadID,
		Name:            strptr("Acme Industries"),
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	history, _ := s.ListHistory(ctx, managerPriya, lead.CorporateLeadID)
	if len(history) != 1 {
		t.Errorf("expected only the creation entry, got %d", len(history))
	}
}

func TestUpdateRejectsTerminalStatus(t *testing.T) {
	s, repo, _ := newTestService()
	ctx := context.Background()
	lead := mustCreate(t, s, managerPriya, "Acme Corp")

	for _, status := range []string{"Closed Won", "Closed Lost"} {
		_, err := s.Update(ctx, managerPriya, UpdateLeadRequest{
			CorporateLeadID: lead.CorporateLeadID,
			Status:          &status,
		})
		if !apperror.IsKind(err, apperror.KindValidation) {
			t.Errorf("status %q: expected validation error, got %v", status, err)
		}
	}

	got, _ := s.GetOne(ctx, managerPriya, lead.CorporateLeadID)
	if got.Status != StatusNew || got.ClosedDate != nil {
		t.Errorf("lead must stay untouched after rejected updates, got %+v", got)
	}
	for _, rem := range repo.reminders {
		if rem.ReminderType == ReminderFollowUp {
			t.Error("no follow_up reminder may exist without a close")
		}
	}
}

func TestListLimitClamp(t *testing.T) {
	s, repo, _ := newTestService()
	ctx := context.Background()
	mustCreate(t, s, managerPriya, "Acme Corp")

	cases := []struct {
		limit int
		want  int
	}{
		{0, 50},
		{-10, 50},
		{20, 20},
		{1000000, 100},
	}
	for _, tc := range cases {
		if _, err := s.List(ctx, managerPriya, ListFilter{Limit: tc.limit}); err != nil {
			t.Fatalf("list with limit %d: %v", tc.limit, err)
		}
		if repo.lastFilter.Limit != tc.want {
			t.Errorf("limit %d: expected clamp to %d, got %d", tc.limit, tc.want, repo.lastFilter.Limit)
		}
	}
}

func TestQuoteRefreshesCache(t *testing.T) {
	s, _, _ := newTestService()
	ctx := context.Background()
	lead := mustCreate(t, s, managerPriya, "Acme Corp")

	for _, amount := range []int64{100000, 85000} {
		if _, err := s.AddQuote(ctx, managerPriya, AddQuoteRequest{
			CorporateLeadID: lead.CorporateLeadID,
			Amount:          decptr(amount),
		}); err != nil {
			t.Fatalf("add quote: %v", err)
		}
	}

	got, err := s.GetOne(ctx, managerPriya, lead.CorporateLeadID)
	if err != nil {
		t.Fatalf("get lead: %v", err)
	}
	if got.LastQuotedValue == nil || !got.LastQuotedValue.Equal(decimal.NewFromInt(85000)) {
		t.Errorf("expected cache to hold latest quote 85000, got %v", got.LastQuotedValue)
	}
	if got.LastQuotedAt == nil {
		t.Error("expected last_quoted_at to be set")
	}

	quotes, _ := s.ListQuotes(ctx, managerPriya, lead.CorporateLeadID)
	if len(quotes) != 2 {
		t.Fatalf("expected two quotes, got %d", len(quotes))
	}
	if !quotes[0].Amount.Equal(decimal.NewFromInt(85000)) {
		t.Errorf("expected newest quote first, got %s", quotes[0].Amount)
	}
}

func TestAddQuoteValidation(t *testing.T) {
	s, _, _ := newTestService()
	ctx := context.Background()
	lead := mustCreate(t, s, managerPriya, "Acme Corp")

	if _, err := s.AddQuote(ctx, managerPriya, AddQuoteRequest{CorporateLeadID: lead.CorporateLeadID}); !apperror.IsKind(err, apperror.KindValidation) {
		t.Errorf("expected validation error for missing amount, got %v", err)
	}
	if _, err := s.AddQuote(ctx, managerPriya, AddQuoteRequest{CorporateLeadID: lead.CorporateLeadID, Amount: decptr(-5)}); !apperror.IsKind(err, apperror.KindValidation) {
		t.Errorf("expected validation error for negative amount, got %v", err)
	}
	if _, err := s.AddQuote(ctx, managerRahul, AddQuoteRequest{CorporateLeadID: lead.CorporateLeadID, Amount: decptr(100)}); !apperror.IsKind(err, apperror.KindNotFound) {
		t.Errorf("expected not found for other manager, got %v", err)
	}
}

func TestCloseSchedulesFollowUpAndFoldsDealValue(t *testing.T) {
	s, repo, _ := newTestService()
	ctx := context.Background()
	lead := mustCreate(t, s, managerPriya, "Acme Corp")

	err := s.Close(ctx, managerPriya, CloseRequest{
		CorporateLeadID: lead.CorporateLeadID,
		Status:          "Closed Won",
		Notes:           strptr("Signed annual contract"),
		ValueClosed:     decptr(250000),
	})
	if err != nil {
		t.Fatalf("close: %v", err)
	}

	got, _ := s.GetOne(ctx, managerPriya, lead.CorporateLeadID)
	if got.Status != StatusClosedWon || got.ClosedDate == nil {
		t.Errorf("expected Closed Won with closed_date, got %+v", got)
	}

	history, _ := s.ListHistory(ctx, managerPriya, lead.CorporateLeadID)
	want := "Signed annual contract (Deal value ₹250000)"
	if history[0].Notes == nil || *history[0].Notes != want {
		t.Errorf("expected note %q, got %v", want, history[0].Notes)
	}

	var followUps int
	for _, rem := range repo.reminders {
		if rem.ReminderType == ReminderFollowUp {
			followUps++
			until := time.Until(rem.RemindAt)
			if until < 167*time.Hour || until > 169*time.Hour {
				t.Errorf("expected follow-up about one week out, got %v", until)
			}
		}
	}
	if followUps != 1 {
		t.Errorf("expected one follow_up reminder, got %d", followUps)
	}
}

func TestCloseLostKeepsDealValueInNote(t *testing.T) {
	s, _, _ := newTestService()
	ctx := context.Background()
	lead := mustCreate(t, s, managerPriya, "Acme Corp")

	err := s.Close(ctx, managerPriya, CloseRequest{
		CorporateLeadID: lead.CorporateLeadID,
		Status:          "Closed Lost",
		ValueClosed:     decptr(80000),
	})
	if err != nil {
		t.Fatalf("close: %v", err)
	}

	history, _ := s.ListHistory(ctx, managerPriya, lead.CorporateLeadID)
	want := "(Deal value ₹80000)"
	if history[0].Notes == nil || *history[0].Notes != want {
		t.Errorf("expected note %q, got %v", want, history[0].Notes)
	}
}

func TestCloseRejectsNonTerminalStatus(t *testing.T) {
	s, _, _ := newTestService()
	lead := mustCreate(t, s, managerPriya, "Acme Corp")

	err := s.Close(context.Background(), managerPriya, CloseRequest{
		CorporateLeadID: lead.CorporateLeadID,
		Status:          "Discovery",
	})
	if !apperror.IsKind(err, apperror.KindValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestAckCheckinSpawnsAtMostOneSuccessor(t *testing.T) {
	s, repo, _ := newTestService()
	ctx := context.Background()
	lead := mustCreate(t, s, managerPriya, "Acme Corp")

	var checkinID int64
	for id, rem := range repo.reminders {
		if rem.ReminderType == ReminderLeadCheckin {
			checkinID = id
		}
	}

	first, err := s.AckReminder(ctx, managerPriya, checkinID)
	if err != nil {
		t.Fatalf("first ack: %v", err)
	}
	if first.AlreadyDone || !first.Respawned {
		t.Errorf("expected first ack to respawn, got %+v", first)
	}

	second, err := s.AckReminder(ctx, managerPriya, checkinID)
	if err != nil {
		t.Fatalf("second ack: %v", err)
	}
	if !second.AlreadyDone || second.Respawned {
		t.Errorf("expected second ack to be a no-op, got %+v", second)
	}

	var checkins int
	for _, rem := range repo.reminders {
		if rem.CorporateLeadID == lead.CorporateLeadID && rem.ReminderType == ReminderLeadCheckin {
			checkins++
		}
	}
	if checkins != 2 {
		t.Errorf("expected original plus exactly one successor, got %d", checkins)
	}
}

func TestAckCheckinOnClosedLeadDoesNotRespawn(t *testing.T) {
	s, repo, _ := newTestService()
	ctx := context.Background()
	lead := mustCreate(t, s, managerPriya, "Acme Corp")

	if err := s.Close(ctx, managerPriya, CloseRequest{
		CorporateLeadID: lead.CorporateLeadID,
		Status:          "Closed Lost",
	}); err != nil {
		t.Fatalf("close: %v", err)
	}

	var checkinID int64
	for id, rem := range repo.reminders {
		if rem.ReminderType == ReminderLeadCheckin {
			checkinID = id
		}
	}
	outcome, err := s.AckReminder(ctx, managerPriya, checkinID)
	if err != nil {
		t.Fatalf("ack: %v", err)
	}
	if outcome.Respawned {
		t.Error("expected no successor on a closed lead")
	}
}

func TestReminderWindowClamp(t *testing.T) {
	s, _, _ := newTestService()
	ctx := context.Background()
	mustCreate(t, s, managerPriya, "Acme Corp")

	// Check-in sits three days out, inside every clamped window.
	for _, days := range []int{0, -3, 7, 500} {
		reminders, err := s.ListReminders(ctx, managerPriya, days, false)
		if err != nil {
			t.Fatalf("list reminders (%d days): %v", days, err)
		}
		if len(reminders) != 1 {
			t.Errorf("window %d days: expected one reminder, got %d", days, len(reminders))
		}
	}
}

func TestItemLifecycle(t *testing.T) {
	s, _, _ := newTestService()
	ctx := context.Background()
	lead := mustCreate(t, s, managerPriya, "Acme Corp")

	item, err := s.AddItem(ctx, managerPriya, AddItemRequest{
		CorporateLeadID: lead.CorporateLeadID,
		BillOfMaterial:  "50x ThinkPad T14",
		Requirements:    strptr("Delivery by March"),
	})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if item.Quantity != 1 {
		t.Errorf("expected default quantity 1, got %d", item.Quantity)
	}

	qty := 60
	updated, err := s.UpdateItem(ctx, managerPriya, UpdateItemRequest{ItemID: item.ItemID, Quantity: &qty})
	if err != nil {
		t.Fatalf("update item: %v", err)
	}
	if updated.Quantity != 60 {
		t.Errorf("expected quantity 60, got %d", updated.Quantity)
	}

	if _, err := s.UpdateItem(ctx, managerRahul, UpdateItemRequest{ItemID: item.ItemID, Quantity: &qty}); !apperror.IsKind(err, apperror.KindNotFound) {
		t.Errorf("expected not found for other manager, got %v", err)
	}
}

func TestUploadProposal(t *testing.T) {
	s, _, blobs := newTestService()
	ctx := context.Background()
	lead := mustCreate(t, s, managerPriya, "Acme Corp")

	body := bytes.NewReader([]byte("%PDF-1.7 fake"))
	doc, err := s.UploadProposal(ctx, managerPriya, lead.CorporateLeadID, "Q1 Proposal.pdf", "application/pdf", int64(body.Len()), body)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if doc.DocType != "proposal" || doc.FileURL == "" {
		t.Errorf("unexpected document: %+v", doc)
	}
	if len(blobs.keys) != 1 || !strings.HasPrefix(blobs.keys[0], fmt.Sprintf("proposals/%d/", lead.CorporateLeadID)) {
		t.Errorf("unexpected object key: %v", blobs.keys)
	}

	docs, err := s.ListProposals(ctx, managerPriya, lead.CorporateLeadID)
	if err != nil {
		t.Fatalf("list proposals: %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("expected one proposal, got %d", len(docs))
	}
}

func TestUploadProposalValidation(t *testing.T) {
	s, _, _ := newTestService()
	ctx := context.Background()
	lead := mustCreate(t, s, managerPriya, "Acme Corp")

	cases := []struct {
		name string
		mime string
		size int64
	}{
		{"wrong mime", "image/png", 1024},
		{"oversize", "application/pdf", MaxProposalBytes + 1},
		{"empty", "application/pdf", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.UploadProposal(ctx, managerPriya, lead.CorporateLeadID, "p.pdf", tc.mime, tc.size, bytes.NewReader(nil))
			if !apperror.IsKind(err, apperror.KindValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}
