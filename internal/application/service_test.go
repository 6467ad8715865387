package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/harryli1024/hotel-purchase/internal/ai"
	"github.com/harryli1024/hotel-purchase/internal/auth"
)

type stubCounts struct {
	record *ai.GuestCount
}

func (s stubCounts) NearestWithin(ctx context.Context, target time.Time, windowDays int) (*ai.GuestCount, error) {
	return s.record, nil
}

func newTestService(counts ai.GuestCountLookup) (*Service, *MemoryRepository, *ai.MemoryStore) {
	repo := NewMemoryRepository()
	store := ai.NewMemoryStore()
	service := NewService(repo, store,
		ai.NewLearner(store, counts), ai.NewAdvisor(store, counts), zap.NewNop())
	return service, repo, store
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var testDate = time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

func submit(t *testing.T, service *Service, purchaserID int, items ...ItemInput) *Application {
	t.Helper()
	app, err := service.Submit(context.Background(), purchaserID, "采购员", testDate, nil, items)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	return app
}

func TestSubmitComputesTotals(t *testing.T) {
	service, _, _ := newTestService(stubCounts{})

	app := submit(t, service, 1,
		ItemInput{ItemName: "大米", Quantity: d("2"), Unit: "袋", Price: d("60")},
		ItemInput{ItemName: "黄瓜", Quantity: d("10"), Unit: "斤", Price: d("3.5")},
	)

	if !app.TotalAmount.Equal(d("155")) {
		t.Errorf("total = %s, want 155", app.TotalAmount)
	}
	if !app.Items[0].Subtotal.Equal(d("120")) || !app.Items[1].Subtotal.Equal(d("35")) {
		t.Errorf("subtotals = %s, %s", app.Items[0].Subtotal, app.Items[1].Subtotal)
	}
	if app.Status != StatusPending {
		t.Errorf("status = %s, want pending", app.Status)
	}
	if !strings.HasPrefix(app.AppNo, "CG20240510") || len(app.AppNo) != 13 {
		t.Errorf("appNo = %s, want CG20240510 plus 3 digits", app.AppNo)
	}
}

func TestSubmitValidation(t *testing.T) {
	service, _, _ := newTestService(stubCounts{})
	ctx := context.Background()

	if _, err := service.Submit(ctx, 1, "采购员", testDate, nil, nil); !errors.Is(err, ErrMissingFields) {
		t.Errorf("no items: err = %v, want ErrMissingFields", err)
	}
	_, err := service.Submit(ctx, 1, "采购员", testDate, nil, []ItemInput{
		{ItemName: "大米", Quantity: d("0"), Price: d("60")},
	})
	if !errors.Is(err, ErrMissingFields) {
		t.Errorf("zero quantity: err = %v, want ErrMissingFields", err)
	}
	_, err = service.Submit(ctx, 1, "采购员", time.Time{}, nil, []ItemInput{
		{ItemName: "大米", Quantity: d("1"), Price: d("60")},
	})
	if !errors.Is(err, ErrMissingFields) {
		t.Errorf("zero date: err = %v, want ErrMissingFields", err)
	}
}

func TestListScopesPurchaserToOwnApplications(t *testing.T) {
	service, _, _ := newTestService(stubCounts{})
	submit(t, service, 1, ItemInput{ItemName: "大米", Quantity: d("1"), Price: d("60")})
	submit(t, service, 2, ItemInput{ItemName: "黄瓜", Quantity: d("5"), Price: d("3")})
	ctx := context.Background()

	mine, total, err := service.List(ctx, 1, auth.RolePurchaser, ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(mine) != 1 || mine[0].PurchaserID != 1 {
		t.Errorf("purchaser list = %d items (total %d)", len(mine), total)
	}

	all, total, err := service.List(ctx, 99, auth.RoleBoss, ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(all) != 2 {
		t.Errorf("boss list = %d items (total %d), want all 2", len(all), total)
	}
}

func TestGetEnforcesOwnership(t *testing.T) {
	service, _, _ := newTestService(stubCounts{})
	app := submit(t, service, 1, ItemInput{ItemName: "大米", Quantity: d("1"), Price: d("60")})
	ctx := context.Background()

	if _, err := service.Get(ctx, app.ID, 2, auth.RolePurchaser); !errors.Is(err, ErrForbidden) {
		t.Errorf("other purchaser: err = %v, want ErrForbidden", err)
	}
	if _, err := service.Get(ctx, app.ID, 2, auth.RoleFinance); err != nil {
		t.Errorf("finance: %v", err)
	}
	if _, err := service.Get(ctx, 9999, 1, auth.RoleAdmin); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing: err = %v, want ErrNotFound", err)
	}
}

func TestReviewApprovalFeedsLearning(t *testing.T) {
	counts := stubCounts{record: &ai.GuestCount{Date: testDate, Count: 50}}
	service, _, store := newTestService(counts)
	app := submit(t, service, 1, ItemInput{ItemName: "大米", Quantity: d("14"), Unit: "斤", Price: d("3")})
	ctx := context.Background()

	reviewed, err := service.Review(ctx, app.ID, 7, true, nil)
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if reviewed.Status != StatusApproved {
		t.Errorf("status = %s, want approved", reviewed.Status)
	}
	if reviewed.AccountingStatus == nil || *reviewed.AccountingStatus != AccountingWaiting {
		t.Errorf("accounting status = %v, want waiting", reviewed.AccountingStatus)
	}

	agg, err := store.GetPrice(ctx, "大米")
	if err != nil {
		t.Fatalf("get price: %v", err)
	}
	if agg == nil || agg.Count != 1 || !agg.TotalPrice.Equal(d("3")) {
		t.Errorf("price aggregate = %+v, want one sample at 3", agg)
	}

	// Already settled applications cannot be reviewed again.
	if _, err := service.Review(ctx, app.ID, 7, false, nil); !errors.Is(err, ErrInvalidState) {
		t.Errorf("double review: err = %v, want ErrInvalidState", err)
	}
}

func TestReviewRejectionSkipsLearning(t *testing.T) {
	service, _, store := newTestService(stubCounts{})
	app := submit(t, service, 1, ItemInput{ItemName: "大米", Quantity: d("1"), Price: d("60")})
	ctx := context.Background()

	reviewed, err := service.Review(ctx, app.ID, 7, false, nil)
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if reviewed.Status != StatusRejected {
		t.Errorf("status = %s, want rejected", reviewed.Status)
	}
	if reviewed.AccountingStatus != nil {
		t.Errorf("accounting status = %v, want nil", reviewed.AccountingStatus)
	}
	if agg, _ := store.GetPrice(ctx, "大米"); agg != nil {
		t.Errorf("rejected application reached the aggregates: %+v", agg)
	}
}

func TestMarkAccountedRequiresApproval(t *testing.T) {
	service, _, _ := newTestService(stubCounts{})
	app := submit(t, service, 1, ItemInput{ItemName: "大米", Quantity: d("1"), Price: d("60")})
	ctx := context.Background()

	if err := service.MarkAccounted(ctx, app.ID, "财务", nil); !errors.Is(err, ErrInvalidState) {
		t.Errorf("pending: err = %v, want ErrInvalidState", err)
	}

	if _, err := service.Review(ctx, app.ID, 7, true, nil); err != nil {
		t.Fatalf("review: %v", err)
	}
	if err := service.MarkAccounted(ctx, app.ID, "财务", nil); err != nil {
		t.Fatalf("mark accounted: %v", err)
	}

	got, _ := service.Get(ctx, app.ID, 1, auth.RoleAdmin)
	if got.AccountingStatus == nil || *got.AccountingStatus != AccountingDone {
		t.Errorf("accounting status = %v, want done", got.AccountingStatus)
	}
	if got.AccountingPerson == nil || *got.AccountingPerson != "财务" {
		t.Errorf("accounting person = %v", got.AccountingPerson)
	}
}

func TestDelete(t *testing.T) {
	service, _, _ := newTestService(stubCounts{})
	ctx := context.Background()

	app := submit(t, service, 1, ItemInput{ItemName: "大米", Quantity: d("1"), Price: d("60")})
	if err := service.Delete(ctx, app.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := service.Delete(ctx, app.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("double delete: err = %v, want ErrNotFound", err)
	}
}

func TestFinanceOnlySeesApproved(t *testing.T) {
	service, _, _ := newTestService(stubCounts{})
	ctx := context.Background()

	submit(t, service, 1, ItemInput{ItemName: "大米", Quantity: d("1"), Price: d("60")})
	approved := submit(t, service, 1, ItemInput{ItemName: "黄瓜", Quantity: d("5"), Price: d("3")})
	if _, err := service.Review(ctx, approved.ID, 7, true, nil); err != nil {
		t.Fatalf("review: %v", err)
	}

	apps, total, err := service.List(ctx, 8, auth.RoleFinance, ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(apps) != 1 || apps[0].Status != StatusApproved {
		t.Errorf("finance list = %d items (total %d)", len(apps), total)
	}

	stats, err := service.Stats(ctx, 8, auth.RoleFinance)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 1 || stats.Pending != 0 {
		t.Errorf("finance stats = %+v, want approved only", stats)
	}
}

func TestListFiltersByItemName(t *testing.T) {
	service, _, _ := newTestService(stubCounts{})
	ctx := context.Background()

	submit(t, service, 1, ItemInput{ItemName: "东北大米", Quantity: d("1"), Price: d("60")})
	submit(t, service, 1, ItemInput{ItemName: "黄瓜", Quantity: d("5"), Price: d("3")})

	apps, total, err := service.List(ctx, 0, auth.RoleBoss, ListFilter{ItemName: "大米"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(apps) != 1 || apps[0].Items[0].ItemName != "东北大米" {
		t.Errorf("filtered list = %d items (total %d)", len(apps), total)
	}
}

func TestListRowsCarryAttachments(t *testing.T) {
	service, repo, _ := newTestService(stubCounts{})
	ctx := context.Background()

	app := submit(t, service, 1, ItemInput{ItemName: "大米", Quantity: d("1"), Price: d("60")})
	att := &Attachment{
		ApplicationID: app.ID,
		FileName:      "发票.pdf",
		FilePath:      "https://files.example.com/attachments/1/invoice.pdf",
		FileType:      "application/pdf",
		FileSize:      1024,
	}
	if err := repo.AddAttachment(ctx, att); err != nil {
		t.Fatalf("add attachment: %v", err)
	}

	apps, _, err := service.List(ctx, 0, auth.RoleBoss, ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(apps) != 1 {
		t.Fatalf("got %d applications", len(apps))
	}
	if len(apps[0].Attachments) != 1 || apps[0].Attachments[0].FileName != "发票.pdf" {
		t.Errorf("list row attachments = %+v, want the uploaded file", apps[0].Attachments)
	}
}

func TestListAnnotatesPendingApplications(t *testing.T) {
	counts := stubCounts{record: &ai.GuestCount{Date: testDate, Count: 50}}
	service, _, store := newTestService(counts)
	ctx := context.Background()

	// History says rice averages 3 per unit; this submission pays 6.
	if err := store.UpsertPrice(ctx, ai.PriceAggregate{
		ItemName: "大米", TotalPrice: d("9"), Count: 3, MinPrice: d("2.5"), MaxPrice: d("3.5"),
	}); err != nil {
		t.Fatalf("seed price: %v", err)
	}

	submit(t, service, 1, ItemInput{ItemName: "大米", Quantity: d("1"), Unit: "袋", Price: d("6")})

	apps, _, err := service.List(ctx, 0, auth.RoleBoss, ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(apps) != 1 {
		t.Fatalf("got %d applications", len(apps))
	}
	if apps[0].Advisory == nil || !strings.Contains(*apps[0].Advisory, "高于历史均价") {
		t.Errorf("advisory = %v, want a price warning", apps[0].Advisory)
	}
}

func TestStatsIncludeLearnedItems(t *testing.T) {
	counts := stubCounts{record: &ai.GuestCount{Date: testDate, Count: 50}}
	service, _, _ := newTestService(counts)
	ctx := context.Background()

	app := submit(t, service, 1,
		ItemInput{ItemName: "大米", Quantity: d("1"), Price: d("60")},
		ItemInput{ItemName: "黄瓜", Quantity: d("5"), Price: d("3")},
	)
	submit(t, service, 2, ItemInput{ItemName: "番茄", Quantity: d("4"), Price: d("4")})
	if _, err := service.Review(ctx, app.ID, 7, true, nil); err != nil {
		t.Fatalf("review: %v", err)
	}

	stats, err := service.Stats(ctx, 0, auth.RoleBoss)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 2 || stats.Pending != 1 || stats.Approved != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if !stats.ApprovedAmount.Equal(d("75")) {
		t.Errorf("approved amount = %s, want 75", stats.ApprovedAmount)
	}
	if stats.LearnedItems != 2 {
		t.Errorf("learned items = %d, want 2", stats.LearnedItems)
	}
}
