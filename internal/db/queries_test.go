package db

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/hpungsan/wxdash/internal/errors"
)

func TestInsertAndListHistory(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	rows := []HistoryRow{
		{ID: "01A", District: "Kollam", Temperature: 27.5, Condition: "Rain", SearchedAt: 100},
		{ID: "01B", District: "Kochi", Temperature: 29, Condition: "Overcast", SearchedAt: 200},
		{ID: "01C", District: "Idukki", Temperature: 19.2, Condition: "Fog", SearchedAt: 200},
	}
	for i := range rows {
		if err := InsertHistory(ctx, db, &rows[i]); err != nil {
			t.Fatalf("InsertHistory failed: %v", err)
		}
	}

	got, err := ListHistory(ctx, db, 10)
	if err != nil {
		t.Fatalf("ListHistory failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	want := []string{"Idukki", "Kochi", "Kollam"}
	for i, w := range want {
		if got[i].District != w {
			t.Errorf("got[%d].District = %q, want %q", i, got[i].District, w)
		}
	}
	if got[2].Temperature != 27.5 || got[2].Condition != "Rain" {
		t.Errorf("round-tripped row = %+v", got[2])
	}

	limited, err := ListHistory(ctx, db, 1)
	if err != nil {
		t.Fatalf("ListHistory failed: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "01C" {
		t.Errorf("limited = %+v, want only 01C", limited)
	}

	n, err := CountHistory(ctx, db)
	if err != nil {
		t.Fatalf("CountHistory failed: %v", err)
	}
	if n != 3 {
		t.Errorf("CountHistory = %d, want 3", n)
	}
}

func TestListHistory_EmptyIsNonNil(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()

	got, err := ListHistory(context.Background(), db, 10)
	if err != nil {
		t.Fatalf("ListHistory failed: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %v, want empty non-nil slice", got)
	}
}

func TestInsertHistory_DuplicateIDIsInternal(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	row := &HistoryRow{ID: "dup", District: "Kollam", Condition: "Clear Sky", SearchedAt: 1}
	if err := InsertHistory(ctx, db, row); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	err = InsertHistory(ctx, db, row)
	if !errors.Is(err, errors.ErrInternal) {
		t.Errorf("err = %v, want INTERNAL", err)
	}
}

func TestInsertHistory_Concurrent(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- InsertHistory(ctx, db, &HistoryRow{
				ID: fmt.Sprintf("id-%02d", i), District: "Kochi", Condition: "Clear Sky", SearchedAt: int64(i),
			})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Errorf("concurrent insert failed: %v", err)
		}
	}

	if err := Ping(ctx, db); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestPurgeHistory(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	for i, at := range []int64{100, 200, 300} {
		row := HistoryRow{ID: fmt.Sprintf("01%d", i), District: "Kollam", SearchedAt: at}
		if err := InsertHistory(ctx, db, &row); err != nil {
			t.Fatalf("InsertHistory failed: %v", err)
		}
	}

	n, err := PurgeHistory(ctx, db, 250)
	if err != nil {
		t.Fatalf("PurgeHistory failed: %v", err)
	}
	if n != 2 {
		t.Errorf("purged = %d, want 2", n)
	}

	n, err = PurgeHistory(ctx, db, 0)
	if err != nil {
		t.Fatalf("PurgeHistory failed: %v", err)
	}
	if n != 1 {
		t.Errorf("purged = %d, want 1", n)
	}
	if count, _ := CountHistory(ctx, db); count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}
