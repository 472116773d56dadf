package store

import (
	"reflect"
	"testing"
)

func TestRecordVisit_OrdersMostRecentFirst(t *testing.T) {
	db := setupTestDB(t)

	for _, id := range []int64{1, 2, 3} {
		if err := db.RecordVisit("ticket", Visit{ID: id}); err != nil {
			t.Fatalf("RecordVisit(%d): %v", id, err)
		}
	}

	ids, err := db.RecentIDs("ticket")
	if err != nil {
		t.Fatalf("RecentIDs: %v", err)
	}
	if want := []int64{3, 2, 1}; !reflect.DeepEqual(ids, want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}
}

func TestRecordVisit_CapsAtFive(t *testing.T) {
	db := setupTestDB(t)

	for id := int64(1); id <= 8; id++ {
		if err := db.RecordVisit("account", Visit{ID: id, Label: "acct"}); err != nil {
			t.Fatalf("RecordVisit(%d): %v", id, err)
		}
	}

	ids, err := db.RecentIDs("account")
	if err != nil {
		t.Fatalf("RecentIDs: %v", err)
	}
	if want := []int64{8, 7, 6, 5, 4}; !reflect.DeepEqual(ids, want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}
}

func TestRecordVisit_RepeatMovesToFront(t *testing.T) {
	db := setupTestDB(t)

	for _, id := range []int64{1, 2, 3, 1} {
		if err := db.RecordVisit("ticket", Visit{ID: id, Label: "t"}); err != nil {
			t.Fatalf("RecordVisit(%d): %v", id, err)
		}
	}
	if err := db.RecordVisit("ticket", Visit{ID: 2, Label: "renamed"}); err != nil {
		t.Fatalf("RecordVisit: %v", err)
	}

	visits, err := db.RecentVisits("ticket")
	if err != nil {
		t.Fatalf("RecentVisits: %v", err)
	}
	if len(visits) != 3 {
		t.Fatalf("expected 3 visits (no duplicates), got %d", len(visits))
	}
	gotIDs := []int64{visits[0].ID, visits[1].ID, visits[2].ID}
	if want := []int64{2, 1, 3}; !reflect.DeepEqual(gotIDs, want) {
		t.Errorf("ids = %v, want %v", gotIDs, want)
	}
	if visits[0].Label != "renamed" {
		t.Errorf("label = %q, want latest label", visits[0].Label)
	}
}

func TestRecordVisit_TypesAreIndependent(t *testing.T) {
	db := setupTestDB(t)

	for id := int64(1); id <= 6; id++ {
		if err := db.RecordVisit("ticket", Visit{ID: id}); err != nil {
			t.Fatal(err)
		}
	}
	if err := db.RecordVisit("contact", Visit{ID: 1}); err != nil {
		t.Fatal(err)
	}

	contacts, err := db.RecentIDs("contact")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(contacts, []int64{1}) {
		t.Errorf("contact history = %v, want [1]", contacts)
	}
	tickets, err := db.RecentIDs("ticket")
	if err != nil {
		t.Fatal(err)
	}
	if len(tickets) != MaxVisits {
		t.Errorf("ticket history len = %d, want %d", len(tickets), MaxVisits)
	}
}

func TestRecordVisit_RequiresType(t *testing.T) {
	db := setupTestDB(t)
	if err := db.RecordVisit("", Visit{ID: 1}); err == nil {
		t.Error("expected error for empty entity type")
	}
}

func TestClearHistory(t *testing.T) {
	db := setupTestDB(t)
	_ = db.RecordVisit("ticket", Visit{ID: 1})
	_ = db.RecordVisit("account", Visit{ID: 2})

	if err := db.ClearHistory("ticket"); err != nil {
		t.Fatalf("ClearHistory: %v", err)
	}
	if ids, _ := db.RecentIDs("ticket"); len(ids) != 0 {
		t.Errorf("ticket history not cleared: %v", ids)
	}
	if ids, _ := db.RecentIDs("account"); len(ids) != 1 {
		t.Errorf("account history should survive: %v", ids)
	}

	if err := db.ClearHistory(""); err != nil {
		t.Fatalf("ClearHistory all: %v", err)
	}
	if ids, _ := db.RecentIDs("account"); len(ids) != 0 {
		t.Errorf("account history not cleared: %v", ids)
	}
}

type row struct {
	id   int64
	name string
}

func rowID(r row) int64 { return r.id }

func TestSortByRecency(t *testing.T) {
	items := []row{{1, "a"}, {2, "b"}, {3, "c"}, {4, "d"}, {5, "e"}}

	tests := []struct {
		name   string
		recent []int64
		want   []int64
	}{
		{"no history", nil, []int64{1, 2, 3, 4, 5}},
		{"recent first in recency order", []int64{4, 2}, []int64{4, 2, 1, 3, 5}},
		{"unknown ids ignored", []int64{9, 3}, []int64{3, 1, 2, 4, 5}},
		{"duplicate recent ids", []int64{5, 5, 1}, []int64{5, 1, 2, 3, 4}},
		{"all recent", []int64{5, 4, 3, 2, 1}, []int64{5, 4, 3, 2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SortByRecency(items, tt.recent, rowID)
			ids := make([]int64, len(got))
			for i, r := range got {
				ids[i] = r.id
			}
			if !reflect.DeepEqual(ids, tt.want) {
				t.Errorf("order = %v, want %v", ids, tt.want)
			}
		})
	}

	// Input must not be reordered in place.
	if items[0].id != 1 || items[3].id != 4 {
		t.Error("SortByRecency mutated its input")
	}
}
