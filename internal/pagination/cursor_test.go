package pagination

import (
	"testing"
	"time"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 123456789, time.UTC)
	s := Encode(at, "itm_aaaaaaaaaaaaaaaaaaaaaaaa")

	c, err := Decode(s)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !c.CreatedAt.Equal(at) {
		t.Errorf("CreatedAt = %v, want %v", c.CreatedAt, at)
	}
	if c.ID != "itm_aaaaaaaaaaaaaaaaaaaaaaaa" {
		t.Errorf("ID = %q", c.ID)
	}
}

func TestDecodeEmptyIsNil(t *testing.T) {
	c, err := Decode("")
	if err != nil || c != nil {
		t.Errorf("Decode(\"\") = %v, %v; want nil, nil", c, err)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	for _, s := range []string{"!!!not-base64!!!", "bm9wZQ", "fHx8"} {
		if _, err := Decode(s); err == nil {
			t.Errorf("Decode(%q) accepted garbage", s)
		}
	}
}

func TestComputePage(t *testing.T) {
	type row struct {
		at time.Time
		id string
	}
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	rows := []row{
		{base.Add(3 * time.Hour), "c"},
		{base.Add(2 * time.Hour), "b"},
		{base.Add(1 * time.Hour), "a"},
	}
	key := func(r row) (time.Time, string) { return r.at, r.id }

	// Fetched limit+1 rows, so there is another page.
	page, next, hasMore := ComputePage(rows, 2, key)
	if len(page) != 2 || !hasMore || next == "" {
		t.Fatalf("page=%d hasMore=%v next=%q", len(page), hasMore, next)
	}
	c, err := Decode(next)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if c.ID != "b" {
		t.Errorf("next cursor points at %q, want last returned row", c.ID)
	}

	// Fewer rows than the limit means the final page.
	page, next, hasMore = ComputePage(rows, 5, key)
	if len(page) != 3 || hasMore || next != "" {
		t.Errorf("final page: page=%d hasMore=%v next=%q", len(page), hasMore, next)
	}
}
