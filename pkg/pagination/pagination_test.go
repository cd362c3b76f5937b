package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNormalizeLimit(t *testing.T) {
	cases := map[int]int{0: DefaultLimit, -3: DefaultLimit, 5: 5, MaxLimit + 1: MaxLimit}
	for in, want := range cases {
		if got := NormalizeLimit(in); got != want {
			t.Fatalf("NormalizeLimit(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestCursorRoundTrip(t *testing.T) {
	want := Cursor{CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 123, time.UTC), ID: uuid.New()}
	got, err := ParseCursor(EncodeCursor(want))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) || got.ID != want.ID {
		t.Fatalf("cursor mismatch: got %+v want %+v", got, want)
	}
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	if c, err := ParseCursor(""); err != nil || c != nil {
		t.Fatalf("empty cursor should be nil, got %v %v", c, err)
	}
	if _, err := ParseCursor("!!!"); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := ParseCursor(EncodeCursor(Cursor{})[:4]); err == nil {
		t.Fatal("expected format error")
	}
}

func TestBuildTrimsLookAhead(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	rows := []Cursor{
		{CreatedAt: base.Add(3 * time.Minute), ID: ids[0]},
		{CreatedAt: base.Add(2 * time.Minute), ID: ids[1]},
		{CreatedAt: base.Add(time.Minute), ID: ids[2]},
	}
	key := func(c Cursor) Cursor { return c }

	page := Build(rows, 2, key)
	if len(page.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(page.Items))
	}
	next, err := ParseCursor(page.NextCursor)
	if err != nil || next.ID != ids[1] {
		t.Fatalf("next cursor should point at second row, got %+v err=%v", next, err)
	}

	last := Build(rows[:1], 2, key)
	if last.NextCursor != "" {
		t.Fatalf("last page must not carry a cursor")
	}
	if empty := Build[Cursor](nil, 2, key); empty.Items == nil {
		t.Fatal("empty page should serialize as []")
	}
}
