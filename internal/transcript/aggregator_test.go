package transcript

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/mindhaven/sessioncore/internal/media"
)

func frag(id, text string, final bool, firstMillis int64) media.Fragment {
	ts := time.UnixMilli(firstMillis)
	return media.Fragment{ID: id, Text: text, Final: final, FirstReceived: ts, LastReceived: ts}
}

func TestUpsert_RevisionKeepsPositionAndLatestText(t *testing.T) {
	agg := NewAggregator()
	agg.Upsert([]media.Fragment{frag("a", "Hel", false, 100)})
	agg.Upsert([]media.Fragment{frag("a", "Hello", true, 200)})
	agg.Upsert([]media.Fragment{frag("b", "Hi", true, 50)})

	got := agg.Texts()
	want := []string{"Hi", "Hello"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	ordered := agg.Ordered()
	if !ordered[1].FirstReceived.Equal(time.UnixMilli(100)) {
		t.Fatalf("revision must preserve first-received time, got %v", ordered[1].FirstReceived)
	}
	if ordered[1].LastReceived.Before(ordered[1].FirstReceived) {
		t.Fatal("last-received must track the latest revision")
	}
}

func TestUpsert_OneEntryPerID(t *testing.T) {
	agg := NewAggregator()
	for i := 0; i < 5; i++ {
		agg.Upsert([]media.Fragment{frag("a", fmt.Sprintf("rev-%d", i), i == 4, 100)})
	}
	if agg.Len() != 1 {
		t.Fatalf("expected one entry, got %d", agg.Len())
	}
	got := agg.Texts()
	if len(got) != 1 || got[0] != "rev-4" {
		t.Fatalf("expected most recent revision, got %v", got)
	}
}

func TestOrdered_TieBreaksByID(t *testing.T) {
	agg := NewAggregator()
	agg.Upsert([]media.Fragment{
		frag("z", "third", true, 100),
		frag("a", "first", true, 100),
		frag("m", "second", true, 100),
	})

	for i := 0; i < 3; i++ {
		got := agg.Texts()
		want := []string{"first", "second", "third"}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("read %d: expected %v, got %v", i, want, got)
		}
	}
}

func TestUpsert_FinalFlagOnlyUpdateKeepsPosition(t *testing.T) {
	agg := NewAggregator()
	agg.Upsert([]media.Fragment{
		frag("a", "one", false, 10),
		frag("b", "two", false, 20),
	})
	agg.Upsert([]media.Fragment{frag("a", "one", true, 30)})

	got := agg.Texts()
	want := []string{"one", "two"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if !agg.Ordered()[0].Final {
		t.Fatal("expected final flag to be updated")
	}
}

func TestOrdered_IndependentOfArrivalOrder(t *testing.T) {
	batches := [][]media.Fragment{
		{frag("c", "see", true, 300), frag("a", "ay", false, 100)},
		{frag("b", "bee", true, 200)},
		{frag("a", "ay!", true, 400)},
	}
	agg := NewAggregator()
	for _, b := range batches {
		agg.Upsert(b)
	}
	got := agg.Texts()
	want := []string{"ay!", "bee", "see"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestReset_DiscardsWorkingSet(t *testing.T) {
	agg := NewAggregator()
	agg.Upsert([]media.Fragment{frag("a", "hello", true, 100)})
	agg.Reset()
	if agg.Len() != 0 {
		t.Fatalf("expected empty aggregator, got %d entries", agg.Len())
	}
}
