package datasource

import (
	"context"
	"testing"
	"time"
)

func TestDemoContractChain(t *testing.T) {
	d := NewDemo(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 75)
	contracts, err := d.ContractChain(context.Background(), "CL")
	if err != nil {
		t.Fatalf("ContractChain failed: %v", err)
	}
	if len(contracts) != 12 {
		t.Fatalf("got %d contracts, want 12", len(contracts))
	}
	if contracts[0].MonthCode != "F" || contracts[0].Year != 2026 {
		t.Fatalf("unexpected front contract: %s", contracts[0])
	}
	if contracts[0].ExpiryDate.Day() != 25 {
		t.Fatalf("expected expiry on the 25th, got %v", contracts[0].ExpiryDate)
	}
}

func TestDemoContractDataDeterministic(t *testing.T) {
	d := NewDemo(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 75)
	contracts, _ := d.ContractChain(context.Background(), "CL")

	first, err := d.ContractData(context.Background(), contracts[0])
	if err != nil {
		t.Fatalf("ContractData failed: %v", err)
	}
	if first.Len() != 180 {
		t.Fatalf("got %d rows, want 180", first.Len())
	}

	// Same contract yields identical data on every call.
	again, _ := d.ContractData(context.Background(), contracts[0])
	if first.Rows[0].Values[0] != again.Rows[0].Values[0] {
		t.Fatal("expected deterministic data")
	}

	// Later delivery months trade at a higher level (contango).
	second, _ := d.ContractData(context.Background(), contracts[1])
	if second.Rows[0].Values[0] <= first.Rows[0].Values[0] {
		t.Fatal("expected later contract to trade higher")
	}
}

func TestDemoDataResolvesFields(t *testing.T) {
	d := NewDemo(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 75)
	contracts, _ := d.ContractChain(context.Background(), "CL")
	table, _ := d.ContractData(context.Background(), contracts[0])

	for _, field := range []string{"settlement", "volume", "open_interest"} {
		if _, ok := table.Resolve(field); !ok {
			t.Errorf("field %q not resolvable", field)
		}
	}
}
