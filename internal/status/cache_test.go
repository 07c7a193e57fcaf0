package status

import (
	"errors"
	"sync"
	"testing"

	"github.com/elite-status-check/backend/internal/models"
)

func TestReadBeforeFirstUpdate(t *testing.T) {
	c := NewCache()

	if _, err := c.Read(); !errors.Is(err, ErrNotYetAvailable) {
		t.Errorf("Expected ErrNotYetAvailable from Read, got %v", err)
	}
	if _, _, err := c.ReadParsed(); !errors.Is(err, ErrNotYetAvailable) {
		t.Errorf("Expected ErrNotYetAvailable from ReadParsed, got %v", err)
	}
	if c.Populated() {
		t.Error("Cache must not report populated before an update")
	}
}

func TestUpdateDockedOnly(t *testing.T) {
	c := NewCache()
	c.Update([]byte(`{"Flags": 1, "Flags2": 0}`))

	parsed, _, err := c.ReadParsed()
	if err != nil {
		t.Fatalf("ReadParsed failed: %v", err)
	}
	if len(parsed) != 52 {
		t.Fatalf("Expected 52 flags, got %d", len(parsed))
	}
	if !parsed["docked"] {
		t.Error("Expected docked true")
	}
	for name, value := range parsed {
		if name != "docked" && value {
			t.Errorf("Unexpected %s true", name)
		}
	}
}

func TestUpdateShipStatusValue(t *testing.T) {
	c := NewCache()
	c.Update([]byte(`{"Flags": 69239048, "Flags2": 0}`))

	parsed, _, err := c.ReadParsed()
	if err != nil {
		t.Fatalf("ReadParsed failed: %v", err)
	}
	// 69239048 = 0x4208108, bits 3, 8, 15, 21, 26.
	for _, name := range []string{"shields_up", "lights_on", "srv_drive_assist", "has_lat_long", "in_srv"} {
		if !parsed[name] {
			t.Errorf("Expected %s true", name)
		}
	}
	if parsed["landing_gear_down"] || parsed["hardpoints_deployed"] {
		t.Error("Bits 2 and 6 are clear in 69239048")
	}
}

func TestUpdateOnFootStatusValue(t *testing.T) {
	c := NewCache()
	c.Update([]byte(`{"Flags": 0, "Flags2": 33041}`))

	parsed, _, err := c.ReadParsed()
	if err != nil {
		t.Fatalf("ReadParsed failed: %v", err)
	}
	// 33041 = 0x8111, bits 0, 4, 8, 15.
	for _, name := range []string{"on_foot", "on_foot_on_planet", "cold", "on_foot_exterior"} {
		if !parsed[name] {
			t.Errorf("Expected %s true", name)
		}
	}
	if parsed["on_foot_in_station"] {
		t.Error("Expected on_foot_in_station false")
	}
}

func TestMissingFlags2DefaultsToZero(t *testing.T) {
	c := NewCache()
	c.Update([]byte(`{"Flags": 4}`))

	snap, err := c.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if snap.Flags != 4 || snap.Flags2 != 0 {
		t.Errorf("Expected Flags=4 Flags2=0, got %d/%d", snap.Flags, snap.Flags2)
	}
}

func TestMalformedUpdateKeepsPriorSnapshot(t *testing.T) {
	c := NewCache()
	c.Update([]byte(`{"Flags": 16842765, "Flags2": 0, "Fuel": {"FuelMain": 32.0}}`))
	c.Update([]byte(`not json`))

	snap, err := c.Read()
	if err != nil {
		t.Fatalf("Read failed after malformed update: %v", err)
	}
	if snap.Flags != 16842765 {
		t.Errorf("Expected prior Flags 16842765, got %d", snap.Flags)
	}
	if !errors.Is(c.LastError(), ErrMalformedContent) {
		t.Errorf("Expected ErrMalformedContent in LastError, got %v", c.LastError())
	}

	// A good update clears the recorded failure.
	c.Update([]byte(`{"Flags": 1}`))
	if c.LastError() != nil {
		t.Errorf("Expected LastError cleared, got %v", c.LastError())
	}
}

func TestMalformedVariants(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing flags", `{"Flags2": 1}`},
		{"flags not a number", `{"Flags": "docked"}`},
		{"negative flags", `{"Flags": -1}`},
		{"fractional flags", `{"Flags": 1.5}`},
		{"flags too large", `{"Flags": 4294967296}`},
		{"array body", `[1, 2, 3]`},
	}
	for _, tc := range cases {
		c := NewCache()
		c.Update([]byte(tc.body))
		if _, err := c.Read(); !errors.Is(err, ErrNotYetAvailable) {
			t.Errorf("%s: cache must stay uninitialized", tc.name)
		}
		if !errors.Is(c.LastError(), ErrMalformedContent) {
			t.Errorf("%s: expected ErrMalformedContent, got %v", tc.name, c.LastError())
		}
	}
}

func TestIdempotentUpdate(t *testing.T) {
	c := NewCache()
	body := []byte(`{"Flags": 16777240, "Flags2": 257, "Pips": [4, 8, 0]}`)
	c.Update(body)
	first, _ := c.Read()
	c.Update(body)
	second, _ := c.Read()

	if first.Flags != second.Flags || first.Flags2 != second.Flags2 {
		t.Error("Identical updates must yield identical mask values")
	}
	if len(first.Raw) != len(second.Raw) {
		t.Errorf("Raw accumulated entries: %d vs %d", len(first.Raw), len(second.Raw))
	}
	if c.UpdateCount() != 2 {
		t.Errorf("Expected 2 accepted updates, got %d", c.UpdateCount())
	}
}

func TestRawPassthrough(t *testing.T) {
	c := NewCache()
	c.Update([]byte(`{"Flags": 1, "Flags2": 0, "Pips": [2, 8, 2], "FireGroup": 1, "GuiFocus": 0, "Cargo": 16.0}`))

	snap, err := c.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if snap.Raw["FireGroup"] != float64(1) {
		t.Errorf("Expected FireGroup passthrough, got %v", snap.Raw["FireGroup"])
	}
	if snap.Raw["Cargo"] != 16.0 {
		t.Errorf("Expected Cargo passthrough, got %v", snap.Raw["Cargo"])
	}
}

func TestRecordFailureKeepsSnapshot(t *testing.T) {
	c := NewCache()
	c.Update([]byte(`{"Flags": 9}`))
	c.RecordFailure(errors.New("file busy"))

	snap, err := c.Read()
	if err != nil {
		t.Fatalf("Read failed after recorded failure: %v", err)
	}
	if snap.Flags != 9 {
		t.Errorf("Expected snapshot intact, got Flags=%d", snap.Flags)
	}
	if !errors.Is(c.LastError(), ErrTransientRead) {
		t.Errorf("Expected ErrTransientRead, got %v", c.LastError())
	}
}

func TestOnUpdateHook(t *testing.T) {
	c := NewCache()
	var got []uint32
	c.SetOnUpdate(func(s models.StatusSnapshot) {
		got = append(got, s.Flags)
	})

	c.Update([]byte(`{"Flags": 1}`))
	c.Update([]byte(`garbage`))
	c.Update([]byte(`{"Flags": 2}`))

	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("Expected hook for accepted updates only, got %v", got)
	}
}

func TestReadReturnsCopy(t *testing.T) {
	c := NewCache()
	c.Update([]byte(`{"Flags": 1, "GuiFocus": 5}`))

	snap, _ := c.Read()
	snap.Raw["GuiFocus"] = float64(9)

	again, _ := c.Read()
	if again.Raw["GuiFocus"] != float64(5) {
		t.Error("Mutating a read snapshot must not affect the cache")
	}
}

func TestConcurrentReadersAndWriter(t *testing.T) {
	c := NewCache()
	c.Update([]byte(`{"Flags": 1}`))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if _, err := c.Read(); err != nil {
					t.Errorf("Read failed: %v", err)
					return
				}
				if _, _, err := c.ReadParsed(); err != nil {
					t.Errorf("ReadParsed failed: %v", err)
					return
				}
			}
		}()
	}
	for j := 0; j < 200; j++ {
		c.Update([]byte(`{"Flags": 3, "Flags2": 1}`))
	}
	wg.Wait()
}
