// Package flags decodes the two Status.json bitmask integers into named
// boolean flags. Decoding is pure: no I/O, no error paths, total over the
// uint32 domain.
package flags

import "fmt"

// ParsedFlags maps a flag name to its decoded boolean. A decoded set
// always contains exactly one entry per defined bit across both tables.
type ParsedFlags map[string]bool

type flagBit struct {
	Bit  uint
	Name string
}

// flagsTable covers all 32 bits of the primary Flags mask.
var flagsTable = []flagBit{
	{0, "docked"},
	{1, "landed"},
	{2, "landing_gear_down"},
	{3, "shields_up"},
	{4, "supercruise"},
	{5, "flight_assist_off"},
	{6, "hardpoints_deployed"},
	{7, "in_wing"},
	{8, "lights_on"},
	{9, "cargo_scoop_deployed"},
	{10, "silent_running"},
	{11, "scooping_fuel"},
	{12, "srv_handbrake"},
	{13, "srv_turret_view"},
	{14, "srv_turret_retracted"},
	{15, "srv_drive_assist"},
	{16, "fsd_mass_locked"},
	{17, "fsd_charging"},
	{18, "fsd_cooldown"},
	{19, "low_fuel"},
	{20, "over_heating"},
	{21, "has_lat_long"},
	{22, "is_in_danger"},
	{23, "being_interdicted"},
	{24, "in_main_ship"},
	{25, "in_fighter"},
	{26, "in_srv"},
	{27, "hud_analysis_mode"},
	{28, "night_vision"},
	{29, "altitude_from_average_radius"},
	{30, "fsd_jump"},
	{31, "srv_high_beam"},
}

// flags2Table covers the 20 defined bits of the secondary Flags2 mask.
// Bits 20-31 of Flags2 carry no meaning and are never decoded.
var flags2Table = []flagBit{
	{0, "on_foot"},
	{1, "in_taxi"},
	{2, "in_multicrew"},
	{3, "on_foot_in_station"},
	{4, "on_foot_on_planet"},
	{5, "aim_down_sight"},
	{6, "low_oxygen"},
	{7, "low_health"},
	{8, "cold"},
	{9, "hot"},
	{10, "very_cold"},
	{11, "very_hot"},
	{12, "glide_mode"},
	{13, "on_foot_in_hangar"},
	{14, "on_foot_social_space"},
	{15, "on_foot_exterior"},
	{16, "breathable_atmosphere"},
	{17, "telepresence_multicrew"},
	{18, "physical_multicrew"},
	{19, "fsd_hyperdrive_charging"},
}

type flagSource int

const (
	sourceFlags flagSource = iota
	sourceFlags2
)

type flagRef struct {
	src flagSource
	bit uint
}

var (
	byName       map[string]flagRef
	orderedNames []string
)

func init() {
	if len(flagsTable) != 32 {
		panic(fmt.Sprintf("flags: primary table has %d entries, want 32", len(flagsTable)))
	}
	if len(flags2Table) != 20 {
		panic(fmt.Sprintf("flags: secondary table has %d entries, want 20", len(flags2Table)))
	}

	byName = make(map[string]flagRef, len(flagsTable)+len(flags2Table))
	orderedNames = make([]string, 0, len(flagsTable)+len(flags2Table))

	seenBits := make(map[flagRef]string)
	for _, fb := range flagsTable {
		register(flagRef{sourceFlags, fb.Bit}, fb.Name, seenBits)
	}
	for _, fb := range flags2Table {
		register(flagRef{sourceFlags2, fb.Bit}, fb.Name, seenBits)
	}
}

func register(ref flagRef, name string, seenBits map[flagRef]string) {
	if prev, dup := seenBits[ref]; dup {
		panic(fmt.Sprintf("flags: bit %d claimed by both %q and %q", ref.bit, prev, name))
	}
	if _, dup := byName[name]; dup {
		panic(fmt.Sprintf("flags: duplicate flag name %q", name))
	}
	seenBits[ref] = name
	byName[name] = ref
	orderedNames = append(orderedNames, name)
}

// Decode translates the two bitmasks into the full named flag set. Each
// flag is an independent bit test; undefined bits of flags2 are ignored.
func Decode(flags, flags2 uint32) ParsedFlags {
	parsed := make(ParsedFlags, len(orderedNames))
	for _, fb := range flagsTable {
		parsed[fb.Name] = flags>>fb.Bit&1 == 1
	}
	for _, fb := range flags2Table {
		parsed[fb.Name] = flags2>>fb.Bit&1 == 1
	}
	return parsed
}

// IsSet tests a single flag by name. The second return reports whether the
// name exists in either table.
func IsSet(name string, flags, flags2 uint32) (value, known bool) {
	ref, ok := byName[name]
	if !ok {
		return false, false
	}
	switch ref.src {
	case sourceFlags2:
		return flags2>>ref.bit&1 == 1, true
	default:
		return flags>>ref.bit&1 == 1, true
	}
}

// Known reports whether name is a defined flag.
func Known(name string) bool {
	_, ok := byName[name]
	return ok
}

// Names returns all defined flag names in table order: the 32 primary
// flags followed by the 20 secondary ones.
func Names() []string {
	out := make([]string, len(orderedNames))
	copy(out, orderedNames)
	return out
}

// Count is the number of defined flags across both tables.
func Count() int {
	return len(orderedNames)
}
