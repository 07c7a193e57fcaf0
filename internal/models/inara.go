package models

// Inara payload shapes. Field names follow the Inara API wire format so
// responses pass through to API clients unchanged.

// CommanderRank is one rank entry in a commander profile.
type CommanderRank struct {
	RankName     string  `json:"rankName"`
	RankValue    int     `json:"rankValue"`
	RankProgress float64 `json:"rankProgress"`
}

// CommanderCredits is the credit balance section of a commander profile.
type CommanderCredits struct {
	Balance int64 `json:"balance"`
	Loan    int64 `json:"loan"`
}

// CommanderProfile is the getCommanderProfile response payload.
type CommanderProfile struct {
	UserID                  int               `json:"userID"`
	UserName                string            `json:"userName"`
	CommanderName           string            `json:"commanderName"`
	CommanderRanksPilot     []CommanderRank   `json:"commanderRanksPilot,omitempty"`
	CommanderCredits        *CommanderCredits `json:"commanderCredits,omitempty"`
	PreferredAllegianceName string            `json:"preferredAllegianceName,omitempty"`
	PreferredPowerName      string            `json:"preferredPowerName,omitempty"`
	InGameLocation          map[string]string `json:"inGameLocation,omitempty"`
	AvatarImageURL          string            `json:"avatarImageURL,omitempty"`
	ProfileCreated          string            `json:"profileCreated,omitempty"`
	ProfileLastUpdate       string            `json:"profileLastUpdate,omitempty"`
}

// ShipModule is one outfitted module in a ship loadout.
type ShipModule struct {
	ItemName       string  `json:"itemName"`
	ItemValue      int64   `json:"itemValue"`
	IsOn           bool    `json:"isOn"`
	ItemPriority   int     `json:"itemPriority"`
	ItemAmmoClip   int     `json:"itemAmmoClip,omitempty"`
	ItemAmmoHopper int     `json:"itemAmmoHopper,omitempty"`
	ItemHealth     float64 `json:"itemHealth"`
	SlotName       string  `json:"slotName"`
}

// ShipLoadout is one ship in a commander's fleet.
type ShipLoadout struct {
	ShipType         string       `json:"shipType"`
	ShipGameID       int          `json:"shipGameID"`
	ShipName         string       `json:"shipName,omitempty"`
	ShipIdent        string       `json:"shipIdent,omitempty"`
	IsCurrentShip    bool         `json:"isCurrentShip"`
	ShipValue        int64        `json:"shipValue"`
	ShipHullValue    int64        `json:"shipHullValue"`
	ShipModulesValue int64        `json:"shipModulesValue"`
	ShipRebuyCost    int64        `json:"shipRebuyCost"`
	Modules          []ShipModule `json:"modules,omitempty"`
	ShipLastUpdate   string       `json:"shipLastUpdate,omitempty"`
}

// SystemFaction is one faction present in a star system.
type SystemFaction struct {
	FactionName          string  `json:"factionName"`
	FactionGovernment    string  `json:"factionGovernment"`
	FactionAllegiance    string  `json:"factionAllegiance"`
	FactionState         string  `json:"factionState"`
	FactionInfluence     float64 `json:"factionInfluence"`
	FactionHappiness     string  `json:"factionHappiness,omitempty"`
	IsControllingFaction bool    `json:"isControllingFaction"`
}

// Station is one station in a star system.
type Station struct {
	StationID          int      `json:"stationID"`
	StationName        string   `json:"stationName"`
	StationType        string   `json:"stationType"`
	ControllingFaction string   `json:"controllingFaction"`
	StationServices    []string `json:"stationServices,omitempty"`
	StationEconomy     string   `json:"stationEconomy"`
	StationGovernment  string   `json:"stationGovernment"`
	DistanceToArrival  float64  `json:"distanceToArrival"`
	StationAllegiance  string   `json:"stationAllegiance"`
	MarketUpdated      string   `json:"marketUpdated,omitempty"`
}

// MarketCommodity is one commodity row in a station market.
type MarketCommodity struct {
	CommodityName string `json:"commodityName"`
	MeanPrice     int64  `json:"meanPrice"`
	BuyPrice      int64  `json:"buyPrice"`
	SellPrice     int64  `json:"sellPrice"`
	Stock         int64  `json:"stock"`
	StockBracket  int    `json:"stockBracket"`
	Demand        int64  `json:"demand"`
	DemandBracket int    `json:"demandBracket"`
}

// StationMarket is the getStationMarket response payload.
type StationMarket struct {
	StationID         int               `json:"stationID"`
	MarketCommodities []MarketCommodity `json:"marketCommodities"`
	MarketLastUpdate  string            `json:"marketLastUpdate,omitempty"`
}
