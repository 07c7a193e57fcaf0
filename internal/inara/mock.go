package inara

import (
	"context"
	"fmt"

	"github.com/elite-status-check/backend/internal/models"
)

// MockClient serves deterministic fixture data without network access.
// Used when no API key is configured or mock mode is forced.
type MockClient struct {
	commanderName string
}

// NewMockClient creates a mock client with a default commander.
func NewMockClient(commanderName string) *MockClient {
	if commanderName == "" {
		commanderName = "Test Commander"
	}
	return &MockClient{commanderName: commanderName}
}

// Mode identifies the client flavor in health output.
func (m *MockClient) Mode() string { return "mock" }

// ClearCache is a no-op; the mock holds no cache.
func (m *MockClient) ClearCache() {}

func (m *MockClient) name(override string) string {
	if override != "" {
		return override
	}
	return m.commanderName
}

func (m *MockClient) CommanderProfile(_ context.Context, name string) (*models.CommanderProfile, error) {
	who := m.name(name)
	fmt.Printf("[Inara] Mock: commander profile for %s\n", who)
	return &models.CommanderProfile{
		UserID:        42,
		UserName:      who,
		CommanderName: who,
		CommanderRanksPilot: []models.CommanderRank{
			{RankName: "combat", RankValue: 6, RankProgress: 0.35},
			{RankName: "trade", RankValue: 8, RankProgress: 1.0},
			{RankName: "exploration", RankValue: 7, RankProgress: 0.62},
		},
		CommanderCredits:        &models.CommanderCredits{Balance: 1234567890, Loan: 0},
		PreferredAllegianceName: "Federation",
		InGameLocation:          map[string]string{"starsystemName": "Sol", "stationName": "Abraham Lincoln"},
		ProfileCreated:          "2020-11-05T12:00:00Z",
		ProfileLastUpdate:       "2024-01-01T12:00:00Z",
	}, nil
}

func (m *MockClient) CommanderShips(_ context.Context, name string) ([]models.ShipLoadout, error) {
	fmt.Printf("[Inara] Mock: ships for %s\n", m.name(name))
	return []models.ShipLoadout{
		{
			ShipType:         "Krait Phantom",
			ShipGameID:       1,
			ShipName:         "Pathfinder",
			ShipIdent:        "TC-01K",
			IsCurrentShip:    true,
			ShipValue:        88240300,
			ShipHullValue:    21077780,
			ShipModulesValue: 67162520,
			ShipRebuyCost:    4412015,
			ShipLastUpdate:   "2024-01-01T12:00:00Z",
		},
		{
			ShipType:         "Sidewinder",
			ShipGameID:       2,
			ShipName:         "Starter",
			ShipIdent:        "TC-02S",
			IsCurrentShip:    false,
			ShipValue:        32000,
			ShipHullValue:    32000,
			ShipModulesValue: 0,
			ShipRebuyCost:    1600,
			ShipLastUpdate:   "2023-06-15T09:30:00Z",
		},
	}, nil
}

func (m *MockClient) CurrentShip(ctx context.Context, name string) (*models.ShipLoadout, error) {
	ships, err := m.CommanderShips(ctx, name)
	if err != nil {
		return nil, err
	}
	for i := range ships {
		if ships[i].IsCurrentShip {
			return &ships[i], nil
		}
	}
	return nil, ErrNoData
}

func (m *MockClient) SystemFactions(_ context.Context, system string) ([]models.SystemFaction, error) {
	fmt.Printf("[Inara] Mock: factions for system %s\n", system)
	return []models.SystemFaction{
		{
			FactionName:          "Federal Congress",
			FactionGovernment:    "Democracy",
			FactionAllegiance:    "Federation",
			FactionState:         "None",
			FactionInfluence:     0.45,
			FactionHappiness:     "Happy",
			IsControllingFaction: true,
		},
		{
			FactionName:       "Sol Workers' Party",
			FactionGovernment: "Democracy",
			FactionAllegiance: "Federation",
			FactionState:      "None",
			FactionInfluence:  0.35,
			FactionHappiness:  "Happy",
		},
		{
			FactionName:       "Independent Pilots Federation",
			FactionGovernment: "Cooperative",
			FactionAllegiance: "Independent",
			FactionState:      "None",
			FactionInfluence:  0.20,
			FactionHappiness:  "Content",
		},
	}, nil
}

func (m *MockClient) SystemStations(_ context.Context, system string) ([]models.Station, error) {
	fmt.Printf("[Inara] Mock: stations for system %s\n", system)
	return []models.Station{
		{
			StationID:          1,
			StationName:        "Abraham Lincoln",
			StationType:        "Orbis Starport",
			ControllingFaction: "Federal Congress",
			StationServices:    []string{"Commodities", "Shipyard", "Outfitting", "Repair"},
			StationEconomy:     "Industrial",
			StationGovernment:  "Democracy",
			DistanceToArrival:  496.0,
			StationAllegiance:  "Federation",
			MarketUpdated:      "2024-01-01T12:00:00Z",
		},
	}, nil
}

func (m *MockClient) StationMarket(_ context.Context, stationID int) (*models.StationMarket, error) {
	fmt.Printf("[Inara] Mock: market for station %d\n", stationID)
	return &models.StationMarket{
		StationID: stationID,
		MarketCommodities: []models.MarketCommodity{
			{CommodityName: "Gold", MeanPrice: 47609, BuyPrice: 45200, SellPrice: 0, Stock: 1200, StockBracket: 2},
			{CommodityName: "Tritium", MeanPrice: 51707, BuyPrice: 0, SellPrice: 52340, Demand: 8400, DemandBracket: 3},
			{CommodityName: "Medicines", MeanPrice: 612, BuyPrice: 540, SellPrice: 0, Stock: 3300, StockBracket: 3},
		},
		MarketLastUpdate: "2024-01-01T12:00:00Z",
	}, nil
}
