package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Game is an entry of the game list offered for "launch on all".
type Game struct {
	Name  string `yaml:"name" json:"name"`
	AppID string `yaml:"appid" json:"appid"` // Steam app id, numeric in most lists
}

// LoadGames reads the game list at path.
func LoadGames(path string) ([]Game, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return ParseGames(data)
}

// ParseGames unmarshals and validates a game list.
func ParseGames(data []byte) ([]Game, error) {
	var games []Game
	if err := yaml.Unmarshal(data, &games); err != nil {
		return nil, fmt.Errorf("config: parse games: %w", err)
	}

	var errs []string
	for i := range games {
		games[i].Name = strings.TrimSpace(games[i].Name)
		games[i].AppID = strings.TrimSpace(games[i].AppID)
		if games[i].Name == "" {
			errs = append(errs, fmt.Sprintf("games[%d].name is required", i))
		}
		if games[i].AppID == "" {
			errs = append(errs, fmt.Sprintf("games[%d].appid is required", i))
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("config: invalid games: %s", strings.Join(errs, "; "))
	}
	if games == nil {
		games = []Game{}
	}
	return games, nil
}

// FindGame returns the game whose app id matches key, or whose name
// matches it case-insensitively.
func FindGame(games []Game, key string) (Game, bool) {
	key = strings.TrimSpace(key)
	for _, g := range games {
		if g.AppID == key {
			return g, true
		}
	}
	for _, g := range games {
		if strings.EqualFold(g.Name, key) {
			return g, true
		}
	}
	return Game{}, false
}
