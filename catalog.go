package main

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var catalogFS embed.FS

type RandomEventEffect struct {
	Type          string  `yaml:"type"`
	Value         float64 `yaml:"value"`
	DurationHours int     `yaml:"duration_hours"`
	Description   string  `yaml:"description"`
}

type RandomEvent struct {
	ID          string              `yaml:"id"`
	Type        string              `yaml:"type"`
	Title       string              `yaml:"title"`
	Description string              `yaml:"description"`
	MinRep      int                 `yaml:"min_rep"`
	MaxRep      int                 `yaml:"max_rep"`
	Probability float64             `yaml:"probability"`
	Effects     []RandomEventEffect `yaml:"effects"`
}

type gameCatalogs struct {
	Tools       []HackingTool
	Missions    []Mission
	MarketItems []MarketItem
	Skills      []SkillNode
	Events      []RandomEvent
}

var catalogs = mustLoadCatalogs()

func mustLoadCatalogs() *gameCatalogs {
	c, err := loadCatalogs()
	if err != nil {
		panic(fmt.Sprintf("embedded game data: %v", err))
	}
	return c
}

func loadCatalogs() (*gameCatalogs, error) {
	c := &gameCatalogs{}

	var tools struct {
		Tools []HackingTool `yaml:"tools"`
	}
	if err := readCatalog("data/tools.yaml", &tools); err != nil {
		return nil, err
	}
	c.Tools = tools.Tools

	var missions struct {
		Missions []Mission `yaml:"missions"`
	}
	if err := readCatalog("data/missions.yaml", &missions); err != nil {
		return nil, err
	}
	c.Missions = missions.Missions

	var market struct {
		Items []MarketItem `yaml:"items"`
	}
	if err := readCatalog("data/market.yaml", &market); err != nil {
		return nil, err
	}
	c.MarketItems = market.Items

	var skills struct {
		Skills []SkillNode `yaml:"skills"`
	}
	if err := readCatalog("data/skills.yaml", &skills); err != nil {
		return nil, err
	}
	c.Skills = skills.Skills

	var events struct {
		Events []RandomEvent `yaml:"events"`
	}
	if err := readCatalog("data/events.yaml", &events); err != nil {
		return nil, err
	}
	c.Events = events.Events

	return c, nil
}

func readCatalog(path string, out any) error {
	raw, err := catalogFS.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func freshTools() []*HackingTool {
	out := make([]*HackingTool, 0, len(catalogs.Tools))
	for _, t := range catalogs.Tools {
		tool := t
		out = append(out, &tool)
	}
	return out
}

func freshMissions() []*Mission {
	out := make([]*Mission, 0, len(catalogs.Missions))
	for _, m := range catalogs.Missions {
		mission := m
		mission.Status = MissionAvailable
		mission.Requirements = append([]MissionRequirement(nil), m.Requirements...)
		out = append(out, &mission)
	}
	return out
}

func freshMarketItems() []*MarketItem {
	out := make([]*MarketItem, 0, len(catalogs.MarketItems))
	for _, it := range catalogs.MarketItems {
		item := it
		out = append(out, &item)
	}
	return out
}

func freshSkills() []*SkillNode {
	out := make([]*SkillNode, 0, len(catalogs.Skills))
	for _, sk := range catalogs.Skills {
		skill := sk
		skill.Dependencies = append([]string(nil), sk.Dependencies...)
		out = append(out, &skill)
	}
	return out
}
